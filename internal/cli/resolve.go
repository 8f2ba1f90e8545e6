package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/xmlshred/internal/config"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// compileFlags holds the compiler limit flag values shared by the generate
// and load commands.
type compileFlags struct {
	flattenDepth      int
	maxRecursionDepth int
	maxColumns        int
	maxIdentifier     int
}

func registerCompileFlags(cmd *cobra.Command, flags *compileFlags) {
	cmd.Flags().IntVar(&flags.flattenDepth, "flatten-depth", 0,
		fmt.Sprintf("How many singleton nesting levels flatten into prefixed columns (default %d)", xmlshred.DefaultFlattenDepth))
	cmd.Flags().IntVar(&flags.maxRecursionDepth, "max-recursion-depth", 0,
		fmt.Sprintf("Ceiling on type recursion before degrading to an opaque column (default %d)", xmlshred.DefaultMaxRecursionDepth))
	cmd.Flags().IntVar(&flags.maxColumns, "max-columns", 0,
		fmt.Sprintf("Column ceiling per table before overflow into extension tables (default %d)", xmlshred.MaxColumnsPerTable))
	cmd.Flags().IntVar(&flags.maxIdentifier, "max-identifier", 0,
		fmt.Sprintf("Maximum identifier length (default %d)", xmlshred.MaxIdentifierLength))
}

// loadProjectConfig loads godotenv and xmlshred.yaml from the working
// directory. A missing config file is not an error.
func loadProjectConfig() (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// connectionStringFromEnv returns the first non-empty connection string from
// XMLSHRED_CONNECTION_STRING or DATABASE_URL environment variables.
func connectionStringFromEnv() string {
	if s := os.Getenv("XMLSHRED_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// resolveConnectionString applies the flag > environment > xmlshred.yaml
// precedence for the connection string.
func resolveConnectionString(flagValue string, projectCfg *config.ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if s := connectionStringFromEnv(); s != "" {
		return s
	}
	if projectCfg != nil {
		return projectCfg.Connection
	}
	return ""
}

// Nil-safe accessors for optional xmlshred.yaml values.

func projectSchema(cfg *config.ProjectConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Schema
}

func projectRoot(cfg *config.ProjectConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.RootElement
}

func projectOutput(cfg *config.ProjectConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Output
}

func projectDocuments(cfg *config.ProjectConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Documents
}

func projectAudit(cfg *config.ProjectConfig) bool {
	return cfg != nil && cfg.Audit
}

// resolveString returns the flag value, falling back to the yaml value.
func resolveString(flagValue, yamlValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return yamlValue
}

// resolveCompileOptions merges compiler limits: explicit flags win over
// xmlshred.yaml, and anything still zero picks up the package default.
func resolveCompileOptions(flags compileFlags, projectCfg *config.ProjectConfig) xmlshred.CompileOptions {
	opts := xmlshred.CompileOptions{
		FlattenDepth:      flags.flattenDepth,
		MaxRecursionDepth: flags.maxRecursionDepth,
		MaxColumns:        flags.maxColumns,
		MaxIdentifier:     flags.maxIdentifier,
	}

	if projectCfg != nil {
		if opts.FlattenDepth == 0 {
			opts.FlattenDepth = projectCfg.Compile.FlattenDepth
		}
		if opts.MaxRecursionDepth == 0 {
			opts.MaxRecursionDepth = projectCfg.Compile.MaxRecursionDepth
		}
		if opts.MaxColumns == 0 {
			opts.MaxColumns = projectCfg.Compile.MaxColumns
		}
		if opts.MaxIdentifier == 0 {
			opts.MaxIdentifier = projectCfg.Compile.MaxIdentifier
		}
	}

	return opts.WithDefaults()
}
