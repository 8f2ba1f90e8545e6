package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/xmlshred/internal/ddl"
	"github.com/vvka-141/xmlshred/internal/extract"
	"github.com/vvka-141/xmlshred/internal/infer"
	"github.com/vvka-141/xmlshred/internal/logging"
)

var inferCmd = &cobra.Command{
	Use:   "infer <sample.xml>",
	Short: "Infer a table design from a sample XML document",
	Long: `Infer derives a relational table design from the shape of a sample
document when no schema is available. Repeated sibling elements become
child tables; leaf values get a type guessed from their content.

The inferred design is a starting point. Review the emitted DDL before
applying it: a single sample cannot show which fields are optional or
which siblings may repeat.

Example:
  xmlshred infer sample.xml > schema.sql`,
	Args: cobra.ExactArgs(1),
	RunE: runInfer,
}

var inferOutput string

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringVarP(&inferOutput, "output", "o", "",
		"File to write the DDL to (default: stdout)")
}

func runInfer(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening sample document: %w", err)
	}
	defer f.Close()

	sample, err := extract.ParseDocument(f)
	if err != nil {
		return fmt.Errorf("parsing sample document: %w", err)
	}

	def := infer.New(logger).Infer(sample)

	statements := ddl.Emit(def)
	if inferOutput == "" {
		fmt.Print(statements)
		return nil
	}
	if err := os.WriteFile(inferOutput, []byte(statements), 0o644); err != nil {
		return fmt.Errorf("writing DDL to %s: %w", inferOutput, err)
	}
	logger.Info("DDL written to %s", inferOutput)
	return nil
}
