package cli

import (
	"testing"

	"github.com/vvka-141/xmlshred/internal/config"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

func TestResolveConnectionString_Precedence(t *testing.T) {
	projectCfg := &config.ProjectConfig{Connection: "postgresql://yaml/db"}

	tests := []struct {
		name      string
		flagValue string
		envPrim   string
		envURL    string
		cfg       *config.ProjectConfig
		want      string
	}{
		{
			name:      "flag wins over everything",
			flagValue: "postgresql://flag/db",
			envPrim:   "postgresql://env/db",
			cfg:       projectCfg,
			want:      "postgresql://flag/db",
		},
		{
			name:    "primary env wins over DATABASE_URL and yaml",
			envPrim: "postgresql://env/db",
			envURL:  "postgresql://url/db",
			cfg:     projectCfg,
			want:    "postgresql://env/db",
		},
		{
			name:   "DATABASE_URL wins over yaml",
			envURL: "postgresql://url/db",
			cfg:    projectCfg,
			want:   "postgresql://url/db",
		},
		{
			name: "yaml as last resort",
			cfg:  projectCfg,
			want: "postgresql://yaml/db",
		},
		{
			name: "nothing configured",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XMLSHRED_CONNECTION_STRING", tt.envPrim)
			t.Setenv("DATABASE_URL", tt.envURL)

			got := resolveConnectionString(tt.flagValue, tt.cfg)
			if got != tt.want {
				t.Errorf("resolveConnectionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveString(t *testing.T) {
	if got := resolveString("flag", "yaml"); got != "flag" {
		t.Errorf("resolveString = %q, want flag value", got)
	}
	if got := resolveString("", "yaml"); got != "yaml" {
		t.Errorf("resolveString = %q, want yaml value", got)
	}
	if got := resolveString("", ""); got != "" {
		t.Errorf("resolveString = %q, want empty", got)
	}
}

func TestProjectAccessors_NilConfig(t *testing.T) {
	if projectSchema(nil) != "" || projectRoot(nil) != "" ||
		projectOutput(nil) != "" || projectDocuments(nil) != "" {
		t.Error("nil config accessors should return empty strings")
	}
	if projectAudit(nil) {
		t.Error("projectAudit(nil) should be false")
	}
}

func TestResolveCompileOptions(t *testing.T) {
	projectCfg := &config.ProjectConfig{
		Compile: config.CompileConfig{
			FlattenDepth: 7,
			MaxColumns:   150,
		},
	}

	tests := []struct {
		name  string
		flags compileFlags
		cfg   *config.ProjectConfig
		want  xmlshred.CompileOptions
	}{
		{
			name:  "flags win over yaml",
			flags: compileFlags{flattenDepth: 2, maxColumns: 50},
			cfg:   projectCfg,
			want: xmlshred.CompileOptions{
				FlattenDepth:      2,
				MaxRecursionDepth: xmlshred.DefaultMaxRecursionDepth,
				MaxColumns:        50,
				MaxIdentifier:     xmlshred.MaxIdentifierLength,
			},
		},
		{
			name: "yaml fills unset flags",
			cfg:  projectCfg,
			want: xmlshred.CompileOptions{
				FlattenDepth:      7,
				MaxRecursionDepth: xmlshred.DefaultMaxRecursionDepth,
				MaxColumns:        150,
				MaxIdentifier:     xmlshred.MaxIdentifierLength,
			},
		},
		{
			name: "defaults when nothing is set",
			want: xmlshred.CompileOptions{
				FlattenDepth:      xmlshred.DefaultFlattenDepth,
				MaxRecursionDepth: xmlshred.DefaultMaxRecursionDepth,
				MaxColumns:        xmlshred.MaxColumnsPerTable,
				MaxIdentifier:     xmlshred.MaxIdentifierLength,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCompileOptions(tt.flags, tt.cfg)
			if got != tt.want {
				t.Errorf("resolveCompileOptions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
