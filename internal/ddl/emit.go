// Package ddl renders a compiled table definition as PostgreSQL DDL text.
// Emission is a direct stringification of the model: tables appear in
// creation-rank order, so a child's foreign-key target always precedes it.
package ddl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/xmlshred/internal/model"
)

// Emit renders CREATE TABLE statements for every table in the definition.
// Output is deterministic for a given definition.
func Emit(def *model.Definition) string {
	tables := make([]*model.Table, len(def.Tables))
	copy(tables, def.Tables)
	sort.Slice(tables, func(i, j int) bool { return tables[i].Rank < tables[j].Rank })

	var sb strings.Builder
	for i, t := range tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeTable(&sb, t)
	}
	return sb.String()
}

func writeTable(sb *strings.Builder, t *model.Table) {
	fmt.Fprintf(sb, "CREATE TABLE %s (\n", quote(t.Name))

	for i, c := range t.Columns {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString("    ")
		sb.WriteString(quote(c.Name))
		sb.WriteString(" ")
		if c.Identity {
			sb.WriteString(c.SQLType)
			sb.WriteString(" GENERATED ALWAYS AS IDENTITY PRIMARY KEY")
			continue
		}
		sb.WriteString(c.SQLType)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
	}

	for _, fk := range t.ForeignKeys {
		fmt.Fprintf(sb, ",\n    CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote("FK_"+t.Name+"_"+fk.Column), quote(fk.Column), quote(fk.RefTable), quote(fk.RefColumn))
	}

	sb.WriteString("\n);\n")
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
