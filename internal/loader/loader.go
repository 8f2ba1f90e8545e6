// Package loader inserts extracted row trees into the generated tables,
// parent before child, wiring foreign keys from newly generated identities.
package loader

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/vvka-141/xmlshred/internal/model"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// RowLoader inserts one document's row tree through a Querier. Transaction
// discipline belongs to the caller: every LoadDocument call is expected to
// run inside one transaction spanning the whole tree, so a failure anywhere
// rolls back the entire document and nothing else.
//
// Safe for concurrent use with distinct Queriers: the definition is
// immutable and all per-document state is local to the call.
type RowLoader struct {
	def    *model.Definition
	logger xmlshred.Logger

	tables map[string]*model.Table
}

// New creates a RowLoader for a compiled definition.
// Panics on nil dependencies; those are programmer errors.
func New(def *model.Definition, logger xmlshred.Logger) *RowLoader {
	if def == nil {
		panic("def cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	tables := make(map[string]*model.Table, len(def.Tables))
	for _, t := range def.Tables {
		tables[strings.ToLower(t.Name)] = t
	}
	return &RowLoader{def: def, logger: logger, tables: tables}
}

// LoadDocument inserts the row tree depth-first, returning per-table row
// counts. externalID, when non-empty, populates the root table's correlation
// column. Any insert failure aborts the walk and is returned as the
// document's error; the caller rolls the transaction back.
func (l *RowLoader) LoadDocument(ctx context.Context, q xmlshred.Querier, root *model.Row, externalID string) (map[string]int, error) {
	if root == nil {
		return nil, fmt.Errorf("nil row tree")
	}
	counts := make(map[string]int)
	if err := l.insertRow(ctx, q, root, externalID, map[string]int64{}, counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// insertRow inserts one row, substituting ancestor identities into its
// foreign-key columns, then recurses into its children with the ancestor map
// extended by this row's generated identity. The map is cloned per row so
// sibling branches cannot observe each other's identities.
func (l *RowLoader) insertRow(ctx context.Context, q xmlshred.Querier, row *model.Row, externalID string, ancestors map[string]int64, counts map[string]int) error {
	t := l.tables[strings.ToLower(row.Table)]
	if t == nil {
		return fmt.Errorf("row targets unknown table %q", row.Table)
	}

	var columns []string
	var values []any

	for _, fk := range t.ForeignKeys {
		id, ok := ancestors[strings.ToLower(fk.RefTable)]
		if !ok {
			return fmt.Errorf("table %q: no ancestor identity for %q", t.Name, fk.RefTable)
		}
		columns = append(columns, fk.Column)
		values = append(values, id)
	}

	if row.RepeatIndex >= 0 && t.HasRepeatIndex() {
		columns = append(columns, xmlshred.RepeatIndexColumnName)
		values = append(values, row.RepeatIndex)
	}

	// Data columns in declared order; absent values are omitted from the
	// insert so the store applies its defaults.
	for _, c := range t.Columns {
		if t.IsSystemColumn(c) {
			continue
		}
		if strings.EqualFold(c.Name, xmlshred.ExternalIDColumnName) && len(c.XMLPath) == 0 {
			if externalID != "" {
				columns = append(columns, c.Name)
				values = append(values, externalID)
			}
			continue
		}
		if v, ok := row.Values[c.Name]; ok {
			columns = append(columns, c.Name)
			values = append(values, v)
		}
	}

	var id int64
	err := q.QueryRow(ctx, insertSQL(t.Name, columns), values...).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert into %q: %w", t.Name, err)
	}
	counts[t.Name]++

	if len(row.Children) == 0 {
		return nil
	}

	scope := maps.Clone(ancestors)
	scope[strings.ToLower(t.Name)] = id
	for _, child := range row.Children {
		if err := l.insertRow(ctx, q, child, "", scope, counts); err != nil {
			return err
		}
	}
	return nil
}

// insertSQL builds the parameterized insert. Identifiers are quoted: the
// model preserves the schema's mixed-case names.
func insertSQL(table string, columns []string) string {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO "`)
	sb.WriteString(table)
	sb.WriteString(`"`)

	if len(columns) == 0 {
		sb.WriteString(` DEFAULT VALUES RETURNING "`)
		sb.WriteString(xmlshred.IdentityColumnName)
		sb.WriteString(`"`)
		return sb.String()
	}

	sb.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(`"`)
		sb.WriteString(c)
		sb.WriteString(`"`)
	}
	sb.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("$")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	sb.WriteString(`) RETURNING "`)
	sb.WriteString(xmlshred.IdentityColumnName)
	sb.WriteString(`"`)
	return sb.String()
}
