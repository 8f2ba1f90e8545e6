package compiler

import (
	"strconv"

	"github.com/vvka-141/xmlshred/internal/model"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// splitOverflow moves data columns beyond the per-table ceiling into
// consecutively numbered extension tables. The split is purely mechanical:
// original column order is preserved across the primary table and the
// extension chain, and every extension table stays under the ceiling
// including its own identity and foreign-key columns.
func (b *Builder) splitOverflow() {
	// Extension tables are appended during the loop; snapshot the originals.
	originals := make([]*model.Table, len(b.tables))
	copy(originals, b.tables)

	for _, t := range originals {
		if len(t.Columns) <= b.opts.MaxColumns {
			continue
		}

		var sys, data []*model.Column
		for _, c := range t.Columns {
			if t.IsSystemColumn(c) {
				sys = append(sys, c)
			} else {
				data = append(data, c)
			}
		}

		keep := b.opts.MaxColumns - len(sys)
		if keep < 0 {
			keep = 0
		}
		if len(data) <= keep {
			continue
		}
		overflow := data[keep:]

		// Rebuild the primary table's column list in original order,
		// dropping the overflowing data columns.
		kept := make(map[*model.Column]bool, keep)
		for _, c := range data[:keep] {
			kept[c] = true
		}
		trimmed := t.Columns[:0]
		for _, c := range t.Columns {
			if t.IsSystemColumn(c) || kept[c] {
				trimmed = append(trimmed, c)
			}
		}
		t.Columns = trimmed

		b.log.Verbose("table %q exceeds %d columns, splitting %d columns into extension tables",
			t.Name, b.opts.MaxColumns, len(overflow))

		chunkSize := b.opts.MaxColumns - 2 // identity + foreign key per extension
		for i := 0; len(overflow) > 0; i++ {
			n := chunkSize
			if n > len(overflow) {
				n = len(overflow)
			}
			chunk := overflow[:n]
			overflow = overflow[n:]

			name := t.Name + xmlshred.ExtensionTableSuffix
			if i > 0 {
				name += strconv.Itoa(i + 1)
			}
			ext := b.newTable(name, t.Element, t.Name, nil)
			ext.Extension = true

			fkColumn := t.Name + xmlshred.IdentityColumnName
			ext.Columns = append(ext.Columns, &model.Column{
				Name:    fkColumn,
				SQLType: model.ForeignKeySQLType,
			})
			ext.ForeignKeys = append(ext.ForeignKeys, model.ForeignKey{
				Column:    fkColumn,
				RefTable:  t.Name,
				RefColumn: xmlshred.IdentityColumnName,
			})
			ext.Columns = append(ext.Columns, chunk...)
		}
	}
}
