// Package model holds the shared data model produced by the schema compiler
// and consumed by the extractor, the loader, and the DDL emitter.
//
// Definitions (tables, columns, message slots) are built once per schema
// version and are immutable afterwards. Rows are built and consumed once per
// document.
package model

import "strings"

// AttributeMarker prefixes the final segment of a column's XML path when the
// value is read from an attribute instead of a child element.
const AttributeMarker = "@"

// TextMarker as the final segment of a column's XML path reads the text
// content of the element reached by the preceding segments (or of the
// table's anchor element when it is the only segment).
const TextMarker = "#text"

// Column is one generated column with the XML path it is extracted from.
type Column struct {
	// Name is the final column name, unique within its table
	// (case-insensitive) after identifier shortening.
	Name string

	// SQLType is the mapped PostgreSQL type.
	SQLType string

	// Nullable is false for required content (minOccurs >= 1 elements,
	// use="required" attributes) and for system columns.
	Nullable bool

	// Identity marks the generated primary-key column.
	Identity bool

	// RepeatIndex marks the zero-based ordinal column on repeating tables.
	RepeatIndex bool

	// Raw marks an opaque column that captures an entire XML subtree as
	// text, used where flattening hit its depth limit or a type cycle.
	Raw bool

	// XMLPath is the ordered element-name descent from the owning table's
	// anchor element. The final segment may carry AttributeMarker. Empty
	// for system columns (identity, foreign keys, repeat index).
	XMLPath []string
}

// ForeignKey links a child table column to an ancestor table's identity column.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table is one generated relation.
type Table struct {
	// Name is unique within the definition (case-insensitive).
	Name string

	// Element is the XML element this table anchors on, empty for
	// extension tables.
	Element string

	// Parent names the structurally containing table, empty for the root.
	Parent string

	// ContainerPath lists intermediate singleton wrapper elements to
	// descend through (from the parent table's anchor) before the repeating
	// Element occurrences are found.
	ContainerPath []string

	// Rank is the monotonic creation order, used for deterministic emission.
	Rank int

	// Extension marks an overflow table produced by column splitting. Its
	// columns are extracted from the same element as the base table.
	Extension bool

	// GroupLead names the lead-segment table when this table is a trailing
	// segment of a repeating group; it then carries a second foreign key.
	GroupLead string

	Columns     []*Column
	ForeignKeys []ForeignKey
}

// Column returns the column with the given name (case-insensitive), or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// SystemColumns counts identity, foreign-key, and repeat-index columns.
func (t *Table) SystemColumns() int {
	n := 0
	for _, c := range t.Columns {
		if t.IsSystemColumn(c) {
			n++
		}
	}
	return n
}

// IsSystemColumn reports whether c is an identity, foreign-key, or
// repeat-index column of t.
func (t *Table) IsSystemColumn(c *Column) bool {
	if c.Identity || c.RepeatIndex {
		return true
	}
	for _, fk := range t.ForeignKeys {
		if strings.EqualFold(fk.Column, c.Name) {
			return true
		}
	}
	return false
}

// HasRepeatIndex reports whether the table carries a repeat-index column.
func (t *Table) HasRepeatIndex() bool {
	for _, c := range t.Columns {
		if c.RepeatIndex {
			return true
		}
	}
	return false
}

// Slot is one expected top-level content item of a conforming document.
// Slots are matched positionally, in declaration order, never by name lookup.
type Slot struct {
	// Element is the XML element name (for groups, the lead segment's name).
	Element string

	// Table is the target table (for groups, the lead segment's table).
	Table string

	// Repeating marks slots that consume a maximal run of consecutive
	// matching elements.
	Repeating bool

	// IsGroup marks a repeating group of heterogeneous segments. Children
	// holds the trailing-segment slots in declaration order.
	IsGroup  bool
	Children []*Slot
}

// Definition is the complete compiled output for one schema version.
type Definition struct {
	Tables    []*Table
	Message   []*Slot
	RootTable string
}

// Table returns the table with the given name (case-insensitive), or nil.
func (d *Definition) Table(name string) *Table {
	for _, t := range d.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// ChildTables returns the tables whose Parent is name, in creation order.
func (d *Definition) ChildTables(name string) []*Table {
	var out []*Table
	for _, t := range d.Tables {
		if strings.EqualFold(t.Parent, name) {
			out = append(out, t)
		}
	}
	return out
}

// Row is one extracted record destined for a single table. Rows own no
// cross-document state; a fresh tree is produced per document.
type Row struct {
	Table string

	// Values maps column name to extracted text. Absent columns are simply
	// missing from the map and are omitted from the insert.
	Values map[string]string

	// RepeatIndex is the zero-based document-order ordinal for rows of
	// repeating tables, -1 when not applicable.
	RepeatIndex int

	// Children holds nested rows: repeating child fields, extension-table
	// rows, and group trailing-segment rows.
	Children []*Row
}

// NewRow creates an empty row for the named table with no repeat index.
func NewRow(table string) *Row {
	return &Row{Table: table, Values: make(map[string]string), RepeatIndex: -1}
}
