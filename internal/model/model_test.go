package model

import "testing"

func sampleTable() *Table {
	return &Table{
		Name:   "LineItem",
		Parent: "Order",
		Columns: []*Column{
			{Name: "Id", SQLType: IdentitySQLType, Identity: true},
			{Name: "OrderId", SQLType: ForeignKeySQLType},
			{Name: "RepeatIndex", SQLType: RepeatIndexSQLType, RepeatIndex: true},
			{Name: "Sku", SQLType: "TEXT", XMLPath: []string{"Sku"}},
		},
		ForeignKeys: []ForeignKey{{Column: "OrderId", RefTable: "Order", RefColumn: "Id"}},
	}
}

func TestTable_SystemColumns(t *testing.T) {
	tab := sampleTable()

	if got := tab.SystemColumns(); got != 3 {
		t.Errorf("SystemColumns() = %d, want 3", got)
	}
	if !tab.IsSystemColumn(tab.Column("orderid")) {
		t.Error("foreign-key column should be a system column")
	}
	if tab.IsSystemColumn(tab.Column("Sku")) {
		t.Error("data column should not be a system column")
	}
	if !tab.HasRepeatIndex() {
		t.Error("HasRepeatIndex() = false, want true")
	}
}

func TestTable_ColumnLookupIsCaseInsensitive(t *testing.T) {
	tab := sampleTable()
	if tab.Column("SKU") == nil {
		t.Error("Column lookup should be case-insensitive")
	}
	if tab.Column("Missing") != nil {
		t.Error("Column lookup for absent name should be nil")
	}
}

func TestDefinition_ChildTables(t *testing.T) {
	def := &Definition{
		Tables: []*Table{
			{Name: "Order"},
			{Name: "Customer", Parent: "Order"},
			{Name: "LineItem", Parent: "Order"},
			{Name: "LineItem_Ext", Parent: "LineItem", Extension: true},
		},
		RootTable: "Order",
	}

	children := def.ChildTables("order")
	if len(children) != 2 {
		t.Fatalf("ChildTables(order) = %d tables, want 2", len(children))
	}
	if children[0].Name != "Customer" || children[1].Name != "LineItem" {
		t.Errorf("children out of creation order: %s, %s", children[0].Name, children[1].Name)
	}
}

func TestNewRow(t *testing.T) {
	row := NewRow("Order")
	if row.RepeatIndex != -1 {
		t.Errorf("RepeatIndex = %d, want -1", row.RepeatIndex)
	}
	if row.Values == nil {
		t.Error("Values map should be initialized")
	}
}
