package ddl

import (
	"testing"

	"github.com/vvka-141/xmlshred/internal/model"
)

func TestEmit(t *testing.T) {
	def := &model.Definition{
		RootTable: "Order",
		Tables: []*model.Table{
			{
				Name: "LineItem",
				Rank: 1,
				Columns: []*model.Column{
					{Name: "Id", SQLType: "BIGINT", Identity: true},
					{Name: "OrderId", SQLType: "BIGINT"},
					{Name: "RepeatIndex", SQLType: "INTEGER", RepeatIndex: true},
					{Name: "Sku", SQLType: "TEXT", Nullable: true},
				},
				ForeignKeys: []model.ForeignKey{
					{Column: "OrderId", RefTable: "Order", RefColumn: "Id"},
				},
			},
			{
				Name: "Order",
				Rank: 0,
				Columns: []*model.Column{
					{Name: "Id", SQLType: "BIGINT", Identity: true},
					{Name: "currency", SQLType: "TEXT"},
				},
			},
		},
	}

	want := `CREATE TABLE "Order" (
    "Id" BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    "currency" TEXT NOT NULL
);

CREATE TABLE "LineItem" (
    "Id" BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    "OrderId" BIGINT NOT NULL,
    "RepeatIndex" INTEGER NOT NULL,
    "Sku" TEXT,
    CONSTRAINT "FK_LineItem_OrderId" FOREIGN KEY ("OrderId") REFERENCES "Order" ("Id")
);
`

	if got := Emit(def); got != want {
		t.Errorf("Emit() =\n%s\nwant\n%s", got, want)
	}
}

func TestEmit_Deterministic(t *testing.T) {
	def := &model.Definition{
		Tables: []*model.Table{
			{Name: "A", Rank: 0, Columns: []*model.Column{{Name: "Id", SQLType: "BIGINT", Identity: true}}},
			{Name: "B", Rank: 1, Columns: []*model.Column{{Name: "Id", SQLType: "BIGINT", Identity: true}}},
		},
	}
	if Emit(def) != Emit(def) {
		t.Error("Emit is not deterministic")
	}
}
