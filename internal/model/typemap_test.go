package model

import "testing"

func TestMapXSDType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"xs:string", "TEXT"},
		{"xsd:string", "TEXT"},
		{"string", "TEXT"},
		{"xs:int", "INTEGER"},
		{"xs:integer", "BIGINT"},
		{"xs:long", "BIGINT"},
		{"xs:decimal", "NUMERIC"},
		{"xs:boolean", "BOOLEAN"},
		{"xs:date", "DATE"},
		{"xs:dateTime", "TIMESTAMP"},
		{"xs:double", "DOUBLE PRECISION"},
		{"xs:float", "REAL"},
		{"xs:base64Binary", "BYTEA"},
		{"xs:gMonth", "TEXT"}, // unmapped builtin degrades
		{"SomeCustomType", "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		if got := MapXSDType(tt.in); got != tt.want {
			t.Errorf("MapXSDType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
