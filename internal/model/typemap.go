package model

import "strings"

// SQL types used for system columns.
const (
	IdentitySQLType    = "BIGINT"
	RepeatIndexSQLType = "INTEGER"
	ForeignKeySQLType  = "BIGINT"
	DefaultSQLType     = "TEXT"
)

// builtinTypes maps XSD built-in simple types to PostgreSQL column types.
// Anything not listed degrades to TEXT, matching the compiler's general
// policy of preferring coverage over strictness.
var builtinTypes = map[string]string{
	"string":             "TEXT",
	"normalizedString":   "TEXT",
	"token":              "TEXT",
	"anyURI":             "TEXT",
	"QName":              "TEXT",
	"NMTOKEN":            "TEXT",
	"NCName":             "TEXT",
	"ID":                 "TEXT",
	"IDREF":              "TEXT",
	"language":           "TEXT",
	"boolean":            "BOOLEAN",
	"decimal":            "NUMERIC",
	"integer":            "BIGINT",
	"nonNegativeInteger": "BIGINT",
	"nonPositiveInteger": "BIGINT",
	"negativeInteger":    "BIGINT",
	"positiveInteger":    "BIGINT",
	"long":               "BIGINT",
	"unsignedLong":       "BIGINT",
	"int":                "INTEGER",
	"unsignedInt":        "BIGINT",
	"short":              "SMALLINT",
	"unsignedShort":      "INTEGER",
	"byte":               "SMALLINT",
	"unsignedByte":       "SMALLINT",
	"float":              "REAL",
	"double":             "DOUBLE PRECISION",
	"date":               "DATE",
	"dateTime":           "TIMESTAMP",
	"time":               "TIME",
	"gYear":              "INTEGER",
	"duration":           "TEXT",
	"base64Binary":       "BYTEA",
	"hexBinary":          "BYTEA",
}

// MapXSDType returns the PostgreSQL type for an XSD built-in type name.
// The name may carry a namespace prefix ("xs:string"); only the local part
// is considered. Unknown types map to TEXT.
func MapXSDType(name string) string {
	local := name
	if i := strings.LastIndex(name, ":"); i >= 0 {
		local = name[i+1:]
	}
	if t, ok := builtinTypes[local]; ok {
		return t
	}
	return DefaultSQLType
}
