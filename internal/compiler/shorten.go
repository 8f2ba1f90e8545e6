package compiler

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// abbreviations is the ordered whole-word abbreviation table applied to
// over-long column names, largest expected savings first. Words match
// case-insensitively against underscore-separated name segments.
var abbreviations = []struct {
	Word string
	Abbr string
}{
	{"Identification", "Ident"},
	{"Administration", "Admin"},
	{"Classification", "Class"},
	{"Organization", "Org"},
	{"Information", "Info"},
	{"Transaction", "Txn"},
	{"Description", "Desc"},
	{"Percentage", "Pct"},
	{"Additional", "Addl"},
	{"Reference", "Ref"},
	{"Quantity", "Qty"},
	{"Address", "Addr"},
	{"Document", "Doc"},
	{"Category", "Cat"},
	{"Number", "Num"},
	{"Amount", "Amt"},
}

// shortenColumnNames rewrites any column name exceeding the identifier limit
// and re-checks case-insensitive uniqueness per table afterwards. Table
// names are never touched, an asymmetry preserved from the original design.
func (b *Builder) shortenColumnNames() {
	for _, t := range b.tables {
		seen := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			name := c.Name
			if len(name) > b.opts.MaxIdentifier {
				name = shortenIdentifier(c.Name, b.opts.MaxIdentifier)
				b.log.Verbose("column %q.%q shortened to %q", t.Name, c.Name, name)
			}
			if seen[strings.ToLower(name)] {
				name = disambiguate(name, seen, b.opts.MaxIdentifier)
				b.log.Verbose("column name collision in %q, renamed to %q", t.Name, name)
			}
			seen[strings.ToLower(name)] = true

			if name != c.Name {
				for i := range t.ForeignKeys {
					if strings.EqualFold(t.ForeignKeys[i].Column, c.Name) {
						t.ForeignKeys[i].Column = name
					}
				}
				c.Name = name
			}
		}
	}
}

// shortenIdentifier applies abbreviations until the name fits; when that is
// insufficient, it truncates and appends a short stable hash of the original
// name for disambiguation.
func shortenIdentifier(name string, limit int) string {
	out := name
	for _, ab := range abbreviations {
		if len(out) <= limit {
			return out
		}
		out = replaceWord(out, ab.Word, ab.Abbr)
	}
	if len(out) <= limit {
		return out
	}

	hash := stableHash(name)
	keep := limit - len(hash) - 1
	if keep < 0 {
		keep = 0
	}
	return out[:keep] + "_" + hash
}

// replaceWord substitutes whole underscore-separated segments, preserving
// everything else.
func replaceWord(name, word, abbr string) string {
	segments := strings.Split(name, "_")
	changed := false
	for i, s := range segments {
		if strings.EqualFold(s, word) {
			segments[i] = abbr
			changed = true
		}
	}
	if !changed {
		return name
	}
	return strings.Join(segments, "_")
}

// disambiguate appends a numeric suffix, trimming the base further if needed
// to stay within the identifier limit.
func disambiguate(name string, seen map[string]bool, limit int) string {
	for i := 2; ; i++ {
		suffix := strconv.Itoa(i)
		candidate := name
		if len(candidate)+len(suffix) > limit {
			candidate = candidate[:limit-len(suffix)]
		}
		candidate += suffix
		if !seen[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// stableHash returns an 8-hex-digit FNV-1a hash of the original name, so the
// same schema always shortens to the same identifiers.
func stableHash(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%08x", h.Sum32())
}
