// Package infer guesses a table design from a sample XML instance when no
// schema is available. It is a best-effort heuristic for exploration only;
// the load path always works from a compiled XSD.
package infer

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/xmlshred/internal/extract"
	"github.com/vvka-141/xmlshred/internal/model"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// maxDepth bounds the sample walk; samples deeper than this degrade to
// opaque columns like the compiler's flatten limit does.
const maxDepth = 8

// Inferrer builds a Definition from one sample document.
type Inferrer struct {
	logger xmlshred.Logger

	tables []*model.Table
	names  map[string]bool
	rank   int
}

// New creates an Inferrer.
func New(logger xmlshred.Logger) *Inferrer {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Inferrer{logger: logger, names: make(map[string]bool)}
}

// Infer derives a table design from the sample's element structure:
// repeated sibling names become repeating child tables, singleton branches
// flatten, leaves and attributes become typed columns guessed from their
// values.
func (in *Inferrer) Infer(sample *extract.Node) *model.Definition {
	root := in.newTable(sample.Name, sample.Name, "")
	root.Columns = append(root.Columns, &model.Column{
		Name:     xmlshred.ExternalIDColumnName,
		SQLType:  model.DefaultSQLType,
		Nullable: true,
	})
	in.fill(root, sample, nil, 0)
	return &model.Definition{Tables: in.tables, RootTable: root.Name}
}

func (in *Inferrer) newTable(name, element, parent string) *model.Table {
	final := name
	for i := 2; in.names[strings.ToLower(final)]; i++ {
		final = name + strconv.Itoa(i)
	}
	in.names[strings.ToLower(final)] = true
	t := &model.Table{
		Name:    final,
		Element: element,
		Parent:  parent,
		Rank:    in.rank,
		Columns: []*model.Column{{
			Name:     xmlshred.IdentityColumnName,
			SQLType:  model.IdentitySQLType,
			Identity: true,
		}},
	}
	in.rank++
	in.tables = append(in.tables, t)
	return t
}

func (in *Inferrer) fill(t *model.Table, el *extract.Node, prefix []string, depth int) {
	for _, name := range attrNames(el) {
		v, _ := el.Attr(name)
		t.Columns = append(t.Columns, &model.Column{
			Name:     prefixedName(prefix, name),
			SQLType:  guessType(v),
			Nullable: true,
			XMLPath:  appendPath(prefix, model.AttributeMarker+name),
		})
	}

	seen := make(map[string]bool)
	for _, child := range el.Children {
		if seen[child.Name] {
			continue
		}
		seen[child.Name] = true

		occurrences := el.ChildrenNamed(child.Name)
		repeated := len(occurrences) > 1
		leaf := len(child.Children) == 0 && len(child.Attrs) == 0

		switch {
		case repeated:
			in.addRepeatingTable(t, child, prefix, leaf)

		case leaf:
			t.Columns = append(t.Columns, &model.Column{
				Name:     prefixedName(prefix, child.Name),
				SQLType:  guessType(child.Text),
				Nullable: true,
				XMLPath:  appendPath(prefix, child.Name),
			})

		case depth >= maxDepth:
			in.logger.Verbose("sample deeper than %d levels at %q, degrading to opaque column", maxDepth, child.Name)
			t.Columns = append(t.Columns, &model.Column{
				Name:     prefixedName(prefix, child.Name),
				SQLType:  model.DefaultSQLType,
				Nullable: true,
				Raw:      true,
				XMLPath:  appendPath(prefix, child.Name),
			})

		default:
			in.fill(t, child, appendPath(prefix, child.Name), depth+1)
		}
	}
}

// addRepeatingTable creates a child table for a repeated sibling name. Its
// shape is inferred from the first occurrence only.
func (in *Inferrer) addRepeatingTable(t *model.Table, child *extract.Node, prefix []string, leaf bool) {
	ct := in.newTable(child.Name, child.Name, t.Name)
	ct.ContainerPath = slices.Clone(prefix)

	fkColumn := t.Name + xmlshred.IdentityColumnName
	ct.Columns = append(ct.Columns, &model.Column{Name: fkColumn, SQLType: model.ForeignKeySQLType})
	ct.ForeignKeys = append(ct.ForeignKeys, model.ForeignKey{
		Column: fkColumn, RefTable: t.Name, RefColumn: xmlshred.IdentityColumnName,
	})
	ct.Columns = append(ct.Columns, &model.Column{
		Name:        xmlshred.RepeatIndexColumnName,
		SQLType:     model.RepeatIndexSQLType,
		RepeatIndex: true,
	})

	if leaf {
		ct.Columns = append(ct.Columns, &model.Column{
			Name:     "Value",
			SQLType:  guessType(child.Text),
			Nullable: true,
			XMLPath:  []string{model.TextMarker},
		})
		return
	}
	in.fill(ct, child, nil, 0)
}

func prefixedName(prefix []string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return strings.Join(prefix, "_") + "_" + name
}

func appendPath(prefix []string, final string) []string {
	path := make([]string, 0, len(prefix)+1)
	path = append(path, prefix...)
	return append(path, final)
}

// attrNames returns attribute names sorted, since the node map does not
// preserve document order.
func attrNames(el *extract.Node) []string {
	if len(el.Attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(el.Attrs))
	for k := range el.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// guessType picks a column type from a sample value. Empty samples stay TEXT
// since a single document cannot prove anything stronger.
func guessType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.DefaultSQLType
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "BIGINT"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return "NUMERIC"
	}
	if v == "true" || v == "false" {
		return "BOOLEAN"
	}
	return model.DefaultSQLType
}
