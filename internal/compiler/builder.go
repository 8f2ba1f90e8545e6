// Package compiler walks a resolved XSD type graph and produces the
// relational table design plus the ordered message structure that the
// extractor later replays positionally against instance documents.
package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/vvka-141/xmlshred/internal/model"
	"github.com/vvka-141/xmlshred/internal/xsd"
	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// attrGroupDepthLimit bounds nested attributeGroup ref chains.
const attrGroupDepthLimit = 8

// Builder compiles one root element into a Definition. It owns all mutable
// compilation state (creation-rank counter, created-table-name set), so a
// fresh Builder is needed per compile.
//
// Thread-Safety: NOT safe for concurrent use. Create separate instances.
type Builder struct {
	dir  *xsd.Directory
	log  xmlshred.Logger
	opts xmlshred.CompileOptions

	tables  []*model.Table
	names   map[string]bool // lower-cased created table names
	message []*model.Slot
	rank    int
}

// NewBuilder creates a Builder over an indexed schema set.
// Panics on nil dependencies: those are programmer errors that should fail
// loudly at startup, not surface as nil dereferences mid-compile.
func NewBuilder(dir *xsd.Directory, logger xmlshred.Logger, opts xmlshred.CompileOptions) *Builder {
	if dir == nil {
		panic("dir cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Builder{
		dir:   dir,
		log:   logger,
		opts:  opts.WithDefaults(),
		names: make(map[string]bool),
	}
}

// walkState is the per-branch expansion context. visited is copy-on-extend:
// sibling branches must not suppress each other's independent recursion, so
// the map is cloned, never shared, when a branch descends into a named type.
type walkState struct {
	doc      *xsd.Document
	visited  map[xsd.QName]bool
	depth    int
	prefix   []string // element descent from the owning table's anchor
	topLevel bool     // expanding the root element's direct content
	optional bool     // inside an optional wrapper or a choice branch
}

func (s walkState) withType(ct *xsd.ComplexType) walkState {
	next := s
	next.depth++
	if ct.Name != "" {
		next.visited = maps.Clone(s.visited)
		if next.visited == nil {
			next.visited = make(map[xsd.QName]bool)
		}
		next.visited[typeKey(ct)] = true
	}
	if ct.Doc != nil {
		next.doc = ct.Doc
	}
	return next
}

func typeKey(ct *xsd.ComplexType) xsd.QName {
	space := ""
	if ct.Doc != nil {
		space = ct.Doc.TargetNamespace
	}
	return xsd.QName{Space: space, Local: ct.Name}
}

// Build compiles the named top-level element. Only a missing or unnamed root
// element is fatal; every other anomaly degrades to an opaque column or is
// skipped so that unusual schemas still produce a usable design.
func (b *Builder) Build(rootName string) (*model.Definition, error) {
	root := b.dir.TopLevelElement(rootName)
	if root == nil {
		return nil, fmt.Errorf("no top-level element %q in schema set: %w", rootName, xmlshred.ErrRootElementNotFound)
	}
	if root.Name == "" {
		return nil, xmlshred.ErrUnnamedRootElement
	}

	rootTable := b.newTable(root.Name, root.Name, "", nil)
	rootTable.Columns = append(rootTable.Columns, &model.Column{
		Name:     xmlshred.ExternalIDColumnName,
		SQLType:  model.DefaultSQLType,
		Nullable: true,
	})

	st := walkState{doc: root.Doc, topLevel: true}
	ct := b.complexTypeOf(root)
	if ct == nil {
		b.log.Verbose("root element %q has no resolvable complex type, compiling empty root table", root.Name)
	} else {
		b.expandType(ct, rootTable, st.withType(ct))
	}

	b.splitOverflow()
	b.shortenColumnNames()

	return &model.Definition{
		Tables:    b.tables,
		Message:   b.message,
		RootTable: rootTable.Name,
	}, nil
}

// newTable registers a table under a unique (case-insensitive) name and
// gives it the identity column and the next creation rank.
func (b *Builder) newTable(name, element, parent string, containerPath []string) *model.Table {
	final := name
	for i := 2; b.names[strings.ToLower(final)]; i++ {
		final = name + strconv.Itoa(i)
	}
	b.names[strings.ToLower(final)] = true

	t := &model.Table{
		Name:          final,
		Element:       element,
		Parent:        parent,
		ContainerPath: slices.Clone(containerPath),
		Rank:          b.rank,
		Columns: []*model.Column{{
			Name:     xmlshred.IdentityColumnName,
			SQLType:  model.IdentitySQLType,
			Identity: true,
		}},
	}
	b.rank++
	b.tables = append(b.tables, t)
	return t
}

func (b *Builder) nameTaken(name string) bool {
	return b.names[strings.ToLower(name)]
}

// complexTypeOf resolves an element's complex type, inline or by reference.
// Returns nil for simple-typed and untyped elements.
func (b *Builder) complexTypeOf(el *xsd.ElementDecl) *xsd.ComplexType {
	if el.Inline != nil {
		return el.Inline
	}
	if el.Type == "" || el.InlineSimple != nil {
		return nil
	}
	if b.dir.IsBuiltin(el.Type, el.Doc) {
		return nil
	}
	return b.dir.ComplexType(el.Type, el.Doc)
}

// expandType folds one complex type's content and attributes into table t.
// Extension bases expand first so inherited content precedes the derived
// type's own, matching declared instance order.
func (b *Builder) expandType(ct *xsd.ComplexType, t *model.Table, st walkState) {
	if ct == nil {
		return
	}

	if ct.Base != "" && !ct.SimpleContent {
		base := b.dir.ComplexType(ct.Base, ct.Doc)
		switch {
		case base == nil:
			b.log.Verbose("unresolvable extension base %q on type %q, base content skipped", ct.Base, ct.Name)
		case st.visited[typeKey(base)]:
			b.log.Verbose("extension base cycle at type %q, base content skipped", base.Name)
		case st.depth >= b.opts.MaxRecursionDepth:
			b.log.Verbose("recursion ceiling reached expanding base %q", base.Name)
		default:
			b.expandType(base, t, st.withType(base))
		}
	}

	if ct.SimpleContent {
		b.addColumn(t, &model.Column{
			Name:     prefixed(st.prefix, "Value"),
			SQLType:  model.MapXSDType(ct.Base),
			Nullable: true,
			XMLPath:  pathTo(st.prefix, model.TextMarker),
		})
	}

	counts := make(map[string]int)
	b.walkItems(ct.Content, t, st, counts)

	for _, a := range ct.Attributes {
		b.addAttributeColumn(a, t, st)
	}
	for _, ref := range ct.AttrGroupRefs {
		b.addAttributeGroup(ref, t, st, 0)
	}
}

// walkItems descends a content-model particle. Nested singleton groups
// flatten into the same level, sharing the duplicate-name counter, since
// their elements are siblings in instance documents.
func (b *Builder) walkItems(p xsd.Particle, t *model.Table, st walkState, counts map[string]int) {
	switch g := p.(type) {
	case nil:
		return

	case *xsd.ElementDecl:
		b.handleElement(g, t, st, counts)

	case *xsd.Sequence:
		if repeatingGroup(g.MaxOccurs) {
			b.handleRepeatingGroup(g.Items, t, st)
			return
		}
		inner := st
		if g.MinOccurs == 0 {
			inner.optional = true
		}
		for _, item := range g.Items {
			b.walkItems(item, t, inner, counts)
		}

	case *xsd.Choice:
		if repeatingGroup(g.MaxOccurs) {
			b.handleRepeatingGroup(g.Items, t, st)
			return
		}
		// At most one branch appears per instance, so every branch is optional.
		inner := st
		inner.optional = true
		for _, item := range g.Items {
			b.walkItems(item, t, inner, counts)
		}
	}
}

func repeatingGroup(maxOccurs int) bool {
	return maxOccurs == xsd.Unbounded || maxOccurs > 1
}

// handleElement applies the per-child decision table: repeating content gets
// a child table, top-level singletons get a 1:1 segment table, nested
// singletons flatten, simple types become columns.
func (b *Builder) handleElement(el *xsd.ElementDecl, t *model.Table, st walkState, counts map[string]int) {
	decl := el
	if el.Ref != "" {
		resolved := b.dir.TopLevelElement(el.Ref)
		if resolved == nil {
			b.log.Verbose("unresolvable element ref %q, degrading to opaque column", el.Ref)
			name := b.occurrenceName(localName(el.Ref), counts)
			b.addColumn(t, &model.Column{
				Name:     prefixed(st.prefix, name),
				SQLType:  model.DefaultSQLType,
				Nullable: true,
				Raw:      true,
				XMLPath:  pathTo(st.prefix, localName(el.Ref)),
			})
			return
		}
		decl = resolved
	}
	if decl.Name == "" {
		b.log.Verbose("skipping unnamed element declaration in table %q", t.Name)
		return
	}

	xmlName := decl.Name
	name := b.occurrenceName(xmlName, counts)
	repeating := el.Repeats() || decl.Repeats()
	optional := st.optional || el.MinOccurs == 0

	ct := b.complexTypeOf(decl)
	if ct == nil {
		b.handleSimpleElement(decl, t, st, name, xmlName, repeating, optional)
		return
	}

	switch {
	case repeating:
		if b.blocked(ct, st) {
			b.log.Verbose("type cycle or depth limit at repeating element %q, skipped", xmlName)
			return
		}
		child := b.buildChildTable(name, xmlName, t, st, true, ct, nil)
		if st.topLevel {
			b.message = append(b.message, &model.Slot{Element: xmlName, Table: child.Name, Repeating: true})
		}

	case st.topLevel:
		// Top-level singleton segments keep their own 1:1 table so the
		// message-level structure stays visible.
		if b.blocked(ct, st) {
			b.log.Verbose("type cycle or depth limit at segment %q, skipped", xmlName)
			return
		}
		child := b.buildChildTable(name, xmlName, t, st, false, ct, nil)
		b.message = append(b.message, &model.Slot{Element: xmlName, Table: child.Name})

	default:
		b.flattenElement(ct, t, st, name, xmlName, optional)
	}
}

// blocked reports whether descending into ct would re-enter a named type on
// this branch or exceed the absolute recursion ceiling.
func (b *Builder) blocked(ct *xsd.ComplexType, st walkState) bool {
	if st.depth >= b.opts.MaxRecursionDepth {
		return true
	}
	return ct.Name != "" && st.visited[typeKey(ct)]
}

// flattenElement folds a nested singleton complex element's fields into the
// current table as prefixed columns, degrading to a single opaque column at
// the flatten-depth limit or on a type cycle.
func (b *Builder) flattenElement(ct *xsd.ComplexType, t *model.Table, st walkState, name, xmlName string, optional bool) {
	if b.blocked(ct, st) || len(st.prefix) >= b.opts.FlattenDepth {
		b.addColumn(t, &model.Column{
			Name:     prefixed(st.prefix, name),
			SQLType:  model.DefaultSQLType,
			Nullable: true,
			Raw:      true,
			XMLPath:  pathTo(st.prefix, xmlName),
		})
		return
	}

	inner := st.withType(ct)
	inner.prefix = append(slices.Clip(st.prefix), name)
	inner.topLevel = false
	inner.optional = optional
	b.expandType(ct, t, inner)
}

// handleSimpleElement emits one typed column, or a child table with a Value
// column when the element repeats.
func (b *Builder) handleSimpleElement(el *xsd.ElementDecl, t *model.Table, st walkState, name, xmlName string, repeating, optional bool) {
	sqlType := b.simpleSQLType(el)

	if repeating {
		child := b.buildChildTable(name, xmlName, t, st, true, nil, nil)
		child.Columns = append(child.Columns, &model.Column{
			Name:     "Value",
			SQLType:  sqlType,
			Nullable: true,
			XMLPath:  []string{model.TextMarker},
		})
		if st.topLevel {
			b.message = append(b.message, &model.Slot{Element: xmlName, Table: child.Name, Repeating: true})
		}
		return
	}

	b.addColumn(t, &model.Column{
		Name:     prefixed(st.prefix, name),
		SQLType:  sqlType,
		Nullable: optional,
		XMLPath:  pathTo(st.prefix, xmlName),
	})
}

// simpleSQLType maps an element's simple type to a column type, degrading to
// TEXT for anything unresolvable.
func (b *Builder) simpleSQLType(el *xsd.ElementDecl) string {
	if el.InlineSimple != nil {
		if base := b.dir.ResolveBuiltinBase(el.InlineSimple); base != "" {
			return model.MapXSDType(base)
		}
		return model.DefaultSQLType
	}
	if el.Type == "" {
		return model.DefaultSQLType
	}
	if b.dir.IsBuiltin(el.Type, el.Doc) {
		return model.MapXSDType(el.Type)
	}
	if named := b.dir.SimpleType(el.Type, el.Doc); named != nil {
		if base := b.dir.ResolveBuiltinBase(named); base != "" {
			return model.MapXSDType(base)
		}
	}
	b.log.Verbose("unresolvable type %q on element %q, degrading to TEXT", el.Type, el.Name)
	return model.DefaultSQLType
}

// buildChildTable creates a table linked to parent by foreign key and
// expands ct into it. Repeating tables get the repeat-index column. lead is
// set for group trailing segments, which carry a second foreign key to the
// group's lead table.
func (b *Builder) buildChildTable(name, element string, parent *model.Table, st walkState, repeating bool, ct *xsd.ComplexType, lead *model.Table) *model.Table {
	child := b.newTable(name, element, parent.Name, st.prefix)

	fkColumn := parent.Name + xmlshred.IdentityColumnName
	child.Columns = append(child.Columns, &model.Column{
		Name:    fkColumn,
		SQLType: model.ForeignKeySQLType,
	})
	child.ForeignKeys = append(child.ForeignKeys, model.ForeignKey{
		Column:    fkColumn,
		RefTable:  parent.Name,
		RefColumn: xmlshred.IdentityColumnName,
	})

	if lead != nil {
		leadColumn := lead.Name + xmlshred.IdentityColumnName
		child.Columns = append(child.Columns, &model.Column{
			Name:    leadColumn,
			SQLType: model.ForeignKeySQLType,
		})
		child.ForeignKeys = append(child.ForeignKeys, model.ForeignKey{
			Column:    leadColumn,
			RefTable:  lead.Name,
			RefColumn: xmlshred.IdentityColumnName,
		})
		child.GroupLead = lead.Name
	}

	if repeating {
		child.Columns = append(child.Columns, &model.Column{
			Name:        xmlshred.RepeatIndexColumnName,
			SQLType:     model.RepeatIndexSQLType,
			RepeatIndex: true,
		})
	}

	if ct != nil {
		inner := st.withType(ct)
		inner.prefix = nil
		inner.topLevel = false
		inner.optional = false
		b.expandType(ct, child, inner)
	}
	return child
}

// handleRepeatingGroup compiles an anonymous repeating model group. With two
// or more named segments it becomes a lead/trailing group: the lead table
// links to the structural parent, every trailing table links to both the
// parent and the lead, modeling one-lead-to-many-trailing per occurrence.
// A single-segment group collapses to a plain repeating element.
func (b *Builder) handleRepeatingGroup(items []xsd.Particle, t *model.Table, st walkState) {
	var elems []*xsd.ElementDecl
	for _, item := range items {
		el, ok := item.(*xsd.ElementDecl)
		if !ok {
			b.log.Verbose("nested model group inside repeating group in table %q skipped", t.Name)
			continue
		}
		if el.Ref != "" {
			resolved := b.dir.TopLevelElement(el.Ref)
			if resolved == nil {
				b.log.Verbose("unresolvable element ref %q inside repeating group, skipped", el.Ref)
				continue
			}
			el = resolved
		}
		if el.Name == "" {
			continue
		}
		elems = append(elems, el)
	}
	if len(elems) == 0 {
		return
	}

	if len(elems) == 1 {
		counts := make(map[string]int)
		forced := *elems[0]
		forced.MaxOccurs = xsd.Unbounded
		b.handleElement(&forced, t, st, counts)
		return
	}

	if !st.topLevel {
		// Away from the message level there is no positional slot to anchor
		// a group on; each segment becomes an independent repeating child.
		counts := make(map[string]int)
		for _, el := range elems {
			forced := *el
			forced.MaxOccurs = xsd.Unbounded
			b.handleElement(&forced, t, st, counts)
		}
		return
	}

	leadDecl := elems[0]
	leadCT := b.complexTypeOf(leadDecl)
	if leadCT != nil && b.blocked(leadCT, st) {
		b.log.Verbose("type cycle at group lead %q, group skipped", leadDecl.Name)
		return
	}
	leadTable := b.buildChildTable(leadDecl.Name, leadDecl.Name, t, st, true, leadCT, nil)
	slot := &model.Slot{Element: leadDecl.Name, Table: leadTable.Name, Repeating: true, IsGroup: true}

	for _, el := range elems[1:] {
		tableName := el.Name
		if b.nameTaken(tableName) {
			tableName = leadTable.Name + el.Name
		}
		ct := b.complexTypeOf(el)
		if ct != nil && b.blocked(ct, st) {
			b.log.Verbose("type cycle at group segment %q, segment skipped", el.Name)
			continue
		}
		trailing := b.buildChildTable(tableName, el.Name, t, st, true, ct, leadTable)
		slot.Children = append(slot.Children, &model.Slot{
			Element:   el.Name,
			Table:     trailing.Name,
			Repeating: el.Repeats(),
		})
	}

	b.message = append(b.message, slot)
}

// addAttributeColumn emits one column per resolved attribute. Nullability
// derives from use="required".
func (b *Builder) addAttributeColumn(a *xsd.Attribute, t *model.Table, st walkState) {
	if a == nil || a.Name == "" || a.Use == "prohibited" {
		return
	}
	sqlType := model.DefaultSQLType
	if a.Type != "" {
		if b.dir.IsBuiltin(a.Type, a.Doc) {
			sqlType = model.MapXSDType(a.Type)
		} else if named := b.dir.SimpleType(a.Type, a.Doc); named != nil {
			if base := b.dir.ResolveBuiltinBase(named); base != "" {
				sqlType = model.MapXSDType(base)
			}
		}
	}
	b.addColumn(t, &model.Column{
		Name:     prefixed(st.prefix, a.Name),
		SQLType:  sqlType,
		Nullable: st.optional || !a.Required(),
		XMLPath:  pathTo(st.prefix, model.AttributeMarker+a.Name),
	})
}

func (b *Builder) addAttributeGroup(ref string, t *model.Table, st walkState, depth int) {
	if depth >= attrGroupDepthLimit {
		b.log.Verbose("attributeGroup ref chain too deep at %q, skipped", ref)
		return
	}
	ag := b.dir.AttributeGroup(ref)
	if ag == nil {
		b.log.Verbose("unresolvable attributeGroup ref %q, skipped", ref)
		return
	}
	for _, a := range ag.Attributes {
		b.addAttributeColumn(a, t, st)
	}
	for _, nested := range ag.Refs {
		b.addAttributeGroup(nested, t, st, depth+1)
	}
}

func (b *Builder) addColumn(t *model.Table, c *model.Column) {
	t.Columns = append(t.Columns, c)
}

// occurrenceName disambiguates duplicate element names at the same level by
// appending the 1-based occurrence number to every occurrence after the first.
func (b *Builder) occurrenceName(name string, counts map[string]int) string {
	counts[strings.ToLower(name)]++
	n := counts[strings.ToLower(name)]
	if n == 1 {
		return name
	}
	return name + strconv.Itoa(n)
}

func prefixed(prefix []string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return strings.Join(prefix, "_") + "_" + name
}

func pathTo(prefix []string, final string) []string {
	path := make([]string, 0, len(prefix)+1)
	path = append(path, prefix...)
	return append(path, final)
}

func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
