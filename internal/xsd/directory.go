package xsd

import (
	"strings"

	"github.com/vvka-141/xmlshred/pkg/xmlshred"
)

// Directory indexes every named type, top-level element, and attribute group
// across a loaded schema set. Several documents may share one target
// namespace via inclusion; the directory flattens them into one index.
//
// Resolution is strict first (prefix map, then the referencing document's
// own target namespace). When strict resolution misses, the directory falls
// back to a namespace-agnostic search by local name and logs the leniency,
// since it can bind to a same-named type from the wrong namespace.
type Directory struct {
	complexTypes map[QName]*ComplexType
	simpleTypes  map[QName]*SimpleType

	complexByLocal map[string]*ComplexType
	simpleByLocal  map[string]*SimpleType

	elements   map[string]*ElementDecl
	attrGroups map[string]*AttributeGroup

	logger xmlshred.Logger
}

// NewDirectory builds the index over the given documents. First declaration
// wins on duplicate names, keeping resolution deterministic in load order.
func NewDirectory(docs []*Document, logger xmlshred.Logger) *Directory {
	d := &Directory{
		complexTypes:   make(map[QName]*ComplexType),
		simpleTypes:    make(map[QName]*SimpleType),
		complexByLocal: make(map[string]*ComplexType),
		simpleByLocal:  make(map[string]*SimpleType),
		elements:       make(map[string]*ElementDecl),
		attrGroups:     make(map[string]*AttributeGroup),
		logger:         logger,
	}

	for _, doc := range docs {
		for _, ct := range doc.ComplexTypes {
			if ct.Name == "" {
				continue
			}
			key := QName{Space: doc.TargetNamespace, Local: ct.Name}
			if _, ok := d.complexTypes[key]; !ok {
				d.complexTypes[key] = ct
			}
			if _, ok := d.complexByLocal[ct.Name]; !ok {
				d.complexByLocal[ct.Name] = ct
			}
		}
		for _, st := range doc.SimpleTypes {
			if st.Name == "" {
				continue
			}
			key := QName{Space: doc.TargetNamespace, Local: st.Name}
			if _, ok := d.simpleTypes[key]; !ok {
				d.simpleTypes[key] = st
			}
			if _, ok := d.simpleByLocal[st.Name]; !ok {
				d.simpleByLocal[st.Name] = st
			}
		}
		for _, el := range doc.Elements {
			if el.Name == "" {
				continue
			}
			if _, ok := d.elements[el.Name]; !ok {
				d.elements[el.Name] = el
			}
		}
		for _, ag := range doc.AttributeGroups {
			if ag.Name == "" {
				continue
			}
			if _, ok := d.attrGroups[ag.Name]; !ok {
				d.attrGroups[ag.Name] = ag
			}
		}
	}

	return d
}

// ComplexType resolves a (possibly prefixed) type reference from the given
// document. Returns nil when the reference cannot be resolved at all.
func (d *Directory) ComplexType(ref string, from *Document) *ComplexType {
	if ref == "" {
		return nil
	}
	if ct, ok := d.complexTypes[d.qualify(ref, from)]; ok {
		return ct
	}
	if ct, ok := d.complexByLocal[localName(ref)]; ok {
		d.warnFallback("complex type", ref)
		return ct
	}
	return nil
}

// SimpleType resolves a (possibly prefixed) simple type reference.
func (d *Directory) SimpleType(ref string, from *Document) *SimpleType {
	if ref == "" {
		return nil
	}
	if st, ok := d.simpleTypes[d.qualify(ref, from)]; ok {
		return st
	}
	if st, ok := d.simpleByLocal[localName(ref)]; ok {
		d.warnFallback("simple type", ref)
		return st
	}
	return nil
}

// IsBuiltin reports whether the reference names an XML Schema built-in type,
// either by prefix resolution or by unprefixed use inside a schema whose
// default namespace is the schema namespace.
func (d *Directory) IsBuiltin(ref string, from *Document) bool {
	if ref == "" {
		return false
	}
	prefix := ""
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		prefix = ref[:i]
	}
	if from != nil {
		if ns, ok := from.Prefixes[prefix]; ok {
			return ns == SchemaNamespace
		}
	}
	return false
}

// TopLevelElement resolves an element reference by local name across all
// documents. Returns nil when no top-level declaration matches.
func (d *Directory) TopLevelElement(ref string) *ElementDecl {
	return d.elements[localName(ref)]
}

// AttributeGroup resolves an attributeGroup reference by local name.
func (d *Directory) AttributeGroup(ref string) *AttributeGroup {
	return d.attrGroups[localName(ref)]
}

// ResolveBuiltinBase follows a simple type's restriction chain until it hits
// a built-in (or gives up), returning the built-in type reference. Bounded to
// guard against malformed self-referential restriction chains.
func (d *Directory) ResolveBuiltinBase(st *SimpleType) string {
	const maxChain = 16
	cur := st
	for i := 0; i < maxChain && cur != nil; i++ {
		if cur.Base == "" {
			return ""
		}
		if d.IsBuiltin(cur.Base, cur.Doc) {
			return cur.Base
		}
		next := d.SimpleType(cur.Base, cur.Doc)
		if next == nil {
			// Unresolvable base: assume it names a built-in from a schema
			// without an explicit xs prefix mapping.
			return cur.Base
		}
		cur = next
	}
	return ""
}

// qualify maps a (possibly prefixed) reference to a QName using the
// referencing document's prefix map. An unprefixed reference resolves to the
// referencing document's own target namespace.
func (d *Directory) qualify(ref string, from *Document) QName {
	prefix, local := "", ref
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		prefix, local = ref[:i], ref[i+1:]
	}
	space := ""
	if from != nil {
		if prefix == "" {
			space = from.TargetNamespace
		} else if ns, ok := from.Prefixes[prefix]; ok {
			space = ns
		}
	}
	return QName{Space: space, Local: local}
}

func (d *Directory) warnFallback(kind, ref string) {
	if d.logger != nil {
		d.logger.Verbose("strict resolution of %s %q failed, matched by local name across namespaces", kind, ref)
	}
}
