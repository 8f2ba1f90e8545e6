// Package xsd parses XML Schema documents into the small type graph the
// table compiler walks. It is not a validator: only the constructs that
// influence the relational mapping (elements, sequences, choices, attributes,
// attribute groups, complex/simple types, extension bases) are preserved.
package xsd

// SchemaNamespace is the XML Schema namespace URI.
const SchemaNamespace = "http://www.w3.org/2001/XMLSchema"

// Unbounded is the MaxOccurs value for maxOccurs="unbounded".
const Unbounded = -1

// QName keys a type by target namespace and local name.
type QName struct {
	Space string
	Local string
}

// Document is one parsed schema file. Documents get an explicit integer
// handle at load time so nothing downstream needs to key on object identity.
type Document struct {
	Handle          int
	Path            string
	TargetNamespace string

	// Prefixes maps namespace prefixes declared on the schema element to
	// namespace URIs. The empty prefix holds the default namespace when
	// declared.
	Prefixes map[string]string

	Elements        []*ElementDecl
	ComplexTypes    []*ComplexType
	SimpleTypes     []*SimpleType
	AttributeGroups []*AttributeGroup

	// References lists include/import schemaLocation values, relative to
	// this document's path.
	References []string
}

// Particle is one item of a content model. The set of implementations is
// closed: ElementDecl, Sequence, and Choice.
type Particle interface {
	isParticle()
}

// ElementDecl declares an element, either top-level or inside a content model.
type ElementDecl struct {
	// Name is the declared name, empty when Ref is set.
	Name string

	// Ref references a top-level element declaration by (possibly prefixed)
	// qualified name.
	Ref string

	// Type is the (possibly prefixed) qualified name of the element's type,
	// empty when the type is declared inline.
	Type string

	// Inline holds an anonymous inline complex type.
	Inline *ComplexType

	// InlineSimple holds an anonymous inline simple type.
	InlineSimple *SimpleType

	MinOccurs int
	MaxOccurs int // Unbounded (-1) for maxOccurs="unbounded"

	// Doc is the declaring document, needed for prefix resolution.
	Doc *Document
}

// Sequence is an ordered content model group.
type Sequence struct {
	Items     []Particle
	MinOccurs int
	MaxOccurs int
}

// Choice is an alternative content model group. The relational mapping
// treats choice branches like optional sequence items.
type Choice struct {
	Items     []Particle
	MinOccurs int
	MaxOccurs int
}

func (*ElementDecl) isParticle() {}
func (*Sequence) isParticle()    {}
func (*Choice) isParticle()      {}

// ComplexType is a type with element and/or attribute content.
type ComplexType struct {
	// Name is empty for anonymous inline types.
	Name string

	// Content is the top-level Sequence or Choice, nil for attribute-only
	// or empty types.
	Content Particle

	Attributes []*Attribute

	// AttrGroupRefs lists attributeGroup ref= qualified names.
	AttrGroupRefs []string

	// Base is the (possibly prefixed) qualified name of the extension base
	// when the type derives via complexContent/extension. The base's
	// content and attributes precede this type's own.
	Base string

	// SimpleContent marks simpleContent derivation: text content typed by
	// Base plus the declared attributes.
	SimpleContent bool

	Doc *Document
}

// SimpleType is a named or anonymous simple type; only the restriction base
// matters for column typing.
type SimpleType struct {
	Name string
	Base string
	Doc  *Document
}

// Attribute declares one attribute of a complex type or attribute group.
type Attribute struct {
	Name string
	Type string
	Use  string // "optional" (default), "required", or "prohibited"
	Doc  *Document
}

// Required reports whether the attribute carries use="required".
func (a *Attribute) Required() bool {
	return a.Use == "required"
}

// AttributeGroup is a named, reusable set of attributes.
type AttributeGroup struct {
	Name       string
	Attributes []*Attribute

	// Refs lists nested attributeGroup ref= qualified names.
	Refs []string

	Doc *Document
}

// Repeats reports whether the element may occur more than once.
func (e *ElementDecl) Repeats() bool {
	return e.MaxOccurs == Unbounded || e.MaxOccurs > 1
}
