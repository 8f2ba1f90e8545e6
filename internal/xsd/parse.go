package xsd

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// Parse reads one schema document. The path is recorded for diagnostics and
// for resolving include/import references relative to the file.
func Parse(r io.Reader, path string) (*Document, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: no schema element found", path)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Space != SchemaNamespace || se.Name.Local != "schema" {
			return nil, fmt.Errorf("%s: root element is %s, not an XML schema", path, se.Name.Local)
		}
		return parseSchema(dec, se, path)
	}
}

func parseSchema(dec *xml.Decoder, start xml.StartElement, path string) (*Document, error) {
	doc := &Document{
		Path:     path,
		Prefixes: make(map[string]string),
	}

	for _, a := range start.Attr {
		switch {
		case a.Name.Space == "" && a.Name.Local == "targetNamespace":
			doc.TargetNamespace = a.Value
		case a.Name.Space == "xmlns":
			doc.Prefixes[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			doc.Prefixes[""] = a.Value
		}
	}

	err := eachChild(dec, start, func(se xml.StartElement) error {
		if se.Name.Space != SchemaNamespace {
			return dec.Skip()
		}
		switch se.Name.Local {
		case "element":
			el, err := parseElement(dec, se, doc)
			if err != nil {
				return err
			}
			doc.Elements = append(doc.Elements, el)
		case "complexType":
			ct, err := parseComplexType(dec, se, doc)
			if err != nil {
				return err
			}
			doc.ComplexTypes = append(doc.ComplexTypes, ct)
		case "simpleType":
			st, err := parseSimpleType(dec, se, doc)
			if err != nil {
				return err
			}
			doc.SimpleTypes = append(doc.SimpleTypes, st)
		case "attributeGroup":
			ag, err := parseAttributeGroup(dec, se, doc)
			if err != nil {
				return err
			}
			doc.AttributeGroups = append(doc.AttributeGroups, ag)
		case "include", "import":
			if loc := attrValue(se, "schemaLocation"); loc != "" {
				doc.References = append(doc.References, loc)
			}
			return dec.Skip()
		default:
			// annotation, notation, group, redefine: not mapped
			return dec.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func parseElement(dec *xml.Decoder, start xml.StartElement, doc *Document) (*ElementDecl, error) {
	el := &ElementDecl{
		Name:      attrValue(start, "name"),
		Ref:       attrValue(start, "ref"),
		Type:      attrValue(start, "type"),
		MinOccurs: parseOccurs(attrValue(start, "minOccurs"), 1),
		MaxOccurs: parseOccurs(attrValue(start, "maxOccurs"), 1),
		Doc:       doc,
	}

	err := eachChild(dec, start, func(se xml.StartElement) error {
		if se.Name.Space != SchemaNamespace {
			return dec.Skip()
		}
		switch se.Name.Local {
		case "complexType":
			ct, err := parseComplexType(dec, se, doc)
			if err != nil {
				return err
			}
			el.Inline = ct
		case "simpleType":
			st, err := parseSimpleType(dec, se, doc)
			if err != nil {
				return err
			}
			el.InlineSimple = st
		default:
			return dec.Skip()
		}
		return nil
	})
	return el, err
}

func parseComplexType(dec *xml.Decoder, start xml.StartElement, doc *Document) (*ComplexType, error) {
	ct := &ComplexType{
		Name: attrValue(start, "name"),
		Doc:  doc,
	}
	err := eachChild(dec, start, func(se xml.StartElement) error {
		return parseComplexChild(dec, se, doc, ct)
	})
	return ct, err
}

// parseComplexChild handles the direct children of complexType and of the
// extension/restriction wrappers nested beneath it.
func parseComplexChild(dec *xml.Decoder, se xml.StartElement, doc *Document, ct *ComplexType) error {
	if se.Name.Space != SchemaNamespace {
		return dec.Skip()
	}
	switch se.Name.Local {
	case "sequence", "all":
		p, err := parseModelGroup(dec, se, doc, false)
		if err != nil {
			return err
		}
		ct.Content = p
	case "choice":
		p, err := parseModelGroup(dec, se, doc, true)
		if err != nil {
			return err
		}
		ct.Content = p
	case "attribute":
		a := parseAttribute(se, doc)
		if err := dec.Skip(); err != nil {
			return err
		}
		if a != nil {
			ct.Attributes = append(ct.Attributes, a)
		}
	case "attributeGroup":
		if ref := attrValue(se, "ref"); ref != "" {
			ct.AttrGroupRefs = append(ct.AttrGroupRefs, ref)
		}
		return dec.Skip()
	case "complexContent":
		return eachChild(dec, se, func(inner xml.StartElement) error {
			if inner.Name.Space == SchemaNamespace &&
				(inner.Name.Local == "extension" || inner.Name.Local == "restriction") {
				if inner.Name.Local == "extension" {
					ct.Base = attrValue(inner, "base")
				}
				return eachChild(dec, inner, func(c xml.StartElement) error {
					return parseComplexChild(dec, c, doc, ct)
				})
			}
			return dec.Skip()
		})
	case "simpleContent":
		ct.SimpleContent = true
		return eachChild(dec, se, func(inner xml.StartElement) error {
			if inner.Name.Space == SchemaNamespace &&
				(inner.Name.Local == "extension" || inner.Name.Local == "restriction") {
				ct.Base = attrValue(inner, "base")
				return eachChild(dec, inner, func(c xml.StartElement) error {
					return parseComplexChild(dec, c, doc, ct)
				})
			}
			return dec.Skip()
		})
	default:
		// annotation, anyAttribute, group refs: not mapped
		return dec.Skip()
	}
	return nil
}

func parseModelGroup(dec *xml.Decoder, start xml.StartElement, doc *Document, choice bool) (Particle, error) {
	minOccurs := parseOccurs(attrValue(start, "minOccurs"), 1)
	maxOccurs := parseOccurs(attrValue(start, "maxOccurs"), 1)

	var items []Particle
	err := eachChild(dec, start, func(se xml.StartElement) error {
		if se.Name.Space != SchemaNamespace {
			return dec.Skip()
		}
		switch se.Name.Local {
		case "element":
			el, err := parseElement(dec, se, doc)
			if err != nil {
				return err
			}
			items = append(items, el)
		case "sequence", "all":
			p, err := parseModelGroup(dec, se, doc, false)
			if err != nil {
				return err
			}
			items = append(items, p)
		case "choice":
			p, err := parseModelGroup(dec, se, doc, true)
			if err != nil {
				return err
			}
			items = append(items, p)
		default:
			// any, group refs, annotation: not mapped
			return dec.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if choice {
		return &Choice{Items: items, MinOccurs: minOccurs, MaxOccurs: maxOccurs}, nil
	}
	return &Sequence{Items: items, MinOccurs: minOccurs, MaxOccurs: maxOccurs}, nil
}

func parseSimpleType(dec *xml.Decoder, start xml.StartElement, doc *Document) (*SimpleType, error) {
	st := &SimpleType{
		Name: attrValue(start, "name"),
		Doc:  doc,
	}
	err := eachChild(dec, start, func(se xml.StartElement) error {
		if se.Name.Space == SchemaNamespace && se.Name.Local == "restriction" && st.Base == "" {
			st.Base = attrValue(se, "base")
		}
		return dec.Skip()
	})
	return st, err
}

func parseAttributeGroup(dec *xml.Decoder, start xml.StartElement, doc *Document) (*AttributeGroup, error) {
	ag := &AttributeGroup{
		Name: attrValue(start, "name"),
		Doc:  doc,
	}
	err := eachChild(dec, start, func(se xml.StartElement) error {
		if se.Name.Space != SchemaNamespace {
			return dec.Skip()
		}
		switch se.Name.Local {
		case "attribute":
			if a := parseAttribute(se, doc); a != nil {
				ag.Attributes = append(ag.Attributes, a)
			}
		case "attributeGroup":
			if ref := attrValue(se, "ref"); ref != "" {
				ag.Refs = append(ag.Refs, ref)
			}
		}
		return dec.Skip()
	})
	return ag, err
}

// parseAttribute returns nil for attributes without a usable name; the
// compiler treats those as a degraded resolution, never an error.
func parseAttribute(se xml.StartElement, doc *Document) *Attribute {
	name := attrValue(se, "name")
	if name == "" {
		name = localName(attrValue(se, "ref"))
	}
	if name == "" {
		return nil
	}
	return &Attribute{
		Name: name,
		Type: attrValue(se, "type"),
		Use:  attrValue(se, "use"),
		Doc:  doc,
	}
}

// eachChild invokes fn for every direct child start element until the end
// of start's element. fn must fully consume the child (directly or via
// dec.Skip) before returning.
func eachChild(dec *xml.Decoder, start xml.StartElement, fn func(xml.StartElement) error) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func parseOccurs(s string, def int) int {
	if s == "" {
		return def
	}
	if s == "unbounded" {
		return Unbounded
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// localName strips any namespace prefix from a qualified name.
func localName(qname string) string {
	for i := len(qname) - 1; i >= 0; i-- {
		if qname[i] == ':' {
			return qname[i+1:]
		}
	}
	return qname
}
