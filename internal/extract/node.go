// Package extract re-walks a parsed XML instance against the compiled table
// model and message structure, producing the row tree the loader inserts.
package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Node is one element of a parsed instance document. Names are local names:
// instance matching is namespace-agnostic, mirroring the compiled model.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// ParseDocument reads an XML instance into a Node tree rooted at the
// document element.
func ParseDocument(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
						continue
					}
					if _, dup := n.Attrs[a.Name.Local]; !dup {
						n.Attrs[a.Name.Local] = a.Value
					}
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple document elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document contains no elements")
	}
	trimText(root)
	return root, nil
}

func trimText(n *Node) {
	n.Text = strings.TrimSpace(n.Text)
	for _, c := range n.Children {
		trimText(c)
	}
}

// Child returns the first direct child with the given local name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given local name, in
// document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the named attribute's value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// InnerXML serializes the node's content back to XML text, used for opaque
// columns that capture a whole subtree. Text placement relative to child
// elements is not preserved for mixed content; the captured column is a
// best-effort raw representation, not a round-trippable copy.
func (n *Node) InnerXML() string {
	var sb strings.Builder
	if n.Text != "" {
		_ = xml.EscapeText(&sb, []byte(n.Text))
	}
	for _, c := range n.Children {
		c.writeTo(&sb)
	}
	return sb.String()
}

func (n *Node) writeTo(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(n.Name)
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		_ = xml.EscapeText(sb, []byte(n.Attrs[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	sb.WriteString(n.InnerXML())
	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteByte('>')
}
