package extract

import (
	"fmt"
	"strings"

	"github.com/vvka-141/xmlshred/internal/model"
)

// Extractor turns one parsed instance document into a row tree. It has no
// independent knowledge of the schema: the compiled definition's column
// paths and message slots fully determine what it reads, so its structural
// decisions always mirror the compiler's.
//
// Safe for concurrent use: the definition is immutable and each Extract call
// builds a fresh row tree.
type Extractor struct {
	def *model.Definition

	// slotTables names the tables consumed positionally by message slots
	// (including group trailing segments). They are never re-extracted as
	// nested child fields of the root row.
	slotTables map[string]bool
}

// New creates an Extractor over a compiled definition.
func New(def *model.Definition) *Extractor {
	if def == nil {
		panic("def cannot be nil")
	}
	slotTables := make(map[string]bool)
	var mark func(slots []*model.Slot)
	mark = func(slots []*model.Slot) {
		for _, s := range slots {
			slotTables[strings.ToLower(s.Table)] = true
			mark(s.Children)
		}
	}
	mark(def.Message)
	return &Extractor{def: def, slotTables: slotTables}
}

// Extract produces the row tree for one document. The root row is extracted
// from the document element; top-level content is then matched against the
// message slots with a single forward cursor, in declaration order.
func (e *Extractor) Extract(doc *Node) (*model.Row, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	rootTable := e.def.Table(e.def.RootTable)
	if rootTable == nil {
		return nil, fmt.Errorf("definition has no root table %q", e.def.RootTable)
	}

	root := e.extractRow(rootTable, doc, -1)
	e.matchMessage(root, doc.Children)
	return root, nil
}

// matchMessage replays the message slots positionally over the root's direct
// children. The cursor advances past elements that match no known slot
// (tolerating extensions), but never past an element that matches some slot,
// so real content is never skipped.
func (e *Extractor) matchMessage(root *model.Row, children []*Node) {
	known := make(map[string]bool)
	var collect func(slots []*model.Slot)
	collect = func(slots []*model.Slot) {
		for _, s := range slots {
			known[s.Element] = true
			collect(s.Children)
		}
	}
	collect(e.def.Message)

	i := 0
	skipUnknown := func() {
		for i < len(children) && !known[children[i].Name] {
			i++
		}
	}

	for _, slot := range e.def.Message {
		skipUnknown()

		switch {
		case slot.IsGroup:
			leadTable := e.def.Table(slot.Table)
			if leadTable == nil {
				continue
			}
			leadIndex := 0
			for i < len(children) && children[i].Name == slot.Element {
				lead := e.extractRow(leadTable, children[i], leadIndex)
				leadIndex++
				i++
				e.consumeTrailing(lead, slot.Children, children, &i)
				root.Children = append(root.Children, lead)
			}

		case slot.Repeating:
			table := e.def.Table(slot.Table)
			if table == nil {
				continue
			}
			index := 0
			for i < len(children) && children[i].Name == slot.Element {
				root.Children = append(root.Children, e.extractRow(table, children[i], index))
				index++
				i++
			}

		default:
			// Singleton slots are always optional at this layer: absent
			// content simply emits no row.
			if i < len(children) && children[i].Name == slot.Element {
				table := e.def.Table(slot.Table)
				if table != nil {
					root.Children = append(root.Children, e.extractRow(table, children[i], -1))
				}
				i++
			}
		}
	}
}

// consumeTrailing attaches a group occurrence's trailing segments to the
// lead row: a maximal consecutive run for repeating children, a single
// optional element otherwise.
func (e *Extractor) consumeTrailing(lead *model.Row, trailing []*model.Slot, children []*Node, i *int) {
	for _, ts := range trailing {
		table := e.def.Table(ts.Table)
		if table == nil {
			continue
		}
		if ts.Repeating {
			index := 0
			for *i < len(children) && children[*i].Name == ts.Element {
				lead.Children = append(lead.Children, e.extractRow(table, children[*i], index))
				index++
				*i++
			}
			continue
		}
		if *i < len(children) && children[*i].Name == ts.Element {
			lead.Children = append(lead.Children, e.extractRow(table, children[*i], -1))
			*i++
		}
	}
}

// extractRow reads one element into a row for the given table: column values
// by recorded XML path, extension-table rows from the same element, and
// nested repeating child fields located directly or through their container
// path.
func (e *Extractor) extractRow(t *model.Table, el *Node, repeatIndex int) *model.Row {
	row := model.NewRow(t.Name)
	if repeatIndex >= 0 && t.HasRepeatIndex() {
		row.RepeatIndex = repeatIndex
	}

	e.fillValues(row, t, el)

	for _, child := range e.def.ChildTables(t.Name) {
		switch {
		case child.Extension:
			ext := model.NewRow(child.Name)
			e.fillValues(ext, child, el)
			if len(ext.Values) > 0 {
				row.Children = append(row.Children, ext)
			}

		case e.slotTables[strings.ToLower(child.Name)]:
			// Consumed positionally at the message level.

		default:
			container := descend(el, child.ContainerPath)
			if container == nil {
				continue
			}
			occurrences := container.ChildrenNamed(child.Element)
			if child.HasRepeatIndex() {
				for idx, occ := range occurrences {
					row.Children = append(row.Children, e.extractRow(child, occ, idx))
				}
			} else if len(occurrences) > 0 {
				row.Children = append(row.Children, e.extractRow(child, occurrences[0], -1))
			}
		}
	}

	return row
}

// fillValues extracts every pathed column of t from el into row.Values.
// Missing intermediate elements or attributes yield an absent value, never
// an error.
func (e *Extractor) fillValues(row *model.Row, t *model.Table, el *Node) {
	for _, col := range t.Columns {
		if len(col.XMLPath) == 0 {
			continue
		}
		if value, ok := e.readPath(el, col); ok {
			row.Values[col.Name] = value
		}
	}
}

func (e *Extractor) readPath(el *Node, col *model.Column) (string, bool) {
	node := descend(el, col.XMLPath[:len(col.XMLPath)-1])
	if node == nil {
		return "", false
	}

	final := col.XMLPath[len(col.XMLPath)-1]
	switch {
	case final == model.TextMarker:
		return node.Text, true

	case strings.HasPrefix(final, model.AttributeMarker):
		return node.Attr(strings.TrimPrefix(final, model.AttributeMarker))

	default:
		target := node.Child(final)
		if target == nil {
			return "", false
		}
		if col.Raw {
			return target.InnerXML(), true
		}
		return target.Text, true
	}
}

// descend follows element local names from n; nil when any step is missing.
func descend(n *Node, path []string) *Node {
	cur := n
	for _, name := range path {
		if cur == nil {
			return nil
		}
		cur = cur.Child(name)
	}
	return cur
}
