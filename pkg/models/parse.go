package models

import (
	"fmt"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
)

// ParseRecords builds one Record per element named tag.
//
// When the document root is itself named tag it is the only record.
// Otherwise the records are the root's direct children named tag. A
// document without a root is rejected.
func ParseRecords(doc *etree.Document, tag string, owner Owner) ([]*Record, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", constants.ErrInvalidResponse)
	}

	if root.Tag == tag {
		return []*Record{NewRecord(root, owner)}, nil
	}

	elements := root.SelectElements(tag)
	records := make([]*Record, 0, len(elements))
	for _, el := range elements {
		records = append(records, NewRecord(el, owner))
	}

	return records, nil
}

// ParseRecordsBytes parses raw XML and calls ParseRecords.
func ParseRecordsBytes(data []byte, tag string, owner Owner) ([]*Record, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	return ParseRecords(doc, tag, owner)
}

// NewRecord builds a clean Record from el. The element is not retained.
//
// Children are grouped by tag. A group where any occurrence has child
// elements is a sub-table; a single leaf is a scalar; repeated leaves are
// kept as an unreadable field so HasField still sees them.
func NewRecord(el *etree.Element, owner Owner) *Record {
	r := &Record{
		table:  el.Tag,
		fields: make(map[string]*field),
		dirty:  make(map[string]struct{}),
		owner:  owner,
	}

	groups := make(map[string][]*etree.Element)
	for _, child := range el.ChildElements() {
		if _, ok := groups[child.Tag]; !ok {
			r.order = append(r.order, child.Tag)
		}
		groups[child.Tag] = append(groups[child.Tag], child)
	}

	for _, name := range r.order {
		r.fields[name] = newField(groups[name], owner)
	}

	return r
}

func newField(occurrences []*etree.Element, owner Owner) *field {
	for _, el := range occurrences {
		if len(el.ChildElements()) == 0 {
			continue
		}

		f := &field{kind: kindTable, rows: make([]*Record, 0, len(occurrences))}
		for _, row := range occurrences {
			f.rows = append(f.rows, NewRecord(row, owner))
		}
		return f
	}

	if len(occurrences) == 1 {
		return &field{kind: kindScalar, text: occurrences[0].Text()}
	}

	return &field{kind: kindAmbiguous}
}
