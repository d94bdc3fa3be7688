package models

import (
	"github.com/beevik/etree"
)

// ReduceToChanges returns the diff document for the record: an element named
// after the table holding only what changed.
//
// A dirty scalar becomes <name>value</name>. A sub-table row with at least one
// dirty field anywhere below it becomes <name NameID="id">...</name> holding
// its own reduced fields; the key attribute is left out for rows the service
// has not assigned a key to yet. Clean rows are left out entirely.
func (r *Record) ReduceToChanges() *etree.Element {
	el := etree.NewElement(r.table)
	r.reduceInto(el)
	return el
}

// ChangesDocument wraps ReduceToChanges in a document.
func (r *Record) ChangesDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.SetRoot(r.ReduceToChanges())
	return doc
}

func (r *Record) reduceInto(el *etree.Element) {
	for _, name := range r.order {
		f := r.fields[name]

		switch f.kind {
		case kindScalar:
			if _, ok := r.dirty[name]; ok {
				el.CreateElement(name).SetText(f.text)
			}
		case kindTable:
			for _, row := range f.rows {
				if !row.IsDirty() {
					continue
				}

				sub := el.CreateElement(name)
				if id, ok := row.primaryKey(); ok {
					sub.CreateAttr(row.PrimaryKeyField(), id)
				}
				row.reduceInto(sub)
			}
		}
	}
}
