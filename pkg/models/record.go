package models

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
)

type fieldKind int

const (
	kindScalar fieldKind = iota
	kindTable
	// kindAmbiguous is a leaf element repeated under the same parent.
	// It can be neither read nor written.
	kindAmbiguous
)

type field struct {
	kind fieldKind
	text string
	rows []*Record
}

// Owner is implemented by the client that loaded a record.
type Owner interface {
	DeleteByID(ctx context.Context, table string, id int, policy *ErrorPolicy) error
}

// Record is a schema-less, change-tracked view of one row returned by the
// service, together with its eagerly loaded related rows.
//
// A field holds either a scalar text value or a sub-table (an ordered list
// of Records) and keeps that shape for the lifetime of the Record.
// Records are built from response documents only; see ParseRecords.
//
// A Record is not safe for concurrent use. Use Clone to hand a copy to
// another goroutine.
type Record struct {
	table  string
	order  []string
	fields map[string]*field
	dirty  map[string]struct{}
	owner  Owner
}

// Value is the result of Record.Get.
type Value struct {
	text  string
	rows  []*Record
	table bool
}

// IsTable reports whether the value is a sub-table.
func (v Value) IsTable() bool {
	return v.table
}

// String returns the scalar text. It is empty for sub-tables.
func (v Value) String() string {
	return v.text
}

// Records returns the sub-table rows. It is nil for scalars.
func (v Value) Records() []*Record {
	return v.rows
}

// TableName is the tag of the element the record was built from.
func (r *Record) TableName() string {
	return r.table
}

// PrimaryKeyField returns the name of the primary key field, <TableName>ID.
func (r *Record) PrimaryKeyField() string {
	return r.table + constants.PrimaryKeySuffix
}

// ID returns the primary key. It fails on a default template that was
// never persisted.
func (r *Record) ID() (int, error) {
	text, ok := r.primaryKey()
	if !ok {
		return 0, fmt.Errorf("%w: %s", constants.ErrMissingPrimaryKey, r.PrimaryKeyField())
	}

	id, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", constants.ErrInvalidResponse, r.PrimaryKeyField(), text)
	}

	return id, nil
}

// AssignID stores the key the service assigned on create. The key field is
// added when the template lacked it and is never marked dirty. A key field
// that is not a scalar is left alone.
func (r *Record) AssignID(id int) error {
	name := r.PrimaryKeyField()
	f, ok := r.fields[name]
	if !ok {
		f = &field{kind: kindScalar}
		r.fields[name] = f
		r.order = append([]string{name}, r.order...)
	}
	if f.kind != kindScalar {
		return fmt.Errorf("%w: %s.%s is not a scalar field", constants.ErrFieldNotWritable, r.table, name)
	}

	f.text = strconv.Itoa(id)
	return nil
}

func (r *Record) primaryKey() (string, bool) {
	f, ok := r.fields[r.PrimaryKeyField()]
	if !ok || f.kind != kindScalar {
		return "", false
	}

	text := strings.TrimSpace(f.text)
	return text, text != ""
}

// Fields returns the field names in document order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// HasField reports whether the record has a direct child named name.
// Descendants are not searched.
func (r *Record) HasField(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Get returns the named field.
func (r *Record) Get(name string) (Value, error) {
	f, ok := r.fields[name]
	if !ok || f.kind == kindAmbiguous {
		return Value{}, fmt.Errorf("%w: %s.%s", constants.ErrFieldNotFound, r.table, name)
	}

	if f.kind == kindTable {
		return Value{rows: f.rows, table: true}, nil
	}

	return Value{text: f.text}, nil
}

// GetString returns a scalar field's text.
func (r *Record) GetString(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}
	if v.IsTable() {
		return "", fmt.Errorf("%w: %s.%s is a sub-table", constants.ErrFieldNotFound, r.table, name)
	}

	return v.String(), nil
}

// GetTable returns a sub-table field's rows.
func (r *Record) GetTable(name string) ([]*Record, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if !v.IsTable() {
		return nil, fmt.Errorf("%w: %s.%s is not a sub-table", constants.ErrFieldNotFound, r.table, name)
	}

	return v.Records(), nil
}

// GetTime parses a scalar date field. An empty field yields the zero time.
func (r *Record) GetTime(name string) (time.Time, error) {
	s, err := r.GetString(name)
	if err != nil {
		return time.Time{}, err
	}

	return ParseDateTime(s)
}

// Set writes the canonical text of value to an existing scalar field and
// marks it dirty. Missing fields and sub-table fields are not writable, and
// the record is left untouched when Set fails.
func (r *Record) Set(name string, value any) error {
	f, ok := r.fields[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s does not exist", constants.ErrFieldNotWritable, r.table, name)
	}
	if f.kind != kindScalar {
		return fmt.Errorf("%w: %s.%s is not a scalar field", constants.ErrFieldNotWritable, r.table, name)
	}

	f.text = FormatValue(value)
	r.dirty[name] = struct{}{}

	return nil
}

// IsDirty reports whether any field of the record or of its sub-tables
// changed since load or since the last ClearChanges.
func (r *Record) IsDirty() bool {
	if len(r.dirty) > 0 {
		return true
	}

	for _, name := range r.order {
		f := r.fields[name]
		if f.kind != kindTable {
			continue
		}
		for _, row := range f.rows {
			if row.IsDirty() {
				return true
			}
		}
	}

	return false
}

// DirtyFields returns the names of this record's own dirty fields in
// document order.
func (r *Record) DirtyFields() []string {
	var out []string
	for _, name := range r.order {
		if _, ok := r.dirty[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// ClearChanges drops every dirty marker of the record and its sub-tables.
// Values are kept.
//
// The client calls it after each successful create or update. A diff that is
// sent again because markers were not cleared only repeats values the
// service already holds, which the service treats as a no-op.
func (r *Record) ClearChanges() {
	r.dirty = make(map[string]struct{})

	for _, name := range r.order {
		f := r.fields[name]
		if f.kind != kindTable {
			continue
		}
		for _, row := range f.rows {
			row.ClearChanges()
		}
	}
}

// Delete removes the record through the client that loaded it.
func (r *Record) Delete(ctx context.Context, policy *ErrorPolicy) error {
	if r.owner == nil {
		return constants.ErrNoOwner
	}

	id, err := r.ID()
	if err != nil {
		return err
	}

	return r.owner.DeleteByID(ctx, r.table, id, policy)
}

// Clone returns a deep copy including dirty markers.
func (r *Record) Clone() *Record {
	c := &Record{
		table:  r.table,
		order:  r.Fields(),
		fields: make(map[string]*field, len(r.fields)),
		dirty:  make(map[string]struct{}, len(r.dirty)),
		owner:  r.owner,
	}

	for name, f := range r.fields {
		cf := &field{kind: f.kind, text: f.text}
		for _, row := range f.rows {
			cf.rows = append(cf.rows, row.Clone())
		}
		c.fields[name] = cf
	}
	for name := range r.dirty {
		c.dirty[name] = struct{}{}
	}

	return c
}

// String renders the current values as XML.
func (r *Record) String() string {
	doc := etree.NewDocument()
	doc.SetRoot(r.element())
	s, err := doc.WriteToString()
	if err != nil {
		return fmt.Sprintf("<%s/>", r.table)
	}
	return s
}

func (r *Record) element() *etree.Element {
	el := etree.NewElement(r.table)
	for _, name := range r.order {
		f := r.fields[name]
		switch f.kind {
		case kindScalar:
			el.CreateElement(name).SetText(f.text)
		case kindTable:
			for _, row := range f.rows {
				el.AddChild(row.element())
			}
		}
	}
	return el
}
