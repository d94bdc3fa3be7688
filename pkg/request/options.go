package request

import (
	"strconv"
	"strings"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
)

// QueryOptions shape a select. Zero values mean "server default" and are not
// sent.
type QueryOptions struct {
	// IncludeLookupCaptions adds a caption field next to every foreign key.
	IncludeLookupCaptions       bool
	LoadDeletedAndHiddenRecords bool
	// OrderBy lists sort fields; a field written as "Name desc" sorts
	// descending.
	OrderBy []string
	// RelatedTables names the sub-tables to load with each record.
	RelatedTables []string
	// Fields restricts the returned fields.
	Fields    []string
	Top       int
	PageSize  int
	PageIndex int
}

// Option configures QueryOptions.
type Option func(*QueryOptions)

func WithLookupCaptions() Option {
	return func(o *QueryOptions) { o.IncludeLookupCaptions = true }
}

func WithDeletedAndHidden() Option {
	return func(o *QueryOptions) { o.LoadDeletedAndHiddenRecords = true }
}

func WithOrderBy(fields ...string) Option {
	return func(o *QueryOptions) { o.OrderBy = append(o.OrderBy, fields...) }
}

func WithRelatedTables(tables ...string) Option {
	return func(o *QueryOptions) { o.RelatedTables = append(o.RelatedTables, tables...) }
}

func WithFields(fields ...string) Option {
	return func(o *QueryOptions) { o.Fields = append(o.Fields, fields...) }
}

func WithTop(n int) Option {
	return func(o *QueryOptions) { o.Top = n }
}

// WithPage selects page index (zero based) of the given size.
func WithPage(index, size int) Option {
	return func(o *QueryOptions) {
		o.PageIndex = index
		o.PageSize = size
	}
}

// NewQueryOptions applies opts to a zero QueryOptions.
func NewQueryOptions(opts ...Option) *QueryOptions {
	o := &QueryOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// IsZero reports whether no option is set.
func (o *QueryOptions) IsZero() bool {
	if o == nil {
		return true
	}

	return !o.IncludeLookupCaptions &&
		!o.LoadDeletedAndHiddenRecords &&
		len(nonEmpty(o.OrderBy)) == 0 &&
		len(nonEmpty(o.RelatedTables)) == 0 &&
		len(nonEmpty(o.Fields)) == 0 &&
		o.Top <= 0 &&
		o.PageSize <= 0 &&
		o.PageIndex <= 0
}

// Build appends the option nodes to root.
func (o *QueryOptions) Build(root *etree.Element) {
	if o == nil {
		return
	}

	addFlag(root, constants.DeletedHiddenTag, o.LoadDeletedAndHiddenRecords)
	addFlag(root, constants.LookupCaptionsTag, o.IncludeLookupCaptions)
	addInt(root, constants.TopTag, o.Top)
	addInt(root, constants.PageIndexTag, o.PageIndex)
	addInt(root, constants.PageSizeTag, o.PageSize)
	addList(root, constants.RelatedTablesTag, o.RelatedTables)
	addList(root, constants.OrderByTag, o.OrderBy)
	addList(root, constants.FieldsTag, o.Fields)
}

func addFlag(root *etree.Element, tag string, on bool) {
	if on {
		root.CreateElement(tag).SetText("true")
	}
}

func addInt(root *etree.Element, tag string, n int) {
	if n > 0 {
		root.CreateElement(tag).SetText(strconv.Itoa(n))
	}
}

func addList(root *etree.Element, tag string, items []string) {
	items = nonEmpty(items)
	if len(items) > 0 {
		root.CreateElement(tag).SetText(strings.Join(items, ","))
	}
}

func nonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
