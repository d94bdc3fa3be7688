// Package request builds the XML documents and URL paths sent to the service.
package request

import (
	"strconv"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/apiobject/apiobject.go/pkg/criteria"
	"github.com/apiobject/apiobject.go/pkg/models"
	"github.com/beevik/etree"
)

// Operation is the first path segment of a request.
type Operation string

const (
	OpCreateDefault Operation = "createdefault"
	OpCreate        Operation = "create"
	OpSelect        Operation = "select"
	OpUpdate        Operation = "update"
	OpDelete        Operation = "delete"
	OpGetReport     Operation = "getreport"
	OpQuery         Operation = "query"
	OpFunction      Operation = "function"
)

// Path returns the segments <operation>/<name>[/<id>].
func Path(op Operation, name string, id ...int) []string {
	segments := []string{string(op)}
	if name != "" {
		segments = append(segments, name)
	}
	for _, n := range id {
		segments = append(segments, strconv.Itoa(n))
	}
	return segments
}

// CheckInOutPath returns function/entry/<id>/CheckInOut.
func CheckInOutPath(entryID int) []string {
	return []string{string(OpFunction), "entry", strconv.Itoa(entryID), "CheckInOut"}
}

func newDocument(root string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc, doc.CreateElement(root)
}

// CreateDefault asks for a template record filled with database defaults.
func CreateDefault(table string, includeLookupCaptions bool) *etree.Document {
	doc, root := newDocument(table)
	addFlag(root, constants.LookupCaptionsTag, includeLookupCaptions)
	return doc
}

// Select builds a select request. When filter is nil and opts is empty,
// loadAllWhenEmpty adds an explicit _loadAll marker so the service does not
// have to guess what an empty request means.
func Select(table string, filter criteria.Node, opts *QueryOptions, loadAllWhenEmpty bool) *etree.Document {
	doc, root := newDocument(table)

	if filter != nil {
		filter.Build(root)
	}
	opts.Build(root)

	if loadAllWhenEmpty && filter == nil && opts.IsZero() {
		addFlag(root, constants.LoadAllTag, true)
	}

	return doc
}

// Persist wraps a record diff with the error policy, for create and update.
func Persist(diff *etree.Element, policy *models.ErrorPolicy) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := diff.Copy()
	doc.SetRoot(root)
	policy.Build(root)
	return doc
}

// Delete carries only the error policy; the row is named by the path.
func Delete(table string, policy *models.ErrorPolicy) *etree.Document {
	doc, root := newDocument(table)
	policy.Build(root)
	return doc
}

// Report passes filter as the report's parameters. The report itself is
// named by the path, since a numeric report id is not a valid tag.
func Report(filter criteria.Node) *etree.Document {
	doc, root := newDocument(constants.ReportTag)
	if filter != nil {
		filter.Build(root)
	}
	return doc
}

// Query wraps a free-form query string.
func Query(text string) *etree.Document {
	doc, root := newDocument(constants.QueryTag)
	root.SetText(text)
	return doc
}
