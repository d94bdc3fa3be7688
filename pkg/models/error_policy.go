package models

import (
	"strconv"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
)

// ErrorPolicy tells the service how to treat named validation errors raised
// by a write. The four lists override the two booleans for specific errors.
type ErrorPolicy struct {
	AutoFixErrors    bool
	AutoIgnoreErrors bool

	ForceIgnore    []string
	ForceFix       []string
	ForceNotIgnore []string
	ForceNotFix    []string
}

// DefaultErrorPolicy auto-fixes and auto-ignores everything.
func DefaultErrorPolicy() *ErrorPolicy {
	return &ErrorPolicy{
		AutoFixErrors:    true,
		AutoIgnoreErrors: true,
	}
}

// Build appends the _error fragment to parent. A nil policy builds the default.
func (p *ErrorPolicy) Build(parent *etree.Element) {
	if p == nil {
		p = DefaultErrorPolicy()
	}

	el := parent.CreateElement(constants.ErrorPolicyTag)
	el.CreateAttr("autoFix", strconv.FormatBool(p.AutoFixErrors))
	el.CreateAttr("autoIgnore", strconv.FormatBool(p.AutoIgnoreErrors))

	addEntries(el, "ignore", p.ForceIgnore)
	addEntries(el, "fix", p.ForceFix)
	addEntries(el, "dontignore", p.ForceNotIgnore)
	addEntries(el, "dontfix", p.ForceNotFix)
}

func addEntries(el *etree.Element, tag string, names []string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		el.CreateElement(tag).SetText(name)
	}
}
