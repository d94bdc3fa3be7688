package fakeapi

import (
	"strconv"
	"strings"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
)

// matchRoot evaluates the filter nodes directly under a request root against
// row. Top-level nodes are combined with And; option nodes are ignored.
func matchRoot(row, request *etree.Element) bool {
	for _, node := range request.ChildElements() {
		if !matchNode(row, node) {
			return false
		}
	}
	return true
}

func matchNode(row, node *etree.Element) bool {
	if node.Tag == constants.CriteriaTag {
		or := node.SelectAttrValue(constants.RelationshipAttr, "And") == "Or"
		children := node.ChildElements()
		if len(children) == 0 {
			return true
		}
		for _, child := range children {
			ok := matchNode(row, child)
			if or && ok {
				return true
			}
			if !or && !ok {
				return false
			}
		}
		return !or
	}

	if strings.HasPrefix(node.Tag, "_") {
		return true
	}

	value, found := "", false
	if el := row.SelectElement(node.Tag); el != nil {
		value, found = strings.TrimSpace(el.Text()), true
	}
	if !found {
		return false
	}

	return compare(value, node.SelectAttrValue(constants.OperatorAttr, "Equals"), strings.TrimSpace(node.Text()))
}

func compare(value, op, want string) bool {
	switch op {
	case "Equals":
		return value == want
	case "NotEquals":
		return value != want
	case "StartsWith":
		return strings.HasPrefix(value, want)
	case "EndsWith":
		return strings.HasSuffix(value, want)
	case "Contains":
		return strings.Contains(value, want)
	case "NotStartsWith":
		return !strings.HasPrefix(value, want)
	case "NotEndsWith":
		return !strings.HasSuffix(value, want)
	case "NotContains":
		return !strings.Contains(value, want)
	case "In":
		return inList(value, want)
	case "NotIn":
		return !inList(value, want)
	case "GreaterThan":
		return order(value, want) > 0
	case "GreaterThanOrEqual":
		return order(value, want) >= 0
	case "LessThan":
		return order(value, want) < 0
	case "LessThanOrEqual":
		return order(value, want) <= 0
	}
	return false
}

func inList(value, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}

// order compares numerically when both sides are numbers, otherwise as text.
func order(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// limit applies _top, or _pageIndex and _pageSize, to the rows of out.
func limit(out, request *etree.Element) {
	rows := out.ChildElements()
	start, end := 0, len(rows)

	if size := intOption(request, constants.PageSizeTag); size > 0 {
		start = intOption(request, constants.PageIndexTag) * size
		end = start + size
	}
	if top := intOption(request, constants.TopTag); top > 0 && start+top < end {
		end = start + top
	}
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	for i, row := range rows {
		if i < start || i >= end {
			out.RemoveChild(row)
		}
	}
}

func intOption(request *etree.Element, tag string) int {
	n, err := strconv.Atoi(childText(request, tag))
	if err != nil {
		return 0
	}
	return n
}
