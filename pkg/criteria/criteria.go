package criteria

import (
	"fmt"
	"strings"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/apiobject/apiobject.go/pkg/models"
	"github.com/beevik/etree"
)

// Node is a filter expression: a *Criteria leaf or a *Group.
//
// Build appends the node's request fragment to parent. The set of
// implementations is closed.
type Node interface {
	Build(parent *etree.Element)
	Validate() error
	String() string

	node()
}

// Criteria compares one field with a value.
type Criteria struct {
	Field    string
	Operator Operator
	Value    string
}

// Group combines its children with a relationship, in order.
type Group struct {
	Relationship Relationship
	Children     []Node
}

func leaf(field string, op Operator, value any) *Criteria {
	return &Criteria{Field: field, Operator: op, Value: models.FormatValue(value)}
}

func list(field string, op Operator, values []any) *Criteria {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, models.FormatValue(v))
	}
	return &Criteria{Field: field, Operator: op, Value: strings.Join(parts, ",")}
}

// Equals matches values equal to value.
func Equals(field string, value any) *Criteria { return leaf(field, OpEquals, value) }

// NotEquals matches values other than value.
func NotEquals(field string, value any) *Criteria { return leaf(field, OpNotEquals, value) }

// StartsWith matches values with the prefix value.
func StartsWith(field string, value any) *Criteria { return leaf(field, OpStartsWith, value) }

// EndsWith matches values with the suffix value.
func EndsWith(field string, value any) *Criteria { return leaf(field, OpEndsWith, value) }

// Contains matches values containing value.
func Contains(field string, value any) *Criteria { return leaf(field, OpContains, value) }

// NotStartsWith matches values without the prefix value.
func NotStartsWith(field string, value any) *Criteria { return leaf(field, OpNotStartsWith, value) }

// NotEndsWith matches values without the suffix value.
func NotEndsWith(field string, value any) *Criteria { return leaf(field, OpNotEndsWith, value) }

// NotContains matches values not containing value.
func NotContains(field string, value any) *Criteria { return leaf(field, OpNotContains, value) }

// GreaterThan matches values strictly greater than value.
func GreaterThan(field string, value any) *Criteria { return leaf(field, OpGreaterThan, value) }

// GreaterThanOrEqual matches values greater than or equal to value.
func GreaterThanOrEqual(field string, value any) *Criteria {
	return leaf(field, OpGreaterThanOrEqual, value)
}

// LessThan matches values strictly less than value.
func LessThan(field string, value any) *Criteria { return leaf(field, OpLessThan, value) }

// LessThanOrEqual matches values less than or equal to value.
func LessThanOrEqual(field string, value any) *Criteria {
	return leaf(field, OpLessThanOrEqual, value)
}

// In matches any of values. The values travel as one comma-separated string.
func In(field string, values ...any) *Criteria { return list(field, OpIn, values) }

// NotIn matches none of values.
func NotIn(field string, values ...any) *Criteria { return list(field, OpNotIn, values) }

// And requires every child to match.
func And(children ...Node) *Group {
	return &Group{Relationship: RelationshipAnd, Children: children}
}

// Or requires at least one child to match.
func Or(children ...Node) *Group {
	return &Group{Relationship: RelationshipOr, Children: children}
}

// Build writes <Field operator="Op">value</Field>. The operator attribute is
// left out for OpEquals; the service reads its absence as equality.
func (c *Criteria) Build(parent *etree.Element) {
	el := parent.CreateElement(c.Field)
	if c.Operator != OpEquals && c.Operator != "" {
		el.CreateAttr(constants.OperatorAttr, string(c.Operator))
	}
	el.SetText(c.Value)
}

func (c *Criteria) Validate() error {
	if strings.TrimSpace(c.Field) == "" || strings.ContainsAny(c.Field, " <>/&\"'") {
		return fmt.Errorf("%w: criteria field name %q", constants.ErrInvalidArgument, c.Field)
	}
	if c.Operator != "" && !c.Operator.Valid() {
		return fmt.Errorf("%w: criteria operator %q", constants.ErrInvalidArgument, c.Operator)
	}
	return nil
}

func (c *Criteria) String() string {
	return render(c)
}

func (*Criteria) node() {}

// Build writes <_criteria relationship="And|Or"> holding every child.
func (g *Group) Build(parent *etree.Element) {
	el := parent.CreateElement(constants.CriteriaTag)
	el.CreateAttr(constants.RelationshipAttr, string(g.Relationship))
	for _, child := range g.Children {
		child.Build(el)
	}
}

func (g *Group) Validate() error {
	if !g.Relationship.Valid() {
		return fmt.Errorf("%w: criteria relationship %q", constants.ErrInvalidArgument, g.Relationship)
	}
	for i, child := range g.Children {
		if child == nil {
			return fmt.Errorf("%w: criteria group child %d is nil", constants.ErrInvalidArgument, i)
		}
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) String() string {
	return render(g)
}

func (*Group) node() {}

// render returns the fragment n builds, as XML text.
func render(n Node) string {
	holder := etree.NewElement("holder")
	n.Build(holder)

	var sb strings.Builder
	for _, child := range holder.ChildElements() {
		doc := etree.NewDocument()
		doc.SetRoot(child)
		s, err := doc.WriteToString()
		if err != nil {
			return ""
		}
		sb.WriteString(s)
	}
	return sb.String()
}
