package criteria

// Operator is the comparison a leaf applies to its field.
type Operator string

const (
	// OpEquals is the implicit default and is never written on the wire.
	OpEquals             Operator = "Equals"
	OpNotEquals          Operator = "NotEquals"
	OpStartsWith         Operator = "StartsWith"
	OpEndsWith           Operator = "EndsWith"
	OpContains           Operator = "Contains"
	OpNotStartsWith      Operator = "NotStartsWith"
	OpNotEndsWith        Operator = "NotEndsWith"
	OpNotContains        Operator = "NotContains"
	OpIn                 Operator = "In"
	OpNotIn              Operator = "NotIn"
	OpGreaterThan        Operator = "GreaterThan"
	OpGreaterThanOrEqual Operator = "GreaterThanOrEqual"
	OpLessThan           Operator = "LessThan"
	OpLessThanOrEqual    Operator = "LessThanOrEqual"
)

var operators = map[Operator]struct{}{
	OpEquals:             {},
	OpNotEquals:          {},
	OpStartsWith:         {},
	OpEndsWith:           {},
	OpContains:           {},
	OpNotStartsWith:      {},
	OpNotEndsWith:        {},
	OpNotContains:        {},
	OpIn:                 {},
	OpNotIn:              {},
	OpGreaterThan:        {},
	OpGreaterThanOrEqual: {},
	OpLessThan:           {},
	OpLessThanOrEqual:    {},
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// Relationship joins the children of a Group.
type Relationship string

const (
	RelationshipAnd Relationship = "And"
	RelationshipOr  Relationship = "Or"
)

// Valid reports whether rel is RelationshipAnd or RelationshipOr.
func (rel Relationship) Valid() bool {
	return rel == RelationshipAnd || rel == RelationshipOr
}
