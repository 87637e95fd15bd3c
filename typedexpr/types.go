// Package typedexpr is the engine-native typed expression IR produced by
// the expression translator for residual filters, join conditions, and
// projections: everything that is not lowered into a subfield filter
// primitive by the filter package stays in this representation.
//
// The shape is a bound-expression tree: an Expr interface, a base carrying
// the class tag and result type, and one struct per expression kind,
// narrowed to what a Substrait scalar-expression tree actually contains:
// field references, literals, comparisons, conjunctions, unary operators,
// and a generic call for every scalar function without a dedicated node.
package typedexpr

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowplane/substraitplan/literal"
)

// Class identifies the category of expression.
type Class string

const (
	ClassFieldRef    Class = "FIELD_REF"
	ClassConstant    Class = "CONSTANT"
	ClassComparison  Class = "COMPARISON"
	ClassConjunction Class = "CONJUNCTION"
	ClassUnary       Class = "UNARY"
	ClassCall        Class = "CALL"
)

// Op identifies the specific operator within a Class.
type Op string

const (
	OpEqual              Op = "EQUAL"
	OpNotEqual           Op = "NOT_EQUAL"
	OpLessThan           Op = "LESS_THAN"
	OpGreaterThan        Op = "GREATER_THAN"
	OpLessThanOrEqual    Op = "LESS_THAN_OR_EQUAL"
	OpGreaterThanOrEqual Op = "GREATER_THAN_OR_EQUAL"

	OpAnd Op = "AND"
	OpOr  Op = "OR"

	OpNot       Op = "NOT"
	OpIsNull    Op = "IS_NULL"
	OpIsNotNull Op = "IS_NOT_NULL"
)

// Expr is the interface implemented by every typed-expression node.
type Expr interface {
	Class() Class

	// DataType is the Arrow type the expression evaluates to. May be nil
	// for a generic Call whose Substrait declaration carried no output
	// type.
	DataType() arrow.DataType

	exprMarker()
}

type base struct {
	class Class
	typ   arrow.DataType
}

func (b base) Class() Class             { return b.class }
func (b base) DataType() arrow.DataType { return b.typ }
func (b base) exprMarker()              {}

// FieldRef references an input column by its zero-based index into the
// input row type.
type FieldRef struct {
	base
	Index int
}

// NewFieldRef builds a field reference to the given column index with the
// column's type.
func NewFieldRef(index int, typ arrow.DataType) *FieldRef {
	return &FieldRef{base: base{ClassFieldRef, typ}, Index: index}
}

// Constant wraps a literal value as a leaf expression.
type Constant struct {
	base
	Value literal.Value
}

// NewConstant wraps v as a constant expression. The result type follows
// the literal's kind.
func NewConstant(v literal.Value) *Constant {
	return &Constant{base: base{ClassConstant, v.Kind().DataType()}, Value: v}
}

// Comparison represents a binary comparison between two operands. Its
// result type is always boolean.
type Comparison struct {
	base
	Op    Op
	Left  Expr
	Right Expr
}

// NewComparison builds a binary comparison node.
func NewComparison(op Op, left, right Expr) *Comparison {
	return &Comparison{
		base: base{ClassComparison, arrow.FixedWidthTypes.Boolean},
		Op:   op, Left: left, Right: right,
	}
}

// Conjunction represents AND/OR over two or more children.
type Conjunction struct {
	base
	Op       Op
	Children []Expr
}

// NewConjunction builds an AND/OR node. Flattening nested conjunctions of
// the same Op is the caller's responsibility; Conjunction itself makes no
// flattening guarantee.
func NewConjunction(op Op, children ...Expr) *Conjunction {
	return &Conjunction{
		base: base{ClassConjunction, arrow.FixedWidthTypes.Boolean},
		Op:   op, Children: children,
	}
}

// Unary represents NOT / IS NULL / IS NOT NULL over a single child.
type Unary struct {
	base
	Op    Op
	Child Expr
}

// NewUnary builds a unary node.
func NewUnary(op Op, child Expr) *Unary {
	return &Unary{
		base: base{ClassUnary, arrow.FixedWidthTypes.Boolean},
		Op:   op, Child: child,
	}
}

// Call represents a scalar function call that has no dedicated node above:
// anything the filter-pushdown analyzer does not special-case (arithmetic,
// string functions, aggregate measures, IN lists carried in residuals) is
// represented as a Call so it can still appear in a residual filter or a
// projection.
type Call struct {
	base
	Name string
	Args []Expr
}

// NewCall builds a generic scalar-function call node. typ may be nil when
// the declaration carries no output type.
func NewCall(name string, typ arrow.DataType, args ...Expr) *Call {
	return &Call{base: base{ClassCall, typ}, Name: name, Args: args}
}
