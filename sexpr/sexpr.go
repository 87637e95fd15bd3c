// Package sexpr provides shape helpers and the typed-expression translator
// over decoded Substrait expression trees.
//
// The filter-pushdown analyzer and the plan translator both classify
// Substrait expressions by the same few shapes: a scalar-function call, a
// direct field reference, a literal. The helpers here extract those shapes
// without either package reaching into the protobuf oneof wrappers itself.
package sexpr

import (
	"errors"
	"fmt"

	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/literal"
)

// ErrUnsupportedExpression is returned when an expression kind cannot be
// translated.
var ErrUnsupportedExpression = errors.New("unsupported expression")

// UnsupportedExpressionError reports the offending expression kind.
type UnsupportedExpressionError struct {
	Kind string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported expression kind %s", e.Kind)
}

func (e *UnsupportedExpressionError) Unwrap() error { return ErrUnsupportedExpression }

// ScalarFunc returns the scalar-function payload of e, if any.
func ScalarFunc(e *substraitpb.Expression) (*substraitpb.Expression_ScalarFunction, bool) {
	fn := e.GetScalarFunction()
	return fn, fn != nil
}

// Args unwraps the value arguments of a scalar function, in declared
// order. A non-value argument (enum or type) yields a nil entry.
func Args(fn *substraitpb.Expression_ScalarFunction) []*substraitpb.Expression {
	args := make([]*substraitpb.Expression, len(fn.GetArguments()))
	for i, arg := range fn.GetArguments() {
		args[i] = arg.GetValue()
	}
	return args
}

// FieldIndex returns the column index of a direct struct-field reference.
// Nested field paths and masked or root-relative references report false:
// the analyzer treats them as opaque and leaves them to the residual.
func FieldIndex(e *substraitpb.Expression) (int, bool) {
	sel := e.GetSelection()
	if sel == nil {
		return 0, false
	}
	seg := sel.GetDirectReference()
	if seg == nil {
		return 0, false
	}
	sf := seg.GetStructField()
	if sf == nil || sf.GetChild() != nil {
		return 0, false
	}
	return int(sf.GetField()), true
}

// Literal returns the literal payload of e, if any.
func Literal(e *substraitpb.Expression) (*substraitpb.Expression_Literal, bool) {
	lit := e.GetLiteral()
	return lit, lit != nil
}

// ToValue converts a Substrait literal into a tagged scalar value,
// preserving the wire type. Complex literal kinds (lists, structs, maps)
// are not scalar values and surface as UnsupportedExpressionError.
func ToValue(lit *substraitpb.Expression_Literal) (literal.Value, error) {
	switch v := lit.GetLiteralType().(type) {
	case *substraitpb.Expression_Literal_Boolean:
		return literal.Bool(v.Boolean), nil
	case *substraitpb.Expression_Literal_I32:
		return literal.I32(v.I32), nil
	case *substraitpb.Expression_Literal_I64:
		return literal.I64(v.I64), nil
	case *substraitpb.Expression_Literal_Fp64:
		return literal.FP64(v.Fp64), nil
	case *substraitpb.Expression_Literal_String_:
		return literal.String(v.String_), nil
	case *substraitpb.Expression_Literal_Null:
		return literal.Null(), nil
	default:
		return literal.Value{}, &UnsupportedExpressionError{Kind: fmt.Sprintf("literal %T", lit.GetLiteralType())}
	}
}

// ListValues converts the literal list carried by an IN argument into the
// ordered value set.
func ListValues(lit *substraitpb.Expression_Literal) ([]literal.Value, error) {
	list := lit.GetList()
	if list == nil {
		return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("literal %T, list expected", lit.GetLiteralType())}
	}
	values := make([]literal.Value, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		v, err := ToValue(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
