package sexpr

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/funcmap"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// comparisonOps maps bare Substrait comparison names to typed operators.
// Both the long ("equal") and short ("eq") spellings appear in plans.
var comparisonOps = map[string]typedexpr.Op{
	"equal":     typedexpr.OpEqual,
	"eq":        typedexpr.OpEqual,
	"not_equal": typedexpr.OpNotEqual,
	"neq":       typedexpr.OpNotEqual,
	"lt":        typedexpr.OpLessThan,
	"gt":        typedexpr.OpGreaterThan,
	"lte":       typedexpr.OpLessThanOrEqual,
	"gte":       typedexpr.OpGreaterThanOrEqual,
}

var unaryOps = map[string]typedexpr.Op{
	"not":         typedexpr.OpNot,
	"is_null":     typedexpr.OpIsNull,
	"is_not_null": typedexpr.OpIsNotNull,
}

// ToTyped translates a Substrait expression into the engine-native typed
// IR. fieldTypes gives the Arrow type of each input column, indexed the
// same way field references are. Untranslatable kinds surface as
// UnsupportedExpressionError; an unbound function anchor surfaces the
// funcmap error.
func ToTyped(e *substraitpb.Expression, funcs funcmap.Map, fieldTypes []arrow.DataType) (typedexpr.Expr, error) {
	if e == nil {
		return nil, &UnsupportedExpressionError{Kind: "nil expression"}
	}
	if idx, ok := FieldIndex(e); ok {
		if idx < 0 || idx >= len(fieldTypes) {
			return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("field reference %d out of range", idx)}
		}
		return typedexpr.NewFieldRef(idx, fieldTypes[idx]), nil
	}
	if lit, ok := Literal(e); ok {
		v, err := ToValue(lit)
		if err != nil {
			return nil, err
		}
		return typedexpr.NewConstant(v), nil
	}
	if fn, ok := ScalarFunc(e); ok {
		return CallToTyped(fn, funcs, fieldTypes)
	}
	return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("%T", e.GetRexType())}
}

// CallToTyped translates a scalar-function call. Conjunctions, unary
// operators, and comparisons get their dedicated nodes; everything else
// becomes a generic Call typed by the declared output type.
func CallToTyped(fn *substraitpb.Expression_ScalarFunction, funcs funcmap.Map, fieldTypes []arrow.DataType) (typedexpr.Expr, error) {
	name, err := funcs.Name(fn.GetFunctionReference())
	if err != nil {
		return nil, err
	}

	// An IN call carries its value set as a literal list; expand it into
	// constant arguments so a residual IN stays translatable.
	if name == "in" {
		return inToTyped(fn, funcs, fieldTypes)
	}

	args := make([]typedexpr.Expr, 0, len(fn.GetArguments()))
	for _, arg := range Args(fn) {
		if arg == nil {
			return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("non-value argument of %s", name)}
		}
		typed, err := ToTyped(arg, funcs, fieldTypes)
		if err != nil {
			return nil, err
		}
		args = append(args, typed)
	}

	switch {
	case name == "and" || name == "or":
		op := typedexpr.OpAnd
		if name == "or" {
			op = typedexpr.OpOr
		}
		if len(args) < 2 {
			return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("%s with %d arguments", name, len(args))}
		}
		return typedexpr.NewConjunction(op, args...), nil

	case unaryOps[name] != "":
		if len(args) != 1 {
			return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("%s with %d arguments", name, len(args))}
		}
		return typedexpr.NewUnary(unaryOps[name], args[0]), nil

	case comparisonOps[name] != "":
		if len(args) != 2 {
			return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("%s with %d arguments", name, len(args))}
		}
		return typedexpr.NewComparison(comparisonOps[name], args[0], args[1]), nil
	}

	var out arrow.DataType
	if fn.GetOutputType() != nil {
		out, err = ArrowType(fn.GetOutputType())
		if err != nil {
			return nil, err
		}
	}
	return typedexpr.NewCall(name, out, args...), nil
}

// inToTyped translates in(needle, [v...]) into a Call whose arguments
// are the needle followed by one constant per list value.
func inToTyped(fn *substraitpb.Expression_ScalarFunction, funcs funcmap.Map, fieldTypes []arrow.DataType) (typedexpr.Expr, error) {
	args := Args(fn)
	if len(args) != 2 || args[0] == nil || args[1] == nil {
		return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("in with %d arguments", len(args))}
	}
	needle, err := ToTyped(args[0], funcs, fieldTypes)
	if err != nil {
		return nil, err
	}
	lit, ok := Literal(args[1])
	if !ok {
		return nil, &UnsupportedExpressionError{Kind: "in without a literal value list"}
	}
	values, err := ListValues(lit)
	if err != nil {
		return nil, err
	}
	typed := make([]typedexpr.Expr, 0, len(values)+1)
	typed = append(typed, needle)
	for _, v := range values {
		typed = append(typed, typedexpr.NewConstant(v))
	}
	return typedexpr.NewCall("in", arrow.FixedWidthTypes.Boolean, typed...), nil
}
