package filter

import (
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/funcmap"
	"github.com/arrowplane/substraitplan/literal"
)

// Anchors used by the test fixtures, mirroring a plan's extension section.
var testFuncs = funcmap.Map{
	0:  "and:bool_bool",
	1:  "or:bool_bool",
	2:  "not:bool",
	3:  "is_not_null:any",
	4:  "gte:i64_i64",
	5:  "gt:i64_i64",
	6:  "lte:i64_i64",
	7:  "lt:i64_i64",
	8:  "equal:i64_i64",
	9:  "in:i64",
	10: "is_null:any",
	11: "like:str_str",
}

const (
	fnAnd uint32 = iota
	fnOr
	fnNot
	fnIsNotNull
	fnGte
	fnGt
	fnLte
	fnLt
	fnEqual
	fnIn
	fnIsNull
	fnLike
)

func field(idx int32) *substraitpb.Expression {
	return &substraitpb.Expression{
		RexType: &substraitpb.Expression_Selection{
			Selection: &substraitpb.Expression_FieldReference{
				ReferenceType: &substraitpb.Expression_FieldReference_DirectReference{
					DirectReference: &substraitpb.Expression_ReferenceSegment{
						ReferenceType: &substraitpb.Expression_ReferenceSegment_StructField_{
							StructField: &substraitpb.Expression_ReferenceSegment_StructField{Field: idx},
						},
					},
				},
			},
		},
	}
}

func i64(v int64) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_I64{I64: v}}
}

func i32(v int32) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_I32{I32: v}}
}

func fp64(v float64) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_Fp64{Fp64: v}}
}

func str(v string) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_String_{String_: v}}
}

func boolLit(v bool) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_Boolean{Boolean: v}}
}

func lit(l *substraitpb.Expression_Literal) *substraitpb.Expression {
	return &substraitpb.Expression{RexType: &substraitpb.Expression_Literal_{Literal: l}}
}

func list(items ...*substraitpb.Expression_Literal) *substraitpb.Expression {
	return lit(&substraitpb.Expression_Literal{
		LiteralType: &substraitpb.Expression_Literal_List_{
			List: &substraitpb.Expression_Literal_List{Values: items},
		},
	})
}

func call(anchor uint32, args ...*substraitpb.Expression) *substraitpb.Expression {
	fnArgs := make([]*substraitpb.FunctionArgument, len(args))
	for i, a := range args {
		fnArgs[i] = &substraitpb.FunctionArgument{
			ArgType: &substraitpb.FunctionArgument_Value{Value: a},
		}
	}
	return &substraitpb.Expression{
		RexType: &substraitpb.Expression_ScalarFunction_{
			ScalarFunction: &substraitpb.Expression_ScalarFunction{
				FunctionReference: anchor,
				Arguments:         fnArgs,
			},
		},
	}
}

func scalarFn(e *substraitpb.Expression) *substraitpb.Expression_ScalarFunction {
	return e.GetScalarFunction()
}

func bigintCols(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Kind: literal.ColumnBigint}
	}
	return cols
}
