package sexpr

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"
)

// ArrowType maps a Substrait type to the Arrow data type the engine scans
// it as. Only the scalar kinds in the converter's scope are supported;
// anything else surfaces as UnsupportedExpressionError.
func ArrowType(t *substraitpb.Type) (arrow.DataType, error) {
	if t == nil {
		return nil, &UnsupportedExpressionError{Kind: "missing type"}
	}
	switch t.GetKind().(type) {
	case *substraitpb.Type_Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case *substraitpb.Type_I32_:
		return arrow.PrimitiveTypes.Int32, nil
	case *substraitpb.Type_I64_:
		return arrow.PrimitiveTypes.Int64, nil
	case *substraitpb.Type_Fp64:
		return arrow.PrimitiveTypes.Float64, nil
	case *substraitpb.Type_String_:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, &UnsupportedExpressionError{Kind: fmt.Sprintf("type %T", t.GetKind())}
	}
}

// Nullable reports whether a Substrait type is declared nullable.
// Unspecified nullability is treated as nullable.
func Nullable(t *substraitpb.Type) bool {
	var n substraitpb.Type_Nullability
	switch k := t.GetKind().(type) {
	case *substraitpb.Type_Bool:
		n = k.Bool.GetNullability()
	case *substraitpb.Type_I32_:
		n = k.I32.GetNullability()
	case *substraitpb.Type_I64_:
		n = k.I64.GetNullability()
	case *substraitpb.Type_Fp64:
		n = k.Fp64.GetNullability()
	case *substraitpb.Type_String_:
		n = k.String_.GetNullability()
	default:
		return true
	}
	return n != substraitpb.Type_NULLABILITY_REQUIRED
}
