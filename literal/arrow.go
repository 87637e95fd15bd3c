package literal

import "github.com/apache/arrow-go/v18/arrow"

// DataType returns the Arrow data type a column of this kind is scanned as.
// ColumnUnknown maps to the Arrow null type.
func (k ColumnKind) DataType() arrow.DataType {
	switch k {
	case ColumnInteger:
		return arrow.PrimitiveTypes.Int32
	case ColumnBigint:
		return arrow.PrimitiveTypes.Int64
	case ColumnDouble:
		return arrow.PrimitiveTypes.Float64
	case ColumnVarchar:
		return arrow.BinaryTypes.String
	case ColumnBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.Null
	}
}

// KindOf returns the ColumnKind backing an Arrow data type, or ColumnUnknown
// for types outside the analyzer's scalar set.
func KindOf(dt arrow.DataType) ColumnKind {
	switch dt.ID() {
	case arrow.INT32:
		return ColumnInteger
	case arrow.INT64:
		return ColumnBigint
	case arrow.FLOAT64:
		return ColumnDouble
	case arrow.STRING:
		return ColumnVarchar
	case arrow.BOOL:
		return ColumnBoolean
	default:
		return ColumnUnknown
	}
}

// DataType returns the Arrow data type of a literal of this kind. KindNull
// maps to the Arrow null type.
func (k Kind) DataType() arrow.DataType {
	switch k {
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindI32:
		return arrow.PrimitiveTypes.Int32
	case KindI64:
		return arrow.PrimitiveTypes.Int64
	case KindFP64:
		return arrow.PrimitiveTypes.Float64
	case KindString:
		return arrow.BinaryTypes.String
	default:
		return arrow.Null
	}
}
