// Package literal provides the scalar value representation shared by the
// expression IR, the filter-pushdown analyzer, and the plan translator.
//
// Substrait literals carry their own type tag on the wire and keep it
// here; the filter builder converts a value to the type of the column it
// is compared against when it lowers it, so a plain sum type over the
// scalar kinds the analyzer understands is enough.
// Complex and temporal literal kinds are out of scope: they never appear as
// the literal side of a pushdown-eligible comparison.
package literal

import (
	"fmt"
	"math"
)

// Kind identifies which field of Value is populated.
type Kind uint8

const (
	// KindNull marks a SQL NULL literal. Rare as a comparison operand but
	// kept distinct rather than folded into one of the other kinds.
	KindNull Kind = iota
	KindBool
	KindI32
	KindI64
	KindFP64
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindFP64:
		return "fp64"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("literal.Kind(%d)", uint8(k))
	}
}

// Value is a tagged scalar constant. Comparisons never cross Kind: the
// column's declared type selects which constructor the caller uses, and the
// analyzer never inspects Kind to make a decision; it is read only when a
// Value is finally lowered into a typed filter primitive or re-serialized.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Null returns the null literal.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean literal.
func Bool(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{kind: KindBool, i: i}
}

// I32 wraps a 32-bit integer literal.
func I32(v int32) Value { return Value{kind: KindI32, i: int64(v)} }

// I64 wraps a 64-bit integer literal.
func I64(v int64) Value { return Value{kind: KindI64, i: v} }

// FP64 wraps a double-precision literal.
func FP64(v float64) Value { return Value{kind: KindFP64, f: v} }

// String wraps a text literal.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind reports which scalar kind this value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether this is the null literal.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the value as a bool. Valid for KindBool.
func (v Value) Bool() bool { return v.i != 0 }

// Int64 returns the value as an int64. Valid for KindI32 and KindI64.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the value as a float64. Valid for KindFP64.
func (v Value) Float64() float64 { return v.f }

// Str returns the value as a string. Valid for KindString.
func (v Value) Str() string { return v.s }

// String implements fmt.Stringer for debug output and log lines.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case KindI32, KindI64:
		return fmt.Sprintf("%d", v.i)
	case KindFP64:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return "<invalid literal>"
	}
}

// ColumnKind identifies the declared type of a column as far as the
// filter-pushdown analyzer and plan translator are concerned. This is a
// narrower set than Substrait's full type system: comparisons never cross
// types, the column sets the type.
type ColumnKind uint8

const (
	ColumnUnknown ColumnKind = iota
	ColumnInteger            // Substrait i32
	ColumnBigint             // Substrait i64
	ColumnDouble             // Substrait fp64
	ColumnVarchar            // Substrait string
	ColumnBoolean
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnInteger:
		return "INTEGER"
	case ColumnBigint:
		return "BIGINT"
	case ColumnDouble:
		return "DOUBLE"
	case ColumnVarchar:
		return "VARCHAR"
	case ColumnBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// IsInteger reports whether the column is one of the integer-valued kinds
// that lower to Bigint* filter primitives.
func (k ColumnKind) IsInteger() bool {
	return k == ColumnInteger || k == ColumnBigint
}

// Lowest returns the placeholder used for an unbounded lower range edge.
// Numeric kinds use their minimum representable value; VARCHAR uses the
// empty string, which is never read because textual ranges carry an
// explicit "unbounded" flag instead.
func Lowest(k ColumnKind) Value {
	switch k {
	case ColumnInteger:
		return I32(-1 << 31)
	case ColumnBigint:
		return I64(-1 << 63)
	case ColumnDouble:
		return FP64(negInf)
	case ColumnVarchar:
		return String("")
	default:
		return Null()
	}
}

// Highest returns the placeholder used for an unbounded upper range edge.
func Highest(k ColumnKind) Value {
	switch k {
	case ColumnInteger:
		return I32(1<<31 - 1)
	case ColumnBigint:
		return I64(1<<63 - 1)
	case ColumnDouble:
		return FP64(posInf)
	case ColumnVarchar:
		return String("")
	default:
		return Null()
	}
}

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)
