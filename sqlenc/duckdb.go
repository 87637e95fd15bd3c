// Package sqlenc renders typed expressions and subfield filter
// primitives as DuckDB SQL predicates.
//
// The encoder exists for diagnostics and verification: re-rendering both
// halves of a partitioned filter as SQL makes the pushdown/residual split
// checkable against a real engine. It is not on the conversion path.
package sqlenc

import (
	"fmt"
	"strings"

	"github.com/arrowplane/substraitplan/filter"
	"github.com/arrowplane/substraitplan/literal"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// DuckDBEncoder encodes expressions to DuckDB SQL syntax.
type DuckDBEncoder struct {
	// Columns maps field-reference indices to column names.
	Columns []string
}

// NewDuckDBEncoder creates an encoder resolving field references through
// the given column names.
func NewDuckDBEncoder(columns []string) *DuckDBEncoder {
	return &DuckDBEncoder{Columns: columns}
}

// Encode converts a typed expression to SQL.
func (e *DuckDBEncoder) Encode(expr typedexpr.Expr) (string, error) {
	switch x := expr.(type) {
	case *typedexpr.FieldRef:
		if x.Index < 0 || x.Index >= len(e.Columns) {
			return "", fmt.Errorf("sqlenc: field reference %d out of range", x.Index)
		}
		return quoteIdent(e.Columns[x.Index]), nil

	case *typedexpr.Constant:
		return encodeValue(x.Value), nil

	case *typedexpr.Comparison:
		left, err := e.Encode(x.Left)
		if err != nil {
			return "", err
		}
		right, err := e.Encode(x.Right)
		if err != nil {
			return "", err
		}
		op, ok := comparisonSQL[x.Op]
		if !ok {
			return "", fmt.Errorf("sqlenc: comparison %s", x.Op)
		}
		return "(" + left + " " + op + " " + right + ")", nil

	case *typedexpr.Conjunction:
		op := " AND "
		if x.Op == typedexpr.OpOr {
			op = " OR "
		}
		parts := make([]string, 0, len(x.Children))
		for _, child := range x.Children {
			part, err := e.Encode(child)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "(" + strings.Join(parts, op) + ")", nil

	case *typedexpr.Unary:
		child, err := e.Encode(x.Child)
		if err != nil {
			return "", err
		}
		switch x.Op {
		case typedexpr.OpNot:
			return "(NOT " + child + ")", nil
		case typedexpr.OpIsNull:
			return "(" + child + " IS NULL)", nil
		case typedexpr.OpIsNotNull:
			return "(" + child + " IS NOT NULL)", nil
		}
		return "", fmt.Errorf("sqlenc: unary %s", x.Op)

	case *typedexpr.Call:
		if x.Name == "in" && len(x.Args) >= 1 {
			return e.encodeIn(x)
		}
		args := make([]string, 0, len(x.Args))
		for _, arg := range x.Args {
			s, err := e.Encode(arg)
			if err != nil {
				return "", err
			}
			args = append(args, s)
		}
		return x.Name + "(" + strings.Join(args, ", ") + ")", nil
	}
	return "", fmt.Errorf("sqlenc: expression %T", expr)
}

// encodeIn renders an IN call whose arguments are the needle followed by
// one constant per listed value, the shape residual IN leaves take.
func (e *DuckDBEncoder) encodeIn(x *typedexpr.Call) (string, error) {
	left, err := e.Encode(x.Args[0])
	if err != nil {
		return "", err
	}
	items := make([]string, 0, len(x.Args)-1)
	for _, arg := range x.Args[1:] {
		s, err := e.Encode(arg)
		if err != nil {
			return "", err
		}
		items = append(items, s)
	}
	return "(" + left + " IN (" + strings.Join(items, ", ") + "))", nil
}

// EncodeSubfield renders one pushed filter primitive as a predicate over
// its column.
func (e *DuckDBEncoder) EncodeSubfield(column string, sf filter.Subfield) (string, error) {
	col := quoteIdent(column)
	switch x := sf.(type) {
	case filter.AlwaysTrue:
		return "TRUE", nil
	case filter.AlwaysFalse:
		return "FALSE", nil
	case filter.IsNull:
		return "(" + col + " IS NULL)", nil
	case filter.IsNotNull:
		return "(" + col + " IS NOT NULL)", nil
	case *filter.BoolValue:
		v := "FALSE"
		if x.Value {
			v = "TRUE"
		}
		return nullable("("+col+" = "+v+")", col, x.NullAllowed), nil
	case *filter.BigintRange:
		return nullable(rangeSQL(col,
			fmt.Sprintf("%d", x.Lower), x.LowerUnbounded, x.LowerExclusive,
			fmt.Sprintf("%d", x.Upper), x.UpperUnbounded, x.UpperExclusive,
		), col, x.NullAllowed), nil
	case *filter.DoubleRange:
		return nullable(rangeSQL(col,
			fmt.Sprintf("%g", x.Lower), x.LowerUnbounded, x.LowerExclusive,
			fmt.Sprintf("%g", x.Upper), x.UpperUnbounded, x.UpperExclusive,
		), col, x.NullAllowed), nil
	case *filter.BytesRange:
		return nullable(rangeSQL(col,
			quoteString(x.Lower), x.LowerUnbounded, x.LowerExclusive,
			quoteString(x.Upper), x.UpperUnbounded, x.UpperExclusive,
		), col, x.NullAllowed), nil
	case *filter.BytesValues:
		items := make([]string, len(x.Values))
		for i, v := range x.Values {
			items[i] = quoteString(v)
		}
		return nullable("("+col+" IN ("+strings.Join(items, ", ")+"))", col, x.NullAllowed), nil
	case *filter.BigintValuesUsingBitmask:
		return nullable(bigintIn(col, x.Values), col, x.NullAllowed), nil
	case *filter.BigintValuesUsingHashTable:
		return nullable(bigintIn(col, x.Values), col, x.NullAllowed), nil
	case *filter.BigintMultiRange:
		parts := make([]string, 0, len(x.Ranges))
		for _, r := range x.Ranges {
			parts = append(parts, rangeSQL(col,
				fmt.Sprintf("%d", r.Lower), r.LowerUnbounded, r.LowerExclusive,
				fmt.Sprintf("%d", r.Upper), r.UpperUnbounded, r.UpperExclusive,
			))
		}
		return nullable("("+strings.Join(parts, " OR ")+")", col, x.NullAllowed), nil
	case *filter.MultiRange:
		parts := make([]string, 0, len(x.Filters))
		for _, f := range x.Filters {
			part, err := e.EncodeSubfield(column, f)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return nullable("("+strings.Join(parts, " OR ")+")", col, x.NullAllowed), nil
	}
	return "", fmt.Errorf("sqlenc: subfield %s", sf.Kind())
}

// EncodeSubfields joins every primitive of a pushdown map with AND, in
// column-name order.
func (e *DuckDBEncoder) EncodeSubfields(filters map[string]filter.Subfield) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	columns := make([]string, 0, len(filters))
	for col := range filters {
		columns = append(columns, col)
	}
	sortStrings(columns)

	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		part, err := e.EncodeSubfield(col, filters[col])
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

var comparisonSQL = map[typedexpr.Op]string{
	typedexpr.OpEqual:              "=",
	typedexpr.OpNotEqual:           "<>",
	typedexpr.OpLessThan:           "<",
	typedexpr.OpGreaterThan:        ">",
	typedexpr.OpLessThanOrEqual:    "<=",
	typedexpr.OpGreaterThanOrEqual: ">=",
}

func rangeSQL(col, lower string, lowerUnbounded, lowerExclusive bool, upper string, upperUnbounded, upperExclusive bool) string {
	var parts []string
	if !lowerUnbounded {
		op := ">="
		if lowerExclusive {
			op = ">"
		}
		parts = append(parts, col+" "+op+" "+lower)
	}
	if !upperUnbounded {
		op := "<="
		if upperExclusive {
			op = "<"
		}
		parts = append(parts, col+" "+op+" "+upper)
	}
	if len(parts) == 0 {
		return "(" + col + " IS NOT NULL OR " + col + " IS NULL)"
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// nullable widens a value predicate to admit nulls when the primitive
// allows them; otherwise the value predicate already rejects nulls in
// SQL's three-valued logic.
func nullable(pred, col string, nullAllowed bool) string {
	if !nullAllowed {
		return pred
	}
	return "(" + pred + " OR " + col + " IS NULL)"
}

func bigintIn(col string, values []int64) string {
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = fmt.Sprintf("%d", v)
	}
	return "(" + col + " IN (" + strings.Join(items, ", ") + "))"
}

func encodeValue(v literal.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	if v.Kind() == literal.KindString {
		return quoteString(v.Str())
	}
	return v.String()
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// sortStrings is a tiny insertion sort; pushdown maps are small.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
