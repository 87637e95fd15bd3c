package filter

import "github.com/arrowplane/substraitplan/literal"

// bitmaskSpanPerValue bounds the value span a bitmask representation may
// cover, relative to the number of values. Sparser sets fall back to the
// hash-table representation.
const bitmaskSpanPerValue = 64

// build lowers every initialized Info into one Subfield primitive, keyed
// by column name. Columns are visited in schema order so the produced map
// is deterministic for a given plan.
func (a *Analyzer) build(infos map[int]*Info, cols []Column) (map[string]Subfield, error) {
	out := make(map[string]Subfield)
	for idx := range cols {
		info := infos[idx]
		if info == nil || !info.IsInitialized() {
			continue
		}
		sf, err := buildColumn(info, cols[idx].Kind)
		if err != nil {
			return nil, err
		}
		if sf != nil {
			out[cols[idx].Name] = sf
		}
	}
	return out, nil
}

// buildColumn lowers one column's constraints. The cases are ordered by
// exclusivity: an IN set excludes ranges and not-equal, a not-equal
// excludes ranges, a bare IS NOT NULL yields the dedicated primitive, and
// anything else is one or more ranges.
func buildColumn(info *Info, kind literal.ColumnKind) (Subfield, error) {
	rangeCount := info.RangeCount()

	if len(info.values) > 0 {
		if rangeCount > 0 {
			return nil, notImplementedf("range conditions combined with an IN filter")
		}
		if info.notValue != nil {
			return nil, notImplementedf("not-equal combined with an IN filter")
		}
		return buildValues(info.values, info.nullAllowed, kind)
	}

	if info.notValue != nil {
		if rangeCount > 0 {
			return nil, notImplementedf("range conditions combined with a not-equal filter")
		}
		return buildNotEqual(*info.notValue, info.nullAllowed, kind)
	}

	if rangeCount == 0 {
		if !info.nullAllowed {
			return IsNotNull{}, nil
		}
		return nil, nil
	}

	return buildRanges(info, kind)
}

// buildValues lowers an IN value set, typed by the column kind.
func buildValues(values []literal.Value, nullAllowed bool, kind literal.ColumnKind) (Subfield, error) {
	switch kind {
	case literal.ColumnInteger, literal.ColumnBigint:
		ints := make([]int64, 0, len(values))
		for _, v := range values {
			n, err := asInt64(v)
			if err != nil {
				return nil, err
			}
			ints = append(ints, n)
		}
		return bigintValues(ints, nullAllowed), nil

	case literal.ColumnDouble:
		// There is no double value-set primitive; a point range per
		// value joined as a disjunction is equivalent.
		ranges := make([]Subfield, 0, len(values))
		for _, v := range values {
			f, err := asFloat64(v)
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, &DoubleRange{
				Lower: f, Upper: f, NullAllowed: nullAllowed,
			})
		}
		return &MultiRange{Filters: ranges, NullAllowed: nullAllowed}, nil

	case literal.ColumnVarchar:
		strs := make([]string, 0, len(values))
		for _, v := range values {
			s, err := asString(v)
			if err != nil {
				return nil, err
			}
			strs = append(strs, s)
		}
		return &BytesValues{Values: strs, NullAllowed: nullAllowed}, nil

	default:
		return nil, notImplementedf("IN filter on %s column", kind)
	}
}

// bigintValues picks the value-set representation by the span of the
// values: dense sets use a bitmask, sparse ones a hash table.
func bigintValues(values []int64, nullAllowed bool) Subfield {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span < 0 || span > bitmaskSpanPerValue*int64(len(values)) {
		// span < 0 means the subtraction overflowed
		return &BigintValuesUsingHashTable{Values: values, NullAllowed: nullAllowed}
	}
	return &BigintValuesUsingBitmask{Min: min, Max: max, Values: values, NullAllowed: nullAllowed}
}

// buildNotEqual lowers NOT(col = v) into the two-range disjunction
// (-inf, v) or (v, +inf), typed by the column kind.
func buildNotEqual(v literal.Value, nullAllowed bool, kind literal.ColumnKind) (Subfield, error) {
	switch kind {
	case literal.ColumnInteger, literal.ColumnBigint:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		return &BigintMultiRange{
			Ranges: []*BigintRange{
				{
					Lower: literal.Lowest(literal.ColumnBigint).Int64(), LowerUnbounded: true,
					Upper: n, UpperExclusive: true,
					NullAllowed: nullAllowed,
				},
				{
					Lower: n, LowerExclusive: true,
					Upper: literal.Highest(literal.ColumnBigint).Int64(), UpperUnbounded: true,
					NullAllowed: nullAllowed,
				},
			},
			NullAllowed: nullAllowed,
		}, nil

	case literal.ColumnDouble:
		f, err := asFloat64(v)
		if err != nil {
			return nil, err
		}
		return &MultiRange{
			Filters: []Subfield{
				&DoubleRange{
					Lower: literal.Lowest(literal.ColumnDouble).Float64(), LowerUnbounded: true,
					Upper: f, UpperExclusive: true,
					NullAllowed: nullAllowed,
				},
				&DoubleRange{
					Lower: f, LowerExclusive: true,
					Upper: literal.Highest(literal.ColumnDouble).Float64(), UpperUnbounded: true,
					NullAllowed: nullAllowed,
				},
			},
			NullAllowed: nullAllowed,
		}, nil

	case literal.ColumnVarchar:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return &MultiRange{
			Filters: []Subfield{
				&BytesRange{
					LowerUnbounded: true,
					Upper:          s, UpperExclusive: true,
					NullAllowed: nullAllowed,
				},
				&BytesRange{
					Lower: s, LowerExclusive: true,
					UpperUnbounded: true,
					NullAllowed:    nullAllowed,
				},
			},
			NullAllowed: nullAllowed,
		}, nil

	default:
		return nil, notImplementedf("not-equal filter on %s column", kind)
	}
}

// buildRanges lowers the bound disjuncts. Slot i of the lower and upper
// lists forms range i; a missing slot is unbounded on that side.
func buildRanges(info *Info, kind literal.ColumnKind) (Subfield, error) {
	n := info.RangeCount()
	ranges := make([]Subfield, 0, n)
	for i := 0; i < n; i++ {
		lower := Bound{Value: literal.Lowest(kind)}
		lowerUnbounded := true
		if i < len(info.lowers) {
			lower = info.lowers[i]
			lowerUnbounded = false
		}
		upper := Bound{Value: literal.Highest(kind)}
		upperUnbounded := true
		if i < len(info.uppers) {
			upper = info.uppers[i]
			upperUnbounded = false
		}
		r, err := newRange(kind, lower, lowerUnbounded, upper, upperUnbounded, info.nullAllowed)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	if n == 1 {
		return ranges[0], nil
	}
	if kind.IsInteger() {
		bigint := make([]*BigintRange, len(ranges))
		for i, r := range ranges {
			bigint[i] = r.(*BigintRange)
		}
		return &BigintMultiRange{Ranges: bigint, NullAllowed: info.nullAllowed}, nil
	}
	return &MultiRange{Filters: ranges, NullAllowed: info.nullAllowed}, nil
}

// newRange builds a single range primitive typed by the column kind. A
// boolean column admits only the point range an equality produces, which
// lowers to BoolValue.
func newRange(kind literal.ColumnKind, lower Bound, lowerUnbounded bool, upper Bound, upperUnbounded bool, nullAllowed bool) (Subfield, error) {
	switch kind {
	case literal.ColumnInteger, literal.ColumnBigint:
		lo, err := asInt64(lower.Value)
		if err != nil {
			return nil, err
		}
		hi, err := asInt64(upper.Value)
		if err != nil {
			return nil, err
		}
		return &BigintRange{
			Lower: lo, LowerUnbounded: lowerUnbounded, LowerExclusive: lower.Exclusive,
			Upper: hi, UpperUnbounded: upperUnbounded, UpperExclusive: upper.Exclusive,
			NullAllowed: nullAllowed,
		}, nil

	case literal.ColumnDouble:
		lo, err := asFloat64(lower.Value)
		if err != nil {
			return nil, err
		}
		hi, err := asFloat64(upper.Value)
		if err != nil {
			return nil, err
		}
		return &DoubleRange{
			Lower: lo, LowerUnbounded: lowerUnbounded, LowerExclusive: lower.Exclusive,
			Upper: hi, UpperUnbounded: upperUnbounded, UpperExclusive: upper.Exclusive,
			NullAllowed: nullAllowed,
		}, nil

	case literal.ColumnVarchar:
		lo, err := asString(lower.Value)
		if err != nil {
			return nil, err
		}
		hi, err := asString(upper.Value)
		if err != nil {
			return nil, err
		}
		return &BytesRange{
			Lower: lo, LowerUnbounded: lowerUnbounded, LowerExclusive: lower.Exclusive,
			Upper: hi, UpperUnbounded: upperUnbounded, UpperExclusive: upper.Exclusive,
			NullAllowed: nullAllowed,
		}, nil

	case literal.ColumnBoolean:
		if lowerUnbounded || upperUnbounded || lower.Exclusive || upper.Exclusive ||
			lower.Value != upper.Value || lower.Value.Kind() != literal.KindBool {
			return nil, notImplementedf("range filter on BOOLEAN column")
		}
		return &BoolValue{Value: lower.Value.Bool(), NullAllowed: nullAllowed}, nil

	default:
		return nil, notImplementedf("subfield filter on %s column", kind)
	}
}

func asInt64(v literal.Value) (int64, error) {
	switch v.Kind() {
	case literal.KindI32, literal.KindI64:
		return v.Int64(), nil
	default:
		return 0, notImplementedf("%s literal on an integer column", v.Kind())
	}
}

func asFloat64(v literal.Value) (float64, error) {
	switch v.Kind() {
	case literal.KindFP64:
		return v.Float64(), nil
	case literal.KindI32, literal.KindI64:
		return float64(v.Int64()), nil
	default:
		return 0, notImplementedf("%s literal on a DOUBLE column", v.Kind())
	}
}

func asString(v literal.Value) (string, error) {
	if v.Kind() != literal.KindString {
		return "", notImplementedf("%s literal on a VARCHAR column", v.Kind())
	}
	return v.Str(), nil
}
