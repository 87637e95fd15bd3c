package filter

import (
	"testing"

	"github.com/arrowplane/substraitplan/literal"
	"github.com/arrowplane/substraitplan/typedexpr"
)

func TestScenarioA_SimpleRange(t *testing.T) {
	// and(gte(c0, 10), lt(c0, 100)) over (c0: BIGINT)
	a := NewAnalyzer(testFuncs, nil)
	res, err := a.Analyze(call(fnAnd,
		call(fnGte, field(0), lit(i64(10))),
		call(fnLt, field(0), lit(i64(100))),
	), bigintCols("c0"), FormatUnknown)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Residual != nil {
		t.Errorf("expected no residual, got %v", res.Residual)
	}
	if len(res.Subfields) != 1 {
		t.Fatalf("expected 1 subfield filter, got %d", len(res.Subfields))
	}
	r, ok := res.Subfields["c0"].(*BigintRange)
	if !ok {
		t.Fatalf("expected BigintRange on c0, got %T", res.Subfields["c0"])
	}
	want := BigintRange{Lower: 10, Upper: 100, UpperExclusive: true, NullAllowed: true}
	if *r != want {
		t.Errorf("expected %+v, got %+v", want, *r)
	}
}

func TestScenarioB_InWithIsNotNull(t *testing.T) {
	// and(is_not_null(c0), in(c0, [1,2,3])) over (c0: BIGINT)
	a := NewAnalyzer(testFuncs, nil)
	res, err := a.Analyze(call(fnAnd,
		call(fnIsNotNull, field(0)),
		call(fnIn, field(0), list(i64(1), i64(2), i64(3))),
	), bigintCols("c0"), FormatUnknown)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Residual != nil {
		t.Errorf("expected no residual, got %v", res.Residual)
	}
	bm, ok := res.Subfields["c0"].(*BigintValuesUsingBitmask)
	if !ok {
		t.Fatalf("expected BigintValuesUsingBitmask on c0, got %T", res.Subfields["c0"])
	}
	if bm.NullAllowed {
		t.Error("is_not_null should forbid nulls on the value set")
	}
	if len(bm.Values) != 3 || bm.Min != 1 || bm.Max != 3 {
		t.Errorf("unexpected value set: %+v", *bm)
	}
}

func TestScenarioC_NotEqual(t *testing.T) {
	// not(equal(c0, 5)) over (c0: INTEGER)
	a := NewAnalyzer(testFuncs, nil)
	res, err := a.Analyze(
		call(fnNot, call(fnEqual, field(0), lit(i32(5)))),
		[]Column{{Name: "c0", Kind: literal.ColumnInteger}},
		FormatUnknown,
	)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Residual != nil {
		t.Errorf("expected no residual, got %v", res.Residual)
	}
	mr, ok := res.Subfields["c0"].(*BigintMultiRange)
	if !ok {
		t.Fatalf("expected BigintMultiRange on c0, got %T", res.Subfields["c0"])
	}
	if len(mr.Ranges) != 2 || !mr.NullAllowed {
		t.Fatalf("unexpected multi range: %+v", *mr)
	}
	if !mr.Ranges[0].LowerUnbounded || mr.Ranges[0].Upper != 5 || !mr.Ranges[0].UpperExclusive {
		t.Errorf("below range: %+v", *mr.Ranges[0])
	}
	if !mr.Ranges[1].UpperUnbounded || mr.Ranges[1].Lower != 5 || !mr.Ranges[1].LowerExclusive {
		t.Errorf("above range: %+v", *mr.Ranges[1])
	}
}

func TestScenarioD_CrossColumnOr(t *testing.T) {
	// or(equal(c0,1), equal(c1,2)) is not pushable; the or survives as
	// the residual.
	a := NewAnalyzer(testFuncs, nil)
	res, err := a.Analyze(call(fnOr,
		call(fnEqual, field(0), lit(i64(1))),
		call(fnEqual, field(1), lit(i64(2))),
	), bigintCols("c0", "c1"), FormatUnknown)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Subfields) != 0 {
		t.Errorf("expected no pushdown, got %v", res.Subfields)
	}
	conj, ok := res.Residual.(*typedexpr.Conjunction)
	if !ok || conj.Op != typedexpr.OpOr {
		t.Fatalf("expected OR residual, got %T", res.Residual)
	}
}

func TestScenarioE_ParquetVetoOnIsNull(t *testing.T) {
	// is_null is never a pushdown candidate; on parquet the scan gets no
	// filters and the original leaf survives as the residual.
	a := NewAnalyzer(testFuncs, nil)
	res, err := a.Analyze(
		call(fnIsNull, field(0)),
		bigintCols("c0"), FormatParquet)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Subfields) != 0 {
		t.Errorf("expected no pushdown, got %v", res.Subfields)
	}
	un, ok := res.Residual.(*typedexpr.Unary)
	if !ok || un.Op != typedexpr.OpIsNull {
		t.Fatalf("expected IS_NULL residual, got %T", res.Residual)
	}
}

func TestParquetVetoRevertsWholeConjunction(t *testing.T) {
	// IsNotNull is unsupported by the parquet reader. Its presence
	// clears the whole filter map: the gte (which alone would push)
	// reverts too, and the residual is the original conjunction.
	a := NewAnalyzer(testFuncs, nil)
	cond := call(fnAnd,
		call(fnIsNotNull, field(0)),
		call(fnGte, field(1), lit(i64(10))),
	)
	cols := bigintCols("c0", "c1")

	res, err := a.Analyze(cond, cols, FormatParquet)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Subfields) != 0 {
		t.Errorf("expected full veto, got %v", res.Subfields)
	}
	conj, ok := res.Residual.(*typedexpr.Conjunction)
	if !ok || conj.Op != typedexpr.OpAnd || len(conj.Children) != 2 {
		t.Fatalf("expected the full conjunction as residual, got %T", res.Residual)
	}

	// The same filter on DWRF pushes both leaves.
	res, err = a.Analyze(cond, cols, FormatDWRF)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Subfields) != 2 || res.Residual != nil {
		t.Errorf("expected both leaves pushed on DWRF, got %v / %v", res.Subfields, res.Residual)
	}
}

func TestAnalyzeNilFilter(t *testing.T) {
	a := NewAnalyzer(testFuncs, nil)
	res, err := a.Analyze(nil, bigintCols("c0"), FormatUnknown)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Subfields) != 0 || res.Residual != nil {
		t.Errorf("expected empty result, got %+v", res)
	}
}

// evalTyped evaluates the typed residual IR over a row of i64-or-null
// values. SQL three-valued logic is collapsed: a comparison with a null
// operand is false.
func evalTyped(t *testing.T, e typedexpr.Expr, row []literal.Value) bool {
	t.Helper()
	switch x := e.(type) {
	case *typedexpr.Conjunction:
		acc := x.Op == typedexpr.OpAnd
		for _, child := range x.Children {
			v := evalTyped(t, child, row)
			if x.Op == typedexpr.OpAnd {
				acc = acc && v
			} else {
				acc = acc || v
			}
		}
		return acc
	case *typedexpr.Unary:
		switch x.Op {
		case typedexpr.OpNot:
			return !evalTyped(t, x.Child, row)
		case typedexpr.OpIsNull:
			return operand(t, x.Child, row).IsNull()
		case typedexpr.OpIsNotNull:
			return !operand(t, x.Child, row).IsNull()
		}
	case *typedexpr.Comparison:
		l := operand(t, x.Left, row)
		r := operand(t, x.Right, row)
		if l.IsNull() || r.IsNull() {
			return false
		}
		switch x.Op {
		case typedexpr.OpEqual:
			return l.Int64() == r.Int64()
		case typedexpr.OpNotEqual:
			return l.Int64() != r.Int64()
		case typedexpr.OpLessThan:
			return l.Int64() < r.Int64()
		case typedexpr.OpGreaterThan:
			return l.Int64() > r.Int64()
		case typedexpr.OpLessThanOrEqual:
			return l.Int64() <= r.Int64()
		case typedexpr.OpGreaterThanOrEqual:
			return l.Int64() >= r.Int64()
		}
	}
	t.Fatalf("evalTyped: unsupported node %T", e)
	return false
}

func operand(t *testing.T, e typedexpr.Expr, row []literal.Value) literal.Value {
	t.Helper()
	switch x := e.(type) {
	case *typedexpr.FieldRef:
		return row[x.Index]
	case *typedexpr.Constant:
		return x.Value
	}
	t.Fatalf("operand: unsupported node %T", e)
	return literal.Value{}
}

// evalSubfield evaluates a filter primitive over one i64-or-null value.
func evalSubfield(t *testing.T, sf Subfield, v literal.Value) bool {
	t.Helper()
	switch x := sf.(type) {
	case IsNotNull:
		return !v.IsNull()
	case *BigintRange:
		if v.IsNull() {
			return x.NullAllowed
		}
		n := v.Int64()
		if !x.LowerUnbounded {
			if n < x.Lower || (x.LowerExclusive && n == x.Lower) {
				return false
			}
		}
		if !x.UpperUnbounded {
			if n > x.Upper || (x.UpperExclusive && n == x.Upper) {
				return false
			}
		}
		return true
	case *BigintMultiRange:
		if v.IsNull() {
			return x.NullAllowed
		}
		for _, r := range x.Ranges {
			if evalSubfield(t, r, v) {
				return true
			}
		}
		return false
	case *BigintValuesUsingBitmask:
		if v.IsNull() {
			return x.NullAllowed
		}
		for _, n := range x.Values {
			if n == v.Int64() {
				return true
			}
		}
		return false
	case *BigintValuesUsingHashTable:
		if v.IsNull() {
			return x.NullAllowed
		}
		for _, n := range x.Values {
			if n == v.Int64() {
				return true
			}
		}
		return false
	}
	t.Fatalf("evalSubfield: unsupported primitive %s", sf.Kind())
	return false
}

// TestPartitionSoundness checks that pushdown AND residual accepts the
// same non-null rows as the original filter over a grid of values. Null
// rows are exercised only through the residual: a pushed range with
// nullAllowed admits nulls at the reader level by contract, so strict
// equivalence holds row-wise for non-null values.
func TestPartitionSoundness(t *testing.T) {
	cols := bigintCols("c0", "c1")
	a := NewAnalyzer(testFuncs, nil)

	conds := map[string]func() *Result{
		"range conjunction": func() *Result {
			res, err := a.Analyze(call(fnAnd,
				call(fnGte, field(0), lit(i64(10))),
				call(fnLt, field(0), lit(i64(100))),
			), cols, FormatUnknown)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			return res
		},
		"same-column or": func() *Result {
			// Equality disjuncts occupy one slot pair each; mixed
			// lower/upper disjuncts would slot-pair instead (see the
			// disjunct-slot note on the Info type).
			res, err := a.Analyze(call(fnOr,
				call(fnEqual, field(0), lit(i64(2))),
				call(fnEqual, field(0), lit(i64(50))),
			), cols, FormatUnknown)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			return res
		},
		"not equal": func() *Result {
			res, err := a.Analyze(
				call(fnNot, call(fnEqual, field(0), lit(i64(42)))),
				cols, FormatUnknown)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			return res
		},
		"in with range residual": func() *Result {
			res, err := a.Analyze(call(fnAnd,
				call(fnIn, field(0), list(i64(5), i64(10), i64(99))),
				call(fnGte, field(0), lit(i64(8))),
			), cols, FormatUnknown)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			return res
		},
		"cross column or residual": func() *Result {
			res, err := a.Analyze(call(fnAnd,
				call(fnGte, field(0), lit(i64(10))),
				call(fnOr,
					call(fnEqual, field(0), lit(i64(11))),
					call(fnEqual, field(1), lit(i64(2))),
				),
			), cols, FormatUnknown)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			return res
		},
	}

	// The matching original predicates, expressed over the row directly.
	originals := map[string]func(c0, c1 literal.Value) bool{
		"range conjunction": func(c0, _ literal.Value) bool {
			return !c0.IsNull() && c0.Int64() >= 10 && c0.Int64() < 100
		},
		"same-column or": func(c0, _ literal.Value) bool {
			return !c0.IsNull() && (c0.Int64() == 2 || c0.Int64() == 50)
		},
		"not equal": func(c0, _ literal.Value) bool {
			return !c0.IsNull() && c0.Int64() != 42
		},
		"in with range residual": func(c0, _ literal.Value) bool {
			if c0.IsNull() {
				return false
			}
			in := c0.Int64() == 5 || c0.Int64() == 10 || c0.Int64() == 99
			return in && c0.Int64() >= 8
		},
		"cross column or residual": func(c0, c1 literal.Value) bool {
			if c0.IsNull() || c0.Int64() < 10 {
				return false
			}
			return c0.Int64() == 11 || (!c1.IsNull() && c1.Int64() == 2)
		},
	}

	values := []literal.Value{
		literal.Null(), literal.I64(0), literal.I64(2), literal.I64(5),
		literal.I64(8), literal.I64(10), literal.I64(11), literal.I64(42),
		literal.I64(50), literal.I64(99), literal.I64(100), literal.I64(1000),
	}

	for name, build := range conds {
		res := build()
		original := originals[name]
		for _, c0 := range values {
			for _, c1 := range values {
				if c0.IsNull() && len(res.Subfields) > 0 {
					continue
				}
				row := []literal.Value{c0, c1}

				got := true
				for colName, sf := range res.Subfields {
					colIdx := 0
					if colName == "c1" {
						colIdx = 1
					}
					if !evalSubfield(t, sf, row[colIdx]) {
						got = false
					}
				}
				if got && res.Residual != nil {
					got = evalTyped(t, res.Residual, row)
				}

				if want := original(c0, c1); got != want {
					t.Errorf("%s: row (%s,%s): pushdown+residual=%v, original=%v",
						name, c0, c1, got, want)
				}
			}
		}
	}
}
