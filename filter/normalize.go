package filter

import (
	"log/slog"

	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/funcmap"
	"github.com/arrowplane/substraitplan/literal"
	"github.com/arrowplane/substraitplan/sexpr"
)

// Substrait function names the analyzer recognizes.
const (
	nameIsNotNull = "is_not_null"
	nameGte       = "gte"
	nameGt        = "gt"
	nameLte       = "lte"
	nameLt        = "lt"
	nameEqual     = "equal"
	nameIn        = "in"
	nameOr        = "or"
	nameNot       = "not"
	nameAnd       = "and"
)

// Column describes one input column of the scan under analysis.
type Column struct {
	Name string
	Kind literal.ColumnKind
}

// Analyzer partitions a scan filter into pushdown candidates and
// residuals, and lowers the candidates into subfield primitives. An
// Analyzer is cheap to construct and is used for one scan at a time.
type Analyzer struct {
	funcs  funcmap.Map
	logger *slog.Logger
}

// NewAnalyzer returns an analyzer resolving function anchors through
// funcs. logger may be nil; it is used for diagnostics only.
func NewAnalyzer(funcs funcmap.Map, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{funcs: funcs, logger: logger}
}

// flatten walks the expression and splits the conjunction into leaves.
// Scalar calls named "and" recurse; every other scalar call is collected
// into calls. Leaves that are not scalar calls at all (literals, bare
// field references) bypass classification and are collected verbatim for
// the residual.
func (a *Analyzer) flatten(e *substraitpb.Expression, calls *[]*substraitpb.Expression_ScalarFunction, verbatim *[]*substraitpb.Expression) error {
	fn, ok := sexpr.ScalarFunc(e)
	if !ok {
		*verbatim = append(*verbatim, e)
		return nil
	}
	name, err := a.funcs.Name(fn.GetFunctionReference())
	if err != nil {
		return err
	}
	if name != nameAnd {
		*calls = append(*calls, fn)
		return nil
	}
	for _, arg := range sexpr.Args(fn) {
		if arg == nil {
			return &sexpr.UnsupportedExpressionError{Kind: "non-value argument of and"}
		}
		if err := a.flatten(arg, calls, verbatim); err != nil {
			return err
		}
	}
	return nil
}

// separate splits the flattened leaves into the pushdown candidates and
// the residual calls, applying the eligibility rules per leaf kind.
func (a *Analyzer) separate(calls []*substraitpb.Expression_ScalarFunction, cols []Column) (pushdown, residual []*substraitpb.Expression_ScalarFunction, err error) {
	inCols, err := a.inColumnIndices(calls)
	if err != nil {
		return nil, nil, err
	}
	// Columns that already carry a not(equal) candidate. A second one on
	// the same column cannot be pushed: the lowered multi-range is a
	// disjunction while the conjunction of two not-equals is not.
	notEqualCols := make(map[int]struct{})

	for _, fn := range calls {
		name, err := a.funcs.Name(fn.GetFunctionReference())
		if err != nil {
			return nil, nil, err
		}

		var ok bool
		switch name {
		case nameNot:
			ok, err = a.canPushdownNot(fn, inCols, notEqualCols)
		case nameOr:
			ok, err = a.canPushdownOr(fn, inCols, cols)
		default:
			ok = canPushdownCommon(fn, inCols, name)
		}
		if err != nil {
			return nil, nil, err
		}
		if ok {
			pushdown = append(pushdown, fn)
		} else {
			residual = append(residual, fn)
		}
	}
	return pushdown, residual, nil
}

// inColumnIndices collects the columns referenced by IN leaves. Only an
// IN whose first argument is a direct field reference counts; other
// shapes cannot be pushed down at all.
func (a *Analyzer) inColumnIndices(calls []*substraitpb.Expression_ScalarFunction) (map[int]struct{}, error) {
	inCols := make(map[int]struct{})
	for _, fn := range calls {
		name, err := a.funcs.Name(fn.GetFunctionReference())
		if err != nil {
			return nil, err
		}
		if name != nameIn {
			continue
		}
		args := sexpr.Args(fn)
		if len(args) != 2 || args[0] == nil {
			continue
		}
		if idx, ok := sexpr.FieldIndex(args[0]); ok {
			inCols[idx] = struct{}{}
		}
	}
	return inCols, nil
}

// commonNames are the comparison leaves eligible for direct pushdown.
var commonNames = map[string]struct{}{
	nameIsNotNull: {}, nameGte: {}, nameGt: {}, nameLte: {}, nameLt: {},
	nameEqual: {}, nameIn: {},
}

// notChildNames are the comparisons a NOT may wrap and stay eligible.
var notChildNames = map[string]struct{}{
	nameGte: {}, nameGt: {}, nameLte: {}, nameLt: {}, nameEqual: {},
}

// canPushdownCommon applies the eligibility rule for a plain comparison
// leaf. On a column constrained by IN, only IS NOT NULL or another IN may
// still be pushed.
func canPushdownCommon(fn *substraitpb.Expression_ScalarFunction, inCols map[int]struct{}, name string) bool {
	if _, ok := commonNames[name]; !ok {
		return false
	}
	fieldIdx, ok := fieldOrWithLiteral(fn)
	if !ok {
		return false
	}
	if _, isIn := inCols[fieldIdx]; !isIn {
		return true
	}
	return name == nameIsNotNull || name == nameIn
}

// canPushdownNot applies the eligibility rule for a NOT leaf.
func (a *Analyzer) canPushdownNot(fn *substraitpb.Expression_ScalarFunction, inCols map[int]struct{}, notEqualCols map[int]struct{}) (bool, error) {
	args := sexpr.Args(fn)
	if len(args) != 1 || args[0] == nil {
		return false, nil
	}
	child, ok := sexpr.ScalarFunc(args[0])
	if !ok {
		// NOT over a boolean literal could be folded to AlwaysTrue or
		// AlwaysFalse; it stays a residual for now.
		return false, nil
	}
	childName, err := a.funcs.Name(child.GetFunctionReference())
	if err != nil {
		return false, err
	}
	if _, ok := notChildNames[childName]; !ok {
		return false, nil
	}
	fieldIdx, ok := fieldOrWithLiteral(child)
	if !ok {
		return false, nil
	}
	if _, isIn := inCols[fieldIdx]; isIn {
		return false, nil
	}
	if childName == nameEqual {
		if _, seen := notEqualCols[fieldIdx]; seen {
			return false, nil
		}
		notEqualCols[fieldIdx] = struct{}{}
	}
	return true, nil
}

// canPushdownOr applies the eligibility rule for an OR leaf: every child
// must be an eligible comparison on the same column, the column must not
// carry an IN elsewhere in the conjunction, at most one child may be an
// IN, and IN / IS NOT NULL children are rejected on integer columns
// because the integer value-set primitive cannot join a disjunction of
// ranges.
func (a *Analyzer) canPushdownOr(fn *substraitpb.Expression_ScalarFunction, inCols map[int]struct{}, cols []Column) (bool, error) {
	same, err := a.sameColumn(fn)
	if err != nil || !same {
		return false, err
	}

	inExists := false
	for _, arg := range sexpr.Args(fn) {
		if arg == nil {
			return false, nil
		}
		child, ok := sexpr.ScalarFunc(arg)
		if !ok {
			return false, nil
		}
		childName, err := a.funcs.Name(child.GetFunctionReference())
		if err != nil {
			return false, err
		}
		if _, ok := commonNames[childName]; !ok {
			return false, nil
		}
		fieldIdx, ok := fieldOrWithLiteral(child)
		if !ok {
			return false, nil
		}
		if _, isIn := inCols[fieldIdx]; isIn {
			return false, nil
		}
		if childName == nameIn || childName == nameIsNotNull {
			if fieldIdx < len(cols) && cols[fieldIdx].Kind.IsInteger() {
				return false, nil
			}
			if childName == nameIn {
				if inExists {
					return false, nil
				}
				inExists = true
			}
		}
	}
	return true, nil
}

// sameColumn reports whether every child function of the call references
// the same column. A child that is not a scalar call fails the check.
func (a *Analyzer) sameColumn(fn *substraitpb.Expression_ScalarFunction) (bool, error) {
	var colIndices []int
	for _, arg := range sexpr.Args(fn) {
		if arg == nil {
			return false, nil
		}
		child, ok := sexpr.ScalarFunc(arg)
		if !ok {
			return false, nil
		}
		for _, param := range sexpr.Args(child) {
			if param == nil {
				continue
			}
			if idx, ok := sexpr.FieldIndex(param); ok {
				colIndices = append(colIndices, idx)
			}
		}
	}
	if len(colIndices) == 0 {
		return false, nil
	}
	for _, idx := range colIndices {
		if idx != colIndices[0] {
			return false, nil
		}
	}
	return true, nil
}

// fieldOrWithLiteral reports whether the call's arguments are a single
// direct field reference, or a field reference paired with a literal in
// either order. It returns the referenced column index.
func fieldOrWithLiteral(fn *substraitpb.Expression_ScalarFunction) (int, bool) {
	args := sexpr.Args(fn)
	if len(args) == 1 {
		if args[0] == nil {
			return 0, false
		}
		return sexpr.FieldIndex(args[0])
	}
	if len(args) != 2 {
		return 0, false
	}

	fieldIdx := -1
	literalSeen := false
	for _, arg := range args {
		if arg == nil {
			return 0, false
		}
		if idx, ok := sexpr.FieldIndex(arg); ok {
			if fieldIdx >= 0 {
				// field OP field cannot be bound to one column
				return 0, false
			}
			fieldIdx = idx
			continue
		}
		if _, ok := sexpr.Literal(arg); ok {
			if literalSeen {
				return 0, false
			}
			literalSeen = true
		}
	}
	if fieldIdx < 0 || !literalSeen {
		return 0, false
	}
	return fieldIdx, true
}
