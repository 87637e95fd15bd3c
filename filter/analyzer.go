package filter

import (
	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/sexpr"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// Result is the outcome of analyzing one scan's filter.
type Result struct {
	// Subfields maps column names to the filter primitive pushed into
	// the scan. Empty when nothing could be pushed.
	Subfields map[string]Subfield

	// Residual is the part of the filter the scan cannot evaluate,
	// joined with AND. Nil when the whole filter was pushed down.
	Residual typedexpr.Expr
}

// Analyze partitions cond into subfield filters and a residual for a scan
// over cols reading the given format. The conjunction of the two is
// equivalent to cond. A nil cond yields an empty result.
func (a *Analyzer) Analyze(cond *substraitpb.Expression, cols []Column, format Format) (*Result, error) {
	if cond == nil {
		return &Result{}, nil
	}

	var calls []*substraitpb.Expression_ScalarFunction
	var verbatim []*substraitpb.Expression
	if err := a.flatten(cond, &calls, &verbatim); err != nil {
		return nil, err
	}

	pushdown, residual, err := a.separate(calls, cols)
	if err != nil {
		return nil, err
	}

	infos, err := a.accumulate(pushdown, cols)
	if err != nil {
		return nil, err
	}

	subfields, err := a.build(infos, cols)
	if err != nil {
		return nil, err
	}

	if !format.SupportsAll(subfields) {
		// All-or-nothing: one unsupported primitive reverts the whole
		// scan to residual evaluation.
		a.logger.Debug("filter pushdown vetoed by file format",
			"format", format.String(),
			"filters", len(subfields),
		)
		subfields = nil
		residual = calls
	}

	residualExpr, err := a.residualExpr(residual, verbatim, cols)
	if err != nil {
		return nil, err
	}
	return &Result{Subfields: subfields, Residual: residualExpr}, nil
}

// residualExpr translates the residual leaves into the typed IR and joins
// them with AND.
func (a *Analyzer) residualExpr(calls []*substraitpb.Expression_ScalarFunction, verbatim []*substraitpb.Expression, cols []Column) (typedexpr.Expr, error) {
	fieldTypes := make([]arrow.DataType, len(cols))
	for i, col := range cols {
		fieldTypes[i] = col.Kind.DataType()
	}

	exprs := make([]typedexpr.Expr, 0, len(calls)+len(verbatim))
	for _, fn := range calls {
		typed, err := sexpr.CallToTyped(fn, a.funcs, fieldTypes)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, typed)
	}
	for _, e := range verbatim {
		typed, err := sexpr.ToTyped(e, a.funcs, fieldTypes)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, typed)
	}

	switch len(exprs) {
	case 0:
		return nil, nil
	case 1:
		return exprs[0], nil
	default:
		return typedexpr.NewConjunction(typedexpr.OpAnd, exprs...), nil
	}
}
