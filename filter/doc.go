// Package filter decides which part of a scan's boolean filter can be
// pushed into the scan as subfield column filters, and lowers the pushed
// part into the typed filter primitives the scan reader evaluates.
//
// The analysis runs in three passes over a Substrait filter expression:
//
//   - Normalize: nested AND conjunctions are flattened into a list of
//     leaves, and each leaf is classified as a pushdown candidate or a
//     residual (see Analyzer).
//   - Accumulate: every pushdown candidate updates the referenced
//     column's Info record (range bounds, not-equal value, IN value set,
//     null-allowed flag).
//   - Build: each initialized Info is lowered into one Subfield primitive
//     per column, typed by the column's kind.
//
// Residual leaves are translated into the typedexpr IR and joined with
// AND; the caller evaluates them above the scan. If the scan's file
// format cannot evaluate one of the produced primitives, pushdown is
// abandoned for the whole scan and the entire original conjunction
// becomes the residual.
//
// # Basic Usage
//
//	an := filter.NewAnalyzer(funcs, logger)
//	res, err := an.Analyze(readRel.GetFilter(), cols, filter.FormatParquet)
//	if err != nil {
//	    return err
//	}
//	// res.Subfields go into the scan's table handle,
//	// res.Residual (if non-nil) is evaluated above it.
package filter
