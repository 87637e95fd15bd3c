// Package substraitplan converts decoded Substrait plans into physical
// plan trees for a columnar vectorized engine, together with the split
// information binding each leaf scan to its data sources.
//
// The converter walks the plan's relation tree and emits one engine
// plan node per relation: scans (with filter pushdown), filters,
// projections, aggregations, hash joins, and literal value tables. The
// interesting work happens on scan filters: the filter package decides
// which part of a boolean predicate the scan reader can evaluate as
// typed subfield column filters and which part must remain a residual
// expression above the scan.
//
// # Basic Usage
//
//	root, splits, err := substraitplan.Convert(plan, substraitplan.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Config follows an optional-fields-with-defaults convention: a nil
// Allocator uses Arrow's default allocator, a nil Logger uses
// slog.Default(), and the connector and table identifiers fall back to
// the engine's test constants.
//
// # Streamed inputs
//
// A scan whose first file URI has the form "iterator:<N>" does not
// produce a scan node; the pre-registered Config.Inputs[N] node is
// substituted and its split info is marked as a stream.
//
//	root, splits, err := substraitplan.Convert(plan, substraitplan.Config{
//	    Inputs: []plannode.Node{upstream},
//	})
//
// # Structure
//
// The heavy lifting lives in subpackages:
//
//   - funcmap resolves Substrait function anchors to canonical names.
//   - sexpr translates Substrait expressions into the typed IR.
//   - filter is the filter-pushdown analyzer (normalize, accumulate,
//     build).
//   - plannode defines the produced plan nodes.
//   - planconv is the per-relation plan translator; planconv.Cache
//     memoizes conversions of identical plans.
//   - sqlenc renders typed expressions and subfield filters as DuckDB
//     SQL, used to verify the pushdown/residual partition against a
//     real engine.
//
// # Errors
//
// Structural defects surface as planconv.ErrInvalidPlan, untranslatable
// constructs as planconv.ErrNotImplemented (or filter.ErrNotImplemented
// from the analyzer), and unresolved function anchors as
// funcmap.ErrUnknownFunction. Pushdown ineligibility is not an error:
// ineligible filter leaves silently fall through to the residual.
package substraitplan
