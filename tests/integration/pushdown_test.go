// Package integration verifies the filter-pushdown partition against a
// real engine: for each filter, the original predicate and the
// re-rendered (pushdown AND residual) predicate must select the same
// rows from a DuckDB table.
package integration

import (
	"database/sql"
	"strings"
	"testing"

	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/arrowplane/substraitplan"
	"github.com/arrowplane/substraitplan/filter"
	"github.com/arrowplane/substraitplan/plannode"
	"github.com/arrowplane/substraitplan/sqlenc"
)

var eventColumns = []substraitplan.ColumnDef{
	{Name: "id", Type: substraitplan.TypeI64()},
	{Name: "score", Type: substraitplan.TypeI64()},
	{Name: "name", Type: substraitplan.TypeString()},
}

var eventColumnNames = []string{"id", "score", "name"}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE events (id BIGINT, score BIGINT, name VARCHAR)`,
		`INSERT INTO events
		 SELECT r, CASE WHEN r % 7 = 0 THEN NULL ELSE r * 3 % 101 END,
		        CASE WHEN r % 11 = 0 THEN NULL ELSE 'name_' || (r % 13) END
		 FROM range(0, 500) t(r)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}
	return db
}

func count(t *testing.T, db *sql.DB, where string) int {
	t.Helper()
	var n int
	query := "SELECT count(*) FROM events WHERE " + where
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

// partitionWhere converts a scan with the given filter and renders
// pushdown AND residual back to SQL.
func partitionWhere(t *testing.T, format filter.Format, b *substraitplan.PlanBuilder, cond *substraitpb.Expression) (string, *plannode.ScanNode) {
	t.Helper()
	plan := b.Plan(b.Read(eventColumns,
		[]substraitplan.FileDef{{URI: "/data/events", Length: 1 << 20, Format: format}},
		cond,
	))

	root, _, err := substraitplan.Convert(plan, substraitplan.Config{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	scan, ok := root.(*plannode.ScanNode)
	if !ok {
		t.Fatalf("expected ScanNode, got %T", root)
	}

	enc := sqlenc.NewDuckDBEncoder(eventColumnNames)
	var parts []string
	if len(scan.Handle.SubfieldFilters) > 0 {
		pushSQL, err := enc.EncodeSubfields(scan.Handle.SubfieldFilters)
		if err != nil {
			t.Fatalf("EncodeSubfields: %v", err)
		}
		parts = append(parts, pushSQL)
	}
	if scan.Handle.RemainingFilter != nil {
		resSQL, err := enc.Encode(scan.Handle.RemainingFilter)
		if err != nil {
			t.Fatalf("Encode residual: %v", err)
		}
		parts = append(parts, resSQL)
	}
	if len(parts) == 0 {
		return "TRUE", scan
	}
	return "(" + strings.Join(parts, " AND ") + ")", scan
}

func TestPushdownPartitionAgainstDuckDB(t *testing.T) {
	db := openDB(t)

	cases := []struct {
		name         string
		original     string
		cond         func(b *substraitplan.PlanBuilder) *substraitpb.Expression
		wantPushdown bool
	}{
		{
			name:     "range conjunction",
			original: "score IS NOT NULL AND score >= 10 AND score < 90",
			cond: func(b *substraitplan.PlanBuilder) *substraitpb.Expression {
				return b.And(
					b.Call("is_not_null:i64", b.Field(1)),
					b.Call("gte:i64_i64", b.Field(1), b.Lit(b.LitI64(10))),
					b.Call("lt:i64_i64", b.Field(1), b.Lit(b.LitI64(90))),
				)
			},
			wantPushdown: true,
		},
		{
			name:     "in list",
			original: "id IS NOT NULL AND id IN (5, 10, 400)",
			cond: func(b *substraitplan.PlanBuilder) *substraitpb.Expression {
				return b.And(
					b.Call("is_not_null:i64", b.Field(0)),
					b.Call("in:i64", b.Field(0), b.List(b.LitI64(5), b.LitI64(10), b.LitI64(400))),
				)
			},
			wantPushdown: true,
		},
		{
			name:     "not equal",
			original: "score IS NOT NULL AND score <> 33",
			cond: func(b *substraitplan.PlanBuilder) *substraitpb.Expression {
				return b.And(
					b.Call("is_not_null:i64", b.Field(1)),
					b.Not(b.Call("equal:i64_i64", b.Field(1), b.Lit(b.LitI64(33)))),
				)
			},
			wantPushdown: true,
		},
		{
			name:     "string disjunction",
			original: "name IS NOT NULL AND (name = 'name_3' OR name = 'name_5')",
			cond: func(b *substraitplan.PlanBuilder) *substraitpb.Expression {
				return b.And(
					b.Call("is_not_null:str", b.Field(2)),
					b.Or(
						b.Call("equal:str_str", b.Field(2), b.Lit(b.LitString("name_3"))),
						b.Call("equal:str_str", b.Field(2), b.Lit(b.LitString("name_5"))),
					),
				)
			},
			wantPushdown: true,
		},
		{
			name:     "cross column residual",
			original: "score IS NOT NULL AND score >= 10 AND (id = 3 OR score = 3)",
			cond: func(b *substraitplan.PlanBuilder) *substraitpb.Expression {
				return b.And(
					b.Call("is_not_null:i64", b.Field(1)),
					b.Call("gte:i64_i64", b.Field(1), b.Lit(b.LitI64(10))),
					b.Or(
						b.Call("equal:i64_i64", b.Field(0), b.Lit(b.LitI64(3))),
						b.Call("equal:i64_i64", b.Field(1), b.Lit(b.LitI64(3))),
					),
				)
			},
			wantPushdown: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := substraitplan.NewPlanBuilder()
			where, scan := partitionWhere(t, filter.FormatDWRF, b, tc.cond(b))

			if tc.wantPushdown && len(scan.Handle.SubfieldFilters) == 0 {
				t.Fatalf("expected pushdown filters, got none (residual %v)", scan.Handle.RemainingFilter)
			}

			wantCount := count(t, db, tc.original)
			gotCount := count(t, db, where)
			if gotCount != wantCount {
				t.Errorf("partition selects %d rows, original selects %d\npartition: %s",
					gotCount, wantCount, where)
			}
		})
	}
}

func TestParquetVetoAgainstDuckDB(t *testing.T) {
	db := openDB(t)

	// IsNotNull cannot be pushed into parquet; the whole conjunction
	// reverts to the residual, which must still select the same rows.
	b := substraitplan.NewPlanBuilder()
	cond := b.And(
		b.Call("is_not_null:i64", b.Field(1)),
		b.Call("gte:i64_i64", b.Field(1), b.Lit(b.LitI64(10))),
	)
	where, scan := partitionWhere(t, filter.FormatParquet, b, cond)

	if len(scan.Handle.SubfieldFilters) != 0 {
		t.Fatalf("expected format veto, got %v", scan.Handle.SubfieldFilters)
	}
	if scan.Handle.RemainingFilter == nil {
		t.Fatal("expected the conjunction to survive as residual")
	}

	want := count(t, db, "score IS NOT NULL AND score >= 10")
	got := count(t, db, where)
	if got != want {
		t.Errorf("residual selects %d rows, original selects %d\nresidual: %s", got, want, where)
	}
}
