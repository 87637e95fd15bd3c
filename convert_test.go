package substraitplan

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/arrowplane/substraitplan/filter"
	"github.com/arrowplane/substraitplan/plannode"
)

func TestConvertDefaults(t *testing.T) {
	b := NewPlanBuilder()
	plan := b.Plan(b.Read(
		[]ColumnDef{{Name: "id", Type: TypeI64()}},
		[]FileDef{{URI: "/data/f.parquet", Length: 100, Format: filter.FormatParquet}},
		nil,
	))

	root, splits, err := Convert(plan, Config{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	scan, ok := root.(*plannode.ScanNode)
	if !ok {
		t.Fatalf("expected ScanNode, got %T", root)
	}
	if scan.Handle.ConnectorID != "test-hive" || scan.Handle.TableName != "hive_table" {
		t.Errorf("defaults not applied: %+v", scan.Handle)
	}
	if len(splits) != 1 {
		t.Errorf("expected 1 split entry, got %d", len(splits))
	}
}

func TestConvertCustomIdentifiers(t *testing.T) {
	b := NewPlanBuilder()
	plan := b.Plan(b.Read(
		[]ColumnDef{{Name: "id", Type: TypeI64()}},
		[]FileDef{{URI: "/data/f", Length: 1}},
		nil,
	))

	root, _, err := Convert(plan, Config{ConnectorID: "prod-hive", TableName: "events"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	handle := root.(*plannode.ScanNode).Handle
	if handle.ConnectorID != "prod-hive" || handle.TableName != "events" {
		t.Errorf("custom identifiers not applied: %+v", handle)
	}
}

func TestConvertInvalidConfig(t *testing.T) {
	_, err := NewConverter(Config{Inputs: []plannode.Node{nil}})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSplitsRoundTrip(t *testing.T) {
	b := NewPlanBuilder()
	plan := b.Plan(b.Read(
		[]ColumnDef{{Name: "id", Type: TypeI64()}},
		[]FileDef{
			{URI: "/data/p0", Length: 128, PartitionIndex: 1, Format: filter.FormatParquet},
			{URI: "/data/p1", Start: 128, Length: 128, PartitionIndex: 1, Format: filter.FormatParquet},
		},
		nil,
	))

	root, splits, err := Convert(plan, Config{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := EncodeSplits(splits)
	if err != nil {
		t.Fatalf("EncodeSplits: %v", err)
	}
	decoded, err := DecodeSplits(data)
	if err != nil {
		t.Fatalf("DecodeSplits: %v", err)
	}

	split := decoded[root.ID()]
	if split == nil {
		t.Fatalf("decoded splits miss scan %s: %v", root.ID(), decoded)
	}
	if len(split.Paths) != 2 || split.Format != filter.FormatParquet || split.PartitionIndex != 1 {
		t.Errorf("unexpected decoded split: %+v", split)
	}
}

// TestConvertConcurrently exercises the no-shared-state contract: one
// converter per goroutine, converting the same plan shape in parallel.
func TestConvertConcurrently(t *testing.T) {
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				b := NewPlanBuilder()
				plan := b.Plan(b.Read(
					[]ColumnDef{{Name: "id", Type: TypeI64()}},
					[]FileDef{{URI: "/data/f", Length: 1}},
					b.Call("gte:i64_i64", b.Field(0), b.Lit(b.LitI64(int64(j)))),
				))
				root, _, err := Convert(plan, Config{})
				if err != nil {
					return err
				}
				if root.ID() != "0" {
					return errors.New("node ids leaked between conversions")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent conversion: %v", err)
	}
}

func TestBuilderRegistersExtensions(t *testing.T) {
	b := NewPlanBuilder()
	cond := b.And(
		b.Call("gte:i64_i64", b.Field(0), b.Lit(b.LitI64(1))),
		b.Call("gte:i64_i64", b.Field(0), b.Lit(b.LitI64(2))),
	)
	plan := b.Plan(b.Read([]ColumnDef{{Name: "id", Type: TypeI64()}},
		[]FileDef{{URI: "/data/f", Length: 1}}, cond))

	// gte registered once, and once: two extension declarations.
	if got := len(plan.GetExtensions()); got != 2 {
		t.Fatalf("expected 2 extension declarations, got %d", got)
	}
	names := map[string]bool{}
	for _, ext := range plan.GetExtensions() {
		names[ext.GetExtensionFunction().GetName()] = true
	}
	if !names["and:bool_bool"] || !names["gte:i64_i64"] {
		t.Errorf("unexpected extension names: %v", names)
	}
}
