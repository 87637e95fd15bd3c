package plannode

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowplane/substraitplan/filter"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// ColumnHandle binds one scan output column to the underlying column of
// the data source.
type ColumnHandle struct {
	// Name is the column name in the data source.
	Name string

	// Type is the Arrow type the column is scanned as.
	Type arrow.DataType
}

// TableHandle identifies the scanned table and carries the filters pushed
// into the scan.
type TableHandle struct {
	ConnectorID string
	TableName   string

	// PushdownEnabled is always true; the scan reader requires it.
	PushdownEnabled bool

	// SubfieldFilters maps source column names to the filter primitive
	// the reader evaluates. Empty when nothing was pushed down.
	SubfieldFilters map[string]filter.Subfield

	// RemainingFilter is the residual predicate evaluated above the
	// reader. Nil when the whole filter was pushed down.
	RemainingFilter typedexpr.Expr
}

// ScanNode reads a table through a connector. Assignments map the output
// schema's columns, in order, to source columns.
type ScanNode struct {
	baseNode
	Handle      *TableHandle
	Assignments []ColumnHandle
}

// NewScanNode builds a table scan node.
func NewScanNode(id string, schema *arrow.Schema, handle *TableHandle, assignments []ColumnHandle) *ScanNode {
	return &ScanNode{baseNode: baseNode{id, schema}, Handle: handle, Assignments: assignments}
}

func (n *ScanNode) Children() []Node { return nil }

// ValuesNode materializes literal rows as an in-memory source. It owns
// its records; call Release when the plan is discarded without execution.
type ValuesNode struct {
	baseNode
	Records []arrow.Record
}

// NewValuesNode builds a literal-table node.
func NewValuesNode(id string, schema *arrow.Schema, records []arrow.Record) *ValuesNode {
	return &ValuesNode{baseNode: baseNode{id, schema}, Records: records}
}

func (n *ValuesNode) Children() []Node { return nil }

// Release frees the backing record batches.
func (n *ValuesNode) Release() {
	for _, rec := range n.Records {
		rec.Release()
	}
	n.Records = nil
}

// FilterNode evaluates a predicate over its input.
type FilterNode struct {
	baseNode
	Condition typedexpr.Expr
	input     Node
}

// NewFilterNode builds a filter node. Its output schema is its input's.
func NewFilterNode(id string, condition typedexpr.Expr, input Node) *FilterNode {
	return &FilterNode{baseNode: baseNode{id, input.Schema()}, Condition: condition, input: input}
}

func (n *FilterNode) Children() []Node { return []Node{n.input} }

// ProjectNode computes one expression per output column.
type ProjectNode struct {
	baseNode
	Names       []string
	Expressions []typedexpr.Expr
	input       Node
}

// NewProjectNode builds a projection node.
func NewProjectNode(id string, schema *arrow.Schema, names []string, exprs []typedexpr.Expr, input Node) *ProjectNode {
	return &ProjectNode{baseNode: baseNode{id, schema}, Names: names, Expressions: exprs, input: input}
}

func (n *ProjectNode) Children() []Node { return []Node{n.input} }

// AggregationStep tells which phase of a distributed aggregation the node
// executes.
type AggregationStep string

const (
	StepPartial      AggregationStep = "PARTIAL"
	StepIntermediate AggregationStep = "INTERMEDIATE"
	StepFinal        AggregationStep = "FINAL"
	StepSingle       AggregationStep = "SINGLE"
)

// AggregateNode groups its input and evaluates aggregate measures.
type AggregateNode struct {
	baseNode
	Step         AggregationStep
	GroupingKeys []*typedexpr.FieldRef
	// AggregateNames name the measure output columns, parallel to
	// Aggregates.
	AggregateNames []string
	Aggregates     []*typedexpr.Call
	input          Node
}

// NewAggregateNode builds an aggregation node.
func NewAggregateNode(id string, schema *arrow.Schema, step AggregationStep, keys []*typedexpr.FieldRef, names []string, aggregates []*typedexpr.Call, input Node) *AggregateNode {
	return &AggregateNode{
		baseNode: baseNode{id, schema},
		Step:     step, GroupingKeys: keys,
		AggregateNames: names, Aggregates: aggregates,
		input: input,
	}
}

func (n *AggregateNode) Children() []Node { return []Node{n.input} }

// JoinType is the join semantics of a JoinNode.
type JoinType string

const (
	JoinInner    JoinType = "INNER"
	JoinFull     JoinType = "FULL"
	JoinLeft     JoinType = "LEFT"
	JoinRight    JoinType = "RIGHT"
	JoinLeftSemi JoinType = "LEFT_SEMI"
	JoinAnti     JoinType = "ANTI"
)

// JoinNode is a hash join. Key references resolve against the
// concatenated left and right schemas.
type JoinNode struct {
	baseNode
	Type      JoinType
	LeftKeys  []*typedexpr.FieldRef
	RightKeys []*typedexpr.FieldRef

	// Filter is the post-join predicate, nil if none.
	Filter typedexpr.Expr

	left  Node
	right Node
}

// NewJoinNode builds a join node. len(leftKeys) == len(rightKeys) holds
// by construction of the converter.
func NewJoinNode(id string, schema *arrow.Schema, typ JoinType, leftKeys, rightKeys []*typedexpr.FieldRef, joinFilter typedexpr.Expr, left, right Node) *JoinNode {
	return &JoinNode{
		baseNode: baseNode{id, schema},
		Type:     typ, LeftKeys: leftKeys, RightKeys: rightKeys,
		Filter: joinFilter,
		left:   left, right: right,
	}
}

func (n *JoinNode) Children() []Node { return []Node{n.left, n.right} }
