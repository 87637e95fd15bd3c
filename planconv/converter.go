package planconv

import (
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/funcmap"
	"github.com/arrowplane/substraitplan/internal/recovery"
	"github.com/arrowplane/substraitplan/plannode"
)

// Default identifiers stamped on produced scan nodes.
const (
	DefaultConnectorID = "test-hive"
	DefaultTableName   = "hive_table"
)

// Options configures a Converter. The zero value is usable.
type Options struct {
	// Allocator backs the column vectors of values nodes.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for diagnostics (format vetoes, residual fallbacks).
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// ConnectorID stamps produced scan nodes.
	// OPTIONAL: DefaultConnectorID if empty.
	ConnectorID string

	// TableName stamps produced scan nodes.
	// OPTIONAL: DefaultTableName if empty.
	TableName string

	// Inputs are pre-registered upstream nodes an "iterator:<N>" scan
	// URI substitutes by index.
	// OPTIONAL: May be nil when no plan references iterators.
	Inputs []plannode.Node
}

// Converter turns decoded Substrait plans into physical plan trees. One
// Converter converts one plan at a time; callers wishing to convert in
// parallel use one Converter per goroutine.
type Converter struct {
	alloc       memory.Allocator
	logger      *slog.Logger
	connectorID string
	tableName   string
	inputs      []plannode.Node

	// Per-plan state, reset by Convert.
	funcs      funcmap.Map
	nodeID     int
	splitInfos map[string]*SplitInfo
}

// New returns a Converter with defaults applied.
func New(opts Options) *Converter {
	c := &Converter{
		alloc:       opts.Allocator,
		logger:      opts.Logger,
		connectorID: opts.ConnectorID,
		tableName:   opts.TableName,
		inputs:      opts.Inputs,
	}
	if c.alloc == nil {
		c.alloc = memory.DefaultAllocator
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.connectorID == "" {
		c.connectorID = DefaultConnectorID
	}
	if c.tableName == "" {
		c.tableName = DefaultTableName
	}
	return c
}

// Convert translates the plan into a physical plan tree plus the split
// info of every leaf scan, keyed by node id. The produced tree is
// immutable; ownership transfers to the caller.
func (c *Converter) Convert(plan *substraitpb.Plan) (plannode.Node, map[string]*SplitInfo, error) {
	c.funcs = funcmap.FromPlan(plan)
	c.nodeID = 0
	c.splitInfos = make(map[string]*SplitInfo)

	// Relation handlers recurse over caller-controlled input; a panic in
	// a malformed corner must not take the caller down.
	root, err := recovery.RecoverToValue(c.logger, "Convert", func() (plannode.Node, error) {
		return c.convertPlanRelations(plan)
	})
	if err != nil {
		return nil, nil, err
	}
	return root, c.splitInfos, nil
}

// convertPlanRelations translates the sole RelRoot or Rel of the plan.
func (c *Converter) convertPlanRelations(plan *substraitpb.Plan) (plannode.Node, error) {
	for _, rel := range plan.GetRelations() {
		if root := rel.GetRoot(); root != nil {
			if root.GetInput() == nil {
				return nil, invalidPlanf("input is expected in RelRoot")
			}
			return c.convertRel(root.GetInput())
		}
		if r := rel.GetRel(); r != nil {
			return c.convertRel(r)
		}
	}
	return nil, invalidPlanf("RelRoot or Rel is expected in plan")
}

// convertRel dispatches on the relation kind.
func (c *Converter) convertRel(rel *substraitpb.Rel) (plannode.Node, error) {
	switch kind := rel.GetRelType().(type) {
	case *substraitpb.Rel_Aggregate:
		return c.convertAggregate(kind.Aggregate)
	case *substraitpb.Rel_Project:
		return c.convertProject(kind.Project)
	case *substraitpb.Rel_Filter:
		return c.convertFilter(kind.Filter)
	case *substraitpb.Rel_Join:
		return c.convertJoin(kind.Join)
	case *substraitpb.Rel_Read:
		return c.convertRead(kind.Read)
	default:
		return nil, notImplementedf("relation kind %T", kind)
	}
}

// peekNodeID is the id the next created node will receive; column names
// derived from it are computed before the node itself exists.
func (c *Converter) peekNodeID() int { return c.nodeID }

// nextNodeID hands out sequential node ids, deterministic per plan.
func (c *Converter) nextNodeID() string {
	id := fmt.Sprintf("%d", c.nodeID)
	c.nodeID++
	return id
}

// nodeName derives the output column name of node nodeID at position col.
func nodeName(nodeID, col int) string {
	return fmt.Sprintf("n%d_%d", nodeID, col)
}
