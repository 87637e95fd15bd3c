package planconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/plannode"
	"github.com/arrowplane/substraitplan/sexpr"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// fieldTypes extracts the Arrow type per column of a node's schema, the
// shape the expression translator resolves field references against.
func fieldTypes(schema *arrow.Schema) []arrow.DataType {
	types := make([]arrow.DataType, len(schema.Fields()))
	for i, f := range schema.Fields() {
		types[i] = f.Type
	}
	return types
}

// convertFilter translates a FilterRel into a filter node above its
// input.
func (c *Converter) convertFilter(rel *substraitpb.FilterRel) (plannode.Node, error) {
	if rel.GetInput() == nil {
		return nil, invalidPlanf("child Rel is expected in FilterRel")
	}
	input, err := c.convertRel(rel.GetInput())
	if err != nil {
		return nil, err
	}

	cond, err := sexpr.ToTyped(rel.GetCondition(), c.funcs, fieldTypes(input.Schema()))
	if err != nil {
		return nil, err
	}
	return plannode.NewFilterNode(c.nextNodeID(), cond, input), nil
}

// convertProject translates a ProjectRel. Output columns are named after
// the node.
func (c *Converter) convertProject(rel *substraitpb.ProjectRel) (plannode.Node, error) {
	if rel.GetInput() == nil {
		return nil, invalidPlanf("child Rel is expected in ProjectRel")
	}
	input, err := c.convertRel(rel.GetInput())
	if err != nil {
		return nil, err
	}

	inTypes := fieldTypes(input.Schema())
	id := c.peekNodeID()

	names := make([]string, 0, len(rel.GetExpressions()))
	exprs := make([]typedexpr.Expr, 0, len(rel.GetExpressions()))
	fields := make([]arrow.Field, 0, len(rel.GetExpressions()))
	for i, e := range rel.GetExpressions() {
		typed, err := sexpr.ToTyped(e, c.funcs, inTypes)
		if err != nil {
			return nil, err
		}
		if typed.DataType() == nil {
			return nil, notImplementedf("projection %d has no output type", i)
		}
		name := nodeName(id, i)
		names = append(names, name)
		exprs = append(exprs, typed)
		fields = append(fields, arrow.Field{Name: name, Type: typed.DataType(), Nullable: true})
	}

	return plannode.NewProjectNode(c.nextNodeID(), arrow.NewSchema(fields, nil), names, exprs, input), nil
}
