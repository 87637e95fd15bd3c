package planconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/plannode"
	"github.com/arrowplane/substraitplan/sexpr"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// convertAggregate translates an AggregateRel.
func (c *Converter) convertAggregate(rel *substraitpb.AggregateRel) (plannode.Node, error) {
	if rel.GetInput() == nil {
		return nil, invalidPlanf("child Rel is expected in AggregateRel")
	}
	input, err := c.convertRel(rel.GetInput())
	if err != nil {
		return nil, err
	}

	step, err := aggregationStep(rel)
	if err != nil {
		return nil, err
	}

	inSchema := input.Schema()
	inTypes := fieldTypes(inSchema)
	id := c.peekNodeID()

	// Grouping keys are limited to direct field references.
	var keys []*typedexpr.FieldRef
	var fields []arrow.Field
	for _, grouping := range rel.GetGroupings() {
		for _, e := range grouping.GetGroupingExpressions() {
			idx, ok := sexpr.FieldIndex(e)
			if !ok {
				return nil, notImplementedf("grouping expression is not a field reference")
			}
			if idx >= len(inTypes) {
				return nil, invalidPlanf("grouping field %d outside the input schema", idx)
			}
			keys = append(keys, typedexpr.NewFieldRef(idx, inTypes[idx]))
			fields = append(fields, inSchema.Field(idx))
		}
	}

	names := make([]string, 0, len(rel.GetMeasures()))
	aggs := make([]*typedexpr.Call, 0, len(rel.GetMeasures()))
	for i, measure := range rel.GetMeasures() {
		fn := measure.GetMeasure()
		if fn == nil {
			return nil, invalidPlanf("measure %d without an aggregate function", i)
		}
		name, err := c.funcs.Name(fn.GetFunctionReference())
		if err != nil {
			return nil, err
		}

		args := make([]typedexpr.Expr, 0, len(fn.GetArguments()))
		for _, arg := range fn.GetArguments() {
			value := arg.GetValue()
			if value == nil {
				return nil, notImplementedf("non-value argument of aggregate %s", name)
			}
			typed, err := sexpr.ToTyped(value, c.funcs, inTypes)
			if err != nil {
				return nil, err
			}
			args = append(args, typed)
		}

		out, err := sexpr.ArrowType(fn.GetOutputType())
		if err != nil {
			return nil, notImplementedf("measure %d: %v", i, err)
		}

		outName := nodeName(id, len(keys)+i)
		names = append(names, outName)
		aggs = append(aggs, typedexpr.NewCall(name, out, args...))
		fields = append(fields, arrow.Field{Name: outName, Type: out, Nullable: true})
	}

	return plannode.NewAggregateNode(
		c.nextNodeID(), arrow.NewSchema(fields, nil),
		step, keys, names, aggs, input,
	), nil
}

// aggregationStep infers the execution step from the first measure's
// phase. A grouping-only aggregation is a single step.
func aggregationStep(rel *substraitpb.AggregateRel) (plannode.AggregationStep, error) {
	measures := rel.GetMeasures()
	if len(measures) == 0 {
		return plannode.StepSingle, nil
	}
	switch phase := measures[0].GetMeasure().GetPhase(); phase {
	case substraitpb.AggregationPhase_AGGREGATION_PHASE_INITIAL_TO_INTERMEDIATE:
		return plannode.StepPartial, nil
	case substraitpb.AggregationPhase_AGGREGATION_PHASE_INTERMEDIATE_TO_INTERMEDIATE:
		return plannode.StepIntermediate, nil
	case substraitpb.AggregationPhase_AGGREGATION_PHASE_INTERMEDIATE_TO_RESULT:
		return plannode.StepFinal, nil
	case substraitpb.AggregationPhase_AGGREGATION_PHASE_INITIAL_TO_RESULT:
		return plannode.StepSingle, nil
	default:
		return "", notImplementedf("aggregation phase %v", phase)
	}
}
