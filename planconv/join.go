package planconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/plannode"
	"github.com/arrowplane/substraitplan/sexpr"
	"github.com/arrowplane/substraitplan/typedexpr"
)

// convertJoin translates a JoinRel into a hash join node. Join keys are
// extracted from the ON expression; field references of the keys and of
// the post-join filter resolve against the concatenated left and right
// schemas.
func (c *Converter) convertJoin(rel *substraitpb.JoinRel) (plannode.Node, error) {
	if rel.GetLeft() == nil {
		return nil, invalidPlanf("left Rel is expected in JoinRel")
	}
	if rel.GetRight() == nil {
		return nil, invalidPlanf("right Rel is expected in JoinRel")
	}

	left, err := c.convertRel(rel.GetLeft())
	if err != nil {
		return nil, err
	}
	right, err := c.convertRel(rel.GetRight())
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, 0, len(left.Schema().Fields())+len(right.Schema().Fields()))
	fields = append(fields, left.Schema().Fields()...)
	fields = append(fields, right.Schema().Fields()...)
	outSchema := arrow.NewSchema(fields, nil)
	outTypes := fieldTypes(outSchema)

	if rel.GetExpression() == nil {
		return nil, invalidPlanf("join expression is expected in JoinRel")
	}
	var leftKeys, rightKeys []*typedexpr.FieldRef
	if err := c.extractJoinKeys(rel.GetExpression(), outTypes, &leftKeys, &rightKeys); err != nil {
		return nil, err
	}

	var postFilter typedexpr.Expr
	if rel.GetPostJoinFilter() != nil {
		postFilter, err = sexpr.ToTyped(rel.GetPostJoinFilter(), c.funcs, outTypes)
		if err != nil {
			return nil, err
		}
	}

	joinType, err := joinType(rel.GetType())
	if err != nil {
		return nil, err
	}

	return plannode.NewJoinNode(
		c.nextNodeID(), outSchema, joinType,
		leftKeys, rightKeys, postFilter,
		left, right,
	), nil
}

// extractJoinKeys flattens the ON expression: and recurses, eq
// contributes one key pair, anything else is rejected. Pairs are
// collected in declared textual order.
func (c *Converter) extractJoinKeys(e *substraitpb.Expression, outTypes []arrow.DataType, leftKeys, rightKeys *[]*typedexpr.FieldRef) error {
	fn, ok := sexpr.ScalarFunc(e)
	if !ok {
		return invalidPlanf("unable to parse join expression of kind %T", e.GetRexType())
	}
	name, err := c.funcs.Name(fn.GetFunctionReference())
	if err != nil {
		return err
	}

	switch name {
	case "and":
		for _, arg := range sexpr.Args(fn) {
			if arg == nil {
				return notImplementedf("non-value argument in join condition")
			}
			if err := c.extractJoinKeys(arg, outTypes, leftKeys, rightKeys); err != nil {
				return err
			}
		}
		return nil

	case "eq", "equal":
		args := sexpr.Args(fn)
		if len(args) != 2 {
			return notImplementedf("join equality with %d arguments", len(args))
		}
		refs := make([]*typedexpr.FieldRef, 2)
		for i, arg := range args {
			idx, ok := sexpr.FieldIndex(arg)
			if !ok {
				return notImplementedf("join equality argument is not a field reference")
			}
			if idx >= len(outTypes) {
				return invalidPlanf("join key field %d outside the joined schema", idx)
			}
			refs[i] = typedexpr.NewFieldRef(idx, outTypes[idx])
		}
		*leftKeys = append(*leftKeys, refs[0])
		*rightKeys = append(*rightKeys, refs[1])
		return nil

	default:
		return notImplementedf("join condition %s", name)
	}
}

// joinType maps the Substrait join type onto the engine's.
func joinType(t substraitpb.JoinRel_JoinType) (plannode.JoinType, error) {
	switch t {
	case substraitpb.JoinRel_JOIN_TYPE_INNER:
		return plannode.JoinInner, nil
	case substraitpb.JoinRel_JOIN_TYPE_OUTER:
		return plannode.JoinFull, nil
	case substraitpb.JoinRel_JOIN_TYPE_LEFT:
		return plannode.JoinLeft, nil
	case substraitpb.JoinRel_JOIN_TYPE_RIGHT:
		return plannode.JoinRight, nil
	case substraitpb.JoinRel_JOIN_TYPE_LEFT_SEMI:
		return plannode.JoinLeftSemi, nil
	case substraitpb.JoinRel_JOIN_TYPE_LEFT_ANTI:
		return plannode.JoinAnti, nil
	default:
		return "", notImplementedf("join type %v", t)
	}
}
