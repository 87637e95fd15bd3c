package planconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/literal"
	"github.com/arrowplane/substraitplan/plannode"
	"github.com/arrowplane/substraitplan/sexpr"
)

// convertValues materializes a virtual table into record batches. Every
// values struct is a column-major flattening of batchSize rows: field
// col*batchSize+row holds column col of row row.
func (c *Converter) convertValues(vt *substraitpb.ReadRel_VirtualTable, schema *arrow.Schema) (plannode.Node, error) {
	values := vt.GetValues()
	if len(values) == 0 {
		return nil, invalidPlanf("virtual table with no values")
	}
	numCols := len(schema.Fields())
	if numCols == 0 {
		return nil, invalidPlanf("virtual table without a base schema")
	}
	batchSize := len(values[len(values)-1].GetFields()) / numCols

	records := make([]arrow.Record, 0, len(values))
	release := func() {
		for _, rec := range records {
			rec.Release()
		}
	}

	for _, rowValue := range values {
		fields := rowValue.GetFields()
		if len(fields) != batchSize*numCols {
			release()
			return nil, invalidPlanf("virtual table batch has %d fields, expected %d", len(fields), batchSize*numCols)
		}

		bldr := array.NewRecordBuilder(c.alloc, schema)
		for col := 0; col < numCols; col++ {
			for row := 0; row < batchSize; row++ {
				lit := fields[col*batchSize+row]
				val, err := sexpr.ToValue(lit)
				if err != nil {
					bldr.Release()
					release()
					return nil, notImplementedf("values node with complex type values is not supported")
				}
				if err := appendValue(bldr.Field(col), val); err != nil {
					bldr.Release()
					release()
					return nil, err
				}
			}
		}
		records = append(records, bldr.NewRecord())
		bldr.Release()
	}

	return plannode.NewValuesNode(c.nextNodeID(), schema, records), nil
}

// appendValue writes one literal into a column builder.
func appendValue(b array.Builder, v literal.Value) error {
	if v.IsNull() {
		b.AppendNull()
		return nil
	}
	switch bldr := b.(type) {
	case *array.BooleanBuilder:
		if v.Kind() != literal.KindBool {
			return notImplementedf("%s literal in a BOOLEAN values column", v.Kind())
		}
		bldr.Append(v.Bool())
	case *array.Int32Builder:
		if v.Kind() != literal.KindI32 {
			return notImplementedf("%s literal in an INTEGER values column", v.Kind())
		}
		bldr.Append(int32(v.Int64()))
	case *array.Int64Builder:
		if v.Kind() != literal.KindI32 && v.Kind() != literal.KindI64 {
			return notImplementedf("%s literal in a BIGINT values column", v.Kind())
		}
		bldr.Append(v.Int64())
	case *array.Float64Builder:
		if v.Kind() != literal.KindFP64 {
			return notImplementedf("%s literal in a DOUBLE values column", v.Kind())
		}
		bldr.Append(v.Float64())
	case *array.StringBuilder:
		if v.Kind() != literal.KindString {
			return notImplementedf("%s literal in a VARCHAR values column", v.Kind())
		}
		bldr.Append(v.Str())
	default:
		return notImplementedf("values column builder %T", b)
	}
	return nil
}
