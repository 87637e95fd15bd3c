package substraitplan

import (
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"
	extensionspb "github.com/substrait-io/substrait-protobuf/go/substraitpb/extensions"

	"github.com/arrowplane/substraitplan/filter"
)

// ColumnDef defines one column of a read's base schema.
// Used with PlanBuilder.Read().
type ColumnDef struct {
	// Name is the column name. REQUIRED.
	Name string

	// Type is the Substrait column type. REQUIRED: use TypeI32() and
	// friends.
	Type *substraitpb.Type
}

// FileDef defines one file region of a read.
type FileDef struct {
	// URI locates the file, or references a pre-registered input with
	// the "iterator:<N>" convention.
	URI string

	// Start and Length bound the scanned region.
	Start  uint64
	Length uint64

	// PartitionIndex is the partition the region belongs to.
	PartitionIndex uint64

	// Format is the file format. OPTIONAL: FormatUnknown if unset.
	Format filter.Format
}

// MeasureDef defines one aggregate measure.
type MeasureDef struct {
	// Name is the compound function name, e.g. "sum:i64". REQUIRED.
	Name string

	// Phase is the aggregation phase of the measure.
	Phase substraitpb.AggregationPhase

	// OutputType is the measure's declared result type. REQUIRED.
	OutputType *substraitpb.Type

	// Args are the measure arguments.
	Args []*substraitpb.Expression
}

// PlanBuilder assembles Substrait plans using a fluent API, registering
// every referenced function in the plan's extension section. Anchors are
// handed out in first-use order, so identical construction sequences
// produce identical plans.
//
// Not thread-safe; use one builder per plan under construction.
type PlanBuilder struct {
	anchors map[string]uint32
	order   []string
}

// NewPlanBuilder creates an empty plan builder.
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{anchors: make(map[string]uint32)}
}

// fn returns the anchor bound to a compound function name, registering
// it on first use.
func (b *PlanBuilder) fn(name string) uint32 {
	if anchor, ok := b.anchors[name]; ok {
		return anchor
	}
	anchor := uint32(len(b.order))
	b.anchors[name] = anchor
	b.order = append(b.order, name)
	return anchor
}

// Field builds a direct struct-field reference to column idx.
func (b *PlanBuilder) Field(idx int32) *substraitpb.Expression {
	return &substraitpb.Expression{
		RexType: &substraitpb.Expression_Selection{
			Selection: &substraitpb.Expression_FieldReference{
				ReferenceType: &substraitpb.Expression_FieldReference_DirectReference{
					DirectReference: &substraitpb.Expression_ReferenceSegment{
						ReferenceType: &substraitpb.Expression_ReferenceSegment_StructField_{
							StructField: &substraitpb.Expression_ReferenceSegment_StructField{Field: idx},
						},
					},
				},
			},
		},
	}
}

// LitBool builds a boolean literal.
func (b *PlanBuilder) LitBool(v bool) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_Boolean{Boolean: v}}
}

// LitI32 builds a 32-bit integer literal.
func (b *PlanBuilder) LitI32(v int32) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_I32{I32: v}}
}

// LitI64 builds a 64-bit integer literal.
func (b *PlanBuilder) LitI64(v int64) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_I64{I64: v}}
}

// LitFP64 builds a double literal.
func (b *PlanBuilder) LitFP64(v float64) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_Fp64{Fp64: v}}
}

// LitString builds a string literal.
func (b *PlanBuilder) LitString(v string) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_String_{String_: v}}
}

// LitNull builds a typed null literal.
func (b *PlanBuilder) LitNull(t *substraitpb.Type) *substraitpb.Expression_Literal {
	return &substraitpb.Expression_Literal{LiteralType: &substraitpb.Expression_Literal_Null{Null: t}}
}

// Lit wraps a literal as an expression.
func (b *PlanBuilder) Lit(l *substraitpb.Expression_Literal) *substraitpb.Expression {
	return &substraitpb.Expression{RexType: &substraitpb.Expression_Literal_{Literal: l}}
}

// List wraps literals as a literal-list expression, the shape an IN
// call's second argument takes.
func (b *PlanBuilder) List(items ...*substraitpb.Expression_Literal) *substraitpb.Expression {
	return b.Lit(&substraitpb.Expression_Literal{
		LiteralType: &substraitpb.Expression_Literal_List_{
			List: &substraitpb.Expression_Literal_List{Values: items},
		},
	})
}

// Call builds a scalar-function call, registering the compound name.
func (b *PlanBuilder) Call(name string, args ...*substraitpb.Expression) *substraitpb.Expression {
	return b.CallTyped(name, nil, args...)
}

// CallTyped builds a scalar-function call with a declared output type.
func (b *PlanBuilder) CallTyped(name string, outputType *substraitpb.Type, args ...*substraitpb.Expression) *substraitpb.Expression {
	fnArgs := make([]*substraitpb.FunctionArgument, len(args))
	for i, a := range args {
		fnArgs[i] = &substraitpb.FunctionArgument{
			ArgType: &substraitpb.FunctionArgument_Value{Value: a},
		}
	}
	return &substraitpb.Expression{
		RexType: &substraitpb.Expression_ScalarFunction_{
			ScalarFunction: &substraitpb.Expression_ScalarFunction{
				FunctionReference: b.fn(name),
				Arguments:         fnArgs,
				OutputType:        outputType,
			},
		},
	}
}

// And joins conditions with the boolean and function.
func (b *PlanBuilder) And(args ...*substraitpb.Expression) *substraitpb.Expression {
	return b.Call("and:bool_bool", args...)
}

// Or joins conditions with the boolean or function.
func (b *PlanBuilder) Or(args ...*substraitpb.Expression) *substraitpb.Expression {
	return b.Call("or:bool_bool", args...)
}

// Not negates a condition.
func (b *PlanBuilder) Not(arg *substraitpb.Expression) *substraitpb.Expression {
	return b.Call("not:bool", arg)
}

// Read builds a file-backed ReadRel. filterExpr may be nil.
func (b *PlanBuilder) Read(cols []ColumnDef, files []FileDef, filterExpr *substraitpb.Expression) *substraitpb.Rel {
	read := &substraitpb.ReadRel{
		BaseSchema: namedStruct(cols),
		Filter:     filterExpr,
	}
	items := make([]*substraitpb.ReadRel_LocalFiles_FileOrFiles, len(files))
	for i, f := range files {
		item := &substraitpb.ReadRel_LocalFiles_FileOrFiles{
			PathType:       &substraitpb.ReadRel_LocalFiles_FileOrFiles_UriFile{UriFile: f.URI},
			Start:          f.Start,
			Length:         f.Length,
			PartitionIndex: f.PartitionIndex,
		}
		switch f.Format {
		case filter.FormatParquet:
			item.FileFormat = &substraitpb.ReadRel_LocalFiles_FileOrFiles_Parquet{
				Parquet: &substraitpb.ReadRel_LocalFiles_FileOrFiles_ParquetReadOptions{},
			}
		case filter.FormatDWRF:
			item.FileFormat = &substraitpb.ReadRel_LocalFiles_FileOrFiles_Dwrf{
				Dwrf: &substraitpb.ReadRel_LocalFiles_FileOrFiles_DwrfReadOptions{},
			}
		case filter.FormatORC:
			item.FileFormat = &substraitpb.ReadRel_LocalFiles_FileOrFiles_Orc{
				Orc: &substraitpb.ReadRel_LocalFiles_FileOrFiles_OrcReadOptions{},
			}
		}
		items[i] = item
	}
	read.ReadType = &substraitpb.ReadRel_LocalFiles_{
		LocalFiles: &substraitpb.ReadRel_LocalFiles{Items: items},
	}
	return &substraitpb.Rel{RelType: &substraitpb.Rel_Read{Read: read}}
}

// VirtualRead builds a virtual-table ReadRel. Each batch is the
// column-major field list of one values struct.
func (b *PlanBuilder) VirtualRead(cols []ColumnDef, batches ...[]*substraitpb.Expression_Literal) *substraitpb.Rel {
	values := make([]*substraitpb.Expression_Literal_Struct, len(batches))
	for i, fields := range batches {
		values[i] = &substraitpb.Expression_Literal_Struct{Fields: fields}
	}
	read := &substraitpb.ReadRel{
		BaseSchema: namedStruct(cols),
		ReadType: &substraitpb.ReadRel_VirtualTable_{
			VirtualTable: &substraitpb.ReadRel_VirtualTable{Values: values},
		},
	}
	return &substraitpb.Rel{RelType: &substraitpb.Rel_Read{Read: read}}
}

// Filter builds a FilterRel above input.
func (b *PlanBuilder) Filter(input *substraitpb.Rel, cond *substraitpb.Expression) *substraitpb.Rel {
	return &substraitpb.Rel{RelType: &substraitpb.Rel_Filter{
		Filter: &substraitpb.FilterRel{Input: input, Condition: cond},
	}}
}

// Project builds a ProjectRel above input.
func (b *PlanBuilder) Project(input *substraitpb.Rel, exprs ...*substraitpb.Expression) *substraitpb.Rel {
	return &substraitpb.Rel{RelType: &substraitpb.Rel_Project{
		Project: &substraitpb.ProjectRel{Input: input, Expressions: exprs},
	}}
}

// Aggregate builds an AggregateRel with a single grouping set.
func (b *PlanBuilder) Aggregate(input *substraitpb.Rel, groupings []*substraitpb.Expression, measures ...MeasureDef) *substraitpb.Rel {
	agg := &substraitpb.AggregateRel{Input: input}
	if len(groupings) > 0 {
		agg.Groupings = []*substraitpb.AggregateRel_Grouping{
			{GroupingExpressions: groupings},
		}
	}
	for _, m := range measures {
		args := make([]*substraitpb.FunctionArgument, len(m.Args))
		for i, a := range m.Args {
			args[i] = &substraitpb.FunctionArgument{
				ArgType: &substraitpb.FunctionArgument_Value{Value: a},
			}
		}
		agg.Measures = append(agg.Measures, &substraitpb.AggregateRel_Measure{
			Measure: &substraitpb.AggregateFunction{
				FunctionReference: b.fn(m.Name),
				Arguments:         args,
				Phase:             m.Phase,
				OutputType:        m.OutputType,
			},
		})
	}
	return &substraitpb.Rel{RelType: &substraitpb.Rel_Aggregate{Aggregate: agg}}
}

// Join builds a JoinRel. postFilter may be nil.
func (b *PlanBuilder) Join(left, right *substraitpb.Rel, typ substraitpb.JoinRel_JoinType, on, postFilter *substraitpb.Expression) *substraitpb.Rel {
	return &substraitpb.Rel{RelType: &substraitpb.Rel_Join{
		Join: &substraitpb.JoinRel{
			Left: left, Right: right,
			Expression:     on,
			PostJoinFilter: postFilter,
			Type:           typ,
		},
	}}
}

// Plan wraps the relation tree and the registered extension functions
// into a Plan message rooted at a bare Rel.
func (b *PlanBuilder) Plan(rel *substraitpb.Rel) *substraitpb.Plan {
	return &substraitpb.Plan{
		Extensions: b.extensions(),
		Relations: []*substraitpb.PlanRel{
			{RelType: &substraitpb.PlanRel_Rel{Rel: rel}},
		},
	}
}

// PlanRoot wraps the relation tree into a Plan rooted at a RelRoot with
// output names.
func (b *PlanBuilder) PlanRoot(rel *substraitpb.Rel, names ...string) *substraitpb.Plan {
	return &substraitpb.Plan{
		Extensions: b.extensions(),
		Relations: []*substraitpb.PlanRel{
			{RelType: &substraitpb.PlanRel_Root{
				Root: &substraitpb.RelRoot{Input: rel, Names: names},
			}},
		},
	}
}

func (b *PlanBuilder) extensions() []*extensionspb.SimpleExtensionDeclaration {
	exts := make([]*extensionspb.SimpleExtensionDeclaration, len(b.order))
	for i, name := range b.order {
		exts[i] = &extensionspb.SimpleExtensionDeclaration{
			MappingType: &extensionspb.SimpleExtensionDeclaration_ExtensionFunction_{
				ExtensionFunction: &extensionspb.SimpleExtensionDeclaration_ExtensionFunction{
					FunctionAnchor: uint32(i),
					Name:           name,
				},
			},
		}
	}
	return exts
}

func namedStruct(cols []ColumnDef) *substraitpb.NamedStruct {
	names := make([]string, len(cols))
	types := make([]*substraitpb.Type, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		types[i] = c.Type
	}
	return &substraitpb.NamedStruct{
		Names:  names,
		Struct: &substraitpb.Type_Struct{Types: types},
	}
}

// TypeBool builds a nullable Substrait boolean type.
func TypeBool() *substraitpb.Type {
	return &substraitpb.Type{Kind: &substraitpb.Type_Bool{Bool: &substraitpb.Type_Boolean{Nullability: substraitpb.Type_NULLABILITY_NULLABLE}}}
}

// TypeI32 builds a nullable Substrait i32 type.
func TypeI32() *substraitpb.Type {
	return &substraitpb.Type{Kind: &substraitpb.Type_I32_{I32: &substraitpb.Type_I32{Nullability: substraitpb.Type_NULLABILITY_NULLABLE}}}
}

// TypeI64 builds a nullable Substrait i64 type.
func TypeI64() *substraitpb.Type {
	return &substraitpb.Type{Kind: &substraitpb.Type_I64_{I64: &substraitpb.Type_I64{Nullability: substraitpb.Type_NULLABILITY_NULLABLE}}}
}

// TypeFP64 builds a nullable Substrait fp64 type.
func TypeFP64() *substraitpb.Type {
	return &substraitpb.Type{Kind: &substraitpb.Type_Fp64{Fp64: &substraitpb.Type_FP64{Nullability: substraitpb.Type_NULLABILITY_NULLABLE}}}
}

// TypeString builds a nullable Substrait string type.
func TypeString() *substraitpb.Type {
	return &substraitpb.Type{Kind: &substraitpb.Type_String_{String_: &substraitpb.Type_String{Nullability: substraitpb.Type_NULLABILITY_NULLABLE}}}
}
