package planconv

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/filter"
	"github.com/arrowplane/substraitplan/literal"
	"github.com/arrowplane/substraitplan/plannode"
	"github.com/arrowplane/substraitplan/sexpr"
)

// streamPrefix marks a local-file URI referencing a pre-registered
// upstream node instead of a data file.
const streamPrefix = "iterator:"

// convertRead translates a ReadRel into a scan, a values node, or a
// substituted stream input.
func (c *Converter) convertRead(read *substraitpb.ReadRel) (plannode.Node, error) {
	split := &SplitInfo{Format: filter.FormatUnknown}

	streamIdx, err := c.streamIndex(read)
	if err != nil {
		return nil, err
	}
	if streamIdx >= 0 {
		if streamIdx >= len(c.inputs) || c.inputs[streamIdx] == nil {
			return nil, invalidPlanf("could not find source index %d in input nodes", streamIdx)
		}
		node := c.inputs[streamIdx]
		split.IsStream = true
		c.splitInfos[node.ID()] = split
		return node, nil
	}

	cols, fields, err := readColumns(read)
	if err != nil {
		return nil, err
	}

	if vt := read.GetVirtualTable(); vt != nil {
		return c.convertValues(vt, arrow.NewSchema(fields, nil))
	}

	if lf := read.GetLocalFiles(); lf != nil {
		for _, file := range lf.GetItems() {
			// All partitions of one scan share the same index.
			split.PartitionIndex = file.GetPartitionIndex()
			split.Paths = append(split.Paths, file.GetUriFile())
			split.Starts = append(split.Starts, file.GetStart())
			split.Lengths = append(split.Lengths, file.GetLength())
			split.Format = fileFormat(file)
		}
	}

	handle := &plannode.TableHandle{
		ConnectorID:     c.connectorID,
		TableName:       c.tableName,
		PushdownEnabled: true,
	}
	if cond := read.GetFilter(); cond != nil {
		an := filter.NewAnalyzer(c.funcs, c.logger)
		res, err := an.Analyze(cond, cols, split.Format)
		if err != nil {
			return nil, err
		}
		handle.SubfieldFilters = res.Subfields
		handle.RemainingFilter = res.Residual
	}

	// Scan outputs are renamed; assignments bind them back to the
	// source columns.
	id := c.peekNodeID()
	outFields := make([]arrow.Field, len(fields))
	assignments := make([]plannode.ColumnHandle, len(fields))
	for i, f := range fields {
		outFields[i] = arrow.Field{Name: nodeName(id, i), Type: f.Type, Nullable: f.Nullable}
		assignments[i] = plannode.ColumnHandle{Name: f.Name, Type: f.Type}
	}

	scan := plannode.NewScanNode(c.nextNodeID(), arrow.NewSchema(outFields, nil), handle, assignments)
	c.splitInfos[scan.ID()] = split
	return scan, nil
}

// streamIndex reports the pre-registered input index a ReadRel references
// through the iterator URI convention, or -1 for a regular scan. A read
// with neither local files nor a virtual table is structurally invalid.
func (c *Converter) streamIndex(read *substraitpb.ReadRel) (int, error) {
	lf := read.GetLocalFiles()
	if lf == nil {
		if read.GetVirtualTable() == nil {
			return -1, invalidPlanf("local files or virtual table is expected in ReadRel")
		}
		return -1, nil
	}
	items := lf.GetItems()
	if len(items) == 0 {
		return -1, invalidPlanf("at least one file path is expected")
	}
	uri := items[0].GetUriFile()
	if !strings.HasPrefix(uri, streamPrefix) {
		return -1, nil
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(uri, streamPrefix))
	if err != nil {
		return -1, invalidPlanf("malformed stream URI %q: %v", uri, err)
	}
	if idx < 0 {
		return -1, invalidPlanf("negative stream index in URI %q", uri)
	}
	return idx, nil
}

// fileFormat maps a local-file entry's declared format to the scan
// format. Parquet keeps its own reader; ORC and DWRF share one.
func fileFormat(file *substraitpb.ReadRel_LocalFiles_FileOrFiles) filter.Format {
	switch file.GetFileFormat().(type) {
	case *substraitpb.ReadRel_LocalFiles_FileOrFiles_Parquet:
		return filter.FormatParquet
	case *substraitpb.ReadRel_LocalFiles_FileOrFiles_Dwrf:
		return filter.FormatDWRF
	case *substraitpb.ReadRel_LocalFiles_FileOrFiles_Orc:
		return filter.FormatDWRF
	default:
		return filter.FormatUnknown
	}
}

// readColumns extracts the base schema as analyzer columns and Arrow
// fields.
func readColumns(read *substraitpb.ReadRel) ([]filter.Column, []arrow.Field, error) {
	base := read.GetBaseSchema()
	if base == nil {
		return nil, nil, nil
	}
	names := base.GetNames()
	types := base.GetStruct().GetTypes()
	if len(names) != len(types) {
		return nil, nil, invalidPlanf("base schema has %d names but %d types", len(names), len(types))
	}

	cols := make([]filter.Column, len(names))
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		dt, err := sexpr.ArrowType(types[i])
		if err != nil {
			return nil, nil, notImplementedf("column %q: %v", name, err)
		}
		cols[i] = filter.Column{Name: name, Kind: literal.KindOf(dt)}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: sexpr.Nullable(types[i])}
	}
	return cols, fields, nil
}
