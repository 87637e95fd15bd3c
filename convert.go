package substraitplan

import (
	"fmt"

	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/internal/serialize"
	"github.com/arrowplane/substraitplan/planconv"
	"github.com/arrowplane/substraitplan/plannode"
)

// Convert translates a decoded Substrait plan into a physical plan tree
// plus the split info of every leaf scan, keyed by scan node id. This is
// the main entry point of the substraitplan package.
//
// Example:
//
//	root, splits, err := substraitplan.Convert(plan, substraitplan.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scan := root.Children()[0]
//	_ = splits[scan.ID()]
//
// Conversions are synchronous and side-effect free; to convert plans in
// parallel, call Convert from several goroutines (each call builds its
// own converter) or hold one NewConverter per goroutine.
func Convert(plan *substraitpb.Plan, config Config) (plannode.Node, map[string]*planconv.SplitInfo, error) {
	conv, err := NewConverter(config)
	if err != nil {
		return nil, nil, err
	}
	return conv.Convert(plan)
}

// NewConverter validates the configuration and builds a reusable
// converter. A converter handles one plan at a time; see Convert for the
// one-shot form.
func NewConverter(config Config) (*planconv.Converter, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return planconv.New(planconv.Options{
		Allocator:   config.Allocator,
		Logger:      config.logger(),
		ConnectorID: config.ConnectorID,
		TableName:   config.TableName,
		Inputs:      config.Inputs,
	}), nil
}

// EncodeSplits packs a conversion's split assignments into a compact
// binary form for distribution to scan workers.
func EncodeSplits(splits map[string]*planconv.SplitInfo) ([]byte, error) {
	return serialize.EncodeSplits(splits)
}

// DecodeSplits unpacks split assignments encoded by EncodeSplits.
func DecodeSplits(data []byte) (map[string]*planconv.SplitInfo, error) {
	return serialize.DecodeSplits(data)
}
