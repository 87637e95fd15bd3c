// Package plannode defines the engine-native physical plan nodes the
// converter produces. Nodes are immutable after construction; ownership
// transfers to the caller with the converted plan.
package plannode

import "github.com/apache/arrow-go/v18/arrow"

// Node is one operator of the physical plan tree.
type Node interface {
	// ID is the node identifier, unique within one converted plan.
	ID() string

	// Schema is the output row type of the operator.
	Schema() *arrow.Schema

	// Children are the input operators, leaves first.
	Children() []Node
}

type baseNode struct {
	id     string
	schema *arrow.Schema
}

func (n *baseNode) ID() string            { return n.id }
func (n *baseNode) Schema() *arrow.Schema { return n.schema }
