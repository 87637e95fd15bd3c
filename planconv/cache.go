package planconv

import (
	"hash/fnv"
	"sync"

	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"
	"google.golang.org/protobuf/proto"

	"github.com/arrowplane/substraitplan/plannode"
)

// Cache memoizes conversions of identical plans. Conversion is pure and
// deterministic, so two structurally equal plans yield structurally equal
// trees; the cache returns the shared immutable result instead of
// re-converting.
//
// Safe for concurrent use; the wrapped Converter is driven under the
// cache's lock.
type Cache struct {
	mu      sync.Mutex
	conv    *Converter
	entries map[uint64]*cacheEntry
}

type cacheEntry struct {
	node   plannode.Node
	splits map[string]*SplitInfo
}

// NewCache wraps a Converter with plan-keyed memoization.
func NewCache(conv *Converter) *Cache {
	return &Cache{conv: conv, entries: make(map[uint64]*cacheEntry)}
}

// Convert returns the memoized result for a structurally equal plan, or
// converts and stores. Hits share the node tree and split map; both are
// read-only by contract.
func (c *Cache) Convert(plan *substraitpb.Plan) (plannode.Node, map[string]*SplitInfo, error) {
	key, err := planKey(plan)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return entry.node, entry.splits, nil
	}

	node, splits, err := c.conv.Convert(plan)
	if err != nil {
		return nil, nil, err
	}
	c.entries[key] = &cacheEntry{node: node, splits: splits}
	return node, splits, nil
}

// Len reports the number of memoized plans.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// planKey hashes the deterministic wire encoding of the plan.
func planKey(plan *substraitpb.Plan) (uint64, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(plan)
	if err != nil {
		return 0, invalidPlanf("marshal plan for caching: %v", err)
	}
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64(), nil
}
