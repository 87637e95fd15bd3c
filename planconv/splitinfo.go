package planconv

import "github.com/arrowplane/substraitplan/filter"

// SplitInfo binds one leaf scan to its concrete data sources. It is
// created together with the scan node, keyed by the node's id in the
// converter's output, and read-only afterwards.
type SplitInfo struct {
	// Paths, Starts and Lengths describe one file region per entry.
	Paths   []string
	Starts  []uint64
	Lengths []uint64

	// PartitionIndex is shared by all files of the scan.
	PartitionIndex uint64

	// Format is the file format of the scanned regions.
	Format filter.Format

	// IsStream marks a scan substituted by a pre-registered upstream
	// input instead of files.
	IsStream bool
}
