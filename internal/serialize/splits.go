// Package serialize packs split assignments into a compact binary form
// for distribution to scan workers: MessagePack encoding compressed with
// ZStandard.
package serialize

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arrowplane/substraitplan/filter"
	"github.com/arrowplane/substraitplan/internal/msgpack"
	"github.com/arrowplane/substraitplan/planconv"
)

// splitRecord is the wire shape of one scan's split info.
type splitRecord struct {
	Paths          []string `msgpack:"paths"`
	Starts         []uint64 `msgpack:"starts"`
	Lengths        []uint64 `msgpack:"lengths"`
	PartitionIndex uint64   `msgpack:"partition_index"`
	Format         uint8    `msgpack:"format"`
	IsStream       bool     `msgpack:"is_stream,omitempty"`
}

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// codecs builds the shared ZStandard encoder and decoder once. Both are
// goroutine-safe through EncodeAll/DecodeAll.
func codecs() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return codecErr
}

// EncodeSplits serializes and compresses a split map.
func EncodeSplits(splits map[string]*planconv.SplitInfo) ([]byte, error) {
	if err := codecs(); err != nil {
		return nil, fmt.Errorf("init zstd codec: %w", err)
	}

	records := make(map[string]splitRecord, len(splits))
	for id, s := range splits {
		records[id] = splitRecord{
			Paths:          s.Paths,
			Starts:         s.Starts,
			Lengths:        s.Lengths,
			PartitionIndex: s.PartitionIndex,
			Format:         uint8(s.Format),
			IsStream:       s.IsStream,
		}
	}

	data, err := msgpack.Encode(records)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// DecodeSplits decompresses and deserializes a split map encoded by
// EncodeSplits.
func DecodeSplits(data []byte) (map[string]*planconv.SplitInfo, error) {
	if err := codecs(); err != nil {
		return nil, fmt.Errorf("init zstd codec: %w", err)
	}

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress splits: %w", err)
	}

	var records map[string]splitRecord
	if err := msgpack.Decode(raw, &records); err != nil {
		return nil, err
	}

	splits := make(map[string]*planconv.SplitInfo, len(records))
	for id, r := range records {
		splits[id] = &planconv.SplitInfo{
			Paths:          r.Paths,
			Starts:         r.Starts,
			Lengths:        r.Lengths,
			PartitionIndex: r.PartitionIndex,
			Format:         filter.Format(r.Format),
			IsStream:       r.IsStream,
		}
	}
	return splits, nil
}
