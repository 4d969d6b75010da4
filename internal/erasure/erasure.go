// Package erasure implements systematic (K, N) Reed-Solomon erasure coding
// over an arbitrary input buffer: k data fragments plus n-k parity
// fragments, any k of which reconstruct the original bytes.
package erasure

import (
	"bytes"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Encode splits buffer into k data fragments (systematic, fragments 0..k-1
// are exact slices of the padded input) and n-k parity fragments, each of
// length ceil(len(buffer)/k).
func Encode(buffer []byte, k, n int) ([][]byte, error) {
	if k < 1 || n < k {
		return nil, fmt.Errorf("erasure: invalid (k=%d, n=%d)", k, n)
	}
	enc, err := reedsolomon.New(k, n-k)
	if err != nil {
		return nil, fmt.Errorf("erasure: failed to construct encoder: %w", err)
	}

	shards, err := enc.Split(buffer)
	if err != nil {
		return nil, fmt.Errorf("erasure: failed to split buffer: %w", err)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("erasure: failed to encode parity: %w", err)
	}
	return shards, nil
}

// Decode reconstructs the original buffer from any k fragments at their
// original indices. All fragments must be the same byte length; the
// caller is responsible for zero-padding fetched fragments to the common
// shard length before calling Decode (see NormalizeLength).
// padByteCount trims that many trailing zero bytes after Join; pass 0 when
// the exact original length is recovered by other means.
func Decode(fragments [][]byte, indices []int, k, n int, originalLen int, padByteCount int) ([]byte, error) {
	if len(fragments) < k || len(fragments) != len(indices) {
		return nil, fmt.Errorf("erasure: need %d fragments with matching indices, got %d fragments/%d indices", k, len(fragments), len(indices))
	}

	enc, err := reedsolomon.New(k, n-k)
	if err != nil {
		return nil, fmt.Errorf("erasure: failed to construct decoder: %w", err)
	}

	shards := make([][]byte, n)
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("erasure: fragment index %d out of range [0,%d)", idx, n)
		}
		shards[idx] = fragments[i]
	}

	if err := enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("erasure: failed to reconstruct: %w", err)
	}

	var buf bytes.Buffer
	if err := enc.Join(&buf, shards, originalLen); err != nil {
		return nil, fmt.Errorf("erasure: failed to join shards: %w", err)
	}

	out := buf.Bytes()
	if padByteCount > 0 && padByteCount <= len(out) {
		out = out[:len(out)-padByteCount]
	}
	return out, nil
}

// NormalizeLength zero-pads every fragment (by returning new slices) to the
// maximum observed length, as required before Decode when fetched
// fragments may be short due to a lossy transport. Fragments produced by
// Encode are always equal-length, so any shortfall here comes from the
// transport, not the encoder.
func NormalizeLength(fragments [][]byte) [][]byte {
	max := 0
	for _, f := range fragments {
		if len(f) > max {
			max = len(f)
		}
	}
	out := make([][]byte, len(fragments))
	for i, f := range fragments {
		if len(f) == max {
			out[i] = f
			continue
		}
		padded := make([]byte, max)
		copy(padded, f)
		out[i] = padded
	}
	return out
}
