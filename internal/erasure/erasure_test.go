package erasure

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func randomBuffer(t *testing.T, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("failed to generate random buffer: %v", err)
	}
	return buf
}

func TestEncodeDecodeRoundTripWithAllFragments(t *testing.T) {
	buf := randomBuffer(t, 10000)
	k, n := 4, 6

	fragments, err := Encode(buf, k, n)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(fragments) != n {
		t.Fatalf("len(fragments) = %d, want %d", len(fragments), n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	got, err := Decode(fragments, indices, k, n, len(buf), 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Error("Decode() output does not match original buffer")
	}
}

func TestEncodeDecodeRoundTripWithExactlyKFragments(t *testing.T) {
	buf := randomBuffer(t, 10000)
	k, n := 4, 6

	fragments, err := Encode(buf, k, n)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	subsets := [][]int{
		{0, 1, 2, 3},
		{2, 3, 4, 5},
		{0, 2, 4, 5},
	}
	for _, indices := range subsets {
		subset := make([][]byte, len(indices))
		for i, idx := range indices {
			subset[i] = fragments[idx]
		}
		got, err := Decode(subset, indices, k, n, len(buf), 0)
		if err != nil {
			t.Fatalf("Decode(indices=%v) error = %v", indices, err)
		}
		if !bytes.Equal(got, buf) {
			t.Errorf("Decode(indices=%v) output does not match original buffer", indices)
		}
	}
}

func TestDecodeFailsBelowK(t *testing.T) {
	buf := randomBuffer(t, 1000)
	k, n := 4, 6

	fragments, err := Encode(buf, k, n)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	_, err = Decode(fragments[:k-1], []int{0, 1, 2}, k, n, len(buf), 0)
	if err == nil {
		t.Error("Decode() with fewer than k fragments succeeded, want error")
	}
}

func TestEncodeRejectsInvalidShardCounts(t *testing.T) {
	buf := randomBuffer(t, 100)
	tests := []struct{ k, n int }{
		{0, 4},
		{5, 4},
		{-1, 4},
	}
	for _, tt := range tests {
		if _, err := Encode(buf, tt.k, tt.n); err == nil {
			t.Errorf("Encode(k=%d, n=%d) succeeded, want error", tt.k, tt.n)
		}
	}
}

func TestNormalizeLengthPadsToMax(t *testing.T) {
	fragments := [][]byte{
		{1, 2, 3, 4},
		{1, 2},
		{1, 2, 3},
	}
	out := NormalizeLength(fragments)
	for i, f := range out {
		if len(f) != 4 {
			t.Errorf("out[%d] length = %d, want 4", i, len(f))
		}
	}
	if !bytes.Equal(out[1], []byte{1, 2, 0, 0}) {
		t.Errorf("out[1] = %v, want [1 2 0 0]", out[1])
	}
	// original slices must be untouched
	if len(fragments[1]) != 2 {
		t.Error("NormalizeLength() mutated its input")
	}
}

func TestNormalizeLengthNoopWhenAlreadyEqual(t *testing.T) {
	fragments := [][]byte{{1, 2}, {3, 4}}
	out := NormalizeLength(fragments)
	for i := range fragments {
		if !bytes.Equal(out[i], fragments[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], fragments[i])
		}
	}
}
