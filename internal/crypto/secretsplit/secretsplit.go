// Package secretsplit implements Shamir (T, M) secret sharing of a 32-byte
// symmetric key, by splitting it into two independent 16-byte halves and
// pairing shares by a shared, explicitly-assigned index.
package secretsplit

import (
	"fmt"

	"github.com/zzenonn/shardvault/internal/apperrors"
)

// Share is one combined 32-byte share of a 32-byte key, tagged with its
// Shamir index.
type Share struct {
	Index byte
	Data  [32]byte // upper 16 bytes = half A share, lower 16 = half B share
}

// Split splits a 32-byte key into m combined shares, any t of which
// reconstruct it. Indices 1..m are assigned deterministically and used for
// both halves, so the two independent splits always agree on index
// pairing; the index comparison below is a defensive check that does not
// fail on this path.
func Split(key [32]byte, t, m int) ([]Share, error) {
	if t < 1 || m < t || m > 255 {
		return nil, fmt.Errorf("secretsplit: invalid threshold/share-count t=%d m=%d", t, m)
	}

	indices := make([]byte, m)
	for i := range indices {
		indices[i] = byte(i + 1)
	}

	var halfA, halfB [16]byte
	copy(halfA[:], key[:16])
	copy(halfB[:], key[16:])

	sharesA, err := splitBlock(halfA, t, indices)
	if err != nil {
		return nil, err
	}
	sharesB, err := splitBlock(halfB, t, indices)
	if err != nil {
		return nil, err
	}
	if len(sharesA) != len(sharesB) {
		return nil, apperrors.ErrShareIndexMismatch
	}

	out := make([]Share, m)
	for i := range indices {
		if sharesA[i].index != sharesB[i].index {
			return nil, apperrors.ErrShareIndexMismatch
		}
		out[i].Index = sharesA[i].index
		copy(out[i].Data[:16], sharesA[i].data[:])
		copy(out[i].Data[16:], sharesB[i].data[:])
	}
	return out, nil
}

// Combine reconstructs the 32-byte key from at least t combined shares.
func Combine(shares []Share, t int) ([32]byte, error) {
	var key [32]byte
	if len(shares) < t {
		return key, apperrors.ErrInsufficientShares
	}

	use := shares[:t]
	blocksA := make([]share16, len(use))
	blocksB := make([]share16, len(use))
	for i, s := range use {
		blocksA[i] = share16{index: s.Index}
		copy(blocksA[i].data[:], s.Data[:16])
		blocksB[i] = share16{index: s.Index}
		copy(blocksB[i].data[:], s.Data[16:])
	}

	halfA, err := combineBlock(blocksA)
	if err != nil {
		return key, err
	}
	halfB, err := combineBlock(blocksB)
	if err != nil {
		return key, err
	}

	copy(key[:16], halfA[:])
	copy(key[16:], halfB[:])
	return key, nil
}

// ParseCombinedShare parses the persisted key-share blob format
// (u8 share_index ‖ 32-byte combined_share).
func ParseCombinedShare(blob []byte) (Share, error) {
	var s Share
	if len(blob) != 33 {
		return s, apperrors.ErrMalformedShare
	}
	s.Index = blob[0]
	copy(s.Data[:], blob[1:])
	return s, nil
}

// SerializeCombinedShare produces the persisted key-share blob format.
func SerializeCombinedShare(s Share) []byte {
	out := make([]byte, 0, 33)
	out = append(out, s.Index)
	out = append(out, s.Data[:]...)
	return out
}
