package secretsplit

import (
	"crypto/rand"
	"fmt"
	"io"
)

// share16 is one Shamir share of a 16-byte secret: a field-element index
// in [1,255] and 16 bytes of evaluated polynomial output.
type share16 struct {
	index byte
	data  [16]byte
}

// splitBlock splits a 16-byte secret into shares at the given explicit
// indices (each 1..255, distinct), any t of which reconstruct the secret.
// Using caller-supplied indices (rather than indices chosen internally)
// is what lets two independent calls — one per key half — agree on share
// numbering without comparing results afterward.
func splitBlock(secret [16]byte, t int, indices []byte) ([]share16, error) {
	n := len(indices)
	if t < 1 || t > n {
		return nil, fmt.Errorf("secretsplit: threshold %d out of range for %d shares", t, n)
	}

	shares := make([]share16, n)
	for i, idx := range indices {
		if idx == 0 {
			return nil, fmt.Errorf("secretsplit: share index must be nonzero")
		}
		shares[i].index = idx
	}

	coeffs := make([]byte, t)
	for byteIdx := 0; byteIdx < 16; byteIdx++ {
		coeffs[0] = secret[byteIdx]
		if t > 1 {
			if _, err := io.ReadFull(rand.Reader, coeffs[1:]); err != nil {
				return nil, fmt.Errorf("secretsplit: failed to generate random coefficients: %w", err)
			}
		}
		for i := range shares {
			x := shares[i].index
			y := coeffs[0]
			px := byte(1)
			for k := 1; k < t; k++ {
				px = gfMul(px, x)
				y = gfAdd(y, gfMul(coeffs[k], px))
			}
			shares[i].data[byteIdx] = y
		}
	}
	return shares, nil
}

// combineBlock reconstructs a 16-byte secret from >= t shares using
// Lagrange interpolation at x=0.
func combineBlock(shares []share16) ([16]byte, error) {
	var secret [16]byte
	if len(shares) == 0 {
		return secret, fmt.Errorf("secretsplit: no shares to combine")
	}

	for byteIdx := 0; byteIdx < 16; byteIdx++ {
		var acc byte
		for i, si := range shares {
			num := byte(1)
			den := byte(1)
			for j, sj := range shares {
				if i == j {
					continue
				}
				num = gfMul(num, sj.index)
				den = gfMul(den, gfAdd(sj.index, si.index))
			}
			term := gfMul(si.data[byteIdx], gfDiv(num, den))
			acc = gfAdd(acc, term)
		}
		secret[byteIdx] = acc
	}
	return secret, nil
}
