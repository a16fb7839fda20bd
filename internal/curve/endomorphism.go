package curve

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecsign/internal/ecerr"
	"github.com/mahdiidarabi/ecsign/internal/field"
)

// Split is the decomposition of a scalar k into two halves of at most 128 bits
// such that k = s1*k1 + s2*k2*Lambda (mod N), where s1 and s2 are -1 when the
// corresponding Neg flag is set and 1 otherwise.
type Split struct {
	K1    *big.Int
	K1Neg bool
	K2    *big.Int
	K2Neg bool
}

// divNearest returns a/b rounded to the nearest integer for positive a and b.
func divNearest(a, b *big.Int) *big.Int {
	half := new(big.Int).Quo(b, two)
	return new(big.Int).Quo(new(big.Int).Add(a, half), b)
}

// SplitScalar decomposes k using the precomputed lattice basis.  k must be in
// [1, N-1].  For such k both halves are below 2^128, so
// ErrEndomorphismSplitFailed is only returned if the basis constants are
// wrong.
func SplitScalar(k *big.Int) (Split, error) {
	if !IsWithinOrder(k) {
		return Split{}, ecerr.New(ecerr.ErrInvalidScalar,
			fmt.Sprintf("expected scalar in [1, N-1], got %x", k))
	}

	c1 := divNearest(new(big.Int).Mul(b2, k), N)
	c2 := divNearest(new(big.Int).Mul(new(big.Int).Neg(b1), k), N)

	// k1 = k - c1*a1 - c2*a2
	k1 := new(big.Int).Sub(k, new(big.Int).Mul(c1, a1))
	k1 = field.Reduce(k1.Sub(k1, new(big.Int).Mul(c2, a2)), N)

	// k2 = -c1*b1 - c2*b2
	k2 := new(big.Int).Neg(new(big.Int).Mul(c1, b1))
	k2 = field.Reduce(k2.Sub(k2, new(big.Int).Mul(c2, b2)), N)

	split := Split{K1: k1, K2: k2}
	if k1.Cmp(pow2128) > 0 {
		split.K1Neg = true
		split.K1 = new(big.Int).Sub(N, k1)
	}
	if k2.Cmp(pow2128) > 0 {
		split.K2Neg = true
		split.K2 = new(big.Int).Sub(N, k2)
	}

	if split.K1.Cmp(pow2128) > 0 || split.K2.Cmp(pow2128) > 0 {
		return Split{}, ecerr.New(ecerr.ErrEndomorphismSplitFailed,
			fmt.Sprintf("endomorphism split failed for k=%x", k))
	}
	return split, nil
}
