// Package field implements modular arithmetic helpers over arbitrary moduli,
// defaulting to the secp256k1 field prime.
package field

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecsign/internal/ecerr"
)

// P is the secp256k1 field prime 2^256 - 2^32 - 977.
var P, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F", 16)

var one = big.NewInt(1)

// Reduce returns a mod m normalized into [0, m).  Negative inputs, such as
// the result of a subtraction, are handled.
func Reduce(a, m *big.Int) *big.Int {
	// big.Int.Mod implements Euclidean modulus, so the result is never
	// negative for a positive modulus.
	return new(big.Int).Mod(a, m)
}

// Mod returns a mod P.
func Mod(a *big.Int) *big.Int {
	return Reduce(a, P)
}

// Invert returns the inverse of a modulo m using the extended Euclidean
// algorithm.
func Invert(a, m *big.Int) (*big.Int, error) {
	if a.Sign() == 0 || m.Sign() <= 0 {
		return nil, ecerr.New(ecerr.ErrNotInvertible,
			fmt.Sprintf("invert: expected positive integers, got a=%s m=%s", a, m))
	}

	x, y := new(big.Int), new(big.Int).Set(one)
	u, v := new(big.Int).Set(one), new(big.Int)
	num := Reduce(a, m)
	b := new(big.Int).Set(m)

	q, r := new(big.Int), new(big.Int)
	for num.Sign() != 0 {
		q.QuoRem(b, num, r)
		nextU := new(big.Int).Sub(x, new(big.Int).Mul(u, q))
		nextV := new(big.Int).Sub(y, new(big.Int).Mul(v, q))

		b, num = num, new(big.Int).Set(r)
		x, y = u, v
		u, v = nextU, nextV
	}

	if b.Cmp(one) != 0 {
		return nil, ecerr.New(ecerr.ErrNotInvertible,
			fmt.Sprintf("invert: %s has no inverse modulo %s", a, m))
	}
	return Reduce(x, m), nil
}

// InvertBatch inverts every element of nums modulo m with a single call to
// Invert (Montgomery's trick).  Zero elements are skipped and their slot in
// the result holds zero.
func InvertBatch(nums []*big.Int, m *big.Int) ([]*big.Int, error) {
	scratch := make([]*big.Int, len(nums))

	acc := big.NewInt(1)
	for i, num := range nums {
		if num.Sign() == 0 {
			continue
		}
		scratch[i] = acc
		acc = Reduce(new(big.Int).Mul(acc, num), m)
	}

	inverted, err := Invert(acc, m)
	if err != nil {
		return nil, err
	}

	acc = inverted
	for i := len(nums) - 1; i >= 0; i-- {
		num := nums[i]
		if num.Sign() == 0 {
			scratch[i] = new(big.Int)
			continue
		}
		scratch[i] = Reduce(new(big.Int).Mul(acc, scratch[i]), m)
		acc = Reduce(new(big.Int).Mul(acc, num), m)
	}
	return scratch, nil
}
