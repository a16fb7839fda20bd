package ecsign

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecsign/internal/curve"
	"github.com/mahdiidarabi/ecsign/internal/field"
)

// sqrtExp is (P+1)/4.  P = 3 mod 4, so a^sqrtExp is a square root of a
// whenever one exists.
var sqrtExp = new(big.Int).Rsh(new(big.Int).Add(curve.P, big.NewInt(1)), 2)

// mulAdd returns u1*G + u2*q.  Zero coefficients contribute the identity.
func mulAdd(u1 *big.Int, u2 *big.Int, q curve.AffinePoint) (curve.AffinePoint, error) {
	sum := curve.FromAffine(curve.Infinity)
	for _, term := range []struct {
		k *big.Int
		p curve.AffinePoint
	}{{u1, curve.Base}, {u2, q}} {
		if term.k.Sign() == 0 {
			continue
		}
		product, err := curve.DefaultMultiplier.Multiply(term.p, term.k)
		if err != nil {
			return curve.AffinePoint{}, err
		}
		sum = sum.Add(curve.FromAffine(product))
	}
	return sum.ToAffine()
}

// Verify reports whether sig is a valid signature of hash for pub.  High S
// values are accepted.
func Verify(sig *Signature, hash []byte, pub *PublicKey) bool {
	if sig == nil || pub == nil || len(hash) == 0 {
		return false
	}

	w, err := field.Invert(sig.s, curve.N)
	if err != nil {
		return false
	}
	m := bits2int(hash)
	u1 := field.Reduce(new(big.Int).Mul(m, w), curve.N)
	u2 := field.Reduce(new(big.Int).Mul(sig.r, w), curve.N)

	point, err := mulAdd(u1, u2, pub.point)
	if err != nil || point.IsInfinity() {
		return false
	}
	return field.Reduce(point.X, curve.N).Cmp(sig.r) == 0
}

// RecoverPublicKey returns the public key that produced sig over hash, given
// the recovery id returned when signing.
func RecoverPublicKey(sig *Signature, recoveryID byte, hash []byte) (*PublicKey, error) {
	if sig == nil {
		return nil, makeError(ErrInvalidSignatureComponent, "signature is missing")
	}
	if recoveryID > 3 {
		return nil, makeError(ErrInvalidRecoveryID,
			fmt.Sprintf("recovery id must be in [0, 3], got %d", recoveryID))
	}
	if len(hash) == 0 {
		return nil, makeError(ErrInvalidMessageHash, "message hash is missing")
	}

	x := new(big.Int).Set(sig.r)
	if recoveryID&2 != 0 {
		x.Add(x, curve.N)
		if x.Cmp(curve.P) >= 0 {
			return nil, makeError(ErrInvalidRecoveryID,
				"recovery id overflows the field for this signature")
		}
	}

	// y^2 = x^3 + 7
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs = field.Mod(rhs.Add(rhs, curve.B))
	y := new(big.Int).Exp(rhs, sqrtExp, curve.P)
	if field.Mod(new(big.Int).Mul(y, y)).Cmp(rhs) != 0 {
		return nil, makeError(ErrInvalidRecoveryID,
			"signature R does not correspond to a curve point")
	}
	if y.Bit(0) != uint(recoveryID&1) {
		y.Sub(curve.P, y)
	}
	r := curve.AffinePoint{X: x, Y: y}

	rInv, err := field.Invert(sig.r, curve.N)
	if err != nil {
		return nil, err
	}
	m := bits2int(hash)

	// Q = r^-1 * (s*R - m*G)
	u1 := field.Reduce(new(big.Int).Mul(new(big.Int).Neg(m), rInv), curve.N)
	u2 := field.Reduce(new(big.Int).Mul(sig.s, rInv), curve.N)
	q, err := mulAdd(u1, u2, r)
	if err != nil {
		return nil, err
	}
	return newPublicKey(q)
}
