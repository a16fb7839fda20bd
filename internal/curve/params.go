// Package curve implements secp256k1 point arithmetic in affine and Jacobian
// coordinates along with windowed NAF scalar multiplication accelerated by
// the GLV endomorphism.
package curve

import (
	"math/big"

	"github.com/mahdiidarabi/ecsign/internal/field"
)

func fromHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in curve constant: " + s)
	}
	return n
}

// secp256k1 domain parameters.  See https://www.secg.org/sec2-v2.pdf.
var (
	// P is the field prime.
	P = field.P

	// N is the order of the group generated by the base point.
	N = fromHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")

	// A and B are the curve coefficients of y^2 = x^3 + A*x + B.
	A = big.NewInt(0)
	B = big.NewInt(7)

	// H is the cofactor.
	H = big.NewInt(1)

	// Gx and Gy are the coordinates of the base point.
	Gx = fromHex("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798")
	Gy = fromHex("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8")

	// Beta is a primitive cube root of unity modulo P.  Multiplying the X
	// coordinate of a point by Beta multiplies the point by Lambda.
	Beta = fromHex("7AE96A2B657C07106E64479EAC3434E99CF0497512F58995C1396C28719501EE")

	// Lambda is the cube root of unity modulo N matching Beta.
	Lambda = fromHex("5363AD4CC05C30E0A5261C028812645A122E22EA20816678DF02967C1B23BD72")

	// HalfN is N/2, the bound for canonical (low) S values.
	HalfN = new(big.Int).Rsh(N, 1)
)

// Lattice basis used to split scalars for the endomorphism.
var (
	a1 = fromHex("3086D221A7D46BCDE86C90E49284EB15")
	b1 = new(big.Int).Neg(fromHex("E4437ED6010E88286F547FA90ABFE4C3"))
	a2 = fromHex("114CA50F7A8E2F3F657C1108D9D44CFD8")
	b2 = a1

	pow2128 = new(big.Int).Lsh(big.NewInt(1), 128)
)

// IsWithinOrder returns whether 0 < k < N.
func IsWithinOrder(k *big.Int) bool {
	return k != nil && k.Sign() > 0 && k.Cmp(N) < 0
}
