package curve

import (
	"math/big"

	"github.com/mahdiidarabi/ecsign/internal/ecerr"
	"github.com/mahdiidarabi/ecsign/internal/field"
)

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	eight = big.NewInt(8)
)

// AffinePoint is a point on the curve in affine coordinates.  The point at
// infinity is represented as (0, 0).  AffinePoint values are immutable; none of
// the methods modify the receiver or the coordinates it references.
type AffinePoint struct {
	X *big.Int
	Y *big.Int
}

var (
	// Base is the generator of the secp256k1 group.
	Base = AffinePoint{X: Gx, Y: Gy}

	// Infinity is the identity element.
	Infinity = AffinePoint{X: zero, Y: zero}
)

// NewAffinePoint returns a point with copies of the given coordinates.
func NewAffinePoint(x, y *big.Int) AffinePoint {
	return AffinePoint{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// IsInfinity returns whether p is the point at infinity.
func (p AffinePoint) IsInfinity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

// IsOnCurve returns whether p satisfies y^2 = x^3 + 7 (mod P).
func (p AffinePoint) IsOnCurve() bool {
	if p.IsInfinity() {
		return false
	}
	if p.X.Sign() < 0 || p.X.Cmp(P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(P) >= 0 {
		return false
	}
	lhs := field.Mod(new(big.Int).Mul(p.Y, p.Y))
	rhs := new(big.Int).Mul(p.X, p.X)
	rhs.Mul(rhs, p.X)
	rhs.Add(rhs, B)
	return lhs.Cmp(field.Mod(rhs)) == 0
}

// Equal returns whether p and q have the same coordinates.
func (p AffinePoint) Equal(q AffinePoint) bool {
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Negate returns -p.
func (p AffinePoint) Negate() AffinePoint {
	if p.IsInfinity() {
		return p
	}
	return AffinePoint{X: p.X, Y: field.Mod(new(big.Int).Neg(p.Y))}
}

// Add returns p + q.
func (p AffinePoint) Add(q AffinePoint) (AffinePoint, error) {
	return FromAffine(p).Add(FromAffine(q)).ToAffine()
}

// Multiply returns k*p using the default multiplier.  k must be in [1, N-1].
func (p AffinePoint) Multiply(k *big.Int) (AffinePoint, error) {
	return DefaultMultiplier.Multiply(p, k)
}

// JacobianPoint is a point in Jacobian projective coordinates, representing
// the affine point (X/Z^2, Y/Z^3).  A zero Z denotes the identity.
type JacobianPoint struct {
	X *big.Int
	Y *big.Int
	Z *big.Int
}

var jacobianZero = JacobianPoint{X: zero, Y: one, Z: zero}

// FromAffine converts an affine point to Jacobian coordinates with Z = 1.
func FromAffine(p AffinePoint) JacobianPoint {
	if p.IsInfinity() {
		return jacobianZero
	}
	return JacobianPoint{X: p.X, Y: p.Y, Z: one}
}

// IsIdentity returns whether p is the point at infinity.
func (p JacobianPoint) IsIdentity() bool {
	return p.Z.Sign() == 0
}

// Negate returns -p.
func (p JacobianPoint) Negate() JacobianPoint {
	return JacobianPoint{X: p.X, Y: field.Mod(new(big.Int).Neg(p.Y)), Z: p.Z}
}

// Equal compares p and q without normalizing either of them.
func (p JacobianPoint) Equal(q JacobianPoint) bool {
	z1z1 := field.Mod(new(big.Int).Mul(p.Z, p.Z))
	z2z2 := field.Mod(new(big.Int).Mul(q.Z, q.Z))
	u1 := field.Mod(new(big.Int).Mul(p.X, z2z2))
	u2 := field.Mod(new(big.Int).Mul(q.X, z1z1))
	s1 := field.Mod(new(big.Int).Mul(field.Mod(new(big.Int).Mul(p.Y, q.Z)), z2z2))
	s2 := field.Mod(new(big.Int).Mul(field.Mod(new(big.Int).Mul(q.Y, p.Z)), z1z1))
	return u1.Cmp(u2) == 0 && s1.Cmp(s2) == 0
}

// Double returns 2p.  The formulas assume A = 0.
func (p JacobianPoint) Double() JacobianPoint {
	if p.IsIdentity() {
		return jacobianZero
	}

	a := field.Mod(new(big.Int).Mul(p.X, p.X))
	b := field.Mod(new(big.Int).Mul(p.Y, p.Y))
	c := field.Mod(new(big.Int).Mul(b, b))

	// D = 2*((X1+B)^2 - A - C)
	d := new(big.Int).Add(p.X, b)
	d = field.Mod(d.Mul(d, d))
	d.Sub(d, a)
	d.Sub(d, c)
	d = field.Mod(d.Mul(d, two))

	e := field.Mod(new(big.Int).Mul(three, a))
	f := field.Mod(new(big.Int).Mul(e, e))

	// X3 = F - 2*D
	x3 := field.Mod(new(big.Int).Sub(f, new(big.Int).Mul(two, d)))

	// Y3 = E*(D - X3) - 8*C
	y3 := new(big.Int).Sub(d, x3)
	y3.Mul(y3, e)
	y3.Sub(y3, new(big.Int).Mul(eight, c))
	y3 = field.Mod(y3)

	// Z3 = 2*Y1*Z1
	z3 := new(big.Int).Mul(two, p.Y)
	z3 = field.Mod(z3.Mul(z3, p.Z))

	return JacobianPoint{X: x3, Y: y3, Z: z3}
}

// Add returns p + q.
func (p JacobianPoint) Add(q JacobianPoint) JacobianPoint {
	if q.IsIdentity() {
		return p
	}
	if p.IsIdentity() {
		return q
	}

	z1z1 := field.Mod(new(big.Int).Mul(p.Z, p.Z))
	z2z2 := field.Mod(new(big.Int).Mul(q.Z, q.Z))
	u1 := field.Mod(new(big.Int).Mul(p.X, z2z2))
	u2 := field.Mod(new(big.Int).Mul(q.X, z1z1))
	s1 := field.Mod(new(big.Int).Mul(field.Mod(new(big.Int).Mul(p.Y, q.Z)), z2z2))
	s2 := field.Mod(new(big.Int).Mul(field.Mod(new(big.Int).Mul(q.Y, p.Z)), z1z1))

	h := field.Mod(new(big.Int).Sub(u2, u1))
	r := field.Mod(new(big.Int).Sub(s2, s1))

	if h.Sign() == 0 {
		if r.Sign() == 0 {
			return p.Double()
		}
		return jacobianZero
	}

	hh := field.Mod(new(big.Int).Mul(h, h))
	hhh := field.Mod(new(big.Int).Mul(h, hh))
	v := field.Mod(new(big.Int).Mul(u1, hh))

	// X3 = r^2 - HHH - 2*V
	x3 := new(big.Int).Mul(r, r)
	x3.Sub(x3, hhh)
	x3.Sub(x3, new(big.Int).Mul(two, v))
	x3 = field.Mod(x3)

	// Y3 = r*(V - X3) - S1*HHH
	y3 := new(big.Int).Sub(v, x3)
	y3.Mul(y3, r)
	y3.Sub(y3, new(big.Int).Mul(s1, hhh))
	y3 = field.Mod(y3)

	// Z3 = Z1*Z2*H
	z3 := new(big.Int).Mul(p.Z, q.Z)
	z3 = field.Mod(z3.Mul(z3, h))

	return JacobianPoint{X: x3, Y: y3, Z: z3}
}

// ToAffine converts p to affine coordinates with a single inversion.
func (p JacobianPoint) ToAffine() (AffinePoint, error) {
	if p.IsIdentity() {
		return Infinity, nil
	}
	invZ, err := field.Invert(p.Z, P)
	if err != nil {
		return AffinePoint{}, err
	}
	return p.ToAffineWithInverse(invZ)
}

// ToAffineWithInverse converts p to affine coordinates given the inverse of
// its Z coordinate, typically produced by a batch inversion.
func (p JacobianPoint) ToAffineWithInverse(invZ *big.Int) (AffinePoint, error) {
	if p.IsIdentity() {
		return Infinity, nil
	}

	if field.Mod(new(big.Int).Mul(p.Z, invZ)).Cmp(one) != 0 {
		return AffinePoint{}, ecerr.New(ecerr.ErrInconsistentProjection,
			"supplied Z inverse does not invert the Z coordinate")
	}

	iz2 := field.Mod(new(big.Int).Mul(invZ, invZ))
	iz3 := field.Mod(new(big.Int).Mul(iz2, invZ))
	return AffinePoint{
		X: field.Mod(new(big.Int).Mul(p.X, iz2)),
		Y: field.Mod(new(big.Int).Mul(p.Y, iz3)),
	}, nil
}

// ToAffineBatch converts all points to affine coordinates sharing one field
// inversion.  Identity points map to Infinity.
func ToAffineBatch(points []JacobianPoint) ([]AffinePoint, error) {
	zs := make([]*big.Int, len(points))
	for i, p := range points {
		zs[i] = p.Z
	}
	inverses, err := field.InvertBatch(zs, P)
	if err != nil {
		return nil, err
	}

	result := make([]AffinePoint, len(points))
	for i, p := range points {
		affine, err := p.ToAffineWithInverse(inverses[i])
		if err != nil {
			return nil, err
		}
		result[i] = affine
	}
	return result, nil
}

// NormalizeZ rescales every point so that Z = 1.
func NormalizeZ(points []JacobianPoint) ([]JacobianPoint, error) {
	affine, err := ToAffineBatch(points)
	if err != nil {
		return nil, err
	}
	result := make([]JacobianPoint, len(affine))
	for i, p := range affine {
		result[i] = FromAffine(p)
	}
	return result, nil
}
