package ecsign

import (
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/ecsign/internal/curve"
)

// PublicKey is a point on secp256k1 other than the point at infinity.
type PublicKey struct {
	point curve.AffinePoint
}

func newPublicKey(p curve.AffinePoint) (*PublicKey, error) {
	if p.IsInfinity() {
		return nil, makeError(ErrInvalidPublicKey, "public key is the point at infinity")
	}
	if !p.IsOnCurve() {
		return nil, makeError(ErrInvalidPublicKey, "public key is not on the curve")
	}
	return &PublicKey{point: p}, nil
}

// ParsePubKey parses a SEC1 encoded public key in compressed (33 bytes),
// uncompressed or hybrid (65 bytes) form.
func ParsePubKey(serialized []byte) (*PublicKey, error) {
	pk, err := secp256k1.ParsePubKey(serialized)
	if err != nil {
		return nil, makeError(ErrInvalidPublicKey,
			fmt.Sprintf("failed to parse public key: %v", err))
	}
	return newPublicKey(curve.AffinePoint{X: pk.X(), Y: pk.Y()})
}

// X returns a copy of the x coordinate.
func (p *PublicKey) X() *big.Int {
	return new(big.Int).Set(p.point.X)
}

// Y returns a copy of the y coordinate.
func (p *PublicKey) Y() *big.Int {
	return new(big.Int).Set(p.point.Y)
}

// IsEqual returns whether p and other are the same point.
func (p *PublicKey) IsEqual(other *PublicKey) bool {
	return p.point.Equal(other.point)
}

func (p *PublicKey) toSecp256k1() *secp256k1.PublicKey {
	var x, y secp256k1.FieldVal
	x.SetByteSlice(p.point.X.FillBytes(make([]byte, 32)))
	y.SetByteSlice(p.point.Y.FillBytes(make([]byte, 32)))
	return secp256k1.NewPublicKey(&x, &y)
}

// SerializeCompressed encodes the key in the 33-byte SEC1 compressed form.
func (p *PublicKey) SerializeCompressed() []byte {
	return p.toSecp256k1().SerializeCompressed()
}

// SerializeUncompressed encodes the key in the 65-byte SEC1 uncompressed form.
func (p *PublicKey) SerializeUncompressed() []byte {
	return p.toSecp256k1().SerializeUncompressed()
}
