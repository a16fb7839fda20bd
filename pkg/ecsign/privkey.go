package ecsign

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecsign/internal/curve"
)

// PrivKeyBytesLen is the length of a serialized private key.
const PrivKeyBytesLen = 32

// PrivateKey is a secp256k1 private scalar in [1, N-1].  It can only be built
// through the PrivKeyFrom constructors, which validate the range.
type PrivateKey struct {
	d *big.Int
}

// PrivKeyFromBytes interprets b as a 32-byte big-endian scalar.
func PrivKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivKeyBytesLen {
		return nil, makeError(ErrInvalidPrivateKey,
			fmt.Sprintf("private key must be %d bytes, got %d", PrivKeyBytesLen, len(b)))
	}
	return PrivKeyFromInt(new(big.Int).SetBytes(b))
}

// PrivKeyFromHex parses a 64 character hex private key.
func PrivKeyFromHex(s string) (*PrivateKey, error) {
	if len(s) != 2*PrivKeyBytesLen {
		return nil, makeError(ErrInvalidPrivateKey,
			fmt.Sprintf("hex private key must be %d characters, got %d", 2*PrivKeyBytesLen, len(s)))
	}
	b, err := HexToBytes(s)
	if err != nil {
		return nil, makeError(ErrInvalidPrivateKey,
			fmt.Sprintf("malformed hex private key: %v", err))
	}
	return PrivKeyFromBytes(b)
}

// PrivKeyFromInt validates d and returns a key holding a copy of it.
func PrivKeyFromInt(d *big.Int) (*PrivateKey, error) {
	if !curve.IsWithinOrder(d) {
		return nil, makeError(ErrInvalidPrivateKey,
			"private key must be in the range [1, N-1]")
	}
	return &PrivateKey{d: new(big.Int).Set(d)}, nil
}

// PrivKeyFromUint64 returns the key for a small scalar.
func PrivKeyFromUint64(v uint64) (*PrivateKey, error) {
	return PrivKeyFromInt(new(big.Int).SetUint64(v))
}

// Scalar returns a copy of the private scalar.
func (p *PrivateKey) Scalar() *big.Int {
	return new(big.Int).Set(p.d)
}

// Serialize returns the key as 32 big-endian bytes.
func (p *PrivateKey) Serialize() []byte {
	return int2octets(p.d)
}

// PubKey derives the public key d*G.
func (p *PrivateKey) PubKey() (*PublicKey, error) {
	point, err := curve.Base.Multiply(p.d)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}
	return newPublicKey(point)
}

// Zero overwrites the key.  The key must not be used afterwards.
func (p *PrivateKey) Zero() {
	p.d.SetInt64(0)
}
