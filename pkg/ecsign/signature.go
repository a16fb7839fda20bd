package ecsign

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/mahdiidarabi/ecsign/internal/curve"
)

// CompactSigLen is the length of a compact (r || s) signature.
const CompactSigLen = 64

// Signature is an ECDSA signature with both components in [1, N-1].
type Signature struct {
	r *big.Int
	s *big.Int
}

// NewSignature validates r and s and returns a signature holding copies of
// them.
func NewSignature(r, s *big.Int) (*Signature, error) {
	if !curve.IsWithinOrder(r) {
		return nil, makeError(ErrInvalidSignatureComponent,
			"signature R must be in the range [1, N-1]")
	}
	if !curve.IsWithinOrder(s) {
		return nil, makeError(ErrInvalidSignatureComponent,
			"signature S must be in the range [1, N-1]")
	}
	return &Signature{r: new(big.Int).Set(r), s: new(big.Int).Set(s)}, nil
}

// R returns a copy of the r component.
func (sig *Signature) R() *big.Int {
	return new(big.Int).Set(sig.r)
}

// S returns a copy of the s component.
func (sig *Signature) S() *big.Int {
	return new(big.Int).Set(sig.s)
}

// HasHighS returns whether s > N/2.
func (sig *Signature) HasHighS() bool {
	return sig.s.Cmp(curve.HalfN) > 0
}

// NormalizeS returns the signature with s replaced by N-s when s is high.
// Signatures that already have a low s are returned as is.
func (sig *Signature) NormalizeS() *Signature {
	if !sig.HasHighS() {
		return sig
	}
	return &Signature{r: sig.r, s: new(big.Int).Sub(curve.N, sig.s)}
}

// IsEqual returns whether both signatures have the same components.
func (sig *Signature) IsEqual(other *Signature) bool {
	return sig.r.Cmp(other.r) == 0 && sig.s.Cmp(other.s) == 0
}

// SerializeDER encodes the signature as an ASN.1 DER SEQUENCE of two
// INTEGERs.
func (sig *Signature) SerializeDER() []byte {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(sig.r)
		b.AddASN1BigInt(sig.s)
	})
	return b.BytesOrPanic()
}

// SerializeCompact encodes the signature as 32-byte big-endian r followed by
// 32-byte big-endian s.
func (sig *Signature) SerializeCompact() []byte {
	return ConcatBytes(int2octets(sig.r), int2octets(sig.s))
}

// ParseDERSignature parses a strict DER signature.  Trailing data, long
// form lengths and non-minimal integers are rejected.
func ParseDERSignature(der []byte) (*Signature, error) {
	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, makeError(ErrInvalidEncoding, "malformed DER signature")
	}
	return NewSignature(r, s)
}

// ParseCompactSignature parses a 64-byte r || s signature.
func ParseCompactSignature(b []byte) (*Signature, error) {
	if len(b) != CompactSigLen {
		return nil, makeError(ErrInvalidEncoding,
			fmt.Sprintf("compact signature must be %d bytes, got %d", CompactSigLen, len(b)))
	}
	r := new(big.Int).SetBytes(b[:32])
	s := new(big.Int).SetBytes(b[32:])
	return NewSignature(r, s)
}
