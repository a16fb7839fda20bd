package ecsign

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"go.uber.org/zap"

	"github.com/mahdiidarabi/ecsign/internal/curve"
	"github.com/mahdiidarabi/ecsign/internal/drbg"
	"github.com/mahdiidarabi/ecsign/internal/field"
)

// ExtraEntropyLen is the required length of caller supplied extra entropy.
const ExtraEntropyLen = 32

// SignOptions configures how a signature is produced and encoded.
type SignOptions struct {
	// Canonical forces a low S value (s <= N/2).
	Canonical bool

	// DER selects the DER encoding.  When false the 64-byte compact form is
	// returned.
	DER bool

	// ExtraEntropy is mixed into the nonce seed when set.  It must be 32
	// bytes.
	ExtraEntropy []byte

	// RandomEntropy draws 32 bytes of extra entropy from the signer's random
	// source.  Ignored when ExtraEntropy is set.  It is off in
	// DefaultSignOptions, so signing without options is fully deterministic;
	// set it to get hedged signatures that differ on every call.
	RandomEntropy bool
}

// DefaultSignOptions returns canonical DER signing with a fully deterministic
// nonce.
func DefaultSignOptions() SignOptions {
	return SignOptions{
		Canonical: true,
		DER:       true,
	}
}

// Signer produces ECDSA signatures with RFC 6979 nonces.  A Signer is safe for
// concurrent use as long as it is not reconfigured while signing.
type Signer struct {
	opts       SignOptions
	logger     *zap.Logger
	random     io.Reader
	mac        drbg.HMACFunc
	multiplier *curve.Multiplier
}

// NewSigner creates a signer with default settings.
func NewSigner() *Signer {
	return &Signer{
		opts:       DefaultSignOptions(),
		logger:     zap.NewNop(),
		random:     rand.Reader,
		mac:        drbg.HMACSHA256,
		multiplier: curve.DefaultMultiplier,
	}
}

// WithOptions sets the signing options.
func (s *Signer) WithOptions(opts SignOptions) *Signer {
	s.opts = opts
	return s
}

// WithLogger sets the logger used to report rejected nonce candidates.
func (s *Signer) WithLogger(logger *zap.Logger) *Signer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
	return s
}

// WithRandom sets the source used when RandomEntropy is enabled.
func (s *Signer) WithRandom(r io.Reader) *Signer {
	s.random = r
	return s
}

// WithHMAC sets the HMAC primitive of the nonce generator.  Anything other
// than drbg.HMACSHA256 produces nonces that differ from RFC 6979.
func (s *Signer) WithHMAC(mac drbg.HMACFunc) *Signer {
	s.mac = mac
	return s
}

// WithMultiplier sets the scalar multiplier used to compute R.
func (s *Signer) WithMultiplier(m *curve.Multiplier) *Signer {
	s.multiplier = m
	return s
}

// Options returns the signing options.
func (s *Signer) Options() SignOptions {
	return s.opts
}

// Sign signs hash with key and returns the encoded signature.
func (s *Signer) Sign(hash []byte, key *PrivateKey) ([]byte, error) {
	sig, _, err := s.SignRaw(hash, key)
	if err != nil {
		return nil, err
	}
	return s.encode(sig), nil
}

// SignRecoverable is like Sign but also returns the recovery id of the
// signature.
func (s *Signer) SignRecoverable(hash []byte, key *PrivateKey) ([]byte, byte, error) {
	sig, recoveryID, err := s.SignRaw(hash, key)
	if err != nil {
		return nil, 0, err
	}
	return s.encode(sig), recoveryID, nil
}

func (s *Signer) encode(sig *Signature) []byte {
	if s.opts.DER {
		return sig.SerializeDER()
	}
	return sig.SerializeCompact()
}

// SignRaw signs hash with key and returns the signature before encoding along
// with its recovery id.  Bit 0 of the recovery id is the parity of R.y and bit
// 1 is set when R.x was reduced modulo N.
func (s *Signer) SignRaw(hash []byte, key *PrivateKey) (*Signature, byte, error) {
	if key == nil {
		return nil, 0, makeError(ErrInvalidPrivateKey, "private key is missing")
	}
	if !curve.IsWithinOrder(key.d) {
		return nil, 0, makeError(ErrInvalidPrivateKey,
			"private key is not in [1, N-1], it may have been zeroed")
	}
	if len(hash) == 0 {
		return nil, 0, makeError(ErrInvalidMessageHash, "message hash is missing")
	}

	extra, err := s.extraEntropy()
	if err != nil {
		return nil, 0, err
	}

	seed := ConcatBytes(int2octets(key.d), bits2octets(hash), extra)
	gen := drbg.New(s.mac)
	defer gen.Zero()
	gen.Reseed(seed)

	m := bits2int(hash)
	for {
		candidate, err := gen.Generate()
		if err != nil {
			return nil, 0, err
		}

		sig, recoveryID, reason, err := s.tryNonce(bits2int(candidate), m, key.d)
		if err != nil {
			return nil, 0, err
		}
		if sig != nil {
			s.logger.Debug("signed message hash",
				zap.Int("attempts", gen.Attempts()),
				zap.Uint8("recovery_id", recoveryID))
			return sig, recoveryID, nil
		}

		s.logger.Debug("rejected nonce candidate",
			zap.Int("attempt", gen.Attempts()),
			zap.String("reason", reason))
		gen.Reseed(nil)
	}
}

// tryNonce computes the signature for nonce k.  A nil signature with a
// non-empty reason means the candidate was rejected and another one is needed.
func (s *Signer) tryNonce(k, m, d *big.Int) (*Signature, byte, string, error) {
	if !curve.IsWithinOrder(k) {
		return nil, 0, "nonce out of range", nil
	}

	q, err := s.multiplier.Multiply(curve.Base, k)
	if err != nil {
		return nil, 0, "", err
	}

	r := field.Reduce(q.X, curve.N)
	if r.Sign() == 0 {
		return nil, 0, "r is zero", nil
	}

	kInv, err := field.Invert(k, curve.N)
	if err != nil {
		return nil, 0, "", err
	}

	// s = k^-1 * (m + d*r) mod N
	sv := new(big.Int).Mul(d, r)
	sv.Add(sv, m)
	sv = field.Reduce(sv.Mul(sv, kInv), curve.N)
	if sv.Sign() == 0 {
		return nil, 0, "s is zero", nil
	}

	recoveryID := byte(q.Y.Bit(0))
	if q.X.Cmp(r) != 0 {
		recoveryID |= 2
	}

	if s.opts.Canonical && sv.Cmp(curve.HalfN) > 0 {
		sv.Sub(curve.N, sv)
		recoveryID ^= 1
	}

	sig, err := NewSignature(r, sv)
	if err != nil {
		return nil, 0, "", err
	}
	return sig, recoveryID, "", nil
}

func (s *Signer) extraEntropy() ([]byte, error) {
	if s.opts.ExtraEntropy != nil {
		if len(s.opts.ExtraEntropy) != ExtraEntropyLen {
			return nil, makeError(ErrInvalidExtraEntropyLength,
				fmt.Sprintf("extra entropy must be %d bytes, got %d",
					ExtraEntropyLen, len(s.opts.ExtraEntropy)))
		}
		return s.opts.ExtraEntropy, nil
	}
	if !s.opts.RandomEntropy {
		return nil, nil
	}

	extra := make([]byte, ExtraEntropyLen)
	if _, err := io.ReadFull(s.random, extra); err != nil {
		return nil, fmt.Errorf("failed to read extra entropy: %w", err)
	}
	return extra, nil
}

// bits2int interprets the leftmost 256 bits of b as an integer.  The result
// is not reduced modulo N.
func bits2int(b []byte) *big.Int {
	if len(b) > 32 {
		b = b[:32]
	}
	return new(big.Int).SetBytes(b)
}

// bits2octets reduces the hash modulo N and encodes it as 32 bytes.
func bits2octets(b []byte) []byte {
	return int2octets(field.Reduce(bits2int(b), curve.N))
}

// int2octets encodes x as 32 big-endian bytes.
func int2octets(x *big.Int) []byte {
	return x.FillBytes(make([]byte, 32))
}

// Sign signs hash with key using a default Signer configured with opts.  A nil
// opts selects DefaultSignOptions.
func Sign(hash []byte, key *PrivateKey, opts *SignOptions) ([]byte, error) {
	return signerFor(opts).Sign(hash, key)
}

// SignRecoverable is like Sign but also returns the recovery id.
func SignRecoverable(hash []byte, key *PrivateKey, opts *SignOptions) ([]byte, byte, error) {
	return signerFor(opts).SignRecoverable(hash, key)
}

func signerFor(opts *SignOptions) *Signer {
	signer := NewSigner()
	if opts != nil {
		signer.WithOptions(*opts)
	}
	return signer
}

// SetBaseWindowSize sets the precomputation window used for multiples of the
// generator by the default multiplier.  Larger windows make signing faster at
// the cost of memory.
func SetBaseWindowSize(w int) error {
	return curve.SetWindowSize(curve.Base, w)
}
