// Package drbg implements the HMAC-based deterministic random bit generator
// used to derive ECDSA nonces as described in RFC 6979 section 3.2.
package drbg

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"

	"github.com/mahdiidarabi/ecsign/internal/ecerr"
)

// MaxAttempts bounds the number of candidates Generate will produce.
const MaxAttempts = 1000

// Size is the byte length of the generator state and of each candidate.
const Size = 32

// HMACFunc computes an HMAC of the concatenation of data under key.
type HMACFunc func(key []byte, data ...[]byte) []byte

// NewHMAC returns an HMACFunc built on the given hash constructor.  The hash
// must produce Size byte digests.
func NewHMAC(h func() hash.Hash) HMACFunc {
	return func(key []byte, data ...[]byte) []byte {
		mac := hmac.New(h, key)
		for _, d := range data {
			mac.Write(d)
		}
		return mac.Sum(nil)
	}
}

var (
	// HMACSHA256 is the RFC 6979 primitive.
	HMACSHA256 = NewHMAC(sha256.New)

	// HMACSHA3 uses SHA3-256.  Nonces derived with it differ from those of
	// other RFC 6979 implementations.
	HMACSHA3 = NewHMAC(sha3.New256)
)

// DRBG holds the generator state (K, V and the attempt counter).  It is not
// safe for concurrent use; each signing operation owns its own instance.
type DRBG struct {
	k       []byte
	v       []byte
	counter int
	mac     HMACFunc
}

// New returns a generator in its initial state, V = 0x01..01 and K = 0x00..00.
// A nil mac selects HMACSHA256.
func New(mac HMACFunc) *DRBG {
	if mac == nil {
		mac = HMACSHA256
	}
	v := make([]byte, Size)
	for i := range v {
		v[i] = 0x01
	}
	return &DRBG{
		k:   make([]byte, Size),
		v:   v,
		mac: mac,
	}
}

func (d *DRBG) hmac(data ...[]byte) []byte {
	return d.mac(d.k, data...)
}

// Reseed mixes seed into the state.  An empty seed performs the single update
// used after a rejected candidate.
func (d *DRBG) Reseed(seed []byte) {
	d.k = d.hmac(d.v, []byte{0x00}, seed)
	d.v = d.hmac(d.v)
	if len(seed) == 0 {
		return
	}

	d.k = d.hmac(d.v, []byte{0x01}, seed)
	d.v = d.hmac(d.v)
}

// Generate returns the next candidate.  The returned slice must not be
// modified.
func (d *DRBG) Generate() ([]byte, error) {
	if d.counter >= MaxAttempts {
		return nil, ecerr.New(ecerr.ErrNonceAttemptsExhausted,
			fmt.Sprintf("tried %d nonce candidates, all were invalid", MaxAttempts))
	}
	d.counter++
	d.v = d.hmac(d.v)
	return d.v, nil
}

// Attempts returns the number of candidates generated so far.
func (d *DRBG) Attempts() int {
	return d.counter
}

// Zero clears the generator state.
func (d *DRBG) Zero() {
	for i := range d.k {
		d.k[i] = 0
	}
	for i := range d.v {
		d.v[i] = 0
	}
}
