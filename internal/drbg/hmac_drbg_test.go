package drbg

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecsign/internal/ecerr"
)

func hexToBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// TestRFC6979Sample checks the first candidate against the P-256/SHA-256
// "sample" vector of RFC 6979 appendix A.2.5.  The generator itself is curve
// independent as long as the candidate is below the group order.
func TestRFC6979Sample(t *testing.T) {
	x := hexToBytes(t, "C9AFA9D845BA75166B5C215767B1D6934E50C3DB36E89B127B8A622B120F6721")
	h := sha256.Sum256([]byte("sample"))

	d := New(nil)
	d.Reseed(append(append([]byte{}, x...), h[:]...))
	k, err := d.Generate()
	require.NoError(t, err)
	require.Equal(t, "a6e3c57dd01abe90086538398355dd4c3b17aa873382b0f24d6129493d8aad60", hex.EncodeToString(k))
}

func TestMatchesDecredNonce(t *testing.T) {
	for i := 0; i < 20; i++ {
		key := make([]byte, 32)
		hash := make([]byte, 32)
		extra := make([]byte, 32)
		for _, b := range [][]byte{key, hash, extra} {
			_, err := rand.Read(b)
			require.NoError(t, err)
		}
		// Keep values below the group order so no reduction is involved.
		key[0] &= 0x7f
		hash[0] &= 0x7f

		d := New(HMACSHA256)
		d.Reseed(bytes.Join([][]byte{key, hash}, nil))
		first, err := d.Generate()
		require.NoError(t, err)
		first = append([]byte{}, first...)

		d.Reseed(nil)
		second, err := d.Generate()
		require.NoError(t, err)

		want0 := secp256k1.NonceRFC6979(key, hash, nil, nil, 0).Bytes()
		want1 := secp256k1.NonceRFC6979(key, hash, nil, nil, 1).Bytes()
		if first[0]&0x80 == 0 && second[0]&0x80 == 0 {
			require.Equal(t, want0[:], first)
			require.Equal(t, want1[:], second)
		}

		withExtra := New(HMACSHA256)
		withExtra.Reseed(bytes.Join([][]byte{key, hash, extra}, nil))
		got, err := withExtra.Generate()
		require.NoError(t, err)
		wantExtra := secp256k1.NonceRFC6979(key, hash, extra, nil, 0).Bytes()
		if got[0]&0x80 == 0 {
			require.Equal(t, wantExtra[:], got)
		}
	}
}

func TestReseedEmptySeedSingleStep(t *testing.T) {
	d := New(nil)
	k0 := append([]byte{}, d.k...)
	v0 := append([]byte{}, d.v...)

	d.Reseed(nil)
	wantK := HMACSHA256(k0, v0, []byte{0x00})
	wantV := HMACSHA256(wantK, v0)
	require.Equal(t, wantK, d.k)
	require.Equal(t, wantV, d.v)
}

func TestGenerateDeterministic(t *testing.T) {
	seed := []byte("deterministic seed material")
	a, b := New(nil), New(nil)
	a.Reseed(seed)
	b.Reseed(seed)

	for i := 0; i < 5; i++ {
		x, err := a.Generate()
		require.NoError(t, err)
		y, err := b.Generate()
		require.NoError(t, err)
		require.Equal(t, x, y)
	}
	require.Equal(t, 5, a.Attempts())
}

func TestGenerateAttemptsExhausted(t *testing.T) {
	d := New(nil)
	d.Reseed([]byte{0x42})
	for i := 0; i < MaxAttempts; i++ {
		_, err := d.Generate()
		require.NoError(t, err)
	}

	_, err := d.Generate()
	require.True(t, errors.Is(err, ecerr.ErrNonceAttemptsExhausted), "got %v", err)
}

func TestAlternateHMAC(t *testing.T) {
	seed := []byte{1, 2, 3}
	a, b := New(HMACSHA256), New(HMACSHA3)
	a.Reseed(seed)
	b.Reseed(seed)

	x, err := a.Generate()
	require.NoError(t, err)
	y, err := b.Generate()
	require.NoError(t, err)
	require.Len(t, y, Size)
	require.NotEqual(t, x, y)
}

func TestZero(t *testing.T) {
	d := New(nil)
	d.Reseed([]byte{9})
	d.Zero()
	require.Equal(t, make([]byte, Size), d.k)
	require.Equal(t, make([]byte, Size), d.v)
}
