package ecsign

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mahdiidarabi/ecsign/internal/curve"
)

func randomKey(t *testing.T) *PrivateKey {
	t.Helper()
	for {
		b := make([]byte, PrivKeyBytesLen)
		_, err := rand.Read(b)
		require.NoError(t, err)
		key, err := PrivKeyFromBytes(b)
		if err == nil {
			return key
		}
	}
}

func randomHash(t *testing.T) []byte {
	t.Helper()
	b := make([]byte, 32)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func decredKey(key *PrivateKey) *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(key.Serialize())
}

func TestSignMatchesDecred(t *testing.T) {
	for i := 0; i < 25; i++ {
		key := randomKey(t)
		hash := randomHash(t)

		der, err := Sign(hash, key, nil)
		require.NoError(t, err)
		want := ecdsa.Sign(decredKey(key), hash).Serialize()
		require.Equalf(t, want, der, "#%d key=%x hash=%x", i, key.Serialize(), hash)
	}
}

func TestSignRecoverableMatchesDecredCompact(t *testing.T) {
	signer := NewSigner().WithOptions(SignOptions{Canonical: true, DER: false})
	for i := 0; i < 25; i++ {
		key := randomKey(t)
		hash := randomHash(t)

		compact, recoveryID, err := signer.SignRecoverable(hash, key)
		require.NoError(t, err)
		require.Len(t, compact, CompactSigLen)

		want := ecdsa.SignCompact(decredKey(key), hash, true)
		require.Equal(t, want[1:], compact)
		require.Equal(t, want[0]-27-4, recoveryID)
	}
}

func TestSignKnownKey(t *testing.T) {
	key, err := PrivKeyFromUint64(1)
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("Satoshi Nakamoto"))

	sig, recoveryID, err := NewSigner().SignRaw(hash[:], key)
	require.NoError(t, err)
	require.False(t, sig.HasHighS())
	require.LessOrEqual(t, recoveryID, byte(3))

	want := ecdsa.Sign(decredKey(key), hash[:]).Serialize()
	require.Equal(t, want, sig.SerializeDER())
}

func TestSignDeterministic(t *testing.T) {
	key := randomKey(t)
	hash := randomHash(t)

	first, err := Sign(hash, key, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Sign(hash, key, nil)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	other, err := Sign(randomHash(t), key, nil)
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestSignCanonical(t *testing.T) {
	sawHigh := false
	for i := 0; i < 40; i++ {
		key := randomKey(t)
		hash := randomHash(t)

		canonical, canonicalID, err := NewSigner().SignRaw(hash, key)
		require.NoError(t, err)
		require.False(t, canonical.HasHighS())

		raw, rawID, err := NewSigner().WithOptions(SignOptions{DER: true}).SignRaw(hash, key)
		require.NoError(t, err)
		require.Zero(t, canonical.R().Cmp(raw.R()))
		require.True(t, raw.NormalizeS().IsEqual(canonical))

		if raw.HasHighS() {
			sawHigh = true
			require.Equal(t, rawID^1, canonicalID)
		} else {
			require.Equal(t, rawID, canonicalID)
		}

		// Both forms verify and recover the same key.
		pub, err := key.PubKey()
		require.NoError(t, err)
		require.True(t, Verify(raw, hash, pub))
		recovered, err := RecoverPublicKey(raw, rawID, hash)
		require.NoError(t, err)
		require.True(t, recovered.IsEqual(pub))
	}
	require.True(t, sawHigh, "no high S signature in 40 attempts")
}

func TestSignExtraEntropy(t *testing.T) {
	key := randomKey(t)
	hash := randomHash(t)
	extra := randomHash(t)

	plain, err := Sign(hash, key, nil)
	require.NoError(t, err)

	opts := DefaultSignOptions()
	opts.ExtraEntropy = extra
	withExtra, err := Sign(hash, key, &opts)
	require.NoError(t, err)
	require.NotEqual(t, plain, withExtra)

	again, err := Sign(hash, key, &opts)
	require.NoError(t, err)
	require.Equal(t, withExtra, again)

	// Random entropy read from the configured source is the same as passing
	// it explicitly.
	random := NewSigner().
		WithOptions(SignOptions{Canonical: true, DER: true, RandomEntropy: true}).
		WithRandom(bytes.NewReader(extra))
	fromReader, err := random.Sign(hash, key)
	require.NoError(t, err)
	require.Equal(t, withExtra, fromReader)

	sig, err := ParseDERSignature(withExtra)
	require.NoError(t, err)
	pub, err := key.PubKey()
	require.NoError(t, err)
	require.True(t, Verify(sig, hash, pub))
}

func TestSignExtraEntropyErrors(t *testing.T) {
	key := randomKey(t)
	hash := randomHash(t)

	for _, n := range []int{0, 16, 31, 33, 64} {
		opts := DefaultSignOptions()
		opts.ExtraEntropy = make([]byte, n)
		_, err := Sign(hash, key, &opts)
		require.Truef(t, errors.Is(err, ErrInvalidExtraEntropyLength), "len %d: got %v", n, err)
	}

	short := NewSigner().
		WithOptions(SignOptions{RandomEntropy: true}).
		WithRandom(bytes.NewReader(make([]byte, 8)))
	_, err := short.Sign(hash, key)
	require.Error(t, err)
}

func TestSignInvalidInputs(t *testing.T) {
	key := randomKey(t)

	_, err := Sign(nil, key, nil)
	require.True(t, errors.Is(err, ErrInvalidMessageHash), "got %v", err)

	_, err = Sign([]byte{}, key, nil)
	require.True(t, errors.Is(err, ErrInvalidMessageHash), "got %v", err)

	_, err = Sign(randomHash(t), nil, nil)
	require.True(t, errors.Is(err, ErrInvalidPrivateKey), "got %v", err)

	var kerr Error
	require.True(t, errors.As(err, &kerr))
	require.Equal(t, ErrInvalidPrivateKey, kerr.Err)
}

func TestSignZeroedKey(t *testing.T) {
	key, err := PrivKeyFromUint64(7)
	require.NoError(t, err)
	key.Zero()

	hash := randomHash(t)
	sig, err := Sign(hash, key, nil)
	require.Nil(t, sig)
	require.True(t, errors.Is(err, ErrInvalidPrivateKey), "got %v", err)

	raw, _, err := NewSigner().SignRaw(hash, key)
	require.Nil(t, raw)
	require.True(t, errors.Is(err, ErrInvalidPrivateKey), "got %v", err)
}

func TestSignLongHashTruncated(t *testing.T) {
	key := randomKey(t)
	hash := randomHash(t)
	long := ConcatBytes(hash, randomHash(t))

	a, err := Sign(hash, key, nil)
	require.NoError(t, err)
	b, err := Sign(long, key, nil)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSignWindowSizeIndependent(t *testing.T) {
	m, err := curve.NewMultiplier(2)
	require.NoError(t, err)
	require.NoError(t, m.SetWindowSize(curve.Base, 8))

	key := randomKey(t)
	hash := randomHash(t)

	want, err := Sign(hash, key, nil)
	require.NoError(t, err)
	got, err := NewSigner().WithMultiplier(m).Sign(hash, key)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.True(t, m.IsCached(curve.Base))
}

func TestSignNonceAttemptsExhausted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	// Every candidate is 0xff..ff, which is never below N.
	alwaysHigh := func(key []byte, data ...[]byte) []byte {
		return bytes.Repeat([]byte{0xff}, 32)
	}
	signer := NewSigner().WithHMAC(alwaysHigh).WithLogger(zap.New(core))

	_, err := signer.Sign(randomHash(t), randomKey(t))
	require.True(t, errors.Is(err, ErrNonceAttemptsExhausted), "got %v", err)
	require.Equal(t, 1000, logs.FilterMessage("rejected nonce candidate").Len())
}

func TestSignLogsAttempts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	signer := NewSigner().WithLogger(zap.New(core))

	_, err := signer.Sign(randomHash(t), randomKey(t))
	require.NoError(t, err)

	entries := logs.FilterMessage("signed message hash").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(1), entries[0].ContextMap()["attempts"])
}

func TestSetBaseWindowSize(t *testing.T) {
	require.True(t, errors.Is(SetBaseWindowSize(3), ErrInvalidWindowSize))

	key := randomKey(t)
	hash := randomHash(t)
	want, err := Sign(hash, key, nil)
	require.NoError(t, err)

	require.NoError(t, SetBaseWindowSize(4))
	defer func() {
		require.NoError(t, SetBaseWindowSize(1))
	}()

	got, err := Sign(hash, key, nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
