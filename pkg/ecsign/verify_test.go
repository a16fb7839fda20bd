package ecsign

import (
	"errors"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecsign/internal/curve"
)

func TestVerify(t *testing.T) {
	for i := 0; i < 20; i++ {
		key := randomKey(t)
		pub, err := key.PubKey()
		require.NoError(t, err)
		hash := randomHash(t)

		sig, _, err := NewSigner().SignRaw(hash, key)
		require.NoError(t, err)
		require.True(t, Verify(sig, hash, pub))

		tampered := append([]byte{}, hash...)
		tampered[0] ^= 0x01
		require.False(t, Verify(sig, tampered, pub))

		other, err := randomKey(t).PubKey()
		require.NoError(t, err)
		require.False(t, Verify(sig, hash, other))

		wrongR := mustSignature(t, new(big.Int).Add(sig.R(), big.NewInt(1)), sig.S())
		require.False(t, Verify(wrongR, hash, pub))
	}
}

func TestVerifyInterop(t *testing.T) {
	for i := 0; i < 10; i++ {
		key := randomKey(t)
		hash := randomHash(t)
		pub, err := key.PubKey()
		require.NoError(t, err)

		// decred signatures verify here.
		der := ecdsa.Sign(decredKey(key), hash).Serialize()
		sig, err := ParseDERSignature(der)
		require.NoError(t, err)
		require.True(t, Verify(sig, hash, pub))

		// And ours verify with decred.
		ours, err := Sign(hash, key, nil)
		require.NoError(t, err)
		parsed, err := ecdsa.ParseDERSignature(ours)
		require.NoError(t, err)
		require.True(t, parsed.Verify(hash, decredKey(key).PubKey()))
	}
}

func TestVerifyNilInputs(t *testing.T) {
	key := randomKey(t)
	pub, err := key.PubKey()
	require.NoError(t, err)
	hash := randomHash(t)
	sig, _, err := NewSigner().SignRaw(hash, key)
	require.NoError(t, err)

	require.False(t, Verify(nil, hash, pub))
	require.False(t, Verify(sig, nil, pub))
	require.False(t, Verify(sig, hash, nil))
}

func TestRecoverPublicKey(t *testing.T) {
	signer := NewSigner().WithOptions(SignOptions{Canonical: true, DER: false})
	for i := 0; i < 20; i++ {
		key := randomKey(t)
		pub, err := key.PubKey()
		require.NoError(t, err)
		hash := randomHash(t)

		compact, recoveryID, err := signer.SignRecoverable(hash, key)
		require.NoError(t, err)
		sig, err := ParseCompactSignature(compact)
		require.NoError(t, err)

		recovered, err := RecoverPublicKey(sig, recoveryID, hash)
		require.NoError(t, err)
		require.True(t, recovered.IsEqual(pub))

		// The other parity yields a different key.
		flipped, err := RecoverPublicKey(sig, recoveryID^1, hash)
		if err == nil {
			require.False(t, flipped.IsEqual(pub))
		}

		// decred agrees on the recovered key.
		withCode := append([]byte{27 + 4 + recoveryID}, compact...)
		decredPub, compressed, err := ecdsa.RecoverCompact(withCode, hash)
		require.NoError(t, err)
		require.True(t, compressed)
		require.Equal(t, decredPub.SerializeCompressed(), recovered.SerializeCompressed())
	}
}

func TestRecoverPublicKeyInvalid(t *testing.T) {
	hash := randomHash(t)
	sig := mustSignature(t, big.NewInt(1), big.NewInt(1))

	_, err := RecoverPublicKey(sig, 4, hash)
	require.True(t, errors.Is(err, ErrInvalidRecoveryID), "got %v", err)

	_, err = RecoverPublicKey(sig, 0, nil)
	require.True(t, errors.Is(err, ErrInvalidMessageHash), "got %v", err)

	_, err = RecoverPublicKey(nil, 0, hash)
	require.True(t, errors.Is(err, ErrInvalidSignatureComponent), "got %v", err)

	// r + N is larger than P for any r above P - N.
	overflow := mustSignature(t, new(big.Int).Sub(curve.N, big.NewInt(1)), big.NewInt(1))
	_, err = RecoverPublicKey(overflow, 2, hash)
	require.True(t, errors.Is(err, ErrInvalidRecoveryID), "got %v", err)

	// x = 5 is not the x coordinate of any curve point (5^3 + 7 = 132 is a
	// non-residue modulo P).
	_, err = RecoverPublicKey(mustSignature(t, big.NewInt(5), big.NewInt(1)), 0, hash)
	require.True(t, errors.Is(err, ErrInvalidRecoveryID), "got %v", err)
}
