// Package ecsign produces deterministic ECDSA signatures over secp256k1.
//
// Nonces are derived from the private key and the message hash with the
// HMAC-DRBG of RFC 6979, so signing the same hash with the same key always
// yields the same signature unless extra entropy is requested.
//
// # Quick Start
//
//	key, err := ecsign.PrivKeyFromHex("...64 hex characters...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hash := sha256.Sum256([]byte("hello"))
//	der, err := ecsign.Sign(hash[:], key, nil)
//
// # Options
//
// SignOptions selects low-S normalization, the DER or compact encoding and
// extra entropy.  A Signer carries options together with a logger and the
// random source used for extra entropy:
//
//	signer := ecsign.NewSigner().
//	    WithOptions(ecsign.SignOptions{Canonical: true, DER: false}).
//	    WithLogger(logger)
//
//	compact, recoveryID, err := signer.SignRecoverable(hash[:], key)
//
// The recovery id allows RecoverPublicKey to compute the signing key from the
// signature and hash alone.
//
// # Performance
//
// Multiplication by the generator uses a windowed NAF table.  The default
// window of 1 keeps memory low; SetBaseWindowSize(8) trades a larger cached
// table for faster signing.
package ecsign
