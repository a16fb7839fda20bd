package ecsign

import "github.com/mahdiidarabi/ecsign/internal/ecerr"

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind = ecerr.ErrorKind

// Error identifies an error returned by the signing engine.  The underlying
// ErrorKind is available through errors.Is and errors.As.
type Error = ecerr.Error

// Error kinds returned by this package.
const (
	ErrInvalidPrivateKey         = ecerr.ErrInvalidPrivateKey
	ErrInvalidMessageHash        = ecerr.ErrInvalidMessageHash
	ErrInvalidScalar             = ecerr.ErrInvalidScalar
	ErrInvalidSignatureComponent = ecerr.ErrInvalidSignatureComponent
	ErrNotInvertible             = ecerr.ErrNotInvertible
	ErrInconsistentProjection    = ecerr.ErrInconsistentProjection
	ErrEndomorphismSplitFailed   = ecerr.ErrEndomorphismSplitFailed
	ErrNonceAttemptsExhausted    = ecerr.ErrNonceAttemptsExhausted
	ErrInvalidEncoding           = ecerr.ErrInvalidEncoding
	ErrInvalidExtraEntropyLength = ecerr.ErrInvalidExtraEntropyLength
	ErrInvalidWindowSize         = ecerr.ErrInvalidWindowSize
	ErrInvalidPublicKey          = ecerr.ErrInvalidPublicKey
	ErrInvalidRecoveryID         = ecerr.ErrInvalidRecoveryID
)

func makeError(kind ErrorKind, desc string) Error {
	return ecerr.New(kind, desc)
}
