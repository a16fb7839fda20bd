// Package ecerr defines the error kinds shared by the signing engine packages.
package ecerr

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidPrivateKey is returned when a private key has the wrong
	// length, encoding, or is not in the range [1, N-1].
	ErrInvalidPrivateKey = ErrorKind("ErrInvalidPrivateKey")

	// ErrInvalidMessageHash is returned when the message hash to sign is
	// missing.
	ErrInvalidMessageHash = ErrorKind("ErrInvalidMessageHash")

	// ErrInvalidScalar is returned when a scalar used for point
	// multiplication is not in the range [1, N-1].
	ErrInvalidScalar = ErrorKind("ErrInvalidScalar")

	// ErrInvalidSignatureComponent is returned when R or S of a signature is
	// not in the range (0, N).
	ErrInvalidSignatureComponent = ErrorKind("ErrInvalidSignatureComponent")

	// ErrNotInvertible is returned when a value has no modular inverse.
	ErrNotInvertible = ErrorKind("ErrNotInvertible")

	// ErrInconsistentProjection is returned when a supplied Z inverse does
	// not actually invert the Z coordinate of a Jacobian point.
	ErrInconsistentProjection = ErrorKind("ErrInconsistentProjection")

	// ErrEndomorphismSplitFailed is returned when the GLV decomposition of a
	// scalar yields a half that does not fit in 128 bits.
	ErrEndomorphismSplitFailed = ErrorKind("ErrEndomorphismSplitFailed")

	// ErrNonceAttemptsExhausted is returned when the nonce generator has
	// produced the maximum number of candidates without one being accepted.
	ErrNonceAttemptsExhausted = ErrorKind("ErrNonceAttemptsExhausted")

	// ErrInvalidEncoding is returned for malformed hex or DER input.
	ErrInvalidEncoding = ErrorKind("ErrInvalidEncoding")

	// ErrInvalidExtraEntropyLength is returned when extra entropy supplied
	// for nonce generation is not exactly 32 bytes.
	ErrInvalidExtraEntropyLength = ErrorKind("ErrInvalidExtraEntropyLength")

	// ErrInvalidWindowSize is returned when a precomputation window width is
	// not a power of two between 1 and 16.
	ErrInvalidWindowSize = ErrorKind("ErrInvalidWindowSize")

	// ErrInvalidPublicKey is returned when a serialized public key can't be
	// parsed or a recovered key is the point at infinity.
	ErrInvalidPublicKey = ErrorKind("ErrInvalidPublicKey")

	// ErrInvalidRecoveryID is returned when a public key recovery id is not
	// in [0, 3] or does not describe a valid point.
	ErrInvalidRecoveryID = ErrorKind("ErrInvalidRecoveryID")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to the signing engine.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New creates an Error given a set of arguments.
func New(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
