package remoteSigner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures independently of the backend that produced them.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidPublicKey covers malformed or wrong-length public key input
	KindInvalidPublicKey
	// KindInvalidPrivateKey covers malformed signing-key material
	KindInvalidPrivateKey
	// KindSerialization covers request/response encoding failures
	KindSerialization
	// KindRemoteAPI covers transport failures and non-success responses
	KindRemoteAPI
	// KindSigningFailed covers terminal custodian failures and unusable signatures
	KindSigningFailed
	// KindPollingTimeout means the attempt budget ran out before the job reached a
	// terminal state. The job may still complete remotely; the outcome is unknown.
	KindPollingTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidPublicKey:
		return "invalid public key"
	case KindInvalidPrivateKey:
		return "invalid private key"
	case KindSerialization:
		return "serialization error"
	case KindRemoteAPI:
		return "remote api error"
	case KindSigningFailed:
		return "signing failed"
	case KindPollingTimeout:
		return "polling timeout"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every remote signer.
// Message must never carry key material, credentials or raw response bodies.
type Error struct {
	Kind    ErrorKind
	Message string

	// StatusCode is the HTTP status for KindRemoteAPI errors, 0 when not applicable
	StatusCode int
	// Code is the provider error code (e.g. AccessDeniedException) when one is known
	Code string

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error of the given kind wrapping a cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewRemoteAPIError creates a KindRemoteAPI error carrying an HTTP status.
func NewRemoteAPIError(statusCode int, format string, args ...any) *Error {
	return &Error{Kind: KindRemoteAPI, Message: fmt.Sprintf(format, args...), StatusCode: statusCode}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
