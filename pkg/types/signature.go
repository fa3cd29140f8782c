package types

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	// SignatureLength is the size of an Ed25519 signature in bytes
	SignatureLength = 64

	// PublicKeyLength is the size of an Ed25519 public key in bytes
	PublicKeyLength = 32
)

var (
	// ErrInvalidHex is returned when a textual value is not valid hex
	ErrInvalidHex = errors.New("invalid hex encoding")

	// ErrInvalidBase58 is returned when a textual value is not valid base-58
	ErrInvalidBase58 = errors.New("invalid base58 encoding")
)

// LengthError reports a decoded value whose size does not match the fixed size of its type.
type LengthError struct {
	What string
	Got  int
	Want int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid %s length: expected %d bytes, got %d", e.What, e.Want, e.Got)
}

// Signature is a fixed-size 64 byte signature produced by a remote key.
type Signature [SignatureLength]byte

// SignatureFromBytes accepts exactly SignatureLength bytes. Inputs are never truncated or padded.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, &LengthError{What: "signature", Got: len(b), Want: SignatureLength}
	}
	copy(sig[:], b)
	return sig, nil
}

// SignatureFromHex decodes a hex string (no 0x prefix) into a Signature.
func SignatureFromHex(s string) (Signature, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return SignatureFromBytes(b)
}

// SignatureFromBase58 decodes a base-58 string into a Signature.
func SignatureFromBase58(s string) (Signature, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidBase58, err)
	}
	return SignatureFromBytes(b)
}

func (s Signature) Bytes() []byte {
	return s[:]
}

func (s Signature) Hex() string {
	return hex.EncodeToString(s[:])
}

// String returns the base-58 form, the usual textual form of a transaction signature.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}
