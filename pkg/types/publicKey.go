package types

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKey is a 32 byte Ed25519 public key identifying a remote signer.
type PublicKey [PublicKeyLength]byte

// PublicKeyFromBytes accepts exactly PublicKeyLength bytes.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeyLength {
		return pk, &LengthError{What: "public key", Got: len(b), Want: PublicKeyLength}
	}
	copy(pk[:], b)
	return pk, nil
}

// PublicKeyFromBase58 parses the textual form of a public key.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	if s == "" {
		return PublicKey{}, fmt.Errorf("%w: empty string", ErrInvalidBase58)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidBase58, err)
	}
	return PublicKeyFromBytes(b)
}

func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// Verify checks an Ed25519 signature over message against this key.
func (pk PublicKey) Verify(message []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pk[:]), message, sig[:])
}
