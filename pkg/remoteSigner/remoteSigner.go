package remoteSigner

import (
	"context"
	"encoding/base64"

	"github.com/Layr-Labs/remote-signer-go/pkg/types"
)

// IRemoteSigner is the contract shared by every custodian backend.
type IRemoteSigner interface {
	// Pubkey returns the signer's public key. It performs no I/O.
	Pubkey() types.PublicKey

	// SignMessage signs arbitrary bytes with the remote key.
	SignMessage(ctx context.Context, message []byte) (types.Signature, error)

	// SignTransaction signs tx, attaches the signature for Pubkey and re-serializes it.
	SignTransaction(ctx context.Context, tx Transaction) (*SignedTransaction, error)

	// SignPartialTransaction is identical to SignTransaction at this layer; whether
	// other signers still have to sign is owned by the transaction.
	SignPartialTransaction(ctx context.Context, tx Transaction) (*SignedTransaction, error)

	// IsAvailable reports whether the custodian and key are reachable. It never errors.
	IsAvailable(ctx context.Context) bool
}

// Transaction is the collaborator that knows how to build, sign and encode a transaction.
type Transaction interface {
	// MessageData returns the bytes to be signed.
	MessageData() ([]byte, error)

	// AddSignature places sig in the slot belonging to pubkey, replacing any previous value.
	AddSignature(pubkey types.PublicKey, sig types.Signature) error

	// Serialize returns the full wire form of the transaction, signatures included.
	Serialize() ([]byte, error)
}

// SignedTransaction is the result of signing a transaction.
type SignedTransaction struct {
	Serialized []byte
	Signature  types.Signature
}

// Base64 returns the serialized transaction in standard base-64, ready for broadcast.
func (st *SignedTransaction) Base64() string {
	return base64.StdEncoding.EncodeToString(st.Serialized)
}

// SignFunc produces a signature for a transaction.
type SignFunc func(ctx context.Context, tx Transaction) (types.Signature, error)

// SignMessageData returns a SignFunc that signs tx.MessageData() with signMessage.
func SignMessageData(signMessage func(ctx context.Context, message []byte) (types.Signature, error)) SignFunc {
	return func(ctx context.Context, tx Transaction) (types.Signature, error) {
		message, err := tx.MessageData()
		if err != nil {
			return types.Signature{}, WrapError(KindSerialization, err, "failed to compute transaction message")
		}
		return signMessage(ctx, message)
	}
}

// SignAndSerialize obtains a signature with sign, attaches it for pubkey and serializes tx.
func SignAndSerialize(ctx context.Context, tx Transaction, pubkey types.PublicKey, sign SignFunc) (*SignedTransaction, error) {
	if tx == nil {
		return nil, NewError(KindSerialization, "transaction cannot be nil")
	}

	sig, err := sign(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.AddSignature(pubkey, sig); err != nil {
		return nil, WrapError(KindSerialization, err, "failed to attach signature for %s", pubkey)
	}

	serialized, err := tx.Serialize()
	if err != nil {
		return nil, WrapError(KindSerialization, err, "failed to serialize transaction")
	}

	return &SignedTransaction{
		Serialized: serialized,
		Signature:  sig,
	}, nil
}
