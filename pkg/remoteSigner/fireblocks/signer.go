package fireblocks

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/types"
)

// Signer is an initialized Fireblocks signer. Its public key is fixed at Init.
type Signer struct {
	client *Client
	pubkey types.PublicKey
}

var _ remoteSigner.IRemoteSigner = (*Signer)(nil)

func (s *Signer) Pubkey() types.PublicKey {
	return s.pubkey
}

func (s *Signer) String() string {
	return s.client.String()
}

// SignMessage always uses RAW mode, regardless of UseProgramCall.
func (s *Signer) SignMessage(ctx context.Context, message []byte) (types.Signature, error) {
	return s.requestSignature(ctx, &CreateTransactionRequest{
		AssetId:   s.client.assetId,
		Operation: Operation_Raw,
		Source:    s.source(),
		ExtraParameters: &ExtraParameters{
			RawMessageData: &RawMessageData{
				Messages: []RawMessage{{Content: hex.EncodeToString(message)}},
			},
		},
	})
}

func (s *Signer) SignTransaction(ctx context.Context, tx remoteSigner.Transaction) (*remoteSigner.SignedTransaction, error) {
	sign := remoteSigner.SignMessageData(s.SignMessage)
	if s.client.useProgramCall {
		sign = s.signProgramCall
	}
	return remoteSigner.SignAndSerialize(ctx, tx, s.pubkey, sign)
}

func (s *Signer) SignPartialTransaction(ctx context.Context, tx remoteSigner.Transaction) (*remoteSigner.SignedTransaction, error) {
	return s.SignTransaction(ctx, tx)
}

func (s *Signer) IsAvailable(ctx context.Context) bool {
	return s.client.IsAvailable(ctx)
}

// signProgramCall submits the whole serialized transaction; Fireblocks signs and broadcasts it.
func (s *Signer) signProgramCall(ctx context.Context, tx remoteSigner.Transaction) (types.Signature, error) {
	serialized, err := tx.Serialize()
	if err != nil {
		return types.Signature{}, remoteSigner.WrapError(remoteSigner.KindSerialization, err, "failed to serialize transaction")
	}
	return s.requestSignature(ctx, &CreateTransactionRequest{
		AssetId:   s.client.assetId,
		Operation: Operation_ProgramCall,
		Source:    s.source(),
		ExtraParameters: &ExtraParameters{
			ProgramCallData: base64.StdEncoding.EncodeToString(serialized),
		},
	})
}

func (s *Signer) source() TransactionSource {
	return TransactionSource{Type: PeerType_VaultAccount, Id: s.client.vaultAccountId}
}

func (s *Signer) requestSignature(ctx context.Context, req *CreateTransactionRequest) (types.Signature, error) {
	created, err := s.client.createTransaction(ctx, req)
	if err != nil {
		return types.Signature{}, err
	}
	s.client.logger.Sugar().Infow("Created Fireblocks signing transaction",
		"txId", created.Id,
		"status", string(created.Status),
		"operation", string(req.Operation),
	)

	res, err := s.client.pollTransaction(ctx, created.Id)
	if err != nil {
		return types.Signature{}, err
	}
	return extractSignature(res)
}

type signatureSource int

const (
	signatureSource_None signatureSource = iota
	signatureSource_SignedMessage
	signatureSource_TxHash
)

// encodedSignature is where a completed job carries its signature and in which encoding.
type encodedSignature struct {
	source signatureSource
	value  string
}

func locateSignature(res *TransactionResponse) encodedSignature {
	if len(res.SignedMessages) > 0 {
		return encodedSignature{source: signatureSource_SignedMessage, value: res.SignedMessages[0].Signature.FullSig}
	}
	if res.TxHash != "" {
		return encodedSignature{source: signatureSource_TxHash, value: res.TxHash}
	}
	return encodedSignature{source: signatureSource_None}
}

// extractSignature decodes the hex fullSig of the first signed message, falling back to
// the base-58 txHash set by PROGRAM_CALL jobs.
func extractSignature(res *TransactionResponse) (types.Signature, error) {
	encoded := locateSignature(res)

	var (
		sig types.Signature
		err error
	)
	switch encoded.source {
	case signatureSource_SignedMessage:
		sig, err = types.SignatureFromHex(encoded.value)
	case signatureSource_TxHash:
		sig, err = types.SignatureFromBase58(encoded.value)
	default:
		return types.Signature{}, remoteSigner.NewError(remoteSigner.KindSigningFailed, "no signature found in transaction %s", res.Id)
	}
	if err == nil {
		return sig, nil
	}

	var lengthErr *types.LengthError
	if errors.As(err, &lengthErr) {
		return types.Signature{}, remoteSigner.WrapError(remoteSigner.KindSigningFailed, err, "transaction %s returned an unusable signature", res.Id)
	}
	return types.Signature{}, remoteSigner.WrapError(remoteSigner.KindSerialization, err, "failed to decode signature of transaction %s", res.Id)
}
