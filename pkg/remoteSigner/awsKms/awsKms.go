package awsKms

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"errors"
	"fmt"

	internalAws "github.com/Layr-Labs/remote-signer-go/internal/aws"
	"github.com/Layr-Labs/remote-signer-go/pkg/config"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmsTypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// KMSClient is the subset of the KMS API the signer calls. *kms.Client satisfies it.
type KMSClient interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

var _ KMSClient = (*kms.Client)(nil)

// KMSSigner signs with an Ed25519 key held in AWS KMS.
type KMSSigner struct {
	logger *zap.Logger
	client KMSClient
	keyId  string
	region string
	pubkey types.PublicKey
}

var _ remoteSigner.IRemoteSigner = (*KMSSigner)(nil)

// NewKMSSigner validates cfg and the public key before touching the network,
// then loads AWS credentials from the default chain.
func NewKMSSigner(ctx context.Context, cfg *config.KMSSignerConfig, logger *zap.Logger) (*KMSSigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pubkey, err := types.PublicKeyFromBase58(cfg.PublicKey)
	if err != nil {
		return nil, remoteSigner.WrapError(remoteSigner.KindInvalidPublicKey, err, "invalid signer public key")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aws kms config: %w", err)
	}

	awsCfg, err := internalAws.LoadAWSConfig(ctx, cfg.Region)
	if err != nil {
		return nil, remoteSigner.WrapError(remoteSigner.KindRemoteAPI, err, "failed to load AWS config")
	}

	s := NewKMSSignerWithClient(internalAws.NewKMSClient(awsCfg, cfg.Endpoint), cfg.KeyId, pubkey, logger)
	s.region = awsCfg.Region

	if cfg.VerifyPublicKey {
		if err := s.VerifyPublicKey(ctx); err != nil {
			return nil, err
		}
	}

	logger.Sugar().Infow("Created AWS KMS signer",
		"keyId", s.keyId,
		"region", s.region,
		"pubkey", s.pubkey.String(),
	)
	return s, nil
}

// NewKMSSignerWithClient builds a signer around an already configured client.
func NewKMSSignerWithClient(client KMSClient, keyId string, pubkey types.PublicKey, logger *zap.Logger) *KMSSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KMSSigner{
		logger: logger,
		client: client,
		keyId:  keyId,
		pubkey: pubkey,
	}
}

func (s *KMSSigner) KeyId() string {
	return s.keyId
}

func (s *KMSSigner) Region() string {
	return s.region
}

func (s *KMSSigner) String() string {
	return fmt.Sprintf("KMSSigner{keyId: %s, region: %s, pubkey: %s}", s.keyId, s.region, s.pubkey)
}

func (s *KMSSigner) Pubkey() types.PublicKey {
	return s.pubkey
}

func (s *KMSSigner) SignMessage(ctx context.Context, message []byte) (types.Signature, error) {
	out, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyId),
		Message:          message,
		MessageType:      kmsTypes.MessageTypeRaw,
		SigningAlgorithm: kmsTypes.SigningAlgorithmSpecEd25519Sha512,
	})
	if err != nil {
		s.logger.Sugar().Errorw("KMS sign request failed", "keyId", s.keyId, "error", err)
		return types.Signature{}, newRemoteAPIError(err, "kms sign failed for key %s", s.keyId)
	}

	if out == nil || out.Signature == nil {
		return types.Signature{}, remoteSigner.NewError(remoteSigner.KindSigningFailed, "kms returned no signature")
	}

	sig, err := types.SignatureFromBytes(out.Signature)
	if err != nil {
		return types.Signature{}, remoteSigner.NewError(remoteSigner.KindSigningFailed,
			"kms returned a %d-byte signature, expected %d", len(out.Signature), types.SignatureLength)
	}

	s.logger.Sugar().Debugw("KMS signed message", "keyId", s.keyId, "messageLength", len(message))
	return sig, nil
}

func (s *KMSSigner) SignTransaction(ctx context.Context, tx remoteSigner.Transaction) (*remoteSigner.SignedTransaction, error) {
	return remoteSigner.SignAndSerialize(ctx, tx, s.pubkey, remoteSigner.SignMessageData(s.SignMessage))
}

func (s *KMSSigner) SignPartialTransaction(ctx context.Context, tx remoteSigner.Transaction) (*remoteSigner.SignedTransaction, error) {
	return s.SignTransaction(ctx, tx)
}

// IsAvailable reports whether the key exists and is an Ed25519 key.
func (s *KMSSigner) IsAvailable(ctx context.Context) bool {
	out, err := s.client.DescribeKey(ctx, &kms.DescribeKeyInput{
		KeyId: aws.String(s.keyId),
	})
	if err != nil {
		s.logger.Sugar().Warnw("KMS describe key failed", "keyId", s.keyId, "error", err)
		return false
	}
	if out == nil || out.KeyMetadata == nil {
		return false
	}
	if out.KeyMetadata.KeySpec != kmsTypes.KeySpecEccNistEdwards25519 {
		s.logger.Sugar().Warnw("KMS key has unexpected key spec",
			"keyId", s.keyId,
			"keySpec", string(out.KeyMetadata.KeySpec),
		)
		return false
	}
	return true
}

// VerifyPublicKey checks that the key KMS reports matches the configured public key.
func (s *KMSSigner) VerifyPublicKey(ctx context.Context) error {
	out, err := s.client.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(s.keyId),
	})
	if err != nil {
		return newRemoteAPIError(err, "kms get public key failed for key %s", s.keyId)
	}
	if out == nil || len(out.PublicKey) == 0 {
		return remoteSigner.NewError(remoteSigner.KindInvalidPublicKey, "kms returned no public key for key %s", s.keyId)
	}

	parsed, err := x509.ParsePKIXPublicKey(out.PublicKey)
	if err != nil {
		return remoteSigner.WrapError(remoteSigner.KindInvalidPublicKey, err, "failed to parse kms public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return remoteSigner.NewError(remoteSigner.KindInvalidPublicKey, "kms key %s is not an ed25519 key", s.keyId)
	}
	if !bytes.Equal(edKey, s.pubkey.Bytes()) {
		return remoteSigner.NewError(remoteSigner.KindInvalidPublicKey,
			"kms key %s does not match configured public key %s", s.keyId, s.pubkey)
	}
	return nil
}

// newRemoteAPIError carries the HTTP status and AWS error code when the SDK exposes them.
func newRemoteAPIError(err error, format string, args ...any) *remoteSigner.Error {
	rerr := remoteSigner.WrapError(remoteSigner.KindRemoteAPI, err, format, args...)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		rerr.Code = apiErr.ErrorCode()
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		rerr.StatusCode = respErr.HTTPStatusCode()
	}
	return rerr
}
