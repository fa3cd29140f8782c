package signerFactory

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/remote-signer-go/pkg/config"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner/awsKms"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner/fireblocks"
	"go.uber.org/zap"
)

// NewRemoteSigner builds the backend selected by cfg.Backend.
// The Fireblocks backend is initialized, so its public key is fetched here.
func NewRemoteSigner(ctx context.Context, cfg *config.SignerConfig, logger *zap.Logger) (remoteSigner.IRemoteSigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signer config: %w", err)
	}

	backendLogger := logger.With(zap.String("backend", cfg.Backend.String()))

	switch cfg.Backend {
	case config.Backend_AWSKMS:
		signer, err := awsKms.NewKMSSigner(ctx, cfg.AWSKMS, backendLogger)
		if err != nil {
			return nil, err
		}
		return signer, nil
	case config.Backend_Fireblocks:
		client, err := fireblocks.NewClient(cfg.Fireblocks, backendLogger)
		if err != nil {
			return nil, err
		}
		signer, err := client.Init(ctx)
		if err != nil {
			return nil, err
		}
		return signer, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
