package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/remote-signer-go/internal/aws"
	"github.com/Layr-Labs/remote-signer-go/pkg/config"
	"github.com/Layr-Labs/remote-signer-go/pkg/logger"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/signerFactory"
	"github.com/Layr-Labs/remote-signer-go/pkg/transaction"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "remote-signer",
		Usage: "Sign messages and transactions with a key held by AWS KMS or Fireblocks",
		Description: `A client for signing with Ed25519 keys that never leave a remote custodian.

Backends:
- aws-kms: synchronous signing with an ECC_NIST_EDWARDS25519 KMS key
- fireblocks: asynchronous signing through the Fireblocks transaction API`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Signing backend: aws-kms or fireblocks",
				EnvVars: []string{config.EnvRemoteSignerBackend},
				Value:   string(config.Backend_AWSKMS),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvRemoteSignerDebug},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall deadline for the command, 0 for none",
			},

			&cli.StringFlag{
				Name:    "kms-key-id",
				Usage:   "KMS key ARN, id or alias",
				EnvVars: []string{config.EnvAWSKMSKeyID},
			},
			&cli.StringFlag{
				Name:    "kms-signer-pubkey",
				Usage:   "Base-58 public key of the KMS key",
				EnvVars: []string{config.EnvAWSKMSSignerPubkey},
			},
			&cli.StringFlag{
				Name:    "kms-region",
				Usage:   "AWS region, defaults to the credential chain's region",
				EnvVars: []string{config.EnvAWSKMSRegion},
			},
			&cli.StringFlag{
				Name:    "kms-endpoint",
				Usage:   "KMS endpoint override, e.g. http://localhost:4566 for LocalStack",
				EnvVars: []string{config.EnvAWSKMSEndpoint},
			},
			&cli.BoolFlag{
				Name:    "kms-verify-public-key",
				Usage:   "Check the configured public key against KMS at startup",
				EnvVars: []string{config.EnvAWSKMSVerifyPublicKey},
			},

			&cli.StringFlag{
				Name:    "fireblocks-api-key",
				Usage:   "Fireblocks API key",
				EnvVars: []string{config.EnvFireblocksAPIKey},
			},
			&cli.StringFlag{
				Name:    "fireblocks-private-key-pem",
				Usage:   "PEM encoded RSA key used to sign Fireblocks API tokens",
				EnvVars: []string{config.EnvFireblocksPrivateKeyPEM},
			},
			&cli.StringFlag{
				Name:  "fireblocks-private-key-file",
				Usage: "Path to the PEM encoded RSA API signing key, used when --fireblocks-private-key-pem is empty",
			},
			&cli.StringFlag{
				Name:    "fireblocks-vault-account-id",
				Usage:   "Fireblocks vault account holding the signing key",
				EnvVars: []string{config.EnvFireblocksVaultAccountID},
			},
			&cli.StringFlag{
				Name:    "fireblocks-asset-id",
				Usage:   "Fireblocks asset id, derived from --network when empty",
				EnvVars: []string{config.EnvFireblocksAssetID},
			},
			&cli.StringFlag{
				Name:  "network",
				Usage: "Network used to pick the asset id: mainnet, devnet or testnet",
				Value: string(config.Network_Mainnet),
			},
			&cli.StringFlag{
				Name:    "fireblocks-api-base-url",
				Usage:   "Fireblocks API base URL",
				EnvVars: []string{config.EnvFireblocksAPIBaseURL},
				Value:   config.DefaultFireblocksAPIBaseURL,
			},
			&cli.DurationFlag{
				Name:    "fireblocks-poll-interval",
				Usage:   "Delay between transaction status polls",
				EnvVars: []string{config.EnvFireblocksPollInterval},
				Value:   config.DefaultPollInterval,
			},
			&cli.IntFlag{
				Name:    "fireblocks-max-poll-attempts",
				Usage:   "Maximum number of status polls per signature",
				EnvVars: []string{config.EnvFireblocksMaxPollAttempts},
				Value:   config.DefaultMaxPollAttempts,
			},
			&cli.BoolFlag{
				Name:    "fireblocks-use-program-call",
				Usage:   "Submit transactions as PROGRAM_CALL so Fireblocks signs and broadcasts them",
				EnvVars: []string{config.EnvFireblocksUseProgramCall},
			},
			&cli.BoolFlag{
				Name:    "fireblocks-unsafe-debug",
				Usage:   "Log Fireblocks response bodies at debug level. Never enable in production",
				EnvVars: []string{config.EnvFireblocksUnsafeDebug},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "pubkey",
				Usage:  "Print the signer's base-58 public key",
				Action: pubkeyCommand,
			},
			{
				Name:  "sign-message",
				Usage: "Sign raw bytes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "message-hex",
						Usage:    "Message to sign, hex encoded",
						Required: true,
					},
				},
				Action: signMessageCommand,
			},
			{
				Name:  "sign-transaction",
				Usage: "Sign a serialized transaction and print the signed transaction",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "transaction-base64",
						Usage:    "Serialized transaction, base-64 encoded",
						Required: true,
					},
				},
				Action: signTransactionCommand,
			},
			{
				Name:   "health",
				Usage:  "Check that the custodian and key are reachable",
				Action: healthCommand,
			},
			{
				Name:   "caller-identity",
				Usage:  "Print the AWS principal the credential chain resolves to",
				Action: callerIdentityCommand,
			},
		},
	}
}

// signerConfigFromContext maps global flags onto a SignerConfig for the selected backend.
func signerConfigFromContext(c *cli.Context) (*config.SignerConfig, error) {
	cfg := &config.SignerConfig{
		Backend: config.Backend(c.String("backend")),
		Debug:   c.Bool("debug"),
	}

	switch cfg.Backend {
	case config.Backend_AWSKMS:
		cfg.AWSKMS = &config.KMSSignerConfig{
			KeyId:           c.String("kms-key-id"),
			PublicKey:       c.String("kms-signer-pubkey"),
			Region:          c.String("kms-region"),
			Endpoint:        c.String("kms-endpoint"),
			VerifyPublicKey: c.Bool("kms-verify-public-key"),
		}
	case config.Backend_Fireblocks:
		privateKeyPEM := c.String("fireblocks-private-key-pem")
		if privateKeyPEM == "" && c.String("fireblocks-private-key-file") != "" {
			keyBytes, err := os.ReadFile(c.String("fireblocks-private-key-file"))
			if err != nil {
				return nil, errors.Wrap(err, "failed to read fireblocks private key file")
			}
			privateKeyPEM = string(keyBytes)
		}

		assetId := c.String("fireblocks-asset-id")
		if assetId == "" {
			assetId = config.GetAssetIdForNetwork(config.Network(c.String("network")))
		}

		cfg.Fireblocks = &config.FireblocksSignerConfig{
			ApiKey:          c.String("fireblocks-api-key"),
			PrivateKeyPEM:   privateKeyPEM,
			VaultAccountId:  c.String("fireblocks-vault-account-id"),
			AssetId:         assetId,
			ApiBaseUrl:      c.String("fireblocks-api-base-url"),
			PollInterval:    c.Duration("fireblocks-poll-interval"),
			MaxPollAttempts: c.Int("fireblocks-max-poll-attempts"),
			UseProgramCall:  c.Bool("fireblocks-use-program-call"),
			UnsafeDebug:     c.Bool("fireblocks-unsafe-debug"),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	if timeout := c.Duration("timeout"); timeout > 0 {
		return context.WithTimeout(c.Context, timeout)
	}
	return context.WithCancel(c.Context)
}

func createSigner(ctx context.Context, c *cli.Context) (remoteSigner.IRemoteSigner, *zap.Logger, error) {
	cfg, err := signerConfigFromContext(c)
	if err != nil {
		return nil, nil, err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create logger")
	}

	signer, err := signerFactory.NewRemoteSigner(ctx, cfg, l)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create signer")
	}
	return signer, l, nil
}

func pubkeyCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	signer, _, err := createSigner(ctx, c)
	if err != nil {
		return err
	}
	fmt.Println(signer.Pubkey().String())
	return nil
}

func signMessageCommand(c *cli.Context) error {
	message, err := hex.DecodeString(strings.TrimPrefix(c.String("message-hex"), "0x"))
	if err != nil {
		return errors.Wrap(err, "message-hex is not valid hex")
	}

	ctx, cancel := commandContext(c)
	defer cancel()

	signer, l, err := createSigner(ctx, c)
	if err != nil {
		return err
	}

	start := time.Now()
	sig, err := signer.SignMessage(ctx, message)
	if err != nil {
		return errors.Wrap(err, "failed to sign message")
	}
	l.Sugar().Infow("Signed message",
		"pubkey", signer.Pubkey().String(),
		"duration", time.Since(start),
	)
	if !signer.Pubkey().Verify(message, sig) {
		return cli.Exit("signature does not verify against the signer public key", 1)
	}

	fmt.Printf("Signature (base58): %s\n", sig.String())
	fmt.Printf("Signature (hex):    %s\n", sig.Hex())
	return nil
}

func signTransactionCommand(c *cli.Context) error {
	tx, err := transaction.DeserializeBase64(c.String("transaction-base64"))
	if err != nil {
		return errors.Wrap(err, "failed to decode transaction")
	}

	ctx, cancel := commandContext(c)
	defer cancel()

	signer, l, err := createSigner(ctx, c)
	if err != nil {
		return err
	}

	start := time.Now()
	signed, err := signer.SignTransaction(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "failed to sign transaction")
	}
	l.Sugar().Infow("Signed transaction",
		"pubkey", signer.Pubkey().String(),
		"fullySigned", tx.IsFullySigned(),
		"duration", time.Since(start),
	)

	fmt.Printf("Signature:          %s\n", signed.Signature.String())
	fmt.Printf("Signed transaction: %s\n", signed.Base64())
	return nil
}

func healthCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	signer, _, err := createSigner(ctx, c)
	if err != nil {
		return err
	}
	if !signer.IsAvailable(ctx) {
		return cli.Exit(fmt.Sprintf("signer %s is unavailable", signer.Pubkey()), 1)
	}
	fmt.Printf("signer %s is available\n", signer.Pubkey())
	return nil
}

func callerIdentityCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	awsCfg, err := aws.LoadAWSConfig(ctx, c.String("kms-region"))
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	identity, err := aws.GetCallerIdentity(ctx, awsCfg)
	if err != nil {
		return errors.Wrap(err, "failed to get caller identity")
	}

	fmt.Printf("Account: %s\n", derefString(identity.Account))
	fmt.Printf("Arn:     %s\n", derefString(identity.Arn))
	fmt.Printf("UserId:  %s\n", derefString(identity.UserId))
	fmt.Printf("Region:  %s\n", awsCfg.Region)
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
