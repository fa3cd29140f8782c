package config

import (
	"fmt"
	"net/url"
	"time"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names read by the CLI and integration tests
const (
	EnvRemoteSignerBackend = "REMOTE_SIGNER_BACKEND"
	EnvRemoteSignerDebug   = "REMOTE_SIGNER_DEBUG"

	EnvAWSKMSKeyID           = "AWS_KMS_KEY_ID"
	EnvAWSKMSSignerPubkey    = "AWS_KMS_SIGNER_PUBKEY"
	EnvAWSKMSRegion          = "AWS_KMS_REGION"
	EnvAWSKMSEndpoint        = "AWS_KMS_ENDPOINT"
	EnvAWSKMSVerifyPublicKey = "AWS_KMS_VERIFY_PUBLIC_KEY"

	EnvFireblocksAPIKey          = "FIREBLOCKS_API_KEY"
	EnvFireblocksPrivateKeyPEM   = "FIREBLOCKS_PRIVATE_KEY_PEM"
	EnvFireblocksVaultAccountID  = "FIREBLOCKS_VAULT_ACCOUNT_ID"
	EnvFireblocksAssetID         = "FIREBLOCKS_ASSET_ID"
	EnvFireblocksAPIBaseURL      = "FIREBLOCKS_API_BASE_URL"
	EnvFireblocksPollInterval    = "FIREBLOCKS_POLL_INTERVAL"
	EnvFireblocksMaxPollAttempts = "FIREBLOCKS_MAX_POLL_ATTEMPTS"
	EnvFireblocksUseProgramCall  = "FIREBLOCKS_USE_PROGRAM_CALL"
	EnvFireblocksUnsafeDebug     = "FIREBLOCKS_UNSAFE_DEBUG"
)

type Backend string

func (b Backend) String() string {
	return string(b)
}

const (
	Backend_AWSKMS     Backend = "aws-kms"
	Backend_Fireblocks Backend = "fireblocks"
)

var SupportedBackends = []Backend{Backend_AWSKMS, Backend_Fireblocks}

type Network string

const (
	Network_Mainnet Network = "mainnet"
	Network_Devnet  Network = "devnet"
	Network_Testnet Network = "testnet"
)

// Custodian asset identifiers
const (
	AssetId_Solana        = "SOL"
	AssetId_SolanaTestnet = "SOL_TEST"
)

var NetworkToAssetId = map[Network]string{
	Network_Mainnet: AssetId_Solana,
	Network_Devnet:  AssetId_SolanaTestnet,
	Network_Testnet: AssetId_SolanaTestnet,
}

// GetAssetIdForNetwork returns the custodian asset for a network, defaulting to mainnet
func GetAssetIdForNetwork(network Network) string {
	if assetId, ok := NetworkToAssetId[network]; ok {
		return assetId
	}
	return AssetId_Solana
}

const (
	DefaultFireblocksAPIBaseURL = "https://api.fireblocks.io"
	DefaultPollInterval         = 1000 * time.Millisecond
	DefaultMaxPollAttempts      = 300
	DefaultRequestTimeout       = 30 * time.Second
)

// KMSSignerConfig configures the AWS KMS backend
type KMSSignerConfig struct {
	// KeyId is a key ARN, key UUID or alias (alias/...)
	KeyId string `json:"keyId" yaml:"keyId"`
	// PublicKey is the base-58 public key the KMS key signs for
	PublicKey string `json:"publicKey" yaml:"publicKey"`
	Region    string `json:"region" yaml:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`

	// VerifyPublicKey cross-checks PublicKey against the key KMS reports when the signer is created
	VerifyPublicKey bool `json:"verifyPublicKey" yaml:"verifyPublicKey"`
}

func (c *KMSSignerConfig) Validate() error {
	var allErrors field.ErrorList
	if c.KeyId == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("keyId"), "keyId is required"))
	}
	if c.PublicKey == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("publicKey"), "publicKey is required"))
	}
	if c.Endpoint != "" {
		if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("endpoint"), c.Endpoint, "endpoint must be a valid URL"))
		}
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// FireblocksSignerConfig configures the Fireblocks backend
type FireblocksSignerConfig struct {
	ApiKey         string `json:"apiKey" yaml:"apiKey"`
	PrivateKeyPEM  string `json:"privateKeyPem" yaml:"privateKeyPem"`
	VaultAccountId string `json:"vaultAccountId" yaml:"vaultAccountId"`
	AssetId        string `json:"assetId" yaml:"assetId"`
	ApiBaseUrl     string `json:"apiBaseUrl" yaml:"apiBaseUrl"`

	PollInterval    time.Duration `json:"pollInterval" yaml:"pollInterval"`
	MaxPollAttempts int           `json:"maxPollAttempts" yaml:"maxPollAttempts"`
	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"requestTimeout"`

	// UseProgramCall selects auto-broadcast mode: Fireblocks signs and broadcasts the
	// serialized transaction. When false, raw message bytes are signed and the caller broadcasts.
	UseProgramCall bool `json:"useProgramCall" yaml:"useProgramCall"`

	// UnsafeDebug logs custodian response bodies at debug level. Never enable in production.
	UnsafeDebug bool `json:"unsafeDebug" yaml:"unsafeDebug"`
}

// ApplyDefaults fills unset optional fields
func (c *FireblocksSignerConfig) ApplyDefaults() {
	if c.AssetId == "" {
		c.AssetId = AssetId_Solana
	}
	if c.ApiBaseUrl == "" {
		c.ApiBaseUrl = DefaultFireblocksAPIBaseURL
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollAttempts == 0 {
		c.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

func (c *FireblocksSignerConfig) Validate() error {
	var allErrors field.ErrorList
	if c.ApiKey == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("apiKey"), "apiKey is required"))
	}
	if c.PrivateKeyPEM == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("privateKeyPem"), "privateKeyPem is required"))
	}
	if c.VaultAccountId == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("vaultAccountId"), "vaultAccountId is required"))
	}
	if c.ApiBaseUrl != "" {
		if _, err := url.ParseRequestURI(c.ApiBaseUrl); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("apiBaseUrl"), c.ApiBaseUrl, "apiBaseUrl must be a valid URL"))
		}
	}
	if c.PollInterval < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("pollInterval"), c.PollInterval.String(), "pollInterval cannot be negative"))
	}
	if c.MaxPollAttempts < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("maxPollAttempts"), c.MaxPollAttempts, "maxPollAttempts cannot be negative"))
	}
	if c.RequestTimeout < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("requestTimeout"), c.RequestTimeout.String(), "requestTimeout cannot be negative"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// String omits the API key and private key
func (c FireblocksSignerConfig) String() string {
	return fmt.Sprintf("FireblocksSignerConfig{VaultAccountId:%s AssetId:%s ApiBaseUrl:%s PollInterval:%s MaxPollAttempts:%d UseProgramCall:%t}",
		c.VaultAccountId, c.AssetId, c.ApiBaseUrl, c.PollInterval, c.MaxPollAttempts, c.UseProgramCall)
}

// SignerConfig selects and configures one backend
type SignerConfig struct {
	Backend    Backend                 `json:"backend" yaml:"backend"`
	Debug      bool                    `json:"debug" yaml:"debug"`
	AWSKMS     *KMSSignerConfig        `json:"awsKms,omitempty" yaml:"awsKms,omitempty"`
	Fireblocks *FireblocksSignerConfig `json:"fireblocks,omitempty" yaml:"fireblocks,omitempty"`
}

func (c *SignerConfig) Validate() error {
	var allErrors field.ErrorList
	switch c.Backend {
	case Backend_AWSKMS:
		if c.AWSKMS == nil {
			allErrors = append(allErrors, field.Required(field.NewPath("awsKms"), "awsKms config is required for the aws-kms backend"))
		} else if err := c.AWSKMS.Validate(); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("awsKms"), "", err.Error()))
		}
	case Backend_Fireblocks:
		if c.Fireblocks == nil {
			allErrors = append(allErrors, field.Required(field.NewPath("fireblocks"), "fireblocks config is required for the fireblocks backend"))
		} else if err := c.Fireblocks.Validate(); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("fireblocks"), "", err.Error()))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("backend"), c.Backend, SupportedBackends))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
