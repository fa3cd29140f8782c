package fireblocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Layr-Labs/remote-signer-go/pkg/authToken"
	"github.com/Layr-Labs/remote-signer-go/pkg/config"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/types"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// Client talks to the Fireblocks API before the signer's public key is known.
// It can fetch the public key and probe availability; Init turns it into a Signer.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	tokens     *authToken.Builder

	baseUrl         string
	vaultAccountId  string
	assetId         string
	pollInterval    time.Duration
	maxPollAttempts int
	useProgramCall  bool
	unsafeDebug     bool
}

// NewClient validates cfg and parses the API signing key. It performs no I/O.
func NewClient(cfg *config.FireblocksSignerConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	resolved := *cfg
	resolved.ApplyDefaults()
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fireblocks config: %w", err)
	}

	tokens, err := authToken.NewBuilder(resolved.ApiKey, []byte(resolved.PrivateKeyPEM))
	if err != nil {
		return nil, err
	}

	if resolved.UnsafeDebug {
		logger.Sugar().Warnw("Fireblocks unsafe debug logging is enabled; response bodies will be logged")
	}

	return &Client{
		logger:          logger,
		httpClient:      &http.Client{Timeout: resolved.RequestTimeout},
		tokens:          tokens,
		baseUrl:         strings.TrimRight(resolved.ApiBaseUrl, "/"),
		vaultAccountId:  resolved.VaultAccountId,
		assetId:         resolved.AssetId,
		pollInterval:    resolved.PollInterval,
		maxPollAttempts: resolved.MaxPollAttempts,
		useProgramCall:  resolved.UseProgramCall,
		unsafeDebug:     resolved.UnsafeDebug,
	}, nil
}

// SetHttpClient replaces the HTTP client, e.g. to add a custom transport.
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) String() string {
	return fmt.Sprintf("fireblocks.Client{baseUrl: %s, vaultAccountId: %s, assetId: %s, useProgramCall: %t}",
		c.baseUrl, c.vaultAccountId, c.assetId, c.useProgramCall)
}

// Init fetches the vault's public key and returns a Signer bound to it.
func (c *Client) Init(ctx context.Context) (*Signer, error) {
	pubkey, err := c.FetchPublicKey(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Sugar().Infow("Initialized Fireblocks signer",
		"vaultAccountId", c.vaultAccountId,
		"assetId", c.assetId,
		"pubkey", pubkey.String(),
		"useProgramCall", c.useProgramCall,
	)
	return &Signer{client: c, pubkey: pubkey}, nil
}

// FetchPublicKey returns the first address of the vault account for the configured asset.
func (c *Client) FetchPublicKey(ctx context.Context) (types.PublicKey, error) {
	uri := fmt.Sprintf("/v1/vault/accounts/%s/%s/addresses_paginated",
		url.PathEscape(c.vaultAccountId), url.PathEscape(c.assetId))

	var res VaultAddressesResponse
	if err := c.doRequest(ctx, http.MethodGet, uri, nil, &res); err != nil {
		return types.PublicKey{}, err
	}
	if len(res.Addresses) == 0 {
		return types.PublicKey{}, remoteSigner.NewError(remoteSigner.KindInvalidPublicKey,
			"vault account %s has no %s address", c.vaultAccountId, c.assetId)
	}

	pubkey, err := types.PublicKeyFromBase58(res.Addresses[0].Address)
	if err != nil {
		return types.PublicKey{}, remoteSigner.WrapError(remoteSigner.KindInvalidPublicKey, err,
			"vault account %s returned an invalid address", c.vaultAccountId)
	}
	return pubkey, nil
}

// IsAvailable probes the vault account. Any transport error or non-2xx status means unavailable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	uri := fmt.Sprintf("/v1/vault/accounts/%s", url.PathEscape(c.vaultAccountId))
	if err := c.doRequest(ctx, http.MethodGet, uri, nil, nil); err != nil {
		c.logger.Sugar().Warnw("Fireblocks availability check failed",
			"vaultAccountId", c.vaultAccountId,
			"error", err,
		)
		return false
	}
	return true
}

// doRequest sends an authenticated request and decodes a 2xx JSON response into out.
// Non-2xx responses become remote API errors carrying only the status code.
func (c *Client) doRequest(ctx context.Context, method string, uri string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return remoteSigner.WrapError(remoteSigner.KindSerialization, err, "failed to encode %s request", uri)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+uri, bytes.NewReader(payload))
	if err != nil {
		return remoteSigner.WrapError(remoteSigner.KindRemoteAPI, err, "failed to create %s %s request", method, uri)
	}
	if err := c.tokens.Authorize(req, uri, payload); err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return remoteSigner.WrapError(remoteSigner.KindRemoteAPI, err, "fireblocks %s %s failed", method, uri)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return remoteSigner.WrapError(remoteSigner.KindRemoteAPI, err, "failed to read %s %s response", method, uri)
	}

	if c.unsafeDebug {
		c.logger.Sugar().Debugw("Fireblocks response",
			"method", method,
			"uri", uri,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Sugar().Errorw("Fireblocks API error",
			"method", method,
			"uri", uri,
			"status", resp.StatusCode,
		)
		return remoteSigner.NewRemoteAPIError(resp.StatusCode, "fireblocks %s %s returned an error", method, uri)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return remoteSigner.WrapError(remoteSigner.KindSerialization, err, "failed to decode %s %s response", method, uri)
	}
	return nil
}
