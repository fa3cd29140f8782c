package signerFactory

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Layr-Labs/remote-signer-go/pkg/config"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner/fireblocks"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func Test_NewRemoteSigner_InvalidConfig(t *testing.T) {
	_, err := NewRemoteSigner(context.Background(), nil, zaptest.NewLogger(t))
	require.Error(t, err)

	_, err = NewRemoteSigner(context.Background(), &config.SignerConfig{Backend: "hsm"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func Test_NewRemoteSigner_AWSKMSInvalidPublicKey(t *testing.T) {
	signer, err := NewRemoteSigner(context.Background(), &config.SignerConfig{
		Backend: config.Backend_AWSKMS,
		AWSKMS: &config.KMSSignerConfig{
			KeyId:     "alias/test-key",
			PublicKey: "0OIl",
		},
	}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, signer)
	assert.True(t, remoteSigner.IsKind(err, remoteSigner.KindInvalidPublicKey))
}

func Test_NewRemoteSigner_Fireblocks(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/vault/accounts/0/SOL_TEST/addresses_paginated" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fireblocks.VaultAddressesResponse{
			Addresses: []fireblocks.VaultAddress{{Address: base58.Encode(pub)}},
		})
	}))
	defer srv.Close()

	cfg := &config.SignerConfig{
		Backend: config.Backend_Fireblocks,
		Fireblocks: &config.FireblocksSignerConfig{
			ApiKey:         "api-key",
			PrivateKeyPEM:  string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rsaKey)})),
			VaultAccountId: "0",
			AssetId:        config.GetAssetIdForNetwork(config.Network_Devnet),
			ApiBaseUrl:     srv.URL,
		},
	}

	signer, err := NewRemoteSigner(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), signer.Pubkey().Bytes())

	cfg.Fireblocks.VaultAccountId = "missing"
	signer, err = NewRemoteSigner(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, signer)
	assert.True(t, remoteSigner.IsKind(err, remoteSigner.KindRemoteAPI))
}
