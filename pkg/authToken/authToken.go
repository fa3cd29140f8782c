package authToken

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net/http"
	"time"

	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	// TokenValidity is the exp - iat window of every token
	TokenValidity = 30 * time.Second

	HeaderAPIKey        = "X-API-Key"
	HeaderAuthorization = "Authorization"

	ClaimURI      = "uri"
	ClaimNonce    = "nonce"
	ClaimBodyHash = "bodyHash"
)

// Builder creates a signed bearer token for every custodian request.
type Builder struct {
	apiKey     string
	signingKey jwk.Key
	now        func() time.Time
}

type Option func(*Builder)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder parses the PEM encoded RSA private key. The key is never included in errors.
func NewBuilder(apiKey string, privateKeyPEM []byte, opts ...Option) (*Builder, error) {
	if apiKey == "" {
		return nil, remoteSigner.NewError(remoteSigner.KindInvalidPrivateKey, "api key cannot be empty")
	}

	privateKey, err := parseRSAPrivateKey(privateKeyPEM)
	if err != nil {
		return nil, remoteSigner.NewError(remoteSigner.KindInvalidPrivateKey, "failed to parse RSA private key: %s", err.Error())
	}

	key, err := jwk.Import(privateKey)
	if err != nil {
		return nil, remoteSigner.NewError(remoteSigner.KindInvalidPrivateKey, "failed to import RSA private key")
	}

	b := &Builder{
		apiKey:     apiKey,
		signingKey: key,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// parseRSAPrivateKey accepts PKCS#1 and PKCS#8 encodings.
// Returned errors describe the failure without echoing key bytes.
func parseRSAPrivateKey(privateKeyPEM []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if privkey, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return privkey, nil
	}

	privkeyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("unsupported private key encoding")
	}
	privkey, ok := privkeyInterface.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return privkey, nil
}

// BodyHash returns the hex SHA-256 of a request body.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Build signs a token bound to uri and body. body is empty for GET requests.
func (b *Builder) Build(uri string, body []byte) (string, error) {
	issuedAt := b.now().Truncate(time.Second)

	token, err := jwt.NewBuilder().
		Subject(b.apiKey).
		IssuedAt(issuedAt).
		Expiration(issuedAt.Add(TokenValidity)).
		Claim(ClaimURI, uri).
		Claim(ClaimNonce, uuid.New().String()).
		Claim(ClaimBodyHash, BodyHash(body)).
		Build()
	if err != nil {
		return "", remoteSigner.WrapError(remoteSigner.KindSigningFailed, err, "failed to build auth token claims")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), b.signingKey))
	if err != nil {
		return "", remoteSigner.NewError(remoteSigner.KindSigningFailed, "failed to sign auth token")
	}
	return string(signed), nil
}

// Authorize builds a token for uri and body and sets the API key and bearer headers on req.
// uri is the API path relative to the base URL, query included.
func (b *Builder) Authorize(req *http.Request, uri string, body []byte) error {
	token, err := b.Build(uri, body)
	if err != nil {
		return err
	}
	req.Header.Set(HeaderAPIKey, b.apiKey)
	req.Header.Set(HeaderAuthorization, "Bearer "+token)
	return nil
}
