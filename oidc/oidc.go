// Package oidckit wires relying-party flows for the linking core: it builds
// authorization URLs with PKCE, exchanges callback codes, and normalizes the
// verified claims into a core.IdpResponse. The popup/redirect mechanics
// themselves stay with the host application.
package oidckit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"github.com/PaulFidika/linkkit/core"
)

// RPConfig holds the relying-party settings for one identity provider.
type RPConfig struct {
	Issuer       string // discovery URL
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	// ExtraAuthParams are appended to the authorization request
	// (e.g. response_mode for Apple's form_post).
	ExtraAuthParams map[string]string
}

// Defaults returns issuer and scope presets for the built-in OIDC providers.
// Providers without a discovery endpoint (e.g. GitHub) are not preset; supply
// a full RPConfig for those.
func Defaults(provider string) (RPConfig, bool) {
	switch provider {
	case core.ProviderGoogle:
		return RPConfig{
			Issuer: "https://accounts.google.com",
			Scopes: []string{"openid", "email", "profile"},
		}, true
	case core.ProviderMicrosoft:
		return RPConfig{
			Issuer: "https://login.microsoftonline.com/common/v2.0",
			Scopes: []string{"openid", "email", "profile"},
		}, true
	case core.ProviderApple:
		return RPConfig{
			Issuer:          "https://appleid.apple.com",
			Scopes:          []string{"openid", "email", "name"},
			ExtraAuthParams: map[string]string{"response_mode": "form_post"},
		}, true
	case core.ProviderFacebook:
		return RPConfig{
			Issuer: "https://www.facebook.com",
			Scopes: []string{"openid", "email", "public_profile"},
		}, true
	default:
		return RPConfig{}, false
	}
}

// PendingSignIn is the state persisted between the two legs of a redirect
// flow, keyed by the OAuth state value.
type PendingSignIn struct {
	Provider  string    `json:"provider"`
	Verifier  string    `json:"verifier"`
	Nonce     string    `json:"nonce"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingStore persists pending sign-ins. Take is read-and-delete: one leg,
// one use, so a replayed callback finds nothing.
type PendingStore interface {
	Put(ctx context.Context, state string, p PendingSignIn, ttl time.Duration) error
	Take(ctx context.Context, state string) (PendingSignIn, bool, error)
	Delete(ctx context.Context, state string) error
}

// GeneratePKCE returns a verifier and its S256 challenge for the auth
// request.
func GeneratePKCE() (verifier, challenge string, err error) {
	v := make([]byte, 32)
	if _, err = rand.Read(v); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(v)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

// NewState returns a random URL-safe state value.
func NewState() (string, error) { return randomToken() }

// NewNonce returns a random nonce for ID-token binding.
func NewNonce() (string, error) { return randomToken() }

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base58.Encode(b), nil
}
