package oidckit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zitadel/oidc/v2/pkg/client/rp"
	"github.com/zitadel/oidc/v2/pkg/oidc"
	"golang.org/x/oauth2"

	"github.com/PaulFidika/linkkit/core"
)

// ErrProviderNotConfigured is returned for provider ids the registry does not
// know about.
var ErrProviderNotConfigured = errors.New("provider not configured")

// Registry maps core provider ids to relying parties. Relying parties are
// constructed from discovery on first use and cached.
type Registry struct {
	configs map[string]RPConfig

	mu      sync.Mutex
	parties map[string]rp.RelyingParty
}

// NewRegistry builds a registry from per-provider configs. Missing issuers
// and scopes are filled from Defaults when available.
func NewRegistry(configs map[string]RPConfig) *Registry {
	merged := make(map[string]RPConfig, len(configs))
	for provider, cfg := range configs {
		if preset, ok := Defaults(provider); ok {
			if cfg.Issuer == "" {
				cfg.Issuer = preset.Issuer
			}
			if len(cfg.Scopes) == 0 {
				cfg.Scopes = preset.Scopes
			}
			if cfg.ExtraAuthParams == nil {
				cfg.ExtraAuthParams = preset.ExtraAuthParams
			}
		}
		merged[provider] = cfg
	}
	return &Registry{configs: merged, parties: make(map[string]rp.RelyingParty)}
}

// Config returns the merged configuration for a provider id.
func (g *Registry) Config(provider string) (RPConfig, bool) {
	cfg, ok := g.configs[provider]
	return cfg, ok
}

// Begin returns the authorization URL for provider. The caller persists
// state, verifier and nonce (see PendingStore) and redirects the user.
func (g *Registry) Begin(ctx context.Context, provider, state, nonce, challenge string) (string, error) {
	cfg, party, err := g.party(ctx, provider)
	if err != nil {
		return "", err
	}

	opts := []rp.AuthURLOpt{
		rp.AuthURLOpt(rp.WithURLParam("nonce", nonce)),
	}
	// Apple's web flow rejects PKCE; everyone else gets S256.
	if provider != core.ProviderApple && challenge != "" {
		opts = append(opts,
			rp.WithCodeChallenge(challenge),
			rp.AuthURLOpt(rp.WithURLParam("code_challenge_method", "S256")),
		)
	}
	for k, v := range cfg.ExtraAuthParams {
		opts = append(opts, rp.AuthURLOpt(rp.WithURLParam(k, v)))
	}
	return rp.AuthURL(state, party, opts...), nil
}

// Exchange trades a callback code for verified claims and returns them as an
// IdpResponse: provider id, email, the raw ID token as primary token, the
// access token as secondary.
func (g *Registry) Exchange(ctx context.Context, provider, code, verifier, nonce string) (*core.IdpResponse, error) {
	_, party, err := g.party(ctx, provider)
	if err != nil {
		return nil, err
	}

	// The relying party's built-in verifier does not know the per-request
	// nonce, so exchange the code directly and verify the ID token with a
	// nonce-aware verifier.
	var opts []oauth2.AuthCodeOption
	if provider != core.ProviderApple && verifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", verifier))
	}
	token, err := party.OAuthConfig().Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed for %s: %w", provider, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("no id_token in %s token response", provider)
	}

	nonceVerifier := rp.NewIDTokenVerifier(
		party.IDTokenVerifier().Issuer(),
		party.IDTokenVerifier().ClientID(),
		party.IDTokenVerifier().KeySet(),
		rp.WithNonce(func(context.Context) string { return nonce }),
	)
	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, rawIDToken, nonceVerifier)
	if err != nil {
		return nil, fmt.Errorf("id_token verification failed for %s: %w", provider, err)
	}

	respOpts := []core.IdpResponseOption{core.WithToken(rawIDToken)}
	if token.AccessToken != "" {
		respOpts = append(respOpts, core.WithSecret(token.AccessToken))
	}
	if name := claims.UserInfoProfile.Name; name != "" {
		respOpts = append(respOpts, core.WithDisplayName(name))
	}
	return core.NewIdpResponse(provider, claims.UserInfoEmail.Email, respOpts...), nil
}

func (g *Registry) party(ctx context.Context, provider string) (RPConfig, rp.RelyingParty, error) {
	cfg, ok := g.configs[provider]
	if !ok {
		return RPConfig{}, nil, fmt.Errorf("%s: %w", provider, ErrProviderNotConfigured)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if party, ok := g.parties[provider]; ok {
		return cfg, party, nil
	}
	party, err := rp.NewRelyingPartyOIDC(cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, cfg.Scopes)
	if err != nil {
		return RPConfig{}, nil, fmt.Errorf("discover %s: %w", provider, err)
	}
	g.parties[provider] = party
	return cfg, party, nil
}
