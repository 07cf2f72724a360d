package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/uniuri"
)

// stateLen is the length of the CSRF state value.
const stateLen = 32

// Identity is what the identity provider tells us about the user.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// OIDCProvider handles OIDC authentication.
type OIDCProvider struct {
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// NewOIDCProvider discovers the provider and builds the OAuth2 client.
func NewOIDCProvider(ctx context.Context, cfg config.OIDC) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}

	issuer := cfg.IssuerURL
	if issuer == "" {
		issuer = "https://accounts.google.com"
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() string {
	return uniuri.NewLen(stateLen)
}

// GetAuthURL returns the OIDC authorization URL with state token.
func (p *OIDCProvider) GetAuthURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// HandleCallback exchanges the code and returns the verified identity.
func (p *OIDCProvider) HandleCallback(ctx context.Context, code string) (*Identity, error) {
	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if claims.Email == "" {
		return nil, ErrNoEmailClaim
	}

	return &Identity{
		Subject: claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
