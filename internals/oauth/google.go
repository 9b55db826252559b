package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/shivang-26/techCommunity-website/internals/config"
)

// Claims is the identity assertion extracted from the provider after a
// successful code exchange.
type Claims struct {
	Email   string
	Name    string
	Picture string
	Subject string
}

// Exchanger swaps an authorization code for verified identity claims. Tests
// substitute a fake so no network round-trip is needed.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*Claims, error)
}

// GoogleExchanger verifies identity via Google's OAuth2 code flow.
type GoogleExchanger struct {
	Config *oauth2.Config
}

// NewGoogleExchanger initializes the config once at startup.
func NewGoogleExchanger() *GoogleExchanger {
	return &GoogleExchanger{
		Config: &oauth2.Config{
			ClientID:     config.GetEnv("GOOGLE_CLIENT_ID"),
			ClientSecret: config.GetEnv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  config.GetEnvAsStr("GOOGLE_REDIRECT_URL", "postmessage"),
			Endpoint:     google.Endpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		},
	}
}

// Exchange trades the authorization code for tokens, then validates the ID
// token against our client ID rather than trusting the access token alone.
func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (*Claims, error) {
	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in provider response")
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, g.Config.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate id_token: %w", err)
	}

	claims := &Claims{Subject: payload.Subject}
	if v, ok := payload.Claims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		claims.Name = v
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		claims.Picture = v
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("provider returned no email claim")
	}
	return claims, nil
}
