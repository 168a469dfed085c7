package auth

import (
	"context"
	"time"
)

// Token is the result of a successful login.
type Token struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Authenticator checks the admin password and issues tokens.
type Authenticator struct {
	passwordHash string
	verifier     PasswordVerifier
	tokens       JWTService
}

// NewAuthenticator returns an Authenticator for the admin password hash.
func NewAuthenticator(passwordHash string, verifier PasswordVerifier, tokens JWTService) *Authenticator {
	return &Authenticator{passwordHash: passwordHash, verifier: verifier, tokens: tokens}
}

// Login returns a fresh token when password matches the configured hash.
func (a *Authenticator) Login(ctx context.Context, password string) (*Token, error) {
	if a.passwordHash == "" {
		return nil, ErrNotConfigured
	}
	if password == "" || a.verifier.Compare(a.passwordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := a.tokens.GenerateToken(ctx, AdminSubject)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, ExpiresAt: expiresAt}, nil
}
