package auth

import (
	"context"
)

// TokenPair is what a successful login or refresh hands to the HTTP layer:
// a short-lived access token plus the opaque refresh credential.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Auther orchestrates identity verification, access-token minting and
// refresh-token rotation.
type Auther struct {
	provider IdentityProvider
	tokens   TokenService
	refresh  *RefreshService
	logger   Logger
}

// NewAuthenticator returns a new Auther.
func NewAuthenticator(provider IdentityProvider, tokens TokenService, refresh *RefreshService) *Auther {
	return &Auther{
		provider: provider,
		tokens:   tokens,
		refresh:  refresh,
		logger:   defLogger{},
	}
}

// WithLogger sets the authenticator logger.
func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this authenticator.
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies credentials and mints a fresh token pair.
func (s *Auther) Login(ctx context.Context, email, senha string) (TokenPair, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, senha)
	if err != nil {
		s.logger.Warn("login verify identity error: %v", err)
		return TokenPair{}, nil, err
	}

	access, err := s.tokens.Generate(identity)
	if err != nil {
		s.logger.Error("login token generation error: %v", err)
		return TokenPair{}, nil, err
	}

	refresh, err := s.refresh.Issue(ctx, identity.ID())
	if err != nil {
		s.logger.Error("login refresh issue error: %v", err)
		return TokenPair{}, nil, err
	}

	s.logger.Info("login ok for usuario %d", identity.ID())
	return TokenPair{AccessToken: access, RefreshToken: refresh.Value}, identity, nil
}

// Refresh exchanges a live refresh token for a new pair, rotating the
// refresh credential in the process.
func (s *Auther) Refresh(ctx context.Context, refreshValue string) (TokenPair, Identity, error) {
	token, err := s.refresh.Validate(ctx, refreshValue)
	if err != nil {
		s.logger.Warn("refresh validation error: %v", err)
		return TokenPair{}, nil, err
	}

	identity, err := s.provider.FindIdentityByID(ctx, token.UsuarioID)
	if err != nil {
		s.logger.Error("refresh identity lookup error: %v", err)
		return TokenPair{}, nil, err
	}

	access, err := s.tokens.Generate(identity)
	if err != nil {
		s.logger.Error("refresh token generation error: %v", err)
		return TokenPair{}, nil, err
	}

	rotated, err := s.refresh.Rotate(ctx, refreshValue, identity.ID())
	if err != nil {
		s.logger.Error("refresh rotation error: %v", err)
		return TokenPair{}, nil, err
	}

	return TokenPair{AccessToken: access, RefreshToken: rotated.Value}, identity, nil
}

// Logout revokes the refresh credential. It is best-effort: an unknown or
// already-revoked value is not an error worth surfacing.
func (s *Auther) Logout(ctx context.Context, refreshValue string) {
	if refreshValue == "" {
		return
	}
	if err := s.refresh.Revoke(ctx, refreshValue); err != nil {
		s.logger.Debug("logout revoke error (ignored): %v", err)
	}
}

// SessionFromToken validates an access token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (*AccessClaims, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.Warn("session from token validation failed: %v", err)
		return nil, err
	}
	return claims, nil
}
