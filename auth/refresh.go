package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultRefreshTTL matches the original system's 7-day refresh window.
const DefaultRefreshTTL = 7 * 24 * time.Hour

// RefreshService issues, validates and rotates opaque refresh tokens.
type RefreshService struct {
	store  RefreshStore
	ttl    time.Duration
	now    func() time.Time
	logger Logger
}

// NewRefreshService creates a RefreshService with the given TTL. A zero TTL
// falls back to DefaultRefreshTTL.
func NewRefreshService(store RefreshStore, ttl time.Duration) *RefreshService {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &RefreshService{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: defLogger{},
	}
}

// WithLogger sets the service logger.
func (s *RefreshService) WithLogger(logger Logger) *RefreshService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *RefreshService) WithClock(clock func() time.Time) *RefreshService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Issue creates a fresh token for the user.
func (s *RefreshService) Issue(ctx context.Context, usuarioID int64) (*RefreshToken, error) {
	now := s.now()
	token := &RefreshToken{
		Value:     fmt.Sprintf("%s-%d", uuid.NewString(), now.UnixMilli()),
		UsuarioID: usuarioID,
		ExpiresAt: now.Add(s.ttl),
	}
	return s.store.Create(ctx, token)
}

// Validate resolves a token value into a live token. Unknown, revoked and
// expired values are all rejected.
func (s *RefreshService) Validate(ctx context.Context, value string) (*RefreshToken, error) {
	token, err := s.store.FindByValue(ctx, value)
	if err != nil {
		return nil, err
	}

	if token.Revoked {
		return nil, ErrRefreshRevoked
	}

	if token.ExpiresAt.Before(s.now()) {
		return nil, ErrRefreshExpired
	}

	return token, nil
}

// Rotate revokes the old value and issues a replacement for the same user.
func (s *RefreshService) Rotate(ctx context.Context, oldValue string, usuarioID int64) (*RefreshToken, error) {
	if err := s.store.MarkRevoked(ctx, oldValue); err != nil {
		return nil, err
	}
	return s.Issue(ctx, usuarioID)
}

// Revoke marks a single token value as revoked.
func (s *RefreshService) Revoke(ctx context.Context, value string) error {
	return s.store.MarkRevoked(ctx, value)
}

// RevokeAll revokes every live token for the user.
func (s *RefreshService) RevokeAll(ctx context.Context, usuarioID int64) error {
	return s.store.RevokeAllForUsuario(ctx, usuarioID)
}

// PurgeExpired deletes tokens past their expiration.
func (s *RefreshService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("purged %d expired refresh tokens", n)
	}
	return n, nil
}
