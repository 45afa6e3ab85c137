package auth

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface shared by the auth components.
// Implementations are expected to be safe for concurrent use.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() int64
	Nome() string
	Email() string
	Perfil() Perfil
}

// IdentityProvider resolves identities from the backing store.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, senha string) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
	FindIdentityByID(ctx context.Context, id int64) (Identity, error)
}

// TokenService mints and validates access tokens.
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (*AccessClaims, error)
}

// RefreshStore persists opaque refresh tokens.
type RefreshStore interface {
	Create(ctx context.Context, token *RefreshToken) (*RefreshToken, error)
	FindByValue(ctx context.Context, value string) (*RefreshToken, error)
	MarkRevoked(ctx context.Context, value string) error
	RevokeAllForUsuario(ctx context.Context, usuarioID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DefaultLogger returns the fallback stdout logger used when no Logger
// is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
