package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of an access token. The subject carries the
// user's email; userId, nome and perfil are custom claims the SPA decodes
// client-side to derive the current user.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId,omitempty"`
	Nome   string `json:"nome,omitempty"`
	Perfil Perfil `json:"perfil,omitempty"`
}

// Email returns the subject claim.
func (c *AccessClaims) Email() string {
	return c.RegisteredClaims.Subject
}

// HasPerfil checks if the token carries a specific role.
func (c *AccessClaims) HasPerfil(p Perfil) bool {
	return c.Perfil == p
}

// IsAtLeast checks if the token's role is at least the minimum required role.
func (c *AccessClaims) IsAtLeast(min Perfil) bool {
	return PerfilAtLeast(c.Perfil, min)
}

// Expires returns the expiration time, zero when absent.
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time, zero when absent.
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
