package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// Usuario is the user model.
type Usuario struct {
	bun.BaseModel `bun:"table:usuarios,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Nome          string     `bun:"nome,notnull" json:"nome,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	SenhaHash     string     `bun:"senha_hash,notnull" json:"-"`
	Perfil        Perfil     `bun:"perfil,notnull" json:"perfil,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// RefreshToken is an opaque, rotating credential tied to one user. The
// value itself is never a JWT; clients only ever see it inside an httpOnly
// cookie.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rft"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Value         string     `bun:"value,notnull,unique" json:"value,omitempty"`
	UsuarioID     int64      `bun:"usuario_id,notnull" json:"usuario_id,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Revoked       bool       `bun:"revoked,notnull,default:false" json:"revoked,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
