package client

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
)

// Identity is the user record carried inside an access token payload.
type Identity struct {
	ID     int64       `json:"id"`
	Nome   string      `json:"nome"`
	Email  string      `json:"email"`
	Perfil auth.Perfil `json:"perfil"`
}

// IsAdmin reports whether the identity holds the ADMIN perfil.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Perfil == auth.PerfilAdmin
}

// ErrTokenDecode covers every shape failure: wrong segment count, bad
// base64, bad JSON, missing or invalid required fields. Callers treat any
// decode failure as "no session".
var ErrTokenDecode = errors.New("Token de acesso ilegível", errors.CategoryAuth).
	WithTextCode("TOKEN_DECODE").
	WithCode(errors.CodeUnauthorized)

// tokenPayload mirrors the claims the backend mints. Every field is
// optional until validated; the payload is untrusted input.
type tokenPayload struct {
	Sub    string      `json:"sub"`
	UserID *int64      `json:"userId"`
	ID     *int64      `json:"id"`
	Nome   string      `json:"nome"`
	Perfil auth.Perfil `json:"perfil"`
}

// DecodeAccessToken extracts the identity from the token's payload
// segment without verifying the signature. Signature verification is the
// backend's job; the client trusts transport integrity.
func DecodeAccessToken(raw string) (*Identity, error) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, ErrTokenDecode.WithMetadata(map[string]any{"segments": len(segments)})
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segments[1], "="))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "Token de acesso ilegível").
			WithTextCode("TOKEN_DECODE")
	}

	payload := tokenPayload{}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "Token de acesso ilegível").
			WithTextCode("TOKEN_DECODE")
	}

	id := payload.UserID
	if id == nil {
		id = payload.ID
	}

	switch {
	case id == nil || *id <= 0:
		return nil, ErrTokenDecode.WithMetadata(map[string]any{"campo": "userId"})
	case payload.Nome == "":
		return nil, ErrTokenDecode.WithMetadata(map[string]any{"campo": "nome"})
	case payload.Sub == "":
		return nil, ErrTokenDecode.WithMetadata(map[string]any{"campo": "sub"})
	case !auth.IsValidPerfil(payload.Perfil):
		return nil, ErrTokenDecode.WithMetadata(map[string]any{"campo": "perfil", "valor": payload.Perfil})
	}

	return &Identity{
		ID:     *id,
		Nome:   payload.Nome,
		Email:  payload.Sub,
		Perfil: payload.Perfil,
	}, nil
}
