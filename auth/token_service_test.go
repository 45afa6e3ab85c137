package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/auth"
)

func testIdentity() auth.Identity {
	return auth.NewIdentityFromUsuario(&auth.Usuario{
		ID:     42,
		Nome:   "Maria",
		Email:  "maria@ong.com",
		Perfil: auth.PerfilAdmin,
	})
}

func TestTokenServiceGenerateValidate(t *testing.T) {
	service := auth.NewTokenService([]byte("segredo-de-teste"), 30*time.Minute, "estoque", nil)

	t.Run("round trip preserves the identity claims", func(t *testing.T) {
		token, err := service.Generate(testIdentity())
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := service.Validate(token)
		require.NoError(t, err)

		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "Maria", claims.Nome)
		assert.Equal(t, "maria@ong.com", claims.Email())
		assert.Equal(t, auth.PerfilAdmin, claims.Perfil)
		assert.Equal(t, "estoque", claims.Issuer)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.Expires(), 5*time.Second)
	})

	t.Run("nil identity is rejected", func(t *testing.T) {
		_, err := service.Generate(nil)
		require.Error(t, err)
	})

	t.Run("expired token maps to the expiry error", func(t *testing.T) {
		short := auth.NewTokenService([]byte("segredo-de-teste"), -time.Minute, "estoque", nil)
		token, err := short.Generate(testIdentity())
		require.NoError(t, err)

		_, err = short.Validate(token)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrTokenExpired))
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := service.Validate("isto.nao.e-um-jwt")
		require.Error(t, err)

		var rich *errors.Error
		require.True(t, errors.As(err, &rich))
		assert.Equal(t, "TOKEN_MALFORMED", rich.TextCode)
	})

	t.Run("token signed with another key fails", func(t *testing.T) {
		other := auth.NewTokenService([]byte("outro-segredo"), 30*time.Minute, "estoque", nil)
		token, err := other.Generate(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)
	})

	t.Run("token with the wrong issuer fails", func(t *testing.T) {
		other := auth.NewTokenService([]byte("segredo-de-teste"), 30*time.Minute, "outro-sistema", nil)
		token, err := other.Generate(testIdentity())
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)
	})

	t.Run("non-HMAC algorithm is refused", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "estoque",
				Subject:   "maria@ong.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID: 42,
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)
	})
}

func TestAccessClaims(t *testing.T) {
	claims := &auth.AccessClaims{Perfil: auth.PerfilVoluntario}

	t.Run("HasPerfil is an exact match", func(t *testing.T) {
		assert.True(t, claims.HasPerfil(auth.PerfilVoluntario))
		assert.False(t, claims.HasPerfil(auth.PerfilAdmin))
	})

	t.Run("IsAtLeast follows the hierarchy", func(t *testing.T) {
		assert.True(t, claims.IsAtLeast(auth.PerfilVoluntario))
		assert.False(t, claims.IsAtLeast(auth.PerfilAdmin))

		admin := &auth.AccessClaims{Perfil: auth.PerfilAdmin}
		assert.True(t, admin.IsAtLeast(auth.PerfilVoluntario))
		assert.True(t, admin.IsAtLeast(auth.PerfilAdmin))
	})

	t.Run("zero times when registered claims are absent", func(t *testing.T) {
		assert.True(t, claims.Expires().IsZero())
		assert.True(t, claims.IssuedAt().IsZero())
	})
}

func TestPerfil(t *testing.T) {
	t.Run("only the closed set is valid", func(t *testing.T) {
		assert.True(t, auth.IsValidPerfil(auth.PerfilAdmin))
		assert.True(t, auth.IsValidPerfil(auth.PerfilVoluntario))
		assert.False(t, auth.IsValidPerfil("GERENTE"))
		assert.False(t, auth.IsValidPerfil(""))
	})

	t.Run("unknown roles never satisfy a minimum", func(t *testing.T) {
		assert.False(t, auth.PerfilAtLeast("GERENTE", auth.PerfilVoluntario))
		assert.False(t, auth.PerfilAtLeast(auth.PerfilAdmin, "GERENTE"))
	})
}
