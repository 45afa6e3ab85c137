package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/auth"
)

type fakeProvider struct {
	usuario   *auth.Usuario
	verifyErr error
}

func (f *fakeProvider) VerifyIdentity(_ context.Context, email, senha string) (auth.Identity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.usuario == nil || f.usuario.Email != email {
		return nil, auth.ErrInvalidCredentials
	}
	return auth.NewIdentityFromUsuario(f.usuario), nil
}

func (f *fakeProvider) FindIdentityByEmail(_ context.Context, email string) (auth.Identity, error) {
	if f.usuario == nil || f.usuario.Email != email {
		return nil, auth.ErrInvalidCredentials
	}
	return auth.NewIdentityFromUsuario(f.usuario), nil
}

func (f *fakeProvider) FindIdentityByID(_ context.Context, id int64) (auth.Identity, error) {
	if f.usuario == nil || f.usuario.ID != id {
		return nil, auth.ErrInvalidCredentials
	}
	return auth.NewIdentityFromUsuario(f.usuario), nil
}

func newAuther(t *testing.T) (*auth.Auther, *fakeProvider) {
	t.Helper()
	provider := &fakeProvider{usuario: &auth.Usuario{
		ID:     42,
		Nome:   "Maria",
		Email:  "maria@ong.com",
		Perfil: auth.PerfilAdmin,
	}}
	tokens := auth.NewTokenService([]byte("segredo-de-teste"), 30*time.Minute, "estoque", nil)
	refresh := auth.NewRefreshService(auth.NewRefreshStore(refreshTestDB(t)), time.Hour)
	return auth.NewAuthenticator(provider, tokens, refresh), provider
}

func TestAutherLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a full pair for valid credentials", func(t *testing.T) {
		auther, _ := newAuther(t)

		pair, identity, err := auther.Login(ctx, "maria@ong.com", "senha123")
		require.NoError(t, err)

		require.NotNil(t, identity)
		assert.Equal(t, int64(42), identity.ID())

		claims, err := auther.SessionFromToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, auth.PerfilAdmin, claims.Perfil)

		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	})

	t.Run("bad credentials yield no tokens", func(t *testing.T) {
		auther, _ := newAuther(t)

		pair, identity, err := auther.Login(ctx, "intruso@ong.com", "qualquer")
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
		assert.Nil(t, identity)
		assert.Empty(t, pair.AccessToken)
	})
}

func TestAutherRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh credential", func(t *testing.T) {
		auther, _ := newAuther(t)

		pair, _, err := auther.Login(ctx, "maria@ong.com", "senha123")
		require.NoError(t, err)

		rotated, identity, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, int64(42), identity.ID())
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		// the consumed value cannot be replayed
		_, _, err = auther.Refresh(ctx, pair.RefreshToken)
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrRefreshRevoked))

		// the rotated value works
		_, _, err = auther.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("unknown value is rejected", func(t *testing.T) {
		auther, _ := newAuther(t)
		_, _, err := auther.Refresh(ctx, "valor-desconhecido")
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrRefreshInvalid))
	})
}

func TestAutherLogout(t *testing.T) {
	ctx := context.Background()
	auther, _ := newAuther(t)

	pair, _, err := auther.Login(ctx, "maria@ong.com", "senha123")
	require.NoError(t, err)

	auther.Logout(ctx, pair.RefreshToken)

	_, _, err = auther.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrRefreshRevoked))

	// revoking garbage is silently ignored
	auther.Logout(ctx, "valor-desconhecido")
	auther.Logout(ctx, "")
}
