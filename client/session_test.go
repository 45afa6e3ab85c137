package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/client"
)

type fakeTransport struct {
	mu sync.Mutex

	loginResult *client.LoginResult
	loginErr    error
	loginCalls  int

	registerErr   error
	registerCalls int

	logoutErr   error
	logoutCalls int

	refreshToken string
	refreshErr   error
	refreshCalls int
}

func (f *fakeTransport) Login(_ context.Context, _, _ string) (*client.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeTransport) Register(_ context.Context, _, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	return f.registerErr
}

func (f *fakeTransport) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeTransport) Refresh(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshToken, f.refreshErr
}

type recordingNotifier struct {
	successes []string
	errs      []string
	infos     []string
}

func (r *recordingNotifier) Success(m string) { r.successes = append(r.successes, m) }
func (r *recordingNotifier) Error(m string)   { r.errs = append(r.errs, m) }
func (r *recordingNotifier) Info(m string)    { r.infos = append(r.infos, m) }

func validToken(t *testing.T) string {
	t.Helper()
	return makeToken(t, map[string]any{
		"sub":    "maria@ong.com",
		"userId": 42,
		"nome":   "Maria",
		"perfil": "ADMIN",
	})
}

func newSession(transport client.AuthTransport, notifier client.Notifier) (*client.SessionController, *client.TokenStore) {
	store := client.NewTokenStore()
	return client.NewSessionController(store, transport, notifier), store
}

func TestSessionBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("starts bootstrapping and loading", func(t *testing.T) {
		session, _ := newSession(&fakeTransport{}, nil)
		assert.Equal(t, client.StateBootstrapping, session.State())
		assert.True(t, session.IsLoading())
	})

	t.Run("silent refresh success lands authenticated", func(t *testing.T) {
		transport := &fakeTransport{refreshToken: validToken(t)}
		session, store := newSession(transport, nil)

		session.Bootstrap(ctx)

		assert.Equal(t, client.StateAuthenticated, session.State())
		assert.True(t, session.IsAuthenticated())
		assert.False(t, session.IsLoading())
		require.NotNil(t, session.CurrentUser())
		assert.Equal(t, int64(42), session.CurrentUser().ID)
		assert.True(t, store.Has())
	})

	t.Run("refresh failure lands anonymous with loading cleared", func(t *testing.T) {
		transport := &fakeTransport{refreshErr: errors.New("network down")}
		session, store := newSession(transport, nil)

		session.Bootstrap(ctx)

		assert.Equal(t, client.StateAnonymous, session.State())
		assert.False(t, session.IsAuthenticated())
		assert.False(t, session.IsLoading())
		assert.Nil(t, session.CurrentUser())
		assert.False(t, store.Has())
	})

	t.Run("undecodable refreshed token is treated as failure", func(t *testing.T) {
		transport := &fakeTransport{refreshToken: "nem.um.jwt"}
		session, store := newSession(transport, nil)

		session.Bootstrap(ctx)

		assert.Equal(t, client.StateAnonymous, session.State())
		assert.Nil(t, session.CurrentUser())
		assert.False(t, store.Has())
		assert.False(t, session.IsLoading())
	})

	t.Run("runs exactly once", func(t *testing.T) {
		transport := &fakeTransport{refreshErr: errors.New("down")}
		session, _ := newSession(transport, nil)

		session.Bootstrap(ctx)
		session.Bootstrap(ctx)
		session.Bootstrap(ctx)

		assert.Equal(t, 1, transport.refreshCalls)
	})
}

func TestSessionLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores token and decodes user", func(t *testing.T) {
		token := validToken(t)
		transport := &fakeTransport{loginResult: &client.LoginResult{AccessToken: token}}
		notifier := &recordingNotifier{}
		session, store := newSession(transport, notifier)

		err := session.Login(ctx, "maria@ong.com", "senha123")
		require.NoError(t, err)

		assert.Equal(t, client.StateAuthenticated, session.State())
		held, _ := store.Get()
		assert.Equal(t, token, held)
		assert.Equal(t, "Maria", session.CurrentUser().Nome)
		assert.Len(t, notifier.successes, 1)
	})

	t.Run("transport failure propagates and notifies", func(t *testing.T) {
		transport := &fakeTransport{loginErr: errors.New("Email ou senha inválidos")}
		notifier := &recordingNotifier{}
		session, store := newSession(transport, notifier)

		err := session.Login(ctx, "maria@ong.com", "errada")
		require.Error(t, err)

		assert.False(t, session.IsAuthenticated())
		assert.False(t, store.Has())
		assert.Len(t, notifier.errs, 1)
	})

	t.Run("undecodable token leaves no partial state", func(t *testing.T) {
		transport := &fakeTransport{loginResult: &client.LoginResult{AccessToken: "x.y.z"}}
		session, store := newSession(transport, &recordingNotifier{})

		err := session.Login(ctx, "maria@ong.com", "senha123")
		require.Error(t, err)

		assert.Nil(t, session.CurrentUser())
		assert.False(t, store.Has())
	})
}

func TestSessionLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("teardown is unconditional on transport failure", func(t *testing.T) {
		transport := &fakeTransport{
			loginResult: &client.LoginResult{AccessToken: validToken(t)},
			logoutErr:   errors.New("backend indisponível"),
		}
		notifier := &recordingNotifier{}
		session, store := newSession(transport, notifier)

		require.NoError(t, session.Login(ctx, "maria@ong.com", "senha123"))
		require.True(t, session.IsAuthenticated())

		session.Logout(ctx)

		assert.Equal(t, client.StateAnonymous, session.State())
		assert.False(t, session.IsAuthenticated())
		assert.Nil(t, session.CurrentUser())
		assert.False(t, store.Has())
		assert.Len(t, notifier.infos, 1)
	})
}

func TestSessionRegister(t *testing.T) {
	ctx := context.Background()

	input := client.RegisterInput{
		Nome:          "Maria",
		Email:         "maria@ong.com",
		Senha:         "senha123",
		ConfirmaSenha: "senha123",
		Perfil:        "VOLUNTARIO",
	}

	t.Run("chains a real login after registering", func(t *testing.T) {
		transport := &fakeTransport{loginResult: &client.LoginResult{AccessToken: validToken(t)}}
		session, _ := newSession(transport, &recordingNotifier{})

		err := session.Register(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, 1, transport.registerCalls)
		assert.Equal(t, 1, transport.loginCalls)
		assert.Equal(t, client.StateAuthenticated, session.State())
		// the identity comes from the post-login token
		assert.Equal(t, "Maria", session.CurrentUser().Nome)
	})

	t.Run("register failure leaves no session", func(t *testing.T) {
		transport := &fakeTransport{registerErr: errors.New("Email já cadastrado")}
		notifier := &recordingNotifier{}
		session, store := newSession(transport, notifier)

		err := session.Register(ctx, input)
		require.Error(t, err)

		assert.Equal(t, 0, transport.loginCalls)
		assert.False(t, store.Has())
		assert.Len(t, notifier.errs, 1)
	})

	t.Run("validation failure never reaches the transport", func(t *testing.T) {
		transport := &fakeTransport{}
		session, _ := newSession(transport, &recordingNotifier{})

		bad := input
		bad.ConfirmaSenha = "outra"
		err := session.Register(ctx, bad)
		require.Error(t, err)

		assert.Equal(t, 0, transport.registerCalls)
		assert.Equal(t, 0, transport.loginCalls)
	})
}
