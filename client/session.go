package client

import (
	"context"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
)

// SessionState is the controller's lifecycle position.
type SessionState string

const (
	// StateBootstrapping is the initial state, held only until the one-time
	// silent refresh resolves.
	StateBootstrapping SessionState = "BOOTSTRAPPING"
	// StateAuthenticated means a decodable access token is held.
	StateAuthenticated SessionState = "AUTHENTICATED"
	// StateAnonymous means no session exists.
	StateAnonymous SessionState = "ANONYMOUS"
)

// RegisterInput is the self-registration payload, validated before any
// network call.
type RegisterInput struct {
	Nome          string `json:"nome"`
	Email         string `json:"email"`
	Senha         string `json:"senha"`
	ConfirmaSenha string `json:"confirmaSenha"`
	Perfil        string `json:"perfil"`
}

// Validate runs the client-side rules. Failures here never reach the
// transport.
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nome, validation.Required, validation.Length(2, 150)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Senha, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.ConfirmaSenha, validation.Required, validation.By(func(v any) error {
			if s, _ := v.(string); s != r.Senha {
				return errors.New("As senhas não conferem", errors.CategoryValidation)
			}
			return nil
		})),
	)
}

// SessionController owns the process-wide session state machine:
// BOOTSTRAPPING at construction, then AUTHENTICATED or ANONYMOUS,
// with login/logout moving between the latter two. The token store is
// mutated exclusively here.
type SessionController struct {
	store     *TokenStore
	transport AuthTransport
	notifier  Notifier
	logger    auth.Logger

	// op serializes the mutating transitions so overlapping calls cannot
	// interleave their store writes.
	op            sync.Mutex
	bootstrapOnce sync.Once

	mu        sync.RWMutex
	state     SessionState
	user      *Identity
	isLoading bool
}

// NewSessionController builds the controller in BOOTSTRAPPING with an
// empty session.
func NewSessionController(store *TokenStore, transport AuthTransport, notifier Notifier) *SessionController {
	return &SessionController{
		store:     store,
		transport: transport,
		notifier:  normalizeNotifier(notifier),
		logger:    auth.DefaultLogger(),
		state:     StateBootstrapping,
		isLoading: true,
	}
}

// WithLogger replaces the fallback logger.
func (s *SessionController) WithLogger(logger auth.Logger) *SessionController {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// State returns the current lifecycle position.
func (s *SessionController) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns the identity decoded from the held token, nil when
// anonymous.
func (s *SessionController) CurrentUser() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated is strictly "a token is held".
func (s *SessionController) IsAuthenticated() bool {
	return s.store.Has()
}

// IsLoading is true only during the initial bootstrap attempt.
func (s *SessionController) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// Bootstrap attempts the one-time silent refresh. Any failure, network or
// decode alike, lands in ANONYMOUS; isLoading is cleared exactly once no
// matter the outcome. Further calls are no-ops.
func (s *SessionController) Bootstrap(ctx context.Context) {
	s.bootstrapOnce.Do(func() {
		s.op.Lock()
		defer s.op.Unlock()
		defer s.setLoading(false)

		token, err := s.transport.Refresh(ctx)
		if err != nil {
			s.logger.Debug("bootstrap refresh failed: %v", err)
			s.teardown()
			return
		}

		identity, err := DecodeAccessToken(token)
		if err != nil {
			s.logger.Debug("bootstrap token decode failed: %v", err)
			s.teardown()
			return
		}

		s.establish(token, identity)
	})
}

// Login authenticates and establishes the session. Transport failures
// propagate to the caller, after notifying, so forms can stay put. A
// decode failure of a 2xx token leaves the previous state untouched.
func (s *SessionController) Login(ctx context.Context, email, senha string) error {
	s.op.Lock()
	defer s.op.Unlock()

	result, err := s.transport.Login(ctx, email, senha)
	if err != nil {
		s.notifier.Error(userMessage(err))
		return err
	}

	identity, err := DecodeAccessToken(result.AccessToken)
	if err != nil {
		// no partial state: the returned token is unusable, so nothing is
		// stored and the previous state stands
		s.logger.Error("login token decode failed: %v", err)
		s.notifier.Error(userMessage(err))
		return err
	}

	s.establish(result.AccessToken, identity)
	s.notifier.Success("Login realizado com sucesso")
	return nil
}

// Register creates the account then chains a real login with the same
// credentials. The register response's own token is ignored: only the
// post-login token establishes a session.
func (s *SessionController) Register(ctx context.Context, input RegisterInput) error {
	if err := input.Validate(); err != nil {
		wrapped := errors.Wrap(err, errors.CategoryValidation, "cadastro inválido")
		s.notifier.Error(err.Error())
		return wrapped
	}

	s.op.Lock()
	if err := s.transport.Register(ctx, input.Nome, input.Email, input.Senha, input.Perfil); err != nil {
		s.op.Unlock()
		s.notifier.Error(userMessage(err))
		return err
	}
	s.op.Unlock()

	if err := s.Login(ctx, input.Email, input.Senha); err != nil {
		return err
	}
	s.notifier.Success("Cadastro realizado com sucesso")
	return nil
}

// Logout tears the session down unconditionally. The transport call is
// best-effort; its failure is logged and swallowed.
func (s *SessionController) Logout(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.transport.Logout(ctx); err != nil {
		s.logger.Debug("logout request failed: %v", err)
	}

	s.teardown()
	s.notifier.Info("Sessão encerrada")
}

func (s *SessionController) establish(token string, identity *Identity) {
	s.store.Set(token)
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = identity
	s.mu.Unlock()
}

func (s *SessionController) teardown() {
	s.store.Clear()
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.mu.Unlock()
}

func (s *SessionController) setLoading(v bool) {
	s.mu.Lock()
	s.isLoading = v
	s.mu.Unlock()
}

// userMessage extracts the human-facing text of a transport error.
func userMessage(err error) string {
	var rich *errors.Error
	if errors.As(err, &rich) && rich.Message != "" {
		return rich.Message
	}
	return genericAuthFailure
}
