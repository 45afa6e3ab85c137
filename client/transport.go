package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
)

// DefaultBaseURL is used when API_BASE_URL is not set.
const DefaultBaseURL = "http://localhost:8080"

const genericAuthFailure = "Não foi possível completar a operação. Tente novamente."

// LoginResult is the login endpoint's payload.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	UsuarioID   int64  `json:"usuarioId"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	Perfil      string `json:"perfil"`
}

// AuthTransport is the stateless HTTP surface the session controller
// drives. Stateless here means no session fields: the refresh credential
// lives in the cookie jar, never touched by calling code.
type AuthTransport interface {
	Login(ctx context.Context, email, senha string) (*LoginResult, error)
	Register(ctx context.Context, nome, email, senha, perfil string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (string, error)
}

// Transport implements AuthTransport over net/http. The cookie jar plays
// the browser's role: it carries the httpOnly refresh cookie between
// calls without exposing its value.
type Transport struct {
	base   string
	http   *http.Client
	logger auth.Logger
}

var _ AuthTransport = (*Transport)(nil)

// NewTransport builds a transport against the configured base URL,
// falling back to the API_BASE_URL environment value and then to
// DefaultBaseURL.
func NewTransport(baseURL string) *Transport {
	if baseURL == "" {
		baseURL = os.Getenv("API_BASE_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	jar, _ := cookiejar.New(nil)
	return &Transport{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Jar: jar},
		logger: auth.DefaultLogger(),
	}
}

// WithLogger replaces the fallback logger.
func (t *Transport) WithLogger(logger auth.Logger) *Transport {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// WithHTTPClient swaps the underlying client, keeping a cookie jar in
// place when the given client has none.
func (t *Transport) WithHTTPClient(c *http.Client) *Transport {
	if c == nil {
		return t
	}
	if c.Jar == nil {
		c.Jar, _ = cookiejar.New(nil)
	}
	t.http = c
	return t
}

func (t *Transport) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	out := &LoginResult{}
	err := t.postJSON(ctx, "/api/auth/login", map[string]string{
		"email": email,
		"senha": senha,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Transport) Register(ctx context.Context, nome, email, senha, perfil string) error {
	return t.postJSON(ctx, "/api/usuarios", map[string]string{
		"nome":   nome,
		"email":  email,
		"senha":  senha,
		"perfil": perfil,
	}, nil)
}

// Logout tells the backend to revoke the refresh credential. Best-effort:
// errors bubble up for logging, never to block teardown.
func (t *Transport) Logout(ctx context.Context) error {
	return t.postJSON(ctx, "/api/auth/logout", nil, nil)
}

// Refresh trades the cookie-held refresh credential for a new access
// token.
func (t *Transport) Refresh(ctx context.Context) (string, error) {
	out := struct {
		AccessToken string `json:"accessToken"`
	}{}
	if err := t.postJSON(ctx, "/api/auth/refresh", nil, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New(genericAuthFailure, errors.CategoryAuth).
			WithTextCode("REFRESH_EMPTY").
			WithCode(errors.CodeUnauthorized)
	}
	return out.AccessToken, nil
}

func (t *Transport) postJSON(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "falha ao serializar requisição")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+path, reader)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "falha ao montar requisição")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, genericAuthFailure).
			WithTextCode("NETWORK_FAILURE")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, genericAuthFailure).
			WithTextCode("RESPONSE_DECODE")
	}
	return nil
}

// apiError surfaces the backend's own message verbatim when the body
// carries one, falling back to a generic string.
func apiError(resp *http.Response) error {
	message := genericAuthFailure
	body := struct {
		Message string `json:"message"`
	}{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Message != "" {
		message = body.Message
	}

	category := errors.CategoryOperation
	code := errors.CodeInternal
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		category = errors.CategoryAuth
		code = errors.CodeUnauthorized
	case http.StatusForbidden:
		category = errors.CategoryAuthz
		code = errors.CodeForbidden
	case http.StatusBadRequest:
		code = errors.CodeBadRequest
	case http.StatusNotFound:
		code = errors.CodeNotFound
	case http.StatusConflict:
		code = errors.CodeConflict
	}

	return errors.New(message, category).
		WithTextCode("API_ERROR").
		WithCode(code).
		WithMetadata(map[string]any{"status": resp.StatusCode})
}
