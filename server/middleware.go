package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
)

// ErrTokenMissing is returned when no bearer token reaches a guarded route.
var ErrTokenMissing = errors.New("Token de acesso ausente ou malformado", errors.CategoryAuth).
	WithTextCode("TOKEN_MISSING").
	WithCode(errors.CodeUnauthorized)

// ErrPerfilInsuficiente is returned when the token's perfil does not meet
// the route requirement.
var ErrPerfilInsuficiente = errors.New("Acesso negado", errors.CategoryAuthz).
	WithTextCode("PERFIL_INSUFICIENTE").
	WithCode(errors.CodeForbidden)

// TokenValidator validates a raw access token into claims.
type TokenValidator interface {
	Validate(raw string) (*auth.AccessClaims, error)
}

// GuardConfig tunes the bearer token middleware.
type GuardConfig struct {
	// Validator is required.
	Validator TokenValidator
	// Filter skips the guard when it returns true.
	Filter func(*fiber.Ctx) bool
	// ContextKey is where claims are stored on the request. Default "claims".
	ContextKey string
	// TokenLookup is a comma-separated list of "<source>:<name>" entries,
	// sources header, cookie and query. Default "header:Authorization".
	TokenLookup string
	// AuthScheme strips the scheme prefix on header lookups. Default "Bearer".
	AuthScheme string
	// RequiredPerfil demands an exact perfil match.
	RequiredPerfil auth.Perfil
	// MinimumPerfil demands at least the given perfil in the hierarchy.
	MinimumPerfil auth.Perfil
}

type tokenExtractor func(*fiber.Ctx) string

// RequireAuth builds the bearer token guard middleware.
func RequireAuth(cfg GuardConfig) fiber.Handler {
	if cfg.Validator == nil {
		panic("server: RequireAuth needs a TokenValidator")
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "claims"
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = "header:" + fiber.HeaderAuthorization
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	extractors := buildExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := ""
		for _, extract := range extractors {
			if raw = extract(c); raw != "" {
				break
			}
		}
		if raw == "" {
			return ErrTokenMissing
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			return err
		}

		if cfg.RequiredPerfil != "" && !claims.HasPerfil(cfg.RequiredPerfil) {
			return ErrPerfilInsuficiente.WithMetadata(map[string]any{
				"requerido": cfg.RequiredPerfil,
				"perfil":    claims.Perfil,
			})
		}
		if cfg.MinimumPerfil != "" && !claims.IsAtLeast(cfg.MinimumPerfil) {
			return ErrPerfilInsuficiente.WithMetadata(map[string]any{
				"minimo": cfg.MinimumPerfil,
				"perfil": claims.Perfil,
			})
		}

		c.Locals(cfg.ContextKey, claims)
		return c.Next()
	}
}

// RequirePerfil raises the perfil floor on routes already behind
// RequireAuth, reading the claims the guard stored.
func RequirePerfil(minimum auth.Perfil) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c, "")
		if !ok {
			return ErrTokenMissing
		}
		if !claims.IsAtLeast(minimum) {
			return ErrPerfilInsuficiente.WithMetadata(map[string]any{
				"minimo": minimum,
				"perfil": claims.Perfil,
			})
		}
		return c.Next()
	}
}

// ClaimsFrom pulls the validated claims a guard stored on the request.
func ClaimsFrom(c *fiber.Ctx, contextKey string) (*auth.AccessClaims, bool) {
	if contextKey == "" {
		contextKey = "claims"
	}
	claims, ok := c.Locals(contextKey).(*auth.AccessClaims)
	return claims, ok
}

func buildExtractors(tokenLookup, authScheme string) []tokenExtractor {
	extractors := make([]tokenExtractor, 0)

	for _, part := range strings.Split(tokenLookup, ",") {
		source, name, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)

		switch strings.TrimSpace(source) {
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, func(c *fiber.Ctx) string {
				return c.Cookies(name)
			})
		case "query":
			extractors = append(extractors, func(c *fiber.Ctx) string {
				return c.Query(name)
			})
		}
	}

	return extractors
}

func fromHeader(header, authScheme string) tokenExtractor {
	scheme := strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) string {
		value := c.Get(header)
		if scheme == "" {
			return strings.TrimSpace(value)
		}
		if len(value) > len(scheme)+1 && strings.EqualFold(value[:len(scheme)], scheme) {
			return strings.TrimSpace(value[len(scheme):])
		}
		return ""
	}
}
