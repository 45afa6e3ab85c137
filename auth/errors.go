package auth

import (
	"github.com/goliatone/go-errors"
)

// ErrInvalidCredentials is returned for any login failure, regardless of
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("Email ou senha inválidos", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when an access token is past its expiration.
var ErrTokenExpired = errors.New("Token expirado", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be parsed or whose
// signature does not check out.
var ErrTokenMalformed = errors.New("Token inválido", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrRefreshInvalid is returned for unknown refresh token values.
var ErrRefreshInvalid = errors.New("Refresh token inválido", errors.CategoryAuth).
	WithTextCode("REFRESH_INVALID").
	WithCode(errors.CodeUnauthorized)

// ErrRefreshRevoked is returned when the refresh token was explicitly revoked.
var ErrRefreshRevoked = errors.New("Refresh token foi revogado", errors.CategoryAuth).
	WithTextCode("REFRESH_REVOKED").
	WithCode(errors.CodeUnauthorized)

// ErrRefreshExpired is returned when the refresh token is past its expiration.
var ErrRefreshExpired = errors.New("Refresh token expirado", errors.CategoryAuth).
	WithTextCode("REFRESH_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("senha não pode ser vazia", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("senha não confere", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)
