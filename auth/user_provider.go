package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserProvider resolves identities from the Usuarios repository, comparing
// bcrypt hashes for password verification.
type UserProvider struct {
	usuarios Usuarios
	logger   Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider.
func NewUserProvider(usuarios Usuarios) *UserProvider {
	return &UserProvider{
		usuarios: usuarios,
		logger:   defLogger{},
	}
}

// WithLogger sets the provider logger.
func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. Both unknown emails and wrong passwords collapse into
// ErrInvalidCredentials so the response never leaks which one failed.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, senha string) (Identity, error) {
	usuario, err := u.usuarios.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUsuarioNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(senha, usuario.SenhaHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return NewIdentityFromUsuario(usuario), nil
}

// FindIdentityByEmail resolves an identity without password verification.
func (u *UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	usuario, err := u.usuarios.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return NewIdentityFromUsuario(usuario), nil
}

// FindIdentityByID resolves an identity by its numeric ID.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id int64) (Identity, error) {
	usuario, err := u.usuarios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewIdentityFromUsuario(usuario), nil
}
