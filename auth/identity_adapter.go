package auth

// UserIdentity adapts a Usuario into the Identity interface for token
// generation.
type UserIdentity struct {
	usuario *Usuario
}

// NewIdentityFromUsuario returns an Identity adapter for the provided user.
func NewIdentityFromUsuario(usuario *Usuario) Identity {
	if usuario == nil {
		return nil
	}
	return UserIdentity{usuario: usuario}
}

// ID returns the user's numeric ID.
func (u UserIdentity) ID() int64 {
	if u.usuario == nil {
		return 0
	}
	return u.usuario.ID
}

// Nome returns the user's display name.
func (u UserIdentity) Nome() string {
	if u.usuario == nil {
		return ""
	}
	return u.usuario.Nome
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.usuario == nil {
		return ""
	}
	return u.usuario.Email
}

// Perfil returns the user's role.
func (u UserIdentity) Perfil() Perfil {
	if u.usuario == nil {
		return ""
	}
	return u.usuario.Perfil
}
