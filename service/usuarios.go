package service

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
)

var (
	// ErrEmailJaCadastrado blocks reusing an email across accounts.
	ErrEmailJaCadastrado = errors.New(
		"Email já cadastrado",
		errors.CategoryConflict,
	).WithTextCode("EMAIL_JA_CADASTRADO").WithCode(errors.CodeConflict)

	// ErrPerfilInvalido rejects unknown access profiles.
	ErrPerfilInvalido = errors.New(
		"Perfil inválido",
		errors.CategoryValidation,
	).WithTextCode("PERFIL_INVALIDO").WithCode(errors.CodeBadRequest)

	// ErrAutoExclusao keeps an admin from deleting their own account.
	ErrAutoExclusao = errors.New(
		"Não é possível excluir o próprio usuário",
		errors.CategoryConflict,
	).WithTextCode("AUTO_EXCLUSAO").WithCode(errors.CodeConflict)
)

// UsuarioInput carries the fields of an account create or update. Senha is
// optional on update; empty keeps the stored hash.
type UsuarioInput struct {
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Senha  string `json:"senha"`
	Perfil string `json:"perfil"`
}

// Validate runs the rules shared by create and update.
func (i UsuarioInput) Validate(senhaObrigatoria bool) error {
	senhaRules := []validation.Rule{validation.Length(6, 100)}
	if senhaObrigatoria {
		senhaRules = append([]validation.Rule{validation.Required}, senhaRules...)
	}
	return validation.ValidateStruct(&i,
		validation.Field(&i.Nome, validation.Required, validation.Length(2, 150)),
		validation.Field(&i.Email, validation.Required, is.Email),
		validation.Field(&i.Senha, senhaRules...),
		validation.Field(&i.Perfil, validation.Required),
	)
}

// Usuarios manages the application accounts.
type Usuarios struct {
	usuarios auth.Usuarios
	refresh  *auth.RefreshService
	logger   auth.Logger
}

// NewUsuarios builds the account service.
func NewUsuarios(usuarios auth.Usuarios, refresh *auth.RefreshService) *Usuarios {
	return &Usuarios{
		usuarios: usuarios,
		refresh:  refresh,
		logger:   auth.DefaultLogger(),
	}
}

// WithLogger replaces the fallback logger.
func (s *Usuarios) WithLogger(logger auth.Logger) *Usuarios {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Usuarios) Listar(ctx context.Context, filters auth.UsuarioFilters) ([]*auth.Usuario, error) {
	return s.usuarios.List(ctx, filters)
}

func (s *Usuarios) Buscar(ctx context.Context, id int64) (*auth.Usuario, error) {
	return s.usuarios.GetByID(ctx, id)
}

func (s *Usuarios) Criar(ctx context.Context, input UsuarioInput) (*auth.Usuario, error) {
	if err := input.Validate(true); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "usuário inválido")
	}
	perfil, ok := auth.ParsePerfil(input.Perfil)
	if !ok {
		return nil, ErrPerfilInvalido.WithMetadata(map[string]any{"perfil": input.Perfil})
	}
	exists, err := s.usuarios.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailJaCadastrado.WithMetadata(map[string]any{"email": input.Email})
	}

	hash, err := auth.HashPassword(input.Senha)
	if err != nil {
		return nil, err
	}
	return s.usuarios.Create(ctx, &auth.Usuario{
		Nome:      input.Nome,
		Email:     input.Email,
		SenhaHash: hash,
		Perfil:    perfil,
	})
}

func (s *Usuarios) Atualizar(ctx context.Context, id int64, input UsuarioInput) (*auth.Usuario, error) {
	if err := input.Validate(false); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "usuário inválido")
	}
	perfil, ok := auth.ParsePerfil(input.Perfil)
	if !ok {
		return nil, ErrPerfilInvalido.WithMetadata(map[string]any{"perfil": input.Perfil})
	}
	record, err := s.usuarios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Email != record.Email {
		exists, err := s.usuarios.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailJaCadastrado.WithMetadata(map[string]any{"email": input.Email})
		}
	}

	record.Nome = input.Nome
	record.Email = input.Email
	record.Perfil = perfil
	if input.Senha != "" {
		hash, err := auth.HashPassword(input.Senha)
		if err != nil {
			return nil, err
		}
		record.SenhaHash = hash
	}
	return s.usuarios.Update(ctx, record)
}

// Excluir removes the account and revokes its active sessions.
func (s *Usuarios) Excluir(ctx context.Context, id int64, solicitanteID int64) error {
	if id == solicitanteID {
		return ErrAutoExclusao.WithMetadata(map[string]any{"id": id})
	}
	if err := s.usuarios.Delete(ctx, id); err != nil {
		return err
	}
	if s.refresh != nil {
		if err := s.refresh.RevokeAll(ctx, id); err != nil {
			s.logger.Warn("revoke sessions after delete: %v", err)
		}
	}
	return nil
}
