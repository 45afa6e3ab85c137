package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/service"
)

func (s *Server) listarUsuarios(c *fiber.Ctx) error {
	records, err := s.usuarios.Listar(c.Context(), auth.UsuarioFilters{
		Nome:   c.Query("nome"),
		Email:  c.Query("email"),
		Perfil: c.Query("perfil"),
	})
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) buscarUsuario(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, err := s.usuarios.Buscar(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) buscarUsuarioPorEmail(c *fiber.Ctx) error {
	records, err := s.usuarios.Listar(c.Context(), auth.UsuarioFilters{Email: c.Params("email")})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return auth.ErrUsuarioNotFound.WithMetadata(map[string]any{"email": c.Params("email")})
	}
	return c.JSON(records[0])
}

// criarUsuario is the public registration endpoint. Self-registration is
// always VOLUNTARIO; only a caller holding an ADMIN token can set perfil.
func (s *Server) criarUsuario(c *fiber.Ctx) error {
	input := service.UsuarioInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if !s.callerIsAdmin(c) || input.Perfil == "" {
		input.Perfil = auth.PerfilVoluntario
	}
	record, err := s.usuarios.Criar(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// callerIsAdmin checks an optional bearer token on an otherwise public
// route.
func (s *Server) callerIsAdmin(c *fiber.Ctx) bool {
	raw := fromHeader(fiber.HeaderAuthorization, "Bearer")(c)
	if raw == "" {
		return false
	}
	claims, err := s.auther.TokenService().Validate(raw)
	if err != nil {
		return false
	}
	return claims.HasPerfil(auth.PerfilAdmin)
}

func (s *Server) atualizarUsuario(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	input := service.UsuarioInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.usuarios.Atualizar(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) excluirUsuario(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	claims, ok := ClaimsFrom(c, "")
	if !ok {
		return ErrTokenMissing
	}
	if err := s.usuarios.Excluir(c.Context(), id, claims.UserID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
