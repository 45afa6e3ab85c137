package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

func (s *Server) listarMovimentacoes(c *fiber.Ctx) error {
	filters := store.MovimentacaoFilters{
		LoteID:    queryInt64(c, "loteId"),
		UsuarioID: queryInt64(c, "usuarioId"),
		Tipo:      c.Query("tipo"),
		De:        queryDate(c, "dataInicio"),
		Ate:       queryDate(c, "dataFim"),
	}
	filters.Limit, filters.Offset = queryPage(c)

	// the path-scoped listings reuse the same handler
	if raw := c.Params("loteId"); raw != "" {
		id, err := paramID(c, "loteId")
		if err != nil {
			return err
		}
		filters.LoteID = id
	}
	if raw := c.Params("usuarioId"); raw != "" {
		id, err := paramID(c, "usuarioId")
		if err != nil {
			return err
		}
		filters.UsuarioID = id
	}
	if raw := c.Params("tipo"); raw != "" {
		tipo, ok := store.ParseTipoMovimentacao(raw)
		if !ok {
			return service.ErrTipoMovimentacaoInvalido.WithMetadata(map[string]any{"tipo": raw})
		}
		filters.Tipo = tipo
	}

	records, err := s.movimentacoes.Listar(c.Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) buscarMovimentacao(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, err := s.movimentacoes.Detalhes(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(record.Movimentacao)
}

func (s *Server) detalhesMovimentacao(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, err := s.movimentacoes.Detalhes(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) registrarMovimentacao(c *fiber.Ctx) error {
	claims, ok := ClaimsFrom(c, "")
	if !ok {
		return ErrTokenMissing
	}
	input := service.RegistrarInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.movimentacoes.Registrar(c.Context(), input, claims.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) montarKit(c *fiber.Ctx) error {
	claims, ok := ClaimsFrom(c, "")
	if !ok {
		return ErrTokenMissing
	}
	input := service.MontagemKitInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.movimentacoes.MontarKit(c.Context(), input, claims.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) excluirMovimentacao(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.movimentacoes.Excluir(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
