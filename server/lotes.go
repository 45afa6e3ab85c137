package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

// loteResponse attaches the derived barcode to the persisted record.
type loteResponse struct {
	*store.Lote
	CodigoBarras string `json:"codigoBarras,omitempty"`
}

func toLoteResponse(record *store.Lote) loteResponse {
	return loteResponse{Lote: record, CodigoBarras: record.CodigoBarras()}
}

func toLoteResponses(records []*store.Lote) []loteResponse {
	out := make([]loteResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toLoteResponse(record))
	}
	return out
}

func (s *Server) listarLotes(c *fiber.Ctx) error {
	filters := store.LoteFilters{
		ProdutoID:   queryInt64(c, "produtoId"),
		CategoriaID: queryInt64(c, "categoriaId"),
		ComEstoque:  c.Query("comEstoque") == "true",
	}
	filters.Limit, filters.Offset = queryPage(c)
	records, err := s.lotes.Listar(c.Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(toLoteResponses(records))
}

func (s *Server) listarLotesComEstoque(c *fiber.Ctx) error {
	records, err := s.lotes.Listar(c.Context(), store.LoteFilters{ComEstoque: true})
	if err != nil {
		return err
	}
	return c.JSON(toLoteResponses(records))
}

func (s *Server) listarLotesVencimento(c *fiber.Ctx) error {
	dias, err := strconv.Atoi(c.Query("dias", "30"))
	if err != nil || dias < 0 {
		dias = 30
	}
	records, err := s.lotes.ListarVencimento(c.Context(), dias)
	if err != nil {
		return err
	}
	return c.JSON(toLoteResponses(records))
}

func (s *Server) listarLotesPorProduto(c *fiber.Ctx) error {
	produtoID, err := paramID(c, "produtoId")
	if err != nil {
		return err
	}
	records, err := s.lotes.Listar(c.Context(), store.LoteFilters{ProdutoID: produtoID})
	if err != nil {
		return err
	}
	return c.JSON(toLoteResponses(records))
}

func (s *Server) buscarLote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, err := s.lotes.Buscar(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(toLoteResponse(record))
}

func (s *Server) criarLote(c *fiber.Ctx) error {
	claims, ok := ClaimsFrom(c, "")
	if !ok {
		return ErrTokenMissing
	}
	input := service.LoteInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.lotes.Criar(c.Context(), input, claims.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toLoteResponse(record))
}

func (s *Server) atualizarLote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	input := service.LoteInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.lotes.Atualizar(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(toLoteResponse(record))
}

func (s *Server) excluirLote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.lotes.Excluir(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
