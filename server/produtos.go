package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

func (s *Server) listarProdutos(c *fiber.Ctx) error {
	filters := store.ProdutoFilters{
		Nome:        c.Query("nome"),
		CategoriaID: queryInt64(c, "categoriaId"),
	}
	if raw := c.Query("isKit"); raw != "" {
		isKit := raw == "true"
		filters.IsKit = &isKit
	}
	filters.Limit, filters.Offset = queryPage(c)

	records, err := s.produtos.Listar(c.Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) listarProdutosPorCategoria(c *fiber.Ctx) error {
	categoriaID, err := paramID(c, "categoriaId")
	if err != nil {
		return err
	}
	records, err := s.produtos.Listar(c.Context(), store.ProdutoFilters{CategoriaID: categoriaID})
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) buscarProduto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, err := s.produtos.Buscar(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) buscarProdutoPorCodigo(c *fiber.Ctx) error {
	record, err := s.produtos.BuscarPorCodigoBarras(c.Context(), c.Params("codigo"))
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) criarProduto(c *fiber.Ctx) error {
	input := service.ProdutoInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.produtos.Criar(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) atualizarProduto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	input := service.ProdutoInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.produtos.Atualizar(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) excluirProduto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.produtos.Excluir(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
