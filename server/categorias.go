package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/service"
)

func (s *Server) listarCategorias(c *fiber.Ctx) error {
	records, err := s.categorias.Listar(c.Context(), c.Query("nome"))
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) buscarCategoria(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	record, err := s.categorias.Buscar(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) criarCategoria(c *fiber.Ctx) error {
	input := service.CategoriaInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.categorias.Criar(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) atualizarCategoria(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	input := service.CategoriaInput{}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	record, err := s.categorias.Atualizar(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) excluirCategoria(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.categorias.Excluir(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
