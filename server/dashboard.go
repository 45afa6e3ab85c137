package server

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) dashboardMetrics(c *fiber.Ctx) error {
	resumo, err := s.dashboard.Resumo(c.Context(), queryDate(c, "dataInicio"), queryDate(c, "dataFim"))
	if err != nil {
		return err
	}
	return c.JSON(resumo)
}
