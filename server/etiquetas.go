package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/service"
)

type etiquetasRequest struct {
	LoteIDs []int64 `json:"loteIds"`
}

func (s *Server) gerarEtiquetas(c *fiber.Ctx) error {
	payload := etiquetasRequest{}
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	if len(payload.LoteIDs) == 0 {
		return service.ErrEtiquetasSemLotes
	}

	pdf, err := s.etiquetas.GerarPDF(c.Context(), payload.LoteIDs)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="etiquetas.pdf"`)
	return c.Send(pdf)
}
