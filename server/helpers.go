package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("Identificador inválido", errors.CategoryBadInput).
			WithTextCode("ID_INVALIDO").
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"param": name, "valor": c.Params(name)})
	}
	return id, nil
}

// queryInt64 parses an optional numeric query parameter, 0 when absent.
func queryInt64(c *fiber.Ctx, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}

// queryPage parses the optional page/size query parameters into a
// limit/offset pair. A missing or non-positive size disables paging.
func queryPage(c *fiber.Ctx) (limit, offset int) {
	size, err := strconv.Atoi(c.Query("size"))
	if err != nil || size <= 0 {
		return 0, 0
	}
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 0 {
		page = 0
	}
	return size, page * size
}

// queryDate parses an optional date query parameter, accepting date-only
// and RFC 3339 forms.
func queryDate(c *fiber.Ctx, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "corpo da requisição inválido")
	}
	return nil
}
