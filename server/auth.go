package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
)

const refreshCookieName = "refresh_token"

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Senha, validation.Required),
	)
}

type usuarioEcho struct {
	UsuarioID int64  `json:"usuarioId"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Perfil    string `json:"perfil"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	Usuario      *usuarioEcho `json:"usuario,omitempty"`
}

func (s *Server) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "corpo da requisição inválido")
	}
	if err := payload.Validate(); err != nil {
		return auth.ErrInvalidCredentials
	}

	pair, identity, err := s.auther.Login(c.Context(), payload.Email, payload.Senha)
	if err != nil {
		return err
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Usuario: &usuarioEcho{
			UsuarioID: identity.ID(),
			Nome:      identity.Nome(),
			Email:     identity.Email(),
			Perfil:    identity.Perfil(),
		},
	})
}

func (s *Server) refresh(c *fiber.Ctx) error {
	value := c.Cookies(refreshCookieName)
	if value == "" {
		// fall back to an explicit body for non-browser clients
		payload := struct {
			RefreshToken string `json:"refreshToken"`
		}{}
		if err := c.BodyParser(&payload); err == nil {
			value = payload.RefreshToken
		}
	}
	if value == "" {
		return auth.ErrRefreshInvalid
	}

	pair, _, err := s.auther.Refresh(c.Context(), value)
	if err != nil {
		s.clearRefreshCookie(c)
		return err
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) logout(c *fiber.Ctx) error {
	if value := c.Cookies(refreshCookieName); value != "" {
		s.auther.Logout(c.Context(), value)
	}
	s.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) setRefreshCookie(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.refreshTTL / time.Second),
		Secure:   s.secureCookies,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secureCookies,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
