package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/service"
)

// Options wires the server to its collaborators.
type Options struct {
	Auther        *auth.Auther
	Usuarios      *service.Usuarios
	Categorias    *service.Categorias
	Produtos      *service.Produtos
	Lotes         *service.Lotes
	Movimentacoes *service.Movimentacoes
	Dashboard     *service.Dashboard
	Etiquetas     *service.Etiquetas
	Logger        auth.Logger
	// RefreshTTL bounds the refresh cookie lifetime.
	RefreshTTL time.Duration
	// SecureCookies may be disabled for plain-HTTP development.
	SecureCookies bool
	Debug         bool
}

// Server is the REST API over the inventory services.
type Server struct {
	app           *fiber.App
	auther        *auth.Auther
	usuarios      *service.Usuarios
	categorias    *service.Categorias
	produtos      *service.Produtos
	lotes         *service.Lotes
	movimentacoes *service.Movimentacoes
	dashboard     *service.Dashboard
	etiquetas     *service.Etiquetas
	logger        auth.Logger
	refreshTTL    time.Duration
	secureCookies bool
}

// New assembles the fiber app and registers every route.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	refreshTTL := opts.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = auth.DefaultRefreshTTL
	}

	s := &Server{
		auther:        opts.Auther,
		usuarios:      opts.Usuarios,
		categorias:    opts.Categorias,
		produtos:      opts.Produtos,
		lotes:         opts.Lotes,
		movimentacoes: opts.Movimentacoes,
		dashboard:     opts.Dashboard,
		etiquetas:     opts.Etiquetas,
		logger:        logger,
		refreshTTL:    refreshTTL,
		secureCookies: opts.SecureCookies,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "estoque",
		ErrorHandler: ErrorHandler(logger, opts.Debug),
	})
	s.registerRoutes()
	return s
}

// App exposes the fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or Shutdown runs.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Post("/auth/login", s.login)
	api.Post("/auth/refresh", s.refresh)
	api.Post("/auth/logout", s.logout)
	api.Post("/usuarios", s.criarUsuario)

	api.Use(RequireAuth(GuardConfig{Validator: s.auther.TokenService()}))
	admin := RequirePerfil(auth.PerfilAdmin)

	api.Get("/categorias", s.listarCategorias)
	api.Get("/categorias/simples", s.listarCategorias)
	api.Get("/categorias/:id", s.buscarCategoria)
	api.Post("/categorias", s.criarCategoria)
	api.Put("/categorias/:id", s.atualizarCategoria)
	api.Delete("/categorias/:id", s.excluirCategoria)

	api.Get("/produtos", s.listarProdutos)
	api.Get("/produtos/simples", s.listarProdutos)
	api.Get("/produtos/buscar", s.listarProdutos)
	api.Get("/produtos/codigo-barras/:codigo", s.buscarProdutoPorCodigo)
	api.Get("/produtos/categoria/:categoriaId", s.listarProdutosPorCategoria)
	api.Get("/produtos/:id", s.buscarProduto)
	api.Get("/produtos/:id/detalhes", s.buscarProduto)
	api.Post("/produtos", s.criarProduto)
	api.Put("/produtos/:id", s.atualizarProduto)
	api.Delete("/produtos/:id", s.excluirProduto)

	api.Get("/lotes", s.listarLotes)
	api.Get("/lotes/simples", s.listarLotes)
	api.Get("/lotes/estoque", s.listarLotesComEstoque)
	api.Get("/lotes/vencimento", s.listarLotesVencimento)
	api.Get("/lotes/produto/:produtoId", s.listarLotesPorProduto)
	api.Get("/lotes/:id", s.buscarLote)
	api.Get("/lotes/:id/detalhes", s.buscarLote)
	api.Post("/lotes", s.criarLote)
	api.Put("/lotes/:id", s.atualizarLote)
	api.Delete("/lotes/:id", s.excluirLote)

	api.Get("/movimentacoes", s.listarMovimentacoes)
	api.Get("/movimentacoes/simples", s.listarMovimentacoes)
	api.Get("/movimentacoes/lote/:loteId", s.listarMovimentacoes)
	api.Get("/movimentacoes/usuario/:usuarioId", s.listarMovimentacoes)
	api.Get("/movimentacoes/tipo/:tipo", s.listarMovimentacoes)
	api.Get("/movimentacoes/periodo", s.listarMovimentacoes)
	api.Get("/movimentacoes/:id", s.buscarMovimentacao)
	api.Get("/movimentacoes/:id/detalhes", s.detalhesMovimentacao)
	api.Post("/movimentacoes", s.registrarMovimentacao)
	api.Post("/movimentacoes/montagem", s.montarKit)
	api.Delete("/movimentacoes/:id", admin, s.excluirMovimentacao)

	api.Get("/dashboard/metrics", s.dashboardMetrics)
	api.Post("/etiquetas/lote", s.gerarEtiquetas)

	api.Get("/usuarios", admin, s.listarUsuarios)
	api.Get("/usuarios/simples", admin, s.listarUsuarios)
	api.Get("/usuarios/email/:email", admin, s.buscarUsuarioPorEmail)
	api.Get("/usuarios/:id", admin, s.buscarUsuario)
	api.Put("/usuarios/:id", admin, s.atualizarUsuario)
	api.Delete("/usuarios/:id", admin, s.excluirUsuario)
}
