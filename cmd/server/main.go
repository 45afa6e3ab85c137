package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/config"
	"github.com/solidario/estoque/logger"
	"github.com/solidario/estoque/server"
	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Debug)
	if err != nil {
		auth.DefaultLogger().Error("logger init: %v", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("fatal: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	db, err := store.Open(cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.CreateSchema(ctx, db); err != nil {
		return err
	}
	if cfg.SeedData {
		if err := store.Seed(ctx, db, log); err != nil {
			return err
		}
	}

	usuarios := auth.NewUsuariosRepository(db)
	categorias := store.NewCategoriasRepository(db)
	produtos := store.NewProdutosRepository(db)
	lotes := store.NewLotesRepository(db)
	movimentacoes := store.NewMovimentacoesRepository(db)

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.JWTIssuer, log)
	refresh := auth.NewRefreshService(auth.NewRefreshStore(db), cfg.RefreshTokenTTL).WithLogger(log)
	provider := auth.NewUserProvider(usuarios).WithLogger(log)
	auther := auth.NewAuthenticator(provider, tokens, refresh).WithLogger(log)

	srv := server.New(server.Options{
		Auther:        auther,
		Usuarios:      service.NewUsuarios(usuarios, refresh).WithLogger(log),
		Categorias:    service.NewCategorias(categorias, produtos).WithLogger(log),
		Produtos:      service.NewProdutos(produtos, categorias, lotes).WithLogger(log),
		Lotes:         service.NewLotes(db, lotes, produtos, movimentacoes).WithLogger(log),
		Movimentacoes: service.NewMovimentacoes(db, lotes, produtos, movimentacoes).WithLogger(log),
		Dashboard:     service.NewDashboard(categorias, produtos, lotes, movimentacoes).WithLogger(log),
		Etiquetas:     service.NewEtiquetas(lotes).WithLogger(log),
		Logger:        log,
		RefreshTTL:    cfg.RefreshTokenTTL,
		SecureCookies: cfg.SecureCookies,
		Debug:         cfg.Debug,
	})

	// periodic refresh token cleanup
	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go purgeExpiredTokens(cleanupCtx, refresh, log)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Listen(":" + cfg.Port)
	}()
	log.Info("listening on :%s", cfg.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		log.Info("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeExpiredTokens(ctx context.Context, refresh *auth.RefreshService, log *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := refresh.PurgeExpired(ctx)
			if err != nil {
				log.Warn("refresh token purge: %v", err)
				continue
			}
			if n > 0 {
				log.Debug("purged %d expired refresh tokens", n)
			}
		}
	}
}
