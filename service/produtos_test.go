package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

func TestProdutosCriar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")

	t.Run("creates a plain produto", func(t *testing.T) {
		record, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
			Nome:        "Arroz 1kg",
			CategoriaID: alimentos.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, record.ID)
		assert.False(t, record.IsKit)
	})

	t.Run("unknown categoria is rejected", func(t *testing.T) {
		_, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
			Nome:        "Feijão 1kg",
			CategoriaID: 9999,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrCategoriaNotFound))
	})
}

func TestProdutosKits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")
	arroz := f.criarProduto(t, alimentos.ID, "Arroz 1kg")
	feijao := f.criarProduto(t, alimentos.ID, "Feijão 1kg")

	t.Run("kit needs a recipe", func(t *testing.T) {
		_, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
			Nome:        "Cesta Básica",
			CategoriaID: alimentos.ID,
			IsKit:       true,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrKitSemComponentes))
	})

	t.Run("component quantity must be positive", func(t *testing.T) {
		_, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
			Nome:        "Cesta Básica",
			CategoriaID: alimentos.ID,
			IsKit:       true,
			Componentes: []service.ComponenteInput{{ProdutoID: arroz.ID, Quantidade: 0}},
		})
		require.Error(t, err)
	})

	kit, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
		Nome:        "Cesta Básica",
		CategoriaID: alimentos.ID,
		IsKit:       true,
		Componentes: []service.ComponenteInput{
			{ProdutoID: arroz.ID, Quantidade: 2},
			{ProdutoID: feijao.ID, Quantidade: 1},
		},
	})
	require.NoError(t, err)

	t.Run("recipe is persisted", func(t *testing.T) {
		loaded, err := f.produtoSvc.Buscar(ctx, kit.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Componentes, 2)
	})

	t.Run("a kit cannot contain another kit", func(t *testing.T) {
		_, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
			Nome:        "Kit de Kits",
			CategoriaID: alimentos.ID,
			IsKit:       true,
			Componentes: []service.ComponenteInput{{ProdutoID: kit.ID, Quantidade: 1}},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrComponenteInvalido))
	})

	t.Run("update replaces the recipe", func(t *testing.T) {
		updated, err := f.produtoSvc.Atualizar(ctx, kit.ID, service.ProdutoInput{
			Nome:        "Cesta Básica",
			CategoriaID: alimentos.ID,
			IsKit:       true,
			Componentes: []service.ComponenteInput{{ProdutoID: arroz.ID, Quantidade: 3}},
		})
		require.NoError(t, err)
		require.Len(t, updated.Componentes, 1)
		assert.Equal(t, 3, updated.Componentes[0].Quantidade)
	})

	t.Run("turning the kit flag off clears the recipe", func(t *testing.T) {
		updated, err := f.produtoSvc.Atualizar(ctx, kit.ID, service.ProdutoInput{
			Nome:        "Cesta Básica",
			CategoriaID: alimentos.ID,
			IsKit:       false,
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Componentes)
	})
}

func TestProdutosExcluir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")
	arroz := f.criarProduto(t, alimentos.ID, "Arroz 1kg")
	feijao := f.criarProduto(t, alimentos.ID, "Feijão 1kg")
	livre := f.criarProduto(t, alimentos.ID, "Macarrão 500g")

	f.criarLote(t, arroz.ID, 10, time.Now())

	_, err := f.produtoSvc.Criar(ctx, service.ProdutoInput{
		Nome:        "Cesta Básica",
		CategoriaID: alimentos.ID,
		IsKit:       true,
		Componentes: []service.ComponenteInput{{ProdutoID: feijao.ID, Quantidade: 1}},
	})
	require.NoError(t, err)

	t.Run("blocked while lotes hold the produto", func(t *testing.T) {
		err := f.produtoSvc.Excluir(ctx, arroz.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrProdutoEmUso))
	})

	t.Run("blocked while a kit uses the produto", func(t *testing.T) {
		err := f.produtoSvc.Excluir(ctx, feijao.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrProdutoEmUso))
	})

	t.Run("an unreferenced produto goes away", func(t *testing.T) {
		require.NoError(t, f.produtoSvc.Excluir(ctx, livre.ID))
	})
}
