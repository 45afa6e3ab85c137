package service_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/service"
)

func TestCategoriasCriar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("creates a valid categoria", func(t *testing.T) {
		record, err := f.categoriaSvc.Criar(ctx, service.CategoriaInput{
			Nome:  "Alimentos",
			Icone: "apple",
		})
		require.NoError(t, err)
		assert.NotZero(t, record.ID)
		assert.Equal(t, "Alimentos", record.Nome)
	})

	t.Run("rejects a duplicate nome", func(t *testing.T) {
		_, err := f.categoriaSvc.Criar(ctx, service.CategoriaInput{Nome: "Alimentos"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrCategoriaDuplicada))
	})

	t.Run("rejects a too-short nome", func(t *testing.T) {
		_, err := f.categoriaSvc.Criar(ctx, service.CategoriaInput{Nome: "A"})
		require.Error(t, err)
	})
}

func TestCategoriasAtualizar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alimentos := f.criarCategoria(t, "Alimentos")
	f.criarCategoria(t, "Higiene")

	t.Run("renames when the new nome is free", func(t *testing.T) {
		record, err := f.categoriaSvc.Atualizar(ctx, alimentos.ID, service.CategoriaInput{
			Nome:      "Alimentos Não Perecíveis",
			Descricao: "Arroz, feijão e enlatados",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alimentos Não Perecíveis", record.Nome)
	})

	t.Run("refuses to steal another categoria's nome", func(t *testing.T) {
		_, err := f.categoriaSvc.Atualizar(ctx, alimentos.ID, service.CategoriaInput{Nome: "Higiene"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrCategoriaDuplicada))
	})

	t.Run("keeping the own nome is fine", func(t *testing.T) {
		_, err := f.categoriaSvc.Atualizar(ctx, alimentos.ID, service.CategoriaInput{
			Nome:  "Alimentos Não Perecíveis",
			Icone: "basket",
		})
		require.NoError(t, err)
	})
}

func TestCategoriasExcluir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alimentos := f.criarCategoria(t, "Alimentos")
	vazia := f.criarCategoria(t, "Vazia")
	f.criarProduto(t, alimentos.ID, "Arroz 1kg")

	t.Run("blocked while produtos reference it", func(t *testing.T) {
		err := f.categoriaSvc.Excluir(ctx, alimentos.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrCategoriaEmUso))
	})

	t.Run("an unused categoria goes away", func(t *testing.T) {
		require.NoError(t, f.categoriaSvc.Excluir(ctx, vazia.ID))

		_, err := f.categoriaSvc.Buscar(ctx, vazia.ID)
		require.Error(t, err)
	})
}
