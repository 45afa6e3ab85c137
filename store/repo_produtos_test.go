package store_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidario/estoque/store"
)

func TestProdutosRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := store.NewProdutosRepository(db)

	alimentos := criarCategoria(t, db, "Alimentos")
	higiene := criarCategoria(t, db, "Higiene")

	arroz := criarProduto(t, db, alimentos.ID, "Arroz 1kg")
	feijao := criarProduto(t, db, alimentos.ID, "Feijão 1kg")
	sabonete := criarProduto(t, db, higiene.ID, "Sabonete")

	t.Run("get by id loads the categoria", func(t *testing.T) {
		record, err := repo.GetByID(ctx, arroz.ID)
		require.NoError(t, err)
		require.NotNil(t, record.Categoria)
		assert.Equal(t, "Alimentos", record.Categoria.Nome)
	})

	t.Run("get by codigo de barras do fabricante", func(t *testing.T) {
		arroz.CodigoBarrasFabricante = "7891234567890"
		_, err := repo.Update(ctx, arroz)
		require.NoError(t, err)

		record, err := repo.GetByCodigoBarrasFabricante(ctx, "7891234567890")
		require.NoError(t, err)
		assert.Equal(t, arroz.ID, record.ID)

		_, err = repo.GetByCodigoBarrasFabricante(ctx, "0000000000000")
		assert.True(t, errors.Is(err, store.ErrProdutoNotFound))
	})

	t.Run("list filters by categoria", func(t *testing.T) {
		records, err := repo.List(ctx, store.ProdutoFilters{CategoriaID: higiene.ID})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Sabonete", records[0].Nome)
	})

	t.Run("list pages with limit and offset", func(t *testing.T) {
		// ordered by nome: Arroz, Feijão, Sabonete
		pagina, err := repo.List(ctx, store.ProdutoFilters{Limit: 2})
		require.NoError(t, err)
		require.Len(t, pagina, 2)
		assert.Equal(t, arroz.ID, pagina[0].ID)

		resto, err := repo.List(ctx, store.ProdutoFilters{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, resto, 1)
		assert.Equal(t, sabonete.ID, resto[0].ID)
	})

	t.Run("count by categoria", func(t *testing.T) {
		n, err := repo.CountByCategoria(ctx, alimentos.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("kit recipe round trip", func(t *testing.T) {
		kit, err := repo.Create(ctx, &store.Produto{
			Nome:        "Cesta Básica",
			CategoriaID: alimentos.ID,
			IsKit:       true,
			Componentes: []*store.ComposicaoProduto{
				{ComponenteID: arroz.ID, Quantidade: 2},
				{ComponenteID: feijao.ID, Quantidade: 1},
			},
		})
		require.NoError(t, err)

		loaded, err := repo.GetByID(ctx, kit.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Componentes, 2)
		require.NotNil(t, loaded.Componentes[0].Componente)

		isKit := true
		kits, err := repo.List(ctx, store.ProdutoFilters{IsKit: &isKit})
		require.NoError(t, err)
		require.Len(t, kits, 1)
		assert.Equal(t, "Cesta Básica", kits[0].Nome)

		t.Run("components are flagged", func(t *testing.T) {
			ok, err := repo.IsComponenteDeKit(ctx, arroz.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = repo.IsComponenteDeKit(ctx, sabonete.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("replace swaps the whole recipe", func(t *testing.T) {
			err := repo.ReplaceComponentes(ctx, kit.ID, []*store.ComposicaoProduto{
				{ComponenteID: arroz.ID, Quantidade: 5},
			})
			require.NoError(t, err)

			reloaded, err := repo.GetByID(ctx, kit.ID)
			require.NoError(t, err)
			require.Len(t, reloaded.Componentes, 1)
			assert.Equal(t, 5, reloaded.Componentes[0].Quantidade)
		})

		t.Run("delete removes the recipe too", func(t *testing.T) {
			require.NoError(t, repo.Delete(ctx, kit.ID))

			ok, err := repo.IsComponenteDeKit(ctx, arroz.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	})
}
