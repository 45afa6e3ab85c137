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

func TestLotesCriar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")
	arroz := f.criarProduto(t, alimentos.ID, "Arroz 1kg")
	feijao := f.criarProduto(t, alimentos.ID, "Feijão 1kg")

	t.Run("sums items and records the opening entrada", func(t *testing.T) {
		lote, err := f.loteSvc.Criar(ctx, service.LoteInput{
			Itens: []service.LoteItemInput{
				{ProdutoID: arroz.ID, Quantidade: 10},
				{ProdutoID: feijao.ID, Quantidade: 5},
			},
			UnidadeMedida: store.UnidadeUnidade,
			Observacoes:   "Doação da campanha de inverno",
		}, f.usuario.ID)
		require.NoError(t, err)

		assert.Equal(t, 15, lote.QuantidadeInicial)
		assert.Equal(t, 15, lote.QuantidadeAtual)
		require.Len(t, lote.Itens, 2)

		movs, err := f.movimentacaoSvc.Listar(ctx, store.MovimentacaoFilters{LoteID: lote.ID})
		require.NoError(t, err)
		require.Len(t, movs, 1)
		assert.Equal(t, store.TipoEntrada, movs[0].Tipo)
		assert.Equal(t, 15, movs[0].Quantidade)
		assert.Equal(t, f.usuario.ID, movs[0].UsuarioID)
	})

	t.Run("rejects an empty lote", func(t *testing.T) {
		_, err := f.loteSvc.Criar(ctx, service.LoteInput{
			UnidadeMedida: store.UnidadeUnidade,
		}, f.usuario.ID)
		require.Error(t, err)
	})

	t.Run("rejects an unknown unidade", func(t *testing.T) {
		_, err := f.loteSvc.Criar(ctx, service.LoteInput{
			Itens:         []service.LoteItemInput{{ProdutoID: arroz.ID, Quantidade: 1}},
			UnidadeMedida: "TONELADA",
		}, f.usuario.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrUnidadeMedidaInvalida))
	})

	t.Run("rejects an unknown produto", func(t *testing.T) {
		_, err := f.loteSvc.Criar(ctx, service.LoteInput{
			Itens:         []service.LoteItemInput{{ProdutoID: 9999, Quantidade: 1}},
			UnidadeMedida: store.UnidadeUnidade,
		}, f.usuario.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrProdutoNotFound))
	})
}

func TestLotesAtualizar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")
	arroz := f.criarProduto(t, alimentos.ID, "Arroz 1kg")
	feijao := f.criarProduto(t, alimentos.ID, "Feijão 1kg")

	lote := f.criarLote(t, arroz.ID, 10, time.Now())

	t.Run("rewrites items and syncs the opening entrada", func(t *testing.T) {
		updated, err := f.loteSvc.Atualizar(ctx, lote.ID, service.LoteInput{
			Itens: []service.LoteItemInput{
				{ProdutoID: arroz.ID, Quantidade: 8},
				{ProdutoID: feijao.ID, Quantidade: 4},
			},
			UnidadeMedida: store.UnidadeUnidade,
		})
		require.NoError(t, err)

		assert.Equal(t, 12, updated.QuantidadeInicial)
		assert.Equal(t, 12, updated.QuantidadeAtual)
		require.Len(t, updated.Itens, 2)

		movs, err := f.movimentacaoSvc.Listar(ctx, store.MovimentacaoFilters{LoteID: lote.ID})
		require.NoError(t, err)
		require.Len(t, movs, 1)
		assert.Equal(t, 12, movs[0].Quantidade)
	})

	t.Run("freezes after stock moved", func(t *testing.T) {
		_, err := f.movimentacaoSvc.Registrar(ctx, service.RegistrarInput{
			LoteID:     lote.ID,
			Tipo:       store.TipoSaida,
			Quantidade: 2,
		}, f.usuario.ID)
		require.NoError(t, err)

		_, err = f.loteSvc.Atualizar(ctx, lote.ID, service.LoteInput{
			Itens:         []service.LoteItemInput{{ProdutoID: arroz.ID, Quantidade: 3}},
			UnidadeMedida: store.UnidadeUnidade,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrLoteComMovimentacoes))
	})
}

func TestLotesExcluir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")
	arroz := f.criarProduto(t, alimentos.ID, "Arroz 1kg")

	t.Run("an untouched lote is removed with its movement", func(t *testing.T) {
		lote := f.criarLote(t, arroz.ID, 10, time.Now())
		require.NoError(t, f.loteSvc.Excluir(ctx, lote.ID))

		_, err := f.loteSvc.Buscar(ctx, lote.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrLoteNotFound))

		movs, err := f.movimentacaoSvc.Listar(ctx, store.MovimentacaoFilters{LoteID: lote.ID})
		require.NoError(t, err)
		assert.Empty(t, movs)
	})

	t.Run("a moved lote is frozen", func(t *testing.T) {
		lote := f.criarLote(t, arroz.ID, 10, time.Now())
		_, err := f.movimentacaoSvc.Registrar(ctx, service.RegistrarInput{
			LoteID:     lote.ID,
			Tipo:       store.TipoAjustePerda,
			Quantidade: 1,
		}, f.usuario.ID)
		require.NoError(t, err)

		err = f.loteSvc.Excluir(ctx, lote.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrLoteComMovimentacoes))
	})
}

func TestLotesListarVencimento(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alimentos := f.criarCategoria(t, "Alimentos")
	arroz := f.criarProduto(t, alimentos.ID, "Arroz 1kg")

	vencendo := time.Now().AddDate(0, 0, 10)
	_, err := f.loteSvc.Criar(ctx, service.LoteInput{
		Itens: []service.LoteItemInput{
			{ProdutoID: arroz.ID, Quantidade: 5, DataValidade: &vencendo},
		},
		UnidadeMedida: store.UnidadeUnidade,
	}, f.usuario.ID)
	require.NoError(t, err)

	f.criarLote(t, arroz.ID, 3, time.Now())

	lotes, err := f.loteSvc.ListarVencimento(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, lotes, 1)

	lotes, err = f.loteSvc.ListarVencimento(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, lotes)
}
