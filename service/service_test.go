package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

// fixture wires every repository and service against a clean shared
// in-memory database.
type fixture struct {
	db *bun.DB

	categorias    store.Categorias
	produtos      store.Produtos
	lotes         store.Lotes
	movimentacoes store.Movimentacoes
	usuarios      auth.Usuarios

	categoriaSvc    *service.Categorias
	produtoSvc      *service.Produtos
	loteSvc         *service.Lotes
	movimentacaoSvc *service.Movimentacoes
	dashboardSvc    *service.Dashboard
	usuarioSvc      *service.Usuarios

	usuario *auth.Usuario
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateSchema(ctx, db))

	for _, model := range []any{
		(*store.Movimentacao)(nil),
		(*store.LoteItem)(nil),
		(*store.Lote)(nil),
		(*store.ComposicaoProduto)(nil),
		(*store.Produto)(nil),
		(*store.Categoria)(nil),
		(*auth.RefreshToken)(nil),
		(*auth.Usuario)(nil),
	} {
		_, err := db.NewDelete().Model(model).Where("1 = 1").Exec(ctx)
		require.NoError(t, err)
	}

	f := &fixture{
		db:            db,
		categorias:    store.NewCategoriasRepository(db),
		produtos:      store.NewProdutosRepository(db),
		lotes:         store.NewLotesRepository(db),
		movimentacoes: store.NewMovimentacoesRepository(db),
		usuarios:      auth.NewUsuariosRepository(db),
	}

	f.categoriaSvc = service.NewCategorias(f.categorias, f.produtos)
	f.produtoSvc = service.NewProdutos(f.produtos, f.categorias, f.lotes)
	f.loteSvc = service.NewLotes(db, f.lotes, f.produtos, f.movimentacoes)
	f.movimentacaoSvc = service.NewMovimentacoes(db, f.lotes, f.produtos, f.movimentacoes)
	f.dashboardSvc = service.NewDashboard(f.categorias, f.produtos, f.lotes, f.movimentacoes)
	f.usuarioSvc = service.NewUsuarios(f.usuarios, auth.NewRefreshService(auth.NewRefreshStore(db), time.Hour))

	f.usuario, err = f.usuarios.Create(ctx, &auth.Usuario{
		Nome:      "Maria",
		Email:     "maria@ong.com",
		SenhaHash: "hash",
		Perfil:    auth.PerfilAdmin,
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) criarCategoria(t *testing.T, nome string) *store.Categoria {
	t.Helper()
	record, err := f.categorias.Create(context.Background(), &store.Categoria{Nome: nome})
	require.NoError(t, err)
	return record
}

func (f *fixture) criarProduto(t *testing.T, categoriaID int64, nome string) *store.Produto {
	t.Helper()
	record, err := f.produtos.Create(context.Background(), &store.Produto{
		Nome:        nome,
		CategoriaID: categoriaID,
	})
	require.NoError(t, err)
	return record
}

// criarLote goes through the service so the opening ENTRADA movement is
// recorded like production entries.
func (f *fixture) criarLote(t *testing.T, produtoID int64, quantidade int, dataEntrada time.Time) *store.Lote {
	t.Helper()
	record, err := f.loteSvc.Criar(context.Background(), service.LoteInput{
		Itens:         []service.LoteItemInput{{ProdutoID: produtoID, Quantidade: quantidade}},
		DataEntrada:   &dataEntrada,
		UnidadeMedida: store.UnidadeUnidade,
	}, f.usuario.ID)
	require.NoError(t, err)
	return record
}
