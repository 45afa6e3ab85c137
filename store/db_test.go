package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

// testDB opens a fresh shared in-memory database with the full schema and
// every table emptied.
func testDB(t *testing.T) *bun.DB {
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

	return db
}

func criarCategoria(t *testing.T, db *bun.DB, nome string) *store.Categoria {
	t.Helper()
	record, err := store.NewCategoriasRepository(db).Create(context.Background(), &store.Categoria{
		Nome:  nome,
		Icone: "package",
	})
	require.NoError(t, err)
	return record
}

func criarProduto(t *testing.T, db *bun.DB, categoriaID int64, nome string) *store.Produto {
	t.Helper()
	record, err := store.NewProdutosRepository(db).Create(context.Background(), &store.Produto{
		Nome:        nome,
		CategoriaID: categoriaID,
	})
	require.NoError(t, err)
	return record
}

func criarLote(t *testing.T, db *bun.DB, produtoID int64, quantidade int, dataEntrada time.Time) *store.Lote {
	t.Helper()
	record, err := store.NewLotesRepository(db).Create(context.Background(), &store.Lote{
		QuantidadeInicial: quantidade,
		QuantidadeAtual:   quantidade,
		DataEntrada:       dataEntrada,
		UnidadeMedida:     store.UnidadeUnidade,
		Itens: []*store.LoteItem{
			{ProdutoID: produtoID, Quantidade: quantidade},
		},
	})
	require.NoError(t, err)
	return record
}

func criarUsuario(t *testing.T, db *bun.DB) *auth.Usuario {
	t.Helper()
	record, err := auth.NewUsuariosRepository(db).Create(context.Background(), &auth.Usuario{
		Nome:      "Maria",
		Email:     "maria@ong.com",
		SenhaHash: "hash",
		Perfil:    auth.PerfilAdmin,
	})
	require.NoError(t, err)
	return record
}
