package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/solidario/estoque/auth"
)

// Open connects to the SQLite database at dsn.
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates every table the app uses if missing. Order matters
// for the foreign key references.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*auth.Usuario)(nil),
		(*auth.RefreshToken)(nil),
		(*Categoria)(nil),
		(*Produto)(nil),
		(*ComposicaoProduto)(nil),
		(*Lote)(nil),
		(*LoteItem)(nil),
		(*Movimentacao)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
