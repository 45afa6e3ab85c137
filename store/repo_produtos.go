package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ProdutoFilters narrows produto listings. Zero values match everything.
type ProdutoFilters struct {
	Nome        string
	CategoriaID int64
	IsKit       *bool
	// Limit/Offset page the listing when Limit is positive.
	Limit  int
	Offset int
}

// Produtos is the product repository.
type Produtos interface {
	GetByID(ctx context.Context, id int64) (*Produto, error)
	GetByCodigoBarrasFabricante(ctx context.Context, codigo string) (*Produto, error)
	List(ctx context.Context, filters ProdutoFilters) ([]*Produto, error)
	Count(ctx context.Context) (int, error)
	CountByCategoria(ctx context.Context, categoriaID int64) (int, error)
	Create(ctx context.Context, record *Produto) (*Produto, error)
	Update(ctx context.Context, record *Produto) (*Produto, error)
	Delete(ctx context.Context, id int64) error
	ReplaceComponentes(ctx context.Context, produtoID int64, componentes []*ComposicaoProduto) error
	IsComponenteDeKit(ctx context.Context, produtoID int64) (bool, error)
}

type produtos struct {
	db *bun.DB
}

var _ Produtos = (*produtos)(nil)

// NewProdutosRepository returns a bun-backed Produtos repository.
func NewProdutosRepository(db *bun.DB) Produtos {
	return &produtos{db: db}
}

func (r *produtos) GetByID(ctx context.Context, id int64) (*Produto, error) {
	record := &Produto{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Categoria").
		Relation("Componentes").
		Relation("Componentes.Componente").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProdutoNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}
	return record, nil
}

func (r *produtos) GetByCodigoBarrasFabricante(ctx context.Context, codigo string) (*Produto, error) {
	record := &Produto{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Categoria").
		Where("?TableAlias.codigo_barras_fabricante = ?", strings.TrimSpace(codigo)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProdutoNotFound.WithMetadata(map[string]any{"codigoBarras": codigo})
		}
		return nil, err
	}
	return record, nil
}

func (r *produtos) List(ctx context.Context, filters ProdutoFilters) ([]*Produto, error) {
	var records []*Produto
	q := r.db.NewSelect().
		Model(&records).
		Relation("Categoria").
		Relation("Componentes")

	if filters.Nome != "" {
		q = q.Where("lower(?TableAlias.nome) LIKE ?", "%"+strings.ToLower(filters.Nome)+"%")
	}
	if filters.CategoriaID != 0 {
		q = q.Where("?TableAlias.categoria_id = ?", filters.CategoriaID)
	}
	if filters.IsKit != nil {
		q = q.Where("?TableAlias.is_kit = ?", *filters.IsKit)
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := q.OrderExpr("?TableAlias.nome ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *produtos) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Produto)(nil)).Count(ctx)
}

func (r *produtos) CountByCategoria(ctx context.Context, categoriaID int64) (int, error) {
	return r.db.NewSelect().
		Model((*Produto)(nil)).
		Where("?TableAlias.categoria_id = ?", categoriaID).
		Count(ctx)
}

func (r *produtos) Create(ctx context.Context, record *Produto) (*Produto, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		for _, c := range record.Componentes {
			c.ProdutoPaiID = record.ID
		}
		if len(record.Componentes) > 0 {
			if _, err := tx.NewInsert().Model(&record.Componentes).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *produtos) Update(ctx context.Context, record *Produto) (*Produto, error) {
	res, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrProdutoNotFound.WithMetadata(map[string]any{"id": record.ID})
	}
	return record, nil
}

func (r *produtos) Delete(ctx context.Context, id int64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ComposicaoProduto)(nil)).
			Where("produto_pai_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*Produto)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrProdutoNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil
	})
	return err
}

// ReplaceComponentes swaps the kit's recipe for the given lines atomically.
func (r *produtos) ReplaceComponentes(ctx context.Context, produtoID int64, componentes []*ComposicaoProduto) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ComposicaoProduto)(nil)).
			Where("produto_pai_id = ?", produtoID).
			Exec(ctx); err != nil {
			return err
		}
		for _, c := range componentes {
			c.ID = 0
			c.ProdutoPaiID = produtoID
		}
		if len(componentes) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&componentes).Exec(ctx)
		return err
	})
}

func (r *produtos) IsComponenteDeKit(ctx context.Context, produtoID int64) (bool, error) {
	return r.db.NewSelect().
		Model((*ComposicaoProduto)(nil)).
		Where("?TableAlias.produto_componente_id = ?", produtoID).
		Exists(ctx)
}
