package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Categorias is the category repository.
type Categorias interface {
	GetByID(ctx context.Context, id int64) (*Categoria, error)
	ExistsByNome(ctx context.Context, nome string) (bool, error)
	List(ctx context.Context, nome string) ([]*Categoria, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, record *Categoria) (*Categoria, error)
	Update(ctx context.Context, record *Categoria) (*Categoria, error)
	Delete(ctx context.Context, id int64) error
}

type categorias struct {
	db *bun.DB
}

var _ Categorias = (*categorias)(nil)

// NewCategoriasRepository returns a bun-backed Categorias repository.
func NewCategoriasRepository(db *bun.DB) Categorias {
	return &categorias{db: db}
}

func (r *categorias) GetByID(ctx context.Context, id int64) (*Categoria, error) {
	record := &Categoria{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoriaNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}
	return record, nil
}

func (r *categorias) ExistsByNome(ctx context.Context, nome string) (bool, error) {
	return r.db.NewSelect().
		Model((*Categoria)(nil)).
		Where("lower(?TableAlias.nome) = ?", strings.ToLower(strings.TrimSpace(nome))).
		Exists(ctx)
}

func (r *categorias) List(ctx context.Context, nome string) ([]*Categoria, error) {
	var records []*Categoria
	q := r.db.NewSelect().Model(&records)

	if nome != "" {
		q = q.Where("lower(?TableAlias.nome) LIKE ?", "%"+strings.ToLower(nome)+"%")
	}

	if err := q.Order("nome ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *categorias) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Categoria)(nil)).Count(ctx)
}

func (r *categorias) Create(ctx context.Context, record *Categoria) (*Categoria, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *categorias) Update(ctx context.Context, record *Categoria) (*Categoria, error) {
	res, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrCategoriaNotFound.WithMetadata(map[string]any{"id": record.ID})
	}
	return record, nil
}

func (r *categorias) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Categoria)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoriaNotFound.WithMetadata(map[string]any{"id": id})
	}
	return nil
}
