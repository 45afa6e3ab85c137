package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrUsuarioNotFound is returned when a user lookup yields no record.
var ErrUsuarioNotFound = errors.New("Usuário não encontrado", errors.CategoryNotFound).
	WithTextCode("USUARIO_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// Usuarios is the user repository.
type Usuarios interface {
	GetByID(ctx context.Context, id int64) (*Usuario, error)
	GetByEmail(ctx context.Context, email string) (*Usuario, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filters UsuarioFilters) ([]*Usuario, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, record *Usuario) (*Usuario, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Usuario) (*Usuario, error)
	Update(ctx context.Context, record *Usuario) (*Usuario, error)
	Delete(ctx context.Context, id int64) error
}

// UsuarioFilters narrows List results. Zero values match everything.
type UsuarioFilters struct {
	Nome   string
	Email  string
	Perfil Perfil
}

type usuarios struct {
	db *bun.DB
}

var _ Usuarios = (*usuarios)(nil)

// NewUsuariosRepository returns a bun-backed Usuarios repository.
func NewUsuariosRepository(db *bun.DB) Usuarios {
	return &usuarios{db: db}
}

func (r *usuarios) GetByID(ctx context.Context, id int64) (*Usuario, error) {
	record := &Usuario{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsuarioNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}
	return record, nil
}

func (r *usuarios) GetByEmail(ctx context.Context, email string) (*Usuario, error) {
	record := &Usuario{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsuarioNotFound.WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}
	return record, nil
}

func (r *usuarios) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.db.NewSelect().
		Model((*Usuario)(nil)).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Exists(ctx)
}

func (r *usuarios) List(ctx context.Context, filters UsuarioFilters) ([]*Usuario, error) {
	var records []*Usuario
	q := r.db.NewSelect().Model(&records)

	if filters.Nome != "" {
		q = q.Where("lower(?TableAlias.nome) LIKE ?", "%"+strings.ToLower(filters.Nome)+"%")
	}
	if filters.Email != "" {
		q = q.Where("lower(?TableAlias.email) LIKE ?", "%"+strings.ToLower(filters.Email)+"%")
	}
	if filters.Perfil != "" {
		q = q.Where("?TableAlias.perfil = ?", filters.Perfil)
	}

	if err := q.Order("nome ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *usuarios) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Usuario)(nil)).Count(ctx)
}

func (r *usuarios) Create(ctx context.Context, record *Usuario) (*Usuario, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *usuarios) CreateTx(ctx context.Context, tx bun.IDB, record *Usuario) (*Usuario, error) {
	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	record.UpdatedAt = &now

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *usuarios) Update(ctx context.Context, record *Usuario) (*Usuario, error) {
	now := time.Now()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrUsuarioNotFound.WithMetadata(map[string]any{"id": record.ID})
	}
	return record, nil
}

func (r *usuarios) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Usuario)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUsuarioNotFound.WithMetadata(map[string]any{"id": id})
	}
	return nil
}
