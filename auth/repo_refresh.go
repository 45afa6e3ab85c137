package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type refreshStore struct {
	db *bun.DB
}

var _ RefreshStore = (*refreshStore)(nil)

// NewRefreshStore returns a bun-backed RefreshStore.
func NewRefreshStore(db *bun.DB) RefreshStore {
	return &refreshStore{db: db}
}

func (r *refreshStore) Create(ctx context.Context, token *RefreshToken) (*RefreshToken, error) {
	now := time.Now()
	if token.CreatedAt == nil {
		token.CreatedAt = &now
	}

	if _, err := r.db.NewInsert().Model(token).Exec(ctx); err != nil {
		return nil, err
	}
	return token, nil
}

func (r *refreshStore) FindByValue(ctx context.Context, value string) (*RefreshToken, error) {
	record := &RefreshToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.value = ?", value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}
	return record, nil
}

func (r *refreshStore) MarkRevoked(ctx context.Context, value string) error {
	res, err := r.db.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("value = ?", value).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRefreshInvalid
	}
	return nil
}

func (r *refreshStore) RevokeAllForUsuario(ctx context.Context, usuarioID int64) error {
	_, err := r.db.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("usuario_id = ?", usuarioID).
		Where("revoked = ?", false).
		Exec(ctx)
	return err
}

func (r *refreshStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
