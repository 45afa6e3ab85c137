package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// LoteFilters narrows lote listings. Zero values match everything.
type LoteFilters struct {
	ProdutoID   int64
	CategoriaID int64
	ComEstoque  bool
	// Limit/Offset page the listing when Limit is positive.
	Limit  int
	Offset int
}

// ProdutoEstoque is an aggregate row: remaining item stock per produto.
type ProdutoEstoque struct {
	ProdutoID int64  `bun:"produto_id" json:"produtoId"`
	Nome      string `bun:"nome" json:"nome"`
	Total     int    `bun:"total" json:"total"`
}

// Lotes is the stock batch repository.
type Lotes interface {
	GetByID(ctx context.Context, id int64) (*Lote, error)
	// GetByIDTx is the transactional variant, required when the caller
	// already holds a write transaction.
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*Lote, error)
	List(ctx context.Context, filters LoteFilters) ([]*Lote, error)
	// ListDisponiveisPorProduto returns lotes whose item line for the
	// produto still has stock, oldest entry date first.
	ListDisponiveisPorProduto(ctx context.Context, produtoID int64) ([]*Lote, error)
	ListDisponiveisPorProdutoTx(ctx context.Context, tx bun.IDB, produtoID int64) ([]*Lote, error)
	// ListComValidadeAte returns lotes still holding stock whose items
	// expire on or before the cutoff.
	ListComValidadeAte(ctx context.Context, cutoff time.Time) ([]*Lote, error)
	Count(ctx context.Context) (int, error)
	// EstoqueTotal sums quantidadeAtual across every lote.
	EstoqueTotal(ctx context.Context) (int, error)
	// EstoquePorProduto sums the remaining item quantities per produto.
	EstoquePorProduto(ctx context.Context) ([]ProdutoEstoque, error)
	Create(ctx context.Context, record *Lote) (*Lote, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Lote) (*Lote, error)
	Update(ctx context.Context, record *Lote) (*Lote, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *Lote) (*Lote, error)
	// UpdateItemTx persists an item line's remaining quantity.
	UpdateItemTx(ctx context.Context, tx bun.IDB, item *LoteItem) error
	Delete(ctx context.Context, id int64) error
}

type lotes struct {
	db *bun.DB
}

var _ Lotes = (*lotes)(nil)

// NewLotesRepository returns a bun-backed Lotes repository.
func NewLotesRepository(db *bun.DB) Lotes {
	return &lotes{db: db}
}

func (r *lotes) GetByID(ctx context.Context, id int64) (*Lote, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

func (r *lotes) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*Lote, error) {
	record := &Lote{}
	err := tx.NewSelect().
		Model(record).
		Relation("Itens").
		Relation("Itens.Produto").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoteNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}
	return record, nil
}

func (r *lotes) List(ctx context.Context, filters LoteFilters) ([]*Lote, error) {
	var records []*Lote
	q := r.db.NewSelect().
		Model(&records).
		Relation("Itens").
		Relation("Itens.Produto")

	if filters.ProdutoID != 0 {
		q = q.Where("EXISTS (SELECT 1 FROM lote_itens li WHERE li.lote_id = ?TableAlias.id AND li.produto_id = ?)", filters.ProdutoID)
	}
	if filters.CategoriaID != 0 {
		q = q.Where("EXISTS (SELECT 1 FROM lote_itens li JOIN produtos p ON p.id = li.produto_id WHERE li.lote_id = ?TableAlias.id AND p.categoria_id = ?)", filters.CategoriaID)
	}
	if filters.ComEstoque {
		q = q.Where("?TableAlias.quantidade_atual > 0")
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := q.Order("data_entrada DESC").Order("id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *lotes) ListDisponiveisPorProduto(ctx context.Context, produtoID int64) ([]*Lote, error) {
	return r.ListDisponiveisPorProdutoTx(ctx, r.db, produtoID)
}

func (r *lotes) ListDisponiveisPorProdutoTx(ctx context.Context, tx bun.IDB, produtoID int64) ([]*Lote, error) {
	var records []*Lote
	err := tx.NewSelect().
		Model(&records).
		Relation("Itens").
		Where("EXISTS (SELECT 1 FROM lote_itens li WHERE li.lote_id = ?TableAlias.id AND li.produto_id = ? AND li.quantidade > 0)", produtoID).
		Where("?TableAlias.quantidade_atual > 0").
		Order("data_entrada ASC").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *lotes) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Lote)(nil)).Count(ctx)
}

func (r *lotes) EstoqueTotal(ctx context.Context) (int, error) {
	var total int
	err := r.db.NewSelect().
		ColumnExpr("COALESCE(SUM(lot.quantidade_atual), 0)").
		Model((*Lote)(nil)).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *lotes) EstoquePorProduto(ctx context.Context) ([]ProdutoEstoque, error) {
	var rows []ProdutoEstoque
	err := r.db.NewSelect().
		ColumnExpr("lit.produto_id AS produto_id").
		ColumnExpr("p.nome AS nome").
		ColumnExpr("COALESCE(SUM(lit.quantidade), 0) AS total").
		Model((*LoteItem)(nil)).
		Join("JOIN produtos AS p ON p.id = lit.produto_id").
		GroupExpr("lit.produto_id, p.nome").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *lotes) Create(ctx context.Context, record *Lote) (*Lote, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *lotes) CreateTx(ctx context.Context, tx bun.IDB, record *Lote) (*Lote, error) {
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	for _, item := range record.Itens {
		item.LoteID = record.ID
	}
	if len(record.Itens) > 0 {
		if _, err := tx.NewInsert().Model(&record.Itens).Exec(ctx); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (r *lotes) Update(ctx context.Context, record *Lote) (*Lote, error) {
	return r.UpdateTx(ctx, r.db, record)
}

func (r *lotes) UpdateTx(ctx context.Context, tx bun.IDB, record *Lote) (*Lote, error) {
	res, err := tx.NewUpdate().
		Model(record).
		Column("quantidade_inicial", "quantidade_atual", "data_entrada", "unidade_medida", "observacoes").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrLoteNotFound.WithMetadata(map[string]any{"id": record.ID})
	}
	return record, nil
}

func (r *lotes) UpdateItemTx(ctx context.Context, tx bun.IDB, item *LoteItem) error {
	res, err := tx.NewUpdate().
		Model(item).
		Column("quantidade").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLoteNotFound.WithMetadata(map[string]any{"loteId": item.LoteID, "itemId": item.ID})
	}
	return nil
}

func (r *lotes) Delete(ctx context.Context, id int64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*LoteItem)(nil)).
			Where("lote_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*Lote)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrLoteNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil
	})
	return err
}

func (r *lotes) ListComValidadeAte(ctx context.Context, cutoff time.Time) ([]*Lote, error) {
	var records []*Lote
	err := r.db.NewSelect().
		Model(&records).
		Relation("Itens").
		Relation("Itens.Produto").
		Where("?TableAlias.quantidade_atual > 0").
		Where("EXISTS (SELECT 1 FROM lote_itens li WHERE li.lote_id = ?TableAlias.id AND li.data_validade IS NOT NULL AND li.data_validade <= ?)", cutoff).
		Order("data_entrada ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
