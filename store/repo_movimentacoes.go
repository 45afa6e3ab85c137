package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// MovimentacaoFilters narrows movement listings. Zero values match everything.
type MovimentacaoFilters struct {
	LoteID    int64
	UsuarioID int64
	Tipo      TipoMovimentacao
	De        *time.Time
	Ate       *time.Time
	// Limit/Offset page the listing when Limit is positive.
	Limit  int
	Offset int
}

// ProdutoSaida is an aggregate row: total SAIDA quantity per produto.
type ProdutoSaida struct {
	ProdutoID int64  `bun:"produto_id" json:"produtoId"`
	Nome      string `bun:"nome" json:"nome"`
	Total     int    `bun:"total" json:"total"`
}

// MovimentacaoDia is an aggregate row: movement count per day and tipo.
type MovimentacaoDia struct {
	Dia   string           `bun:"dia" json:"dia"`
	Tipo  TipoMovimentacao `bun:"tipo" json:"tipo"`
	Total int              `bun:"total" json:"total"`
}

// Movimentacoes is the stock movement repository.
type Movimentacoes interface {
	GetByID(ctx context.Context, id int64) (*Movimentacao, error)
	List(ctx context.Context, filters MovimentacaoFilters) ([]*Movimentacao, error)
	ListRecentes(ctx context.Context, limit int) ([]*Movimentacao, error)
	// CountAlemDaAbertura counts a lote's movements beyond its opening
	// ENTRADA, used to tell whether the lote is frozen.
	CountAlemDaAbertura(ctx context.Context, loteID int64) (int, error)
	CountPeriodo(ctx context.Context, de, ate time.Time) (int, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id int64) error
	Create(ctx context.Context, record *Movimentacao) (*Movimentacao, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Movimentacao) (*Movimentacao, error)
	TopSaidasPorProduto(ctx context.Context, limit int) ([]ProdutoSaida, error)
	PorDia(ctx context.Context, desde time.Time) ([]MovimentacaoDia, error)
}

type movimentacoes struct {
	db *bun.DB
}

var _ Movimentacoes = (*movimentacoes)(nil)

// NewMovimentacoesRepository returns a bun-backed Movimentacoes repository.
func NewMovimentacoesRepository(db *bun.DB) Movimentacoes {
	return &movimentacoes{db: db}
}

func (r *movimentacoes) GetByID(ctx context.Context, id int64) (*Movimentacao, error) {
	record := &Movimentacao{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Lote").
		Relation("Lote.Itens").
		Relation("Lote.Itens.Produto").
		Relation("Usuario").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovimentacaoNotFound.WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}
	return record, nil
}

func (r *movimentacoes) List(ctx context.Context, filters MovimentacaoFilters) ([]*Movimentacao, error) {
	var records []*Movimentacao
	q := r.db.NewSelect().
		Model(&records).
		Relation("Lote").
		Relation("Usuario")

	if filters.LoteID != 0 {
		q = q.Where("?TableAlias.lote_id = ?", filters.LoteID)
	}
	if filters.UsuarioID != 0 {
		q = q.Where("?TableAlias.usuario_id = ?", filters.UsuarioID)
	}
	if filters.Tipo != "" {
		q = q.Where("?TableAlias.tipo = ?", filters.Tipo)
	}
	if filters.De != nil {
		q = q.Where("?TableAlias.data_hora >= ?", *filters.De)
	}
	if filters.Ate != nil {
		q = q.Where("?TableAlias.data_hora <= ?", *filters.Ate)
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit).Offset(filters.Offset)
	}

	// the Lote and Usuario joins also expose an id column
	if err := q.Order("mov.data_hora DESC").Order("mov.id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *movimentacoes) ListRecentes(ctx context.Context, limit int) ([]*Movimentacao, error) {
	var records []*Movimentacao
	err := r.db.NewSelect().
		Model(&records).
		Relation("Lote").
		Relation("Usuario").
		Order("mov.data_hora DESC").
		Order("mov.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *movimentacoes) CountAlemDaAbertura(ctx context.Context, loteID int64) (int, error) {
	// COALESCE keeps lotes with no ENTRADA at all counted as frozen
	return r.db.NewSelect().
		Model((*Movimentacao)(nil)).
		Where("?TableAlias.lote_id = ?", loteID).
		Where("?TableAlias.id != COALESCE((SELECT MIN(m2.id) FROM movimentacoes m2 WHERE m2.lote_id = ? AND m2.tipo = ?), 0)", loteID, TipoEntrada).
		Count(ctx)
}

func (r *movimentacoes) CountPeriodo(ctx context.Context, de, ate time.Time) (int, error) {
	return r.db.NewSelect().
		Model((*Movimentacao)(nil)).
		Where("?TableAlias.data_hora >= ?", de).
		Where("?TableAlias.data_hora <= ?", ate).
		Count(ctx)
}

func (r *movimentacoes) DeleteTx(ctx context.Context, tx bun.IDB, id int64) error {
	res, err := tx.NewDelete().
		Model((*Movimentacao)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovimentacaoNotFound.WithMetadata(map[string]any{"id": id})
	}
	return nil
}

func (r *movimentacoes) Create(ctx context.Context, record *Movimentacao) (*Movimentacao, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *movimentacoes) CreateTx(ctx context.Context, tx bun.IDB, record *Movimentacao) (*Movimentacao, error) {
	if record.DataHora.IsZero() {
		record.DataHora = time.Now()
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *movimentacoes) TopSaidasPorProduto(ctx context.Context, limit int) ([]ProdutoSaida, error) {
	var rows []ProdutoSaida
	err := r.db.NewSelect().
		ColumnExpr("li.produto_id AS produto_id").
		ColumnExpr("p.nome AS nome").
		ColumnExpr("SUM(mov.quantidade) AS total").
		Model((*Movimentacao)(nil)).
		Join("JOIN lote_itens AS li ON li.lote_id = mov.lote_id").
		Join("JOIN produtos AS p ON p.id = li.produto_id").
		Where("mov.tipo = ?", TipoSaida).
		GroupExpr("li.produto_id, p.nome").
		OrderExpr("total DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *movimentacoes) PorDia(ctx context.Context, desde time.Time) ([]MovimentacaoDia, error) {
	var rows []MovimentacaoDia
	err := r.db.NewSelect().
		ColumnExpr("date(mov.data_hora) AS dia").
		ColumnExpr("mov.tipo AS tipo").
		ColumnExpr("COUNT(*) AS total").
		Model((*Movimentacao)(nil)).
		Where("mov.data_hora >= ?", desde).
		GroupExpr("date(mov.data_hora), mov.tipo").
		OrderExpr("dia ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
