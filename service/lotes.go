package service

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

var (
	// ErrLoteComMovimentacoes blocks editing or deleting a lote after stock
	// moved beyond the opening entry.
	ErrLoteComMovimentacoes = errors.New(
		"Não é possível alterar o lote pois existem movimentações registradas",
		errors.CategoryConflict,
	).WithTextCode("LOTE_COM_MOVIMENTACOES").WithCode(errors.CodeConflict)

	// ErrUnidadeMedidaInvalida rejects unknown measurement units.
	ErrUnidadeMedidaInvalida = errors.New(
		"Unidade de medida inválida",
		errors.CategoryValidation,
	).WithTextCode("UNIDADE_MEDIDA_INVALIDA").WithCode(errors.CodeBadRequest)
)

// LoteItemInput is one product line of a lote entry.
type LoteItemInput struct {
	ProdutoID    int64      `json:"produtoId"`
	Quantidade   int        `json:"quantidade"`
	DataValidade *time.Time `json:"dataValidade"`
	Tamanho      string     `json:"tamanho"`
	Voltagem     string     `json:"voltagem"`
}

// LoteInput carries the fields of a donation batch entry.
type LoteInput struct {
	Itens         []LoteItemInput `json:"itens"`
	DataEntrada   *time.Time      `json:"dataEntrada"`
	UnidadeMedida string          `json:"unidadeMedida"`
	Observacoes   string          `json:"observacoes"`
}

// Validate runs the validation rules.
func (i LoteInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Itens, validation.Required, validation.Length(1, 0)),
		validation.Field(&i.UnidadeMedida, validation.Required),
		validation.Field(&i.Observacoes, validation.Length(0, 500)),
	)
}

// Lotes manages stock batches and their opening movements.
type Lotes struct {
	db            *bun.DB
	lotes         store.Lotes
	produtos      store.Produtos
	movimentacoes store.Movimentacoes
	logger        auth.Logger
	now           func() time.Time
}

// NewLotes builds the lote service.
func NewLotes(db *bun.DB, lotes store.Lotes, produtos store.Produtos, movimentacoes store.Movimentacoes) *Lotes {
	return &Lotes{
		db:            db,
		lotes:         lotes,
		produtos:      produtos,
		movimentacoes: movimentacoes,
		logger:        auth.DefaultLogger(),
		now:           time.Now,
	}
}

// WithLogger replaces the fallback logger.
func (s *Lotes) WithLogger(logger auth.Logger) *Lotes {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the time source, meant for tests.
func (s *Lotes) WithClock(now func() time.Time) *Lotes {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Lotes) Listar(ctx context.Context, filters store.LoteFilters) ([]*store.Lote, error) {
	return s.lotes.List(ctx, filters)
}

func (s *Lotes) Buscar(ctx context.Context, id int64) (*store.Lote, error) {
	return s.lotes.GetByID(ctx, id)
}

// ListarVencimento returns lotes with stock expiring within the given
// number of days.
func (s *Lotes) ListarVencimento(ctx context.Context, dias int) ([]*store.Lote, error) {
	return s.lotes.ListComValidadeAte(ctx, s.now().AddDate(0, 0, dias))
}

// Criar records the donation batch and its opening ENTRADA movement
// atomically. The lote's quantities start at the sum of its item lines.
func (s *Lotes) Criar(ctx context.Context, input LoteInput, usuarioID int64) (*store.Lote, error) {
	record, err := s.montarLote(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.lotes.CreateTx(ctx, tx, record); err != nil {
			return err
		}
		_, err := s.movimentacoes.CreateTx(ctx, tx, &store.Movimentacao{
			LoteID:     record.ID,
			UsuarioID:  usuarioID,
			Tipo:       store.TipoEntrada,
			Quantidade: record.QuantidadeInicial,
			DataHora:   s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.lotes.GetByID(ctx, record.ID)
}

// Atualizar rewrites the lote while it is still untouched: once anything
// besides the opening entry moved stock, the lote is frozen.
func (s *Lotes) Atualizar(ctx context.Context, id int64, input LoteInput) (*store.Lote, error) {
	existing, err := s.lotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.exigirSemMovimentacoes(ctx, id); err != nil {
		return nil, err
	}

	record, err := s.montarLote(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*store.LoteItem)(nil)).
			Where("lote_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		existing.QuantidadeInicial = record.QuantidadeInicial
		existing.QuantidadeAtual = record.QuantidadeInicial
		existing.DataEntrada = record.DataEntrada
		existing.UnidadeMedida = record.UnidadeMedida
		existing.Observacoes = record.Observacoes
		if _, err := s.lotes.UpdateTx(ctx, tx, existing); err != nil {
			return err
		}
		for _, item := range record.Itens {
			item.LoteID = id
		}
		if _, err := tx.NewInsert().Model(&record.Itens).Exec(ctx); err != nil {
			return err
		}
		// keep the opening entry's quantity in sync with the new totals
		_, err := tx.NewUpdate().
			Model((*store.Movimentacao)(nil)).
			Set("quantidade = ?", record.QuantidadeInicial).
			Where("lote_id = ?", id).
			Where("tipo = ?", store.TipoEntrada).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.lotes.GetByID(ctx, id)
}

// Excluir removes the lote, its items and its opening movement, refusing
// when later movements exist.
func (s *Lotes) Excluir(ctx context.Context, id int64) error {
	if _, err := s.lotes.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.exigirSemMovimentacoes(ctx, id); err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*store.Movimentacao)(nil)).
			Where("lote_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*store.LoteItem)(nil)).
			Where("lote_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*store.Lote)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

func (s *Lotes) exigirSemMovimentacoes(ctx context.Context, loteID int64) error {
	// the opening ENTRADA is the only movement an editable lote may have
	extras, err := s.movimentacoes.CountAlemDaAbertura(ctx, loteID)
	if err != nil {
		return err
	}
	if extras > 0 {
		return ErrLoteComMovimentacoes.WithMetadata(map[string]any{
			"loteId":        loteID,
			"movimentacoes": extras,
		})
	}
	return nil
}

func (s *Lotes) montarLote(ctx context.Context, input LoteInput) (*store.Lote, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "lote inválido")
	}
	unidade, ok := store.ParseUnidadeMedida(input.UnidadeMedida)
	if !ok {
		return nil, ErrUnidadeMedidaInvalida.WithMetadata(map[string]any{"unidadeMedida": input.UnidadeMedida})
	}

	total := 0
	itens := make([]*store.LoteItem, 0, len(input.Itens))
	for _, item := range input.Itens {
		if item.Quantidade <= 0 {
			return nil, errors.New(
				"Quantidade do item deve ser maior que zero",
				errors.CategoryValidation,
			).WithTextCode("ITEM_QUANTIDADE_INVALIDA").WithCode(errors.CodeBadRequest)
		}
		if _, err := s.produtos.GetByID(ctx, item.ProdutoID); err != nil {
			return nil, err
		}
		total += item.Quantidade
		itens = append(itens, &store.LoteItem{
			ProdutoID:    item.ProdutoID,
			Quantidade:   item.Quantidade,
			DataValidade: item.DataValidade,
			Tamanho:      item.Tamanho,
			Voltagem:     item.Voltagem,
		})
	}

	entrada := s.now()
	if input.DataEntrada != nil {
		entrada = *input.DataEntrada
	}

	return &store.Lote{
		Itens:             itens,
		QuantidadeInicial: total,
		QuantidadeAtual:   total,
		DataEntrada:       entrada,
		UnidadeMedida:     unidade,
		Observacoes:       input.Observacoes,
	}, nil
}
