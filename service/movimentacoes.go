package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

var (
	// ErrTipoMovimentacaoInvalido rejects unknown movement types.
	ErrTipoMovimentacaoInvalido = errors.New(
		"Tipo de movimentação inválido",
		errors.CategoryValidation,
	).WithTextCode("TIPO_MOVIMENTACAO_INVALIDO").WithCode(errors.CodeBadRequest)

	// ErrProdutoNaoEhKit rejects assembling a produto not flagged as kit.
	ErrProdutoNaoEhKit = errors.New(
		"O produto informado não é um kit",
		errors.CategoryValidation,
	).WithTextCode("PRODUTO_NAO_EH_KIT").WithCode(errors.CodeBadRequest)
)

// estoqueInsuficiente builds the balance violation error with the amount
// still available.
func estoqueInsuficiente(disponivel int) *errors.Error {
	return errors.New(
		fmt.Sprintf("Quantidade insuficiente em estoque. Disponível: %d", disponivel),
		errors.CategoryValidation,
	).WithTextCode("ESTOQUE_INSUFICIENTE").
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"disponivel": disponivel})
}

// RegistrarInput carries a manual stock movement request.
type RegistrarInput struct {
	LoteID     int64  `json:"loteId"`
	Tipo       string `json:"tipo"`
	Quantidade int    `json:"quantidade"`
}

// Validate runs the validation rules.
func (i RegistrarInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.LoteID, validation.Required),
		validation.Field(&i.Tipo, validation.Required),
		validation.Field(&i.Quantidade, validation.Required, validation.Min(1)),
	)
}

// MontagemKitInput requests assembling kits out of component stock.
type MontagemKitInput struct {
	ProdutoKitID int64 `json:"produtoKitId"`
	Quantidade   int   `json:"quantidade"`
}

// Validate runs the validation rules.
func (i MontagemKitInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ProdutoKitID, validation.Required),
		validation.Field(&i.Quantidade, validation.Required, validation.Min(1)),
	)
}

// MovimentacaoDetalhes is a movement enriched with the lote balance right
// before it was applied.
type MovimentacaoDetalhes struct {
	*store.Movimentacao
	QuantidadeAnterior int `json:"quantidadeAnterior"`
}

// Movimentacoes applies stock movements and keeps lote balances correct.
type Movimentacoes struct {
	db            *bun.DB
	lotes         store.Lotes
	produtos      store.Produtos
	movimentacoes store.Movimentacoes
	logger        auth.Logger
	now           func() time.Time
}

// NewMovimentacoes builds the movement service.
func NewMovimentacoes(db *bun.DB, lotes store.Lotes, produtos store.Produtos, movimentacoes store.Movimentacoes) *Movimentacoes {
	return &Movimentacoes{
		db:            db,
		lotes:         lotes,
		produtos:      produtos,
		movimentacoes: movimentacoes,
		logger:        auth.DefaultLogger(),
		now:           time.Now,
	}
}

// WithLogger replaces the fallback logger.
func (s *Movimentacoes) WithLogger(logger auth.Logger) *Movimentacoes {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the time source, meant for tests.
func (s *Movimentacoes) WithClock(now func() time.Time) *Movimentacoes {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Movimentacoes) Listar(ctx context.Context, filters store.MovimentacaoFilters) ([]*store.Movimentacao, error) {
	return s.movimentacoes.List(ctx, filters)
}

// Registrar applies a movement to the lote's balance. Outgoing movements
// never drive the balance below zero.
func (s *Movimentacoes) Registrar(ctx context.Context, input RegistrarInput, usuarioID int64) (*store.Movimentacao, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "movimentação inválida")
	}
	tipo, ok := store.ParseTipoMovimentacao(input.Tipo)
	if !ok {
		return nil, ErrTipoMovimentacaoInvalido.WithMetadata(map[string]any{"tipo": input.Tipo})
	}

	var record *store.Movimentacao
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		lote, err := s.lotes.GetByIDTx(ctx, tx, input.LoteID)
		if err != nil {
			return err
		}
		saldo := lote.QuantidadeAtual + store.Delta(tipo, input.Quantidade)
		if saldo < 0 {
			return estoqueInsuficiente(lote.QuantidadeAtual)
		}
		lote.QuantidadeAtual = saldo
		if _, err := s.lotes.UpdateTx(ctx, tx, lote); err != nil {
			return err
		}
		record, err = s.movimentacoes.CreateTx(ctx, tx, &store.Movimentacao{
			LoteID:     lote.ID,
			UsuarioID:  usuarioID,
			Tipo:       tipo,
			Quantidade: input.Quantidade,
			DataHora:   s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.movimentacoes.GetByID(ctx, record.ID)
}

// Detalhes loads a movement and replays the lote's history to report the
// balance the lote held right before it.
func (s *Movimentacoes) Detalhes(ctx context.Context, id int64) (*MovimentacaoDetalhes, error) {
	record, err := s.movimentacoes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	historico, err := s.movimentacoes.List(ctx, store.MovimentacaoFilters{LoteID: record.LoteID})
	if err != nil {
		return nil, err
	}

	// List returns newest first; replay oldest first from an empty lote.
	saldo := 0
	anterior := 0
	for i := len(historico) - 1; i >= 0; i-- {
		m := historico[i]
		if m.ID == id {
			anterior = saldo
		}
		saldo += store.Delta(m.Tipo, m.Quantidade)
	}

	return &MovimentacaoDetalhes{
		Movimentacao:       record,
		QuantidadeAnterior: anterior,
	}, nil
}

// Excluir removes a movement and reverses its effect on the lote balance.
// Reversal never drives the balance below zero.
func (s *Movimentacoes) Excluir(ctx context.Context, id int64) error {
	record, err := s.movimentacoes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		lote, err := s.lotes.GetByIDTx(ctx, tx, record.LoteID)
		if err != nil {
			return err
		}
		saldo := lote.QuantidadeAtual - store.Delta(record.Tipo, record.Quantidade)
		if saldo < 0 {
			return estoqueInsuficiente(lote.QuantidadeAtual)
		}
		lote.QuantidadeAtual = saldo
		if _, err := s.lotes.UpdateTx(ctx, tx, lote); err != nil {
			return err
		}
		return s.movimentacoes.DeleteTx(ctx, tx, id)
	})
}

// MontarKit consumes component stock oldest lotes first, then enters the
// assembled kits as a fresh lote. It returns that lote's opening movement.
func (s *Movimentacoes) MontarKit(ctx context.Context, input MontagemKitInput, usuarioID int64) (*store.Movimentacao, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "montagem inválida")
	}
	kit, err := s.produtos.GetByID(ctx, input.ProdutoKitID)
	if err != nil {
		return nil, err
	}
	if !kit.IsKit {
		return nil, ErrProdutoNaoEhKit.WithMetadata(map[string]any{"produtoId": kit.ID})
	}
	if len(kit.Componentes) == 0 {
		return nil, ErrKitSemComponentes.WithMetadata(map[string]any{"produtoId": kit.ID})
	}

	var entrada *store.Movimentacao
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, componente := range kit.Componentes {
			necessario := componente.Quantidade * input.Quantidade
			if err := s.consumirFIFO(ctx, tx, componente.ComponenteID, necessario, usuarioID); err != nil {
				return err
			}
		}

		lote := &store.Lote{
			Itens: []*store.LoteItem{{
				ProdutoID:  kit.ID,
				Quantidade: input.Quantidade,
			}},
			QuantidadeInicial: input.Quantidade,
			QuantidadeAtual:   input.Quantidade,
			DataEntrada:       s.now(),
			UnidadeMedida:     store.UnidadeUnidade,
			Observacoes:       "Montagem automática de Kit: " + kit.Nome,
		}
		if _, err := s.lotes.CreateTx(ctx, tx, lote); err != nil {
			return err
		}
		entrada, err = s.movimentacoes.CreateTx(ctx, tx, &store.Movimentacao{
			LoteID:     lote.ID,
			UsuarioID:  usuarioID,
			Tipo:       store.TipoEntrada,
			Quantidade: input.Quantidade,
			DataHora:   s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.movimentacoes.GetByID(ctx, entrada.ID)
}

// consumirFIFO walks the produto's lotes oldest first, draining the
// produto's own item lines and recording one SAIDA per touched lote. A
// mixed lote never has its other produtos spent.
func (s *Movimentacoes) consumirFIFO(ctx context.Context, tx bun.Tx, produtoID int64, quantidade int, usuarioID int64) error {
	disponiveis, err := s.lotes.ListDisponiveisPorProdutoTx(ctx, tx, produtoID)
	if err != nil {
		return err
	}

	restante := quantidade
	for _, lote := range disponiveis {
		if restante == 0 {
			break
		}
		item := itemDoProduto(lote, produtoID)
		if item == nil || item.Quantidade <= 0 {
			continue
		}
		consumo := restante
		if consumo > item.Quantidade {
			consumo = item.Quantidade
		}
		item.Quantidade -= consumo
		lote.QuantidadeAtual -= consumo
		if err := s.lotes.UpdateItemTx(ctx, tx, item); err != nil {
			return err
		}
		if _, err := s.lotes.UpdateTx(ctx, tx, lote); err != nil {
			return err
		}
		if _, err := s.movimentacoes.CreateTx(ctx, tx, &store.Movimentacao{
			LoteID:     lote.ID,
			UsuarioID:  usuarioID,
			Tipo:       store.TipoSaida,
			Quantidade: consumo,
			DataHora:   s.now(),
		}); err != nil {
			return err
		}
		restante -= consumo
	}

	if restante > 0 {
		return errors.New(
			fmt.Sprintf("Estoque insuficiente para o produto ID: %d. Faltam: %d", produtoID, restante),
			errors.CategoryValidation,
		).WithTextCode("ESTOQUE_INSUFICIENTE").
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{
				"produtoId":  produtoID,
				"faltam":     restante,
				"solicitado": quantidade,
			})
	}
	return nil
}

func itemDoProduto(lote *store.Lote, produtoID int64) *store.LoteItem {
	for _, item := range lote.Itens {
		if item.ProdutoID == produtoID {
			return item
		}
	}
	return nil
}
