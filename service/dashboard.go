package service

import (
	"context"
	"time"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

const (
	diasAlertaVencimento = 30
	estoqueBaixoLimite   = 10
	topSaidasLimite      = 5
	movimentosRecentes   = 10
)

// DashboardTotais carries the headline counters.
type DashboardTotais struct {
	Categorias    int `json:"categorias"`
	Produtos      int `json:"produtos"`
	Lotes         int `json:"lotes"`
	EstoqueTotal  int `json:"estoqueTotal"`
	Movimentacoes int `json:"movimentacoes"`
}

// DashboardResumo aggregates the home screen metrics.
type DashboardResumo struct {
	Totais               DashboardTotais         `json:"totais"`
	LotesVencendo        []*store.Lote           `json:"lotesVencendo"`
	ProdutosEstoqueBaixo []store.ProdutoEstoque  `json:"produtosEstoqueBaixo"`
	LotesEstoqueZerado   []*store.Lote           `json:"lotesEstoqueZerado"`
	TopSaidas            []store.ProdutoSaida    `json:"topSaidas"`
	UltimasMovimentos    []*store.Movimentacao   `json:"ultimasMovimentacoes"`
	MovimentosPorDia     []store.MovimentacaoDia `json:"movimentacoesPorDia"`
}

// Dashboard computes operational metrics over the stock.
type Dashboard struct {
	categorias    store.Categorias
	produtos      store.Produtos
	lotes         store.Lotes
	movimentacoes store.Movimentacoes
	logger        auth.Logger
	now           func() time.Time
}

// NewDashboard builds the dashboard service.
func NewDashboard(categorias store.Categorias, produtos store.Produtos, lotes store.Lotes, movimentacoes store.Movimentacoes) *Dashboard {
	return &Dashboard{
		categorias:    categorias,
		produtos:      produtos,
		lotes:         lotes,
		movimentacoes: movimentacoes,
		logger:        auth.DefaultLogger(),
		now:           time.Now,
	}
}

// WithLogger replaces the fallback logger.
func (s *Dashboard) WithLogger(logger auth.Logger) *Dashboard {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the time source, meant for tests.
func (s *Dashboard) WithClock(now func() time.Time) *Dashboard {
	if now != nil {
		s.now = now
	}
	return s
}

// Resumo assembles every dashboard block. A nil bound defaults to the
// first day of the current month through now.
func (s *Dashboard) Resumo(ctx context.Context, dataInicio, dataFim *time.Time) (*DashboardResumo, error) {
	now := s.now()
	de := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	ate := now
	if dataInicio != nil {
		de = *dataInicio
	}
	if dataFim != nil {
		ate = *dataFim
	}

	totais, err := s.totais(ctx, de, ate)
	if err != nil {
		return nil, err
	}

	vencendo, err := s.lotes.ListComValidadeAte(ctx, now.AddDate(0, 0, diasAlertaVencimento))
	if err != nil {
		return nil, err
	}

	todos, err := s.lotes.List(ctx, store.LoteFilters{})
	if err != nil {
		return nil, err
	}
	zerado := make([]*store.Lote, 0)
	for _, lote := range todos {
		if lote.QuantidadeAtual == 0 {
			zerado = append(zerado, lote)
		}
	}

	// low stock is judged per produto, summed across every lote
	porProduto, err := s.lotes.EstoquePorProduto(ctx)
	if err != nil {
		return nil, err
	}
	baixo := make([]store.ProdutoEstoque, 0)
	for _, p := range porProduto {
		if p.Total > 0 && p.Total < estoqueBaixoLimite {
			baixo = append(baixo, p)
		}
	}

	top, err := s.movimentacoes.TopSaidasPorProduto(ctx, topSaidasLimite)
	if err != nil {
		return nil, err
	}

	recentes, err := s.movimentacoes.ListRecentes(ctx, movimentosRecentes)
	if err != nil {
		return nil, err
	}

	porDia, err := s.movimentacoes.PorDia(ctx, de)
	if err != nil {
		return nil, err
	}

	return &DashboardResumo{
		Totais:               totais,
		LotesVencendo:        vencendo,
		ProdutosEstoqueBaixo: baixo,
		LotesEstoqueZerado:   zerado,
		TopSaidas:            top,
		UltimasMovimentos:    recentes,
		MovimentosPorDia:     porDia,
	}, nil
}

func (s *Dashboard) totais(ctx context.Context, de, ate time.Time) (DashboardTotais, error) {
	var t DashboardTotais
	var err error

	if t.Categorias, err = s.categorias.Count(ctx); err != nil {
		return t, err
	}
	if t.Produtos, err = s.produtos.Count(ctx); err != nil {
		return t, err
	}
	if t.Lotes, err = s.lotes.Count(ctx); err != nil {
		return t, err
	}
	if t.EstoqueTotal, err = s.lotes.EstoqueTotal(ctx); err != nil {
		return t, err
	}
	if t.Movimentacoes, err = s.movimentacoes.CountPeriodo(ctx, de, ate); err != nil {
		return t, err
	}
	return t, nil
}
