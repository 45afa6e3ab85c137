package store

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/solidario/estoque/auth"
)

// TipoMovimentacao classifies a stock movement.
type TipoMovimentacao = string

const (
	// TipoEntrada adds stock (donation received).
	TipoEntrada TipoMovimentacao = "ENTRADA"
	// TipoSaida removes stock (distribution).
	TipoSaida TipoMovimentacao = "SAIDA"
	// TipoAjusteGanho adds stock via inventory correction.
	TipoAjusteGanho TipoMovimentacao = "AJUSTE_GANHO"
	// TipoAjustePerda removes stock via inventory correction.
	TipoAjustePerda TipoMovimentacao = "AJUSTE_PERDA"
)

// ParseTipoMovimentacao safely parses a string into a TipoMovimentacao.
func ParseTipoMovimentacao(s string) (TipoMovimentacao, bool) {
	switch TipoMovimentacao(s) {
	case TipoEntrada, TipoSaida, TipoAjusteGanho, TipoAjustePerda:
		return TipoMovimentacao(s), true
	default:
		return "", false
	}
}

// UnidadeMedida is the unit the lote's quantities are counted in.
type UnidadeMedida = string

const (
	UnidadeUnidade     UnidadeMedida = "UNIDADE"
	UnidadeQuilograma  UnidadeMedida = "QUILOGRAMA"
	UnidadeLitro       UnidadeMedida = "LITRO"
	UnidadePacote      UnidadeMedida = "PACOTE"
	UnidadeCaixa       UnidadeMedida = "CAIXA"
)

// Delta returns the signed effect the movement type has on a lote's
// balance when moving q units.
func Delta(tipo TipoMovimentacao, q int) int {
	switch tipo {
	case TipoEntrada, TipoAjusteGanho:
		return q
	default:
		return -q
	}
}

// ParseUnidadeMedida safely parses a string into a UnidadeMedida.
func ParseUnidadeMedida(s string) (UnidadeMedida, bool) {
	switch UnidadeMedida(s) {
	case UnidadeUnidade, UnidadeQuilograma, UnidadeLitro, UnidadePacote, UnidadeCaixa:
		return UnidadeMedida(s), true
	default:
		return "", false
	}
}

// Categoria groups products.
type Categoria struct {
	bun.BaseModel `bun:"table:categorias,alias:cat"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Nome          string     `bun:"nome,notnull,unique" json:"nome,omitempty"`
	Descricao     string     `bun:"descricao" json:"descricao,omitempty"`
	Icone         string     `bun:"icone" json:"icone,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Produto is a donatable item. A produto flagged as kit is assembled from
// other produtos according to its componentes recipe.
type Produto struct {
	bun.BaseModel          `bun:"table:produtos,alias:prd"`
	ID                     int64                `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Nome                   string               `bun:"nome,notnull" json:"nome,omitempty"`
	Descricao              string               `bun:"descricao" json:"descricao,omitempty"`
	CodigoBarrasFabricante string               `bun:"codigo_barras_fabricante" json:"codigoBarrasFabricante,omitempty"`
	CategoriaID            int64                `bun:"categoria_id,notnull" json:"categoriaId,omitempty"`
	Categoria              *Categoria           `bun:"rel:belongs-to,join:categoria_id=id" json:"categoria,omitempty"`
	IsKit                  bool                 `bun:"is_kit,notnull,default:false" json:"isKit"`
	Componentes            []*ComposicaoProduto `bun:"rel:has-many,join:id=produto_pai_id" json:"componentes,omitempty"`
	CreatedAt              *time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ComposicaoProduto is one line of a kit's recipe: building one unit of the
// kit consumes Quantidade units of the componente.
type ComposicaoProduto struct {
	bun.BaseModel `bun:"table:composicao_produtos,alias:cmp"`
	ID            int64    `bun:"id,pk,autoincrement" json:"id,omitempty"`
	ProdutoPaiID  int64    `bun:"produto_pai_id,notnull" json:"produtoPaiId,omitempty"`
	ComponenteID  int64    `bun:"produto_componente_id,notnull" json:"produtoId,omitempty"`
	Componente    *Produto `bun:"rel:belongs-to,join:produto_componente_id=id" json:"componente,omitempty"`
	Quantidade    int      `bun:"quantidade,notnull" json:"quantidade,omitempty"`
}

// Lote is a stock batch entered on a single date. Its quantidadeAtual is
// the running balance maintained by movements.
type Lote struct {
	bun.BaseModel     `bun:"table:lotes,alias:lot"`
	ID                int64         `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Itens             []*LoteItem   `bun:"rel:has-many,join:id=lote_id" json:"itens,omitempty"`
	QuantidadeInicial int           `bun:"quantidade_inicial,notnull" json:"quantidadeInicial"`
	QuantidadeAtual   int           `bun:"quantidade_atual,notnull" json:"quantidadeAtual"`
	DataEntrada       time.Time     `bun:"data_entrada,notnull" json:"dataEntrada"`
	UnidadeMedida     UnidadeMedida `bun:"unidade_medida,notnull" json:"unidadeMedida,omitempty"`
	Observacoes       string        `bun:"observacoes" json:"observacoes,omitempty"`
}

// CodigoBarras derives the lote's EAN-13 style internal barcode: the "2"
// in-store prefix, the zero-padded id, and a check digit.
func (l *Lote) CodigoBarras() string {
	if l.ID == 0 {
		return ""
	}
	semDigito := fmt.Sprintf("2%011d", l.ID)
	return semDigito + fmt.Sprintf("%d", digitoVerificador(semDigito))
}

func digitoVerificador(codigo string) int {
	soma := 0
	for i, r := range codigo {
		n := int(r - '0')
		if i%2 == 0 {
			soma += n
		} else {
			soma += n * 3
		}
	}
	resto := soma % 10
	if resto == 0 {
		return 0
	}
	return 10 - resto
}

// LoteItem is one product line inside a lote.
type LoteItem struct {
	bun.BaseModel `bun:"table:lote_itens,alias:lit"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	LoteID        int64      `bun:"lote_id,notnull" json:"loteId,omitempty"`
	ProdutoID     int64      `bun:"produto_id,notnull" json:"produtoId,omitempty"`
	Produto       *Produto   `bun:"rel:belongs-to,join:produto_id=id" json:"produto,omitempty"`
	Quantidade    int        `bun:"quantidade,notnull" json:"quantidade"`
	DataValidade  *time.Time `bun:"data_validade,nullzero" json:"dataValidade,omitempty"`
	Tamanho       string     `bun:"tamanho" json:"tamanho,omitempty"`
	Voltagem      string     `bun:"voltagem" json:"voltagem,omitempty"`
}

// Movimentacao records a single stock change on a lote.
type Movimentacao struct {
	bun.BaseModel `bun:"table:movimentacoes,alias:mov"`
	ID            int64            `bun:"id,pk,autoincrement" json:"id,omitempty"`
	LoteID        int64            `bun:"lote_id,notnull" json:"loteId,omitempty"`
	Lote          *Lote            `bun:"rel:belongs-to,join:lote_id=id" json:"lote,omitempty"`
	UsuarioID     int64            `bun:"usuario_id,notnull" json:"usuarioId,omitempty"`
	Usuario       *auth.Usuario    `bun:"rel:belongs-to,join:usuario_id=id" json:"usuario,omitempty"`
	Tipo          TipoMovimentacao `bun:"tipo,notnull" json:"tipo,omitempty"`
	Quantidade    int              `bun:"quantidade,notnull" json:"quantidade"`
	DataHora      time.Time        `bun:"data_hora,notnull" json:"dataHora"`
}
