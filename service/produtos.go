package service

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

var (
	// ErrKitSemComponentes rejects a kit produto without a recipe.
	ErrKitSemComponentes = errors.New(
		"Um kit deve possuir ao menos um componente",
		errors.CategoryValidation,
	).WithTextCode("KIT_SEM_COMPONENTES").WithCode(errors.CodeBadRequest)

	// ErrComponenteInvalido rejects kit recipes referencing another kit.
	ErrComponenteInvalido = errors.New(
		"Um kit não pode conter outro kit como componente",
		errors.CategoryValidation,
	).WithTextCode("COMPONENTE_INVALIDO").WithCode(errors.CodeBadRequest)

	// ErrProdutoEmUso blocks deletion while lotes or kits reference the produto.
	ErrProdutoEmUso = errors.New(
		"Não é possível excluir o produto pois existem lotes ou kits vinculados a ele",
		errors.CategoryConflict,
	).WithTextCode("PRODUTO_EM_USO").WithCode(errors.CodeConflict)
)

// ComponenteInput is one line of a kit recipe.
type ComponenteInput struct {
	ProdutoID  int64 `json:"produtoId"`
	Quantidade int   `json:"quantidade"`
}

// ProdutoInput carries the mutable produto fields.
type ProdutoInput struct {
	Nome                   string            `json:"nome"`
	Descricao              string            `json:"descricao"`
	CodigoBarrasFabricante string            `json:"codigoBarrasFabricante"`
	CategoriaID            int64             `json:"categoriaId"`
	IsKit                  bool              `json:"isKit"`
	Componentes            []ComponenteInput `json:"componentes"`
}

// Validate runs the validation rules.
func (i ProdutoInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Nome, validation.Required, validation.Length(2, 150)),
		validation.Field(&i.CategoriaID, validation.Required),
		validation.Field(&i.Descricao, validation.Length(0, 500)),
	)
}

// Produtos manages the product catalog, kits included.
type Produtos struct {
	produtos   store.Produtos
	categorias store.Categorias
	lotes      store.Lotes
	logger     auth.Logger
}

// NewProdutos builds the produto service.
func NewProdutos(produtos store.Produtos, categorias store.Categorias, lotes store.Lotes) *Produtos {
	return &Produtos{
		produtos:   produtos,
		categorias: categorias,
		lotes:      lotes,
		logger:     auth.DefaultLogger(),
	}
}

// WithLogger replaces the fallback logger.
func (s *Produtos) WithLogger(logger auth.Logger) *Produtos {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Produtos) Listar(ctx context.Context, filters store.ProdutoFilters) ([]*store.Produto, error) {
	return s.produtos.List(ctx, filters)
}

func (s *Produtos) Buscar(ctx context.Context, id int64) (*store.Produto, error) {
	return s.produtos.GetByID(ctx, id)
}

// BuscarPorCodigoBarras resolves a scanned manufacturer barcode.
func (s *Produtos) BuscarPorCodigoBarras(ctx context.Context, codigo string) (*store.Produto, error) {
	return s.produtos.GetByCodigoBarrasFabricante(ctx, codigo)
}

func (s *Produtos) Criar(ctx context.Context, input ProdutoInput) (*store.Produto, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "produto inválido")
	}
	if _, err := s.categorias.GetByID(ctx, input.CategoriaID); err != nil {
		return nil, err
	}
	componentes, err := s.validarComponentes(ctx, input)
	if err != nil {
		return nil, err
	}

	record := &store.Produto{
		Nome:                   input.Nome,
		Descricao:              input.Descricao,
		CodigoBarrasFabricante: input.CodigoBarrasFabricante,
		CategoriaID:            input.CategoriaID,
		IsKit:                  input.IsKit,
		Componentes:            componentes,
	}
	return s.produtos.Create(ctx, record)
}

func (s *Produtos) Atualizar(ctx context.Context, id int64, input ProdutoInput) (*store.Produto, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "produto inválido")
	}
	record, err := s.produtos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoriaID != record.CategoriaID {
		if _, err := s.categorias.GetByID(ctx, input.CategoriaID); err != nil {
			return nil, err
		}
	}
	componentes, err := s.validarComponentes(ctx, input)
	if err != nil {
		return nil, err
	}

	record.Nome = input.Nome
	record.Descricao = input.Descricao
	record.CodigoBarrasFabricante = input.CodigoBarrasFabricante
	record.CategoriaID = input.CategoriaID
	record.IsKit = input.IsKit
	record.Categoria = nil
	record.Componentes = nil

	if _, err := s.produtos.Update(ctx, record); err != nil {
		return nil, err
	}
	if err := s.produtos.ReplaceComponentes(ctx, id, componentes); err != nil {
		return nil, err
	}
	return s.produtos.GetByID(ctx, id)
}

func (s *Produtos) Excluir(ctx context.Context, id int64) error {
	emLote, err := s.lotes.List(ctx, store.LoteFilters{ProdutoID: id})
	if err != nil {
		return err
	}
	emKit, err := s.produtos.IsComponenteDeKit(ctx, id)
	if err != nil {
		return err
	}
	if len(emLote) > 0 || emKit {
		return ErrProdutoEmUso.WithMetadata(map[string]any{"produtoId": id})
	}
	return s.produtos.Delete(ctx, id)
}

// validarComponentes checks the recipe lines and resolves them into
// persistence records. Non-kit produtos must carry an empty recipe.
func (s *Produtos) validarComponentes(ctx context.Context, input ProdutoInput) ([]*store.ComposicaoProduto, error) {
	if !input.IsKit {
		return nil, nil
	}
	if len(input.Componentes) == 0 {
		return nil, ErrKitSemComponentes
	}

	componentes := make([]*store.ComposicaoProduto, 0, len(input.Componentes))
	for _, c := range input.Componentes {
		if c.Quantidade <= 0 {
			return nil, errors.New(
				"Quantidade do componente deve ser maior que zero",
				errors.CategoryValidation,
			).WithTextCode("COMPONENTE_QUANTIDADE_INVALIDA").WithCode(errors.CodeBadRequest)
		}
		componente, err := s.produtos.GetByID(ctx, c.ProdutoID)
		if err != nil {
			return nil, err
		}
		if componente.IsKit {
			return nil, ErrComponenteInvalido.WithMetadata(map[string]any{"produtoId": c.ProdutoID})
		}
		componentes = append(componentes, &store.ComposicaoProduto{
			ComponenteID: c.ProdutoID,
			Quantidade:   c.Quantidade,
		})
	}
	return componentes, nil
}
