package service

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

// ErrCategoriaEmUso blocks deletion while produtos reference the categoria.
var ErrCategoriaEmUso = errors.New(
	"Não é possível excluir a categoria pois existem produtos vinculados a ela",
	errors.CategoryConflict,
).WithTextCode("CATEGORIA_EM_USO").WithCode(errors.CodeConflict)

// ErrCategoriaDuplicada blocks creating two categorias with the same nome.
var ErrCategoriaDuplicada = errors.New(
	"Já existe uma categoria com este nome",
	errors.CategoryConflict,
).WithTextCode("CATEGORIA_DUPLICADA").WithCode(errors.CodeConflict)

// CategoriaInput carries the mutable categoria fields.
type CategoriaInput struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Icone     string `json:"icone"`
}

// Validate runs the validation rules.
func (i CategoriaInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Nome, validation.Required, validation.Length(2, 100)),
		validation.Field(&i.Descricao, validation.Length(0, 500)),
	)
}

// Categorias manages product categories.
type Categorias struct {
	categorias store.Categorias
	produtos   store.Produtos
	logger     auth.Logger
}

// NewCategorias builds the categoria service.
func NewCategorias(categorias store.Categorias, produtos store.Produtos) *Categorias {
	return &Categorias{
		categorias: categorias,
		produtos:   produtos,
		logger:     auth.DefaultLogger(),
	}
}

// WithLogger replaces the fallback logger.
func (s *Categorias) WithLogger(logger auth.Logger) *Categorias {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Categorias) Listar(ctx context.Context, nome string) ([]*store.Categoria, error) {
	return s.categorias.List(ctx, nome)
}

func (s *Categorias) Buscar(ctx context.Context, id int64) (*store.Categoria, error) {
	return s.categorias.GetByID(ctx, id)
}

func (s *Categorias) Criar(ctx context.Context, input CategoriaInput) (*store.Categoria, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "categoria inválida")
	}
	exists, err := s.categorias.ExistsByNome(ctx, input.Nome)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategoriaDuplicada.WithMetadata(map[string]any{"nome": input.Nome})
	}
	return s.categorias.Create(ctx, &store.Categoria{
		Nome:      input.Nome,
		Descricao: input.Descricao,
		Icone:     input.Icone,
	})
}

func (s *Categorias) Atualizar(ctx context.Context, id int64, input CategoriaInput) (*store.Categoria, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "categoria inválida")
	}
	record, err := s.categorias.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Nome != record.Nome {
		exists, err := s.categorias.ExistsByNome(ctx, input.Nome)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrCategoriaDuplicada.WithMetadata(map[string]any{"nome": input.Nome})
		}
	}
	record.Nome = input.Nome
	record.Descricao = input.Descricao
	record.Icone = input.Icone
	return s.categorias.Update(ctx, record)
}

func (s *Categorias) Excluir(ctx context.Context, id int64) error {
	count, err := s.produtos.CountByCategoria(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoriaEmUso.WithMetadata(map[string]any{
			"categoriaId": id,
			"produtos":    count,
		})
	}
	return s.categorias.Delete(ctx, id)
}
