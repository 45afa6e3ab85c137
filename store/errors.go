package store

import "github.com/goliatone/go-errors"

var (
	// ErrCategoriaNotFound is returned when a categoria lookup yields no record.
	ErrCategoriaNotFound = errors.New("Categoria não encontrada", errors.CategoryNotFound).
				WithTextCode("CATEGORIA_NOT_FOUND").
				WithCode(errors.CodeNotFound)

	// ErrProdutoNotFound is returned when a produto lookup yields no record.
	ErrProdutoNotFound = errors.New("Produto não encontrado", errors.CategoryNotFound).
				WithTextCode("PRODUTO_NOT_FOUND").
				WithCode(errors.CodeNotFound)

	// ErrLoteNotFound is returned when a lote lookup yields no record.
	ErrLoteNotFound = errors.New("Lote não encontrado", errors.CategoryNotFound).
			WithTextCode("LOTE_NOT_FOUND").
			WithCode(errors.CodeNotFound)

	// ErrMovimentacaoNotFound is returned when a movement lookup yields no record.
	ErrMovimentacaoNotFound = errors.New("Movimentação não encontrada", errors.CategoryNotFound).
				WithTextCode("MOVIMENTACAO_NOT_FOUND").
				WithCode(errors.CodeNotFound)
)
