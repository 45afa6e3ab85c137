package service

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/go-pdf/fpdf"
	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/store"
)

// ErrEtiquetasSemLotes rejects a label sheet request with no lotes.
var ErrEtiquetasSemLotes = errors.New(
	"Informe ao menos um lote para gerar etiquetas",
	errors.CategoryValidation,
).WithTextCode("ETIQUETAS_SEM_LOTES").WithCode(errors.CodeBadRequest)

// A4 label sheet layout, three labels per row, in millimeters.
const (
	etiquetaLargura   = 63.0
	etiquetaAltura    = 38.0
	etiquetaMargemX   = 7.0
	etiquetaMargemY   = 10.0
	etiquetasPorLinha = 3
	codigoLargura     = 50.0
	codigoAltura      = 15.0
)

// Etiquetas renders printable barcode label sheets for lotes.
type Etiquetas struct {
	lotes  store.Lotes
	logger auth.Logger
}

// NewEtiquetas builds the label service.
func NewEtiquetas(lotes store.Lotes) *Etiquetas {
	return &Etiquetas{
		lotes:  lotes,
		logger: auth.DefaultLogger(),
	}
}

// WithLogger replaces the fallback logger.
func (s *Etiquetas) WithLogger(logger auth.Logger) *Etiquetas {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// GerarPDF renders one Code 128 label per lote on an A4 sheet and returns
// the PDF bytes.
func (s *Etiquetas) GerarPDF(ctx context.Context, loteIDs []int64) ([]byte, error) {
	if len(loteIDs) == 0 {
		return nil, ErrEtiquetasSemLotes
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 9)

	for pos, id := range loteIDs {
		lote, err := s.lotes.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		col := pos % etiquetasPorLinha
		row := (pos / etiquetasPorLinha) % 7
		if pos > 0 && col == 0 && row == 0 {
			pdf.AddPage()
		}

		x := etiquetaMargemX + float64(col)*etiquetaLargura
		y := etiquetaMargemY + float64(row)*etiquetaAltura

		ref := fmt.Sprintf("L-%d", lote.ID)
		img, err := s.codigoPNG(ref)
		if err != nil {
			return nil, err
		}

		name := "barcode-" + ref
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
		pdf.ImageOptions(name, x+(etiquetaLargura-codigoLargura)/2, y+4, codigoLargura, codigoAltura, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetXY(x, y+4+codigoAltura+1)
		pdf.CellFormat(etiquetaLargura, 4, ref, "", 0, "C", false, 0, "")
		pdf.SetXY(x, y+4+codigoAltura+5)
		pdf.CellFormat(etiquetaLargura, 4, descricaoItens(lote), "", 0, "C", false, 0, "")
		pdf.SetXY(x, y+4+codigoAltura+9)
		quantia := fmt.Sprintf("%d %s - %s", lote.QuantidadeAtual, lote.UnidadeMedida, lote.DataEntrada.Format("02/01/2006"))
		pdf.CellFormat(etiquetaLargura, 4, quantia, "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "falha ao gerar PDF de etiquetas")
	}
	return buf.Bytes(), nil
}

// descricaoItens names the lote by its first product, flagging how many
// more lines it carries.
func descricaoItens(lote *store.Lote) string {
	if len(lote.Itens) == 0 {
		return ""
	}
	nome := ""
	if lote.Itens[0].Produto != nil {
		nome = lote.Itens[0].Produto.Nome
	}
	if extras := len(lote.Itens) - 1; extras > 0 {
		return fmt.Sprintf("%s + %d outros", nome, extras)
	}
	return nome
}

func (s *Etiquetas) codigoPNG(ref string) ([]byte, error) {
	code, err := code128.Encode(ref)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "falha ao gerar código de barras")
	}
	scaled, err := barcode.Scale(code, 400, 120)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "falha ao escalar código de barras")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "falha ao codificar etiqueta")
	}
	return buf.Bytes(), nil
}
