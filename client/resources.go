package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/solidario/estoque/auth"
	"github.com/solidario/estoque/service"
	"github.com/solidario/estoque/store"
)

// API is the authenticated resource client. Every request carries the
// bearer token from the store; a 401 triggers one silent refresh and one
// retry before the error surfaces.
type API struct {
	base      string
	store     *TokenStore
	transport AuthTransport
	http      *http.Client
	logger    auth.Logger
}

// NewAPI builds the resource client sharing the session's token store and
// transport.
func NewAPI(baseURL string, store *TokenStore, transport AuthTransport) *API {
	if baseURL == "" {
		baseURL = os.Getenv("API_BASE_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &API{
		base:      strings.TrimRight(baseURL, "/"),
		store:     store,
		transport: transport,
		http:      &http.Client{},
		logger:    auth.DefaultLogger(),
	}
}

// WithLogger replaces the fallback logger.
func (a *API) WithLogger(logger auth.Logger) *API {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithHTTPClient swaps the underlying client.
func (a *API) WithHTTPClient(c *http.Client) *API {
	if c != nil {
		a.http = c
	}
	return a
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := a.request(ctx, method, path, body)
	if err == nil {
		if out == nil {
			return nil
		}
		return json.Unmarshal(raw, out)
	}

	var rich *errors.Error
	if !errors.As(err, &rich) || rich.Category != errors.CategoryAuth {
		return err
	}

	// one refresh, one retry
	token, refreshErr := a.transport.Refresh(ctx)
	if refreshErr != nil {
		a.logger.Debug("refresh after 401 failed: %v", refreshErr)
		return err
	}
	a.store.Set(token)

	raw, err = a.request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (a *API) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "falha ao serializar requisição")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "falha ao montar requisição")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := a.store.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, genericAuthFailure).
			WithTextCode("NETWORK_FAILURE")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (a *API) ListarCategorias(ctx context.Context, nome string) ([]*store.Categoria, error) {
	var out []*store.Categoria
	path := "/api/categorias"
	if nome != "" {
		path += "?nome=" + url.QueryEscape(nome)
	}
	return out, a.do(ctx, http.MethodGet, path, nil, &out)
}

func (a *API) CriarCategoria(ctx context.Context, input service.CategoriaInput) (*store.Categoria, error) {
	out := &store.Categoria{}
	return out, a.do(ctx, http.MethodPost, "/api/categorias", input, out)
}

func (a *API) AtualizarCategoria(ctx context.Context, id int64, input service.CategoriaInput) (*store.Categoria, error) {
	out := &store.Categoria{}
	return out, a.do(ctx, http.MethodPut, fmt.Sprintf("/api/categorias/%d", id), input, out)
}

func (a *API) ExcluirCategoria(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categorias/%d", id), nil, nil)
}

func (a *API) ListarProdutos(ctx context.Context, nome string) ([]*store.Produto, error) {
	var out []*store.Produto
	path := "/api/produtos"
	if nome != "" {
		path += "?nome=" + url.QueryEscape(nome)
	}
	return out, a.do(ctx, http.MethodGet, path, nil, &out)
}

func (a *API) BuscarProduto(ctx context.Context, id int64) (*store.Produto, error) {
	out := &store.Produto{}
	return out, a.do(ctx, http.MethodGet, fmt.Sprintf("/api/produtos/%d", id), nil, out)
}

func (a *API) CriarProduto(ctx context.Context, input service.ProdutoInput) (*store.Produto, error) {
	out := &store.Produto{}
	return out, a.do(ctx, http.MethodPost, "/api/produtos", input, out)
}

func (a *API) AtualizarProduto(ctx context.Context, id int64, input service.ProdutoInput) (*store.Produto, error) {
	out := &store.Produto{}
	return out, a.do(ctx, http.MethodPut, fmt.Sprintf("/api/produtos/%d", id), input, out)
}

func (a *API) ExcluirProduto(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/produtos/%d", id), nil, nil)
}

// LoteRecord is the lote wire shape with its derived barcode.
type LoteRecord struct {
	store.Lote
	CodigoBarras string `json:"codigoBarras"`
}

func (a *API) ListarLotes(ctx context.Context) ([]*LoteRecord, error) {
	var out []*LoteRecord
	return out, a.do(ctx, http.MethodGet, "/api/lotes", nil, &out)
}

func (a *API) BuscarLote(ctx context.Context, id int64) (*LoteRecord, error) {
	out := &LoteRecord{}
	return out, a.do(ctx, http.MethodGet, fmt.Sprintf("/api/lotes/%d", id), nil, out)
}

func (a *API) CriarLote(ctx context.Context, input service.LoteInput) (*LoteRecord, error) {
	out := &LoteRecord{}
	return out, a.do(ctx, http.MethodPost, "/api/lotes", input, out)
}

func (a *API) ExcluirLote(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/lotes/%d", id), nil, nil)
}

func (a *API) ListarMovimentacoes(ctx context.Context) ([]*store.Movimentacao, error) {
	var out []*store.Movimentacao
	return out, a.do(ctx, http.MethodGet, "/api/movimentacoes", nil, &out)
}

func (a *API) RegistrarMovimentacao(ctx context.Context, input service.RegistrarInput) (*store.Movimentacao, error) {
	out := &store.Movimentacao{}
	return out, a.do(ctx, http.MethodPost, "/api/movimentacoes", input, out)
}

func (a *API) MontarKit(ctx context.Context, input service.MontagemKitInput) (*store.Movimentacao, error) {
	out := &store.Movimentacao{}
	return out, a.do(ctx, http.MethodPost, "/api/movimentacoes/montagem", input, out)
}

func (a *API) DashboardMetrics(ctx context.Context) (*service.DashboardResumo, error) {
	out := &service.DashboardResumo{}
	return out, a.do(ctx, http.MethodGet, "/api/dashboard/metrics", nil, out)
}

// GerarEtiquetas downloads the label sheet PDF for the given lotes.
func (a *API) GerarEtiquetas(ctx context.Context, loteIDs []int64) ([]byte, error) {
	return a.request(ctx, http.MethodPost, "/api/etiquetas/lote", map[string][]int64{"loteIds": loteIDs})
}
