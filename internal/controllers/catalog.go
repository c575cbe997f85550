package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"

	"github.com/drstein77/batterycatalog/internal/catalog"
)

// Lookup errors shown by the catalog pages.
const (
	MsgCategoryNotFound = "Categoría no encontrada"
	MsgProductNotFound  = "Producto no encontrado"
	MsgInvalidParams    = "Parámetros inválidos. Por favor, seleccione un producto desde el catálogo."
	MsgNoDatasheet      = "Ficha técnica no disponible para este modelo."
)

type facetsResponse struct {
	catalog.Facets
	Applications []catalog.Application `json:"applications"`
}

func (h *BaseController) listCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.storage.Catalog().Categories()
	summaries := make([]catalog.Summary, 0, len(categories))
	for _, c := range categories {
		summaries = append(summaries, c.Summary())
	}
	writeJSON(w, http.StatusOK, summaries)
}

// category resolves the {category} URL parameter, answering 404 itself.
func (h *BaseController) category(w http.ResponseWriter, r *http.Request) (*catalog.Category, bool) {
	cat, err := h.storage.Catalog().Category(urlParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusNotFound, MsgCategoryNotFound)
		return nil, false
	}
	return cat, true
}

func (h *BaseController) getCategory(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, cat.Table(catalog.Filter{
		Search:      q.Get("q"),
		Kind:        q.Get("tipo"),
		Voltage:     q.Get("voltaje"),
		Type:        q.Get("type"),
		Application: q.Get("application"),
	}))
}

func (h *BaseController) getFacets(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}
	resp := facetsResponse{Facets: cat.Facets(), Applications: cat.Applications}
	if resp.Applications == nil {
		resp.Applications = []catalog.Application{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BaseController) getFeatured(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cat.Featured(r.URL.Query().Get("type")))
}

func (h *BaseController) getCards(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cat.Cards(r.URL.Query().Get("application")))
}

func (h *BaseController) getProduct(w http.ResponseWriter, r *http.Request) {
	category := urlParam(r, "category")
	detail, err := h.storage.Catalog().Detail(category, urlParam(r, "type"), urlParam(r, "model"))
	if err != nil {
		h.lookupError(w, category, err)
		return
	}
	h.metrics.RecordProductView(detail.Category)
	writeJSON(w, http.StatusOK, detail)
}

func (h *BaseController) getDatasheet(w http.ResponseWriter, r *http.Request) {
	category := urlParam(r, "category")
	pdf, err := h.storage.Catalog().Datasheet(category, urlParam(r, "type"), urlParam(r, "model"))
	if err != nil {
		h.lookupError(w, category, err)
		return
	}
	http.Redirect(w, r, pdf, http.StatusFound)
}

func (h *BaseController) lookupError(w http.ResponseWriter, category string, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, MsgInvalidParams)
	case errors.Is(err, catalog.ErrNoDatasheet):
		writeError(w, http.StatusNotFound, MsgNoDatasheet)
	case errors.Is(err, catalog.ErrNotFound):
		if _, cerr := h.storage.Catalog().Category(category); cerr != nil {
			writeError(w, http.StatusNotFound, MsgCategoryNotFound)
			return
		}
		writeError(w, http.StatusNotFound, MsgProductNotFound)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// urlParam returns a decoded path parameter. chi keeps escapes when the
// request path carries encoded slashes.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
