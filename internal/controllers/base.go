package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/contact"
	"github.com/drstein77/batterycatalog/internal/middleware"
	"github.com/drstein77/batterycatalog/internal/models"
)

// Storage interface for catalog and message operations
type Storage interface {
	Catalog() *catalog.Catalog
	ProcessCatalog(context.Context, []catalog.File) (*models.ProcessResponse, error)
	ExportCatalog(context.Context) ([]catalog.File, error)
	ListContactMessages(context.Context, models.MessageQuery) ([]models.ContactMessage, error)
	MarkContactMessageRead(context.Context, int64) error
	Ping(context.Context) bool
}

// ContactService handles contact form submissions
type ContactService interface {
	Submit(context.Context, models.ContactRequest, contact.Client) (*models.ContactMessage, error)
}

// Recorder counts catalog activity
type Recorder interface {
	RecordProductView(category string)
	RecordImport(result string)
	SetCatalogSize(counts map[string]int)
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	storage        Storage
	contact        ContactService
	metrics        Recorder
	metricsHandler http.Handler
	adminUser      string
	adminPassword  string
	staticDir      string
	log            Log
}

type Option func(*BaseController)

// WithAdmin mounts the admin routes behind basic auth.
func WithAdmin(user, password string) Option {
	return func(h *BaseController) {
		h.adminUser = user
		h.adminPassword = password
	}
}

// WithStatic serves the files of dir for every unmatched GET.
func WithStatic(dir string) Option {
	return func(h *BaseController) { h.staticDir = dir }
}

// WithMetrics records catalog activity and exposes handler at /metrics.
func WithMetrics(rec Recorder, handler http.Handler) Option {
	return func(h *BaseController) {
		h.metrics = rec
		h.metricsHandler = handler
	}
}

// NewBaseController creates a new BaseController instance
func NewBaseController(storage Storage, contactSvc ContactService, log Log, opts ...Option) *BaseController {
	instance := &BaseController{
		storage: storage,
		contact: contactSvc,
		metrics: nopRecorder{},
		log:     log,
	}
	for _, opt := range opts {
		opt(instance)
	}

	return instance
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Recurso no encontrado")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, contact.MsgMethodNotAllowed)
	})

	r.Get("/ping", h.ping)
	if h.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", h.metricsHandler)
	}

	r.Route("/api/v0", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Route("/categories/{category}", func(r chi.Router) {
			r.Get("/", h.getCategory)
			r.Get("/facets", h.getFacets)
			r.Get("/featured", h.getFeatured)
			r.Get("/cards", h.getCards)
		})
		r.Get("/products/{category}/{type}/{model}", h.getProduct)
		r.Get("/products/{category}/{type}/{model}/datasheet", h.getDatasheet)

		r.HandleFunc("/contact", h.postContact)

		if h.adminEnabled() {
			r.Group(func(r chi.Router) {
				r.Use(chimw.BasicAuth("catalog admin", map[string]string{h.adminUser: h.adminPassword}))
				r.Get("/contact/messages", h.listMessages)
				r.Patch("/contact/messages/{id}/read", h.markMessageRead)

				r.Group(func(r chi.Router) {
					r.Use(middleware.ArchiveTypeMiddleware)
					r.Post("/catalog", h.postCatalog)
					r.Get("/catalog/export", h.exportCatalog)
				})
			})
		}
	})

	if h.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(h.staticDir)))
	}

	return r
}

func (h *BaseController) adminEnabled() bool {
	return h.adminUser != "" && h.adminPassword != ""
}

func (h *BaseController) ping(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Ping(r.Context()) {
		http.Error(w, "database is unreachable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ContactResponse{Success: false, Message: msg})
}

type nopRecorder struct{}

func (nopRecorder) RecordProductView(string)      {}
func (nopRecorder) RecordImport(string)           {}
func (nopRecorder) SetCatalogSize(map[string]int) {}
