package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/compress"
	"github.com/drstein77/batterycatalog/internal/middleware"
	"github.com/drstein77/batterycatalog/internal/models"
	"github.com/drstein77/batterycatalog/internal/storage"
)

func (h *BaseController) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.MessageQuery{}
	query.UnreadOnly, _ = strconv.ParseBool(q.Get("unread"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))
	query.Offset, _ = strconv.Atoi(q.Get("offset"))

	messages, err := h.storage.ListContactMessages(r.Context(), query)
	if err != nil {
		h.log.Error("failed to list contact messages", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al obtener los mensajes")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *BaseController) markMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(urlParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	err = h.storage.MarkContactMessageRead(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Mensaje no encontrado")
	case err != nil:
		h.log.Error("failed to mark message as read", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al actualizar el mensaje")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *BaseController) postCatalog(w http.ResponseWriter, r *http.Request) {
	entries, ok := middleware.ArchiveEntries(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "archive body is required")
		return
	}

	files := make([]catalog.File, 0, len(entries))
	for _, e := range entries {
		files = append(files, catalog.File{Name: e.Name, Data: e.Data})
	}

	response, err := h.storage.ProcessCatalog(r.Context(), files)
	if errors.Is(err, storage.ErrNotSaved) {
		h.metrics.RecordImport("error")
		h.log.Error("failed to save imported catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save catalog")
		return
	}
	if err != nil {
		h.metrics.RecordImport("error")
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to process catalog: %v", err))
		return
	}
	h.metrics.RecordImport("ok")
	h.metrics.SetCatalogSize(categorySizes(h.storage.Catalog()))
	h.log.Info("catalog imported",
		zap.Int("total_categories", response.TotalCategories),
		zap.Int("total_items", response.TotalItems))

	writeJSON(w, http.StatusOK, response)
}

func (h *BaseController) exportCatalog(w http.ResponseWriter, r *http.Request) {
	files, err := h.storage.ExportCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to export catalog: %v", err))
		return
	}

	archiveType := middleware.ArchiveType(r.Context())
	name := fmt.Sprintf("catalog-%s.%s", time.Now().UTC().Format("20060102"), archiveType)
	w.Header().Set("Content-Type", compress.ContentType(archiveType))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	aw, err := compress.NewWriter(archiveType, w)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, f := range files {
		if err := aw.Add(f.Name, f.Data); err != nil {
			h.log.Error("failed to write catalog archive", zap.String("file", f.Name), zap.Error(err))
			return
		}
	}
	if err := aw.Close(); err != nil {
		h.log.Error("failed to finish catalog archive", zap.Error(err))
	}
}

func categorySizes(c *catalog.Catalog) map[string]int {
	sizes := make(map[string]int)
	for _, cat := range c.Categories() {
		sizes[cat.Slug] = len(cat.Products)
	}
	return sizes
}

// RecordCatalogSize publishes the product counts of the served catalog.
func (h *BaseController) RecordCatalogSize() {
	h.metrics.SetCatalogSize(categorySizes(h.storage.Catalog()))
}
