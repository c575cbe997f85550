package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/contact"
	"github.com/drstein77/batterycatalog/internal/models"
)

const maxContactBody = 64 << 10

func (h *BaseController) postContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", http.MethodPost)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, contact.MsgMethodNotAllowed)
		return
	}
	if h.contact == nil {
		writeError(w, http.StatusInternalServerError, contact.MsgProcessing)
		return
	}

	// An unreadable body leaves every field empty and fails validation.
	var req models.ContactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&req); err != nil {
		req = models.ContactRequest{}
	}
	defer r.Body.Close()

	msg, err := h.contact.Submit(r.Context(), req, contact.ClientFromRequest(r))
	if err != nil {
		var cerr *contact.Error
		if errors.As(err, &cerr) {
			writeError(w, cerr.Status, cerr.Message)
			return
		}
		h.log.Error("contact submission failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, contact.MsgProcessing)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactResponse{
		Success: true,
		Message: contact.MsgThanks,
		ID:      msg.ID,
	})
}
