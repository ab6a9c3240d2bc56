package handlers

import (
	"io"
	"net/http"
)

const maxImportBytes = 10 << 20

// ExportCards downloads every card as pretty printed JSON.
func (h *Handler) ExportCards(w http.ResponseWriter, r *http.Request) {
	data, err := h.Cards.ExportAll(r.Context())
	if err != nil {
		writeError(w, "ExportCards", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="flashcards_export.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportCards upserts a JSON array of cards by id.
func (h *Handler) ImportCards(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		http.Error(w, "Could not read request", http.StatusBadRequest)
		return
	}

	n, err := h.Cards.ImportAll(r.Context(), data)
	if err != nil {
		writeError(w, "ImportCards", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
