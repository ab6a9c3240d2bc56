package handlers

import (
	"net/http"
)

type syncRequest struct {
	Passphrase string `json:"passphrase"`
}

// UploadSync encrypts the export and stores it in the configured gist.
// The passphrase is only held for the duration of the request.
func (h *Handler) UploadSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	res, err := h.Sync.Upload(r.Context(), req.Passphrase)
	if err != nil {
		writeError(w, "UploadSync", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DownloadSync restores cards from the gist.
func (h *Handler) DownloadSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	n, err := h.Sync.Download(r.Context(), req.Passphrase)
	if err != nil {
		writeError(w, "DownloadSync", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
