package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/andrewpaige1/engcard-api/cloudsync"
	"github.com/andrewpaige1/engcard-api/quiz"
	"github.com/andrewpaige1/engcard-api/store"
)

// Handler serves the JSON API over the card store, the quiz engine and sync.
type Handler struct {
	Cards    *store.CardStore
	Quiz     *quiz.Engine
	Sessions *quiz.Registry
	Sync     *cloudsync.Service
}

// Routes registers every API route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	// Cards
	mux.HandleFunc("GET /api/cards", h.ListCards)
	mux.HandleFunc("POST /api/cards", h.CreateCard)
	mux.HandleFunc("GET /api/cards/favorites", h.ListFavorites)
	mux.HandleFunc("GET /api/cards/missed", h.ListMissed)
	mux.HandleFunc("POST /api/cards/missed/reset", h.ResetMissed)
	mux.HandleFunc("GET /api/cards/{cardID}", h.GetCard)
	mux.HandleFunc("PUT /api/cards/{cardID}", h.UpdateCard)
	mux.HandleFunc("DELETE /api/cards/{cardID}", h.DeleteCard)
	mux.HandleFunc("POST /api/cards/{cardID}/favorite", h.ToggleFavorite)
	mux.HandleFunc("GET /api/genres", h.ListGenres)

	// Backup
	mux.HandleFunc("GET /api/export", h.ExportCards)
	mux.HandleFunc("POST /api/import", h.ImportCards)

	// Quiz
	mux.HandleFunc("POST /api/quiz/sessions", h.StartSession)
	mux.HandleFunc("GET /api/quiz/sessions/{sessionID}", h.GetSession)
	mux.HandleFunc("DELETE /api/quiz/sessions/{sessionID}", h.DiscardSession)
	mux.HandleFunc("POST /api/quiz/sessions/{sessionID}/reveal/{what}", h.Reveal)
	mux.HandleFunc("POST /api/quiz/sessions/{sessionID}/correct", h.MarkCorrect)
	mux.HandleFunc("POST /api/quiz/sessions/{sessionID}/wrong", h.MarkWrong)
	mux.HandleFunc("POST /api/quiz/sessions/{sessionID}/next", h.NextQuestion)
	mux.HandleFunc("POST /api/quiz/sessions/{sessionID}/end", h.EndSession)
	mux.HandleFunc("POST /api/quiz/sessions/{sessionID}/restart", h.RestartSession)

	// Sync
	mux.HandleFunc("POST /api/sync/upload", h.UploadSync)
	mux.HandleFunc("POST /api/sync/download", h.DownloadSync)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

// writeError maps domain errors to a status code. Anything unknown is logged
// and reported as an internal error.
func writeError(w http.ResponseWriter, op string, err error) {
	var apiErr *cloudsync.APIError
	switch {
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrFormat),
		errors.Is(err, cloudsync.ErrPassphraseRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, quiz.ErrSessionNotFound),
		errors.Is(err, cloudsync.ErrRemoteMissing):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrEmptyPool):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, cloudsync.ErrNotConfigured):
		http.Error(w, err.Error(), http.StatusPreconditionFailed)
	case errors.Is(err, cloudsync.ErrDecrypt):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.As(err, &apiErr):
		log.Printf("%s: %v", op, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("%s: %v", op, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
