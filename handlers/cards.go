package handlers

import (
	"net/http"

	"github.com/andrewpaige1/engcard-api/models"
	"github.com/andrewpaige1/engcard-api/quiz"
	"github.com/andrewpaige1/engcard-api/store"
)

type cardRequest struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
	Genre    string `json:"genre"`
	Memo     string `json:"memo"`
}

// ListCards returns every card, or the cards of one genre with ?genre=.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	var cards []models.Card
	var err error
	if genre := r.URL.Query().Get("genre"); genre != "" {
		cards, err = h.Cards.ListByGenre(r.Context(), genre)
	} else {
		cards, err = h.Cards.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, "ListCards", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	card, err := h.Cards.Add(r.Context(), req.Japanese, req.English, req.Genre, req.Memo)
	if err != nil {
		writeError(w, "CreateCard", err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Cards.Get(r.Context(), r.PathValue("cardID"))
	if err != nil {
		writeError(w, "GetCard", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// UpdateCard edits the text fields of a card and refreshes live quiz sessions
// holding it.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	card, err := h.Cards.Edit(r.Context(), r.PathValue("cardID"), req.Japanese, req.English, req.Genre, req.Memo)
	if err != nil {
		writeError(w, "UpdateCard", err)
		return
	}
	h.Sessions.Refresh(*card)
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.Cards.Delete(r.Context(), r.PathValue("cardID")); err != nil {
		writeError(w, "DeleteCard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	card, err := h.Cards.ToggleFavorite(r.Context(), r.PathValue("cardID"))
	if err != nil {
		writeError(w, "ToggleFavorite", err)
		return
	}
	h.Sessions.Refresh(*card)
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Cards.ListFavorites(r.Context())
	if err != nil {
		writeError(w, "ListFavorites", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// ListMissed returns the cards answered wrong at least once, most missed first.
func (h *Handler) ListMissed(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Cards.ListMissed(r.Context())
	if err != nil {
		writeError(w, "ListMissed", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) ResetMissed(w http.ResponseWriter, r *http.Request) {
	n, err := h.Cards.ResetAllWrongCounts(r.Context())
	if err != nil {
		writeError(w, "ResetMissed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"reset": n})
}

type genresResponse struct {
	Genres         []string           `json:"genres"`
	Counts         []store.GenreCount `json:"counts"`
	Favorites      int64              `json:"favorites"`
	FavoritesGenre string             `json:"favoritesGenre,omitempty"`
}

// ListGenres backs the genre select screen. The favorites pseudo genre is
// offered only when at least one card is a favorite.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Cards.GenreCounts(r.Context())
	if err != nil {
		writeError(w, "ListGenres", err)
		return
	}
	favorites, err := h.Cards.CountFavorites(r.Context())
	if err != nil {
		writeError(w, "ListGenres", err)
		return
	}

	resp := genresResponse{
		Genres:    make([]string, 0, len(counts)),
		Counts:    counts,
		Favorites: favorites,
	}
	for _, gc := range counts {
		resp.Genres = append(resp.Genres, gc.Label)
	}
	if favorites > 0 {
		resp.FavoritesGenre = quiz.FavoritesGenre
	}
	writeJSON(w, http.StatusOK, resp)
}
