package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrewpaige1/engcard-api/quiz"
)

type startRequest struct {
	Genre string `json:"genre"`
}

type markResponse struct {
	quiz.View
	Applied bool `json:"applied"`
}

type endResponse struct {
	quiz.Result
	WrongCardsText string `json:"wrongCardsText"`
}

// StartSession starts a quiz over a genre, or over the favorites with
// quiz.FavoritesGenre, and returns the first question.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	s, err := h.Quiz.Start(r.Context(), req.Genre)
	if err != nil {
		writeError(w, "StartSession", err)
		return
	}
	h.Sessions.Put(s)
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request, op string) (*quiz.Session, bool) {
	s, err := h.Sessions.Get(r.PathValue("sessionID"))
	if err != nil {
		writeError(w, op, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, "GetSession")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// DiscardSession drops a session without producing a result.
func (h *Handler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Sessions.Remove(r.PathValue("sessionID")); err != nil {
		writeError(w, "DiscardSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reveal shows the cloze hint, the answer or the memo of the current question.
func (h *Handler) Reveal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, "Reveal")
	if !ok {
		return
	}

	switch r.PathValue("what") {
	case "cloze":
		s.RevealCloze()
	case "answer":
		s.RevealAnswer()
	case "memo":
		s.RevealMemo()
	default:
		http.Error(w, "reveal must be one of cloze, answer, memo", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *Handler) MarkCorrect(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, "MarkCorrect", (*quiz.Session).MarkCorrect)
}

func (h *Handler) MarkWrong(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, "MarkWrong", (*quiz.Session).MarkWrong)
}

// a duplicate mark on the same question is answered with applied=false
func (h *Handler) mark(w http.ResponseWriter, r *http.Request, op string, score func(*quiz.Session, context.Context) (bool, error)) {
	s, ok := h.session(w, r, op)
	if !ok {
		return
	}
	applied, err := score(s, r.Context())
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, markResponse{View: s.View(), Applied: applied})
}

// NextQuestion swaps the current question for another without scoring or
// counting it.
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, "NextQuestion")
	if !ok {
		return
	}
	s.Next()
	writeJSON(w, http.StatusOK, s.View())
}

// EndSession returns the result. The session stays available for a restart
// until it is discarded or restarted.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, "EndSession")
	if !ok {
		return
	}
	res := s.End()
	writeJSON(w, http.StatusOK, endResponse{Result: res, WrongCardsText: res.WrongCardsText()})
}

// RestartSession replaces the session with a fresh one over the same genre.
// When the genre has no cards left the old session is dropped, since it can
// never be restarted.
func (h *Handler) RestartSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, "RestartSession")
	if !ok {
		return
	}
	next, err := s.Restart(r.Context())
	if err != nil {
		if errors.Is(err, quiz.ErrEmptyPool) {
			h.Sessions.Remove(s.ID())
		}
		writeError(w, "RestartSession", err)
		return
	}
	h.Sessions.Replace(s.ID(), next)
	writeJSON(w, http.StatusCreated, next.View())
}
