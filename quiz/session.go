package quiz

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/andrewpaige1/engcard-api/models"
	"github.com/andrewpaige1/engcard-api/store"
)

// Question is the card being asked together with its cloze.
type Question struct {
	index int
	card  models.Card
	cloze Cloze
}

// Card returns a copy of the question's card.
func (q Question) Card() models.Card { return q.card.Clone() }

// Cloze returns the cloze built when the question was drawn.
func (q Question) Cloze() Cloze { return q.cloze }

// Session is one quiz run over a pool fixed at start.
// All methods are safe for concurrent use.
type Session struct {
	id     string
	genre  string
	engine *Engine

	mu  sync.Mutex
	rng *rand.Rand

	pool         []models.Card
	question     Question
	totalCount   int
	correctCount int
	wrongCards   []models.Card

	clozeRevealed  bool
	answerRevealed bool
	memoRevealed   bool

	// set while a mark is being persisted, cleared by the next draw
	scoring bool
}

// ID returns the session handle.
func (s *Session) ID() string { return s.id }

// Genre returns the genre label or FavoritesGenre the pool was built from.
func (s *Session) Genre() string { return s.genre }

// Question returns the current question.
func (s *Session) Question() Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

// caller holds s.mu
func (s *Session) draw() {
	s.redraw()
	s.totalCount++
}

// redraw replaces the question on screen without counting it.
// caller holds s.mu
func (s *Session) redraw() {
	i := PickWeighted(s.pool, s.rng)
	card := s.pool[i].Clone()
	s.question = Question{index: i, card: card, cloze: BuildCloze(card.English, s.rng)}
	s.clozeRevealed = false
	s.answerRevealed = false
	s.memoRevealed = false
	s.scoring = false
}

// Next swaps the current question for another draw without scoring it. The
// question number stays the same, so a skipped question never counts as
// answered. It does nothing while a mark is being persisted.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scoring {
		return
	}
	s.redraw()
}

// RevealCloze shows the cloze hint.
func (s *Session) RevealCloze() {
	s.mu.Lock()
	s.clozeRevealed = true
	s.mu.Unlock()
}

// RevealAnswer shows the full English sentence, and the memo if there is one.
func (s *Session) RevealAnswer() {
	s.mu.Lock()
	s.answerRevealed = true
	s.mu.Unlock()
}

// RevealMemo shows the memo.
func (s *Session) RevealMemo() {
	s.mu.Lock()
	s.memoRevealed = true
	s.mu.Unlock()
}

// MarkCorrect scores the current question as correct and draws the next one.
// It reports false when the question was already being scored.
func (s *Session) MarkCorrect(ctx context.Context) (bool, error) {
	return s.score(ctx, true)
}

// MarkWrong counts a miss on the current card and draws the next question.
// It reports false when the question was already being scored.
func (s *Session) MarkWrong(ctx context.Context) (bool, error) {
	return s.score(ctx, false)
}

func (s *Session) score(ctx context.Context, correct bool) (bool, error) {
	s.mu.Lock()
	if s.scoring {
		s.mu.Unlock()
		return false, nil
	}
	s.scoring = true
	held := s.question.card.Clone()
	s.mu.Unlock()

	card, err := s.engine.cards.Get(ctx, held.ID)
	if errors.Is(err, store.ErrNotFound) {
		// deleted mid-session, the write below is a no-op
		card, err = &held, nil
	}
	if err != nil {
		s.releaseScoring()
		return false, err
	}

	stamp := s.engine.now()
	card.LastAnswered = &stamp
	if !correct {
		card.WrongCount++
	}
	if err := s.engine.cards.Update(ctx, card); err != nil {
		s.releaseScoring()
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if correct {
		s.correctCount++
	} else {
		s.wrongCards = append(s.wrongCards, card.Clone())
	}
	s.pool[s.question.index] = card.Clone()
	s.draw()
	return true, nil
}

func (s *Session) releaseScoring() {
	s.mu.Lock()
	s.scoring = false
	s.mu.Unlock()
}

// Refresh replaces the session's copies of card, for example after an edit or
// a favorite toggle. It reports whether the card is in the pool. The cloze is
// rebuilt only when the English text of the current question changed.
func (s *Session) Refresh(card models.Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.pool {
		if s.pool[i].ID == card.ID {
			s.pool[i] = card.Clone()
			found = true
		}
	}
	if s.question.card.ID == card.ID {
		if s.question.card.English != card.English {
			s.question.cloze = BuildCloze(card.English, s.rng)
		}
		s.question.card = card.Clone()
	}
	return found
}

// HasProgress reports whether more than one question has been drawn,
// meaning ending now would lose answered questions.
func (s *Session) HasProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCount > 1
}

// PoolSize returns the number of cards in the session pool.
func (s *Session) PoolSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pool)
}

// End summarizes the session. The question on screen is not counted.
func (s *Session) End() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	wrong := make([]models.Card, len(s.wrongCards))
	for i, c := range s.wrongCards {
		wrong[i] = c.Clone()
	}
	return newResult(s.genre, s.totalCount-1, s.correctCount, wrong)
}

// Restart starts a new session over the same genre. The receiver is left as is.
func (s *Session) Restart(ctx context.Context) (*Session, error) {
	return s.engine.Start(ctx, s.genre)
}
