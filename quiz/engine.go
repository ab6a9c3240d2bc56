package quiz

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/andrewpaige1/engcard-api/models"
)

// FavoritesGenre selects the favorite cards instead of a genre label.
const FavoritesGenre = "⭐お気に入り"

// CardSource is the part of the card store the engine reads from and writes back to.
type CardSource interface {
	Get(ctx context.Context, id string) (*models.Card, error)
	Update(ctx context.Context, card *models.Card) error
	ListByGenre(ctx context.Context, label string) ([]models.Card, error)
	ListFavorites(ctx context.Context) ([]models.Card, error)
}

// EngineConfig configures an Engine. Zero fields get defaults.
type EngineConfig struct {
	// Seed for question sampling and cloze generation. Zero seeds from the clock.
	Seed int64
	// Now stamps lastAnswered. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Engine starts quiz sessions over cards from a CardSource.
type Engine struct {
	cards CardSource
	now   func() time.Time
	newID func() (string, error)

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an Engine reading cards from src.
func NewEngine(src CardSource, cfg EngineConfig) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		cards: src,
		now:   now,
		newID: func() (string, error) { return gonanoid.New() },
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Start resolves the card pool for genre and draws the first question.
// It returns ErrEmptyPool, and no session, when nothing matches.
func (e *Engine) Start(ctx context.Context, genre string) (*Session, error) {
	genre = strings.TrimSpace(genre)

	var pool []models.Card
	var err error
	if genre == FavoritesGenre {
		pool, err = e.cards.ListFavorites(ctx)
	} else {
		pool, err = e.cards.ListByGenre(ctx, genre)
	}
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	id, err := e.newID()
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:     id,
		genre:  genre,
		engine: e,
		rng:    rand.New(rand.NewSource(e.nextSeed())),
		pool:   make([]models.Card, len(pool)),
	}
	for i, c := range pool {
		s.pool[i] = c.Clone()
	}
	s.draw()
	return s, nil
}

// each session samples from its own source so sessions never share a *rand.Rand
func (e *Engine) nextSeed() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Int63()
}
