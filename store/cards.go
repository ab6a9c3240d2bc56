package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/engcard-api/models"
)

// CardStore is the only writer of card records.
type CardStore struct {
	db    *gorm.DB
	newID func() (string, error)
}

// NewCardStore creates a store on an already migrated database.
func NewCardStore(db *gorm.DB) *CardStore {
	return &CardStore{
		db:    db,
		newID: func() (string, error) { return gonanoid.New() },
	}
}

const listOrder = "created_at, id"

// Add creates a card. favorite, wrongCount and lastAnswered start empty.
func (s *CardStore) Add(ctx context.Context, japanese, english, genre, memo string) (*models.Card, error) {
	japanese, english, genre, memo = trimFields(japanese, english, genre, memo)
	if japanese == "" || english == "" || genre == "" {
		return nil, ErrValidation
	}

	id, err := s.newID()
	if err != nil {
		return nil, persistenceError("generate id", err)
	}

	card := models.Card{
		ID:       id,
		Japanese: japanese,
		English:  english,
		Genre:    genre,
		Memo:     memo,
	}
	if err := s.db.WithContext(ctx).Create(&card).Error; err != nil {
		return nil, persistenceError("create card", err)
	}
	return &card, nil
}

// Get returns the card with the given id or ErrNotFound.
func (s *CardStore) Get(ctx context.Context, id string) (*models.Card, error) {
	return getCard(s.db.WithContext(ctx), id)
}

func getCard(db *gorm.DB, id string) (*models.Card, error) {
	var card models.Card
	if err := db.Where("id = ?", id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("get card", err)
	}
	return &card, nil
}

// Update replaces every field of the stored card with the same id.
// Updating an id that does not exist is a no-op.
func (s *CardStore) Update(ctx context.Context, card *models.Card) error {
	_, err := updateCard(s.db.WithContext(ctx), card)
	return err
}

func updateCard(db *gorm.DB, card *models.Card) (bool, error) {
	result := db.Model(&models.Card{}).Where("id = ?", card.ID).Updates(map[string]any{
		"japanese":      card.Japanese,
		"english":       card.English,
		"genre":         card.Genre,
		"memo":          card.Memo,
		"favorite":      card.Favorite,
		"wrong_count":   card.WrongCount,
		"last_answered": card.LastAnswered,
	})
	if result.Error != nil {
		return false, persistenceError("update card", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Edit rewrites the text fields of a card, keeping its study history.
func (s *CardStore) Edit(ctx context.Context, id, japanese, english, genre, memo string) (*models.Card, error) {
	japanese, english, genre, memo = trimFields(japanese, english, genre, memo)
	if japanese == "" || english == "" || genre == "" {
		return nil, ErrValidation
	}

	var edited *models.Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := getCard(tx, id)
		if err != nil {
			return err
		}
		card.Japanese, card.English, card.Genre, card.Memo = japanese, english, genre, memo
		if _, err := updateCard(tx, card); err != nil {
			return err
		}
		edited = card
		return nil
	})
	if err != nil {
		return nil, wrapTxError("edit card", err)
	}
	return edited, nil
}

// Delete removes a card. Deleting a missing id is not an error.
func (s *CardStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Card{}).Error; err != nil {
		return persistenceError("delete card", err)
	}
	return nil
}

// ListAll returns every card in insertion order.
func (s *CardStore) ListAll(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Order(listOrder).Find(&cards).Error; err != nil {
		return nil, persistenceError("list cards", err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, nil
}

// ListByGenre returns the cards whose parsed genre set contains label.
// Matching is exact and case-sensitive after trimming.
func (s *CardStore) ListByGenre(ctx context.Context, label string) ([]models.Card, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return []models.Card{}, nil
	}

	// LIKE narrows on the indexed raw column, the parsed match decides
	var candidates []models.Card
	err := s.db.WithContext(ctx).
		Where(`genre LIKE ? ESCAPE '\'`, "%"+escapeLike(label)+"%").
		Order(listOrder).
		Find(&candidates).Error
	if err != nil {
		return nil, persistenceError("list cards by genre", err)
	}

	cards := make([]models.Card, 0, len(candidates))
	for _, c := range candidates {
		if c.HasGenre(label) {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// ListFavorites returns the cards marked as favorite.
func (s *CardStore) ListFavorites(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Where("favorite = ?", true).Order(listOrder).Find(&cards).Error; err != nil {
		return nil, persistenceError("list favorites", err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, nil
}

// CountFavorites returns how many cards are marked as favorite.
func (s *CardStore) CountFavorites(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Card{}).Where("favorite = ?", true).Count(&n).Error; err != nil {
		return 0, persistenceError("count favorites", err)
	}
	return n, nil
}

// ListMissed returns the cards answered wrong at least once, most missed first.
func (s *CardStore) ListMissed(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Where("wrong_count > ?", 0).
		Order("wrong_count DESC, " + listOrder).
		Find(&cards).Error
	if err != nil {
		return nil, persistenceError("list missed cards", err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, nil
}

// GenreCount is the number of cards carrying a genre label.
type GenreCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ListGenres returns every distinct genre label, sorted.
func (s *CardStore) ListGenres(ctx context.Context) ([]string, error) {
	counts, err := s.GenreCounts(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(counts))
	for _, gc := range counts {
		labels = append(labels, gc.Label)
	}
	return labels, nil
}

// GenreCounts returns every distinct genre label with its card count, sorted by label.
func (s *CardStore) GenreCounts(ctx context.Context) ([]GenreCount, error) {
	var raw []string
	if err := s.db.WithContext(ctx).Model(&models.Card{}).Pluck("genre", &raw).Error; err != nil {
		return nil, persistenceError("list genres", err)
	}

	counts := make(map[string]int)
	for _, g := range raw {
		for _, label := range models.ParseGenres(g) {
			counts[label]++
		}
	}

	out := make([]GenreCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, GenreCount{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b GenreCount) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out, nil
}

// ToggleFavorite flips the favorite flag and returns the updated card.
func (s *CardStore) ToggleFavorite(ctx context.Context, id string) (*models.Card, error) {
	var toggled *models.Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := getCard(tx, id)
		if err != nil {
			return err
		}
		card.Favorite = !card.Favorite
		if _, err := updateCard(tx, card); err != nil {
			return err
		}
		toggled = card
		return nil
	})
	if err != nil {
		return nil, wrapTxError("toggle favorite", err)
	}
	return toggled, nil
}

// ResetAllWrongCounts zeroes wrongCount on every missed card and returns how
// many were reset. lastAnswered is left alone.
func (s *CardStore) ResetAllWrongCounts(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Card{}).Where("wrong_count > ?", 0).Update("wrong_count", 0)
	if result.Error != nil {
		return 0, persistenceError("reset wrong counts", result.Error)
	}
	return result.RowsAffected, nil
}

func trimFields(japanese, english, genre, memo string) (string, string, string, string) {
	return strings.TrimSpace(japanese), strings.TrimSpace(english), strings.TrimSpace(genre), strings.TrimSpace(memo)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// errors returned from inside a transaction are either sentinels already or raw driver errors
func wrapTxError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPersistence) || errors.Is(err, ErrValidation) {
		return err
	}
	return persistenceError(op, err)
}
