package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/engcard-api/models"
)

// ExportAll serializes every card as a 2-space indented JSON array.
func (s *CardStore) ExportAll(ctx context.Context) ([]byte, error) {
	cards, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return nil, persistenceError("encode export", err)
	}
	return data, nil
}

// importRecord tells a missing field apart from a zero one.
type importRecord struct {
	ID           *string    `json:"id"`
	Japanese     *string    `json:"japanese"`
	English      *string    `json:"english"`
	Genre        *string    `json:"genre"`
	Memo         *string    `json:"memo"`
	Favorite     *bool      `json:"favorite"`
	WrongCount   *int       `json:"wrongCount"`
	LastAnswered *time.Time `json:"lastAnswered"`
}

var importColumns = []string{"japanese", "english", "genre", "memo", "favorite", "wrong_count", "last_answered"}

// ImportAll upserts a JSON array of cards by id and returns the number of
// records in the payload. Missing ids are generated and missing optional
// fields are backfilled. Either every record is written or none is.
func (s *CardStore) ImportAll(ctx context.Context, data []byte) (int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, formatError("%v", err)
	}
	if raw == nil {
		return 0, formatError("top-level value is not an array")
	}

	cards := make([]models.Card, 0, len(raw))
	position := make(map[string]int, len(raw))
	for i, msg := range raw {
		card, err := s.decodeRecord(i, msg)
		if err != nil {
			return 0, err
		}
		// later records with the same id win, like sequential puts
		if at, ok := position[card.ID]; ok {
			cards[at] = card
			continue
		}
		position[card.ID] = len(cards)
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(importColumns),
		}).CreateInBatches(&cards, 100).Error
	})
	if err != nil {
		return 0, persistenceError("import cards", err)
	}
	return len(raw), nil
}

func (s *CardStore) decodeRecord(i int, msg json.RawMessage) (models.Card, error) {
	var rec importRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return models.Card{}, formatError("record %d: %v", i, err)
	}
	if blank(rec.Japanese) || blank(rec.English) || blank(rec.Genre) {
		return models.Card{}, formatError("record %d: japanese, english and genre are required", i)
	}

	card := models.Card{
		Japanese:     *rec.Japanese,
		English:      *rec.English,
		Genre:        *rec.Genre,
		LastAnswered: rec.LastAnswered,
	}
	if rec.ID != nil && *rec.ID != "" {
		card.ID = *rec.ID
	} else {
		id, err := s.newID()
		if err != nil {
			return models.Card{}, persistenceError("generate id", err)
		}
		card.ID = id
	}
	if rec.Memo != nil {
		card.Memo = *rec.Memo
	}
	if rec.Favorite != nil {
		card.Favorite = *rec.Favorite
	}
	if rec.WrongCount != nil {
		if *rec.WrongCount < 0 {
			return models.Card{}, formatError("record %d: wrongCount must not be negative", i)
		}
		card.WrongCount = *rec.WrongCount
	}
	return card, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
