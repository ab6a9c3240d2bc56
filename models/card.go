package models

import (
	"time"
)

// Card represents a single Japanese -> English study sentence
type Card struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	Japanese string `gorm:"not null" json:"japanese"`
	English  string `gorm:"not null" json:"english"`
	// Raw genre string, one or more labels separated by "," or "、"
	Genre string `gorm:"not null;index" json:"genre"`
	Memo  string `gorm:"not null" json:"memo"`

	Favorite     bool       `gorm:"not null" json:"favorite"`
	WrongCount   int        `gorm:"not null" json:"wrongCount"`
	LastAnswered *time.Time `json:"lastAnswered"`

	// Insertion order for listing, never exported
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"-"`
}

// Genres returns the parsed genre labels of the card.
func (c Card) Genres() []string {
	return ParseGenres(c.Genre)
}

// HasGenre reports whether label is one of the card's parsed genres.
func (c Card) HasGenre(label string) bool {
	for _, g := range c.Genres() {
		if g == label {
			return true
		}
	}
	return false
}

// HasMemo reports whether the card carries a non-blank memo.
func (c Card) HasMemo() bool {
	return trimmed(c.Memo) != ""
}

// Clone returns a copy that shares no pointers with c.
func (c Card) Clone() Card {
	out := c
	if c.LastAnswered != nil {
		v := *c.LastAnswered
		out.LastAnswered = &v
	}
	return out
}
