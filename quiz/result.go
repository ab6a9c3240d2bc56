package quiz

import (
	"math"
	"strings"

	"github.com/andrewpaige1/engcard-api/models"
)

// Tier classifies a session's accuracy.
type Tier string

const (
	TierLow     Tier = "low"
	TierMid     Tier = "mid"
	TierHigh    Tier = "high"
	TierPerfect Tier = "perfect"
)

// TierFor maps an accuracy percentage to a tier.
func TierFor(accuracy int) Tier {
	switch {
	case accuracy < 50:
		return TierLow
	case accuracy < 80:
		return TierMid
	case accuracy < 100:
		return TierHigh
	default:
		return TierPerfect
	}
}

// Message is the encouragement shown for the tier.
func (t Tier) Message() string {
	switch t {
	case TierLow:
		return "次はもっと頑張ろう！"
	case TierMid:
		return "いい調子です！"
	case TierHigh:
		return "あと少しで完璧！"
	default:
		return "すばらしい！"
	}
}

// Result is the summary of an ended session.
type Result struct {
	Genre      string        `json:"genre"`
	Answered   int           `json:"answered"`
	Correct    int           `json:"correct"`
	Wrong      int           `json:"wrong"`
	Accuracy   int           `json:"accuracy"`
	Tier       Tier          `json:"tier"`
	Message    string        `json:"message"`
	WrongCards []models.Card `json:"wrongCards"`
}

func newResult(genre string, answered, correct int, wrongCards []models.Card) Result {
	accuracy := 0
	if answered > 0 {
		accuracy = int(math.Round(float64(correct) / float64(answered) * 100))
	}
	tier := TierFor(accuracy)
	return Result{
		Genre:      genre,
		Answered:   answered,
		Correct:    correct,
		Wrong:      len(wrongCards),
		Accuracy:   accuracy,
		Tier:       tier,
		Message:    tier.Message(),
		WrongCards: wrongCards,
	}
}

// WrongCardsText formats the missed cards for the clipboard: japanese and
// english on two lines, cards separated by a blank line.
func (r Result) WrongCardsText() string {
	entries := make([]string, len(r.WrongCards))
	for i, c := range r.WrongCards {
		entries[i] = c.Japanese + "\n" + c.English
	}
	return strings.Join(entries, "\n\n")
}
