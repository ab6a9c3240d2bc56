package quiz

import (
	"math/rand"

	"github.com/andrewpaige1/engcard-api/models"
)

// Weight is the sampling weight of a card: 1 + 2*wrongCount.
func Weight(c models.Card) int {
	if c.WrongCount <= 0 {
		return 1
	}
	return 1 + 2*c.WrongCount
}

// PickWeighted returns the index of a card drawn with probability
// proportional to its Weight, or -1 for an empty pool.
func PickWeighted(cards []models.Card, rng *rand.Rand) int {
	if len(cards) == 0 {
		return -1
	}

	total := 0
	for _, c := range cards {
		total += Weight(c)
	}

	r := rng.Float64() * float64(total)
	for i, c := range cards {
		r -= float64(Weight(c))
		if r <= 0 {
			return i
		}
	}
	return len(cards) - 1
}
