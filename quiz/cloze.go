package quiz

import (
	"html"
	"math"
	"math/rand"
	"regexp"
	"strings"
)

// GenericBlank is shown for sentences too short to blank word by word.
const GenericBlank = `<span class="blank">______</span>`

const (
	minHideRatio     = 0.30
	hideRatioSpread  = 0.10
	minCandidateSize = 3
	minBlankWidth    = 4
)

var trailingPunct = regexp.MustCompile(`[^a-zA-Z']+$`)

// Cloze is a fill-in-the-blank rendering of one English sentence.
// It is built once per question and never changes afterwards.
type Cloze struct {
	words  []string
	hidden []bool
	html   string
}

// BuildCloze hides 30-40% of the words of english, preferring words with at
// least three letters.
func BuildCloze(english string, rng *rand.Rand) Cloze {
	words := strings.Fields(english)
	if len(words) <= 1 {
		return Cloze{words: words, hidden: make([]bool, len(words)), html: GenericBlank}
	}

	ratio := minHideRatio + rng.Float64()*hideRatioSpread
	hideCount := max(1, int(math.Round(float64(len(words))*ratio)))

	all := make([]int, 0, len(words))
	long := make([]int, 0, len(words))
	for i, w := range words {
		all = append(all, i)
		if letterCount(w) >= minCandidateSize {
			long = append(long, i)
		}
	}
	pool := all
	if len(long) >= hideCount {
		pool = long
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	hidden := make([]bool, len(words))
	for _, i := range pool[:hideCount] {
		hidden[i] = true
	}

	c := Cloze{words: words, hidden: hidden}
	c.html = c.render()
	return c
}

func (c Cloze) render() string {
	parts := make([]string, len(c.words))
	for i, w := range c.words {
		if !c.hidden[i] {
			parts[i] = html.EscapeString(w)
			continue
		}
		blank := strings.Repeat("_", max(letterCount(w), minBlankWidth))
		parts[i] = `<span class="blank">` + blank + `</span>` + html.EscapeString(trailingPunct.FindString(w))
	}
	return strings.Join(parts, " ")
}

// HTML returns the rendered cloze. Calling it repeatedly returns the same text.
func (c Cloze) HTML() string {
	return c.html
}

// HiddenCount returns how many words are blanked. Single-word sentences report 0.
func (c Cloze) HiddenCount() int {
	n := 0
	for _, h := range c.hidden {
		if h {
			n++
		}
	}
	return n
}

// WordCount returns the number of whitespace separated words.
func (c Cloze) WordCount() int {
	return len(c.words)
}

func letterCount(w string) int {
	n := 0
	for i := 0; i < len(w); i++ {
		if b := w[i]; (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
			n++
		}
	}
	return n
}
