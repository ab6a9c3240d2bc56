package quiz

// View is the render state of the current question.
type View struct {
	SessionID   string `json:"sessionId"`
	Genre       string `json:"genre"`
	Number      int    `json:"number"`
	Correct     int    `json:"correct"`
	Wrong       int    `json:"wrong"`
	HasProgress bool   `json:"hasProgress"`

	CardID   string `json:"cardId"`
	Japanese string `json:"japanese"`
	Favorite bool   `json:"favorite"`
	HasMemo  bool   `json:"hasMemo"`

	ClozeRevealed  bool `json:"clozeRevealed"`
	AnswerRevealed bool `json:"answerRevealed"`
	MemoRevealed   bool `json:"memoRevealed"`

	// Cloze is set once the hint is revealed, English once the answer is
	Cloze   string `json:"cloze,omitempty"`
	English string `json:"english,omitempty"`
	Memo    string `json:"memo,omitempty"`

	SpeechText string `json:"speechText"`
}

// View returns the current render state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.question.card
	v := View{
		SessionID:      s.id,
		Genre:          s.genre,
		Number:         s.totalCount,
		Correct:        s.correctCount,
		Wrong:          len(s.wrongCards),
		HasProgress:    s.totalCount > 1,
		CardID:         card.ID,
		Japanese:       card.Japanese,
		Favorite:       card.Favorite,
		HasMemo:        card.HasMemo(),
		ClozeRevealed:  s.clozeRevealed,
		AnswerRevealed: s.answerRevealed,
		MemoRevealed:   s.memoRevealed,
		SpeechText:     card.English,
	}
	switch {
	case s.answerRevealed:
		v.English = card.English
	case s.clozeRevealed:
		v.Cloze = s.question.cloze.HTML()
	}
	if v.HasMemo && (s.answerRevealed || s.memoRevealed) {
		v.Memo = card.Memo
	}
	return v
}
