package entity

import "time"

// ChatTurn is one persisted or outbound question/answer pair. Bot is nil
// while the question is still waiting for an answer.
type ChatTurn struct {
	User string
	Bot  *string
}

type Answer struct {
	Text            string
	SupportingFacts []string
	CitationsRaw    *string
	ConversationId  string
	Error           *string
}

// Exchange pairs a submitted question with the answer it produced.
type Exchange struct {
	Question string
	Answer   Answer
}

type ConversationSummary struct {
	Id        string
	Title     string
	Summary   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ConversationDeleteIntent struct {
	TargetId  string
	Confirmed bool
}

// Turns flattens the history into the shape sent to the backend.
func Turns(history []Exchange) []ChatTurn {
	turns := make([]ChatTurn, 0, len(history)+1)
	for _, ex := range history {
		bot := ex.Answer.Text
		turns = append(turns, ChatTurn{User: ex.Question, Bot: &bot})
	}
	return turns
}
