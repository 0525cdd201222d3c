package entity

// GenerationOptions are the user-tunable overrides sent with every submission.
type GenerationOptions struct {
	PromptTemplate           string `validate:"max=4000"`
	ExcludeCategory          string `validate:"max=200"`
	TopK                     int    `validate:"min=1,max=50"`
	UseSemanticRanker        bool
	UseSemanticCaptions      bool `validate:"captions_need_ranker"`
	SuggestFollowupQuestions bool
}

func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		TopK:              3,
		UseSemanticRanker: true,
	}
}

// Session is a point-in-time copy of the controller state. Slices are owned
// by the snapshot and safe to read without locking.
type Session struct {
	ConversationId    string
	History           []Exchange
	IsLoading         bool
	IsFetchingHistory bool
	LastError         error
	LastQuestion      string
	Panel             PanelSelection
	DeleteIntent      ConversationDeleteIntent
	Options           GenerationOptions
}

func (s Session) Clone() Session {
	out := s
	out.History = make([]Exchange, len(s.History))
	copy(out.History, s.History)
	if s.Panel.ActiveCitation != nil {
		c := *s.Panel.ActiveCitation
		out.Panel.ActiveCitation = &c
	}
	return out
}

// LastAnswer returns the most recent answer, if any.
func (s Session) LastAnswer() (Answer, bool) {
	if len(s.History) == 0 {
		return Answer{}, false
	}
	return s.History[len(s.History)-1].Answer, true
}
