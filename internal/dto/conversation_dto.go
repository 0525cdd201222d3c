package dto

// ChatTurnDto is one entry of the history array on the wire.
type ChatTurnDto struct {
	User string  `json:"user" validate:"required"`
	Bot  *string `json:"bot,omitempty"`
}

type OverridesDto struct {
	PromptTemplate           string   `json:"prompt_template,omitempty"`
	PromptTemplatePrefix     string   `json:"prompt_template_prefix,omitempty"`
	PromptTemplateSuffix     string   `json:"prompt_template_suffix,omitempty"`
	ExcludeCategory          string   `json:"exclude_category,omitempty"`
	Top                      int      `json:"top" validate:"gte=0,lte=50"`
	SemanticRanker           bool     `json:"semantic_ranker"`
	SemanticCaptions         bool     `json:"semantic_captions"`
	SuggestFollowupQuestions bool     `json:"suggest_followup_questions"`
	Temperature              *float64 `json:"temperature,omitempty"`
}

type AddConversationRequest struct {
	History        []ChatTurnDto `json:"history" validate:"required,min=1,dive"`
	Approach       string        `json:"approach" validate:"required"`
	Overrides      OverridesDto  `json:"overrides"`
	User           string        `json:"user"`
	ConversationId string        `json:"conversation_id"`
}

type AskResponse struct {
	Answer         string   `json:"answer"`
	Thoughts       *string  `json:"thoughts"`
	DataPoints     []string `json:"data_points"`
	ConversationId string   `json:"conversation_id"`
	Error          *string  `json:"error,omitempty"`
}

type ReadConversationRequest struct {
	ConversationId string `json:"conversation_id" validate:"required"`
}

type StoredMessageDto struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

type ReadConversationResponse struct {
	ConversationId string             `json:"conversation_id"`
	Messages       []StoredMessageDto `json:"messages"`
	Error          *string            `json:"error,omitempty"`
}

type ListConversationRequest struct{}

type ConversationSummaryDto struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	UserId    string `json:"userId,omitempty"`
	Type      string `json:"type,omitempty"`
}

type DeleteConversationRequest struct {
	ConversationId string `json:"conversation_id" validate:"required"`
}

type DeleteConversationResponse struct {
	Message        string `json:"message"`
	ConversationId string `json:"conversation_id"`
}

type GenTitleRequest struct {
	ConversationId         string `json:"conversation_id" validate:"required"`
	OverwriteExistingTitle bool   `json:"overwrite_existing_title"`
}

// ErrorResponse is the body of every non-2xx backend reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
