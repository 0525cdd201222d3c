package mapper

import (
	"time"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/dto"
	"ragchat-client/internal/entity"
)

var summaryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Outbound

func (m *ConversationMapper) TurnsToDto(turns []entity.ChatTurn) []dto.ChatTurnDto {
	out := make([]dto.ChatTurnDto, 0, len(turns))
	for _, t := range turns {
		out = append(out, dto.ChatTurnDto{User: t.User, Bot: t.Bot})
	}
	return out
}

func (m *ConversationMapper) OptionsToOverrides(o entity.GenerationOptions) dto.OverridesDto {
	return dto.OverridesDto{
		PromptTemplate:           o.PromptTemplate,
		ExcludeCategory:          o.ExcludeCategory,
		Top:                      o.TopK,
		SemanticRanker:           o.UseSemanticRanker,
		SemanticCaptions:         o.UseSemanticCaptions,
		SuggestFollowupQuestions: o.SuggestFollowupQuestions,
	}
}

func (m *ConversationMapper) ToAddRequest(turns []entity.ChatTurn, o entity.GenerationOptions, conversationId string) *dto.AddConversationRequest {
	return &dto.AddConversationRequest{
		History:        m.TurnsToDto(turns),
		Approach:       constant.ApproachChatConversation,
		Overrides:      m.OptionsToOverrides(o),
		User:           constant.DefaultUser,
		ConversationId: conversationId,
	}
}

// Inbound

func (m *ConversationMapper) AskResponseToAnswer(r *dto.AskResponse) entity.Answer {
	if r == nil {
		return entity.Answer{SupportingFacts: []string{}}
	}
	facts := r.DataPoints
	if facts == nil {
		facts = []string{}
	}
	return entity.Answer{
		Text:            r.Answer,
		SupportingFacts: facts,
		CitationsRaw:    r.Thoughts,
		ConversationId:  r.ConversationId,
		Error:           r.Error,
	}
}

func (m *ConversationMapper) StoredMessagesToTurns(msgs []dto.StoredMessageDto) []entity.ChatTurn {
	turns := make([]entity.ChatTurn, 0, len(msgs))
	for _, msg := range msgs {
		bot := msg.Bot
		turns = append(turns, entity.ChatTurn{User: msg.User, Bot: &bot})
	}
	return turns
}

func (m *ConversationMapper) SummaryDtoToEntity(d dto.ConversationSummaryDto) entity.ConversationSummary {
	return entity.ConversationSummary{
		Id:        d.Id,
		Title:     d.Title,
		Summary:   d.Summary,
		CreatedAt: parseSummaryTime(d.CreatedAt),
		UpdatedAt: parseSummaryTime(d.UpdatedAt),
	}
}

func (m *ConversationMapper) SummariesToEntity(list []dto.ConversationSummaryDto) []entity.ConversationSummary {
	out := make([]entity.ConversationSummary, 0, len(list))
	for _, d := range list {
		out = append(out, m.SummaryDtoToEntity(d))
	}
	return out
}

// Stub backend

func (m *ConversationMapper) StoredToSummaryDto(c *entity.StoredConversation) dto.ConversationSummaryDto {
	return dto.ConversationSummaryDto{
		Id:        c.Id,
		Title:     c.Title,
		Summary:   c.Summary,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339Nano),
		UserId:    c.UserId,
		Type:      c.Type,
	}
}

func (m *ConversationMapper) StoredToReadResponse(c *entity.StoredConversation) *dto.ReadConversationResponse {
	msgs := make([]dto.StoredMessageDto, 0, len(c.Messages))
	for _, msg := range c.Messages {
		msgs = append(msgs, dto.StoredMessageDto{User: msg.User, Bot: msg.Bot})
	}
	return &dto.ReadConversationResponse{ConversationId: c.Id, Messages: msgs}
}

func parseSummaryTime(s string) time.Time {
	for _, layout := range summaryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
