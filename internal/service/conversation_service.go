package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/dto"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/mapper"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/internal/repository/contract"
	"ragchat-client/pkg/rag/search"
)

var stubTracer = otel.Tracer("ragchat-client/stub")

const noSourcesAnswer = "I don't know. None of the indexed sources cover that question."

// IConversationService is the stub backend the chat client talks to during
// local development. It answers from an in-process corpus.
type IConversationService interface {
	Add(ctx context.Context, userId string, req *dto.AddConversationRequest) (*dto.AskResponse, error)
	Read(ctx context.Context, userId string, req *dto.ReadConversationRequest) (*dto.ReadConversationResponse, error)
	List(ctx context.Context, userId string) ([]dto.ConversationSummaryDto, error)
	Delete(ctx context.Context, userId string, req *dto.DeleteConversationRequest) (*dto.DeleteConversationResponse, error)
	GenTitle(ctx context.Context, userId string, req *dto.GenTitleRequest) (*dto.ConversationSummaryDto, error)
	Content(ctx context.Context, name string) (search.Document, error)
}

type conversationService struct {
	repo         contract.ConversationRepository
	orchestrator *search.Orchestrator
	corpus       *search.Corpus
	mapper       *mapper.ConversationMapper
	logger       logger.ILogger
	now          func() time.Time
}

func NewConversationService(
	repo contract.ConversationRepository,
	corpus *search.Corpus,
	l logger.ILogger,
) IConversationService {
	return &conversationService{
		repo:         repo,
		orchestrator: search.NewOrchestrator(corpus, l),
		corpus:       corpus,
		mapper:       mapper.NewConversationMapper(),
		logger:       l,
		now:          time.Now,
	}
}

func (s *conversationService) Add(ctx context.Context, userId string, req *dto.AddConversationRequest) (*dto.AskResponse, error) {
	const op apperror.Op = "stub.Add"
	ctx, span := stubTracer.Start(ctx, "stub.Add")
	defer span.End()

	last := req.History[len(req.History)-1]
	question := strings.TrimSpace(last.User)
	if question == "" {
		return nil, apperror.Invalid(op, "the last history entry has no question")
	}
	if last.Bot != nil {
		return nil, apperror.Invalid(op, "the last history entry is already answered")
	}
	if req.Approach != constant.ApproachChatConversation {
		return nil, apperror.Invalid(op, fmt.Sprintf("unsupported approach %q", req.Approach))
	}

	conv, err := s.findOrCreate(ctx, userId, req.ConversationId)
	if err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}
	span.SetAttributes(attribute.String("conversation.id", conv.Id))

	hits := s.orchestrator.Execute(ctx, question, overridesToSearch(req.Overrides))
	answer := composeAnswer(hits, req.Overrides.SuggestFollowupQuestions)
	thoughts := composeThoughts(question, hits)

	dataPoints := make([]string, 0, len(hits))
	for _, h := range hits {
		dataPoints = append(dataPoints, h.Document.Name+": "+h.Passage)
	}

	now := s.now()
	conv.Messages = append(conv.Messages, entity.StoredMessage{User: question, Bot: answer})
	if conv.Title == "" {
		conv.Title = titleFrom(question)
	}
	if conv.Summary == "" {
		conv.Summary = summaryFrom(answer)
	}
	conv.UpdatedAt = now
	if err := s.repo.Save(ctx, conv); err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}

	s.logger.Info("STUB", "Answered question", map[string]interface{}{
		"conversation_id": conv.Id,
		"user_id":         userId,
		"hits":            len(hits),
	})

	return &dto.AskResponse{
		Answer:         answer,
		Thoughts:       &thoughts,
		DataPoints:     dataPoints,
		ConversationId: conv.Id,
	}, nil
}

// findOrCreate continues an existing conversation, or starts one under the
// requested id (a fresh uuid when none was given).
func (s *conversationService) findOrCreate(ctx context.Context, userId, id string) (*entity.StoredConversation, error) {
	if id != "" {
		conv, err := s.repo.FindOne(ctx, userId, id)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			return conv, nil
		}
	} else {
		id = uuid.NewString()
	}
	now := s.now()
	return &entity.StoredConversation{
		Id:        id,
		UserId:    userId,
		Type:      constant.ConversationTypeChat,
		Messages:  []entity.StoredMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *conversationService) Read(ctx context.Context, userId string, req *dto.ReadConversationRequest) (*dto.ReadConversationResponse, error) {
	const op apperror.Op = "stub.Read"
	conv, err := s.repo.FindOne(ctx, userId, req.ConversationId)
	if err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}
	if conv == nil || len(conv.Messages) == 0 {
		return nil, apperror.NotFound(op, "Conversation not found")
	}
	return s.mapper.StoredToReadResponse(conv), nil
}

func (s *conversationService) List(ctx context.Context, userId string) ([]dto.ConversationSummaryDto, error) {
	const op apperror.Op = "stub.List"
	convs, err := s.repo.FindAllByUser(ctx, userId)
	if err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}
	if len(convs) == 0 {
		return nil, apperror.EmptyResult(op, "No conversations found")
	}
	out := make([]dto.ConversationSummaryDto, 0, len(convs))
	for _, c := range convs {
		out = append(out, s.mapper.StoredToSummaryDto(c))
	}
	return out, nil
}

func (s *conversationService) Delete(ctx context.Context, userId string, req *dto.DeleteConversationRequest) (*dto.DeleteConversationResponse, error) {
	const op apperror.Op = "stub.Delete"
	deleted, err := s.repo.Delete(ctx, userId, req.ConversationId)
	if err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}
	// Unknown ids succeed too; the remote store has no not-found answer for delete.
	s.logger.Info("STUB", "Deleted conversation", map[string]interface{}{
		"conversation_id": req.ConversationId,
		"user_id":         userId,
		"existed":         deleted,
	})
	return &dto.DeleteConversationResponse{
		Message:        "Successfully deleted conversation and messages",
		ConversationId: req.ConversationId,
	}, nil
}

// GenTitle retitles a conversation from its latest question. A conversation
// that already has a title keeps it unless OverwriteExistingTitle is set.
func (s *conversationService) GenTitle(ctx context.Context, userId string, req *dto.GenTitleRequest) (*dto.ConversationSummaryDto, error) {
	const op apperror.Op = "stub.GenTitle"
	conv, err := s.repo.FindOne(ctx, userId, req.ConversationId)
	if err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}
	if conv == nil {
		return nil, apperror.NotFound(op, fmt.Sprintf("Conversation %s was not found", req.ConversationId))
	}
	if conv.Title != "" && !req.OverwriteExistingTitle {
		return nil, apperror.Invalid(op, fmt.Sprintf("Conversation %s already has a title", req.ConversationId))
	}
	if len(conv.Messages) == 0 {
		return nil, apperror.NotFound(op, fmt.Sprintf("No messages for %s were found", req.ConversationId))
	}

	conv.Title = titleFrom(conv.Messages[len(conv.Messages)-1].User)
	conv.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, conv); err != nil {
		return nil, apperror.E(op, apperror.KindRequestFailed, err)
	}
	s.logger.Info("STUB", "Generated title", map[string]interface{}{
		"conversation_id": conv.Id,
		"title":           conv.Title,
	})
	res := s.mapper.StoredToSummaryDto(conv)
	return &res, nil
}

func (s *conversationService) Content(ctx context.Context, name string) (search.Document, error) {
	doc, ok := s.corpus.Get(path.Base(name))
	if !ok {
		return search.Document{}, apperror.NotFound("stub.Content", fmt.Sprintf("no source named %q", name))
	}
	return doc, nil
}

func overridesToSearch(o dto.OverridesDto) search.Config {
	cfg := search.Config{
		TopK:             o.Top,
		ExcludeCategory:  o.ExcludeCategory,
		SemanticRanker:   o.SemanticRanker,
		SemanticCaptions: o.SemanticCaptions,
	}
	if cfg.TopK <= 0 {
		cfg.TopK = constant.DefaultTopK
	}
	return cfg
}

// composeAnswer cites every passage it uses as [name].
func composeAnswer(hits []search.Hit, followups bool) string {
	if len(hits) == 0 {
		return noSourcesAnswer
	}
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(firstSentence(h.Passage))
		b.WriteString(" [")
		b.WriteString(h.Document.Name)
		b.WriteString("]")
	}
	if followups {
		for _, h := range hits {
			topic := strings.TrimSuffix(h.Document.Name, path.Ext(h.Document.Name))
			topic = strings.ReplaceAll(topic, "-", " ")
			fmt.Fprintf(&b, " <<What else is there to know about %s?>>", topic)
		}
	}
	return b.String()
}

func composeThoughts(question string, hits []search.Hit) string {
	var b strings.Builder
	b.WriteString("Searched for:<br>")
	b.WriteString(question)
	b.WriteString("<br><br>Sources:")
	if len(hits) == 0 {
		b.WriteString("<br>(none)")
	}
	for _, h := range hits {
		fmt.Fprintf(&b, "<br>%s (score %.2f)", h.Document.Name, h.Score)
	}
	return b.String()
}

func firstSentence(passage string) string {
	passage = strings.TrimSpace(passage)
	if i := strings.Index(passage, ". "); i >= 0 {
		return passage[:i+1]
	}
	return passage
}

func titleFrom(question string) string {
	words := strings.Fields(question)
	if len(words) > constant.TitleWordLimit {
		words = words[:constant.TitleWordLimit]
	}
	return strings.Join(words, " ")
}

func summaryFrom(answer string) string {
	r := []rune(answer)
	if len(r) <= constant.SummaryCharLimit {
		return answer
	}
	return strings.TrimSpace(string(r[:constant.SummaryCharLimit])) + "..."
}
