package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/internal/pkg/validation"
	"ragchat-client/pkg/backend"
	"ragchat-client/pkg/events"
	"ragchat-client/pkg/rag/conversations"
	"ragchat-client/pkg/rag/history"
	"ragchat-client/pkg/rag/panel"
	"ragchat-client/pkg/rag/session"
)

var tracer = otel.Tracer("ragchat-client/session")

// LoadFailurePolicy decides what happens to the optimistically adopted
// conversation id when loading that conversation fails.
type LoadFailurePolicy int

const (
	// LoadFailureKeepOptimisticID leaves the requested id in place, so the
	// session names the conversation it failed to load.
	LoadFailureKeepOptimisticID LoadFailurePolicy = iota
	// LoadFailureRevertID restores the id the session had before the load.
	LoadFailureRevertID
)

// IChatSessionService is the controller for one conversation view.
type IChatSessionService interface {
	SubmitQuestion(ctx context.Context, text string) error
	Retry(ctx context.Context) error
	LoadConversation(ctx context.Context, conversationId string) error
	RequestDelete(conversationId string) error
	ConfirmDelete(conversationId string) error
	CancelDelete()
	DeleteConversation(ctx context.Context, conversationId string) error
	Clear()
	RefreshConversationList(ctx context.Context) error
	TogglePanel(tab entity.PanelTab, answerIndex int) error
	ShowCitation(citation string, answerIndex int) error
	ClosePanel()
	SetOptions(opts entity.GenerationOptions) error
	Snapshot() entity.Session
	Conversations() ([]entity.ConversationSummary, bool)
}

type ChatSessionOption func(*chatSessionService)

func WithLoadFailurePolicy(p LoadFailurePolicy) ChatSessionOption {
	return func(s *chatSessionService) { s.loadPolicy = p }
}

func WithGenerationOptions(o entity.GenerationOptions) ChatSessionOption {
	return func(s *chatSessionService) { s.state = session.NewState(o) }
}

type chatSessionService struct {
	answers   backend.AnswerProvider
	store     backend.ConversationStore
	list      *conversations.Cache
	loader    *history.Loader
	panels    *panel.Machine
	state     *session.State
	publisher events.Publisher
	logger    logger.ILogger

	// one submission at a time; deleting the active conversation waits here too
	gate       *semaphore.Weighted
	loadPolicy LoadFailurePolicy
}

func NewChatSessionService(
	answers backend.AnswerProvider,
	store backend.ConversationStore,
	list *conversations.Cache,
	publisher events.Publisher,
	l logger.ILogger,
	opts ...ChatSessionOption,
) IChatSessionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &chatSessionService{
		answers:   answers,
		store:     store,
		list:      list,
		loader:    history.NewLoader(store, l),
		panels:    panel.NewMachine(l),
		state:     session.NewState(entity.DefaultGenerationOptions()),
		publisher: publisher,
		logger:    l,
		gate:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitQuestion sends the whole prior history plus text and appends the
// exchange on success. A second call while one is in flight fails with
// KindBusy. Results that arrive after Clear or a conversation switch are
// discarded.
func (s *chatSessionService) SubmitQuestion(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "session.SubmitQuestion")
	defer span.End()

	question := strings.TrimSpace(text)
	if question == "" {
		return apperror.Invalid("session.SubmitQuestion", "question is empty")
	}
	if !s.gate.TryAcquire(1) {
		return apperror.SubmissionInFlight()
	}
	defer s.gate.Release(1)

	epoch, snap := s.state.Capture(func(ss *entity.Session) {
		ss.IsLoading = true
		ss.LastQuestion = question
		ss.LastError = nil
		s.panels.Dismiss(&ss.Panel)
	})
	defer func() {
		done := s.state.Mutate(func(ss *entity.Session) { ss.IsLoading = false })
		s.emit(ctx, "submit.finished", done)
	}()
	s.emit(ctx, "submit.started", snap)

	span.SetAttributes(
		attribute.String("conversation.id", snap.ConversationId),
		attribute.Int("history.len", len(snap.History)),
	)

	req := backend.AddRequest{
		History:        append(entity.Turns(snap.History), entity.ChatTurn{User: question}),
		Options:        snap.Options,
		ConversationId: snap.ConversationId,
	}
	answer, err := s.answers.Submit(ctx, req)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err))
		_, applied := s.state.MutateIfCurrent(epoch, func(ss *entity.Session) { ss.LastError = err })
		if !applied {
			s.logger.Debug("SESSION", "Dropped stale submission failure", map[string]interface{}{"question": question})
		} else {
			s.logger.Warn("SESSION", "Submission failed", map[string]interface{}{"error": err.Error()})
		}
		return err
	}

	_, applied := s.state.MutateIfCurrent(epoch, func(ss *entity.Session) {
		ss.History = append(ss.History, entity.Exchange{Question: question, Answer: answer})
		if answer.ConversationId != "" {
			ss.ConversationId = answer.ConversationId
		}
	})
	if !applied {
		s.logger.Debug("SESSION", "Dropped stale answer", map[string]interface{}{"question": question})
		return nil
	}

	s.logger.Info("SESSION", "Question answered", map[string]interface{}{
		"conversation_id": answer.ConversationId,
		"facts":           len(answer.SupportingFacts),
	})
	return nil
}

// Retry resubmits the last question.
func (s *chatSessionService) Retry(ctx context.Context) error {
	last := s.state.Snapshot().LastQuestion
	if last == "" {
		return apperror.Invalid("session.Retry", "nothing to retry")
	}
	return s.SubmitQuestion(ctx, last)
}

// LoadConversation adopts conversationId immediately and replaces the
// history with the stored turns once they arrive.
func (s *chatSessionService) LoadConversation(ctx context.Context, conversationId string) error {
	ctx, span := tracer.Start(ctx, "session.LoadConversation")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationId))

	if conversationId == "" {
		return apperror.Invalid("session.LoadConversation", "conversation id is empty")
	}

	var previousId string
	epoch, snap := s.state.BeginLoad(func(ss *entity.Session) {
		previousId = ss.ConversationId
		ss.ConversationId = conversationId
		ss.LastError = nil
	})
	defer func() {
		s.emit(ctx, "load.finished", s.state.EndLoad())
	}()
	s.emit(ctx, "load.started", snap)

	loaded, err := s.loader.Load(ctx, conversationId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err))
		_, applied := s.state.MutateIfCurrent(epoch, func(ss *entity.Session) {
			ss.LastError = err
			if s.loadPolicy == LoadFailureRevertID {
				ss.ConversationId = previousId
			}
		})
		if applied {
			s.logger.Warn("SESSION", "Load failed", map[string]interface{}{"conversation_id": conversationId, "error": err.Error()})
		}
		return err
	}

	_, applied := s.state.MutateIfCurrent(epoch, func(ss *entity.Session) {
		ss.History = loaded.History
		ss.LastQuestion = loaded.LastQuestion
		s.panels.Reset(&ss.Panel)
	})
	if !applied {
		s.logger.Debug("SESSION", "Dropped stale load", map[string]interface{}{"conversation_id": conversationId})
		return nil
	}

	s.logger.Info("SESSION", "Conversation loaded", map[string]interface{}{
		"conversation_id": conversationId,
		"turns":           len(loaded.History),
	})
	return nil
}

// RequestDelete records an unconfirmed intent to delete conversationId.
func (s *chatSessionService) RequestDelete(conversationId string) error {
	if conversationId == "" {
		return apperror.Invalid("session.RequestDelete", "conversation id is empty")
	}
	snap := s.state.Mutate(func(ss *entity.Session) {
		ss.DeleteIntent = entity.ConversationDeleteIntent{TargetId: conversationId}
	})
	s.emit(context.Background(), "delete.requested", snap)
	return nil
}

func (s *chatSessionService) ConfirmDelete(conversationId string) error {
	var err error
	snap := s.state.Mutate(func(ss *entity.Session) {
		if ss.DeleteIntent.TargetId == "" || ss.DeleteIntent.TargetId != conversationId {
			err = apperror.Invalid("session.ConfirmDelete", "no pending delete for "+conversationId)
			return
		}
		ss.DeleteIntent.Confirmed = true
	})
	if err != nil {
		return err
	}
	s.emit(context.Background(), "delete.confirmed", snap)
	return nil
}

func (s *chatSessionService) CancelDelete() {
	snap := s.state.Mutate(func(ss *entity.Session) {
		ss.DeleteIntent = entity.ConversationDeleteIntent{}
	})
	s.emit(context.Background(), "delete.cancelled", snap)
}

// DeleteConversation removes a conversation whose deletion was confirmed.
// Deleting the active conversation waits for an in-flight submission and
// then resets the session as Clear does.
func (s *chatSessionService) DeleteConversation(ctx context.Context, conversationId string) error {
	ctx, span := tracer.Start(ctx, "session.DeleteConversation")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationId))

	intent := s.state.Snapshot().DeleteIntent
	if !intent.Confirmed || intent.TargetId != conversationId || conversationId == "" {
		return apperror.ConfirmationRequired(conversationId)
	}

	if s.state.Snapshot().ConversationId == conversationId {
		if err := s.gate.Acquire(ctx, 1); err != nil {
			return apperror.RequestFailedErr("session.DeleteConversation", err)
		}
		defer s.gate.Release(1)
	}

	if _, err := s.store.Delete(ctx, backend.DeleteRequest{ConversationId: conversationId}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err))
		snap := s.state.Mutate(func(ss *entity.Session) { ss.LastError = err })
		s.logger.Warn("SESSION", "Delete failed", map[string]interface{}{"conversation_id": conversationId, "error": err.Error()})
		s.emit(ctx, "delete.failed", snap)
		return err
	}

	wasActive := false
	snap := s.state.Mutate(func(ss *entity.Session) {
		ss.DeleteIntent = entity.ConversationDeleteIntent{}
		ss.LastError = nil
		wasActive = ss.ConversationId == conversationId
	})
	if wasActive {
		_, snap = s.state.Reset()
	}
	s.logger.Info("SESSION", "Conversation deleted", map[string]interface{}{"conversation_id": conversationId, "was_active": wasActive})
	s.publish(ctx, events.ConversationDeleted(conversationId, wasActive))
	s.emit(ctx, "delete.succeeded", snap)

	if err := s.RefreshConversationList(ctx); err != nil {
		s.logger.Warn("SESSION", "List refresh after delete failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// Clear empties the view. An in-flight submission keeps running and its
// result is dropped.
func (s *chatSessionService) Clear() {
	_, snap := s.state.Reset()
	s.logger.Debug("SESSION", "Cleared", nil)
	s.emit(context.Background(), "cleared", snap)
}

// RefreshConversationList replaces the cached list. It never touches the
// session, so a refresh neither sets nor clears LastError.
func (s *chatSessionService) RefreshConversationList(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session.RefreshConversationList")
	defer span.End()

	list, err := s.list.Refresh(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err))
		return err
	}
	s.publish(ctx, events.ConversationsRefreshed(len(list)))
	return nil
}

func (s *chatSessionService) TogglePanel(tab entity.PanelTab, answerIndex int) error {
	var err error
	snap := s.state.Mutate(func(ss *entity.Session) {
		err = s.panels.Toggle(&ss.Panel, tab, answerIndex, len(ss.History))
	})
	if err != nil {
		return err
	}
	s.emit(context.Background(), "panel.toggled", snap)
	return nil
}

func (s *chatSessionService) ShowCitation(citation string, answerIndex int) error {
	var err error
	snap := s.state.Mutate(func(ss *entity.Session) {
		err = s.panels.ShowCitation(&ss.Panel, citation, answerIndex, len(ss.History))
	})
	if err != nil {
		return err
	}
	s.emit(context.Background(), "panel.toggled", snap)
	return nil
}

// ClosePanel closes any open tab and keeps the selected answer.
func (s *chatSessionService) ClosePanel() {
	snap := s.state.Mutate(func(ss *entity.Session) { s.panels.Close(&ss.Panel) })
	s.emit(context.Background(), "panel.closed", snap)
}

// SetOptions replaces the generation options used by the next submission.
func (s *chatSessionService) SetOptions(opts entity.GenerationOptions) error {
	if err := validation.Struct("session.SetOptions", opts); err != nil {
		return err
	}
	snap := s.state.Mutate(func(ss *entity.Session) { ss.Options = opts })
	s.emit(context.Background(), "options.changed", snap)
	return nil
}

func (s *chatSessionService) Snapshot() entity.Session {
	return s.state.Snapshot()
}

func (s *chatSessionService) Conversations() ([]entity.ConversationSummary, bool) {
	return s.list.Snapshot()
}

func (s *chatSessionService) emit(ctx context.Context, reason string, snap entity.Session) {
	s.publish(ctx, events.SessionChanged(reason, snap))
}

func (s *chatSessionService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("SESSION", "Failed to publish event", map[string]interface{}{"type": e.EventType(), "error": err.Error()})
	}
}
