package events

import (
	"time"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
)

// SessionChanged carries a summary of the session after a transition.
// Subscribers that need the full state take a snapshot from the controller.
func SessionChanged(reason string, s entity.Session) BaseEvent {
	data := map[string]interface{}{
		"reason":          reason,
		"conversation_id": s.ConversationId,
		"history_len":     len(s.History),
		"is_loading":      s.IsLoading,
		"is_fetching":     s.IsFetchingHistory,
		"last_question":   s.LastQuestion,
		"panel_tab":       s.Panel.ActiveTab.String(),
		"panel_index":     s.Panel.SelectedAnswerIndex,
	}
	if s.LastError != nil {
		data["last_error"] = apperror.Message(s.LastError)
		data["last_error_kind"] = apperror.GetKind(s.LastError).String()
	}
	return BaseEvent{Type: constant.EventSessionChanged, Data: data, OccurredAt: time.Now()}
}

func ConversationsRefreshed(count int) BaseEvent {
	return BaseEvent{
		Type:       constant.EventConversationsRefreshed,
		Data:       map[string]interface{}{"count": count},
		OccurredAt: time.Now(),
	}
}

func ConversationDeleted(conversationId string, wasActive bool) BaseEvent {
	return BaseEvent{
		Type: constant.EventConversationDeleted,
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"was_active":      wasActive,
		},
		OccurredAt: time.Now(),
	}
}
