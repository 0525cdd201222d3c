package backend

import (
	"strings"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/validation"
)

// Request is one of AddRequest, ReadRequest, ListRequest or DeleteRequest.
// The set is closed; each variant knows its route and validates itself.
type Request interface {
	route() string
	Validate() error
}

// AddRequest submits the full turn history. The last turn carries the new
// question and has no bot text.
type AddRequest struct {
	History        []entity.ChatTurn
	Options        entity.GenerationOptions
	ConversationId string
}

type ReadRequest struct {
	ConversationId string
}

type ListRequest struct{}

type DeleteRequest struct {
	ConversationId string
}

func (AddRequest) route() string    { return constant.RouteConversationAdd }
func (ReadRequest) route() string   { return constant.RouteConversationRead }
func (ListRequest) route() string   { return constant.RouteConversationList }
func (DeleteRequest) route() string { return constant.RouteConversationDelete }

func (r AddRequest) Validate() error {
	const op = apperror.Op("backend.Add")
	if len(r.History) == 0 {
		return apperror.Invalid(op, "history is empty")
	}
	last := r.History[len(r.History)-1]
	if strings.TrimSpace(last.User) == "" {
		return apperror.Invalid(op, "question is empty")
	}
	if last.Bot != nil {
		return apperror.Invalid(op, "last turn already has an answer")
	}
	return validation.Struct(op, r.Options)
}

func (r ReadRequest) Validate() error {
	if r.ConversationId == "" {
		return apperror.Invalid("backend.Read", "conversation id is empty")
	}
	return nil
}

func (ListRequest) Validate() error { return nil }

func (r DeleteRequest) Validate() error {
	if r.ConversationId == "" {
		return apperror.Invalid("backend.Delete", "conversation id is empty")
	}
	return nil
}

// DeleteResult echoes the backend's confirmation.
type DeleteResult struct {
	Message        string
	ConversationId string
}
