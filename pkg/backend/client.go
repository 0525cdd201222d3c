package backend

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/dto"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/mapper"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/pkg/auth"
)

var tracer = otel.Tracer("ragchat-client/backend")

// Client talks to the RAG backend over HTTP. It implements both
// AnswerProvider and ConversationStore.
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  oauth2.TokenSource
	http    *fiber.Client
	mapper  *mapper.ConversationMapper
	logger  logger.ILogger
}

var (
	_ AnswerProvider    = (*Client)(nil)
	_ ConversationStore = (*Client)(nil)
)

type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l logger.ILogger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 60 * time.Second,
		tokens:  auth.NoToken{},
		http: &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
		mapper: mapper.NewConversationMapper(),
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit asks for an answer. It is the same call as Add: the backend
// creates the conversation on the first turn and appends afterwards.
func (c *Client) Submit(ctx context.Context, req AddRequest) (entity.Answer, error) {
	return c.Add(ctx, req)
}

func (c *Client) Add(ctx context.Context, req AddRequest) (entity.Answer, error) {
	const op = apperror.Op("backend.Add")
	if err := req.Validate(); err != nil {
		return entity.Answer{}, err
	}

	body := c.mapper.ToAddRequest(req.History, req.Options, req.ConversationId)
	var res dto.AskResponse
	if _, err := c.post(ctx, op, req, body, &res); err != nil {
		return entity.Answer{}, err
	}
	return c.mapper.AskResponseToAnswer(&res), nil
}

func (c *Client) Read(ctx context.Context, req ReadRequest) ([]entity.ChatTurn, error) {
	const op = apperror.Op("backend.Read")
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res dto.ReadConversationResponse
	_, err := c.post(ctx, op, req, dto.ReadConversationRequest{ConversationId: req.ConversationId}, &res)
	if err != nil {
		return nil, err
	}
	if len(res.Messages) == 0 {
		return nil, apperror.EmptyResult(op, "conversation has no messages")
	}
	return c.mapper.StoredMessagesToTurns(res.Messages), nil
}

func (c *Client) List(ctx context.Context) ([]entity.ConversationSummary, error) {
	const op = apperror.Op("backend.List")

	var res []dto.ConversationSummaryDto
	if _, err := c.post(ctx, op, ListRequest{}, dto.ListConversationRequest{}, &res); err != nil {
		return nil, err
	}
	return c.mapper.SummariesToEntity(res), nil
}

func (c *Client) Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error) {
	const op = apperror.Op("backend.Delete")
	if err := req.Validate(); err != nil {
		return DeleteResult{}, err
	}

	var res dto.DeleteConversationResponse
	if _, err := c.post(ctx, op, req, dto.DeleteConversationRequest{ConversationId: req.ConversationId}, &res); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Message: res.Message, ConversationId: res.ConversationId}, nil
}

// CitationURL is where the backend serves the source document for a
// citation taken from an answer.
func (c *Client) CitationURL(citation string) string {
	parts := strings.Split(citation, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.baseURL + constant.RouteContent + strings.Join(parts, "/")
}

type result struct {
	status int
	body   []byte
	errs   []error
}

// post sends body to the route of req and decodes a 2xx reply into out.
// A 404 is reported as EmptyResult; every other failure as RequestFailed.
func (c *Client) post(ctx context.Context, op apperror.Op, req Request, body, out interface{}) (int, error) {
	ctx, span := tracer.Start(ctx, "backend "+req.route(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.route", req.route())),
	)
	defer span.End()

	status, err := c.roundTrip(ctx, op, req, body, out)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.Message(err))
	}
	return status, err
}

func (c *Client) roundTrip(ctx context.Context, op apperror.Op, req Request, body, out interface{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperror.RequestFailedErr(op, err)
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return 0, apperror.E(op, apperror.KindRequestFailed, "acquire token", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := c.http.Post(c.baseURL + req.route())
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if h := auth.AuthorizationHeader(tok); h != "" {
		agent.Set(fiber.HeaderAuthorization, h)
	}
	agent.JSON(body)
	agent.Timeout(timeout)

	done := make(chan result, 1)
	go func() {
		status, raw, errs := agent.Bytes()
		done <- result{status: status, body: raw, errs: errs}
	}()

	var res result
	select {
	case <-ctx.Done():
		return 0, apperror.RequestFailedErr(op, ctx.Err())
	case res = <-done:
	}

	if len(res.errs) > 0 {
		c.logger.Warn("BACKEND", "Transport failure", map[string]interface{}{"route": req.route(), "error": res.errs[0].Error()})
		return 0, apperror.RequestFailedErr(op, res.errs[0])
	}

	if !isSuccess(res.status) {
		message := errorMessage(res.body)
		c.logger.Warn("BACKEND", "Non-success status", map[string]interface{}{"route": req.route(), "status": res.status, "message": message})
		if res.status == fiber.StatusNotFound {
			return res.status, apperror.EmptyResult(op, message)
		}
		return res.status, apperror.RequestFailed(op, message)
	}

	if out != nil && len(res.body) > 0 {
		if err := json.Unmarshal(res.body, out); err != nil {
			return res.status, apperror.E(op, apperror.KindRequestFailed, "decode response", err)
		}
	}
	return res.status, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// errorMessage extracts the payload's error field, falling back to the
// generic message for empty or non-JSON bodies.
func errorMessage(body []byte) string {
	var payload dto.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return constant.UnknownErrorMessage
}
