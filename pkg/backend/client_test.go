package backend_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat-client/internal/dto"
	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/pkg/auth"
	"ragchat-client/pkg/backend"
)

func startBackend(t *testing.T, register func(app *fiber.App)) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	register(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func question(q string, prior ...entity.Exchange) []entity.ChatTurn {
	return append(entity.Turns(prior), entity.ChatTurn{User: q})
}

func TestSubmitSendsFullHistoryAndOverrides(t *testing.T) {
	var got dto.AddConversationRequest
	var authHeader string
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/conversation/add", func(c *fiber.Ctx) error {
			authHeader = c.Get(fiber.HeaderAuthorization)
			if err := c.BodyParser(&got); err != nil {
				return err
			}
			thoughts := "Searched for: citrix"
			return c.JSON(dto.AskResponse{
				Answer:         "Citrix is a virtualization vendor [citrix.txt].",
				Thoughts:       &thoughts,
				DataPoints:     []string{"citrix.txt: Citrix builds virtualization software."},
				ConversationId: "abc",
			})
		})
	})

	client := backend.NewClient(base, backend.WithTokenSource(auth.StaticTokenSource("tok")))
	prior := entity.Exchange{Question: "Hi", Answer: entity.Answer{Text: "Hello"}}
	opts := entity.DefaultGenerationOptions()
	opts.ExcludeCategory = "hr"

	answer, err := client.Submit(context.Background(), backend.AddRequest{
		History:        question("What is Citrix?", prior),
		Options:        opts,
		ConversationId: "abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", authHeader)
	assert.Equal(t, "chatconversation", got.Approach)
	assert.Equal(t, "abc", got.ConversationId)
	require.Len(t, got.History, 2)
	assert.Equal(t, "Hi", got.History[0].User)
	require.NotNil(t, got.History[0].Bot)
	assert.Equal(t, "Hello", *got.History[0].Bot)
	assert.Equal(t, "What is Citrix?", got.History[1].User)
	assert.Nil(t, got.History[1].Bot)
	assert.Equal(t, 3, got.Overrides.Top)
	assert.True(t, got.Overrides.SemanticRanker)
	assert.Equal(t, "hr", got.Overrides.ExcludeCategory)

	assert.Equal(t, "abc", answer.ConversationId)
	assert.Len(t, answer.SupportingFacts, 1)
	require.NotNil(t, answer.CitationsRaw)
	assert.Equal(t, "Searched for: citrix", *answer.CitationsRaw)
}

func TestNonSuccessStatusBecomesRequestFailed(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/conversation/add", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "index unavailable"})
		})
		app.Post("/conversation/delete", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadGateway).SendString("<html>bad gateway</html>")
		})
	})
	client := backend.NewClient(base)

	_, err := client.Submit(context.Background(), backend.AddRequest{
		History: question("q"),
		Options: entity.DefaultGenerationOptions(),
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindRequestFailed))
	assert.Equal(t, "index unavailable", apperror.Message(err))

	_, err = client.Delete(context.Background(), backend.DeleteRequest{ConversationId: "abc"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindRequestFailed))
	assert.Equal(t, "Unknown error", apperror.Message(err))
}

func TestTransportFailureBecomesRequestFailed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := backend.NewClient("http://"+addr, backend.WithTimeout(2*time.Second))
	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindRequestFailed))
}

func TestMalformedBodyBecomesRequestFailed(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/conversation/list", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(`{"not":"a list"`)
		})
	})

	_, err := backend.NewClient(base).List(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindRequestFailed))
}

func TestReadAndListEmptyResults(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/conversation/read", func(c *fiber.Ctx) error {
			var req dto.ReadConversationRequest
			if err := c.BodyParser(&req); err != nil {
				return err
			}
			switch req.ConversationId {
			case "empty":
				return c.JSON(dto.ReadConversationResponse{ConversationId: "empty"})
			case "abc":
				return c.JSON(dto.ReadConversationResponse{
					ConversationId: "abc",
					Messages: []dto.StoredMessageDto{
						{User: "What is Citrix?", Bot: "A vendor."},
						{User: "More detail", Bot: "It makes VDI software."},
					},
				})
			}
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Conversation not found"})
		})
		app.Post("/conversation/list", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "No conversations found"})
		})
	})
	client := backend.NewClient(base)

	turns, err := client.Read(context.Background(), backend.ReadRequest{ConversationId: "abc"})
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "More detail", turns[1].User)
	assert.Equal(t, "It makes VDI software.", *turns[1].Bot)

	_, err = client.Read(context.Background(), backend.ReadRequest{ConversationId: "empty"})
	assert.True(t, apperror.Is(err, apperror.KindEmptyResult))

	_, err = client.Read(context.Background(), backend.ReadRequest{ConversationId: "missing"})
	assert.True(t, apperror.Is(err, apperror.KindEmptyResult))
	assert.Equal(t, "Conversation not found", apperror.Message(err))

	_, err = client.List(context.Background())
	assert.True(t, apperror.Is(err, apperror.KindEmptyResult))
}

func TestListParsesSummaries(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/conversation/list", func(c *fiber.Ctx) error {
			return c.JSON([]dto.ConversationSummaryDto{
				{Id: "abc", Title: "What is Citrix", CreatedAt: "2024-03-01T10:00:00Z", UpdatedAt: "2024-03-01T10:05:00.123456"},
			})
		})
	})

	list, err := backend.NewClient(base).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "abc", list[0].Id)
	assert.Equal(t, 2024, list[0].CreatedAt.Year())
	assert.Equal(t, 5, list[0].UpdatedAt.Minute())
}

func TestRequestsValidateBeforeSending(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:1")

	_, err := client.Submit(context.Background(), backend.AddRequest{Options: entity.DefaultGenerationOptions()})
	assert.True(t, apperror.Is(err, apperror.KindInvalid))

	_, err = client.Read(context.Background(), backend.ReadRequest{})
	assert.True(t, apperror.Is(err, apperror.KindInvalid))

	_, err = client.Delete(context.Background(), backend.DeleteRequest{})
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.NewClient("http://127.0.0.1:1").List(ctx)
	assert.True(t, apperror.Is(err, apperror.KindRequestFailed))
}

func TestCitationURL(t *testing.T) {
	client := backend.NewClient("http://localhost:5000/")
	assert.Equal(t, "http://localhost:5000/content/guides/citrix%20setup.pdf", client.CitationURL("guides/citrix setup.pdf"))
}
