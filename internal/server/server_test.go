package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat-client/internal/config"
	"ragchat-client/internal/controller"
	"ragchat-client/internal/dto"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/internal/repository/memory"
	"ragchat-client/internal/service"
	"ragchat-client/pkg/rag/search"
)

func newTestApp(t *testing.T, secret string) *testApp {
	t.Helper()
	svc := service.NewConversationService(memory.NewConversationRepository(), search.DefaultCorpus(), logger.NewNopLogger())
	app := NewApp(config.StubConfig{JWTSecret: secret, CorsAllowedOrigins: "*"}, controller.NewConversationController(svc))
	return &testApp{t: t, app: app}
}

type testApp struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (a *testApp) post(path, body string) (int, []byte) {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, data
}

func TestAddAnswersWithCitationsAndPersists(t *testing.T) {
	a := newTestApp(t, "")

	status, body := a.post("/conversation/add", `{
		"history": [{"user": "What is Citrix?"}],
		"approach": "chatconversation",
		"overrides": {"top": 3, "semantic_ranker": true, "suggest_followup_questions": true},
		"user": "user"
	}`)
	require.Equal(t, http.StatusOK, status, string(body))

	var ask dto.AskResponse
	require.NoError(t, json.Unmarshal(body, &ask))
	assert.NotEmpty(t, ask.ConversationId)
	assert.Contains(t, ask.Answer, "[citrix-overview.txt]")
	assert.Contains(t, ask.Answer, "<<")
	require.NotNil(t, ask.Thoughts)
	assert.NotEmpty(t, ask.DataPoints)

	status, body = a.post("/conversation/read", `{"conversation_id": "`+ask.ConversationId+`"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var read dto.ReadConversationResponse
	require.NoError(t, json.Unmarshal(body, &read))
	require.Len(t, read.Messages, 1)
	assert.Equal(t, "What is Citrix?", read.Messages[0].User)
	assert.Equal(t, ask.Answer, read.Messages[0].Bot)

	status, body = a.post("/conversation/list", `{}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var list []dto.ConversationSummaryDto
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "What is Citrix?", list[0].Title)
	assert.Equal(t, "chat", list[0].Type)
}

func TestAddContinuesConversation(t *testing.T) {
	a := newTestApp(t, "")

	_, body := a.post("/conversation/add", `{"history":[{"user":"What is Citrix?"}],"approach":"chatconversation","overrides":{"top":3}}`)
	var first dto.AskResponse
	require.NoError(t, json.Unmarshal(body, &first))

	payload := `{"history":[{"user":"What is Citrix?","bot":"x"},{"user":"How do I get access to Citrix Workspace?"}],` +
		`"approach":"chatconversation","overrides":{"top":3},"conversation_id":"` + first.ConversationId + `"}`
	status, body := a.post("/conversation/add", payload)
	require.Equal(t, http.StatusOK, status, string(body))
	var second dto.AskResponse
	require.NoError(t, json.Unmarshal(body, &second))
	assert.Equal(t, first.ConversationId, second.ConversationId)

	_, body = a.post("/conversation/read", `{"conversation_id":"`+first.ConversationId+`"}`)
	var read dto.ReadConversationResponse
	require.NoError(t, json.Unmarshal(body, &read))
	assert.Len(t, read.Messages, 2)
}

func TestAddRejectsInvalidRequests(t *testing.T) {
	a := newTestApp(t, "")

	cases := map[string]string{
		"empty history":    `{"history":[],"approach":"chatconversation"}`,
		"answered":         `{"history":[{"user":"q","bot":"a"}],"approach":"chatconversation"}`,
		"unknown approach": `{"history":[{"user":"q"}],"approach":"retrieve"}`,
		"malformed":        `{"history":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp := a.post("/conversation/add", body)
			assert.Equal(t, http.StatusBadRequest, status)
			var e dto.ErrorResponse
			require.NoError(t, json.Unmarshal(resp, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestEmptyAndMissingAreNotFound(t *testing.T) {
	a := newTestApp(t, "")

	status, body := a.post("/conversation/list", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "No conversations found", e.Error)

	status, _ = a.post("/conversation/read", `{"conversation_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteUnknownConversationSucceeds(t *testing.T) {
	a := newTestApp(t, "")

	status, body := a.post("/conversation/delete", `{"conversation_id":"missing"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var del dto.DeleteConversationResponse
	require.NoError(t, json.Unmarshal(body, &del))
	assert.Equal(t, "Successfully deleted conversation and messages", del.Message)
	assert.Equal(t, "missing", del.ConversationId)
}

func TestDelete(t *testing.T) {
	a := newTestApp(t, "")
	_, body := a.post("/conversation/add", `{"history":[{"user":"What is Citrix?"}],"approach":"chatconversation"}`)
	var ask dto.AskResponse
	require.NoError(t, json.Unmarshal(body, &ask))

	status, body := a.post("/conversation/delete", `{"conversation_id":"`+ask.ConversationId+`"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var del dto.DeleteConversationResponse
	require.NoError(t, json.Unmarshal(body, &del))
	assert.Equal(t, ask.ConversationId, del.ConversationId)
	assert.Equal(t, "Successfully deleted conversation and messages", del.Message)

	status, _ = a.post("/conversation/read", `{"conversation_id":"`+ask.ConversationId+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGenTitle(t *testing.T) {
	a := newTestApp(t, "")
	_, body := a.post("/conversation/add", `{"history":[{"user":"What is Citrix?"}],"approach":"chatconversation"}`)
	var ask dto.AskResponse
	require.NoError(t, json.Unmarshal(body, &ask))
	bot := ask.Answer
	history, err := json.Marshal([]dto.ChatTurnDto{{User: "What is Citrix?", Bot: &bot}, {User: "How do I access SAP Learning Hub?"}})
	require.NoError(t, err)
	status, body := a.post("/conversation/add", `{"history":`+string(history)+`,"approach":"chatconversation","conversation_id":"`+ask.ConversationId+`"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = a.post("/conversation/gen_title", `{"conversation_id":"`+ask.ConversationId+`"}`)
	assert.Equal(t, http.StatusBadRequest, status, "existing title is kept without overwrite")

	status, body = a.post("/conversation/gen_title", `{"conversation_id":"`+ask.ConversationId+`","overwrite_existing_title":true}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var conv dto.ConversationSummaryDto
	require.NoError(t, json.Unmarshal(body, &conv))
	assert.Equal(t, ask.ConversationId, conv.Id)
	assert.Equal(t, "How do I access", conv.Title)

	status, _ = a.post("/conversation/gen_title", `{"conversation_id":"missing","overwrite_existing_title":true}`)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = a.post("/conversation/gen_title", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateIsNotImplemented(t *testing.T) {
	a := newTestApp(t, "")
	status, _ := a.post("/conversation/update", `{}`)
	assert.Equal(t, http.StatusNotImplemented, status)
}

func TestContentServesSourceText(t *testing.T) {
	a := newTestApp(t, "")

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/content/citrix-access.txt", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), "IT service portal")

	resp, err = a.app.Test(httptest.NewRequest(http.MethodGet, "/content/nope.txt", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJwtScopesConversationsPerUser(t *testing.T) {
	const secret = "s3cret"
	a := newTestApp(t, secret)

	status, _ := a.post("/conversation/list", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	a.token = signToken(t, secret, "alice")
	status, body := a.post("/conversation/add", `{"history":[{"user":"What is Citrix?"}],"approach":"chatconversation"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = a.post("/conversation/list", `{}`)
	assert.Equal(t, http.StatusOK, status)

	a.token = signToken(t, secret, "bob")
	status, _ = a.post("/conversation/list", `{}`)
	assert.Equal(t, http.StatusNotFound, status)

	a.token = signToken(t, "other-secret", "alice")
	status, _ = a.post("/conversation/list", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func signToken(t *testing.T, secret, user string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}
