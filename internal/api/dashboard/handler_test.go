package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainapproval "hermes/internal/domain/approval"
	"hermes/internal/domain/market"
	"hermes/internal/domain/news"
	approvalsvc "hermes/internal/services/approval"
	"hermes/internal/services/assistant"
	"hermes/pkg/errors"
)

type stubChat struct {
	reply  string
	err    error
	status assistant.Status
}

func (s *stubChat) Converse(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

func (s *stubChat) Status() assistant.Status { return s.status }

func newTestHandler(chat Chat) (*Handler, *market.Store, *news.Store, *approvalsvc.Service) {
	quotes := market.NewStore()
	articles := news.NewStore()
	approvals := approvalsvc.NewService("John Smith", "Relationship Manager")
	return New(quotes, articles, chat, approvals), quotes, articles, approvals
}

func serve(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Quotes(t *testing.T) {
	h, quotes, _, _ := newTestHandler(&stubChat{})
	quotes.Publish([]market.Quote{{
		Symbol: "AAPL",
		Name:   "Apple Inc.",
		Price:  decimal.NewFromFloat(230.00),
	}})

	rec := serve(t, h, http.MethodGet, "/api/v1/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap market.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Quotes, 1)
	assert.Equal(t, "AAPL", snap.Quotes[0].Symbol)
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestHandler_News(t *testing.T) {
	h, _, articles, _ := newTestHandler(&stubChat{})
	articles.Publish([]news.Article{{Title: "Markets steady", Category: news.CategoryMarketNews}})

	rec := serve(t, h, http.MethodGet, "/api/v1/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap news.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Articles, 1)
	assert.Equal(t, news.CategoryMarketNews, snap.Articles[0].Category)
}

func TestHandler_Chat(t *testing.T) {
	h, _, _, _ := newTestHandler(&stubChat{reply: "Portfolio looks balanced.", status: assistant.StatusConnected})

	rec := serve(t, h, http.MethodPost, "/api/v1/assistant/chat", map[string]string{"message": "How am I doing?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Portfolio looks balanced.", resp.Reply)
	assert.Equal(t, assistant.StatusConnected, resp.Status)
}

func TestHandler_Chat_Validation(t *testing.T) {
	h, _, _, _ := newTestHandler(&stubChat{})

	rec := serve(t, h, http.MethodPost, "/api/v1/assistant/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Chat_Busy(t *testing.T) {
	h, _, _, _ := newTestHandler(&stubChat{err: errors.ErrBusy})

	rec := serve(t, h, http.MethodPost, "/api/v1/assistant/chat", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_AssistantStatus(t *testing.T) {
	h, _, _, _ := newTestHandler(&stubChat{status: assistant.StatusDisconnected})

	rec := serve(t, h, http.MethodGet, "/api/v1/assistant/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"disconnected"}`, rec.Body.String())
}

func TestHandler_ApprovalLifecycle(t *testing.T) {
	h, _, _, approvals := newTestHandler(&stubChat{})

	rec := serve(t, h, http.MethodPost, "/api/v1/approvals", map[string]string{
		"kind":       "Client Email",
		"subject":    "Follow-up Email for Jane Doe",
		"content":    "Dear Jane, thank you for your time.",
		"clientName": "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item domainapproval.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, domainapproval.StatusPending, item.Status)

	rec = serve(t, h, http.MethodGet, "/api/v1/approvals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []domainapproval.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	rec = serve(t, h, http.MethodPost, "/api/v1/approvals/"+item.ID+"/edit", map[string]string{"content": "Dear Jane, revised."})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, h, http.MethodPost, "/api/v1/approvals/"+item.ID+"/approve", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Empty(t, approvals.Pending())
	messages := approvals.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Dear Jane, revised.", messages[1].Body)
}

func TestHandler_ApproveUnknownID(t *testing.T) {
	h, _, _, _ := newTestHandler(&stubChat{})

	rec := serve(t, h, http.MethodPost, "/api/v1/approvals/no-such-id/approve", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_SubmitDraft_RequiresContent(t *testing.T) {
	h, _, _, _ := newTestHandler(&stubChat{})

	rec := serve(t, h, http.MethodPost, "/api/v1/approvals", map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Messages_MarkRead(t *testing.T) {
	h, _, _, approvals := newTestHandler(&stubChat{})

	rec := serve(t, h, http.MethodGet, "/api/v1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []domainapproval.ClientMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 1)
	assert.False(t, messages[0].Read)

	rec = serve(t, h, http.MethodPost, "/api/v1/messages/"+messages[0].ID+"/read", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, approvals.Messages()[0].Read)

	rec = serve(t, h, http.MethodPost, "/api/v1/messages/no-such-id/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Reject(t *testing.T) {
	h, _, _, approvals := newTestHandler(&stubChat{})
	item := approvals.SubmitDraft(domainapproval.Draft{Kind: "Client Email", Content: "draft"})

	rec := serve(t, h, http.MethodPost, "/api/v1/approvals/"+item.ID+"/reject", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, approvals.Pending())
	assert.Len(t, approvals.Messages(), 1) // seed only
}
