package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"hermes/internal/domain/approval"
	"hermes/internal/domain/market"
	"hermes/internal/domain/news"
	approvalsvc "hermes/internal/services/approval"
	"hermes/internal/services/assistant"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Chat is the assistant surface the dashboard talks to.
type Chat interface {
	Converse(ctx context.Context, userText string) (string, error)
	Status() assistant.Status
}

// Handler serves the dashboard's JSON API: quote and news snapshots,
// assistant chat, the approval queue and the client mailbox.
type Handler struct {
	quotes    *market.Store
	news      *news.Store
	chat      Chat
	approvals *approvalsvc.Service
	log       *logger.Logger
}

// New creates the dashboard API handler.
func New(quotes *market.Store, articles *news.Store, chat Chat, approvals *approvalsvc.Service) *Handler {
	return &Handler{
		quotes:    quotes,
		news:      articles,
		chat:      chat,
		approvals: approvals,
		log:       logger.Get().With("component", "dashboard_api"),
	}
}

// Register mounts all dashboard routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/quotes", h.handleQuotes)
	mux.HandleFunc("GET /api/v1/news", h.handleNews)
	mux.HandleFunc("POST /api/v1/assistant/chat", h.handleChat)
	mux.HandleFunc("GET /api/v1/assistant/status", h.handleAssistantStatus)
	mux.HandleFunc("GET /api/v1/approvals", h.handleListApprovals)
	mux.HandleFunc("POST /api/v1/approvals", h.handleSubmitDraft)
	mux.HandleFunc("POST /api/v1/approvals/{id}/approve", h.handleApprove)
	mux.HandleFunc("POST /api/v1/approvals/{id}/reject", h.handleReject)
	mux.HandleFunc("POST /api/v1/approvals/{id}/edit", h.handleEdit)
	mux.HandleFunc("GET /api/v1/messages", h.handleMessages)
	mux.HandleFunc("POST /api/v1/messages/{id}/read", h.handleMarkRead)
}

func (h *Handler) handleQuotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quotes.Snapshot())
}

func (h *Handler) handleNews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.news.Snapshot())
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply  string           `json:"reply"`
	Status assistant.Status `json:"status"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.chat.Converse(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, errors.ErrBusy) {
			writeError(w, http.StatusConflict, "a request is already in flight")
			return
		}
		h.log.Errorw("Chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Status: h.chat.Status()})
}

func (h *Handler) handleAssistantStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]assistant.Status{"status": h.chat.Status()})
}

func (h *Handler) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.approvals.Pending())
}

type draftRequest struct {
	Kind       string `json:"kind"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	ClientName string `json:"clientName"`
}

func (h *Handler) handleSubmitDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	item := h.approvals.SubmitDraft(approvalDraft(req))
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	if !h.approvals.Approve(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "no pending draft with that id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	if !h.approvals.Reject(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "no pending draft with that id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type editRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	if !h.approvals.Edit(r.PathValue("id"), req.Content) {
		writeError(w, http.StatusNotFound, "no pending draft with that id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.approvals.Messages())
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if !h.approvals.MarkRead(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "no message with that id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func approvalDraft(req draftRequest) approval.Draft {
	return approval.Draft{
		Kind:       req.Kind,
		Subject:    req.Subject,
		Content:    req.Content,
		ClientName: req.ClientName,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
