package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/domain/market"
	"hermes/internal/domain/news"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Engine is the inference backend. The Ollama client satisfies this.
type Engine interface {
	Health(ctx context.Context) error
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Status is the assistant's connection state as shown to the dashboard.
type Status string

const (
	StatusChecking     Status = "checking"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

const persona = `You are a professional banking consultant with access to real-time market data. You can help with banking questions, regulatory costs, investment advice, and discuss current market conditions.

Available Data:
CURRENT STOCK PRICES:
%s

RECENT MARKET NEWS:
%s

Guidelines:
- Provide financial advice when there is an opportunity, but make sure the statement is purely objective
- EVERY piece of financial advice should include a disclaimer that "this is purely advisory information and should not be taken as financial fact"
- Use the available stock and news data to provide informed responses
- Answer banking and investment questions using the current market data
- Avoid inappropriate concepts and language
- Be helpful and professional`

const emptyReplyMessage = "I apologize, but I couldn't process your request at the moment."

// Service bridges dashboard chat to the local inference endpoint. It
// grounds every prompt in the latest quote and news snapshots and
// degrades to a fixed offline message when the endpoint is unreachable.
// At most one request is in flight; concurrent submissions get ErrBusy.
type Service struct {
	engine Engine
	quotes *market.Store
	news   *news.Store
	log    *logger.Logger

	mu       sync.Mutex
	status   Status
	busy     bool
	inflight context.CancelFunc
}

// NewService creates an assistant service in the checking state.
func NewService(engine Engine, quotes *market.Store, articles *news.Store) *Service {
	return &Service{
		engine: engine,
		quotes: quotes,
		news:   articles,
		status: StatusChecking,
		log:    logger.Get().With("service", "assistant"),
	}
}

// Status returns the current connection state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CheckStatus probes the inference endpoint and updates the connection
// state.
func (s *Service) CheckStatus(ctx context.Context) Status {
	err := s.engine.Health(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusDisconnected
	} else {
		s.status = StatusConnected
	}
	return s.status
}

// Converse sends one user message through the model and returns the
// reply. An unreachable endpoint yields the fixed offline message, not
// an error; the only error callers see is ErrBusy when a request is
// already in flight.
func (s *Service) Converse(ctx context.Context, userText string) (string, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		metrics.AssistantRequests.WithLabelValues("busy").Inc()
		return "", errors.ErrBusy
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.inflight = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.inflight = nil
		s.mu.Unlock()
		cancel()
	}()

	prompt := s.buildPrompt(userText)

	start := time.Now()
	reply, err := s.engine.Generate(reqCtx, prompt)
	metrics.AssistantLatency.WithLabelValues(s.engine.Model()).Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.Warnw("Inference request failed", "error", err)
		metrics.AssistantRequests.WithLabelValues("offline").Inc()
		s.setStatus(StatusDisconnected)
		return s.offlineMessage(), nil
	}

	metrics.AssistantRequests.WithLabelValues("success").Inc()
	s.setStatus(StatusConnected)

	if strings.TrimSpace(reply) == "" {
		return emptyReplyMessage, nil
	}
	return reply, nil
}

// Abort cancels any in-flight request, e.g. on shutdown.
func (s *Service) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil {
		s.inflight()
	}
}

func (s *Service) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Service) offlineMessage() string {
	return fmt.Sprintf("I'm currently offline. Please ensure Ollama is running with: `ollama serve` and the model is installed: `ollama pull %s`", s.engine.Model())
}

func (s *Service) buildPrompt(userText string) string {
	system := fmt.Sprintf(persona, s.formatQuotes(), s.formatNews())
	return fmt.Sprintf("%s\n\nUser: %s\nAssistant:", system, userText)
}

func (s *Service) formatQuotes() string {
	snap := s.quotes.Snapshot()
	if len(snap.Quotes) == 0 {
		return "No current stock data available."
	}

	lines := make([]string, 0, len(snap.Quotes))
	for _, q := range snap.Quotes {
		lines = append(lines, fmt.Sprintf("%s (%s): $%s (%s / %s%%)",
			q.Symbol, q.Name, q.Price.StringFixed(2), signed(q.Change), signed(q.ChangePercent)))
	}
	return strings.Join(lines, "\n")
}

// formatNews renders the five most recent articles with summaries cut to
// 100 characters, matching what a small local model can usefully digest.
func (s *Service) formatNews() string {
	snap := s.news.Snapshot()
	if len(snap.Articles) == 0 {
		return "No recent news available."
	}

	articles := snap.Articles
	if len(articles) > 5 {
		articles = articles[:5]
	}

	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("%s (%s) - %s...", a.Title, a.Category, truncate(a.Summary, 100)))
	}
	return strings.Join(lines, "\n")
}

func signed(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
