package approval

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hermes/internal/domain/approval"
	"hermes/internal/metrics"
	"hermes/pkg/logger"
)

const previewLength = 100

const seedSubject = "Following up on our Q3 Review"

const seedBody = `Dear Jane,

It was great speaking with you this morning about your Q3 portfolio review. As discussed, your portfolio is performing well, up 12.5% over the last six months.

Your technology holdings continue to show strong performance, and I've attached your latest quarterly statement for your review.

I also wanted to follow up on our discussion about the new sustainable infrastructure fund - I believe it aligns well with your stated investment goals and risk preferences.

Please don't hesitate to reach out if you have any questions.

Best regards,
John Smith`

// Service owns the manager approval queue and the client mailbox. All
// state lives in memory for the session; every operation is atomic under
// one mutex. Approving a pending draft moves it out of the queue and
// delivers it to the mailbox as an unread client message.
type Service struct {
	mu      sync.Mutex
	queue   []approval.Item
	mailbox []approval.ClientMessage
	manager string
	title   string
	log     *logger.Logger
	now     func() time.Time
	makeID  func() string
}

// NewService creates an approval service with the mailbox seeded with
// one unread message from the acting manager.
func NewService(managerName, managerTitle string) *Service {
	s := &Service{
		manager: managerName,
		title:   managerTitle,
		log:     logger.Get().With("service", "approval"),
		now:     time.Now,
		makeID:  func() string { return uuid.NewString() },
	}

	s.mailbox = []approval.ClientMessage{{
		ID:          s.makeID(),
		Sender:      managerName,
		SenderTitle: managerTitle,
		Subject:     seedSubject,
		Preview:     preview(seedBody),
		Body:        seedBody,
		Read:        false,
		SentAt:      s.now().Add(-2 * time.Hour),
	}}

	return s
}

// SubmitDraft queues a draft for approval and returns the new item.
func (s *Service) SubmitDraft(draft approval.Draft) approval.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := approval.Item{
		ID:         s.makeID(),
		Kind:       draft.Kind,
		Subject:    draft.Subject,
		Preview:    preview(draft.Content),
		Content:    draft.Content,
		ClientName: draft.ClientName,
		Status:     approval.StatusPending,
		CreatedAt:  s.now(),
	}
	s.queue = append(s.queue, item)
	metrics.ApprovalQueueDepth.Set(float64(len(s.queue)))

	s.log.Infow("Draft queued for approval", "id", item.ID, "kind", item.Kind)
	return item
}

// Approve removes a pending item from the queue and delivers it to the
// client mailbox as an unread message from the acting manager. Unknown
// ids are a silent no-op; it reports whether anything changed.
func (s *Service) Approve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	item := s.queue[idx]
	s.queue = append(s.queue[:idx], s.queue[idx+1:]...)
	metrics.ApprovalQueueDepth.Set(float64(len(s.queue)))
	metrics.ApprovalDecisions.WithLabelValues("approved").Inc()

	s.mailbox = append(s.mailbox, approval.ClientMessage{
		ID:          s.makeID(),
		Sender:      s.manager,
		SenderTitle: s.title,
		Subject:     item.Subject,
		Preview:     item.Preview,
		Body:        item.Content,
		Read:        false,
		SentAt:      s.now(),
	})

	s.log.Infow("Draft approved and delivered", "id", id)
	return true
}

// Reject removes a pending item without delivering anything. Unknown ids
// are a silent no-op.
func (s *Service) Reject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	s.queue = append(s.queue[:idx], s.queue[idx+1:]...)
	metrics.ApprovalQueueDepth.Set(float64(len(s.queue)))
	metrics.ApprovalDecisions.WithLabelValues("rejected").Inc()

	s.log.Infow("Draft rejected", "id", id)
	return true
}

// Edit replaces a pending item's content in place, refreshing its
// preview. Unknown ids are a silent no-op.
func (s *Service) Edit(id, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	s.queue[idx].Content = content
	s.queue[idx].Preview = preview(content)
	return true
}

// Pending returns a copy of the approval queue in submission order.
func (s *Service) Pending() []approval.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]approval.Item(nil), s.queue...)
}

// Messages returns a copy of the client mailbox in delivery order.
func (s *Service) Messages() []approval.ClientMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]approval.ClientMessage(nil), s.mailbox...)
}

// MarkRead flags a mailbox message as read. Unknown ids are a silent
// no-op.
func (s *Service) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.mailbox {
		if s.mailbox[i].ID == id {
			s.mailbox[i].Read = true
			return true
		}
	}
	return false
}

// indexOf finds a queued item by id; the caller holds the lock. Only
// pending items live in the queue, so presence implies pending.
func (s *Service) indexOf(id string) int {
	for i := range s.queue {
		if s.queue[i].ID == id {
			return i
		}
	}
	return -1
}

// preview cuts content to its first 100 characters for list views.
func preview(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
