package approval

import "time"

// Status is the lifecycle state of a queued draft.
// Pending -> Approved | Rejected; both outcomes remove the item from
// the queue, so only Pending items are ever held.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Draft is the manager-authored content submitted for approval.
type Draft struct {
	Kind       string `json:"kind"` // e.g. "Client Email", "Employee Email"
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	ClientName string `json:"clientName"`
}

// Item is a draft held in the approval queue.
type Item struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Preview    string    `json:"preview"`
	Content    string    `json:"content"`
	ClientName string    `json:"clientName"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ClientMessage is a mailbox entry visible to the client. Every message
// either originated from an approved queue item or from seed data.
type ClientMessage struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	SenderTitle string    `json:"senderTitle"`
	Subject     string    `json:"subject"`
	Preview     string    `json:"preview"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	SentAt      time.Time `json:"sentAt"`
}
