package approval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/approval"
)

func newTestService() *Service {
	return NewService("John Smith", "Relationship Manager")
}

func draft(content string) approval.Draft {
	return approval.Draft{
		Kind:       "Client Email",
		Subject:    "Follow-up Email for Jane Doe",
		Content:    content,
		ClientName: "Jane Doe",
	}
}

func TestService_SeededMailbox(t *testing.T) {
	svc := newTestService()

	messages := svc.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "John Smith", messages[0].Sender)
	assert.Equal(t, "Relationship Manager", messages[0].SenderTitle)
	assert.Equal(t, "Following up on our Q3 Review", messages[0].Subject)
	assert.False(t, messages[0].Read)
	assert.NotEmpty(t, messages[0].ID)
}

func TestService_SubmitDraft(t *testing.T) {
	svc := newTestService()

	item := svc.SubmitDraft(draft("Dear Jane, thank you for your time today."))

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, approval.StatusPending, item.Status)
	assert.Equal(t, "Dear Jane, thank you for your time today.", item.Preview)
	assert.False(t, item.CreatedAt.IsZero())

	pending := svc.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)
}

func TestService_SubmitDraft_UniqueIDs(t *testing.T) {
	svc := newTestService()

	a := svc.SubmitDraft(draft("first"))
	b := svc.SubmitDraft(draft("second"))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestService_SubmitDraft_LongContentPreview(t *testing.T) {
	svc := newTestService()

	long := strings.Repeat("x", 250)
	item := svc.SubmitDraft(draft(long))

	assert.Equal(t, long[:100]+"...", item.Preview)
	assert.Equal(t, long, item.Content)
}

func TestService_Approve_DeliversToMailbox(t *testing.T) {
	svc := newTestService()
	item := svc.SubmitDraft(draft("Dear Jane, the fund we discussed is now open."))

	require.True(t, svc.Approve(item.ID))
	assert.Empty(t, svc.Pending())

	messages := svc.Messages()
	require.Len(t, messages, 2) // seed + delivered

	delivered := messages[1]
	assert.Equal(t, "John Smith", delivered.Sender)
	assert.Equal(t, "Relationship Manager", delivered.SenderTitle)
	assert.Equal(t, item.Subject, delivered.Subject)
	assert.Equal(t, item.Content, delivered.Body)
	assert.False(t, delivered.Read)
	assert.NotEqual(t, item.ID, delivered.ID)
}

func TestService_Approve_UnknownIDNoOp(t *testing.T) {
	svc := newTestService()
	svc.SubmitDraft(draft("content"))

	assert.False(t, svc.Approve("no-such-id"))
	assert.Len(t, svc.Pending(), 1)
	assert.Len(t, svc.Messages(), 1)
}

func TestService_Approve_Twice(t *testing.T) {
	svc := newTestService()
	item := svc.SubmitDraft(draft("content"))

	require.True(t, svc.Approve(item.ID))
	assert.False(t, svc.Approve(item.ID), "second approval must be a no-op")
	assert.Len(t, svc.Messages(), 2)
}

func TestService_Reject_RemovesWithoutDelivery(t *testing.T) {
	svc := newTestService()
	item := svc.SubmitDraft(draft("content"))

	require.True(t, svc.Reject(item.ID))
	assert.Empty(t, svc.Pending())
	assert.Len(t, svc.Messages(), 1) // seed only

	assert.False(t, svc.Reject(item.ID))
}

func TestService_Edit_ReplacesContentInPlace(t *testing.T) {
	svc := newTestService()
	item := svc.SubmitDraft(draft("original content"))
	other := svc.SubmitDraft(draft("untouched"))

	require.True(t, svc.Edit(item.ID, "revised content"))

	pending := svc.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "revised content", pending[0].Content)
	assert.Equal(t, "revised content", pending[0].Preview)
	assert.Equal(t, "untouched", pending[1].Content)
	assert.Equal(t, other.ID, pending[1].ID)

	assert.False(t, svc.Edit("no-such-id", "x"))
}

func TestService_Edit_ThenApproveDeliversRevision(t *testing.T) {
	svc := newTestService()
	item := svc.SubmitDraft(draft("original"))

	require.True(t, svc.Edit(item.ID, "revised"))
	require.True(t, svc.Approve(item.ID))

	messages := svc.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "revised", messages[1].Body)
}

func TestService_MarkRead(t *testing.T) {
	svc := newTestService()
	seed := svc.Messages()[0]

	require.True(t, svc.MarkRead(seed.ID))
	assert.True(t, svc.Messages()[0].Read)

	assert.False(t, svc.MarkRead("no-such-id"))
}

func TestService_ReturnsCopies(t *testing.T) {
	svc := newTestService()
	svc.SubmitDraft(draft("content"))

	pending := svc.Pending()
	pending[0].Content = "mutated"
	assert.Equal(t, "content", svc.Pending()[0].Content)

	messages := svc.Messages()
	messages[0].Read = true
	assert.False(t, svc.Messages()[0].Read)
}

func TestService_QueueOrderPreserved(t *testing.T) {
	svc := newTestService()
	a := svc.SubmitDraft(draft("a"))
	b := svc.SubmitDraft(draft("b"))
	c := svc.SubmitDraft(draft("c"))

	require.True(t, svc.Reject(b.ID))

	pending := svc.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, a.ID, pending[0].ID)
	assert.Equal(t, c.ID, pending[1].ID)
}
