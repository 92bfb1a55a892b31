package relay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publicMsg(id, senderID, text string) *Message {
	return &Message{
		ID:             id,
		SenderID:       senderID,
		SenderUsername: "sender",
		Timestamp:      wireTimestamp(),
		OriginalText:   text,
		ReadBy:         []string{senderID},
	}
}

func privateMsg(id, senderID string, targetIDs []string, original, stripped string) *Message {
	return &Message{
		ID:              id,
		SenderID:        senderID,
		SenderUsername:  "sender",
		Timestamp:       wireTimestamp(),
		Private:         true,
		OriginalText:    original,
		RecipientText:   stripped,
		TargetIDs:       targetIDs,
		TargetUsernames: []string{"target"},
		ReadBy:          []string{},
	}
}

func TestHistoryEvictsOldestBeyondCapacity(t *testing.T) {
	h := NewHistory(200)

	for i := 1; i <= 201; i++ {
		h.Append(publicMsg(fmt.Sprintf("m%d", i), "u1", "hello"))
	}

	assert.Equal(t, 200, h.Len())

	views := h.VisibleTo("anyone")
	require.Len(t, views, 200)
	assert.Equal(t, "m2", views[0].ID)
	assert.Equal(t, "m201", views[199].ID)

	_, found := h.MarkRead("m1", "u1")
	assert.False(t, found)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	h := NewHistory(10)
	h.Append(publicMsg("m1", "u1", "hello"))

	msg, ok := h.MarkRead("m1", "u2")
	require.True(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, msg.ReadBy)

	msg, ok = h.MarkRead("m1", "u2")
	require.True(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, msg.ReadBy)
}

func TestMarkReadUnknownMessageIsNoop(t *testing.T) {
	h := NewHistory(10)

	_, ok := h.MarkRead("missing", "u1")
	assert.False(t, ok)
}

func TestVisibleToPublicIncludedForEveryViewer(t *testing.T) {
	h := NewHistory(10)
	h.Append(publicMsg("m1", "u1", "hello"))

	for _, viewer := range []string{"u1", "u2", "stranger"} {
		views := h.VisibleTo(viewer)
		require.Len(t, views, 1, "viewer %s", viewer)
		assert.Equal(t, "hello", views[0].Text)
		assert.False(t, views[0].Private)
	}
}

func TestVisibleToPrivateProjections(t *testing.T) {
	h := NewHistory(10)
	h.Append(privateMsg("m1", "u1", []string{"u2"}, "hi @target secret", "hi secret"))

	sender := h.VisibleTo("u1")
	require.Len(t, sender, 1)
	assert.Equal(t, "hi @target secret", sender[0].Text)
	assert.True(t, sender[0].Self)
	assert.Equal(t, []string{"target"}, sender[0].Targets)

	target := h.VisibleTo("u2")
	require.Len(t, target, 1)
	assert.Equal(t, "hi secret", target[0].Text)
	assert.False(t, target[0].Self)
	assert.True(t, target[0].Private)

	assert.Empty(t, h.VisibleTo("u3"))
}

func TestVisibleToPreservesSendOrder(t *testing.T) {
	h := NewHistory(10)
	h.Append(publicMsg("m1", "u1", "first"))
	h.Append(privateMsg("m2", "u1", []string{"u2"}, "@target psst", "psst"))
	h.Append(publicMsg("m3", "u2", "third"))

	views := h.VisibleTo("u2")
	require.Len(t, views, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{views[0].ID, views[1].ID, views[2].ID})
}
