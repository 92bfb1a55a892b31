/*
Package relay contains the core logic of the chat relay.

This file defines the History type, the bounded insertion-ordered store of
sent messages. Like the Registry, it is not self-locking; the hub serializes
all access under its own lock.
*/
package relay

// History retains the most recent messages, public and private, up to a fixed
// capacity. When the capacity is exceeded the oldest message is evicted.
type History struct {
	capacity int
	messages []*Message
	byID     map[string]*Message
}

// NewHistory creates an empty history bounded to capacity messages.
func NewHistory(capacity int) *History {
	return &History{
		capacity: capacity,
		messages: make([]*Message, 0, capacity),
		byID:     make(map[string]*Message, capacity),
	}
}

// Append inserts msg at the tail, evicting from the head once the capacity is
// exceeded. Amortized O(1).
func (h *History) Append(msg *Message) {
	h.messages = append(h.messages, msg)
	h.byID[msg.ID] = msg

	if len(h.messages) > h.capacity {
		evicted := h.messages[0]
		h.messages[0] = nil
		h.messages = h.messages[1:]
		delete(h.byID, evicted.ID)
	}
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	return len(h.messages)
}

// MarkRead records that readerID has read the message with the given id.
// Adding is idempotent; an unknown message id is a no-op. The message is
// returned (with its updated read set) so the caller can notify the sender,
// along with whether it was found.
func (h *History) MarkRead(messageID, readerID string) (*Message, bool) {
	msg, ok := h.byID[messageID]
	if !ok {
		return nil, false
	}

	for _, id := range msg.ReadBy {
		if id == readerID {
			return msg, true
		}
	}
	msg.ReadBy = append(msg.ReadBy, readerID)

	return msg, true
}

// VisibleTo returns the ordered projections of every message the viewer is
// permitted to see: public messages always, private messages only when the
// viewer is the sender or a member of the target set. Ordering matches
// insertion order, oldest first.
func (h *History) VisibleTo(viewerID string) []MessageView {
	views := make([]MessageView, 0, len(h.messages))

	for _, msg := range h.messages {
		if !msg.Private {
			views = append(views, projectPublic(msg))
			continue
		}

		if msg.SenderID == viewerID {
			views = append(views, projectSender(msg))
			continue
		}

		for _, targetID := range msg.TargetIDs {
			if targetID == viewerID {
				views = append(views, projectTarget(msg))
				break
			}
		}
	}

	return views
}

// projectPublic renders a public message. Every viewer receives the identical
// projection; "You" labeling is a client presentation concern.
func projectPublic(msg *Message) MessageView {
	return MessageView{
		ID:        msg.ID,
		UserID:    msg.SenderID,
		User:      msg.SenderUsername,
		Text:      msg.OriginalText,
		Private:   false,
		Timestamp: msg.Timestamp,
		ReadBy:    append([]string(nil), msg.ReadBy...),
	}
}

// projectSender renders a private message for its sender: original filtered
// text with mentions preserved, marked as a self-view.
func projectSender(msg *Message) MessageView {
	return MessageView{
		ID:        msg.ID,
		UserID:    msg.SenderID,
		User:      msg.SenderUsername,
		Text:      msg.OriginalText,
		Private:   true,
		Self:      true,
		Targets:   append([]string(nil), msg.TargetUsernames...),
		Timestamp: msg.Timestamp,
		ReadBy:    append([]string(nil), msg.ReadBy...),
	}
}

// projectTarget renders a private message for a member of its target set:
// mention tokens stripped.
func projectTarget(msg *Message) MessageView {
	return MessageView{
		ID:        msg.ID,
		UserID:    msg.SenderID,
		User:      msg.SenderUsername,
		Text:      msg.RecipientText,
		Private:   true,
		Targets:   append([]string(nil), msg.TargetUsernames...),
		Timestamp: msg.Timestamp,
		ReadBy:    append([]string(nil), msg.ReadBy...),
	}
}
