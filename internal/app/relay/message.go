/*
Package relay contains the core logic of the chat relay.

This file defines the inbound and outbound wire types exchanged with clients
over the WebSocket connection, and the stored Message record kept in history.
*/
package relay

import (
	"time"

	"relaychat/internal/app/user"
)

// MessageType identifies the kind of a wire message, inbound or outbound.
type MessageType string

// Inbound message types.
const (
	TypeRegister MessageType = "register"
	TypeLogout   MessageType = "logout"
	TypeMessage  MessageType = "message"
	TypeRead     MessageType = "read"
)

// Outbound message types.
const (
	TypeRegistered MessageType = "registered"
	TypeHistory    MessageType = "history"
	TypeUsers      MessageType = "users"
	TypeSystem     MessageType = "system"
	TypeError      MessageType = "error"
)

// Envelope is the flat inbound wire format. Every field except Type is
// optional; which ones are meaningful depends on the message type.
type Envelope struct {
	Type MessageType `json:"type"`

	// register
	Username string `json:"username,omitempty"`

	// message
	Text string `json:"text,omitempty"`

	// read
	MessageID string `json:"messageId,omitempty"`
	ReaderID  string `json:"readerId,omitempty"`
}

// Message is a stored chat message. It is immutable after creation except for
// ReadBy, which grows append-only as read receipts arrive.
type Message struct {
	// ID is the unique message identifier.
	ID string

	// SenderID and SenderUsername attribute the message; attribution survives
	// the sender going offline.
	SenderID       string
	SenderUsername string

	// Timestamp is the RFC 3339 UTC send time.
	Timestamp string

	// Private reports whether the message targets an explicit recipient set.
	Private bool

	// OriginalText is the text after profanity filtering, with mention tokens
	// preserved. It is what the sender (and, for public messages, everyone)
	// sees.
	OriginalText string

	// RecipientText is OriginalText with mention tokens stripped. Only
	// meaningful for private messages; it is what targets see.
	RecipientText string

	// TargetIDs and TargetUsernames hold the resolved target set of a private
	// message. Empty for public messages.
	TargetIDs       []string
	TargetUsernames []string

	// ReadBy lists the ids of users who have read the message.
	ReadBy []string
}

// MessageView is the viewer-specific projection of a stored message, used both
// for live delivery and history replay.
type MessageView struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	User      string   `json:"user"`
	Text      string   `json:"text"`
	Private   bool     `json:"private"`
	Self      bool     `json:"self,omitempty"`
	Targets   []string `json:"targets,omitempty"`
	Timestamp string   `json:"timestamp"`
	ReadBy    []string `json:"readBy,omitempty"`
}

// registeredPayload confirms a successful registration, carrying the possibly
// disambiguated username.
type registeredPayload struct {
	Type     MessageType `json:"type"`
	ID       string      `json:"id"`
	Username string      `json:"username"`
}

// historyPayload delivers the viewer's visible history as one ordered batch,
// oldest to newest.
type historyPayload struct {
	Type     MessageType   `json:"type"`
	Messages []MessageView `json:"messages"`
}

// usersPayload is the presence broadcast: a snapshot of every identity
// registered this session with its online flag.
type usersPayload struct {
	Type  MessageType     `json:"type"`
	Users []user.Presence `json:"users"`
}

// messagePayload is a live-delivered message projection.
type messagePayload struct {
	Type MessageType `json:"type"`
	MessageView
}

// systemPayload is an engine-originated notice to a single client.
type systemPayload struct {
	Type      MessageType `json:"type"`
	Text      string      `json:"text"`
	Timestamp string      `json:"timestamp"`
}

// readPayload notifies a message's sender of an updated read set.
type readPayload struct {
	Type      MessageType `json:"type"`
	MessageID string      `json:"messageId"`
	ReaderID  string      `json:"readerId"`
	ReadBy    []string    `json:"readBy"`
}

// errorPayload reports a validation error to the originating connection.
type errorPayload struct {
	Type    MessageType `json:"type"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
}

// wireTimestamp returns the current send time in the wire format.
func wireTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
