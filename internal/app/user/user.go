/*
Package user contains core data structures related to user identity.

It defines the wire-facing representation of a chat participant and the
presence entry broadcast to clients whenever the online population changes.
*/
package user

// User represents the basic identity information of a chat participant.
// Fields use JSON tags for serialization in WebSocket messages.
type User struct {

	// ID is the stable, opaque identifier minted at first registration.
	ID string `json:"id"`

	// Username is the display name, unique among online users (case-insensitive).
	Username string `json:"username"`
}

// Presence is one entry of the online-list broadcast. It extends the identity
// with the current connection state.
type Presence struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}
