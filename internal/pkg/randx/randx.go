/*
Package randx provides functions for generating unique identifiers.

User and message identifiers are standard UUID v4 strings; they are opaque and
stable for the life of the process.
*/
package randx

import "github.com/google/uuid"

// UserID generates a UUID v4 string to serve as a stable identifier for a user identity.
func UserID() string {
	return uuid.New().String()
}

// MessageID generates a UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}
