package domain

import (
	"strings"
	"time"
)

// DefaultNick is used when neither a username nor a display name is available.
const DefaultNick = "user"

// User is a person known by their chat-platform identity.
type User struct {
	ID         int64
	ExternalID string
	Name       string
	Nick       string
	CreatedAt  time.Time
}

// DisplayName joins the non-empty parts of a first and last name with a single space.
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// Nickname prefers the platform username, then the first word of the display name.
func Nickname(username, displayName string) string {
	if username != "" {
		return username
	}
	if fields := strings.Fields(displayName); len(fields) > 0 {
		return fields[0]
	}
	return DefaultNick
}
