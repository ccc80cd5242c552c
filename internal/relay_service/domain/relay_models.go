package domain

import (
	"fmt"
	"time"
)

// RoleID identifies a logical internal participant in a conversation.
type RoleID string

const (
	RoleProjectManager  RoleID = "project_manager"
	RoleContentProducer RoleID = "content_producer"
)

// MaskedBinding links a real client number to the masked number currently
// presented to it and the role on the other end of the conversation.
// At most one binding exists per real number; a new upsert replaces it.
type MaskedBinding struct {
	RealNumber   string `json:"real_number"`
	MaskedNumber string `json:"masked_number"`
	Role         RoleID `json:"role"`
}

// MessageEvent is the transient payload handed to the CRM logger for one
// relayed message. It has no identity beyond the call that uses it.
type MessageEvent struct {
	Timestamp string        `json:"timestamp"`
	Status    DeliveryLabel `json:"status"`
	Message   string        `json:"message"`
	Sender    string        `json:"sender"`
}

// RoleDirectory maps role identifiers to real destination phone numbers.
// It is built once at startup and never mutated.
type RoleDirectory struct {
	numbers map[RoleID]string
}

// NewRoleDirectory copies the given role -> number entries into an
// immutable directory.
func NewRoleDirectory(entries map[string]string) *RoleDirectory {
	numbers := make(map[RoleID]string, len(entries))
	for role, number := range entries {
		numbers[RoleID(role)] = number
	}
	return &RoleDirectory{numbers: numbers}
}

// ResolveNumber returns the destination number for a role.
func (d *RoleDirectory) ResolveNumber(role RoleID) (string, error) {
	number, ok := d.numbers[role]
	if !ok || number == "" {
		return "", fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	return number, nil
}

// Contains reports whether the role is part of the directory.
func (d *RoleDirectory) Contains(role RoleID) bool {
	_, ok := d.numbers[role]
	return ok
}

// FormatTimestamp renders an instant as a fixed-width local timestamp,
// e.g. "2024-01-31 09:05:07". This exact format is stored in CRM fields
// and appended to deal logs, so it must stay stable.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
