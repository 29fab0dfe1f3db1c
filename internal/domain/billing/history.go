package billing

import (
	"time"

	"github.com/google/uuid"
)

// HistoryAction enumerates audit trail actions
type HistoryAction string

const (
	HistoryActionCreated         HistoryAction = "created"
	HistoryActionUpdated         HistoryAction = "updated"
	HistoryActionSent            HistoryAction = "sent"
	HistoryActionViewed          HistoryAction = "viewed"
	HistoryActionPaymentRecorded HistoryAction = "payment_recorded"
	HistoryActionCancelled       HistoryAction = "cancelled"
	HistoryActionArchived        HistoryAction = "archived"
	HistoryActionRestored        HistoryAction = "restored"
	HistoryActionRecurred        HistoryAction = "recurred"
)

// HistoryEntry is one row of an invoice's append-only audit trail
type HistoryEntry struct {
	Action    HistoryAction `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Actor     uuid.UUID     `json:"actor"`
	Details   string        `json:"details,omitempty"`
}

// newHistoryEntry creates an audit entry stamped with the current time
func newHistoryEntry(action HistoryAction, actor uuid.UUID, details string) HistoryEntry {
	return HistoryEntry{
		Action:    action,
		Timestamp: time.Now(),
		Actor:     actor,
		Details:   details,
	}
}
