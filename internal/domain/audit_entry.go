package domain

import "time"

// AuditAction tags what a mutation did to a ticket.
type AuditAction string

const (
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
	AuditActionCommentAdded AuditAction = "COMMENT_ADDED"
)

// AuditEntry is an immutable record of one mutating action on a ticket.
type AuditEntry struct {
	ID          int64
	TicketID    int64
	Action      AuditAction
	OldValue    *string
	NewValue    string
	PerformedBy int64
	CreatedAt   time.Time
}
