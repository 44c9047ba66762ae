package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload. A status sent by the client is ignored.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
	Status      domain.TicketStatus   `json:"status,omitempty"`
}

// UpdateStatusRequest payload, used when newStatus is not in the query.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Content string `json:"content"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	CreatedBy    int64                 `json:"created_by"`
	CreatedAt    time.Time             `json:"created_at"`
	LastUpdated  time.Time             `json:"last_updated"`
	Comments     []CommentResponse     `json:"comments"`
	AuditEntries []AuditEntryResponse  `json:"audit_entries"`
}

// CommentResponse represents one comment on a ticket.
type CommentResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	Content   string    `json:"content"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntryResponse represents one audit record.
type AuditEntryResponse struct {
	ID          int64              `json:"id"`
	TicketID    int64              `json:"ticket_id"`
	Action      domain.AuditAction `json:"action"`
	OldValue    *string            `json:"old_value"`
	NewValue    string             `json:"new_value"`
	PerformedBy int64              `json:"performed_by"`
	CreatedAt   time.Time          `json:"created_at"`
}
