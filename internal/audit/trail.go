// Package audit builds and reads the append-only ticket audit trail.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

const (
	previewLimit  = 100
	previewKeep   = 97
	previewSuffix = "..."
)

// StatusChange records a status transition performed by actor.
func StatusChange(ticketID int64, from, to domain.TicketStatus, actor domain.User, at time.Time) domain.AuditEntry {
	old := string(from)
	return domain.AuditEntry{
		TicketID:    ticketID,
		Action:      domain.AuditActionStatusChange,
		OldValue:    &old,
		NewValue:    string(to),
		PerformedBy: actor.ID,
		CreatedAt:   at,
	}
}

// CommentAdded records a new comment. The value carries a quoted preview of
// the content and the author's username.
func CommentAdded(ticketID int64, content string, actor domain.User, at time.Time) domain.AuditEntry {
	return domain.AuditEntry{
		TicketID:    ticketID,
		Action:      domain.AuditActionCommentAdded,
		NewValue:    Preview(content) + " - by " + actor.Username,
		PerformedBy: actor.ID,
		CreatedAt:   at,
	}
}

// Preview quotes content, cutting anything past 100 runes down to 97 plus "...".
func Preview(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) > previewLimit {
		content = string(runes[:previewKeep]) + previewSuffix
	}
	return `"` + content + `"`
}

// Trail is the read side of the audit log.
type Trail struct {
	store repository.Store
}

// NewTrail constructs a trail over store.
func NewTrail(store repository.Store) *Trail {
	return &Trail{store: store}
}

// Append writes entry through repos, which should be bound to the same
// transaction as the mutation being recorded.
func (t *Trail) Append(ctx context.Context, repos repository.Repositories, entry *domain.AuditEntry) error {
	return repos.Audit.Append(ctx, entry)
}

// All returns every entry of every ticket, ordered by ticket then entry id.
func (t *Trail) All(ctx context.Context) ([]domain.AuditEntry, error) {
	entries, err := t.store.Repositories().Audit.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

// ForTicket returns the entries of one ticket in append order.
func (t *Trail) ForTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	return t.store.Repositories().Audit.ListByTicket(ctx, ticketID)
}
