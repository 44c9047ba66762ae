package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced is returned when deleting a row other records still point to.
	ErrReferenced = errors.New("record is still referenced")
)

// TicketFilter narrows ticket listings. Nil fields do not filter.
type TicketFilter struct {
	CreatedBy *int64
	Status    *domain.TicketStatus
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// TicketRepository encapsulates ticket persistence. Comments and audit
// entries on the ticket value are ignored; they have their own repositories.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// CommentRepository stores ticket comments. Comments are never edited.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

// AuditRepository stores audit entries. There is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error)
	ListAll(ctx context.Context) ([]domain.AuditEntry, error)
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Users    UserRepository
	Tickets  TicketRepository
	Comments CommentRepository
	Audit    AuditRepository
}

// Store hands out repositories and runs callbacks atomically.
type Store interface {
	Repositories() Repositories
	// WithinTx runs fn with repositories bound to a single transaction.
	// Everything fn writes is committed together, or nothing is when fn
	// returns an error.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
