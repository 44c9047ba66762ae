package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

type userRepository struct {
	access access
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.access(true, func(a *arena) error {
		for _, existing := range a.users {
			if existing.Username == user.Username {
				return repository.ErrDuplicate
			}
		}
		a.nextUserID++
		user.ID = a.nextUserID
		a.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.access(false, func(a *arena) error {
		found, ok := a.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.access(false, func(a *arena) error {
		for _, candidate := range a.users {
			if candidate.Username == username {
				user = candidate
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var result []domain.User
	err := r.access(false, func(a *arena) error {
		for _, id := range sortedKeys(a.users) {
			result = append(result, a.users[id])
		}
		return nil
	})
	return result, err
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.access(true, func(a *arena) error {
		if _, ok := a.users[id]; !ok {
			return repository.ErrNotFound
		}
		if userReferenced(a, id) {
			return repository.ErrReferenced
		}
		delete(a.users, id)
		return nil
	})
}

// userReferenced mirrors the foreign keys of the SQL schema.
func userReferenced(a *arena, id int64) bool {
	for _, t := range a.tickets {
		if t.CreatedBy == id {
			return true
		}
	}
	for _, c := range a.comments {
		if c.CreatedBy == id {
			return true
		}
	}
	for _, e := range a.audit {
		if e.PerformedBy == id {
			return true
		}
	}
	return false
}

type ticketRepository struct {
	access access
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.access(true, func(a *arena) error {
		if _, ok := a.users[ticket.CreatedBy]; !ok {
			return repository.ErrReferenced
		}
		a.nextTicketID++
		ticket.ID = a.nextTicketID
		a.tickets[ticket.ID] = stripTicket(*ticket)
		return nil
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.access(true, func(a *arena) error {
		current, ok := a.tickets[ticket.ID]
		if !ok {
			return repository.ErrNotFound
		}
		updated := stripTicket(*ticket)
		updated.CreatedBy = current.CreatedBy
		updated.CreatedAt = current.CreatedAt
		a.tickets[ticket.ID] = updated
		return nil
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.access(false, func(a *arena) error {
		found, ok := a.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		ticket = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	err := r.access(false, func(a *arena) error {
		for _, id := range sortedKeys(a.tickets) {
			t := a.tickets[id]
			if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
				continue
			}
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			result = append(result, t)
		}
		return nil
	})
	return result, err
}

func stripTicket(t domain.Ticket) domain.Ticket {
	t.Comments = nil
	t.AuditEntries = nil
	return t
}

type commentRepository struct {
	access access
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.access(true, func(a *arena) error {
		if _, ok := a.tickets[comment.TicketID]; !ok {
			return repository.ErrReferenced
		}
		a.nextCommentID++
		comment.ID = a.nextCommentID
		a.comments[comment.ID] = *comment
		return nil
	})
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	var result []domain.Comment
	err := r.access(false, func(a *arena) error {
		for _, id := range sortedKeys(a.comments) {
			if c := a.comments[id]; c.TicketID == ticketID {
				result = append(result, c)
			}
		}
		return nil
	})
	return result, err
}

type auditRepository struct {
	access access
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return r.access(true, func(a *arena) error {
		if _, ok := a.tickets[entry.TicketID]; !ok {
			return repository.ErrReferenced
		}
		a.nextAuditID++
		entry.ID = a.nextAuditID
		stored := *entry
		if entry.OldValue != nil {
			old := *entry.OldValue
			stored.OldValue = &old
		}
		a.audit[entry.ID] = stored
		return nil
	})
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	err := r.access(false, func(a *arena) error {
		for _, id := range sortedKeys(a.audit) {
			if e := a.audit[id]; e.TicketID == ticketID {
				result = append(result, e)
			}
		}
		return nil
	})
	return result, err
}

func (r *auditRepository) ListAll(ctx context.Context) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	err := r.access(false, func(a *arena) error {
		for _, id := range sortedKeys(a.audit) {
			result = append(result, a.audit[id])
		}
		return nil
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TicketID < result[j].TicketID
	})
	return result, err
}
