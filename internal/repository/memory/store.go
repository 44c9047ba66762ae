// Package memory is an in-process implementation of the repository
// contracts. Records live in id-keyed maps; references between them are ids.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type arena struct {
	users    map[int64]domain.User
	tickets  map[int64]domain.Ticket
	comments map[int64]domain.Comment
	audit    map[int64]domain.AuditEntry

	nextUserID    int64
	nextTicketID  int64
	nextCommentID int64
	nextAuditID   int64
}

func newArena() *arena {
	return &arena{
		users:    make(map[int64]domain.User),
		tickets:  make(map[int64]domain.Ticket),
		comments: make(map[int64]domain.Comment),
		audit:    make(map[int64]domain.AuditEntry),
	}
}

func (a *arena) clone() *arena {
	c := &arena{
		users:         make(map[int64]domain.User, len(a.users)),
		tickets:       make(map[int64]domain.Ticket, len(a.tickets)),
		comments:      make(map[int64]domain.Comment, len(a.comments)),
		audit:         make(map[int64]domain.AuditEntry, len(a.audit)),
		nextUserID:    a.nextUserID,
		nextTicketID:  a.nextTicketID,
		nextCommentID: a.nextCommentID,
		nextAuditID:   a.nextAuditID,
	}
	for k, v := range a.users {
		c.users[k] = v
	}
	for k, v := range a.tickets {
		c.tickets[k] = v
	}
	for k, v := range a.comments {
		c.comments[k] = v
	}
	for k, v := range a.audit {
		c.audit[k] = v
	}
	return c
}

// access runs fn against an arena. write reports whether fn mutates it.
type access func(write bool, fn func(*arena) error) error

// Store keeps all records in memory behind one lock.
type Store struct {
	mu   sync.RWMutex
	data *arena
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newArena()}
}

// Repositories returns repositories that lock the store per call.
func (s *Store) Repositories() repository.Repositories {
	return reposFor(s.live)
}

func (s *Store) live(write bool, fn func(*arena) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.data)
}

// WithinTx holds the store lock for the whole callback. fn works on a copy
// that replaces the live data only when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	scoped := func(_ bool, op func(*arena) error) error {
		return op(staged)
	}
	if err := fn(reposFor(scoped)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = staged
	return nil
}

func reposFor(a access) repository.Repositories {
	return repository.Repositories{
		Users:    &userRepository{access: a},
		Tickets:  &ticketRepository{access: a},
		Comments: &commentRepository{access: a},
		Audit:    &auditRepository{access: a},
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
