package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository/memory"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store    *memory.Store
	tickets  *service.TicketService
	auth     *service.AuthService
	revoked  auth.RevocationList
	recorded *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	dispatcher.Subscribe(rec.handle)
	revoked := auth.NewMemoryRevocationList()
	clk := &clock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}

	return &fixture{
		store: store,
		tickets: service.NewTicketService(service.TicketDependencies{
			Store:      store,
			Dispatcher: dispatcher,
			Now:        clk.Now,
		}),
		auth: service.NewAuthService(service.AuthDependencies{
			Store:       store,
			Tokens:      auth.NewTokenManager("service-test-secret", time.Hour),
			Revocations: revoked,
			Dispatcher:  dispatcher,
			BcryptCost:  bcrypt.MinCost,
		}),
		revoked:  revoked,
		recorded: rec,
	}
}

func (f *fixture) user(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := f.auth.CreateUser(context.Background(), service.CreateUserInput{
		Username: username,
		Password: "password",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) ticket(t *testing.T, owner *domain.User, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), service.TicketCreateInput{
		Title:       title,
		Description: "details for " + title,
		Priority:    domain.TicketPriorityMedium,
		Category:    domain.TicketCategorySoftware,
	}, owner.ID)
	require.NoError(t, err)
	return ticket
}
