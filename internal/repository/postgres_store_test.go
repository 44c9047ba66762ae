package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// openTestStore needs TEST_POSTGRES_DSN pointing at a disposable database.
func openTestStore(t *testing.T) *repository.PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, filepath.Join("..", "..", "migrations"), zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE audit_entries, ticket_comments, tickets, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return repository.NewPostgresStore(pool)
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	repos := store.Repositories()
	now := time.Now().UTC().Truncate(time.Microsecond)

	owner := &domain.User{Username: "owner", PasswordHash: "x", Role: domain.RoleEmployee, CreatedAt: now}
	require.NoError(t, repos.Users.Create(ctx, owner))
	err := repos.Users.Create(ctx, &domain.User{Username: "owner", PasswordHash: "y", Role: domain.RoleEmployee, CreatedAt: now})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	ticket := &domain.Ticket{
		Title: "t", Description: "d",
		Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther,
		Status: domain.TicketStatusNew, CreatedBy: owner.ID, CreatedAt: now, LastUpdated: now,
	}
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Repositories) error {
		return tx.Tickets.Create(ctx, ticket)
	}))

	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(tx repository.Repositories) error {
		old := string(domain.TicketStatusNew)
		if err := tx.Audit.Append(ctx, &domain.AuditEntry{
			TicketID: ticket.ID, Action: domain.AuditActionStatusChange,
			OldValue: &old, NewValue: "RESOLVED", PerformedBy: owner.ID, CreatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	entries, err := repos.Audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.ErrorIs(t, repos.Users.Delete(ctx, owner.ID), repository.ErrReferenced)

	_, err = repos.Tickets.GetByID(ctx, ticket.ID+100)
	require.ErrorIs(t, err, repository.ErrNotFound)

	status := domain.TicketStatusNew
	listed, err := repos.Tickets.List(ctx, repository.TicketFilter{CreatedBy: &owner.ID, Status: &status})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, ticket.ID, listed[0].ID)
}
