package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/authz"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

func TestCreateTicket_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)

	created, err := f.tickets.CreateTicket(ctx, service.TicketCreateInput{
		Title:       "Server Down",
		Description: "Production server is not responding",
		Priority:    domain.TicketPriorityHigh,
		Category:    domain.TicketCategoryNetwork,
	}, employee.ID)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.TicketStatusNew, created.Status)
	assert.Equal(t, employee.ID, created.CreatedBy)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.LastUpdated)
	assert.Empty(t, created.Comments)
	assert.Empty(t, created.AuditEntries)

	fetched, err := f.tickets.GetTicketByID(ctx, created.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Server Down", fetched.Title)
	assert.Equal(t, "Production server is not responding", fetched.Description)
	assert.Equal(t, domain.TicketPriorityHigh, fetched.Priority)
	assert.Equal(t, domain.TicketCategoryNetwork, fetched.Category)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.CreatedAt, fetched.CreatedAt)

	assert.Contains(t, f.recorded.types(), events.EventTicketCreated)
}

func TestCreateTicket_ReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)
	employee := f.user(t, "alice", domain.RoleEmployee)

	_, err := f.tickets.CreateTicket(context.Background(), service.TicketCreateInput{
		Title:    "   ",
		Priority: domain.TicketPriority("URGENT"),
	}, employee.ID)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Equal(t, []string{"title", "description", "priority", "category"}, de.Details["fields"])

	tickets, err := f.tickets.GetUserTickets(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestCreateTicket_UnknownActor(t *testing.T) {
	f := newFixture(t)

	_, err := f.tickets.CreateTicket(context.Background(), service.TicketCreateInput{
		Title:       "t",
		Description: "d",
		Priority:    domain.TicketPriorityLow,
		Category:    domain.TicketCategoryOther,
	}, 42)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeNotFound, de.Code)
	assert.Equal(t, "user", de.Details["resource"])
}

func TestScenario_StatusChangeAndVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e1 := f.user(t, "e1", domain.RoleEmployee)
	s1 := f.user(t, "s1", domain.RoleITSupport)
	e2 := f.user(t, "e2", domain.RoleEmployee)

	t1 := f.ticket(t, e1, "printer jammed")
	assert.Equal(t, domain.TicketStatusNew, t1.Status)
	assert.Equal(t, e1.ID, t1.CreatedBy)

	updated, err := f.tickets.UpdateStatus(ctx, t1.ID, domain.TicketStatusInProgress, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Len(t, updated.AuditEntries, 1)
	entry := updated.AuditEntries[0]
	assert.Equal(t, domain.AuditActionStatusChange, entry.Action)
	require.NotNil(t, entry.OldValue)
	assert.Equal(t, "NEW", *entry.OldValue)
	assert.Equal(t, "IN_PROGRESS", entry.NewValue)
	assert.Equal(t, s1.ID, entry.PerformedBy)
	assert.True(t, updated.LastUpdated.After(t1.LastUpdated))

	_, err = f.tickets.GetTicketByID(ctx, t1.ID, e2.ID)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeForbidden, de.Code)
	assert.Equal(t, authz.ReasonViewTicket, de.Message)

	own, err := f.tickets.GetTicketByID(ctx, t1.ID, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, own.Status)

	_, err = f.tickets.GetTicketByID(ctx, t1.ID, s1.ID)
	require.NoError(t, err)
}

func TestUpdateStatus_EveryChangeAuditedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)
	support := f.user(t, "bob", domain.RoleITSupport)
	ticket := f.ticket(t, employee, "vpn")

	steps := []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusNew,
	}
	prev := domain.TicketStatusNew
	for i, next := range steps {
		updated, err := f.tickets.UpdateStatus(ctx, ticket.ID, next, support.ID)
		require.NoError(t, err)
		require.Len(t, updated.AuditEntries, i+1)
		last := updated.AuditEntries[i]
		assert.Equal(t, string(prev), *last.OldValue)
		assert.Equal(t, string(next), last.NewValue)
		prev = next
	}
	assert.Equal(t, domain.TicketStatusNew, prev)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)
	support := f.user(t, "bob", domain.RoleITSupport)
	ticket := f.ticket(t, employee, "vpn")

	_, err := f.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusResolved, employee.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatus("CLOSED"), support.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.tickets.UpdateStatus(ctx, 999, domain.TicketStatusResolved, support.ID)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeNotFound, de.Code)
	assert.Equal(t, "ticket", de.Details["resource"])

	fetched, err := f.tickets.GetTicketByID(ctx, ticket.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, fetched.Status)
	assert.Empty(t, fetched.AuditEntries)
}

func TestAddComment_RecordsCommentAndAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)
	support := f.user(t, "support", domain.RoleITSupport)
	ticket := f.ticket(t, employee, "laptop")

	updated, err := f.tickets.AddComment(ctx, ticket.ID, "  Please reboot  ", support.ID)
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "Please reboot", updated.Comments[0].Content)
	assert.Equal(t, support.ID, updated.Comments[0].CreatedBy)
	require.Len(t, updated.AuditEntries, 1)
	entry := updated.AuditEntries[0]
	assert.Equal(t, domain.AuditActionCommentAdded, entry.Action)
	assert.Nil(t, entry.OldValue)
	assert.Equal(t, `"Please reboot" - by support`, entry.NewValue)
	assert.True(t, updated.LastUpdated.After(ticket.LastUpdated))

	long := strings.Repeat("x", 150)
	updated, err = f.tickets.AddComment(ctx, ticket.ID, long, support.ID)
	require.NoError(t, err)
	require.Len(t, updated.Comments, 2)
	assert.Equal(t, long, updated.Comments[1].Content)
	assert.Equal(t, `"`+strings.Repeat("x", 97)+`..." - by support`, updated.AuditEntries[1].NewValue)

	assert.Contains(t, f.recorded.types(), events.EventTicketCommentAdded)
}

func TestAddComment_BlankContentChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)
	support := f.user(t, "support", domain.RoleITSupport)
	ticket := f.ticket(t, employee, "laptop")

	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := f.tickets.AddComment(ctx, ticket.ID, content, support.ID)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	}
	// Content is checked before the actor and ticket are resolved.
	_, err := f.tickets.AddComment(ctx, 999, " ", 999)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	fetched, err := f.tickets.GetTicketByID(ctx, ticket.ID, support.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Comments)
	assert.Empty(t, fetched.AuditEntries)
}

func TestAddComment_EmployeeForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)
	ticket := f.ticket(t, employee, "laptop")

	_, err := f.tickets.AddComment(ctx, ticket.ID, "any update?", employee.ID)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeForbidden, de.Code)
	assert.Equal(t, authz.ReasonSupportOnly, de.Message)

	fetched, err := f.tickets.GetTicketByID(ctx, ticket.ID, employee.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Comments)
	assert.Empty(t, fetched.AuditEntries)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", domain.RoleEmployee)
	carol := f.user(t, "carol", domain.RoleEmployee)
	support := f.user(t, "support", domain.RoleITSupport)

	a1 := f.ticket(t, alice, "a1")
	c1 := f.ticket(t, carol, "c1")
	a2 := f.ticket(t, alice, "a2")
	_, err := f.tickets.UpdateStatus(ctx, c1.ID, domain.TicketStatusResolved, support.ID)
	require.NoError(t, err)

	own, err := f.tickets.GetUserTickets(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, a1.ID, own[0].ID)
	assert.Equal(t, a2.ID, own[1].ID)

	all, err := f.tickets.GetAllTickets(ctx, support.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.tickets.GetAllTickets(ctx, alice.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	// Status listings are not scoped to the caller's own tickets.
	resolved, err := f.tickets.GetTicketsByStatus(ctx, domain.TicketStatusResolved, alice.ID)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, c1.ID, resolved[0].ID)
	assert.Len(t, resolved[0].AuditEntries, 1)

	fresh, err := f.tickets.GetTicketsByStatus(ctx, domain.TicketStatusNew, carol.ID)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	_, err = f.tickets.GetTicketsByStatus(ctx, domain.TicketStatus("open"), alice.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.tickets.GetUserTickets(ctx, 999)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestGetAuditLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	employee := f.user(t, "alice", domain.RoleEmployee)
	support := f.user(t, "support", domain.RoleITSupport)

	empty, err := f.tickets.GetAuditLogs(ctx, support.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := f.ticket(t, employee, "first")
	second := f.ticket(t, employee, "second")
	_, err = f.tickets.AddComment(ctx, second.ID, "looking", support.ID)
	require.NoError(t, err)
	_, err = f.tickets.UpdateStatus(ctx, first.ID, domain.TicketStatusInProgress, support.ID)
	require.NoError(t, err)
	_, err = f.tickets.UpdateStatus(ctx, second.ID, domain.TicketStatusResolved, support.ID)
	require.NoError(t, err)

	logs, err := f.tickets.GetAuditLogs(ctx, support.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, first.ID, logs[0].TicketID)
	assert.Equal(t, second.ID, logs[1].TicketID)
	assert.Equal(t, domain.AuditActionCommentAdded, logs[1].Action)
	assert.Equal(t, second.ID, logs[2].TicketID)
	assert.Equal(t, domain.AuditActionStatusChange, logs[2].Action)

	_, err = f.tickets.GetAuditLogs(ctx, employee.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
