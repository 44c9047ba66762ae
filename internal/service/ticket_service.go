package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/audit"
	"github.com/spec-kit/ticket-tracker/internal/authz"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.Store
	trail      *audit.Trail
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:      deps.Store,
		trail:      audit.NewTrail(deps.Store),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// CreateTicket files a new ticket owned by the actor. The status always
// starts at NEW.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput, actorID int64) (*domain.Ticket, error) {
	repos := s.store.Repositories()
	actor, err := s.resolveActor(ctx, repos, actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpCreateTicket, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	if err := validateTicketInput(input); err != nil {
		return nil, err
	}

	now := s.timestamp()
	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Category:    input.Category,
		Status:      domain.TicketStatusNew,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		LastUpdated: now,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		return tx.Tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, storageError(err)
	}
	ticket.Comments = []domain.Comment{}
	ticket.AuditEntries = []domain.AuditEntry{}

	s.logger.Info("ticket created", zap.Int64("ticket_id", ticket.ID), zap.Int64("created_by", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(*actor),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket to newStatus and records the transition.
// Setting the current status again is allowed and still audited.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID int64, newStatus domain.TicketStatus, actorID int64) (*domain.Ticket, error) {
	actor, err := s.resolveActor(ctx, s.store.Repositories(), actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpUpdateStatus, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	if !newStatus.Valid() {
		return nil, invalidEnum("status", string(newStatus))
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		current, err := loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		now := s.timestamp()
		oldStatus = current.Status
		current.Status = newStatus
		current.LastUpdated = now
		if err := tx.Tickets.Update(ctx, current); err != nil {
			return err
		}
		entry := audit.StatusChange(current.ID, oldStatus, newStatus, *actor, now)
		if err := s.trail.Append(ctx, tx, &entry); err != nil {
			return err
		}
		ticket, err = hydrate(ctx, tx, current)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Info("ticket status changed",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
		zap.Int64("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(*actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// AddComment appends a comment and its audit entry to a ticket.
func (s *TicketService) AddComment(ctx context.Context, ticketID int64, content string, actorID int64) (*domain.Ticket, error) {
	body := strings.TrimSpace(content)
	if body == "" {
		return nil, apperrors.NewValidationError("invalid comment", map[string]any{"fields": []string{"content"}})
	}
	actor, err := s.resolveActor(ctx, s.store.Repositories(), actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpAddComment, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}

	var (
		ticket  *domain.Ticket
		comment *domain.Comment
	)
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		current, err := loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		now := s.timestamp()
		comment = &domain.Comment{
			TicketID:  current.ID,
			Content:   body,
			CreatedBy: actor.ID,
			CreatedAt: now,
		}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		entry := audit.CommentAdded(current.ID, body, *actor, now)
		if err := s.trail.Append(ctx, tx, &entry); err != nil {
			return err
		}
		current.LastUpdated = now
		if err := tx.Tickets.Update(ctx, current); err != nil {
			return err
		}
		ticket, err = hydrate(ctx, tx, current)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Info("ticket comment added",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("comment_id", comment.ID),
		zap.Int64("actor_id", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(*actor),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			BodyPreview: audit.Preview(body),
		},
	})
	return ticket, nil
}

// GetUserTickets returns the tickets the actor created, oldest first.
func (s *TicketService) GetUserTickets(ctx context.Context, actorID int64) ([]domain.Ticket, error) {
	repos := s.store.Repositories()
	actor, err := s.resolveActor(ctx, repos, actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpListOwnTickets, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	return s.listTickets(ctx, repos, repository.TicketFilter{CreatedBy: &actor.ID})
}

// GetAllTickets returns every ticket. IT support only.
func (s *TicketService) GetAllTickets(ctx context.Context, actorID int64) ([]domain.Ticket, error) {
	repos := s.store.Repositories()
	actor, err := s.resolveActor(ctx, repos, actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpListAllTickets, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	return s.listTickets(ctx, repos, repository.TicketFilter{})
}

// GetTicketsByStatus returns every ticket in status, whoever owns it.
func (s *TicketService) GetTicketsByStatus(ctx context.Context, status domain.TicketStatus, actorID int64) ([]domain.Ticket, error) {
	repos := s.store.Repositories()
	actor, err := s.resolveActor(ctx, repos, actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpListByStatus, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	if !status.Valid() {
		return nil, invalidEnum("status", string(status))
	}
	return s.listTickets(ctx, repos, repository.TicketFilter{Status: &status})
}

// GetTicketByID returns one ticket to its creator or to IT support.
func (s *TicketService) GetTicketByID(ctx context.Context, ticketID, actorID int64) (*domain.Ticket, error) {
	repos := s.store.Repositories()
	actor, err := s.resolveActor(ctx, repos, actorID)
	if err != nil {
		return nil, err
	}
	ticket, err := loadTicket(ctx, repos, ticketID)
	if err != nil {
		return nil, storageError(err)
	}
	if decision := authz.Decide(*actor, authz.OpViewTicket, &ticket.CreatedBy); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	ticket, err = hydrate(ctx, repos, ticket)
	if err != nil {
		return nil, storageError(err)
	}
	return ticket, nil
}

// GetAuditLogs returns the entries of every ticket ordered by ticket id.
// IT support only.
func (s *TicketService) GetAuditLogs(ctx context.Context, actorID int64) ([]domain.AuditEntry, error) {
	actor, err := s.resolveActor(ctx, s.store.Repositories(), actorID)
	if err != nil {
		return nil, err
	}
	if decision := authz.Decide(*actor, authz.OpViewAuditLogs, nil); !decision.Allowed {
		return nil, apperrors.NewForbidden(decision.Reason)
	}
	entries, err := s.trail.All(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (s *TicketService) resolveActor(ctx context.Context, repos repository.Repositories, actorID int64) (*domain.User, error) {
	actor, err := repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, userLookupError(err, actorID)
	}
	return actor, nil
}

func (s *TicketService) listTickets(ctx context.Context, repos repository.Repositories, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := repos.Tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		hydrated, err := hydrate(ctx, repos, &tickets[i])
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		out = append(out, *hydrated)
	}
	return out, nil
}

func (s *TicketService) timestamp() time.Time {
	return s.now().UTC()
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, s.now, event)
}

func loadTicket(ctx context.Context, repos repository.Repositories, ticketID int64) (*domain.Ticket, error) {
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// hydrate attaches comments and audit entries to ticket.
func hydrate(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket) (*domain.Ticket, error) {
	comments, err := repos.Comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	entries, err := repos.Audit.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	ticket.Comments = comments
	ticket.AuditEntries = entries
	return ticket, nil
}

func validateTicketInput(input TicketCreateInput) error {
	var invalid []string
	if strings.TrimSpace(input.Title) == "" {
		invalid = append(invalid, "title")
	}
	if strings.TrimSpace(input.Description) == "" {
		invalid = append(invalid, "description")
	}
	if !input.Priority.Valid() {
		invalid = append(invalid, "priority")
	}
	if !input.Category.Valid() {
		invalid = append(invalid, "category")
	}
	if len(invalid) > 0 {
		return apperrors.NewValidationError("invalid ticket data", map[string]any{"fields": invalid})
	}
	return nil
}

func invalidEnum(field, value string) error {
	return apperrors.NewValidationError("invalid "+field, map[string]any{
		"fields": []string{field},
		"value":  value,
	})
}

// storageError passes domain errors through and wraps everything else.
func storageError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}
