// Package authz holds the role and ownership rules for ticket operations.
// Decide has no side effects and performs no I/O.
package authz

import "github.com/spec-kit/ticket-tracker/internal/domain"

// Operation names an action subject to authorization.
type Operation string

const (
	OpCreateTicket   Operation = "CREATE_TICKET"
	OpViewTicket     Operation = "VIEW_TICKET"
	OpListAllTickets Operation = "LIST_ALL_TICKETS"
	OpListOwnTickets Operation = "LIST_OWN_TICKETS"
	OpListByStatus   Operation = "LIST_BY_STATUS"
	OpUpdateStatus   Operation = "UPDATE_STATUS"
	OpAddComment     Operation = "ADD_COMMENT"
	OpViewAuditLogs  Operation = "VIEW_AUDIT_LOGS"
	OpManageUsers    Operation = "MANAGE_USERS"
)

const (
	ReasonViewTicket  = "not permitted to view this ticket"
	ReasonSupportOnly = "operation not permitted for non-IT-support users"
	reasonUnknownOp   = "unknown operation"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide evaluates op for actor. targetOwnerID is the creator of the ticket
// being read and is only consulted for OpViewTicket.
func Decide(actor domain.User, op Operation, targetOwnerID *int64) Decision {
	switch op {
	case OpCreateTicket, OpListOwnTickets, OpListByStatus:
		return allow()
	case OpViewTicket:
		if actor.IsSupport() {
			return allow()
		}
		if targetOwnerID != nil && *targetOwnerID == actor.ID {
			return allow()
		}
		return deny(ReasonViewTicket)
	case OpListAllTickets, OpUpdateStatus, OpAddComment, OpViewAuditLogs, OpManageUsers:
		if actor.IsSupport() {
			return allow()
		}
		return deny(ReasonSupportOnly)
	default:
		return deny(reasonUnknownOp)
	}
}
