package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory groups tickets by problem area.
type TicketCategory string

const (
	TicketCategoryNetwork  TicketCategory = "NETWORK"
	TicketCategoryHardware TicketCategory = "HARDWARE"
	TicketCategorySoftware TicketCategory = "SOFTWARE"
	TicketCategoryOther    TicketCategory = "OTHER"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryNetwork, TicketCategoryHardware, TicketCategorySoftware, TicketCategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Comments and AuditEntries are
// stored separately and attached when the ticket is read.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Priority     TicketPriority
	Category     TicketCategory
	Status       TicketStatus
	CreatedBy    int64
	CreatedAt    time.Time
	LastUpdated  time.Time
	Comments     []Comment
	AuditEntries []AuditEntry
}
