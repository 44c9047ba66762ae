package domain

import "time"

// Comment is an append-only note on a ticket thread.
type Comment struct {
	ID        int64
	TicketID  int64
	Content   string
	CreatedBy int64
	CreatedAt time.Time
}
