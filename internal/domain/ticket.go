package domain

import "time"

// Status enumerates lifecycle states for tickets.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusEscalated  Status = "escalated"
)

// Severity enumerates ticket urgency.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether the status is one of the enumerated values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusEscalated:
		return true
	}
	return false
}

// Valid reports whether the severity is one of the enumerated values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Statuses lists the allowed status values.
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusResolved, StatusEscalated}
}

// Severities lists the allowed severity values.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Ticket is the persisted support-request entity.
type Ticket struct {
	ID                    int64
	Title                 string
	Description           *string
	Severity              Severity
	Status                Status
	CustomerID            *int64
	AssignedTo            *string
	ResolutionTimeMinutes *int32
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TicketPatch is a sparse partial update; nil fields are left untouched.
type TicketPatch struct {
	Status                *Status
	Severity              *Severity
	AssignedTo            *string
	ResolutionTimeMinutes *int32
}

// Empty reports whether the patch carries no recognized field.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.Severity == nil && p.AssignedTo == nil && p.ResolutionTimeMinutes == nil
}
