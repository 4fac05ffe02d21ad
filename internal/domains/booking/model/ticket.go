package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// SERVICE TYPES
// =====================================================

type ServiceType string

const (
	TypeRepair       ServiceType = "REPAIR"
	TypeMaintenance  ServiceType = "MAINTENANCE"
	TypeInstallation ServiceType = "INSTALLATION"
	TypeConsultation ServiceType = "CONSULTATION"
	TypeDiagnostic   ServiceType = "DIAGNOSTIC"
	TypeDataRecovery ServiceType = "DATA_RECOVERY"
)

var durations = map[ServiceType]time.Duration{
	TypeRepair:       120 * time.Minute,
	TypeMaintenance:  90 * time.Minute,
	TypeInstallation: 90 * time.Minute,
	TypeDiagnostic:   60 * time.Minute,
	TypeConsultation: 45 * time.Minute,
	TypeDataRecovery: 120 * time.Minute,
}

// MaxDuration is the longest appointment of any type.
const MaxDuration = 120 * time.Minute

func (t ServiceType) IsValid() bool {
	_, ok := durations[t]
	return ok
}

// Duration is the fixed appointment length of the type.
func (t ServiceType) Duration() time.Duration {
	return durations[t]
}

// EstimatedHours converts the type's duration to hours.
func (t ServiceType) EstimatedHours() decimal.Decimal {
	return decimal.NewFromInt(int64(t.Duration() / time.Minute)).Div(decimal.NewFromInt(60)).Round(2)
}

// =====================================================
// STATUS
// =====================================================

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOnHold     Status = "ON_HOLD"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// technicianTransitions is what an assigned technician may do.
var technicianTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusInProgress},
	StatusConfirmed:  {StatusInProgress, StatusOnHold},
	StatusInProgress: {StatusCompleted, StatusOnHold},
	StatusOnHold:     {StatusConfirmed, StatusInProgress},
	StatusCompleted:  {StatusInProgress},
	StatusCancelled:  {},
}

var allStatuses = []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled}

func (s Status) IsValid() bool {
	_, ok := technicianTransitions[s]
	return ok
}

// IsTerminal reports whether the ticket is closed for edits.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsCancellable reports whether a customer may still cancel.
func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// TechnicianTransitions lists the next states a technician may set.
func (s Status) TechnicianTransitions() []Status {
	return append([]Status{}, technicianTransitions[s]...)
}

func (s Status) TechnicianCanTransitionTo(next Status) bool {
	for _, allowed := range technicianTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StaffTransitions lists the next states an admin or manager may set.
// Terminal states only allow reopening a completed ticket.
func (s Status) StaffTransitions() []Status {
	switch s {
	case StatusCancelled:
		return []Status{}
	case StatusCompleted:
		return []Status{StatusInProgress}
	}
	out := make([]Status, 0, len(allStatuses)-1)
	for _, st := range allStatuses {
		if st != s {
			out = append(out, st)
		}
	}
	return out
}

func (s Status) StaffCanTransitionTo(next Status) bool {
	if next == s {
		return true
	}
	for _, allowed := range s.StaffTransitions() {
		if allowed == next {
			return true
		}
	}
	return false
}

// =====================================================
// PRIORITY
// =====================================================

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// =====================================================
// TICKET
// =====================================================

type Ticket struct {
	ID             uuid.UUID              `json:"id"`
	TicketNumber   string                 `json:"ticketNumber"`
	UserID         uuid.UUID              `json:"userId"`
	AssignedTo     *uuid.UUID             `json:"assignedTo,omitempty"`
	Type           ServiceType            `json:"type"`
	Status         Status                 `json:"status"`
	Priority       Priority               `json:"priority"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	DeviceInfo     map[string]interface{} `json:"deviceInfo,omitempty"`
	IssueDetails   *string                `json:"issueDetails,omitempty"`
	Resolution     *string                `json:"resolution,omitempty"`
	ScheduledDate  time.Time              `json:"scheduledDate"`
	EstimatedHours decimal.Decimal        `json:"estimatedHours"`
	ActualHours    *decimal.Decimal       `json:"actualHours,omitempty"`
	Cost           *decimal.Decimal       `json:"cost,omitempty"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	CancelledAt    *time.Time             `json:"cancelledAt,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// Interval is the half-open time span the ticket occupies.
func (t *Ticket) Interval() Interval {
	return Interval{Start: t.ScheduledDate, End: t.ScheduledDate.Add(t.Type.Duration())}
}

// Transition moves the ticket to next and maintains the lifecycle timestamps.
func (t *Ticket) Transition(next Status, at time.Time) {
	if next == t.Status {
		return
	}
	t.Status = next
	switch next {
	case StatusCompleted:
		t.CompletedAt = &at
	case StatusCancelled:
		t.CancelledAt = &at
	default:
		t.CompletedAt = nil
	}
}

// IsAssignedTo reports whether userID is the ticket's technician.
func (t *Ticket) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
