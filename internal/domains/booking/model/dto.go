package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-backend/internal/shared/query"
)

// =====================================================
// CREATE
// =====================================================

type CreateTicketRequest struct {
	Type          ServiceType            `json:"type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	ScheduledDate *time.Time             `json:"scheduledDate"`
	Priority      Priority               `json:"priority"`
	DeviceInfo    map[string]interface{} `json:"deviceInfo"`
	IssueDetails  *string                `json:"issueDetails"`
}

func (r *CreateTicketRequest) Normalize() {
	r.Type = ServiceType(strings.ToUpper(strings.TrimSpace(string(r.Type))))
	r.Priority = Priority(strings.ToUpper(strings.TrimSpace(string(r.Priority))))
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	r.Title = strings.TrimSpace(r.Title)
}

func (r CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.By(validType)),
		validation.Field(&r.Title, validation.Required, validation.Length(3, 255)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.ScheduledDate, validation.Required),
		validation.Field(&r.Priority, validation.By(validPriority)),
		validation.Field(&r.IssueDetails, validation.Length(0, 5000)),
	)
}

// =====================================================
// ROLE-SCOPED UPDATES
// =====================================================

// Patch is the union of fields any role may change. Nil means unchanged.
type Patch struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	DeviceInfo    map[string]interface{} `json:"deviceInfo"`
	IssueDetails  *string                `json:"issueDetails"`
	ScheduledDate *time.Time             `json:"scheduledDate"`
	Status        *Status                `json:"status"`
	Priority      *Priority              `json:"priority"`
	AssignedTo    *uuid.UUID             `json:"assignedTo"`
	Resolution    *string                `json:"resolution"`
	ActualHours   *decimal.Decimal       `json:"actualHours"`
	Cost          *decimal.Decimal       `json:"cost"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DeviceInfo == nil && p.IssueDetails == nil &&
		p.ScheduledDate == nil && p.Status == nil && p.Priority == nil && p.AssignedTo == nil &&
		p.Resolution == nil && p.ActualHours == nil && p.Cost == nil
}

func (p *Patch) Normalize() {
	p.Status = upperStatus(p.Status)
	if p.Priority != nil {
		v := Priority(strings.ToUpper(strings.TrimSpace(string(*p.Priority))))
		p.Priority = &v
	}
}

func (p Patch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(3, 255)),
		validation.Field(&p.Description, validation.Length(0, 5000)),
		validation.Field(&p.IssueDetails, validation.Length(0, 5000)),
		validation.Field(&p.Status, validation.By(validStatus)),
		validation.Field(&p.Priority, validation.By(validPriority)),
		validation.Field(&p.Resolution, validation.Length(0, 5000)),
		validation.Field(&p.ActualHours, validation.By(nonNegative)),
		validation.Field(&p.Cost, validation.By(nonNegative)),
	)
}

// CustomerUpdateRequest is what a ticket owner may change.
type CustomerUpdateRequest struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	DeviceInfo    map[string]interface{} `json:"deviceInfo"`
	IssueDetails  *string                `json:"issueDetails"`
	ScheduledDate *time.Time             `json:"scheduledDate"`
}

func (r CustomerUpdateRequest) ToPatch() Patch {
	return Patch{
		Title:         r.Title,
		Description:   r.Description,
		DeviceInfo:    r.DeviceInfo,
		IssueDetails:  r.IssueDetails,
		ScheduledDate: r.ScheduledDate,
	}
}

// TechnicianUpdateRequest is what the assigned technician may change.
type TechnicianUpdateRequest struct {
	Status      *Status          `json:"status"`
	Resolution  *string          `json:"resolution"`
	ActualHours *decimal.Decimal `json:"actualHours"`
}

func (r TechnicianUpdateRequest) ToPatch() Patch {
	return Patch{
		Status:      r.Status,
		Resolution:  r.Resolution,
		ActualHours: r.ActualHours,
	}
}

// StaffUpdateRequest is the admin and manager update. Every field is writable.
type StaffUpdateRequest struct {
	CustomerUpdateRequest
	Status      *Status          `json:"status"`
	Priority    *Priority        `json:"priority"`
	AssignedTo  *uuid.UUID       `json:"assignedTo"`
	Resolution  *string          `json:"resolution"`
	ActualHours *decimal.Decimal `json:"actualHours"`
	Cost        *decimal.Decimal `json:"cost"`
}

func (r StaffUpdateRequest) ToPatch() Patch {
	p := r.CustomerUpdateRequest.ToPatch()
	p.Status = r.Status
	p.Priority = r.Priority
	p.AssignedTo = r.AssignedTo
	p.Resolution = r.Resolution
	p.ActualHours = r.ActualHours
	p.Cost = r.Cost
	return p
}

// =====================================================
// LISTS
// =====================================================

type ListTicketsFilter struct {
	Status     Status      `json:"status"`
	Type       ServiceType `json:"type"`
	Priority   Priority    `json:"priority"`
	AssignedTo *uuid.UUID  `json:"assignedTo"`
	UserID     *uuid.UUID  `json:"userId"`
	From       *time.Time  `json:"from"`
	To         *time.Time  `json:"to"`
	Search     string      `json:"search"`
	SortBy     string      `json:"sortBy"`
	SortOrder  string      `json:"sortOrder"`
	Page       query.Page  `json:"-"`
}

func (f ListTicketsFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.By(func(interface{}) error {
			if f.Status != "" && !f.Status.IsValid() {
				return errors.New("must be a valid service status")
			}
			return nil
		})),
		validation.Field(&f.Type, validation.By(func(interface{}) error {
			if f.Type != "" && !f.Type.IsValid() {
				return errors.New("must be a valid service type")
			}
			return nil
		})),
		validation.Field(&f.Priority, validation.By(func(interface{}) error {
			if f.Priority != "" && !f.Priority.IsValid() {
				return errors.New("must be a valid priority")
			}
			return nil
		})),
		validation.Field(&f.To, validation.By(func(interface{}) error {
			if f.From != nil && f.To != nil && f.To.Before(*f.From) {
				return errors.New("must not be before from")
			}
			return nil
		})),
	)
}

type ListTicketsResponse struct {
	Services   []Ticket         `json:"services"`
	Pagination query.Pagination `json:"pagination"`
}

// =====================================================
// BULK
// =====================================================

type BulkUpdateTicketsRequest struct {
	IDs        []string  `json:"ids"`
	Status     *Status   `json:"status"`
	Priority   *Priority `json:"priority"`
	AssignedTo *string   `json:"assignedTo"`
}

func (r *BulkUpdateTicketsRequest) Normalize() {
	r.Status = upperStatus(r.Status)
	if r.Priority != nil {
		p := Priority(strings.ToUpper(strings.TrimSpace(string(*r.Priority))))
		r.Priority = &p
	}
}

func (r BulkUpdateTicketsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100), validation.Each(is.UUID)),
		validation.Field(&r.Status, validation.By(validStatus)),
		validation.Field(&r.Priority, validation.By(validPriority)),
		validation.Field(&r.AssignedTo, validation.NilOrNotEmpty, is.UUID, validation.By(func(interface{}) error {
			if r.Status == nil && r.Priority == nil && r.AssignedTo == nil {
				return errors.New("at least one of status, priority, assignedTo is required")
			}
			return nil
		})),
	)
}

// SkippedTicket is a bulk row left untouched.
type SkippedTicket struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

type BulkUpdateResponse struct {
	Updated int64           `json:"updated"`
	Skipped []SkippedTicket `json:"skipped,omitempty"`
}

// =====================================================
// RULES
// =====================================================

func upperStatus(s *Status) *Status {
	if s == nil {
		return nil
	}
	v := Status(strings.ToUpper(strings.TrimSpace(string(*s))))
	return &v
}

func validType(v interface{}) error {
	if t, ok := v.(ServiceType); ok && !t.IsValid() {
		return errors.New("must be one of REPAIR, MAINTENANCE, INSTALLATION, CONSULTATION, DIAGNOSTIC, DATA_RECOVERY")
	}
	return nil
}

func validStatus(v interface{}) error {
	if s, ok := v.(*Status); ok && s != nil && !s.IsValid() {
		return errors.New("must be a valid service status")
	}
	return nil
}

func validPriority(v interface{}) error {
	var p Priority
	switch x := v.(type) {
	case Priority:
		p = x
	case *Priority:
		if x == nil {
			return nil
		}
		p = *x
	default:
		return nil
	}
	if !p.IsValid() {
		return errors.New("must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	return nil
}

func nonNegative(v interface{}) error {
	if d, ok := v.(*decimal.Decimal); ok && d != nil && d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
