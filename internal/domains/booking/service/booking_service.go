package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	auditModel "shop-backend/internal/domains/audit/model"
	auditService "shop-backend/internal/domains/audit/service"
	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/domains/booking/repository"
	"shop-backend/internal/infrastructure/telemetry"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/database"
	"shop-backend/pkg/logger"
)

var cancellableStatuses = []model.Status{model.StatusPending, model.StatusConfirmed}

type BookingService struct {
	repo         repository.Repository
	calendar     *model.Calendar
	tx           database.TxRunner
	audit        auditService.Recorder
	metrics      *telemetry.ShopMetrics
	cancelCutoff time.Duration
	now          func() time.Time
}

func NewBookingService(
	repo repository.Repository,
	calendar *model.Calendar,
	tx database.TxRunner,
	audit auditService.Recorder,
	metrics *telemetry.ShopMetrics,
	cancelCutoff time.Duration,
) ServiceInterface {
	return &BookingService{
		repo:         repo,
		calendar:     calendar,
		tx:           tx,
		audit:        audit,
		metrics:      metrics,
		cancelCutoff: cancelCutoff,
		now:          time.Now,
	}
}

// =====================================================
// AVAILABILITY
// =====================================================

func (s *BookingService) AvailableSlots(ctx context.Context, date, serviceType string) (*model.AvailableSlotsResponse, error) {
	fields := map[string]interface{}{}
	day, err := s.calendar.ParseDay(date)
	if err != nil {
		fields["date"] = "must be a date in YYYY-MM-DD format"
	}
	typ := model.ServiceType(serviceType)
	if !typ.IsValid() {
		fields["type"] = "must be a valid service type"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	from, to := s.calendar.BookingWindow(day)
	booked, err := s.repo.ListActiveBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &model.AvailableSlotsResponse{
		Date:          date,
		Type:          typ,
		Slots:         s.calendar.AvailableSlots(day, typ, booked, s.now()),
		BusinessHours: s.calendar.BusinessHours(),
	}, nil
}

// =====================================================
// CREATE / READ
// =====================================================

// Create books a slot. The day is locked so concurrent bookings of the same
// day re-check overlap one at a time.
func (s *BookingService) Create(ctx context.Context, actor shared.Actor, req model.CreateTicketRequest) (*model.Ticket, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	now := s.now()
	start := *req.ScheduledDate
	if !start.After(now) {
		return nil, apperror.Validation(map[string]interface{}{
			"scheduledDate": "must be in the future",
		})
	}

	id := uuid.New()
	ticket := &model.Ticket{
		ID:             id,
		TicketNumber:   utils.HumanNumber("SVC", now, id, 6),
		UserID:         userID,
		Type:           req.Type,
		Status:         model.StatusPending,
		Priority:       req.Priority,
		Title:          req.Title,
		Description:    req.Description,
		DeviceInfo:     req.DeviceInfo,
		IssueDetails:   req.IssueDetails,
		ScheduledDate:  start,
		EstimatedHours: req.Type.EstimatedHours(),
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.checkSlotTx(ctx, tx, ticket, now); err != nil {
			return err
		}
		return s.repo.CreateTx(ctx, tx, ticket)
	})
	if err != nil {
		if errors.Is(err, model.ErrSlotUnavailable) {
			s.metrics.BookingConflict(ctx)
		}
		return nil, err
	}

	s.metrics.BookingCreated(ctx, string(ticket.Type))
	s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionServiceCreated, auditModel.ResourceService,
		ticket.ID.String(), nil, map[string]interface{}{
			"ticketNumber":  ticket.TicketNumber,
			"type":          ticket.Type,
			"status":        ticket.Status,
			"scheduledDate": ticket.ScheduledDate,
		}))
	return ticket, nil
}

// checkSlotTx locks the ticket's day and validates its start against the other bookings.
func (s *BookingService) checkSlotTx(ctx context.Context, tx pgx.Tx, t *model.Ticket, now time.Time) error {
	day := s.calendar.DayOf(t.ScheduledDate)
	if err := s.repo.LockDayTx(ctx, tx, day.Format(model.DateLayout)); err != nil {
		return err
	}
	from, to := s.calendar.BookingWindow(day)
	booked, err := s.repo.ListActiveBetweenTx(ctx, tx, from, to, t.ID)
	if err != nil {
		return err
	}
	return s.calendar.ValidateStart(t.ScheduledDate, t.Type, booked, now)
}

// Get hides tickets the caller may not see behind NotFound.
func (s *BookingService) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.Ticket, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, t) {
		return nil, model.ErrTicketNotFound
	}
	return t, nil
}

// ListMine lists tickets assigned to a technician, or owned by anyone else.
func (s *BookingService) ListMine(ctx context.Context, actor shared.Actor, filter model.ListTicketsFilter) (*model.ListTicketsResponse, error) {
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}
	filter.UserID, filter.AssignedTo = nil, nil
	if actor.Role == shared.RoleTechnician {
		filter.AssignedTo = &userID
	} else {
		filter.UserID = &userID
	}
	return s.list(ctx, filter)
}

// =====================================================
// UPDATE / CANCEL
// =====================================================

// Update applies a role-scoped patch. The patch only carries the fields the
// caller's role may send.
func (s *BookingService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, patch model.Patch) (*model.Ticket, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperror.Validation(map[string]interface{}{
			"body": "at least one field is required",
		})
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	now := s.now()
	if patch.ScheduledDate != nil && !patch.ScheduledDate.After(now) {
		return nil, apperror.Validation(map[string]interface{}{
			"scheduledDate": "must be in the future",
		})
	}

	var (
		ticket *model.Ticket
		before map[string]interface{}
	)
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authorizeUpdate(actor.Role, userID, t); err != nil {
			return err
		}
		if err := checkTransition(actor.Role, t, patch.Status); err != nil {
			return err
		}

		before = trackedFields(t)
		if patch.ScheduledDate != nil && !patch.ScheduledDate.Equal(t.ScheduledDate) {
			if !actor.Role.IsPrivileged() && t.Status != model.StatusPending {
				return model.ErrRescheduleNotAllowed.WithDetails(map[string]interface{}{
					"currentStatus": t.Status,
				})
			}
			t.ScheduledDate = *patch.ScheduledDate
			if err := s.checkSlotTx(ctx, tx, t, now); err != nil {
				return err
			}
		}

		applyPatch(t, patch, now)
		if err := s.repo.UpdateTx(ctx, tx, t); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	after := trackedFields(ticket)
	if changed(before, after) {
		s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionServiceUpdated, auditModel.ResourceService,
			ticket.ID.String(), before, after))
	}
	return ticket, nil
}

// Cancel is refused inside the cutoff window and applies at most once.
func (s *BookingService) Cancel(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.Ticket, error) {
	if actor.Role == shared.RoleTechnician {
		return nil, model.ErrTechnicianCannotCancel
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsPrivileged() && t.UserID != userID {
		return nil, model.ErrTicketNotFound
	}
	if !t.Status.IsCancellable() {
		return nil, model.ErrNotCancellable.WithDetails(map[string]interface{}{
			"currentStatus": t.Status,
		})
	}

	now := s.now()
	if until := t.ScheduledDate.Sub(now); until < s.cancelCutoff {
		return nil, model.ErrCancelWindow.WithDetails(map[string]interface{}{
			"scheduledDate":     t.ScheduledDate,
			"hoursUntilService": int(until.Hours()),
		})
	}

	before := t.Status
	t.CancelledAt = &now
	if err := s.repo.Cancel(ctx, t, cancellableStatuses); err != nil {
		return nil, err
	}
	t.Status = model.StatusCancelled

	s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionServiceCancelled, auditModel.ResourceService,
		t.ID.String(),
		map[string]interface{}{"status": before},
		map[string]interface{}{"status": t.Status}))
	return t, nil
}

// =====================================================
// ADMIN
// =====================================================

func (s *BookingService) AdminList(ctx context.Context, filter model.ListTicketsFilter) (*model.ListTicketsResponse, error) {
	return s.list(ctx, filter)
}

// BulkUpdate applies one change to many tickets. Rows the terminal rule
// protects are skipped and reported.
func (s *BookingService) BulkUpdate(ctx context.Context, actor shared.Actor, req model.BulkUpdateTicketsRequest) (*model.BulkUpdateResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ids, err := utils.ParseUUIDs(req.IDs)
	if err != nil {
		return nil, apperror.ErrValidation.Wrap(err)
	}

	u := bulkUpdate(req)
	resp := &model.BulkUpdateResponse{}
	var touched []model.Ticket

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := s.repo.GetByIDsForUpdateTx(ctx, tx, ids)
		if err != nil {
			return err
		}

		found := make(map[uuid.UUID]bool, len(rows))
		var eligible []uuid.UUID
		for _, t := range rows {
			found[t.ID] = true
			if reason := bulkSkipReason(t, req.Status); reason != "" {
				resp.Skipped = append(resp.Skipped, model.SkippedTicket{ID: t.ID, Reason: reason})
				continue
			}
			eligible = append(eligible, t.ID)
			touched = append(touched, t)
		}
		for _, id := range ids {
			if !found[id] {
				resp.Skipped = append(resp.Skipped, model.SkippedTicket{ID: id, Reason: "not found"})
			}
		}
		if len(eligible) == 0 {
			return nil
		}

		resp.Updated, err = s.repo.BulkUpdateTx(ctx, tx, eligible, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	logSkipped(resp)
	newValues := bulkValues(req)
	for _, t := range touched {
		s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionServiceBulkUpdated, auditModel.ResourceService,
			t.ID.String(), trackedFields(&t), newValues))
	}
	return resp, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *BookingService) list(ctx context.Context, filter model.ListTicketsFilter) (*model.ListTicketsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	tickets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ListTicketsResponse{
		Services:   tickets,
		Pagination: query.NewPagination(filter.Page, total),
	}, nil
}

func canView(actor shared.Actor, t *model.Ticket) bool {
	if actor.Role.IsPrivileged() {
		return true
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return false
	}
	return t.UserID == userID || t.IsAssignedTo(userID)
}

func authorizeUpdate(role shared.Role, userID uuid.UUID, t *model.Ticket) error {
	switch {
	case role.IsPrivileged():
		return nil
	case role == shared.RoleTechnician:
		if !t.IsAssignedTo(userID) {
			return model.ErrNotAssigned
		}
		return nil
	default:
		if t.UserID != userID {
			return model.ErrTicketNotFound
		}
		return nil
	}
}

// checkTransition enforces the technician table first, then the terminal rule for everyone.
func checkTransition(role shared.Role, t *model.Ticket, next *model.Status) error {
	if next != nil && *next != t.Status {
		if role == shared.RoleTechnician && !t.Status.TechnicianCanTransitionTo(*next) {
			return model.ErrTransitionForbidden.WithDetails(map[string]interface{}{
				"currentStatus":      t.Status,
				"requestedStatus":    *next,
				"allowedTransitions": t.Status.TechnicianTransitions(),
			})
		}
		if !t.Status.StaffCanTransitionTo(*next) {
			return model.ErrTerminalState.WithDetails(map[string]interface{}{
				"currentStatus":      t.Status,
				"allowedTransitions": t.Status.StaffTransitions(),
			})
		}
		return nil
	}
	if t.Status.IsTerminal() {
		return model.ErrTerminalState.WithDetails(map[string]interface{}{
			"currentStatus":      t.Status,
			"allowedTransitions": t.Status.StaffTransitions(),
		})
	}
	return nil
}

func applyPatch(t *model.Ticket, p model.Patch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DeviceInfo != nil {
		t.DeviceInfo = p.DeviceInfo
	}
	if p.IssueDetails != nil {
		t.IssueDetails = p.IssueDetails
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = p.AssignedTo
	}
	if p.Resolution != nil {
		t.Resolution = p.Resolution
	}
	if p.ActualHours != nil {
		t.ActualHours = p.ActualHours
	}
	if p.Cost != nil {
		t.Cost = p.Cost
	}
	if p.Status != nil {
		t.Transition(*p.Status, now)
	}
}

// trackedFields are the columns whose changes are audited.
func trackedFields(t *model.Ticket) map[string]interface{} {
	var assigned interface{}
	if t.AssignedTo != nil {
		assigned = t.AssignedTo.String()
	}
	return map[string]interface{}{
		"status":        t.Status,
		"assignedTo":    assigned,
		"scheduledDate": t.ScheduledDate.UTC().Format(time.RFC3339),
	}
}

func changed(before, after map[string]interface{}) bool {
	for k, v := range after {
		if before[k] != v {
			return true
		}
	}
	return false
}

func bulkSkipReason(t model.Ticket, next *model.Status) string {
	if next != nil && *next != t.Status {
		if !t.Status.StaffCanTransitionTo(*next) {
			return "status " + string(t.Status) + " cannot change to " + string(*next)
		}
		return ""
	}
	if t.Status.IsTerminal() {
		return "status " + string(t.Status) + " is final"
	}
	return ""
}

func bulkUpdate(req model.BulkUpdateTicketsRequest) *query.Update {
	var u query.Update
	if req.Status != nil {
		u.Set("status", *req.Status)
		switch *req.Status {
		case model.StatusCompleted:
			u.SetExpr("completed_at", "COALESCE(completed_at, NOW())")
		case model.StatusCancelled:
			u.SetExpr("cancelled_at", "COALESCE(cancelled_at, NOW())")
		default:
			u.SetExpr("completed_at", "NULL")
		}
	}
	if req.Priority != nil {
		u.Set("priority", *req.Priority)
	}
	if req.AssignedTo != nil {
		u.Set("assigned_to", uuid.MustParse(*req.AssignedTo))
	}
	return &u
}

func bulkValues(req model.BulkUpdateTicketsRequest) map[string]interface{} {
	values := map[string]interface{}{}
	if req.Status != nil {
		values["status"] = *req.Status
	}
	if req.Priority != nil {
		values["priority"] = *req.Priority
	}
	if req.AssignedTo != nil {
		values["assignedTo"] = *req.AssignedTo
	}
	return values
}

func logSkipped(resp *model.BulkUpdateResponse) {
	if len(resp.Skipped) == 0 {
		return
	}
	logger.Info("Bulk service update skipped rows", map[string]interface{}{
		"skipped": len(resp.Skipped),
	})
}
