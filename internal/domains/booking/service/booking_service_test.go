package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/config"
	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/infrastructure/telemetry"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
)

var (
	testNow = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	testDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	repo  *mockRepo
	audit *recorderStub
	svc   *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cal, err := model.NewCalendar(config.BookingConfig{
		Timezone: "UTC", OpenHour: 9, CloseHour: 17,
		MinNotice: 2 * time.Hour, CancelCutoff: 24 * time.Hour, SlotIntervalM: 60,
	})
	require.NoError(t, err)

	f := &fixture{repo: &mockRepo{}, audit: &recorderStub{}}
	f.svc = NewBookingService(f.repo, cal, txStub{}, f.audit, telemetry.NewShopMetrics(), 24*time.Hour).(*BookingService)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func actorOf(role shared.Role) (shared.Actor, uuid.UUID) {
	id := uuid.New()
	return shared.Actor{ID: id.String(), Role: role}, id
}

func clock(hour, minute int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func ptr[T any](v T) *T { return &v }

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)
	booked := []model.Interval{model.NewInterval(clock(9, 30), model.TypeMaintenance)}
	f.repo.On("ListActiveBetween", mock.Anything, testDay.Add(-2*time.Hour), testDay.AddDate(0, 0, 1)).
		Return(booked, nil)

	resp, err := f.svc.AvailableSlots(context.Background(), "2026-03-10", "REPAIR")
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, "11:00", resp.Slots[0].Time)
	assert.Equal(t, model.TypeRepair, resp.Type)
	assert.Equal(t, "09:00", resp.BusinessHours.Start)

	t.Run("rejects bad input before querying", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.AvailableSlots(context.Background(), "tomorrow", "WASH")

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Details, "date")
		assert.Contains(t, appErr.Details, "type")
		f.repo.AssertNotCalled(t, "ListActiveBetween", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	existing := []model.Interval{model.NewInterval(clock(9, 30), model.TypeMaintenance)}

	t.Run("books a free slot", func(t *testing.T) {
		f := newFixture(t)
		actor, userID := actorOf(shared.RoleCustomer)

		f.repo.On("LockDayTx", ctx, mock.Anything, "2026-03-10").Return(nil)
		f.repo.On("ListActiveBetweenTx", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(existing, nil)
		f.repo.On("CreateTx", ctx, mock.Anything, mock.AnythingOfType("*model.Ticket")).Return(nil)

		ticket, err := f.svc.Create(ctx, actor, model.CreateTicketRequest{
			Type: "repair", Title: "Laptop will not boot", ScheduledDate: ptr(clock(11, 0)),
		})
		require.NoError(t, err)

		assert.Equal(t, userID, ticket.UserID)
		assert.Equal(t, model.StatusPending, ticket.Status)
		assert.Equal(t, model.PriorityMedium, ticket.Priority)
		assert.Regexp(t, `^SVC-20260309-[0-9A-F]{6}$`, ticket.TicketNumber)
		assert.Equal(t, "2", ticket.EstimatedHours.String())
		require.Len(t, f.audit.entries, 1)
		assert.Equal(t, auditModel.ActionServiceCreated, f.audit.entries[0].Action)
	})

	t.Run("overlapping slot is a conflict", func(t *testing.T) {
		f := newFixture(t)
		actor, _ := actorOf(shared.RoleCustomer)

		f.repo.On("LockDayTx", ctx, mock.Anything, "2026-03-10").Return(nil)
		f.repo.On("ListActiveBetweenTx", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(existing, nil)

		_, err := f.svc.Create(ctx, actor, model.CreateTicketRequest{
			Type: model.TypeRepair, Title: "Laptop will not boot", ScheduledDate: ptr(clock(10, 0)),
		})
		assert.ErrorIs(t, err, model.ErrSlotUnavailable)
		f.repo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.audit.entries)
	})

	t.Run("past date is a validation error", func(t *testing.T) {
		f := newFixture(t)
		actor, _ := actorOf(shared.RoleCustomer)

		_, err := f.svc.Create(ctx, actor, model.CreateTicketRequest{
			Type: model.TypeRepair, Title: "Laptop will not boot", ScheduledDate: ptr(testNow.Add(-time.Hour)),
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
		assert.Equal(t, "must be in the future", appErr.Details["scheduledDate"])
		f.repo.AssertNotCalled(t, "LockDayTx", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	owner, ownerID := actorOf(shared.RoleCustomer)
	admin, _ := actorOf(shared.RoleAdmin)
	tech, _ := actorOf(shared.RoleTechnician)
	stranger, _ := actorOf(shared.RoleCustomer)

	tests := []struct {
		name      string
		actor     shared.Actor
		status    model.Status
		until     time.Duration
		cancelErr error
		wantErr   error
	}{
		{name: "owner outside the cutoff", actor: owner, status: model.StatusPending, until: 48 * time.Hour},
		{name: "admin on any ticket", actor: admin, status: model.StatusConfirmed, until: 30 * time.Hour},
		{name: "inside the cutoff", actor: owner, status: model.StatusPending, until: 23 * time.Hour, wantErr: model.ErrCancelWindow},
		{name: "already cancelled", actor: owner, status: model.StatusCancelled, until: 48 * time.Hour, wantErr: model.ErrNotCancellable},
		{name: "in progress", actor: admin, status: model.StatusInProgress, until: 48 * time.Hour, wantErr: model.ErrNotCancellable},
		{name: "lost the race to another cancel", actor: owner, status: model.StatusPending, until: 48 * time.Hour,
			cancelErr: model.ErrNotCancellable, wantErr: model.ErrNotCancellable},
		{name: "technician", actor: tech, status: model.StatusPending, until: 48 * time.Hour, wantErr: model.ErrTechnicianCannotCancel},
		{name: "someone else's ticket", actor: stranger, status: model.StatusPending, until: 48 * time.Hour, wantErr: model.ErrTicketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ticket := &model.Ticket{ID: uuid.New(), UserID: ownerID, Status: tt.status, ScheduledDate: testNow.Add(tt.until)}
			f.repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)
			f.repo.On("Cancel", ctx, ticket, cancellableStatuses).Return(tt.cancelErr)

			got, err := f.svc.Cancel(ctx, tt.actor, ticket.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.audit.entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, got.Status)
			assert.Equal(t, testNow, *got.CancelledAt)
			require.Len(t, f.audit.entries, 1)
			assert.Equal(t, auditModel.ActionServiceCancelled, f.audit.entries[0].Action)
		})
	}

	t.Run("second cancel is a conflict", func(t *testing.T) {
		f := newFixture(t)
		ticket := &model.Ticket{ID: uuid.New(), UserID: ownerID, Status: model.StatusPending, ScheduledDate: testNow.Add(72 * time.Hour)}
		f.repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)
		f.repo.On("Cancel", ctx, ticket, cancellableStatuses).Return(nil).Once()

		_, err := f.svc.Cancel(ctx, owner, ticket.ID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, owner, ticket.ID)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, model.ErrCodeNotCancellable, appErr.Code)
		f.repo.AssertNumberOfCalls(t, "Cancel", 1)
	})
}

func TestUpdate_Technician(t *testing.T) {
	ctx := context.Background()
	tech, techID := actorOf(shared.RoleTechnician)

	t.Run("transition outside the table lists the allowed states", func(t *testing.T) {
		f := newFixture(t)
		ticket := &model.Ticket{ID: uuid.New(), AssignedTo: &techID, Status: model.StatusPending}
		f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := f.svc.Update(ctx, tech, ticket.ID, model.Patch{Status: ptr(model.StatusCompleted)})

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindAuthorization, appErr.Kind)
		assert.Equal(t, []model.Status{model.StatusConfirmed, model.StatusInProgress},
			appErr.Details["allowedTransitions"])
		f.repo.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cannot cancel through patch", func(t *testing.T) {
		for _, from := range []model.Status{model.StatusPending, model.StatusConfirmed} {
			f := newFixture(t)
			ticket := &model.Ticket{ID: uuid.New(), AssignedTo: &techID, Status: from, ScheduledDate: testNow.Add(3 * time.Hour)}
			f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)

			_, err := f.svc.Update(ctx, tech, ticket.ID, model.Patch{Status: ptr(model.StatusCancelled)})

			require.ErrorIs(t, err, model.ErrTransitionForbidden, from)
			appErr, _ := apperror.As(err)
			assert.Equal(t, apperror.KindAuthorization, appErr.Kind)
			assert.NotContains(t, appErr.Details["allowedTransitions"], model.StatusCancelled)
			assert.Equal(t, from, ticket.Status)
			f.repo.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("not the assignee", func(t *testing.T) {
		f := newFixture(t)
		ticket := &model.Ticket{ID: uuid.New(), Status: model.StatusConfirmed}
		f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := f.svc.Update(ctx, tech, ticket.ID, model.Patch{Status: ptr(model.StatusInProgress)})
		assert.ErrorIs(t, err, model.ErrNotAssigned)
	})

	t.Run("completes work", func(t *testing.T) {
		f := newFixture(t)
		ticket := &model.Ticket{ID: uuid.New(), AssignedTo: &techID, Status: model.StatusInProgress, ScheduledDate: clock(11, 0)}
		f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)
		f.repo.On("UpdateTx", ctx, mock.Anything, ticket).Return(nil)

		got, err := f.svc.Update(ctx, tech, ticket.ID, model.Patch{
			Status:     ptr(model.StatusCompleted),
			Resolution: ptr("Replaced the power board"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)
		assert.Equal(t, testNow, *got.CompletedAt)
		require.Len(t, f.audit.entries, 1)
		assert.Equal(t, model.StatusInProgress, f.audit.entries[0].OldValues["status"])
	})
}

func TestUpdate_Staff(t *testing.T) {
	ctx := context.Background()
	admin, _ := actorOf(shared.RoleAdmin)
	manager, _ := actorOf(shared.RoleManager)
	completedAt := testNow.Add(-time.Hour)

	tests := []struct {
		name    string
		actor   shared.Actor
		from    model.Status
		to      model.Status
		wantErr error
	}{
		{"admin skips ahead", admin, model.StatusPending, model.StatusCompleted, nil},
		{"manager puts on hold", manager, model.StatusPending, model.StatusOnHold, nil},
		{"reopen completed", admin, model.StatusCompleted, model.StatusInProgress, nil},
		{"completed back to pending", admin, model.StatusCompleted, model.StatusPending, model.ErrTerminalState},
		{"revive cancelled", manager, model.StatusCancelled, model.StatusConfirmed, model.ErrTerminalState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ticket := &model.Ticket{ID: uuid.New(), Status: tt.from, ScheduledDate: clock(11, 0)}
			if tt.from == model.StatusCompleted {
				ticket.CompletedAt = &completedAt
			}
			f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)
			f.repo.On("UpdateTx", ctx, mock.Anything, ticket).Return(nil)

			got, err := f.svc.Update(ctx, tt.actor, ticket.ID, model.Patch{Status: ptr(tt.to)})
			if tt.wantErr != nil {
				appErr, ok := apperror.As(err)
				require.True(t, ok)
				assert.Equal(t, apperror.KindStateConflict, appErr.Kind)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			if tt.from == model.StatusCompleted {
				assert.Nil(t, got.CompletedAt)
			}
		})
	}

	t.Run("assigns a technician", func(t *testing.T) {
		f := newFixture(t)
		techID := uuid.New()
		ticket := &model.Ticket{ID: uuid.New(), Status: model.StatusPending, ScheduledDate: clock(11, 0)}
		f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)
		f.repo.On("UpdateTx", ctx, mock.Anything, ticket).Return(nil)

		got, err := f.svc.Update(ctx, admin, ticket.ID, model.Patch{AssignedTo: &techID, Priority: ptr(model.Priority("urgent"))})
		require.NoError(t, err)
		assert.True(t, got.IsAssignedTo(techID))
		assert.Equal(t, model.PriorityUrgent, got.Priority)
		require.Len(t, f.audit.entries, 1)
		assert.Equal(t, techID.String(), f.audit.entries[0].NewValues["assignedTo"])
	})
}

func TestUpdate_Customer(t *testing.T) {
	ctx := context.Background()
	owner, ownerID := actorOf(shared.RoleCustomer)

	t.Run("edits details without audit", func(t *testing.T) {
		f := newFixture(t)
		ticket := &model.Ticket{ID: uuid.New(), UserID: ownerID, Status: model.StatusConfirmed, ScheduledDate: clock(11, 0)}
		f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)
		f.repo.On("UpdateTx", ctx, mock.Anything, ticket).Return(nil)

		got, err := f.svc.Update(ctx, owner, ticket.ID, model.Patch{Title: ptr("Cracked screen and battery")})
		require.NoError(t, err)
		assert.Equal(t, "Cracked screen and battery", got.Title)
		assert.Empty(t, f.audit.entries)
	})

	t.Run("reschedules a pending ticket", func(t *testing.T) {
		f := newFixture(t)
		ticket := &model.Ticket{ID: uuid.New(), UserID: ownerID, Type: model.TypeDiagnostic, Status: model.StatusPending, ScheduledDate: clock(11, 0)}
		f.repo.On("GetForUpdateTx", ctx, mock.Anything, ticket.ID).Return(ticket, nil)
		f.repo.On("LockDayTx", ctx, mock.Anything, "2026-03-10").Return(nil)
		f.repo.On("ListActiveBetweenTx", ctx, mock.Anything, mock.Anything, mock.Anything, ticket.ID).Return(nil, nil)
		f.repo.On("UpdateTx", ctx, mock.Anything, ticket).Return(nil)

		got, err := f.svc.Update(ctx, owner, ticket.ID, model.Patch{ScheduledDate: ptr(clock(15, 0))})
		require.NoError(t, err)
		assert.Equal(t, clock(15, 0), got.ScheduledDate)
		require.Len(t, f.audit.entries, 1)
	})

	tests := []struct {
		name    string
		ticket  *model.Ticket
		patch   model.Patch
		wantErr error
	}{
		{
			name:    "reschedule after confirmation",
			ticket:  &model.Ticket{UserID: ownerID, Status: model.StatusConfirmed, ScheduledDate: clock(11, 0)},
			patch:   model.Patch{ScheduledDate: ptr(clock(14, 0))},
			wantErr: model.ErrRescheduleNotAllowed,
		},
		{
			name:    "edit a completed ticket",
			ticket:  &model.Ticket{UserID: ownerID, Status: model.StatusCompleted},
			patch:   model.Patch{Title: ptr("New title")},
			wantErr: model.ErrTerminalState,
		},
		{
			name:    "someone else's ticket",
			ticket:  &model.Ticket{UserID: uuid.New(), Status: model.StatusPending},
			patch:   model.Patch{Title: ptr("New title")},
			wantErr: model.ErrTicketNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.ticket.ID = uuid.New()
			f.repo.On("GetForUpdateTx", ctx, mock.Anything, tt.ticket.ID).Return(tt.ticket, nil)

			_, err := f.svc.Update(ctx, owner, tt.ticket.ID, tt.patch)
			assert.ErrorIs(t, err, tt.wantErr)
			f.repo.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("empty patch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Update(ctx, owner, uuid.New(), model.Patch{})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()

	t.Run("technician sees assigned tickets", func(t *testing.T) {
		f := newFixture(t)
		tech, techID := actorOf(shared.RoleTechnician)
		f.repo.On("List", ctx, mock.MatchedBy(func(fl model.ListTicketsFilter) bool {
			return fl.AssignedTo != nil && *fl.AssignedTo == techID && fl.UserID == nil
		})).Return([]model.Ticket{}, int64(0), nil)

		_, err := f.svc.ListMine(ctx, tech, model.ListTicketsFilter{Page: query.Page{Page: 1, Limit: 20}})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("customer sees own tickets", func(t *testing.T) {
		f := newFixture(t)
		owner, ownerID := actorOf(shared.RoleCustomer)
		other := uuid.New()
		f.repo.On("List", ctx, mock.MatchedBy(func(fl model.ListTicketsFilter) bool {
			return fl.UserID != nil && *fl.UserID == ownerID && fl.AssignedTo == nil
		})).Return([]model.Ticket{{ID: uuid.New(), UserID: ownerID}}, int64(1), nil)

		resp, err := f.svc.ListMine(ctx, owner, model.ListTicketsFilter{AssignedTo: &other, Page: query.Page{Page: 1, Limit: 20}})
		require.NoError(t, err)
		assert.Len(t, resp.Services, 1)
		assert.Equal(t, int64(1), resp.Pagination.Total)
	})
}

func TestGet_Visibility(t *testing.T) {
	ctx := context.Background()
	owner, ownerID := actorOf(shared.RoleCustomer)
	tech, techID := actorOf(shared.RoleTechnician)
	manager, _ := actorOf(shared.RoleManager)
	stranger, _ := actorOf(shared.RoleCustomer)

	ticket := &model.Ticket{ID: uuid.New(), UserID: ownerID, AssignedTo: &techID}

	for _, tc := range []struct {
		name    string
		actor   shared.Actor
		visible bool
	}{
		{"owner", owner, true},
		{"assignee", tech, true},
		{"manager", manager, true},
		{"stranger", stranger, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

			_, err := f.svc.Get(ctx, tc.actor, ticket.ID)
			if tc.visible {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrTicketNotFound)
			}
		})
	}
}

func TestBulkUpdate(t *testing.T) {
	ctx := context.Background()
	admin, _ := actorOf(shared.RoleAdmin)
	f := newFixture(t)

	pending := model.Ticket{ID: uuid.New(), Status: model.StatusPending}
	completed := model.Ticket{ID: uuid.New(), Status: model.StatusCompleted}
	cancelled := model.Ticket{ID: uuid.New(), Status: model.StatusCancelled}
	missing := uuid.New()

	ids := []uuid.UUID{pending.ID, completed.ID, cancelled.ID, missing}
	f.repo.On("GetByIDsForUpdateTx", ctx, mock.Anything, ids).Return([]model.Ticket{pending, completed, cancelled}, nil)
	f.repo.On("BulkUpdateTx", ctx, mock.Anything, []uuid.UUID{pending.ID, completed.ID},
		mock.MatchedBy(func(u *query.Update) bool {
			cols := u.Columns()
			return len(cols) == 2 && cols[0] == "status" && cols[1] == "completed_at"
		})).Return(int64(2), nil)

	resp, err := f.svc.BulkUpdate(ctx, admin, model.BulkUpdateTicketsRequest{
		IDs:    []string{pending.ID.String(), completed.ID.String(), cancelled.ID.String(), missing.String()},
		Status: ptr(model.Status("in_progress")),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Updated)
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, cancelled.ID, resp.Skipped[0].ID)
	assert.Equal(t, missing, resp.Skipped[1].ID)
	assert.Equal(t, "not found", resp.Skipped[1].Reason)

	require.Len(t, f.audit.entries, 2)
	for _, e := range f.audit.entries {
		assert.Equal(t, auditModel.ActionServiceBulkUpdated, e.Action)
		assert.Equal(t, model.StatusInProgress, e.NewValues["status"])
	}
}
