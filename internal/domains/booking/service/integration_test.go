package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"shop-backend/internal/config"
	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/domains/booking/repository"
	"shop-backend/internal/domains/booking/service"
	"shop-backend/internal/infrastructure/migration"
	"shop-backend/internal/infrastructure/telemetry"
	"shop-backend/internal/shared"
	pkgdb "shop-backend/pkg/database"
)

type syncRecorder struct {
	mu      sync.Mutex
	entries []auditModel.Entry
}

func (r *syncRecorder) Record(_ context.Context, e auditModel.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func setupPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migration.MigrateUp(dsn, migration.MigrationsSource()))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestIntegration_ConcurrentBookingsOnOneSlot(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()
	pool := setupPostgres(ctx, t)

	customerID := uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3)`,
		customerID, "booker@example.com", "Booker")
	require.NoError(t, err)

	calendar, err := model.NewCalendar(config.BookingConfig{
		Timezone: "UTC", OpenHour: 9, CloseHour: 17,
		MinNotice: 2 * time.Hour, CancelCutoff: 24 * time.Hour, SlotIntervalM: 60,
	})
	require.NoError(t, err)

	svc := service.NewBookingService(
		repository.NewPostgresRepository(pool),
		calendar,
		pkgdb.NewTxManager(pool),
		&syncRecorder{},
		telemetry.NewShopMetrics(),
		24*time.Hour,
	)

	day := time.Now().UTC().AddDate(0, 0, 3)
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
	actor := shared.Actor{ID: customerID.String(), Role: shared.RoleCustomer}

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, actor, model.CreateTicketRequest{
				Type:          model.TypeRepair,
				Title:         "Laptop does not boot",
				ScheduledDate: &start,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, model.ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	slots, err := svc.AvailableSlots(ctx, start.Format(model.DateLayout), string(model.TypeRepair))
	require.NoError(t, err)
	for _, s := range slots.Slots {
		assert.NotContains(t, []string{"09:00", "10:00", "11:00"}, s.Time)
	}
}
