package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ShopMetrics are the business counters exported on /metrics.
type ShopMetrics struct {
	ordersCreated    metric.Int64Counter
	ordersConfirmed  metric.Int64Counter
	paymentFailures  metric.Int64Counter
	compensations    metric.Int64Counter
	bookingsCreated  metric.Int64Counter
	bookingConflicts metric.Int64Counter
}

// NewShopMetrics builds instruments from the global meter provider.
// With no provider installed the instruments are no-ops.
func NewShopMetrics() *ShopMetrics {
	meter := otel.Meter("shop-backend")
	m := &ShopMetrics{}
	m.ordersCreated, _ = meter.Int64Counter("shop.orders.created", metric.WithDescription("Orders persisted at checkout"))
	m.ordersConfirmed, _ = meter.Int64Counter("shop.orders.confirmed", metric.WithDescription("Orders confirmed after payment"))
	m.paymentFailures, _ = meter.Int64Counter("shop.payments.failed", metric.WithDescription("Payment attempts reported as failed"))
	m.compensations, _ = meter.Int64Counter("shop.payments.compensated", metric.WithDescription("Captured payments refunded after a stock conflict"))
	m.bookingsCreated, _ = meter.Int64Counter("shop.bookings.created", metric.WithDescription("Service bookings created"))
	m.bookingConflicts, _ = meter.Int64Counter("shop.bookings.conflicts", metric.WithDescription("Booking attempts rejected for overlap"))
	return m
}

func (m *ShopMetrics) OrderCreated(ctx context.Context) {
	m.ordersCreated.Add(ctx, 1)
}

func (m *ShopMetrics) OrderConfirmed(ctx context.Context, gateway string) {
	m.ordersConfirmed.Add(ctx, 1, metric.WithAttributes(attribute.String("gateway", gateway)))
}

func (m *ShopMetrics) PaymentFailed(ctx context.Context, reason string) {
	m.paymentFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *ShopMetrics) PaymentCompensated(ctx context.Context, refunded bool) {
	m.compensations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("refunded", refunded)))
}

func (m *ShopMetrics) BookingCreated(ctx context.Context, serviceType string) {
	m.bookingsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("type", serviceType)))
}

func (m *ShopMetrics) BookingConflict(ctx context.Context) {
	m.bookingConflicts.Add(ctx, 1)
}
