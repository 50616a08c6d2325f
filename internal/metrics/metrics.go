package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Anas63666/Event-ticketing-system/pkg/telemetry"
)

var (
	// Booking counters
	TicketsIssued    *telemetry.Counter
	BookingsRejected *telemetry.Counter

	// Validation counters
	TicketsValidated *telemetry.Counter
	DuplicateScans   *telemetry.Counter
	InvalidScans     *telemetry.Counter

	// Histograms
	BookingDuration    *telemetry.Histogram
	ValidationDuration *telemetry.Histogram

	// Gauges
	TicketsOutstanding *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all ticketing metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	TicketsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_issued_total",
		Description: "Total number of tickets issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_rejected_total",
		Description: "Total number of rejected booking attempts by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsValidated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_validated_total",
		Description: "Total number of tickets validated at entry",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DuplicateScans, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "duplicate_scans_total",
		Description: "Total number of scans of already used tickets",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	InvalidScans, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "invalid_scans_total",
		Description: "Total number of scans of unknown or mismatched tickets",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "booking_duration_seconds",
		Description: "Booking request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	ValidationDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "validation_duration_seconds",
		Description: "Ticket validation duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	TicketsOutstanding, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "tickets_outstanding",
		Description: "Issued tickets not yet validated",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordTicketIssued records a successful booking
func RecordTicketIssued(ctx context.Context, eventID string, durationSeconds float64) {
	if TicketsIssued != nil {
		TicketsIssued.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if BookingDuration != nil {
		BookingDuration.Record(ctx, durationSeconds,
			attribute.String("event_id", eventID),
		)
	}
	if TicketsOutstanding != nil {
		TicketsOutstanding.Inc(ctx)
	}
}

// RecordBookingRejected records a rejected booking attempt
func RecordBookingRejected(ctx context.Context, eventID, reason string) {
	if BookingsRejected != nil {
		BookingsRejected.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordTicketValidated records a winning validation scan
func RecordTicketValidated(ctx context.Context, eventID string, durationSeconds float64) {
	if TicketsValidated != nil {
		TicketsValidated.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if ValidationDuration != nil {
		ValidationDuration.Record(ctx, durationSeconds,
			attribute.String("event_id", eventID),
		)
	}
	if TicketsOutstanding != nil {
		TicketsOutstanding.Dec(ctx)
	}
}

// RecordDuplicateScan records a scan of an already used ticket
func RecordDuplicateScan(ctx context.Context, eventID string) {
	if DuplicateScans != nil {
		DuplicateScans.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordInvalidScan records a scan that did not resolve to a usable ticket
func RecordInvalidScan(ctx context.Context, reason string) {
	if InvalidScans != nil {
		InvalidScans.Inc(ctx,
			attribute.String("reason", reason),
		)
	}
}
