package bumper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/bumper/internal/domain"
)

// Operation names used as metric labels and log attributes.
const (
	opSearch     = "search"
	opFixes      = "fixes"
	opFetchFixes = "fetch_fixes"
)

// Outcome label values of bumper_sdk_report_operations_total.
const (
	outcomeOK               = "ok"
	outcomeMalformedParams  = "malformed_params"
	outcomeInvalidResult    = "invalid_result"
	outcomeTransportFailure = "transport_failure"
	outcomeFixesAttached    = "fixes_attached"
	outcomeCanceled         = "canceled"
	outcomeError            = "error"
)

// sdkMetrics holds the prometheus metrics of report operations.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	reports    *prometheus.HistogramVec
	hunks      prometheus.Histogram
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bumper",
			Subsystem: "sdk",
			Name:      "report_operations_total",
			Help:      "Report searches and fix lookups by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bumper",
			Subsystem: "sdk",
			Name:      "report_operation_duration_seconds",
			Help:      "Wall time of report operations, fix fan-out included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		reports: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bumper",
			Subsystem: "sdk",
			Name:      "reports_per_operation",
			Help:      "Reports returned or filled by a successful operation.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"operation"}),
		hunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bumper",
			Subsystem: "sdk",
			Name:      "fix_hunks",
			Help:      "Hunks attached to a report by a fix lookup.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.reports); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.hunks); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("bumper: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("bumper: register metric: %w", err)
	}
	return nil
}

// outcome maps an operation error to its metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrMalformedParams):
		return outcomeMalformedParams
	case errors.Is(err, domain.ErrInvalidResult):
		return outcomeInvalidResult
	case errors.Is(err, domain.ErrFixesAttached):
		return outcomeFixesAttached
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	case errors.Is(err, domain.ErrTransportFailure):
		return outcomeTransportFailure
	default:
		return outcomeError
	}
}

// observer records report operations to slog and prometheus. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one operation. reports are the records it returned or filled;
// hunk counts are taken from those carrying fixes.
func (o *observer) observe(op string, start time.Time, reports []Report, err error, attrs ...any) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	result := outcome(err)

	hunks := 0
	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, result).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil {
			o.metrics.reports.WithLabelValues(op).Observe(float64(len(reports)))
		}
	}
	for i := range reports {
		if !reports[i].HasFixes {
			continue
		}
		hunks += len(reports[i].Fixes)
		if o.metrics != nil {
			o.metrics.hunks.Observe(float64(len(reports[i].Fixes)))
		}
	}

	if o.logger == nil {
		return
	}
	args := append([]any{"op", op, "outcome", result, "duration", dur}, attrs...)
	if err != nil {
		o.logger.Warn("report operation failed", append(args, "error", err)...)
		return
	}
	o.logger.Debug("report operation completed", append(args, "reports", len(reports), "hunks", hunks)...)
}
