package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked after every execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs command outcomes with their duration.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}

// Metrics counts command executions by command and status.
type Metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the command collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "publish_command_executions_total",
			Help: "Publish command executions by command and status",
		}, []string{"command", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "publish_command_duration_seconds",
			Help:    "Publish command latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

// MetricsTelemetry records each execution in m. A nil m records nothing.
func MetricsTelemetry[T command.Message](m *Metrics) Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		if m == nil {
			return
		}
		m.executions.WithLabelValues(info.Command, string(info.Status)).Inc()
		m.duration.WithLabelValues(info.Command).Observe(info.Duration.Seconds())
	}
}

// ChainTelemetry calls every non-nil fn in order.
func ChainTelemetry[T command.Message](fns ...Telemetry[T]) Telemetry[T] {
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		for _, fn := range fns {
			if fn != nil {
				fn(ctx, msg, info)
			}
		}
	}
}
