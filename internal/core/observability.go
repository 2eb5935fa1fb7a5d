package core

import (
	"context"
	"time"
)

// Logger receives structured key-value log events from the service. Callers
// supply an implementation via WithLogger; the default drops everything.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder aggregates service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a single traced operation.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// AuditStatus classifies an audit entry outcome.
type AuditStatus string

// Audit entry outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service operation.
type AuditEntry struct {
	Operation string
	Status    AuditStatus
	Entity    EntityType
	EntityID  string
	Error     string
	Duration  time.Duration
	At        time.Time
}

// AuditRecorder receives audit entries for completed operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder to the service.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithAuditRecorder attaches an audit recorder to the service.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.audit = recorder
		}
	}
}

// WithNowFunc overrides the service clock, primarily for tests.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// begin instruments one service operation. The returned finish function must
// be called exactly once with the entity affected and the outcome error.
func (s *Service) begin(ctx context.Context, operation string) (context.Context, func(entity EntityType, entityID string, err error)) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(entity EntityType, entityID string, err error) {
		duration := time.Since(started)
		span.End(err)
		s.metrics.Observe(ctx, operation, err == nil, duration)
		entry := AuditEntry{
			Operation: operation,
			Status:    AuditStatusSuccess,
			Entity:    entity,
			EntityID:  entityID,
			Duration:  duration,
			At:        time.Now().UTC(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
			s.logger.Error("operation failed", "operation", operation, "entity", string(entity), "id", entityID, "error", err.Error())
		} else {
			s.logger.Debug("operation completed", "operation", operation, "entity", string(entity), "id", entityID)
		}
		s.audit.Record(ctx, entry)
	}
}
