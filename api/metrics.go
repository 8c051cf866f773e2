package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	listEventName   = "projects.list"
	listEventDomain = "taskdeck"
	listRoute       = "/projects"
)

// listRequestMetrics collects stage timings for the project-list read path
// and emits them as one structured log entry plus an otel span.
type listRequestMetrics struct {
	logger           *log.Logger
	span             trace.Span
	start            time.Time
	authDuration     time.Duration
	fetchDuration    time.Duration
	encodeDuration   time.Duration
	searchProvided   bool
	projectsReturned int
	errorStage       string
}

func newListRequestMetrics(ctx context.Context, logger *log.Logger) (*listRequestMetrics, context.Context) {
	m := &listRequestMetrics{logger: logger, start: time.Now()}
	if ctx == nil {
		return m, nil
	}
	spanCtx, span := otel.Tracer(listEventDomain).Start(ctx, listEventName)
	m.span = span
	return m, spanCtx
}

func (m *listRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *listRequestMetrics) ObserveFetch(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.fetchDuration = duration
}

func (m *listRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *listRequestMetrics) SetSearchProvided(provided bool) {
	m.searchProvided = provided
}

func (m *listRequestMetrics) SetProjectsReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.projectsReturned = count
}

func (m *listRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finishes the span and emits the observability event. Safe on a nil
// receiver and with a nil logger.
func (m *listRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	totalMs := durationToMillis(time.Since(m.start))
	attrs := map[string]any{
		"http.route":                          listRoute,
		"http.status_code":                    status,
		"taskdeck.projects.total_ms":          totalMs,
		"taskdeck.projects.search_provided":   m.searchProvided,
		"taskdeck.projects.projects_returned": m.projectsReturned,
	}
	if m.authDuration > 0 {
		attrs["taskdeck.projects.auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.fetchDuration > 0 {
		attrs["taskdeck.projects.fetch_ms"] = durationToMillis(m.fetchDuration)
	}
	if m.encodeDuration > 0 {
		attrs["taskdeck.projects.encode_ms"] = durationToMillis(m.encodeDuration)
	}
	if m.errorStage != "" {
		attrs["taskdeck.projects.error_stage"] = m.errorStage
	}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("http.route", listRoute),
			attribute.Int("http.status_code", status),
			attribute.Float64("taskdeck.projects.total_ms", totalMs),
			attribute.Bool("taskdeck.projects.search_provided", m.searchProvided),
			attribute.Int("taskdeck.projects.projects_returned", m.projectsReturned),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("taskdeck.projects.error_stage", m.errorStage))
		}
		if err != nil {
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	severity := "INFO"
	if err != nil {
		severity = "ERROR"
		attrs["error"] = err.Error()
	}
	entry := m.logger.WithFields(log.Fields{
		"event.name":    listEventName,
		"event.domain":  listEventDomain,
		"attributes":    attrs,
		"severity_text": severity,
	})
	if err != nil {
		entry.Error("observability.event")
		return
	}
	entry.Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
