package core

import (
	"context"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Service) finishDispatch(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	resource string,
	callCount int,
	response DispatchResponse,
	err error,
) {
	if s == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	duration := time.Since(startedAt)

	fields := map[string]any{
		"event_type":  operation,
		"status":      status,
		"resource":    resource,
		"call_count":  callCount,
		"committed":   response.Commit != nil,
		"duration_ms": duration.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	if trimmed := strings.TrimSpace(resource); trimmed != "" {
		tags["resource"] = trimmed
	}

	s.recordCounter(ctx, "resources."+operation+".total", 1, tags)
	s.recordHistogram(ctx, "resources."+operation+".duration_ms", float64(duration.Milliseconds()), tags)
	s.recordActivity(ctx, startedAt, operation, resource, callCount, response, err, duration)

	if err != nil {
		s.logError(ctx, operation+" failed", fields)
		return
	}
	s.logInfo(ctx, operation+" succeeded", fields)
}

// recordActivity is best-effort: a failing recorder is logged, never
// surfaced to the dispatch caller.
func (s *Service) recordActivity(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	resource string,
	callCount int,
	response DispatchResponse,
	err error,
	duration time.Duration,
) {
	if s.activityRecorder == nil {
		return
	}
	activity := DispatchActivity{
		ID:        uuid.NewString(),
		Operation: operation,
		Resource:  resource,
		Status:    "success",
		CallCount: callCount,
		Committed: response.Commit != nil,
		Duration:  duration,
		CreatedAt: startedAt.UTC(),
	}
	if err != nil {
		activity.Status = "failure"
		activity.Error = err.Error()
	}
	if recordErr := s.activityRecorder.RecordDispatch(ctx, activity); recordErr != nil {
		s.logError(ctx, "dispatch activity recording failed", map[string]any{
			"operation": operation,
			"resource":  resource,
			"error":     recordErr.Error(),
		})
	}
}

func (s *Service) logInfo(ctx context.Context, message string, fields map[string]any) {
	s.logWithLevel(ctx, "info", message, fields)
}

func (s *Service) logError(ctx context.Context, message string, fields map[string]any) {
	s.logWithLevel(ctx, "error", message, fields)
}

func (s *Service) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if s == nil || s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	maps.Copy(copied, tags)
	return copied
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
