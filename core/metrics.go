package core

import "context"

// NopMetricsRecorder accepts and discards every measurement. It is the
// recorder the service falls back to when none is configured.
type NopMetricsRecorder struct{}

var _ MetricsRecorder = NopMetricsRecorder{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}
