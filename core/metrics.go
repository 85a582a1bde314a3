package core

import "context"

// metricNamespace prefixes every series the manager emits, one counter and
// one duration histogram per session operation (session_open, session_save,
// session_reauthorize, ...), tagged with operation, status, and the
// traceability fields.
const metricNamespace = "authclient"

func operationCounterName(operation string) string {
	return metricNamespace + "." + operation + ".total"
}

func operationDurationName(operation string) string {
	return metricNamespace + "." + operation + ".duration_ms"
}

// NopMetricsRecorder is the default sink: hosts that do not wire a recorder
// pay nothing for the instrumentation.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// cloneTags copies tags before handing them to the recorder; recorders may
// retain the map beyond the call.
func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
