package driven

import "time"

// Metrics records operational measurements.
type Metrics interface {
	// ObserveAsk records one answered question.
	ObserveAsk(status string, d time.Duration)

	// ObserveCandidates records how many candidates survived retrieval.
	ObserveCandidates(n int)

	// ObserveCache records a cache lookup on the named level.
	ObserveCache(level string, hit bool)

	// ObserveProviderCall records one provider request.
	ObserveProviderCall(operation, status string, d time.Duration)

	// ObserveRetry records a retried provider operation.
	ObserveRetry(operation string)

	// ObserveIndexed records chunks stored or failed during an index build.
	ObserveIndexed(stored, failed int)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

// ObserveAsk implements Metrics.
func (NopMetrics) ObserveAsk(string, time.Duration) {}

// ObserveCandidates implements Metrics.
func (NopMetrics) ObserveCandidates(int) {}

// ObserveCache implements Metrics.
func (NopMetrics) ObserveCache(string, bool) {}

// ObserveProviderCall implements Metrics.
func (NopMetrics) ObserveProviderCall(string, string, time.Duration) {}

// ObserveRetry implements Metrics.
func (NopMetrics) ObserveRetry(string) {}

// ObserveIndexed implements Metrics.
func (NopMetrics) ObserveIndexed(int, int) {}

var _ Metrics = NopMetrics{}
