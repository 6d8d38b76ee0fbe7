// Package metrics exposes operator-facing counters for the session core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AttemptsCompleted counts live attempts that reached results.
	AttemptsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wikiquiz",
		Name:      "attempts_completed_total",
		Help:      "Quiz attempts submitted locally.",
	})

	// PerfectScores counts freshly submitted full-score attempts.
	PerfectScores = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wikiquiz",
		Name:      "perfect_scores_total",
		Help:      "Attempts where every question was answered correctly.",
	})

	// AttemptSaveFailures counts persistence calls that failed and were
	// swallowed in favor of local results.
	AttemptSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wikiquiz",
		Name:      "attempt_save_failures_total",
		Help:      "Failed save-attempt calls against the store.",
	})

	// HistoryRefreshes counts full history list fetches.
	HistoryRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wikiquiz",
		Name:      "history_refreshes_total",
		Help:      "History list fetches issued by the cache coordinator.",
	})

	// HistoryFetchFailures counts history fetches that failed and left the
	// cache unloaded.
	HistoryFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wikiquiz",
		Name:      "history_fetch_failures_total",
		Help:      "Failed history list fetches.",
	})
)

// Serve exposes /metrics on addr; it blocks, so callers run it in a
// goroutine. A listen failure is returned rather than fatal since metrics
// are optional for the client.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
