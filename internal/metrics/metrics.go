// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movieswipe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movieswipe_users_created_total",
		Help: "Users created on first contact",
	})

	MoviesSuggested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movieswipe_movies_suggested_total",
		Help: "Movies added to the catalog",
	})

	DuplicateSuggestions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movieswipe_duplicate_suggestions_total",
		Help: "Suggestions rejected because the movie already exists",
	})

	VotesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movieswipe_votes_recorded_total",
		Help: "Ledger entries appended by polarity",
	}, []string{"polarity"})

	MetadataRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movieswipe_metadata_requests_total",
		Help: "Metadata lookups by outcome",
	}, []string{"outcome"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "movieswipe_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	DBPoolConns = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "movieswipe_db_pool_connections",
		Help: "pgx pool connections by state",
	}, []string{"state"})
)

// ObserveHTTP records one request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Vote counts one appended ledger entry.
func Vote(positive bool) {
	if positive {
		VotesRecorded.WithLabelValues("like").Inc()
		return
	}
	VotesRecorded.WithLabelValues("dislike").Inc()
}

// StatsSource is satisfied by *store.Store.
type StatsSource interface {
	Stats() *pgxpool.Stat
}

// ReportPoolStats publishes pool gauges every interval until ctx is done.
func ReportPoolStats(ctx context.Context, src StatsSource, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		recordPoolStats(src.Stats())
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func recordPoolStats(stat *pgxpool.Stat) {
	if stat == nil {
		return
	}
	DBPoolConns.WithLabelValues("total").Set(float64(stat.TotalConns()))
	DBPoolConns.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPoolConns.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
}
