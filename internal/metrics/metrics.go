// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the ingestion pipeline and the conflict
// diff engine:
// - Feed throughput, parse failures, duplicate suppression
// - Batch commits and journal retention sweeps
// - Tick observations
// - Conflict state transitions and notification delivery

var (
	// Feed Metrics
	FeedMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_messages_received_total",
			Help: "Total raw messages received from the telemetry feed",
		},
	)

	FeedMessagesDecoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_messages_decoded_total",
			Help: "Total feed messages that produced persistence statements",
		},
	)

	FeedDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_decode_failures_total",
			Help: "Total feed messages that failed decompression or parsing",
		},
	)

	FeedDuplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_duplicates_skipped_total",
			Help: "Total feed messages skipped by duplicate suppression",
		},
	)

	FeedReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_reconnects_total",
			Help: "Total feed connection re-establishments",
		},
	)

	FeedBatchesCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_batches_committed_total",
			Help: "Total statement batches committed to the datastore",
		},
	)

	FeedBatchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_batch_errors_total",
			Help: "Total statement batches dropped after a failed commit",
		},
	)

	FeedBatchCommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_batch_commit_duration_seconds",
			Help:    "Duration of statement batch commits in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	JournalRowsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_rows_purged_total",
			Help: "Total audit journal rows removed by retention sweeps",
		},
	)

	// Tick Metrics
	TicksObserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticks_observed_total",
			Help: "Total new tick ids observed and published on the tick bus",
		},
	)

	TickProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tick_processing_duration_seconds",
			Help:    "Duration of conflict diff engine tick processing in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Conflict Metrics
	ConflictTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflict_transitions_total",
			Help: "Total conflict state transitions by kind",
		},
		[]string{"transition"}, // "new", "day_scored", "resolved", "removed", "refreshed"
	)

	ConflictsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conflicts_active",
			Help: "Number of systems with an active tracked conflict",
		},
	)

	// Notification Metrics
	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total notifications delivered to webhook endpoints",
		},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total notification delivery failures",
		},
		[]string{"reason"}, // "http", "status", "breaker_open", "rate_limited"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)
)

// RecordFeedMessage records receipt of one raw feed message.
func RecordFeedMessage() {
	FeedMessagesReceived.Inc()
}

// RecordFeedDecoded records a message decoded into persistence statements.
func RecordFeedDecoded() {
	FeedMessagesDecoded.Inc()
}

// RecordFeedDecodeFailure records a message that could not be decoded.
func RecordFeedDecodeFailure() {
	FeedDecodeFailures.Inc()
}

// RecordFeedDuplicate records a message skipped by duplicate suppression.
func RecordFeedDuplicate() {
	FeedDuplicatesSkipped.Inc()
}

// RecordFeedReconnect records a feed reconnect attempt.
func RecordFeedReconnect() {
	FeedReconnects.Inc()
}

// RecordBatchCommit records the outcome of a statement batch commit.
func RecordBatchCommit(duration time.Duration, err error) {
	if err != nil {
		FeedBatchErrors.Inc()
		return
	}
	FeedBatchesCommitted.Inc()
	FeedBatchCommitDuration.Observe(duration.Seconds())
}

// RecordJournalPurge records rows removed by a retention sweep.
func RecordJournalPurge(rows int64) {
	JournalRowsPurged.Add(float64(rows))
}

// RecordTickObserved records a newly observed tick id.
func RecordTickObserved() {
	TicksObserved.Inc()
}

// RecordTickProcessed records the duration of one diff engine pass.
func RecordTickProcessed(duration time.Duration) {
	TickProcessingDuration.Observe(duration.Seconds())
}

// RecordConflictTransition records one conflict lifecycle transition.
func RecordConflictTransition(transition string) {
	ConflictTransitions.WithLabelValues(transition).Inc()
}

// SetConflictsActive sets the active-conflict gauge.
func SetConflictsActive(n int) {
	ConflictsActive.Set(float64(n))
}

// RecordNotification records a notification delivery outcome.
func RecordNotification(failureReason string) {
	if failureReason == "" {
		NotificationsSent.Inc()
		return
	}
	NotificationFailures.WithLabelValues(failureReason).Inc()
}

// RecordDBQuery records a database query with its duration and outcome.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
