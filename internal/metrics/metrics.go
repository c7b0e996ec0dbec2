package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FanoutRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fanline_fanout_runs_total",
		Help: "Total fan-out runs",
	})
	FanoutFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fanline_fanout_failures_total",
		Help: "Total failed fan-out runs",
	})
	FanoutRows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fanline_fanout_rows_total",
		Help: "Total timeline rows written by fan-out",
	})
	FanoutCapped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fanline_fanout_capped_total",
		Help: "Fan-out runs truncated by the follower cap",
	})
	FanoutDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fanline_fanout_duration_seconds",
		Help:    "Fan-out duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	NotificationsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fanline_notifications_emitted_total",
		Help: "Total notifications created",
	}, []string{"type"})
	ReactionsDeduped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fanline_reactions_deduped_total",
		Help: "Repeated reaction attempts resolved as no-ops",
	})
	FeedDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fanline_feed_duration_seconds",
		Help:    "Feed query duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})
)

func init() {
	prometheus.MustRegister(
		FanoutRuns, FanoutFailures, FanoutRows, FanoutCapped, FanoutDuration,
		NotificationsEmitted, ReactionsDeduped, FeedDuration,
	)
}

// ObserveFanoutDuration records a fan-out run duration.
func ObserveFanoutDuration(start time.Time) {
	FanoutDuration.Observe(time.Since(start).Seconds())
}

// ObserveFeedDuration records a feed query duration for the named feed.
func ObserveFeedDuration(feed string, start time.Time) {
	FeedDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}
