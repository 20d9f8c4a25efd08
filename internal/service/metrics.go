package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	votesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediforum_votes_applied_total",
		Help: "Vote applications by ledger transition.",
	}, []string{"transition"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crediforum_cache_hits_total",
		Help: "Total Redis cache hits.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crediforum_cache_misses_total",
		Help: "Total Redis cache misses.",
	})

	auditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crediforum_audit_events_dropped_total",
		Help: "Audit events lost to sink failures.",
	})
)
