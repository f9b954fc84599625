// Package metrics exposes Prometheus counters for gameplay and HTTP traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
	LabelKind   = "kind"
	LabelResult = "result"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copclicker_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copclicker_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copclicker_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copclicker_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		},
	)
)

// Gameplay metrics
var (
	Clicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copclicker_clicks_total",
			Help: "Registered clicks.",
		},
	)

	UpgradesPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copclicker_upgrades_purchased_total",
			Help: "Upgrade levels bought, by kind.",
		},
		[]string{LabelKind},
	)

	LegacyPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copclicker_legacy_upgrades_purchased_total",
			Help: "Legacy upgrade levels bought, by kind.",
		},
		[]string{LabelKind},
	)

	RankUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copclicker_rank_ups_total",
			Help: "Rank promotions.",
		},
	)

	Prestiges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copclicker_prestiges_total",
			Help: "Prestige resets performed.",
		},
	)

	AchievementsUnlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copclicker_achievements_unlocked_total",
			Help: "Achievements unlocked.",
		},
	)

	AchievementsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copclicker_achievements_claimed_total",
			Help: "Achievement rewards claimed.",
		},
	)

	Saves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copclicker_saves_total",
			Help: "Save attempts by result.",
		},
		[]string{LabelResult},
	)
)
