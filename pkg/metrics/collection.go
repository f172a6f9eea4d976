// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	partiesInQueue       prometheus.GaugeVec
	playersInQueue       prometheus.GaugeVec
	matchesCreated       prometheus.CounterVec
	matchFailures        prometheus.CounterVec
	discoveryCycleElapse prometheus.HistogramVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	partiesInQueue := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mmq_parties_in_queue",
			Help: "Number of parties waiting in the queue at the last discovery snapshot",
		}, []string{"queue"})

	playersInQueue := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mmq_players_in_queue",
			Help: "Number of players waiting in the queue at the last discovery snapshot",
		}, []string{"queue"})

	matchesCreated := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmq_matches_created_total",
			Help: "Matches created per queue",
		}, []string{"queue"})

	matchFailures := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmq_match_failures_total",
			Help: "Match creation attempts that did not produce a match, by reason",
		}, []string{"queue", "reason"})

	//nolint:promlinter
	discoveryCycleElapse := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmq_discovery_cycle_elapsed_time_ms",
			Help:    "A histogram of discovery cycle elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"queue"})

	return prometheusMetrics{
		partiesInQueue:       *partiesInQueue,
		playersInQueue:       *playersInQueue,
		matchesCreated:       *matchesCreated,
		matchFailures:        *matchFailures,
		discoveryCycleElapse: *discoveryCycleElapse,
	}
}

func (metrics prometheusMetrics) PartiesInQueue(queueID string, numParties int, numPlayers int) {
	metrics.partiesInQueue.With(prometheus.Labels{"queue": queueID}).Set(float64(numParties))
	metrics.playersInQueue.With(prometheus.Labels{"queue": queueID}).Set(float64(numPlayers))
}

func (metrics prometheusMetrics) MatchCreated(queueID string) {
	metrics.matchesCreated.With(prometheus.Labels{"queue": queueID}).Add(1)
}

func (metrics prometheusMetrics) MatchFailed(queueID string, reason string) {
	metrics.matchFailures.With(prometheus.Labels{"queue": queueID, "reason": reason}).Add(1)
}

func (metrics prometheusMetrics) DiscoveryCycleElapsedTimeMs(queueID string, elapsedTime time.Duration) {
	metrics.discoveryCycleElapse.With(prometheus.Labels{"queue": queueID}).Observe(float64(elapsedTime.Milliseconds()))
}
