// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MatchmakingMetrics interface {
	PartiesInQueue(queueID string, numParties int, numPlayers int)
	MatchCreated(queueID string)
	MatchFailed(queueID string, reason string)
	DiscoveryCycleElapsedTimeMs(queueID string, elapsedTime time.Duration)
}

func NewMetrics(registry *prometheus.Registry) MatchmakingMetrics {
	return setupPrometheusMetrics(registry)
}
