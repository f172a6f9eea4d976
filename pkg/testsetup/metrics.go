// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"time"

	"github.com/AccelByte/queue-matchmaker/pkg/metrics"
)

type stubMetricsCollection struct{}

func (s stubMetricsCollection) PartiesInQueue(queueID string, numParties int, numPlayers int) {
}

func (s stubMetricsCollection) MatchCreated(queueID string) {
}

func (s stubMetricsCollection) MatchFailed(queueID string, reason string) {
}

func (s stubMetricsCollection) DiscoveryCycleElapsedTimeMs(queueID string, elapsedTime time.Duration) {
}

func NewMetrics() metrics.MatchmakingMetrics {
	return stubMetricsCollection{}
}
