// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"time"

	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

// dynamicCycle chooses the effective team size once per cycle: after the
// oldest party has waited past the configured threshold it relaxes to the
// minimum team size, otherwise it prefers fuller teams.
type dynamicCycle struct {
	queue models.QueueConfig
	svc   Services
}

func (c *dynamicCycle) RunCycle(scope *envelope.Scope) {
	allParties, err := c.svc.QueueStore.ListOldestParties(scope.Ctx, c.queue.QueueID, c.svc.fetchLimit())
	if err != nil {
		scope.Log.WithError(err).WithField("queueID", c.queue.QueueID).Warn("failed to list waiting parties")
		return
	}
	if len(allParties) == 0 {
		return
	}
	c.svc.reportQueueDepth(c.queue.QueueID, allParties)

	oldest := allParties[0]
	elapsed := c.svc.now().Sub(oldest.TimeAdded)
	threshold := time.Duration(c.queue.TimeElapsedToUseMinimumUsers) * time.Second

	// the threshold is inclusive: a party aged exactly at it relaxes the size
	effectiveUsersPerTeam := c.queue.MaxUsersPerTeam
	if elapsed >= threshold {
		effectiveUsersPerTeam = c.queue.MinUsersPerTeam
	}

	runPackingLoop(scope, c.queue, c.svc, allParties, effectiveUsersPerTeam)
}
