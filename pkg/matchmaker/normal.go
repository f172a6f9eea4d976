// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

// normalCycle forms matches with the queue's fixed team size, ignoring
// ranked ranges.
type normalCycle struct {
	queue models.QueueConfig
	svc   Services
}

func (c *normalCycle) RunCycle(scope *envelope.Scope) {
	allParties, err := c.svc.QueueStore.ListOldestParties(scope.Ctx, c.queue.QueueID, c.svc.fetchLimit())
	if err != nil {
		scope.Log.WithError(err).WithField("queueID", c.queue.QueueID).Warn("failed to list waiting parties")
		return
	}
	if len(allParties) == 0 {
		return
	}
	c.svc.reportQueueDepth(c.queue.QueueID, allParties)

	runPackingLoop(scope, c.queue, c.svc, allParties, c.queue.UsersPerTeam)
}
