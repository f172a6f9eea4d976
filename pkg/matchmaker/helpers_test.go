// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"sync/atomic"
	"time"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

var nextUserID int64

func testParty(partyID, queueID string, size int, timeAdded time.Time) models.Party {
	userIDs := make([]int64, size)
	for i := range userIDs {
		userIDs[i] = atomic.AddInt64(&nextUserID, 1)
	}
	return models.Party{
		PartyID:   partyID,
		UserIDs:   userIDs,
		QueueID:   queueID,
		TimeAdded: timeAdded,
	}
}

func testRankedParty(partyID, queueID string, size int, rankedValue float64, timeAdded time.Time) models.Party {
	party := testParty(partyID, queueID, size, timeAdded)
	party.RankedValue = &rankedValue
	return party
}

func allUserIDs(teams [][]int64) map[int64]int {
	seen := make(map[int64]int)
	for _, team := range teams {
		for _, userID := range team {
			seen[userID]++
		}
	}
	return seen
}
