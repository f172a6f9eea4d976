// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
)

// NextBracket computes the party's widened search bracket. The current
// bracket defaults to the ranked value itself when the party has never been
// expanded. Each side grows by the queue increment and is clamped so the
// deviation from the ranked value never exceeds the configured cap. changed
// is false once both sides sit at their caps.
func NextBracket(queue models.QueueConfig, party models.Party) (rankedMin, rankedMax float64, changed bool) {
	if party.RankedValue == nil || queue.IncrementRange == nil {
		return 0, 0, false
	}

	rankedValue := *party.RankedValue
	rankedMin, rankedMax = rankedValue, rankedValue
	if party.RankedMin != nil {
		rankedMin = *party.RankedMin
	}
	if party.RankedMax != nil {
		rankedMax = *party.RankedMax
	}

	originalMin, originalMax := rankedMin, rankedMax

	rankedMin -= queue.IncrementRange[0]
	rankedMax += queue.IncrementRange[1]

	if queue.IncrementRangeMax != nil {
		if rankedValue-rankedMin > queue.IncrementRangeMax[0] {
			rankedMin = rankedValue - queue.IncrementRangeMax[0]
		}
		if rankedMax-rankedValue > queue.IncrementRangeMax[1] {
			rankedMax = rankedValue + queue.IncrementRangeMax[1]
		}
	}

	if originalMin == rankedMin && originalMax == rankedMax {
		return originalMin, originalMax, false
	}

	return rankedMin, rankedMax, true
}

// expandSearchRange widens the party's bracket, persists it, and updates the
// in-memory copy used by the remainder of the cycle. A persistence failure is
// logged but the cycle keeps the widened bracket.
func expandSearchRange(scope *envelope.Scope, queue models.QueueConfig, queueStore store.QueueStore, party *models.Party) bool {
	rankedMin, rankedMax, changed := NextBracket(queue, *party)
	if !changed {
		return false
	}

	if err := queueStore.UpdatePartyRange(scope.Ctx, party.PartyID, rankedMin, rankedMax); err != nil {
		scope.Log.WithError(err).
			WithField("partyID", party.PartyID).
			Warn("failed to persist expanded search range")
	}

	party.RankedMin = &rankedMin
	party.RankedMax = &rankedMax
	return true
}
