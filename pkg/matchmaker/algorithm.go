// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"fmt"
	"time"

	pie "github.com/elliotchance/pie/v2"

	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/metrics"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
)

// defaultPartyFetchLimit bounds the snapshot one cycle takes from a queue.
const defaultPartyFetchLimit = 2500

// CycleRunner runs one discovery cycle against a snapshot of waiting
// parties. Implementations must tolerate store failures by treating them as
// "no data" so the scheduler loop keeps running.
type CycleRunner interface {
	RunCycle(scope *envelope.Scope)
}

// Services bundles the collaborators a cycle runner needs.
type Services struct {
	QueueStore store.QueueStore
	Creator    MatchCreator
	Metrics    metrics.MatchmakingMetrics

	// Now defaults to time.Now in UTC, overridable in tests.
	Now func() time.Time

	// FetchLimit defaults to defaultPartyFetchLimit.
	FetchLimit int64
}

func (s Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s Services) fetchLimit() int64 {
	if s.FetchLimit > 0 {
		return s.FetchLimit
	}
	return defaultPartyFetchLimit
}

func (s Services) reportQueueDepth(queueID string, parties []models.Party) {
	if s.Metrics != nil {
		s.Metrics.PartiesInQueue(queueID, len(parties), countPlayers(parties))
	}
}

// ForQueue selects the cycle runner for the queue's algorithm kind.
func ForQueue(queue models.QueueConfig, svc Services) (CycleRunner, error) {
	switch queue.QueueType {
	case models.QueueTypeNormal:
		return &normalCycle{queue: queue, svc: svc}, nil
	case models.QueueTypeDynamic:
		return &dynamicCycle{queue: queue, svc: svc}, nil
	case models.QueueTypeRanked:
		return &rankedCycle{queue: queue, svc: svc}, nil
	default:
		return nil, fmt.Errorf("queue %q: unknown queue type %q", queue.QueueID, queue.QueueType)
	}
}

// runPackingLoop keeps forming matches from the snapshot until the supply is
// exhausted for this pass. Shared by the normal and dynamic cycles.
func runPackingLoop(scope *envelope.Scope, queue models.QueueConfig, svc Services, allParties []models.Party, usersPerTeam int) {
	usedPartyIDs := make(map[string]struct{})
	requiredPlayers := queue.RequiredPlayers(usersPerTeam)

	foundMatchInThisIteration := true
	for foundMatchInThisIteration {
		foundMatchInThisIteration = false

		availableParties := pie.Filter(allParties, func(p models.Party) bool {
			_, used := usedPartyIDs[p.PartyID]
			return !used
		})
		if len(availableParties) == 0 {
			return
		}

		// cheap short-circuit before attempting a pack
		if countPlayers(availableParties) < requiredPlayers {
			return
		}

		packed, ok := PackTeams(availableParties, queue.TeamsPerMatch, usersPerTeam)
		if !ok {
			// not enough compatible supply, wait for the next cycle
			return
		}

		result := svc.Creator.CreateMatch(scope, queue, packed)
		switch result.Status {
		case models.StatusCreatedMatch:
			markUsed(usedPartyIDs, packed.PartiesUsed)
			foundMatchInThisIteration = true
		case models.StatusNoServerAccessCode:
			// resource starved, retried on the next scheduled cycle
			return
		case models.StatusPartyClaimRejected:
			// another worker consumed some of these parties, drop them and repack
			markUsed(usedPartyIDs, result.LostPartyIDs)
			foundMatchInThisIteration = true
		default:
			// skip this attempt, keep packing the rest of the snapshot
			markUsed(usedPartyIDs, packed.PartiesUsed)
			foundMatchInThisIteration = true
		}
	}
}

func markUsed(usedPartyIDs map[string]struct{}, partyIDs []string) {
	for _, id := range partyIDs {
		usedPartyIDs[id] = struct{}{}
	}
}
