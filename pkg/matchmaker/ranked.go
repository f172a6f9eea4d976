// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"slices"

	pie "github.com/elliotchance/pie/v2"

	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

// doubleRangeRequired demands that pivot and candidate each fall inside the
// other's bracket, so neither side can force a match the other would reject.
const doubleRangeRequired = true

// rankedCycle matches parties whose ranked values fall inside each other's
// search brackets, widening a pivot's bracket whenever its pool cannot form
// a match.
type rankedCycle struct {
	queue models.QueueConfig
	svc   Services
}

func (c *rankedCycle) RunCycle(scope *envelope.Scope) {
	allParties, err := c.svc.QueueStore.ListOldestParties(scope.Ctx, c.queue.QueueID, c.svc.fetchLimit())
	if err != nil {
		scope.Log.WithError(err).WithField("queueID", c.queue.QueueID).Warn("failed to list waiting parties")
		return
	}
	if len(allParties) == 0 {
		return
	}
	c.svc.reportQueueDepth(c.queue.QueueID, allParties)

	// parties without a ranked value cannot be bracketed this cycle
	allParties = pie.Filter(allParties, models.Party.HasRankedValue)

	allParties = slices.Clone(allParties)
	slices.SortStableFunc(allParties, func(a, b models.Party) int {
		return a.TimeAdded.Compare(b.TimeAdded)
	})

	usedPartyIDs := make(map[string]struct{})
	requiredPlayers := c.queue.RequiredPlayers(c.queue.UsersPerTeam)

	foundMatchInThisIteration := true
	for foundMatchInThisIteration {
		foundMatchInThisIteration = false

		for i := range allParties {
			pivot := &allParties[i]
			if _, used := usedPartyIDs[pivot.PartyID]; used {
				continue
			}

			rankedMin, rankedMax := c.bracketOf(*pivot)

			partiesInRange := c.selectInRange(allParties, usedPartyIDs, *pivot.RankedValue, rankedMin, rankedMax)

			if countPlayers(partiesInRange) < requiredPlayers {
				expandSearchRange(scope, c.queue, c.svc.QueueStore, pivot)
				continue
			}

			packed, ok := PackTeams(partiesInRange, c.queue.TeamsPerMatch, c.queue.UsersPerTeam)
			if !ok {
				// pool cannot be composed into exact teams, widen and move on
				expandSearchRange(scope, c.queue, c.svc.QueueStore, pivot)
				continue
			}

			result := c.svc.Creator.CreateMatch(scope, c.queue, packed)
			switch result.Status {
			case models.StatusCreatedMatch:
				markUsed(usedPartyIDs, packed.PartiesUsed)
			case models.StatusNoServerAccessCode:
				return
			case models.StatusPartyClaimRejected:
				markUsed(usedPartyIDs, result.LostPartyIDs)
			default:
				markUsed(usedPartyIDs, packed.PartiesUsed)
			}

			// restart the per-party scan over the shrunken pool
			foundMatchInThisIteration = true
			break
		}
	}
}

// bracketOf returns the pivot's current bracket, defaulting to its ranked
// value widened by the queue's initial search range.
func (c *rankedCycle) bracketOf(party models.Party) (float64, float64) {
	rankedValue := *party.RankedValue
	rankedMin := rankedValue - c.queue.SearchRange[0]
	rankedMax := rankedValue + c.queue.SearchRange[1]
	if party.RankedMin != nil {
		rankedMin = *party.RankedMin
	}
	if party.RankedMax != nil {
		rankedMax = *party.RankedMax
	}
	return rankedMin, rankedMax
}

func (c *rankedCycle) selectInRange(allParties []models.Party, usedPartyIDs map[string]struct{}, pivotValue, rankedMin, rankedMax float64) []models.Party {
	return pie.Filter(allParties, func(party models.Party) bool {
		if _, used := usedPartyIDs[party.PartyID]; used {
			return false
		}

		partyValue := *party.RankedValue
		if partyValue < rankedMin || partyValue > rankedMax {
			return false
		}

		if doubleRangeRequired {
			partyMin, partyMax := c.bracketOf(party)
			if pivotValue < partyMin || pivotValue > partyMax {
				return false
			}
		}

		return true
	})
}
