// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
	"github.com/AccelByte/queue-matchmaker/pkg/testsetup"
)

func rankedTestQueue() models.QueueConfig {
	return models.QueueConfig{
		QueueID:                 "Ranked2v2",
		QueueType:               models.QueueTypeRanked,
		UsersPerTeam:            2,
		TeamsPerMatch:           2,
		DiscoverMatchesInterval: 5,
		SearchRange:             &[2]float64{0, 0},
		IncrementRange:          &[2]float64{1, 1},
	}
}

func partyByID(t *testing.T, st *store.MemoryStore, queueID, partyID string) models.Party {
	t.Helper()
	parties, err := st.ListOldestParties(context.Background(), queueID, 100)
	require.NoError(t, err)
	for _, party := range parties {
		if party.PartyID == partyID {
			return party
		}
	}
	t.Fatalf("party %s not found in queue %s", partyID, queueID)
	return models.Party{}
}

func Test_RankedCycle_EqualValuesMatchImmediately(t *testing.T) {
	queue := rankedTestQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	partyA := testRankedParty("A", queue.QueueID, 2, 50, now)
	partyB := testRankedParty("B", queue.QueueID, 2, 50, now.Add(time.Second))
	seedParties(t, st, partyA, partyB)
	seedTokens(t, st, "server-1")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	match, err := st.FindMatchForParty(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Len(t, match.Teams, 2)

	// parties stay whole, one per team, in arrival order
	assert.Equal(t, partyA.UserIDs, match.Teams[0])
	assert.Equal(t, partyB.UserIDs, match.Teams[1])

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func Test_RankedCycle_BracketsWidenUntilOverlap(t *testing.T) {
	queue := rankedTestQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	seedParties(t, st,
		testRankedParty("A", queue.QueueID, 2, 50, now),
		testRankedParty("B", queue.QueueID, 2, 52, now.Add(time.Second)),
	)
	seedTokens(t, st, "server-1")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)

	// first cycle: no overlap yet, both brackets widen from their values
	runner.RunCycle(scope)
	partyA := partyByID(t, st, queue.QueueID, "A")
	require.NotNil(t, partyA.RankedMin)
	assert.Equal(t, 49.0, *partyA.RankedMin)
	assert.Equal(t, 51.0, *partyA.RankedMax)
	partyB := partyByID(t, st, queue.QueueID, "B")
	require.NotNil(t, partyB.RankedMin)
	assert.Equal(t, 51.0, *partyB.RankedMin)
	assert.Equal(t, 53.0, *partyB.RankedMax)

	// second cycle: A's bracket now covers B's value, but 50 is still outside
	// B's bracket, so both widen again
	runner.RunCycle(scope)
	partyA = partyByID(t, st, queue.QueueID, "A")
	assert.Equal(t, 48.0, *partyA.RankedMin)
	assert.Equal(t, 52.0, *partyA.RankedMax)
	partyB = partyByID(t, st, queue.QueueID, "B")
	assert.Equal(t, 50.0, *partyB.RankedMin)
	assert.Equal(t, 54.0, *partyB.RankedMax)

	// third cycle: brackets mutually overlap and the match forms
	runner.RunCycle(scope)
	match, err := st.FindMatchForParty(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Len(t, allUserIDs(match.Teams), 4)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func Test_RankedCycle_OneSidedOverlapIsRejected(t *testing.T) {
	queue := rankedTestQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	// A arrives with an already widened bracket that covers B, but B's own
	// bracket does not reach back to A
	partyA := testRankedParty("A", queue.QueueID, 2, 50, now)
	rankedMin, rankedMax := 45.0, 55.0
	partyA.RankedMin = &rankedMin
	partyA.RankedMax = &rankedMax
	seedParties(t, st,
		partyA,
		testRankedParty("B", queue.QueueID, 2, 54, now.Add(time.Second)),
	)
	seedTokens(t, st, "server-1")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	match, err := st.FindMatchForParty(context.Background(), "A")
	require.NoError(t, err)
	assert.Nil(t, match, "range checks must hold in both directions")

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func Test_RankedCycle_IgnoresPartiesWithoutRankedValue(t *testing.T) {
	queue := rankedTestQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	seedParties(t, st,
		testRankedParty("A", queue.QueueID, 2, 50, now),
		testParty("C", queue.QueueID, 2, now.Add(time.Second)),
		testRankedParty("B", queue.QueueID, 2, 50, now.Add(2*time.Second)),
	)
	seedTokens(t, st, "server-1")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	match, err := st.FindMatchForParty(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, match)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "C", remaining[0].PartyID)
}

func Test_RankedCycle_EmptyPoolLeavesBracketsUntouched(t *testing.T) {
	queue := rankedTestQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	seedParties(t, st,
		testRankedParty("A", queue.QueueID, 2, 50, now),
		testRankedParty("B", queue.QueueID, 2, 50, now.Add(time.Second)),
	)
	// no server tokens registered

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, party := range remaining {
		assert.Nil(t, party.RankedMin, "a packable pool must not widen brackets")
	}
}
