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

func normalQueue() models.QueueConfig {
	return models.QueueConfig{
		QueueID:                 "Casual2v2",
		QueueType:               models.QueueTypeNormal,
		UsersPerTeam:            2,
		TeamsPerMatch:           2,
		DiscoverMatchesInterval: 5,
	}
}

func newTestServices(t *testing.T, st *store.MemoryStore) Services {
	t.Helper()
	return Services{
		QueueStore: st,
		Creator:    NewMatchCreator(st, testsetup.NewMetrics()),
		Metrics:    testsetup.NewMetrics(),
	}
}

func seedParties(t *testing.T, st *store.MemoryStore, parties ...models.Party) {
	t.Helper()
	for _, party := range parties {
		_, err := st.UpsertParty(context.Background(), party)
		require.NoError(t, err)
	}
}

func seedTokens(t *testing.T, st *store.MemoryStore, tokens ...string) {
	t.Helper()
	for _, token := range tokens {
		require.NoError(t, st.RegisterServerToken(context.Background(), token))
	}
}

func Test_NormalCycle_PacksMultipleMatchesPerCycle(t *testing.T) {
	queue := normalQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	seedParties(t, st,
		testParty("A", queue.QueueID, 2, now),
		testParty("B", queue.QueueID, 2, now.Add(time.Second)),
		testParty("C", queue.QueueID, 2, now.Add(2*time.Second)),
		testParty("D", queue.QueueID, 2, now.Add(3*time.Second)),
	)
	seedTokens(t, st, "server-1", "server-2")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	assert.Empty(t, remaining, "both matches should consume the whole queue")

	for _, partyID := range []string{"A", "B", "C", "D"} {
		match, err := st.FindMatchForParty(context.Background(), partyID)
		require.NoError(t, err)
		require.NotNil(t, match, "party %s should have a found match", partyID)
		assert.Equal(t, queue.QueueID, match.QueueID)
		assert.Len(t, match.Teams, 2)
	}

	// the two matches consumed distinct tokens
	matchA, _ := st.FindMatchForParty(context.Background(), "A")
	matchC, _ := st.FindMatchForParty(context.Background(), "C")
	assert.NotEqual(t, matchA.MatchID, matchC.MatchID)
	assert.NotEqual(t, matchA.ServerAccessToken, matchC.ServerAccessToken)
}

func Test_NormalCycle_InsufficientSupplyMakesNoMatch(t *testing.T) {
	queue := normalQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	seedParties(t, st,
		testParty("A", queue.QueueID, 2, time.Now()),
		testParty("B", queue.QueueID, 1, time.Now()),
	)
	seedTokens(t, st, "server-1")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	assert.Len(t, remaining, 2, "parties must stay queued when no match forms")
}

func Test_NormalCycle_EmptyPoolStopsCycle(t *testing.T) {
	queue := normalQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	seedParties(t, st,
		testParty("A", queue.QueueID, 2, time.Now()),
		testParty("B", queue.QueueID, 2, time.Now()),
	)
	// no server tokens registered

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	assert.Len(t, remaining, 2, "resource starvation must not remove parties")
}

func Test_NormalCycle_LeftoverPartyWaits(t *testing.T) {
	queue := normalQueue()
	st := store.NewMemoryStore()
	scope := testsetup.NewTestScope()
	defer scope.Finish()

	now := time.Now()
	seedParties(t, st,
		testParty("A", queue.QueueID, 2, now),
		testParty("B", queue.QueueID, 2, now.Add(time.Second)),
		testParty("C", queue.QueueID, 1, now.Add(2*time.Second)),
	)
	seedTokens(t, st, "server-1", "server-2")

	runner, err := ForQueue(queue, newTestServices(t, st))
	require.NoError(t, err)
	runner.RunCycle(scope)

	remaining, err := st.ListOldestParties(context.Background(), queue.QueueID, 100)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "C", remaining[0].PartyID)
}
