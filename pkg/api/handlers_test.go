// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
)

func testQueues() []models.QueueConfig {
	return []models.QueueConfig{
		{
			QueueID:                 "Casual2v2",
			QueueType:               models.QueueTypeNormal,
			UsersPerTeam:            2,
			TeamsPerMatch:           2,
			DiscoverMatchesInterval: 5,
		},
		{
			QueueID:                 "Ranked2v2",
			QueueType:               models.QueueTypeRanked,
			UsersPerTeam:            2,
			TeamsPerMatch:           2,
			DiscoverMatchesInterval: 5,
			SearchRange:             &[2]float64{0, 0},
			IncrementRange:          &[2]float64{1, 1},
		},
	}
}

func newTestServer(authKey string) (*Server, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewServer(authKey, testQueues(), st, nil), st
}

func doRequest(t *testing.T, srv *Server, method, path, authKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if authKey != "" {
		req.Header.Set("Authorization", authKey)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeQueueResponse(t *testing.T, rec *httptest.ResponseRecorder) QueueResponse {
	t.Helper()
	var resp QueueResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func Test_JoinQueue_PutsPartyInQueue(t *testing.T) {
	srv, st := newTestServer("")

	rec := doRequest(t, srv, http.MethodPost, "/v1/join-queue", "", JoinQueueRequest{
		PartyID: "party-1",
		UserIDs: []int64{1, 2},
		QueueID: "Casual2v2",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeQueueResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "InQueue", resp.Status)
	require.NotNil(t, resp.QueueData)
	assert.Equal(t, "party-1", resp.QueueData.PartyID)
	assert.False(t, resp.QueueData.TimeAdded.IsZero())

	parties, err := st.ListOldestParties(context.Background(), "Casual2v2", 10)
	require.NoError(t, err)
	require.Len(t, parties, 1)
}

func Test_JoinQueue_Validation(t *testing.T) {
	srv, _ := newTestServer("")

	tests := []struct {
		name       string
		req        JoinQueueRequest
		wantStatus int
	}{
		{
			name:       "missing party id",
			req:        JoinQueueRequest{UserIDs: []int64{1}, QueueID: "Casual2v2"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing user ids",
			req:        JoinQueueRequest{PartyID: "p", QueueID: "Casual2v2"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown queue",
			req:        JoinQueueRequest{PartyID: "p", UserIDs: []int64{1}, QueueID: "Nope"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "party larger than a team",
			req:        JoinQueueRequest{PartyID: "p", UserIDs: []int64{1, 2, 3}, QueueID: "Casual2v2"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ranked without ranked value",
			req:        JoinQueueRequest{PartyID: "p", UserIDs: []int64{1, 2}, QueueID: "Ranked2v2"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/v1/join-queue", "", tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func Test_JoinQueue_ReturnsFoundMatchOnRepoll(t *testing.T) {
	srv, st := newTestServer("")
	ctx := context.Background()

	match, err := st.RecordMatch(ctx, "Casual2v2", [][]int64{{1, 2}, {3, 4}}, "server-1")
	require.NoError(t, err)
	require.NoError(t, st.RecordFoundParties(ctx, []string{"party-1"}, match.MatchID))

	rec := doRequest(t, srv, http.MethodPost, "/v1/join-queue", "", JoinQueueRequest{
		PartyID: "party-1",
		UserIDs: []int64{1, 2},
		QueueID: "Casual2v2",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeQueueResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "FoundMatch", resp.Status)
	require.NotNil(t, resp.MatchData)
	assert.Equal(t, match.MatchID, resp.MatchData.MatchID)

	// the re-poll must not put the party back in the queue
	parties, err := st.ListOldestParties(ctx, "Casual2v2", 10)
	require.NoError(t, err)
	assert.Empty(t, parties)
}

func Test_JoinQueue_RegistersServerToken(t *testing.T) {
	srv, st := newTestServer("")

	token := "server-token-1"
	rec := doRequest(t, srv, http.MethodPost, "/v1/join-queue", "", JoinQueueRequest{
		PartyID:           "party-1",
		UserIDs:           []int64{1, 2},
		QueueID:           "Casual2v2",
		ServerAccessToken: &token,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	claimed, err := st.ClaimOldestServerToken(context.Background())
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, token, claimed.Token)
}

func Test_LeaveQueue_IsIdempotent(t *testing.T) {
	srv, st := newTestServer("")
	ctx := context.Background()

	_, err := st.UpsertParty(ctx, models.Party{PartyID: "party-1", UserIDs: []int64{1}, QueueID: "Casual2v2"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/v1/leave-queue", "", LeaveQueueRequest{PartyID: "party-1"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeQueueResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "RemovedFromQueue", resp.Status)
	}

	parties, err := st.ListOldestParties(ctx, "Casual2v2", 10)
	require.NoError(t, err)
	assert.Empty(t, parties)
}

func Test_LeaveQueue_ReportsFoundMatch(t *testing.T) {
	srv, st := newTestServer("")
	ctx := context.Background()

	match, err := st.RecordMatch(ctx, "Casual2v2", [][]int64{{1}, {2}}, "server-1")
	require.NoError(t, err)
	require.NoError(t, st.RecordFoundParties(ctx, []string{"party-1"}, match.MatchID))

	rec := doRequest(t, srv, http.MethodPost, "/v1/leave-queue", "", LeaveQueueRequest{PartyID: "party-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeQueueResponse(t, rec)
	assert.Equal(t, "FoundMatch", resp.Status)
	require.NotNil(t, resp.MatchData)
}

func Test_AuthMiddleware(t *testing.T) {
	srv, _ := newTestServer("secret-key")

	req := JoinQueueRequest{PartyID: "p", UserIDs: []int64{1}, QueueID: "Casual2v2"}

	rec := doRequest(t, srv, http.MethodPost, "/v1/join-queue", "", req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/v1/join-queue", "wrong-key", req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/v1/join-queue", "secret-key", req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays open regardless of the auth key
	healthReq := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	healthRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(healthRec, healthReq)
	assert.Equal(t, http.StatusOK, healthRec.Code)
}

func Test_NotFoundHandler(t *testing.T) {
	srv, _ := newTestServer("")

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Are you lost?", rec.Body.String())
}
