// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

type JoinQueueRequest struct {
	PartyID           string   `json:"partyId"`
	UserIDs           []int64  `json:"userIds"`
	QueueID           string   `json:"queueId"`
	RankedValue       *float64 `json:"rankedValue,omitempty"`
	ServerAccessToken *string  `json:"serverAccessToken,omitempty"`
}

type LeaveQueueRequest struct {
	PartyID string `json:"partyId"`
}

type QueueResponse struct {
	Success   bool          `json:"success"`
	Status    string        `json:"status,omitempty"`
	MatchData *models.Match `json:"matchData,omitempty"`
	QueueData *models.Party `json:"queueData,omitempty"`
}

const (
	statusFoundMatch       = "FoundMatch"
	statusInQueue          = "InQueue"
	statusRemovedFromQueue = "RemovedFromQueue"
)

func (s *Server) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	var req JoinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.PartyID == "" {
		writeError(w, http.StatusBadRequest, "Party id is required")
		return
	}
	if len(req.UserIDs) == 0 {
		writeError(w, http.StatusBadRequest, "User ids are required")
		return
	}

	queueConfig, ok := s.queues[req.QueueID]
	if !ok {
		writeError(w, http.StatusNotFound, "Queue not found")
		return
	}

	if len(req.UserIDs) > queueConfig.MaxPartySize() {
		writeError(w, http.StatusBadRequest, "Too many users for this queue")
		return
	}

	if queueConfig.QueueType == models.QueueTypeRanked && req.RankedValue == nil {
		writeError(w, http.StatusBadRequest, "Ranked value is required")
		return
	}

	ctx := r.Context()

	if req.ServerAccessToken != nil && *req.ServerAccessToken != "" {
		if err := s.store.RegisterServerToken(ctx, *req.ServerAccessToken); err != nil {
			logrus.WithError(err).Warn("failed to register server access token")
		}
	}

	if match, err := s.store.FindMatchForParty(ctx, req.PartyID); err == nil && match != nil {
		writeJSON(w, http.StatusOK, QueueResponse{
			Success:   true,
			Status:    statusFoundMatch,
			MatchData: match,
		})
		return
	}

	party, err := s.store.UpsertParty(ctx, models.Party{
		PartyID:     req.PartyID,
		UserIDs:     req.UserIDs,
		QueueID:     req.QueueID,
		RankedValue: req.RankedValue,
	})
	if err != nil {
		logrus.WithError(err).WithField("partyID", req.PartyID).Error("failed to upsert party")
		writeJSON(w, http.StatusOK, QueueResponse{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, QueueResponse{
		Success:   true,
		Status:    statusInQueue,
		QueueData: &party,
	})
}

func (s *Server) handleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	var req LeaveQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.PartyID == "" {
		writeError(w, http.StatusBadRequest, "Party id is required")
		return
	}

	ctx := r.Context()

	if match, err := s.store.FindMatchForParty(ctx, req.PartyID); err == nil && match != nil {
		writeJSON(w, http.StatusOK, QueueResponse{
			Success:   true,
			Status:    statusFoundMatch,
			MatchData: match,
		})
		return
	}

	// success even when the party was not waiting, so the client can treat
	// leave as idempotent
	if err := s.store.RemoveParty(ctx, req.PartyID); err != nil {
		logrus.WithError(err).WithField("partyID", req.PartyID).Error("failed to remove party")
		writeJSON(w, http.StatusOK, QueueResponse{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, QueueResponse{
		Success: true,
		Status:  statusRemovedFromQueue,
	})
}
