// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package matchmaker

import (
	"github.com/AccelByte/queue-matchmaker/pkg/common"
	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/metrics"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
)

// MatchCreator turns a packed team assignment into a persisted match:
// claim a server token, claim the consumed parties, record the match, then
// best-effort cleanup. Rollbacks return the token and parties on failure so
// neither is leaked.
type MatchCreator interface {
	CreateMatch(scope *envelope.Scope, queue models.QueueConfig, packed PackedMatch) models.MatchResult
}

type matchCreator struct {
	store   store.Store
	metrics metrics.MatchmakingMetrics
}

func NewMatchCreator(st store.Store, m metrics.MatchmakingMetrics) MatchCreator {
	return &matchCreator{store: st, metrics: m}
}

func (c *matchCreator) CreateMatch(parentScope *envelope.Scope, queue models.QueueConfig, packed PackedMatch) models.MatchResult {
	scope := parentScope.NewChildScope("createMatch")
	defer scope.Finish()
	scope.SetAttributes("queueID", queue.QueueID)
	scope.SetAttributes("parties", len(packed.PartiesUsed))

	log := scope.Log.WithField("queueID", queue.QueueID)

	token, err := c.store.ClaimOldestServerToken(scope.Ctx)
	if err != nil {
		log.WithError(err).Warn("failed to claim server access token")
		token = nil
	}
	if token == nil {
		return c.failed(queue, models.StatusNoServerAccessCode)
	}

	// the parties must all still be waiting; another worker may have
	// consumed some of them since this snapshot was taken
	missing, err := c.store.ClaimParties(scope.Ctx, queue.QueueID, packed.PartiesUsed)
	if err != nil {
		log.WithError(err).Warn("failed to claim parties")
		c.returnToken(scope, *token)
		return c.failed(queue, models.StatusFailedToCreateMatch)
	}
	if len(missing) > 0 {
		c.returnToken(scope, *token)
		result := c.failed(queue, models.StatusPartyClaimRejected)
		result.LostPartyIDs = missing
		return result
	}

	match, err := c.store.RecordMatch(scope.Ctx, queue.QueueID, packed.Teams, token.Token)
	if err != nil {
		log.WithError(err).Error("failed to persist match")
		c.returnToken(scope, *token)
		if err := c.store.ReturnParties(scope.Ctx, packed.Parties); err != nil {
			log.WithError(err).Error("failed to return claimed parties to the queue")
		}
		return c.failed(queue, models.StatusFailedToCreateMatch)
	}

	// best-effort cleanup; failures here are logged, never fatal to the cycle
	if err := c.store.RemoveParties(scope.Ctx, packed.PartiesUsed); err != nil {
		log.WithError(err).WithField("matchID", match.MatchID).Warn("failed to remove consumed parties")
	}
	if err := c.store.RecordFoundParties(scope.Ctx, packed.PartiesUsed, match.MatchID); err != nil {
		log.WithError(err).WithField("matchID", match.MatchID).Warn("failed to record found parties")
	}

	scope.SetAttributes("matchID", match.MatchID)
	log.WithField("matchID", match.MatchID).Info("found match")
	log.Debug("match payload: ", common.LogJSONFormatter(match))
	if c.metrics != nil {
		c.metrics.MatchCreated(queue.QueueID)
	}

	return models.MatchResult{Success: true, Status: models.StatusCreatedMatch, Match: &match}
}

func (c *matchCreator) returnToken(scope *envelope.Scope, token models.ServerToken) {
	if err := c.store.ReturnServerToken(scope.Ctx, token); err != nil {
		scope.Log.WithError(err).WithField("token", token.Token).Error("failed to return server access token to the pool")
	}
}

func (c *matchCreator) failed(queue models.QueueConfig, status string) models.MatchResult {
	if c.metrics != nil {
		c.metrics.MatchFailed(queue.QueueID, status)
	}
	return models.MatchResult{Success: false, Status: status}
}
