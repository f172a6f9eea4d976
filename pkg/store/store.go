// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package store defines the durable collections the matchmaking engine works
// against: the waiting-party queues, the server token pool and the match
// repository.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

var ErrPartyNotFound = errors.New("party not found")

// QueueStore is the durable collection of waiting parties, ordered by
// arrival time.
type QueueStore interface {
	// UpsertParty inserts the party or, when it already waits somewhere,
	// updates it in place while preserving its original arrival time.
	UpsertParty(ctx context.Context, party models.Party) (models.Party, error)

	// RemoveParty drops a single party; removing an absent party is not an error.
	RemoveParty(ctx context.Context, partyID string) error

	// ListOldestParties returns up to limit parties of the queue in
	// ascending arrival order.
	ListOldestParties(ctx context.Context, queueID string, limit int64) ([]models.Party, error)

	// UpdatePartyRange persists a widened ranked bracket.
	UpdatePartyRange(ctx context.Context, partyID string, rankedMin, rankedMax float64) error

	// ClaimParties atomically consumes the given parties from the queue.
	// Either every party is still waiting and all are claimed, or none are
	// touched and the missing ids are returned.
	ClaimParties(ctx context.Context, queueID string, partyIDs []string) (missing []string, err error)

	// ReturnParties puts claimed parties back at their original queue
	// positions after a failed match creation.
	ReturnParties(ctx context.Context, parties []models.Party) error

	// RemoveParties deletes consumed party records, best effort.
	RemoveParties(ctx context.Context, partyIDs []string) error
}

// ServerPool is the pool of single-use server access tokens.
type ServerPool interface {
	RegisterServerToken(ctx context.Context, token string) error

	// ClaimOldestServerToken atomically removes and returns the oldest
	// registered token, or nil when the pool is empty.
	ClaimOldestServerToken(ctx context.Context) (*models.ServerToken, error)

	// ReturnServerToken puts a claimed token back after a failed match creation.
	ReturnServerToken(ctx context.Context, token models.ServerToken) error
}

// MatchRepository stores created matches and the party-to-match lookups used
// by re-polling clients.
type MatchRepository interface {
	RecordMatch(ctx context.Context, queueID string, teams [][]int64, serverAccessToken string) (models.Match, error)
	RecordFoundParties(ctx context.Context, partyIDs []string, matchID string) error
	FindMatchForParty(ctx context.Context, partyID string) (*models.Match, error)
}

type Store interface {
	QueueStore
	ServerPool
	MatchRepository

	Ping(ctx context.Context) error
	Close() error
}

// Expiry bundles the retention windows applied to stored records.
type Expiry struct {
	Queue      time.Duration
	Server     time.Duration
	Match      time.Duration
	FoundParty time.Duration
}

// DefaultExpiry mirrors the retention the service has always used: two hours
// for waiting parties and unclaimed tokens, ten minutes for match records.
func DefaultExpiry() Expiry {
	return Expiry{
		Queue:      2 * time.Hour,
		Server:     2 * time.Hour,
		Match:      10 * time.Minute,
		FoundParty: 2 * time.Hour,
	}
}
