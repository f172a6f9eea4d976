// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package models contains the data objects shared by the queue matchmaker:
// waiting parties, created matches, server access tokens and queue definitions.
package models

import (
	"time"
)

// Party is one waiting group in a queue. PartyID is caller-supplied and
// unique across queues; a party belongs to exactly one queue at a time.
type Party struct {
	PartyID   string    `json:"partyId"`
	UserIDs   []int64   `json:"userIds"`
	QueueID   string    `json:"queueId"`
	TimeAdded time.Time `json:"timeAdded"`

	// ranked specific
	RankedValue *float64 `json:"rankedValue,omitempty"`
	RankedMin   *float64 `json:"rankedMin,omitempty"`
	RankedMax   *float64 `json:"rankedMax,omitempty"`
}

func (p Party) CountPlayer() int {
	return len(p.UserIDs)
}

// HasRankedValue reports whether the party carries a usable ranked value.
func (p Party) HasRankedValue() bool {
	return p.RankedValue != nil
}

// Match is an immutable record of formed teams plus the consumed server token.
type Match struct {
	MatchID           string    `json:"matchId"`
	Teams             [][]int64 `json:"teams"`
	ServerAccessToken string    `json:"serverAccessToken"`
	QueueID           string    `json:"queueId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// FoundParty maps a consumed party back to its match so a client that lost
// its join request can re-poll and discover where it went.
type FoundParty struct {
	PartyID   string    `json:"partyId"`
	MatchID   string    `json:"matchId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServerToken is a single-use server access code held in the resource pool.
type ServerToken struct {
	Token        string    `json:"token"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// MatchStatus values reported by match creation.
const (
	StatusCreatedMatch        = "CreatedMatch"
	StatusNoServerAccessCode  = "NoServerAccessCode"
	StatusFailedToCreateMatch = "FailedToCreateMatch"
	StatusPartyClaimRejected  = "PartyClaimRejected"
)

// MatchResult is the outcome of one match-creation attempt.
type MatchResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Match   *Match `json:"match,omitempty"`

	// LostPartyIDs is set with StatusPartyClaimRejected: parties that were
	// already consumed by another worker and must be dropped from the
	// caller's snapshot before packing again.
	LostPartyIDs []string `json:"-"`
}
