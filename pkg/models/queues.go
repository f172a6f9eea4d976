// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"time"
)

// QueueType selects the discovery algorithm for a queue.
type QueueType string

const (
	QueueTypeNormal  QueueType = "normal"
	QueueTypeDynamic QueueType = "dynamic"
	QueueTypeRanked  QueueType = "ranked"
)

// QueueConfig is the immutable per-queue configuration, loaded once at
// process start. Range pairs are [low, high].
type QueueConfig struct {
	QueueID   string    `json:"queueId"`
	QueueType QueueType `json:"queueType"`

	UsersPerTeam  int `json:"usersPerTeam"`
	TeamsPerMatch int `json:"teamsPerMatch"`

	// DiscoverMatchesInterval is the pause between discovery cycles in seconds.
	DiscoverMatchesInterval int `json:"discoverMatchesInterval"`

	// dynamic queues only
	MinUsersPerTeam              int `json:"minUsersPerTeam,omitempty"`
	MaxUsersPerTeam              int `json:"maxUsersPerTeam,omitempty"`
	TimeElapsedToUseMinimumUsers int `json:"timeElapsedToUseMinimumUsers,omitempty"`

	// ranked queues only
	SearchRange       *[2]float64 `json:"searchRange,omitempty"`
	IncrementRange    *[2]float64 `json:"incrementRange,omitempty"`
	IncrementRangeMax *[2]float64 `json:"incrementRangeMax,omitempty"`
}

func (q QueueConfig) Interval() time.Duration {
	return time.Duration(q.DiscoverMatchesInterval) * time.Second
}

// RequiredPlayers is the exact player count one match consumes.
func (q QueueConfig) RequiredPlayers(usersPerTeam int) int {
	return q.TeamsPerMatch * usersPerTeam
}

// MaxPartySize is the largest party the join surface accepts for this queue.
func (q QueueConfig) MaxPartySize() int {
	if q.QueueType == QueueTypeDynamic {
		return q.MaxUsersPerTeam
	}
	return q.UsersPerTeam
}

// Validate checks queue parameters for internal consistency.
func (q *QueueConfig) Validate() error {
	if q.QueueID == "" {
		return ValidationErrorMissingQueueID
	}

	switch q.QueueType {
	case QueueTypeNormal, QueueTypeDynamic, QueueTypeRanked:
	default:
		return ValidationErrorUnknownQueueType
	}

	if q.TeamsPerMatch <= 0 {
		return ValidationErrorTeamsPerMatch
	}

	if q.QueueType == QueueTypeDynamic {
		if q.MinUsersPerTeam <= 0 || q.MaxUsersPerTeam < q.MinUsersPerTeam {
			return ValidationErrorDynamicTeamSize
		}
	} else if q.UsersPerTeam <= 0 {
		return ValidationErrorUsersPerTeam
	}

	if q.QueueType == QueueTypeRanked {
		if q.SearchRange == nil || q.IncrementRange == nil {
			return ValidationErrorRankedRanges
		}
		if q.SearchRange[0] < 0 || q.SearchRange[1] < 0 ||
			q.IncrementRange[0] < 0 || q.IncrementRange[1] < 0 {
			return ValidationErrorNegativeRange
		}
		if q.IncrementRangeMax != nil &&
			(q.IncrementRangeMax[0] < 0 || q.IncrementRangeMax[1] < 0) {
			return ValidationErrorNegativeRange
		}
	}

	return nil
}

// SetDefaultValues fills values that may be omitted from a queue definition.
func (q *QueueConfig) SetDefaultValues() {
	if q.DiscoverMatchesInterval <= 0 {
		q.DiscoverMatchesInterval = 5
	}
	if q.QueueType == QueueTypeDynamic && q.UsersPerTeam == 0 {
		q.UsersPerTeam = q.MaxUsersPerTeam
	}
}

// DefaultQueues is the queue set used when no queue definition file is given.
func DefaultQueues() []QueueConfig {
	return []QueueConfig{
		{
			QueueID:   "Ranked2v2",
			QueueType: QueueTypeRanked,

			UsersPerTeam:  2,
			TeamsPerMatch: 2,

			DiscoverMatchesInterval: 5,

			SearchRange:    &[2]float64{0, 0},
			IncrementRange: &[2]float64{1, 1},
		},
	}
}
