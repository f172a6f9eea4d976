// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
)

var (
	ValidationErrorMissingQueueID   = errors.New("queue id is required")
	ValidationErrorUnknownQueueType = errors.New("queue type must be normal, dynamic or ranked")
	ValidationErrorTeamsPerMatch    = errors.New("teams per match must be positive")
	ValidationErrorUsersPerTeam     = errors.New("users per team must be positive")
	ValidationErrorDynamicTeamSize  = errors.New("dynamic queue needs 0 < minUsersPerTeam <= maxUsersPerTeam")
	ValidationErrorRankedRanges     = errors.New("ranked queue needs searchRange and incrementRange")
	ValidationErrorNegativeRange    = errors.New("range values cannot be negative")
)

var validationErrorCodeMap = map[error]int{
	ValidationErrorMissingQueueID:   510210,
	ValidationErrorUnknownQueueType: 510211,
	ValidationErrorTeamsPerMatch:    510212,
	ValidationErrorUsersPerTeam:     510213,
	ValidationErrorDynamicTeamSize:  510214,
	ValidationErrorRankedRanges:     510215,
	ValidationErrorNegativeRange:    510216,
}

// ValidationErrorCode returns a code for the error.
// It returns 20002 if the error is not registered in the map.
func ValidationErrorCode(err error) int {
	code, ok := validationErrorCodeMap[err]
	if !ok {
		return 20002
	}
	return code
}
