// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package matchmaker contains the per-queue discovery algorithms, the team
// packer and the match-creation protocol.
package matchmaker

import (
	"cmp"
	"slices"

	pie "github.com/elliotchance/pie/v2"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

// PackedMatch is an exact-fill team assignment produced by PackTeams.
type PackedMatch struct {
	Teams       [][]int64
	Parties     []models.Party
	PartiesUsed []string
}

// PackTeams greedily packs parties into teamsPerMatch teams of exactly
// usersPerTeam users, largest parties first. A party that fits no team is
// skipped and never split. It returns ok=false when the given parties cannot
// fill every team exactly; in that case no partial assignment is exposed.
func PackTeams(parties []models.Party, teamsPerMatch, usersPerTeam int) (PackedMatch, bool) {
	if teamsPerMatch <= 0 || usersPerTeam <= 0 {
		return PackedMatch{}, false
	}

	// stable sort keeps equally sized parties in arrival order so packing
	// stays reproducible
	sorted := slices.Clone(parties)
	slices.SortStableFunc(sorted, func(a, b models.Party) int {
		return cmp.Compare(b.CountPlayer(), a.CountPlayer())
	})

	teams := make([][]int64, teamsPerMatch)
	for i := range teams {
		teams[i] = make([]int64, 0, usersPerTeam)
	}

	used := make([]models.Party, 0, len(sorted))
	for _, party := range sorted {
		for t := range teams {
			if len(teams[t])+party.CountPlayer() <= usersPerTeam {
				teams[t] = append(teams[t], party.UserIDs...)
				used = append(used, party)
				break
			}
		}

		if allTeamsFull(teams, usersPerTeam) {
			return PackedMatch{
				Teams:   teams,
				Parties: used,
				PartiesUsed: pie.Map(used, func(p models.Party) string {
					return p.PartyID
				}),
			}, true
		}
	}

	return PackedMatch{}, false
}

func allTeamsFull(teams [][]int64, usersPerTeam int) bool {
	for _, team := range teams {
		if len(team) != usersPerTeam {
			return false
		}
	}
	return true
}

func countPlayers(parties []models.Party) int {
	count := 0
	for _, party := range parties {
		count += party.CountPlayer()
	}
	return count
}
