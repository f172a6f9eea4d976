// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

// MemoryStore is an in-process Store used by tests and local runs without
// Redis. It keeps the same claim semantics as the Redis implementation.
type MemoryStore struct {
	mu    sync.Mutex
	nowFn func() time.Time
	seq   int64

	parties map[string]*memoryParty
	tokens  []models.ServerToken
	matches map[string]models.Match
	found   map[string]models.FoundParty
}

type memoryParty struct {
	party   models.Party
	seq     int64
	inQueue bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nowFn:   func() time.Time { return time.Now().UTC() },
		parties: make(map[string]*memoryParty),
		matches: make(map[string]models.Match),
		found:   make(map[string]models.FoundParty),
	}
}

// SetNow overrides the store clock, for tests.
func (s *MemoryStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

func (s *MemoryStore) UpsertParty(_ context.Context, party models.Party) (models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.parties[party.PartyID]; ok {
		party.TimeAdded = existing.party.TimeAdded
		party.RankedMin = existing.party.RankedMin
		party.RankedMax = existing.party.RankedMax
		existing.party = party
		existing.inQueue = true
		return party, nil
	}

	if party.TimeAdded.IsZero() {
		party.TimeAdded = s.nowFn()
	}
	s.seq++
	s.parties[party.PartyID] = &memoryParty{party: party, seq: s.seq, inQueue: true}
	return party, nil
}

func (s *MemoryStore) RemoveParty(_ context.Context, partyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.parties, partyID)
	return nil
}

func (s *MemoryStore) ListOldestParties(_ context.Context, queueID string, limit int64) ([]models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}

	entries := make([]*memoryParty, 0, len(s.parties))
	for _, entry := range s.parties {
		if entry.inQueue && entry.party.QueueID == queueID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].party.TimeAdded.Equal(entries[j].party.TimeAdded) {
			return entries[i].seq < entries[j].seq
		}
		return entries[i].party.TimeAdded.Before(entries[j].party.TimeAdded)
	})

	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}

	parties := make([]models.Party, len(entries))
	for i, entry := range entries {
		parties[i] = entry.party
	}
	return parties, nil
}

func (s *MemoryStore) UpdatePartyRange(_ context.Context, partyID string, rankedMin, rankedMax float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	entry.party.RankedMin = &rankedMin
	entry.party.RankedMax = &rankedMax
	return nil
}

func (s *MemoryStore) ClaimParties(_ context.Context, queueID string, partyIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []string
	for _, id := range partyIDs {
		entry, ok := s.parties[id]
		if !ok || !entry.inQueue || entry.party.QueueID != queueID {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return missing, nil
	}

	for _, id := range partyIDs {
		s.parties[id].inQueue = false
	}
	return nil, nil
}

func (s *MemoryStore) ReturnParties(_ context.Context, parties []models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, party := range parties {
		if entry, ok := s.parties[party.PartyID]; ok {
			entry.inQueue = true
			continue
		}
		s.seq++
		s.parties[party.PartyID] = &memoryParty{party: party, seq: s.seq, inQueue: true}
	}
	return nil
}

func (s *MemoryStore) RemoveParties(_ context.Context, partyIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range partyIDs {
		delete(s.parties, id)
	}
	return nil
}

func (s *MemoryStore) RegisterServerToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tokens {
		if existing.Token == token {
			return nil
		}
	}
	s.tokens = append(s.tokens, models.ServerToken{Token: token, RegisteredAt: s.nowFn()})
	return nil
}

func (s *MemoryStore) ClaimOldestServerToken(_ context.Context) (*models.ServerToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tokens) == 0 {
		return nil, nil
	}

	oldest := 0
	for i := 1; i < len(s.tokens); i++ {
		if s.tokens[i].RegisteredAt.Before(s.tokens[oldest].RegisteredAt) {
			oldest = i
		}
	}

	token := s.tokens[oldest]
	s.tokens = append(s.tokens[:oldest], s.tokens[oldest+1:]...)
	return &token, nil
}

func (s *MemoryStore) ReturnServerToken(_ context.Context, token models.ServerToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *MemoryStore) RecordMatch(_ context.Context, queueID string, teams [][]int64, serverAccessToken string) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := models.Match{
		MatchID:           ulid.Make().String(),
		Teams:             teams,
		ServerAccessToken: serverAccessToken,
		QueueID:           queueID,
		CreatedAt:         s.nowFn(),
	}
	s.matches[match.MatchID] = match
	return match, nil
}

func (s *MemoryStore) RecordFoundParties(_ context.Context, partyIDs []string, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.nowFn()
	for _, partyID := range partyIDs {
		s.found[partyID] = models.FoundParty{PartyID: partyID, MatchID: matchID, CreatedAt: createdAt}
	}
	return nil
}

func (s *MemoryStore) FindMatchForParty(_ context.Context, partyID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, ok := s.found[partyID]
	if !ok {
		return nil, nil
	}
	match, ok := s.matches[found.MatchID]
	if !ok {
		return nil, nil
	}
	return &match, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
