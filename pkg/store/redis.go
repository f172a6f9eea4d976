// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

const defaultOpTimeout = 2 * time.Second

// claimPartiesScript consumes queue membership all-or-nothing: when any
// requested party is no longer waiting the script removes nothing and
// returns the missing ids.
var claimPartiesScript = redis.NewScript(`
local missing = {}
for i = 1, #ARGV do
	if redis.call('ZSCORE', KEYS[1], ARGV[i]) == false then
		missing[#missing + 1] = ARGV[i]
	end
end
if #missing > 0 then
	return missing
end
for i = 1, #ARGV do
	redis.call('ZREM', KEYS[1], ARGV[i])
end
return missing
`)

// RedisStore implements Store on a single Redis instance. Queues are sorted
// sets scored by arrival time, party documents are JSON values expiring on
// their retention TTL.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	expiry  Expiry
	timeout time.Duration
	nowFn   func() time.Time
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int

	KeyPrefix        string
	OperationTimeout time.Duration
}

func NewRedisStore(ctx context.Context, cfg RedisConfig, expiry Expiry) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "mmq"
	}

	s := &RedisStore{
		client:  client,
		prefix:  prefix,
		expiry:  expiry,
		timeout: timeout,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return s, nil
}

func (s *RedisStore) queueKey(queueID string) string {
	return fmt.Sprintf("%s:queue:%s", s.prefix, queueID)
}

func (s *RedisStore) partyKey(partyID string) string {
	return fmt.Sprintf("%s:party:%s", s.prefix, partyID)
}

func (s *RedisStore) serversKey() string {
	return fmt.Sprintf("%s:servers", s.prefix)
}

func (s *RedisStore) matchKey(matchID string) string {
	return fmt.Sprintf("%s:match:%s", s.prefix, matchID)
}

func (s *RedisStore) foundPartyKey(partyID string) string {
	return fmt.Sprintf("%s:foundparty:%s", s.prefix, partyID)
}

func (s *RedisStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *RedisStore) UpsertParty(ctx context.Context, party models.Party) (models.Party, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	existing, err := s.getParty(ctx, party.PartyID)
	if err != nil && !errors.Is(err, ErrPartyNotFound) {
		return models.Party{}, err
	}

	if existing != nil {
		// keep the original position in line, and any widened bracket
		party.TimeAdded = existing.TimeAdded
		party.RankedMin = existing.RankedMin
		party.RankedMax = existing.RankedMax

		if existing.QueueID != party.QueueID {
			if err := s.client.ZRem(ctx, s.queueKey(existing.QueueID), party.PartyID).Err(); err != nil {
				return models.Party{}, err
			}
		}
	} else if party.TimeAdded.IsZero() {
		party.TimeAdded = s.nowFn()
	}

	doc, err := json.Marshal(party)
	if err != nil {
		return models.Party{}, err
	}

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.partyKey(party.PartyID), doc, s.expiry.Queue)
		pipe.ZAdd(ctx, s.queueKey(party.QueueID), redis.Z{
			Score:  float64(party.TimeAdded.UnixMilli()),
			Member: party.PartyID,
		})
		return nil
	})
	if err != nil {
		return models.Party{}, err
	}

	return party, nil
}

func (s *RedisStore) RemoveParty(ctx context.Context, partyID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	party, err := s.getParty(ctx, partyID)
	if errors.Is(err, ErrPartyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.queueKey(party.QueueID), partyID)
		pipe.Del(ctx, s.partyKey(partyID))
		return nil
	})
	return err
}

func (s *RedisStore) ListOldestParties(ctx context.Context, queueID string, limit int64) ([]models.Party, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if limit <= 0 {
		return nil, nil
	}

	ids, err := s.client.ZRange(ctx, s.queueKey(queueID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.partyKey(id)
	}

	docs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	parties := make([]models.Party, 0, len(ids))
	var orphans []interface{}
	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// document expired while still listed, drop the leftover entry
			orphans = append(orphans, ids[i])
			continue
		}
		var party models.Party
		if err := json.Unmarshal([]byte(raw), &party); err != nil {
			orphans = append(orphans, ids[i])
			continue
		}
		parties = append(parties, party)
	}

	if len(orphans) > 0 {
		s.client.ZRem(ctx, s.queueKey(queueID), orphans...)
	}

	return parties, nil
}

func (s *RedisStore) UpdatePartyRange(ctx context.Context, partyID string, rankedMin, rankedMax float64) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	party, err := s.getParty(ctx, partyID)
	if err != nil {
		return err
	}

	party.RankedMin = &rankedMin
	party.RankedMax = &rankedMax

	doc, err := json.Marshal(party)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.partyKey(partyID), doc, redis.KeepTTL).Err()
}

func (s *RedisStore) ClaimParties(ctx context.Context, queueID string, partyIDs []string) ([]string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	args := make([]interface{}, len(partyIDs))
	for i, id := range partyIDs {
		args[i] = id
	}

	res, err := claimPartiesScript.Run(ctx, s.client, []string{s.queueKey(queueID)}, args...).Result()
	if err != nil {
		return nil, err
	}

	rows, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected claim reply type %T", res)
	}

	missing := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row.(string); ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *RedisStore) ReturnParties(ctx context.Context, parties []models.Party) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, party := range parties {
			pipe.ZAdd(ctx, s.queueKey(party.QueueID), redis.Z{
				Score:  float64(party.TimeAdded.UnixMilli()),
				Member: party.PartyID,
			})
		}
		return nil
	})
	return err
}

func (s *RedisStore) RemoveParties(ctx context.Context, partyIDs []string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	keys := make([]string, len(partyIDs))
	for i, id := range partyIDs {
		keys[i] = s.partyKey(id)
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) RegisterServerToken(ctx context.Context, token string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.client.ZAddNX(ctx, s.serversKey(), redis.Z{
		Score:  float64(s.nowFn().UnixMilli()),
		Member: token,
	}).Err()
}

func (s *RedisStore) ClaimOldestServerToken(ctx context.Context) (*models.ServerToken, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	for {
		popped, err := s.client.ZPopMin(ctx, s.serversKey(), 1).Result()
		if err != nil {
			return nil, err
		}
		if len(popped) == 0 {
			return nil, nil
		}

		registeredAt := time.UnixMilli(int64(popped[0].Score)).UTC()
		if s.expiry.Server > 0 && s.nowFn().Sub(registeredAt) > s.expiry.Server {
			// stale registration, keep draining
			continue
		}

		token, _ := popped[0].Member.(string)
		return &models.ServerToken{Token: token, RegisteredAt: registeredAt}, nil
	}
}

func (s *RedisStore) ReturnServerToken(ctx context.Context, token models.ServerToken) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.client.ZAdd(ctx, s.serversKey(), redis.Z{
		Score:  float64(token.RegisteredAt.UnixMilli()),
		Member: token.Token,
	}).Err()
}

func (s *RedisStore) RecordMatch(ctx context.Context, queueID string, teams [][]int64, serverAccessToken string) (models.Match, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	match := models.Match{
		MatchID:           ulid.Make().String(),
		Teams:             teams,
		ServerAccessToken: serverAccessToken,
		QueueID:           queueID,
		CreatedAt:         s.nowFn(),
	}

	doc, err := json.Marshal(match)
	if err != nil {
		return models.Match{}, err
	}

	if err := s.client.Set(ctx, s.matchKey(match.MatchID), doc, s.expiry.Match).Err(); err != nil {
		return models.Match{}, err
	}

	return match, nil
}

func (s *RedisStore) RecordFoundParties(ctx context.Context, partyIDs []string, matchID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	createdAt := s.nowFn()
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, partyID := range partyIDs {
			doc, err := json.Marshal(models.FoundParty{
				PartyID:   partyID,
				MatchID:   matchID,
				CreatedAt: createdAt,
			})
			if err != nil {
				return err
			}
			pipe.Set(ctx, s.foundPartyKey(partyID), doc, s.expiry.FoundParty)
		}
		return nil
	})
	return err
}

func (s *RedisStore) FindMatchForParty(ctx context.Context, partyID string) (*models.Match, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	raw, err := s.client.Get(ctx, s.foundPartyKey(partyID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var found models.FoundParty
	if err := json.Unmarshal([]byte(raw), &found); err != nil {
		return nil, err
	}

	raw, err = s.client.Get(ctx, s.matchKey(found.MatchID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var match models.Match
	if err := json.Unmarshal([]byte(raw), &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getParty(ctx context.Context, partyID string) (*models.Party, error) {
	raw, err := s.client.Get(ctx, s.partyKey(partyID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPartyNotFound
	}
	if err != nil {
		return nil, err
	}

	var party models.Party
	if err := json.Unmarshal([]byte(raw), &party); err != nil {
		return nil, err
	}
	return &party, nil
}
