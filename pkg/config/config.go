// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

type Config struct {
	Address            string `env:"ADDRESS"              envDefault:":3000"  envDocs:"listen address for the HTTP surface"`
	AuthKey            string `env:"AUTH_KEY"             envDefault:""       envDocs:"shared secret required on join/leave requests (empty disables the check)"`
	Environment        string `env:"ENVIRONMENT"          envDefault:"Testing" envDocs:"environment name carried in logs"`
	LogJSON            bool   `env:"LOG_JSON"             envDefault:"false"  envDocs:"emit logs as JSON"`
	MatchmakingEnabled bool   `env:"MATCHMAKING_ENABLED"  envDefault:"true"   envDocs:"start discovery schedulers in this process"`
	QueueConfigPath    string `env:"QUEUE_CONFIG_PATH"    envDefault:""       envDocs:"path of a JSON queue definition file (empty means built-in defaults)"`

	RedisAddr     string `env:"REDIS_ADDR"       envDefault:"localhost:6379" envDocs:"redis address backing the stores"`
	RedisUsername string `env:"REDIS_USERNAME"   envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD"   envDefault:""`
	RedisDB       int    `env:"REDIS_DB"         envDefault:"0"`
	KeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"mmq" envDocs:"prefix for every redis key this process writes"`

	QueueExpireSecond      int `env:"QUEUE_EXPIRE_SECOND"       envDefault:"7200" envDocs:"waiting party TTL"`
	ServerExpireSecond     int `env:"SERVER_EXPIRE_SECOND"      envDefault:"7200" envDocs:"unclaimed server token TTL"`
	MatchExpireSecond      int `env:"MATCH_EXPIRE_SECOND"       envDefault:"600"  envDocs:"created match record TTL"`
	FoundPartyExpireSecond int `env:"FOUND_PARTY_EXPIRE_SECOND" envDefault:"7200" envDocs:"found-party record TTL"`

	PartyFetchLimit int64 `env:"PARTY_FETCH_LIMIT" envDefault:"2500" envDocs:"max parties one discovery cycle snapshots from a queue"`
}

// Load reads process configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadQueues returns the validated queue set. An empty path selects the
// built-in defaults.
func LoadQueues(path string) ([]models.QueueConfig, error) {
	queues := models.DefaultQueues()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read queue config: %w", err)
		}
		queues = nil
		if err := json.Unmarshal(raw, &queues); err != nil {
			return nil, fmt.Errorf("parse queue config: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(queues))
	for i := range queues {
		queues[i].SetDefaultValues()
		if err := queues[i].Validate(); err != nil {
			return nil, fmt.Errorf("queue %q: %w", queues[i].QueueID, err)
		}
		if _, dup := seen[queues[i].QueueID]; dup {
			return nil, fmt.Errorf("queue %q: duplicate queue id", queues[i].QueueID)
		}
		seen[queues[i].QueueID] = struct{}{}
	}

	return queues, nil
}
