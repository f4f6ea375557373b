package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/TokenLens/riskgate/internal/config"
	"github.com/TokenLens/riskgate/internal/model"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

func verdictKey(tokenAddress string) string {
	return "verdict:" + strings.ToLower(tokenAddress)
}

// SaveVerdict caches one verdict cross-process so sibling instances skip a
// full re-analysis within the TTL.
func (r *RedisClient) SaveVerdict(ctx context.Context, verdict model.RiskVerdict, ttl time.Duration) error {
	payload, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, verdictKey(verdict.TokenAddress), payload, ttl).Err()
}

func (r *RedisClient) GetVerdict(ctx context.Context, tokenAddress string) (*model.RiskVerdict, error) {
	payload, err := r.Client.Get(ctx, verdictKey(tokenAddress)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var verdict model.RiskVerdict
	if err := json.Unmarshal(payload, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}
