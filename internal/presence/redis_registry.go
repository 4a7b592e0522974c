package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentmart/relay-service/internal/config"
	"github.com/agentmart/relay-service/pkg/log"
)

type redisRegistry struct {
	client            *redis.Client
	prefix            string
	keyTTL            time.Duration
	heartbeatInterval time.Duration
	counts            map[string]int // userID -> live connections on this instance
	mu                sync.RWMutex
	cancel            context.CancelFunc
}

// NewRedisRegistry creates a Redis-backed presence mirror.
func NewRedisRegistry(cfg config.RedisConfig) (Registry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisRegistry{
		client:            client,
		prefix:            cfg.PresencePrefix,
		keyTTL:            cfg.KeyTTL,
		heartbeatInterval: cfg.HeartbeatInterval,
		counts:            make(map[string]int),
	}, nil
}

func (r *redisRegistry) keyFor(userID string) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, userID)
}

func (r *redisRegistry) ConnectionOpened(ctx context.Context, userID string) error {
	key := r.keyFor(userID)

	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record connection: %w", err)
	}

	r.mu.Lock()
	r.counts[userID]++
	r.mu.Unlock()
	return nil
}

func (r *redisRegistry) ConnectionClosed(ctx context.Context, userID string) error {
	key := r.keyFor(userID)

	remaining, err := r.client.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record disconnect: %w", err)
	}
	if remaining <= 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to clear presence key: %w", err)
		}
	}

	r.mu.Lock()
	if r.counts[userID] > 1 {
		r.counts[userID]--
	} else {
		delete(r.counts, userID)
	}
	r.mu.Unlock()
	return nil
}

func (r *redisRegistry) StartHeartbeat(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	go r.heartbeatLoop(ctx)
	l := log.L()
	l.Info().Dur("interval", r.heartbeatInterval).Dur("ttl", r.keyTTL).Msg("presence heartbeat started")
	return nil
}

func (r *redisRegistry) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(r.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshKeys(ctx)
		}
	}
}

func (r *redisRegistry) refreshKeys(ctx context.Context) {
	r.mu.RLock()
	users := make([]string, 0, len(r.counts))
	for u := range r.counts {
		users = append(users, u)
	}
	r.mu.RUnlock()

	for _, u := range users {
		if err := r.client.Expire(ctx, r.keyFor(u), r.keyTTL).Err(); err != nil {
			l := log.L()
			l.Error().Str(log.FieldUserID, u).Err(err).Msg("failed to refresh presence key")
		}
	}
}

func (r *redisRegistry) StopHeartbeat() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *redisRegistry) Close() error {
	r.StopHeartbeat()
	return r.client.Close()
}
