package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/ookbridge/internal/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig configures a RedisPublisher.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Timeout bounds each PUBLISH. Zero means 2 seconds.
	Timeout time.Duration
}

// redisClient is the subset of *redis.Client the publisher uses.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisPublisher publishes each message on the Redis channel named after
// its topic, so subscribers can PSUBSCRIBE "exp/*".
type RedisPublisher struct {
	client  redisClient
	addr    string
	timeout time.Duration
}

// NewRedisPublisher connects to Redis and checks the connection with PING.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	p := newRedisPublisher(cfg, client)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	logging.Info("Connected to Redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return p, nil
}

func newRedisPublisher(cfg RedisConfig, client redisClient) *RedisPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisPublisher{client: client, addr: cfg.Addr, timeout: timeout}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(topic, payload string) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", topic, p.addr, err)
	}
	return nil
}

// Close closes the connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Name implements Named.
func (p *RedisPublisher) Name() string {
	return "redis"
}
