package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/internal/intake"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the call session backend. The redis backend needs a
// reachable client; anything else keeps sessions in process memory.
func BuildSessionStore(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (intake.SessionStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.SessionBackend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: SESSION_BACKEND=redis but redis is unavailable at %q", cfg.RedisAddr)
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "idle_ttl", cfg.SessionIdleTTL.String())
		return intake.NewRedisStore(redisClient, cfg.SessionIdleTTL), nil
	case "", "memory":
		logger.Info("using in-memory session store", "max_entries", cfg.SessionMaxEntries, "idle_ttl", cfg.SessionIdleTTL.String())
		return intake.NewMemoryStore(cfg.SessionMaxEntries, cfg.SessionIdleTTL), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

// ConnectPostgresPool returns nil when no database is configured or the
// database cannot be reached.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}
