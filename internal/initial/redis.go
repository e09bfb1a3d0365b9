package initial

import (
	"context"

	"ChatEduca/internal/config"
	"ChatEduca/pkg/redis"
	"ChatEduca/pkg/zlog"

	"go.uber.org/zap"
)

// OpenRedis returns nil when redis is not configured or unreachable; callers
// fall back to in-process rate limiting.
func OpenRedis(ctx context.Context, conf config.RedisConfig) *redis.Client {
	addr := conf.Addr()
	if addr == "" {
		zlog.Info("redis not configured, skipping")
		return nil
	}

	zlog.Info("redis connecting", zap.String("addr", addr))
	client, err := redis.New(ctx, redis.Options{
		Addr:         addr,
		Password:     conf.Password,
		DB:           conf.DB,
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})
	if err != nil {
		zlog.Error("redis connect failed", zap.Error(err))
		return nil
	}
	zlog.Info("redis connected", zap.String("addr", addr))
	return client
}
