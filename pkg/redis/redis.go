package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Connect opens a client and verifies it with a ping.
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return client, nil
}
