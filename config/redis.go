package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis connects the client backing the session cache and the
// alert-dedupe keys. Accepts either a bare host:port or a redis:// URL.
func InitRedis() error {
	val := os.Getenv("REDIS_URL")
	if val == "" {
		val = os.Getenv("REDIS_ADDR")
	}
	if val == "" {
		return errors.New("REDIS_URL (or REDIS_ADDR) environment variable is not set")
	}

	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		opt, err := redis.ParseURL(val)
		if err != nil {
			return err
		}
		RedisClient = redis.NewClient(opt)
	} else {
		RedisClient = redis.NewClient(&redis.Options{Addr: val})
	}

	return RedisClient.Ping(context.Background()).Err()
}
