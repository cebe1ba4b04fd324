package db

import (
	"context"

	"github.com/updateserve/omaha-backend/internal/config"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func NewRedis() *redis.Client {
	var (
		conf = config.GConfig
	)
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		DB:       conf.Redis.DB,
		Username: conf.Redis.Username,
		Password: conf.Redis.Password,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		panic(errors.WithMessage(err, "failed to ping redis"))
	}
	return client
}

func NewRedSync(client *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(client))
}
