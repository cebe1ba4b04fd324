//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/updateserve/omaha-backend/internal/cache"
	"github.com/updateserve/omaha-backend/internal/config"
	"github.com/updateserve/omaha-backend/internal/lb"
	"github.com/updateserve/omaha-backend/internal/provider"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/wire"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewHandlerSet(
	conf *config.Config,
	logger *zap.Logger,
	dx *sqlx.DB,
	rdb *redis.Client,
	rs *redsync.Redsync,
	cg *cache.UpdateCacheGroup,
	mirrors *lb.WeightedRoundRobin,
) *HandlerSet {
	panic(wire.Build(
		provider.RepoSet,
		provider.LogicSet,
		provider.HandlerSet,
		wire.Struct(new(HandlerSet), "*"),
	))
}
