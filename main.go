package main

import (
	"context"

	"github.com/updateserve/omaha-backend/internal/application"
	"github.com/updateserve/omaha-backend/internal/cache"
	"github.com/updateserve/omaha-backend/internal/config"
	"github.com/updateserve/omaha-backend/internal/db"
	"github.com/updateserve/omaha-backend/internal/lb"
	"github.com/updateserve/omaha-backend/internal/logger"
	"github.com/updateserve/omaha-backend/internal/pkg/restserver"
	"github.com/updateserve/omaha-backend/internal/repo"
	"github.com/updateserve/omaha-backend/internal/wire"

	"github.com/bytedance/sonic"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "net/http/pprof"

	_ "github.com/updateserve/omaha-backend/internal/banner"
)

const BodyLimit = 16 * 1024 * 1024

func main() {

	setUpConfigAndLog()

	mysql, err := db.NewDataSource()
	if err != nil {
		zap.L().Fatal("failed to connect to database",
			zap.Error(err),
		)
	}

	defer func(dx *sqlx.DB) {
		if err := dx.Close(); err != nil {
			zap.L().Fatal("failed to close database")
		}
	}(mysql)

	if err := repo.NewRepo(mysql).Migrate(context.Background()); err != nil {
		zap.L().Fatal("failed creating schema",
			zap.Error(err),
		)
	}

	// deps
	var (
		conf    = config.GConfig
		redis   = db.NewRedis()
		redSync = db.NewRedSync(redis)
		group   = cache.NewUpdateCacheGroup()
		mirrors = lb.NewWeightedRoundRobin(lb.ParseMirrors(conf.Omaha.Mirrors))
		restApp = fiber.New(fiber.Config{
			BodyLimit:   BodyLimit,
			ProxyHeader: fiber.HeaderXForwardedFor,
			JSONEncoder: sonic.Marshal,
			JSONDecoder: sonic.Unmarshal,
		})
	)

	handlerSet := wire.NewHandlerSet(conf, zap.L(), mysql, redis, redSync, group, mirrors)

	initRoute(restApp, handlerSet)

	app := application.New()
	app.AddAdapter(
		restserver.NewAdapter(restApp),
		handlerSet.StatsLogic,
	)
	app.Run(context.Background())
}

func setUpConfigAndLog() {
	config.GConfig = config.New()
	zap.ReplaceGlobals(logger.New(config.GConfig))
}

func initRoute(app *fiber.App, handlerSet *wire.HandlerSet) {
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: zap.L(),
	}))

	r := app.Group("/")

	handlerSet.UpdateHandler.Register(r)

	handlerSet.SparkleHandler.Register(r)

	handlerSet.AdminHandler.Register(r)

	handlerSet.MetricsHandler.Register(r)

	handlerSet.HealthCheckHandler.Register(r)
}
