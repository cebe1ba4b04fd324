package provider

import (
	"github.com/updateserve/omaha-backend/internal/logic"
	"github.com/updateserve/omaha-backend/internal/storage"

	"github.com/google/wire"
)

var LogicSet = wire.NewSet(
	logic.NewRedisActivity,
	logic.NewRolloutLogic,
	logic.NewUpdateLogic,
	logic.NewStatsLogic,
	logic.NewSparkleLogic,
	logic.NewAdminLogic,
	storage.NewFileStore,
	wire.Bind(new(logic.ActivityChecker), new(*logic.RedisActivity)),
	wire.Bind(new(logic.Recorder), new(*logic.StatsLogic)),
	wire.Bind(new(storage.Store), new(*storage.FileStore)),
)
