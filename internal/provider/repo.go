package provider

import (
	"github.com/updateserve/omaha-backend/internal/logic"
	"github.com/updateserve/omaha-backend/internal/repo"

	"github.com/google/wire"
)

var RepoSet = wire.NewSet(
	repo.NewRepo,
	repo.NewQuery,
	repo.NewApplication,
	repo.NewVersion,
	repo.NewStats,
	wire.Bind(new(logic.Repository), new(*repo.Query)),
	wire.Bind(new(logic.ChannelResolver), new(*repo.Query)),
	wire.Bind(new(logic.StatsStore), new(*repo.Stats)),
)
