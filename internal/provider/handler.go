package provider

import (
	"github.com/updateserve/omaha-backend/internal/handler"

	"github.com/google/wire"
)

var HandlerSet = wire.NewSet(
	handler.NewUpdateHandler,
	handler.NewSparkleHandler,
	handler.NewAdminHandler,
	handler.NewMetricsHandler,
	handler.NewHealthCheckHandler,
)
