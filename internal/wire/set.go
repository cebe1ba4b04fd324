package wire

import (
	"github.com/updateserve/omaha-backend/internal/handler"
	"github.com/updateserve/omaha-backend/internal/logic"
)

// HandlerSet bundles everything main wires into the fiber app. The
// stats collector rides along because the app runner starts and stops
// its workers.
type HandlerSet struct {
	UpdateHandler      *handler.UpdateHandler
	SparkleHandler     *handler.SparkleHandler
	AdminHandler       *handler.AdminHandler
	MetricsHandler     *handler.MetricsHandler
	HealthCheckHandler *handler.HealthCheckHandler
	StatsLogic         *logic.StatsLogic
}
