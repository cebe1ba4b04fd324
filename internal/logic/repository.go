package logic

import (
	"context"
	"time"

	"github.com/updateserve/omaha-backend/internal/model"
)

// Repository is the read surface the decision path depends on. A
// missing record is (nil, nil); errors are infrastructure faults only.
type Repository interface {
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	ListEnabledVersions(ctx context.Context, appID, platform, channel string) ([]*model.Version, error)
	GetPartialUpdate(ctx context.Context, versionID int64) (*model.PartialUpdate, error)
	ListActions(ctx context.Context, versionID int64, events ...model.EventType) ([]*model.Action, error)
	ListData(ctx context.Context, appID string) ([]*model.DataRecord, error)
	ListEnabledSparkleVersions(ctx context.Context, appName, channel string) ([]*model.SparkleVersion, error)
}

// ActivityChecker answers whether a client was seen recently enough to
// fall into an active-users rollout cohort.
type ActivityChecker interface {
	ActiveSince(ctx context.Context, userID string, since time.Time) (bool, error)
}

// Recorder receives a decided request for asynchronous persistence.
// Implementations must never block the caller.
type Recorder interface {
	Record(req *model.UpdateRequest, ip string)
}
