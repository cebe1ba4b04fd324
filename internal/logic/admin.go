package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/updateserve/omaha-backend/internal/cache"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/pkg/errs"
	"github.com/updateserve/omaha-backend/internal/repo"
	"github.com/updateserve/omaha-backend/internal/storage"
	"github.com/updateserve/omaha-backend/internal/vercomp"

	"github.com/bytedance/sonic"
	"github.com/go-redsync/redsync/v4"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const rolloutDateLayout = "2006-01-02"

// AdminLogic is the management write path: applications, versions,
// artifacts, rollout windows and actions. Writes to one version are
// serialized across instances with a distributed mutex, and every
// successful write evicts the read caches.
type AdminLogic struct {
	logger   *zap.Logger
	apps     *repo.Application
	versions *repo.Version
	store    storage.Store
	activity *RedisActivity
	cg       *cache.UpdateCacheGroup
	rs       *redsync.Redsync
}

func NewAdminLogic(
	logger *zap.Logger,
	apps *repo.Application,
	versions *repo.Version,
	store storage.Store,
	activity *RedisActivity,
	cg *cache.UpdateCacheGroup,
	rs *redsync.Redsync,
) *AdminLogic {
	return &AdminLogic{
		logger:   logger,
		apps:     apps,
		versions: versions,
		store:    store,
		activity: activity,
		cg:       cg,
		rs:       rs,
	}
}

func (l *AdminLogic) CreateApplication(ctx context.Context, param *model.CreateApplicationParam) error {
	err := l.apps.CreateApplication(ctx, &model.Application{
		ID:   param.ID,
		Name: param.Name,
	})
	if err != nil {
		return err
	}
	l.cg.EvictAll()
	return nil
}

// CreateVersion registers an already uploaded artifact as a servable
// version. The artifact digests are recomputed from the stored bytes
// inside the same call, so the row never references stale hashes.
func (l *AdminLogic) CreateVersion(ctx context.Context, param *model.CreateVersionParam) (*model.Version, error) {
	quad, err := vercomp.ParseQuad(param.Version)
	if err != nil || quad.IsZero() {
		return nil, errs.ErrInvalidVersionName.Wrap(err)
	}

	appID := model.NormalizeAppID(param.AppID)
	known, err := l.apps.ExistsApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, errs.ErrAppNotFound
	}

	exists, err := l.versions.ExistsVersion(ctx, appID, param.Platform, param.Channel, quad.Packed())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.ErrVersionConflict
	}

	desc, err := l.store.Stat(param.FileKey)
	if err != nil {
		return nil, errs.ErrArtifactMissing.Wrap(err)
	}

	v := &model.Version{
		AppID:        appID,
		Platform:     param.Platform,
		Channel:      param.Channel,
		Version:      quad.String(),
		Number:       quad.Packed(),
		IsEnabled:    param.IsEnabled,
		IsCritical:   param.IsCritical,
		FileKey:      param.FileKey,
		FileHash:     desc.SHA1,
		FileSHA256:   desc.SHA256,
		FileSize:     desc.Size,
		ReleaseNotes: param.ReleaseNotes,
	}

	err = l.versions.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err := l.versions.CreateVersion(ctx, tx, v)
		if err != nil {
			return err
		}
		v.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.cg.EvictAll()
	l.logger.Info("version created",
		zap.String("appid", v.AppID),
		zap.String("platform", v.Platform),
		zap.String("channel", v.Channel),
		zap.String("version", v.Version))
	return v, nil
}

// ReplaceArtifact swaps a version's artifact for a new key. The old
// file is removed only after the row commit succeeds, so a failed swap
// never leaves the version pointing at deleted bytes.
func (l *AdminLogic) ReplaceArtifact(ctx context.Context, param *model.UpdateArtifactParam) error {
	unlock, err := l.lockVersion(ctx, param.VersionID)
	if err != nil {
		return err
	}
	defer unlock()

	v, err := l.versions.GetVersion(ctx, param.VersionID)
	if err != nil {
		return err
	}
	if v == nil {
		return errs.ErrVersionNotFound
	}

	desc, err := l.store.Stat(param.FileKey)
	if err != nil {
		return errs.ErrArtifactMissing.Wrap(err)
	}

	err = l.versions.WithTx(ctx, func(tx *sqlx.Tx) error {
		return l.versions.UpdateVersionArtifact(ctx, tx, v.ID, param.FileKey, desc.SHA1, desc.SHA256, desc.Size)
	})
	if err != nil {
		return err
	}

	l.cg.EvictAll()
	if v.FileKey != "" && v.FileKey != param.FileKey {
		if err := l.store.Delete(v.FileKey); err != nil {
			l.logger.Warn("deleting replaced artifact failed",
				zap.String("key", v.FileKey), zap.Error(err))
		}
	}
	return nil
}

func (l *AdminLogic) DeleteVersion(ctx context.Context, id int64) error {
	unlock, err := l.lockVersion(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	v, err := l.versions.GetVersion(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return errs.ErrVersionNotFound
	}

	err = l.versions.WithTx(ctx, func(tx *sqlx.Tx) error {
		return l.versions.DeleteVersion(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	l.cg.EvictAll()
	if v.FileKey != "" {
		if err := l.store.Delete(v.FileKey); err != nil {
			l.logger.Warn("deleting version artifact failed",
				zap.String("key", v.FileKey), zap.Error(err))
		}
	}
	return nil
}

func (l *AdminLogic) SetPartialUpdate(ctx context.Context, param *model.SetPartialUpdateParam) error {
	start, err := time.Parse(rolloutDateLayout, param.StartDate)
	if err != nil {
		return errs.ErrInvalidParams.Wrap(err)
	}
	end, err := time.Parse(rolloutDateLayout, param.EndDate)
	if err != nil {
		return errs.ErrInvalidParams.Wrap(err)
	}
	if end.Before(start) {
		return errs.ErrInvalidRolloutSpan
	}

	v, err := l.versions.GetVersion(ctx, param.VersionID)
	if err != nil {
		return err
	}
	if v == nil {
		return errs.ErrVersionNotFound
	}

	cohort := model.CohortAll
	switch param.ActiveUsers {
	case "week":
		cohort = model.CohortWeek
	case "month":
		cohort = model.CohortMonth
	}

	err = l.versions.UpsertPartialUpdate(ctx, &model.PartialUpdate{
		VersionID:       param.VersionID,
		Percent:         param.Percent,
		StartDate:       start,
		EndDate:         end,
		ExcludeNewUsers: param.ExcludeNewUsers,
		ActiveUsers:     cohort,
		IsEnabled:       param.IsEnabled,
	})
	if err != nil {
		return err
	}
	l.cg.EvictAll()
	return nil
}

func (l *AdminLogic) CreateAction(ctx context.Context, param *model.CreateActionParam) error {
	v, err := l.versions.GetVersion(ctx, param.VersionID)
	if err != nil {
		return err
	}
	if v == nil {
		return errs.ErrVersionNotFound
	}

	event, ok := model.ParseEventType(param.Event)
	if !ok {
		return errs.ErrInvalidParams.WithDetails("unknown action event " + param.Event)
	}

	var other string
	if len(param.Other) > 0 {
		other, err = sonic.MarshalString(param.Other)
		if err != nil {
			return errs.ErrInvalidParams.Wrap(err)
		}
	}

	_, err = l.versions.CreateAction(ctx, &model.Action{
		VersionID:            param.VersionID,
		Event:                event,
		Run:                  param.Run,
		Arguments:            param.Arguments,
		SuccessURL:           param.SuccessURL,
		OnSuccess:            param.OnSuccess,
		TerminateAllBrowsers: param.TerminateAllBrowsers,
		Other:                other,
	})
	if err != nil {
		return err
	}
	l.cg.EvictAll()
	return nil
}

// DailyActiveUsers reads the unique-client estimate for one day. An
// empty date means today.
func (l *AdminLogic) DailyActiveUsers(ctx context.Context, date string) (int64, error) {
	day := time.Now().UTC()
	if date != "" {
		var err error
		day, err = time.Parse(rolloutDateLayout, date)
		if err != nil {
			return 0, errs.ErrInvalidParams.Wrap(err)
		}
	}
	return l.activity.DailyUsers(ctx, day)
}

func (l *AdminLogic) lockVersion(ctx context.Context, id int64) (func(), error) {
	mutex := l.rs.NewMutex(fmt.Sprintf("mutex:version:%d", id),
		redsync.WithExpiry(30*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errs.NewUnexpected("acquire version lock", err)
	}
	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			l.logger.Warn("release version lock failed", zap.Int64("version_id", id), zap.Error(err))
		}
	}, nil
}
