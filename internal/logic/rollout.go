package logic

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/updateserve/omaha-backend/internal/model"

	"go.uber.org/zap"
)

// SelectOutcome tells the caller why no version was served.
type SelectOutcome int

const (
	// SelectedUpdate means a newer version was picked.
	SelectedUpdate SelectOutcome = iota
	// NoUpdate means the client is already on the newest build.
	NoUpdate
	// Throttled means newer builds exist but every one of them is
	// behind a rollout gate this client did not clear.
	Throttled
)

const (
	activeWeek  = 7 * 24 * time.Hour
	activeMonth = 30 * 24 * time.Hour
)

// RolloutLogic picks the version to serve for one app report,
// honoring staged rollout windows.
type RolloutLogic struct {
	logger   *zap.Logger
	repo     Repository
	activity ActivityChecker
}

func NewRolloutLogic(logger *zap.Logger, repo Repository, activity ActivityChecker) *RolloutLogic {
	return &RolloutLogic{
		logger:   logger,
		repo:     repo,
		activity: activity,
	}
}

// Bucket maps a client onto one of 100 rollout buckets for a given
// version. The derivation is a published contract: the first eight
// bytes of md5("<clientID>:<versionID>"), big endian, mod 100. A
// client is inside a rollout iff its bucket is below the percent, so
// raising the percent only ever adds clients, never reshuffles them.
func Bucket(clientID string, versionID int64) uint64 {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d", clientID, versionID)))
	return binary.BigEndian.Uint64(sum[:8]) % 100
}

// Select walks the enabled versions newest first and returns the first
// one newer than the installed build whose rollout, if any, admits the
// client. Gated candidates are skipped entirely: a client locked out
// of the newest build does not fall back to an older one it already
// has, but does receive an intermediate build it cleared.
func (l *RolloutLogic) Select(ctx context.Context, param *model.SelectParam) (*model.Version, SelectOutcome, error) {
	versions, err := l.repo.ListEnabledVersions(ctx, param.AppID, param.Platform, param.Channel)
	if err != nil {
		return nil, NoUpdate, err
	}

	installed := param.Installed.Packed()
	throttled := false
	for _, v := range versions {
		if v.Number <= installed {
			break
		}
		ok, err := l.admits(ctx, v, param)
		if err != nil {
			return nil, NoUpdate, err
		}
		if ok {
			return v, SelectedUpdate, nil
		}
		throttled = true
	}

	if throttled {
		return nil, Throttled, nil
	}
	return nil, NoUpdate, nil
}

func (l *RolloutLogic) admits(ctx context.Context, v *model.Version, param *model.SelectParam) (bool, error) {
	pu, err := l.repo.GetPartialUpdate(ctx, v.ID)
	if err != nil {
		return false, err
	}
	if !pu.ActiveOn(param.Today) {
		return true, nil
	}

	// Install age of -1 means day of install, 0 means the day after.
	if pu.ExcludeNewUsers && param.InstallAge <= 0 {
		return false, nil
	}

	if pu.ActiveUsers != model.CohortAll {
		ok, err := l.inCohort(ctx, pu.ActiveUsers, param)
		if err != nil || !ok {
			return false, err
		}
	}

	return Bucket(param.ClientID, v.ID) < uint64(pu.Percent), nil
}

// inCohort checks the last-seen record for the client. A client with
// no userid or no record cannot prove activity and stays excluded.
func (l *RolloutLogic) inCohort(ctx context.Context, cohort model.ActiveUsersCohort, param *model.SelectParam) (bool, error) {
	if param.ClientID == "" {
		return false, nil
	}

	var window time.Duration
	switch cohort {
	case model.CohortWeek:
		window = activeWeek
	case model.CohortMonth:
		window = activeMonth
	default:
		return true, nil
	}

	active, err := l.activity.ActiveSince(ctx, param.ClientID, param.Today.Add(-window))
	if err != nil {
		l.logger.Warn("activity lookup failed, excluding client from rollout",
			zap.String("cohort", cohort.String()), zap.Error(err))
		return false, nil
	}
	return active, nil
}
