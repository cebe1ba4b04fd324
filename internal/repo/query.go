package repo

import (
	"context"
	"database/sql"

	"github.com/updateserve/omaha-backend/internal/cache"
	"github.com/updateserve/omaha-backend/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Query is the read side of the repository, everything the decision
// path touches. Hot lookups go through the in-process cache group; a
// missing row is (nil, nil), not an error.
type Query struct {
	*Repo
	cg *cache.UpdateCacheGroup
}

func NewQuery(db *Repo, cg *cache.UpdateCacheGroup) *Query {
	return &Query{
		Repo: db,
		cg:   cg,
	}
}

const versionColumns = `id, app_id, platform, channel, version, version_number,
	is_enabled, is_critical, file_key, file_hash, file_sha256, file_size,
	release_notes, created_at`

func (r *Query) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	key := model.NormalizeAppID(id)
	val, err := r.cg.ApplicationCache.ComputeIfAbsent(key, func() (*model.Application, error) {
		var app model.Application
		err := r.dx.GetContext(ctx, &app,
			`SELECT id, name, created_at FROM applications WHERE id = ?`, key)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "get application")
		}
		return &app, nil
	})
	if err != nil {
		return nil, err
	}
	return *val, nil
}

func (r *Query) ListEnabledVersions(ctx context.Context, appID, platform, channel string) ([]*model.Version, error) {
	key := r.cg.GetCacheKey(model.NormalizeAppID(appID), platform, channel)
	val, err := r.cg.VersionListCache.ComputeIfAbsent(key, func() ([]*model.Version, error) {
		var versions []*model.Version
		err := r.dx.SelectContext(ctx, &versions,
			`SELECT `+versionColumns+` FROM versions
			 WHERE app_id = ? AND platform = ? AND channel = ? AND is_enabled = 1
			 ORDER BY version_number DESC`,
			model.NormalizeAppID(appID), platform, channel)
		if err != nil {
			return nil, errors.Wrap(err, "list enabled versions")
		}
		return versions, nil
	})
	if err != nil {
		return nil, err
	}
	return *val, nil
}

func (r *Query) GetPartialUpdate(ctx context.Context, versionID int64) (*model.PartialUpdate, error) {
	var pu model.PartialUpdate
	err := r.dx.GetContext(ctx, &pu,
		`SELECT id, version_id, percent, start_date, end_date,
		        exclude_new_users, active_users, is_enabled
		 FROM partial_updates WHERE version_id = ?`, versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get partial update")
	}
	return &pu, nil
}

// ListActions returns the version's actions for the given event types,
// preserving declaration order: actions render in the order the admin
// created them.
func (r *Query) ListActions(ctx context.Context, versionID int64, events ...model.EventType) ([]*model.Action, error) {
	query, args, err := sqlx.In(
		`SELECT id, version_id, event, run, arguments, successurl, onsuccess,
		        terminateallbrowsers, other
		 FROM actions WHERE version_id = ? AND event IN (?) ORDER BY id`,
		versionID, events)
	if err != nil {
		return nil, errors.Wrap(err, "build actions query")
	}

	var actions []*model.Action
	if err := r.dx.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, errors.Wrap(err, "list actions")
	}
	return actions, nil
}

func (r *Query) ListData(ctx context.Context, appID string) ([]*model.DataRecord, error) {
	key := model.NormalizeAppID(appID)
	val, err := r.cg.DataCache.ComputeIfAbsent(key, func() ([]*model.DataRecord, error) {
		var records []*model.DataRecord
		err := r.dx.SelectContext(ctx, &records,
			`SELECT id, app_id, name, index_name, value FROM data WHERE app_id = ? ORDER BY id`, key)
		if err != nil {
			return nil, errors.Wrap(err, "list data records")
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return *val, nil
}

// ResolveChannel maps a client reported build number back to a channel
// name, best-effort for diagnostics tagging. Unresolvable builds get
// the undefined sentinel.
func (r *Query) ResolveChannel(ctx context.Context, build, os string) (string, error) {
	var (
		channel string
		err     error
	)
	if os == "mac" {
		err = r.dx.GetContext(ctx, &channel,
			`SELECT channel FROM sparkle_versions WHERE version = ? LIMIT 1`, build)
	} else {
		err = r.dx.GetContext(ctx, &channel,
			`SELECT channel FROM versions WHERE version = ? AND platform = ? LIMIT 1`, build, os)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.UndefinedChannel, nil
	}
	if err != nil {
		return model.UndefinedChannel, errors.Wrap(err, "resolve channel")
	}
	return channel, nil
}

func (r *Query) ListEnabledSparkleVersions(ctx context.Context, appName, channel string) ([]*model.SparkleVersion, error) {
	key := r.cg.GetCacheKey(appName, channel)
	val, err := r.cg.SparkleListCache.ComputeIfAbsent(key, func() ([]*model.SparkleVersion, error) {
		var versions []*model.SparkleVersion
		err := r.dx.SelectContext(ctx, &versions,
			`SELECT s.id, s.app_id, s.channel, s.version, s.version_number,
			        s.short_version, s.minimum_system_version, s.is_enabled,
			        s.is_critical, s.file_key, s.file_size, s.dsa_signature,
			        s.release_notes, s.created_at
			 FROM sparkle_versions s
			 JOIN applications a ON a.id = s.app_id
			 WHERE a.name = ? AND s.channel = ? AND s.is_enabled = 1
			 ORDER BY s.version_number DESC`,
			appName, channel)
		if err != nil {
			return nil, errors.Wrap(err, "list sparkle versions")
		}
		return versions, nil
	})
	if err != nil {
		return nil, err
	}
	return *val, nil
}
