package repo

import (
	"context"
	"database/sql"

	"github.com/updateserve/omaha-backend/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Version is the admin write side for version records and their
// attached rollout windows and actions. Reads used by the decision
// path live on Query.
type Version struct {
	*Repo
}

func NewVersion(db *Repo) *Version {
	return &Version{
		Repo: db,
	}
}

func (r *Version) GetVersion(ctx context.Context, id int64) (*model.Version, error) {
	var v model.Version
	err := r.dx.GetContext(ctx, &v,
		`SELECT `+versionColumns+` FROM versions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get version")
	}
	return &v, nil
}

func (r *Version) ExistsVersion(ctx context.Context, appID, platform, channel string, number uint64) (bool, error) {
	var n int
	err := r.dx.GetContext(ctx, &n,
		`SELECT COUNT(1) FROM versions
		 WHERE app_id = ? AND platform = ? AND channel = ? AND version_number = ?`,
		appID, platform, channel, number)
	if err != nil {
		return false, errors.Wrap(err, "check version exists")
	}
	return n > 0, nil
}

func (r *Version) CreateVersion(ctx context.Context, tx *sqlx.Tx, v *model.Version) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO versions (app_id, platform, channel, version, version_number,
			is_enabled, is_critical, file_key, file_hash, file_sha256, file_size, release_notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.AppID, v.Platform, v.Channel, v.Version, v.Number,
		v.IsEnabled, v.IsCritical, v.FileKey, v.FileHash, v.FileSHA256, v.FileSize, v.ReleaseNotes)
	if err != nil {
		return 0, errors.Wrap(err, "create version")
	}
	return res.LastInsertId()
}

func (r *Version) UpdateVersionArtifact(ctx context.Context, tx *sqlx.Tx, id int64, fileKey, hash, sha256 string, size int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE versions SET file_key = ?, file_hash = ?, file_sha256 = ?, file_size = ? WHERE id = ?`,
		fileKey, hash, sha256, size, id)
	return errors.Wrap(err, "update version artifact")
}

// DeleteVersion removes the record and its dependents. The caller
// deletes the stored artifact after the transaction commits.
func (r *Version) DeleteVersion(ctx context.Context, tx *sqlx.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE version_id = ?`, id); err != nil {
		return errors.Wrap(err, "delete version actions")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM partial_updates WHERE version_id = ?`, id); err != nil {
		return errors.Wrap(err, "delete version rollout")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "delete version")
	}
	return nil
}

func (r *Version) UpsertPartialUpdate(ctx context.Context, p *model.PartialUpdate) error {
	_, err := r.dx.ExecContext(ctx,
		`INSERT INTO partial_updates
			(version_id, percent, start_date, end_date, exclude_new_users, active_users, is_enabled)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
			percent = VALUES(percent),
			start_date = VALUES(start_date),
			end_date = VALUES(end_date),
			exclude_new_users = VALUES(exclude_new_users),
			active_users = VALUES(active_users),
			is_enabled = VALUES(is_enabled)`,
		p.VersionID, p.Percent, p.StartDate, p.EndDate, p.ExcludeNewUsers, p.ActiveUsers, p.IsEnabled)
	return errors.Wrap(err, "upsert partial update")
}

func (r *Version) CreateAction(ctx context.Context, a *model.Action) (int64, error) {
	res, err := r.dx.ExecContext(ctx,
		`INSERT INTO actions
			(version_id, event, run, arguments, successurl, onsuccess, terminateallbrowsers, other)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.VersionID, a.Event, a.Run, a.Arguments, a.SuccessURL, a.OnSuccess,
		a.TerminateAllBrowsers, a.Other)
	if err != nil {
		return 0, errors.Wrap(err, "create action")
	}
	return res.LastInsertId()
}
