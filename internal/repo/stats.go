package repo

import (
	"context"

	"github.com/updateserve/omaha-backend/internal/model"

	"github.com/pkg/errors"
)

// Stats is the insert-only side fed by the statistics workers. Rows
// are written off the request path, so plain statements without the
// cache group are enough here.
type Stats struct {
	*Repo
}

func NewStats(db *Repo) *Stats {
	return &Stats{
		Repo: db,
	}
}

func (r *Stats) InsertRequest(ctx context.Context, req *model.UpdateRequest, ip string) (int64, error) {
	var os model.OSInfo
	if req.OS != nil {
		os = *req.OS
	}
	var hw model.HWInfo
	if req.HW != nil {
		hw = *req.HW
	}
	res, err := r.dx.ExecContext(ctx,
		`INSERT INTO requests
			(version, ismachine, sessionid, userid, installsource, originurl,
			 testsource, updaterchannel, ip, os_platform, os_version, os_sp, os_arch,
			 hw_sse, hw_sse2, hw_sse3, hw_ssse3, hw_sse41, hw_sse42, hw_avx, hw_physmemory)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Version, req.IsMachine, req.SessionID, req.UserID, req.InstallSource,
		req.OriginURL, req.TestSource, req.UpdaterChannel, ip,
		os.Platform, os.Version, os.SP, os.Arch,
		hw.SSE, hw.SSE2, hw.SSE3, hw.SSSE3, hw.SSE41, hw.SSE42, hw.AVX, hw.PhysMemory)
	if err != nil {
		return 0, errors.Wrap(err, "insert request")
	}
	return res.LastInsertId()
}

func (r *Stats) InsertAppRequest(ctx context.Context, requestID int64, app *model.AppRequest, channel string) (int64, error) {
	res, err := r.dx.ExecContext(ctx,
		`INSERT INTO app_requests
			(request_id, app_id, version, nextversion, lang, tag, installage, channel)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		requestID, model.NormalizeAppID(app.AppID), app.Version, app.NextVersion,
		app.Lang, app.Tag, app.InstallAgeDays(), channel)
	if err != nil {
		return 0, errors.Wrap(err, "insert app request")
	}
	return res.LastInsertId()
}

func (r *Stats) InsertEvent(ctx context.Context, appRequestID int64, ev *model.EventReport) error {
	_, err := r.dx.ExecContext(ctx,
		`INSERT INTO events
			(app_request_id, eventtype, eventresult, errorcode, extracode1,
			 download_time_ms, downloaded, total, update_check_time_ms,
			 install_time_ms, nextversion, previousversion)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appRequestID, ev.EventType, ev.EventResult, ev.ErrorCode, ev.ExtraCode1,
		ev.DownloadTimeMs, ev.Downloaded, ev.Total, ev.UpdateCheckTime,
		ev.InstallTimeMs, ev.NextVersion, ev.PreviousVersion)
	return errors.Wrap(err, "insert event")
}
