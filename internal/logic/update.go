package logic

import (
	"context"
	"strings"
	"time"

	"github.com/updateserve/omaha-backend/internal/lb"
	"github.com/updateserve/omaha-backend/internal/metrics"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/protocol"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultChannel is assumed when an app report carries no tag.
const DefaultChannel = "stable"

// UpdateLogic is the decision engine behind the update endpoint. One
// request in, one response out; every app in the payload is answered
// unless the engine itself faults.
type UpdateLogic struct {
	logger   *zap.Logger
	repo     Repository
	rollout  *RolloutLogic
	recorder Recorder
	mirrors  *lb.WeightedRoundRobin
}

func NewUpdateLogic(
	logger *zap.Logger,
	repo Repository,
	rollout *RolloutLogic,
	recorder Recorder,
	mirrors *lb.WeightedRoundRobin,
) *UpdateLogic {
	return &UpdateLogic{
		logger:   logger,
		repo:     repo,
		rollout:  rollout,
		recorder: recorder,
		mirrors:  mirrors,
	}
}

// Decide answers a decoded request. It never returns an error to the
// caller: an unknown app gets its own error entry while siblings are
// answered normally, and an engine fault (a store gone away, a panic
// escaping the decision path) collapses the whole response into the
// fixed error envelope so no internal detail reaches the wire.
func (l *UpdateLogic) Decide(ctx context.Context, req *model.UpdateRequest, opts *model.DecideOptions) *model.UpdateResponse {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	resp := &model.UpdateResponse{
		Protocol: model.ProtocolVersion,
		Server:   model.ServerName,
		DayStart: protocol.ElapsedDayStart(now),
		Apps:     make([]model.AppResponse, 0, len(req.Apps)),
	}

	for i := range req.Apps {
		app, err := l.decideApp(ctx, req, &req.Apps[i], now)
		if err != nil {
			l.logger.Error("decision engine fault",
				zap.String("appid", req.Apps[i].AppID), zap.Error(err))
			metrics.UpdateChecks.WithLabelValues("error").Inc()
			return &model.UpdateResponse{
				Protocol: model.ProtocolVersion,
				Server:   model.ServerName,
				DayStart: protocol.ElapsedDayStart(now),
				Error:    &model.ResponseError{Reason: model.FaultInternal},
			}
		}
		resp.Apps = append(resp.Apps, app)
	}

	l.recorder.Record(req, opts.ClientIP)

	return resp
}

func (l *UpdateLogic) decideApp(ctx context.Context, req *model.UpdateRequest, app *model.AppRequest, now time.Time) (out model.AppResponse, err error) {
	out = model.AppResponse{
		AppID:  app.AppID,
		Status: model.StatusOK,
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic deciding app %s: %v", app.AppID, r)
		}
	}()

	known, err := l.repo.GetApplication(ctx, app.AppID)
	if err != nil {
		return out, errors.Wrap(err, "application lookup")
	}
	if known == nil {
		out.Status = model.StatusUnknownApplication
		return out, nil
	}

	if app.UpdateCheck != nil {
		out.UpdateCheck, err = l.decideUpdateCheck(ctx, req, app, now)
		if err != nil {
			return out, err
		}
	}
	if app.Ping != nil {
		out.Ping = &model.StatusReply{Status: model.StatusOK}
	}
	for range app.Events {
		out.Events = append(out.Events, model.StatusReply{Status: model.StatusOK})
	}
	if len(app.Data) > 0 {
		out.Data, err = l.answerData(ctx, app)
		if err != nil {
			return out, err
		}
	}

	return out, nil
}

func (l *UpdateLogic) decideUpdateCheck(ctx context.Context, req *model.UpdateRequest, app *model.AppRequest, now time.Time) (*model.UpdateCheckResponse, error) {
	param := &model.SelectParam{
		AppID:      app.AppID,
		Platform:   l.platform(req),
		Channel:    channelOf(app),
		Installed:  app.InstalledVersion(),
		ClientID:   req.ClientID(),
		InstallAge: app.InstallAgeDays(),
		Today:      now,
	}

	v, outcome, err := l.rollout.Select(ctx, param)
	if err != nil {
		return nil, errors.Wrap(err, "version selection")
	}

	switch outcome {
	case SelectedUpdate:
		metrics.UpdateChecks.WithLabelValues("ok").Inc()
		return l.serveUpdate(ctx, v)
	case Throttled:
		// A throttled client is indistinguishable from an up-to-date
		// one on the wire, on purpose.
		metrics.UpdateChecks.WithLabelValues("throttled").Inc()
		return &model.UpdateCheckResponse{Status: model.StatusNoUpdate}, nil
	default:
		metrics.UpdateChecks.WithLabelValues("noupdate").Inc()
		return &model.UpdateCheckResponse{Status: model.StatusNoUpdate}, nil
	}
}

func (l *UpdateLogic) serveUpdate(ctx context.Context, v *model.Version) (*model.UpdateCheckResponse, error) {
	check := &model.UpdateCheckResponse{
		Status: model.StatusOK,
		URLs:   &model.URLList{},
		Manifest: &model.Manifest{
			Version: v.Version,
			Packages: model.PackageList{
				Packages: []model.Package{{
					Hash:       v.FileHash,
					Name:       v.PackageName(),
					Required:   true,
					Size:       v.FileSize,
					HashSHA256: v.FileSHA256,
				}},
			},
		},
	}
	if v.IsCritical {
		check.Critical = "true"
	}

	for _, m := range l.mirrors.Ordered() {
		check.URLs.URLs = append(check.URLs.URLs, model.CodebaseURL{
			Codebase: strings.TrimSuffix(m.URL, "/") + "/" + v.PackageDir(),
		})
	}

	actions, err := l.repo.ListActions(ctx, v.ID,
		model.EventUpdate, model.EventInstall, model.EventPostinstall)
	if err != nil {
		return nil, errors.Wrap(err, "list actions")
	}
	if len(actions) > 0 {
		check.Manifest.Actions = &model.ActionList{}
		for _, a := range actions {
			check.Manifest.Actions.Actions = append(check.Manifest.Actions.Actions, model.ActionResponse{
				Event:                a.Event.String(),
				Run:                  a.Run,
				Arguments:            a.Arguments,
				SuccessURL:           a.SuccessURL,
				OnSuccess:            a.OnSuccess,
				TerminateAllBrowsers: a.TerminateAllBrowsers,
				Extra:                a.OtherAttributes(),
			})
		}
	}

	return check, nil
}

func (l *UpdateLogic) answerData(ctx context.Context, app *model.AppRequest) ([]model.DataResponse, error) {
	records, err := l.repo.ListData(ctx, app.AppID)
	if err != nil {
		return nil, errors.Wrap(err, "data lookup")
	}

	out := make([]model.DataResponse, 0, len(app.Data))
	for _, q := range app.Data {
		out = append(out, answerDataQuery(records, q))
	}
	return out, nil
}

// answerDataQuery matches one <data> query against the app's records.
// install queries match on index, untrusted queries ignore it.
func answerDataQuery(records []*model.DataRecord, q model.DataQuery) model.DataResponse {
	name, ok := model.ParseDataName(q.Name)
	if !ok {
		return model.DataResponse{Status: model.StatusNoData, Name: q.Name, Index: q.Index}
	}

	for _, rec := range records {
		if rec.Name != name {
			continue
		}
		if name == model.DataInstall && rec.Index != q.Index {
			continue
		}
		return model.DataResponse{
			Status: model.StatusOK,
			Name:   q.Name,
			Index:  q.Index,
			Value:  rec.Value,
		}
	}
	return model.DataResponse{Status: model.StatusNoData, Name: q.Name, Index: q.Index}
}

func (l *UpdateLogic) platform(req *model.UpdateRequest) string {
	if req.OS != nil {
		return req.OS.Platform
	}
	return ""
}

func channelOf(app *model.AppRequest) string {
	if app.Tag != "" {
		return app.Tag
	}
	return DefaultChannel
}
