package logic

import (
	"context"
	"time"

	"github.com/updateserve/omaha-backend/internal/config"
	"github.com/updateserve/omaha-backend/internal/metrics"
	"github.com/updateserve/omaha-backend/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatsStore is the insert surface the workers write through.
type StatsStore interface {
	InsertRequest(ctx context.Context, req *model.UpdateRequest, ip string) (int64, error)
	InsertAppRequest(ctx context.Context, requestID int64, app *model.AppRequest, channel string) (int64, error)
	InsertEvent(ctx context.Context, appRequestID int64, ev *model.EventReport) error
}

// ChannelResolver maps a reported build back to its channel for
// per-channel report tagging.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, build, os string) (string, error)
}

type statsJob struct {
	req *model.UpdateRequest
	ip  string
	now time.Time
}

// StatsLogic is the statistics collector: a bounded queue drained by a
// small worker pool. Enqueueing never blocks the request path; when
// the queue is full the report is dropped and counted.
type StatsLogic struct {
	logger   *zap.Logger
	store    StatsStore
	resolver ChannelResolver
	activity *RedisActivity

	workers int
	queue   chan statsJob
	eg      *errgroup.Group
	cancel  context.CancelFunc
}

func NewStatsLogic(
	logger *zap.Logger,
	store StatsStore,
	resolver ChannelResolver,
	activity *RedisActivity,
	conf *config.Config,
) *StatsLogic {
	size := conf.Omaha.StatsQueueSize
	if size <= 0 {
		size = config.DefaultStatsQueueSize
	}
	workers := conf.Omaha.StatsWorkers
	if workers <= 0 {
		workers = config.DefaultStatsWorkers
	}
	return &StatsLogic{
		logger:   logger,
		store:    store,
		resolver: resolver,
		activity: activity,
		workers:  workers,
		queue:    make(chan statsJob, size),
	}
}

// Start launches the worker pool.
func (l *StatsLogic) Start(ctx context.Context) error {
	ctx, l.cancel = context.WithCancel(ctx)
	l.eg, ctx = errgroup.WithContext(ctx)
	for i := 0; i < l.workers; i++ {
		l.eg.Go(func() error {
			l.run(ctx)
			return nil
		})
	}
	return nil
}

// Stop drains what is already queued, then stops the workers.
func (l *StatsLogic) Stop(ctx context.Context) error {
	close(l.queue)
	err := l.eg.Wait()
	l.cancel()
	return err
}

// Record hands the report to the workers. Never blocks.
func (l *StatsLogic) Record(req *model.UpdateRequest, ip string) {
	select {
	case l.queue <- statsJob{req: req, ip: ip, now: time.Now()}:
	default:
		metrics.StatsDropped.Inc()
		l.logger.Debug("statistics queue full, dropping report",
			zap.String("userid", req.UserID))
	}
}

func (l *StatsLogic) run(ctx context.Context) {
	for job := range l.queue {
		if err := l.persist(ctx, job); err != nil {
			l.logger.Warn("persisting client report failed", zap.Error(err))
			continue
		}
		metrics.StatsRecorded.Inc()
	}
}

func (l *StatsLogic) persist(ctx context.Context, job statsJob) error {
	requestID, err := l.store.InsertRequest(ctx, job.req, job.ip)
	if err != nil {
		return err
	}

	var osPlatform string
	if job.req.OS != nil {
		osPlatform = job.req.OS.Platform
	}

	for i := range job.req.Apps {
		app := &job.req.Apps[i]

		channel, err := l.resolver.ResolveChannel(ctx, app.Version, osPlatform)
		if err != nil {
			l.logger.Debug("channel resolve failed",
				zap.String("build", app.Version), zap.Error(err))
			channel = model.UndefinedChannel
		}

		appRequestID, err := l.store.InsertAppRequest(ctx, requestID, app, channel)
		if err != nil {
			return err
		}
		for j := range app.Events {
			ev := &app.Events[j]
			if ev.IsError() {
				metrics.EventErrors.Inc()
			}
			if err := l.store.InsertEvent(ctx, appRequestID, ev); err != nil {
				return err
			}
		}
	}

	if err := l.activity.Touch(ctx, job.req.UserID, job.now); err != nil {
		l.logger.Debug("activity touch failed", zap.Error(err))
	}
	return nil
}
