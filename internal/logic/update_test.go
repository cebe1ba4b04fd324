package logic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/updateserve/omaha-backend/internal/lb"
	"github.com/updateserve/omaha-backend/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []*model.UpdateRequest
}

func (f *fakeRecorder) Record(req *model.UpdateRequest, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, req)
}

func newTestUpdate(repo *fakeRepo, rec *fakeRecorder) *UpdateLogic {
	mirrors := lb.NewWeightedRoundRobin([]lb.Mirror{
		{URL: "http://cache.local/files", Weight: 1},
	})
	return NewUpdateLogic(zap.NewNop(), repo, newTestRollout(repo, nil), rec, mirrors)
}

func testNow() time.Time {
	return time.Date(2026, 3, 10, 15, 41, 48, 0, time.UTC)
}

func updateCheckRequest(appID, installed string) *model.UpdateRequest {
	return &model.UpdateRequest{
		Protocol:  model.ProtocolVersion,
		SessionID: "{session-1}",
		UserID:    "{user-1}",
		OS:        &model.OSInfo{Platform: "win", Version: "10.0"},
		Apps: []model.AppRequest{{
			AppID:       appID,
			Version:     installed,
			Tag:         "stable",
			InstallAge:  "30",
			UpdateCheck: &model.UpdateCheck{},
		}},
	}
}

func TestDecideUnknownApplication(t *testing.T) {
	repo := newFakeRepo()
	repo.apps["{KNOWN}"] = &model.Application{ID: "{KNOWN}", Name: "known"}
	repo.addVersion("{KNOWN}", "win", "stable", makeVersion(1, "1.0.0.0"))
	rec := &fakeRecorder{}
	l := newTestUpdate(repo, rec)

	req := updateCheckRequest("{MISSING}", "1.0.0.0")
	req.Apps = append(req.Apps, model.AppRequest{
		AppID:       "{known}",
		Version:     "1.0.0.0",
		Tag:         "stable",
		UpdateCheck: &model.UpdateCheck{},
	})
	// an app element that carried no appid at all lands here too
	req.Apps = append(req.Apps, model.AppRequest{
		Version:     "1.0.0.0",
		UpdateCheck: &model.UpdateCheck{},
	})

	resp := l.Decide(context.Background(), req, &model.DecideOptions{Now: testNow()})

	require.Len(t, resp.Apps, 3)
	require.Equal(t, model.StatusUnknownApplication, resp.Apps[0].Status)
	require.Nil(t, resp.Apps[0].UpdateCheck)

	// the unknown siblings do not poison the known one, and the id
	// lookup is case insensitive
	require.Equal(t, model.StatusOK, resp.Apps[1].Status)
	require.NotNil(t, resp.Apps[1].UpdateCheck)
	require.Equal(t, model.StatusNoUpdate, resp.Apps[1].UpdateCheck.Status)

	require.Equal(t, model.StatusUnknownApplication, resp.Apps[2].Status)

	// statistics still fire once per request
	require.Len(t, rec.recorded, 1)
}

func TestDecideServesUpdate(t *testing.T) {
	repo := newFakeRepo()
	repo.apps["{APP}"] = &model.Application{ID: "{APP}", Name: "app"}
	v := makeVersion(11, "2.0.0.0")
	v.FileKey = "app/win/stable/2.0.0.0/installer.exe"
	v.FileHash = "Kq5sNclPz7QV2+lfQIuc6R7oRu0="
	v.FileSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	v.FileSize = 23963192
	repo.addVersion("{APP}", "win", "stable", v)
	repo.actions[11] = []*model.Action{
		{VersionID: 11, Event: model.EventPostinstall, SuccessURL: "http://example.com/done"},
		{VersionID: 11, Event: model.EventPreinstall, Run: "prep.exe"},
	}

	l := newTestUpdate(repo, &fakeRecorder{})

	resp := l.Decide(context.Background(), updateCheckRequest("{APP}", "1.0.0.0"), &model.DecideOptions{Now: testNow()})

	require.Equal(t, model.ProtocolVersion, resp.Protocol)
	require.Equal(t, model.ServerName, resp.Server)
	// 15:41:48 UTC
	require.Equal(t, 56508, resp.DayStart.ElapsedSeconds)

	require.Len(t, resp.Apps, 1)
	app := resp.Apps[0]
	require.Equal(t, model.StatusOK, app.Status)

	check := app.UpdateCheck
	require.NotNil(t, check)
	require.Equal(t, model.StatusOK, check.Status)

	require.NotNil(t, check.URLs)
	require.Len(t, check.URLs.URLs, 1)
	require.Equal(t, "http://cache.local/files/app/win/stable/2.0.0.0/", check.URLs.URLs[0].Codebase)

	require.NotNil(t, check.Manifest)
	require.Equal(t, "2.0.0.0", check.Manifest.Version)
	require.Len(t, check.Manifest.Packages.Packages, 1)
	pkg := check.Manifest.Packages.Packages[0]
	require.Equal(t, "installer.exe", pkg.Name)
	require.True(t, pkg.Required)
	require.Equal(t, int64(23963192), pkg.Size)
	require.Equal(t, "Kq5sNclPz7QV2+lfQIuc6R7oRu0=", pkg.Hash)

	// only update flow events render, the preinstall action stays out
	require.NotNil(t, check.Manifest.Actions)
	require.Len(t, check.Manifest.Actions.Actions, 1)
	require.Equal(t, "postinstall", check.Manifest.Actions.Actions[0].Event)
}

func TestDecideEngineFaultEnvelope(t *testing.T) {
	repo := newFakeRepo()
	repo.fail = errors.New("connection refused")
	rec := &fakeRecorder{}
	l := newTestUpdate(repo, rec)

	resp := l.Decide(context.Background(), updateCheckRequest("{APP}", "1.0.0.0"), &model.DecideOptions{Now: testNow()})

	require.Empty(t, resp.Apps)
	require.NotNil(t, resp.Error)
	require.Equal(t, model.FaultInternal, resp.Error.Reason)
	require.Equal(t, 56508, resp.DayStart.ElapsedSeconds)

	// a faulted request is not recorded
	require.Empty(t, rec.recorded)
}

func TestDecideCriticalFlag(t *testing.T) {
	repo := newFakeRepo()
	repo.apps["{APP}"] = &model.Application{ID: "{APP}", Name: "app"}
	v := makeVersion(3, "2.0.0.0")
	v.IsCritical = true
	repo.addVersion("{APP}", "win", "stable", v)

	l := newTestUpdate(repo, &fakeRecorder{})

	resp := l.Decide(context.Background(), updateCheckRequest("{APP}", "1.0.0.0"), &model.DecideOptions{Now: testNow()})
	require.Equal(t, "true", resp.Apps[0].UpdateCheck.Critical)
}

func TestDecidePingAndEventAcks(t *testing.T) {
	repo := newFakeRepo()
	repo.apps["{APP}"] = &model.Application{ID: "{APP}", Name: "app"}

	l := newTestUpdate(repo, &fakeRecorder{})

	req := &model.UpdateRequest{
		Protocol: model.ProtocolVersion,
		UserID:   "{user-1}",
		Apps: []model.AppRequest{{
			AppID: "{APP}",
			Ping:  &model.Ping{Active: "1"},
			Events: []model.EventReport{
				{EventType: 2, EventResult: 1},
				{EventType: 3, EventResult: 1},
			},
		}},
	}

	resp := l.Decide(context.Background(), req, &model.DecideOptions{Now: testNow()})

	app := resp.Apps[0]
	require.Equal(t, model.StatusOK, app.Status)
	require.Nil(t, app.UpdateCheck)
	require.NotNil(t, app.Ping)
	require.Equal(t, model.StatusOK, app.Ping.Status)
	require.Len(t, app.Events, 2)
	for _, ev := range app.Events {
		require.Equal(t, model.StatusOK, ev.Status)
	}
}

func TestDecideDataQueries(t *testing.T) {
	repo := newFakeRepo()
	repo.apps["{APP}"] = &model.Application{ID: "{APP}", Name: "app"}
	repo.data["{APP}"] = []*model.DataRecord{
		{AppID: "{APP}", Name: model.DataInstall, Index: "verboselogging", Value: "app_logging_level=1"},
		{AppID: "{APP}", Name: model.DataUntrusted, Value: "token"},
	}

	l := newTestUpdate(repo, &fakeRecorder{})

	req := &model.UpdateRequest{
		Protocol: model.ProtocolVersion,
		UserID:   "{user-1}",
		Apps: []model.AppRequest{{
			AppID: "{APP}",
			Data: []model.DataQuery{
				{Name: "install", Index: "verboselogging"},
				{Name: "install", Index: "missing"},
				{Name: "untrusted"},
			},
		}},
	}

	resp := l.Decide(context.Background(), req, &model.DecideOptions{Now: testNow()})

	data := resp.Apps[0].Data
	require.Len(t, data, 3)

	require.Equal(t, model.StatusOK, data[0].Status)
	require.Equal(t, "app_logging_level=1", data[0].Value)
	require.Equal(t, "verboselogging", data[0].Index)

	require.Equal(t, model.StatusNoData, data[1].Status)
	require.Empty(t, data[1].Value)

	require.Equal(t, model.StatusOK, data[2].Status)
	require.Equal(t, "token", data[2].Value)
}

func TestDecideDefaultsChannel(t *testing.T) {
	repo := newFakeRepo()
	repo.apps["{APP}"] = &model.Application{ID: "{APP}", Name: "app"}
	repo.addVersion("{APP}", "win", DefaultChannel, makeVersion(1, "2.0.0.0"))

	l := newTestUpdate(repo, &fakeRecorder{})

	req := updateCheckRequest("{APP}", "1.0.0.0")
	req.Apps[0].Tag = ""

	resp := l.Decide(context.Background(), req, &model.DecideOptions{Now: testNow()})
	require.Equal(t, model.StatusOK, resp.Apps[0].UpdateCheck.Status)
}
