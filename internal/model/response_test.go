package model

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActionResponseMarshal(t *testing.T) {
	testCases := []struct {
		Name     string
		Action   ActionResponse
		Expected string
	}{
		{
			Name:     "event only",
			Action:   ActionResponse{Event: "install"},
			Expected: `<action event="install"></action>`,
		},
		{
			Name: "fixed attributes in declaration order",
			Action: ActionResponse{
				Event:                "postinstall",
				Run:                  "setup.exe",
				Arguments:            "--silent",
				SuccessURL:           "http://example.com/done",
				OnSuccess:            "exitsilentlyonlaunchcmd",
				TerminateAllBrowsers: true,
			},
			Expected: `<action event="postinstall" run="setup.exe" arguments="--silent"` +
				` successurl="http://example.com/done" onsuccess="exitsilentlyonlaunchcmd"` +
				` terminateallbrowsers="true"></action>`,
		},
		{
			Name: "extras sorted after fixed",
			Action: ActionResponse{
				Event: "update",
				Run:   "updater.exe",
				Extra: map[string]string{"zeta": "2", "alpha": "1"},
			},
			Expected: `<action event="update" run="updater.exe" alpha="1" zeta="2"></action>`,
		},
		{
			Name: "fixed field wins a key collision",
			Action: ActionResponse{
				Event: "postinstall",
				Run:   "setup.exe",
				Extra: map[string]string{"run": "evil.exe", "event": "other"},
			},
			Expected: `<action event="postinstall" run="setup.exe"></action>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			out, err := xml.Marshal(tc.Action)
			require.NoError(t, err)
			require.Equal(t, tc.Expected, string(out))
		})
	}
}

func TestClientIDPrefersUserID(t *testing.T) {
	req := &UpdateRequest{SessionID: "{session}", UserID: "{user}"}
	require.Equal(t, "{user}", req.ClientID())

	req.UserID = ""
	require.Equal(t, "{session}", req.ClientID())
}

func TestInstalledVersionFallsBackToZero(t *testing.T) {
	testCases := []struct {
		Name    string
		Version string
		Zero    bool
	}{
		{Name: "parsable", Version: "1.3.23.0", Zero: false},
		{Name: "empty", Version: "", Zero: true},
		{Name: "garbage", Version: "not-a-version", Zero: true},
		{Name: "out of range", Version: "300.0.0.0", Zero: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			app := &AppRequest{Version: tc.Version}
			require.Equal(t, tc.Zero, app.InstalledVersion().IsZero())
		})
	}
}

func TestInstallAgeDays(t *testing.T) {
	require.Equal(t, -1, (&AppRequest{}).InstallAgeDays())
	require.Equal(t, -1, (&AppRequest{InstallAge: "x"}).InstallAgeDays())
	require.Equal(t, 39, (&AppRequest{InstallAge: "39"}).InstallAgeDays())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func TestPartialUpdateActiveOn(t *testing.T) {
	pu := &PartialUpdate{
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		IsEnabled: true,
	}

	require.True(t, pu.ActiveOn(day(2026, 3, 1)))
	require.True(t, pu.ActiveOn(day(2026, 3, 31)))
	require.False(t, pu.ActiveOn(day(2026, 2, 28)))
	require.False(t, pu.ActiveOn(day(2026, 4, 1)))

	pu.IsEnabled = false
	require.False(t, pu.ActiveOn(day(2026, 3, 10)))

	var nilPU *PartialUpdate
	require.False(t, nilPU.ActiveOn(day(2026, 3, 10)))
}
