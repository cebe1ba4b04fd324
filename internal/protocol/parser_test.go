package protocol

import (
	"testing"

	"github.com/updateserve/omaha-backend/internal/pkg/errs"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const sampleRequest = `<?xml version="1.0" encoding="UTF-8"?>
<request protocol="3.0" version="1.3.23.0" ismachine="0"
         sessionid="{5FAD27D4-6BFA-4daa-A1B3-5A1F821FEE0F}"
         userid="{D0BBD725-742D-44ae-8D46-0231E881D58E}"
         testsource="ossdev" requestid="{C8F6EDF3-B623-4ee6-B2DA-1D08A0B4C665}">
  <os platform="win" version="6.1" sp="" arch="x64"/>
  <app appid="{430FD4D0-B729-4F61-AA34-91526481799D}" version="1.3.23.0" nextversion="" lang="en" brand="GGLS" client="someclientid" installage="39">
    <updatecheck/>
    <ping r="1"/>
    <event eventtype="3" eventresult="1" errorcode="0" extracode1="0"/>
    <data name="install" index="verboselogging"/>
  </app>
</request>`

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(sampleRequest))
	require.NoError(t, err)

	require.Equal(t, "3.0", req.Protocol)
	require.Equal(t, "{D0BBD725-742D-44ae-8D46-0231E881D58E}", req.UserID)
	require.Equal(t, "{D0BBD725-742D-44ae-8D46-0231E881D58E}", req.ClientID())
	require.NotNil(t, req.OS)
	require.Equal(t, "win", req.OS.Platform)

	require.Len(t, req.Apps, 1)
	app := req.Apps[0]
	require.Equal(t, "{430FD4D0-B729-4F61-AA34-91526481799D}", app.AppID)
	require.Equal(t, "1.3.23.0", app.Version)
	require.Equal(t, 39, app.InstallAgeDays())
	require.NotNil(t, app.UpdateCheck)
	require.NotNil(t, app.Ping)
	require.Len(t, app.Events, 1)
	require.Equal(t, 3, app.Events[0].EventType)
	require.Len(t, app.Data, 1)
	require.Equal(t, "install", app.Data[0].Name)
	require.Equal(t, "verboselogging", app.Data[0].Index)
}

func TestParseRequestIgnoresUnknownMarkup(t *testing.T) {
	payload := `<request protocol="3.0" futureattr="x">
  <novelty whatever="1"/>
  <app appid="{APP}" version="1.0.0.0"><updatecheck supportsfuture="yes"/></app>
</request>`

	req, err := ParseRequest([]byte(payload))
	require.NoError(t, err)
	require.Len(t, req.Apps, 1)
	require.NotNil(t, req.Apps[0].UpdateCheck)
}

func TestParseRequestKeepsAppWithoutID(t *testing.T) {
	// an app element missing its appid is answered per-app downstream,
	// not rejected at the transport
	payload := `<request protocol="3.0">
  <app version="1.0.0.0"><updatecheck/></app>
  <app appid="{APP}" version="1.0.0.0"><updatecheck/></app>
</request>`

	req, err := ParseRequest([]byte(payload))
	require.NoError(t, err)
	require.Len(t, req.Apps, 2)
	require.Empty(t, req.Apps[0].AppID)
	require.Equal(t, "{APP}", req.Apps[1].AppID)
}

func TestParseRequestErrors(t *testing.T) {
	testCases := []struct {
		Name     string
		Payload  string
		Expected error
	}{
		{
			Name:     "undecodable markup",
			Payload:  `<request protocol="3.0"`,
			Expected: errs.ErrMalformedPayload,
		},
		{
			Name:     "not xml at all",
			Payload:  `{"protocol":"3.0"}`,
			Expected: errs.ErrMalformedPayload,
		},
		{
			Name:     "unsupported protocol",
			Payload:  `<request protocol="2.0"><app appid="{APP}"/></request>`,
			Expected: errs.ErrSchemaViolation,
		},
		{
			Name:     "no app elements",
			Payload:  `<request protocol="3.0"></request>`,
			Expected: errs.ErrSchemaViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tc.Payload))
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.Expected))
		})
	}
}
