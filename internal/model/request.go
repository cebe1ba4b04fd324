package model

import (
	"encoding/xml"
	"strconv"

	"github.com/updateserve/omaha-backend/internal/vercomp"
)

// UpdateRequest is the decoded Omaha client payload. Unknown elements
// and attributes are dropped by the decoder, which is what gives the
// parser its forward compatibility.
type UpdateRequest struct {
	XMLName        xml.Name     `xml:"request"`
	Protocol       string       `xml:"protocol,attr"`
	Version        string       `xml:"version,attr"`
	IsMachine      string       `xml:"ismachine,attr"`
	SessionID      string       `xml:"sessionid,attr"`
	UserID         string       `xml:"userid,attr"`
	InstallSource  string       `xml:"installsource,attr"`
	OriginURL      string       `xml:"originurl,attr"`
	TestSource     string       `xml:"testsource,attr"`
	UpdaterChannel string       `xml:"updaterchannel,attr"`
	RequestID      string       `xml:"requestid,attr"`
	OS             *OSInfo      `xml:"os"`
	HW             *HWInfo      `xml:"hw"`
	Apps           []AppRequest `xml:"app"`
}

// ClientID is the stable per-client identifier used for rollout
// bucketing: userid when present, sessionid otherwise. A client that
// reports neither gets the empty id and still buckets consistently
// within a single rollout stage.
func (r *UpdateRequest) ClientID() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.SessionID
}

type OSInfo struct {
	Platform string `xml:"platform,attr"`
	Version  string `xml:"version,attr"`
	SP       string `xml:"sp,attr"`
	Arch     string `xml:"arch,attr"`
}

type HWInfo struct {
	SSE        string `xml:"sse,attr"`
	SSE2       string `xml:"sse2,attr"`
	SSE3       string `xml:"sse3,attr"`
	SSSE3      string `xml:"ssse3,attr"`
	SSE41      string `xml:"sse41,attr"`
	SSE42      string `xml:"sse42,attr"`
	AVX        string `xml:"avx,attr"`
	PhysMemory string `xml:"physmemory,attr"`
}

// AppRequest is one application's report inside the payload. It is
// transient: consumed by the decision engine and the statistics
// collector, never persisted as protocol state.
type AppRequest struct {
	AppID       string        `xml:"appid,attr"`
	Version     string        `xml:"version,attr"`
	NextVersion string        `xml:"nextversion,attr"`
	Lang        string        `xml:"lang,attr"`
	Brand       string        `xml:"brand,attr"`
	Client      string        `xml:"client,attr"`
	Tag         string        `xml:"tag,attr"`
	InstallAge  string        `xml:"installage,attr"`
	UpdateCheck *UpdateCheck  `xml:"updatecheck"`
	Ping        *Ping         `xml:"ping"`
	Events      []EventReport `xml:"event"`
	Data        []DataQuery   `xml:"data"`
}

// InstalledVersion parses the reported version, treating absent or
// unparseable values as version zero per the protocol quirk that a
// fresh install may report nothing.
func (a *AppRequest) InstalledVersion() vercomp.Quad {
	q, err := vercomp.ParseQuad(a.Version)
	if err != nil {
		return vercomp.Quad{}
	}
	return q
}

// InstallAgeDays returns the reported install age. Omaha reports -1
// on the day of install; a missing attribute maps to -1 as well so
// both read as "new install".
func (a *AppRequest) InstallAgeDays() int {
	if a.InstallAge == "" {
		return -1
	}
	n, err := strconv.Atoi(a.InstallAge)
	if err != nil {
		return -1
	}
	return n
}

type UpdateCheck struct {
	TTToken string `xml:"tttoken,attr"`
}

type Ping struct {
	Active string `xml:"active,attr"`
	R      string `xml:"r,attr"`
	A      string `xml:"a,attr"`
}

type EventReport struct {
	EventType       int    `xml:"eventtype,attr"`
	EventResult     int    `xml:"eventresult,attr"`
	ErrorCode       int    `xml:"errorcode,attr"`
	ExtraCode1      int    `xml:"extracode1,attr"`
	DownloadTimeMs  uint64 `xml:"download_time_ms,attr"`
	Downloaded      uint64 `xml:"downloaded,attr"`
	Total           uint64 `xml:"total,attr"`
	UpdateCheckTime uint64 `xml:"update_check_time_ms,attr"`
	InstallTimeMs   uint64 `xml:"install_time_ms,attr"`
	NextVersion     string `xml:"nextversion,attr"`
	PreviousVersion string `xml:"previousversion,attr"`
}

// IsError mirrors the legacy reporting heuristic: some event types are
// inherently failures, otherwise a non success result or a non zero
// error code marks the event as failed.
func (e *EventReport) IsError() bool {
	switch e.EventType {
	case 100, 102, 103:
		return true
	}
	if e.EventResult != 1 && e.EventResult != 2 && e.EventResult != 3 {
		return true
	}
	return e.ErrorCode != 0
}

type DataQuery struct {
	Name  string `xml:"name,attr"`
	Index string `xml:"index,attr"`
}
