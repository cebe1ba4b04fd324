package model

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Application identity ids are stored uppercase; lookups normalize the
// client supplied id the same way.
type Application struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func NormalizeAppID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

type Platform struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Channel struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// UndefinedChannel is the sentinel returned when a reported build
// number cannot be mapped back to a channel.
const UndefinedChannel = "undefined"

type Version struct {
	ID           int64     `db:"id"`
	AppID        string    `db:"app_id"`
	Platform     string    `db:"platform"`
	Channel      string    `db:"channel"`
	Version      string    `db:"version"`
	Number       uint64    `db:"version_number"`
	IsEnabled    bool      `db:"is_enabled"`
	IsCritical   bool      `db:"is_critical"`
	FileKey      string    `db:"file_key"`
	FileHash     string    `db:"file_hash"`
	FileSHA256   string    `db:"file_sha256"`
	FileSize     int64     `db:"file_size"`
	ReleaseNotes string    `db:"release_notes"`
	CreatedAt    time.Time `db:"created_at"`
}

// PackageName is the artifact file name the Omaha manifest references.
func (v *Version) PackageName() string {
	if i := strings.LastIndexByte(v.FileKey, '/'); i >= 0 {
		return v.FileKey[i+1:]
	}
	return v.FileKey
}

// PackageDir is the key prefix joined under a mirror to form the
// manifest codebase URL.
func (v *Version) PackageDir() string {
	if i := strings.LastIndexByte(v.FileKey, '/'); i >= 0 {
		return v.FileKey[:i+1]
	}
	return ""
}

type ActiveUsersCohort int

const (
	CohortAll ActiveUsersCohort = iota
	CohortWeek
	CohortMonth
)

func (c ActiveUsersCohort) String() string {
	switch c {
	case CohortWeek:
		return "week"
	case CohortMonth:
		return "month"
	default:
		return "all"
	}
}

// PartialUpdate is the staged rollout window attached one-to-one to a
// version. It gates recommendation only while enabled and the current
// date falls inside [StartDate, EndDate].
type PartialUpdate struct {
	ID              int64             `db:"id"`
	VersionID       int64             `db:"version_id"`
	Percent         int               `db:"percent"`
	StartDate       time.Time         `db:"start_date"`
	EndDate         time.Time         `db:"end_date"`
	ExcludeNewUsers bool              `db:"exclude_new_users"`
	ActiveUsers     ActiveUsersCohort `db:"active_users"`
	IsEnabled       bool              `db:"is_enabled"`
}

// ActiveOn reports whether the rollout window covers the given date.
// Comparison is by calendar day, not instant.
func (p *PartialUpdate) ActiveOn(today time.Time) bool {
	if p == nil || !p.IsEnabled {
		return false
	}
	day := today.Truncate(24 * time.Hour)
	return !day.Before(p.StartDate.Truncate(24*time.Hour)) &&
		!day.After(p.EndDate.Truncate(24*time.Hour))
}

type EventType int

const (
	EventPreinstall EventType = iota
	EventInstall
	EventPostinstall
	EventUpdate
)

func (e EventType) String() string {
	switch e {
	case EventPreinstall:
		return "preinstall"
	case EventInstall:
		return "install"
	case EventPostinstall:
		return "postinstall"
	case EventUpdate:
		return "update"
	default:
		return "unknown"
	}
}

func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "preinstall":
		return EventPreinstall, true
	case "install":
		return EventInstall, true
	case "postinstall":
		return EventPostinstall, true
	case "update":
		return EventUpdate, true
	}
	return 0, false
}

// Action is a post-install step serialized into the manifest for its
// event type. Other holds free-form extra attributes as a JSON object
// of string to string.
type Action struct {
	ID                   int64     `db:"id"`
	VersionID            int64     `db:"version_id"`
	Event                EventType `db:"event"`
	Run                  string    `db:"run"`
	Arguments            string    `db:"arguments"`
	SuccessURL           string    `db:"successurl"`
	OnSuccess            string    `db:"onsuccess"`
	TerminateAllBrowsers bool      `db:"terminateallbrowsers"`
	Other                string    `db:"other"`
}

// OtherAttributes decodes the extra attribute column. A broken or
// empty column yields an empty map, never an error: extras are
// best-effort and must not fail response assembly.
func (a *Action) OtherAttributes() map[string]string {
	if a.Other == "" {
		return nil
	}
	var m map[string]string
	if err := sonic.UnmarshalString(a.Other, &m); err != nil {
		return nil
	}
	return m
}

type DataName int

const (
	DataInstall DataName = iota
	DataUntrusted
)

func (n DataName) String() string {
	if n == DataUntrusted {
		return "untrusted"
	}
	return "install"
}

func ParseDataName(s string) (DataName, bool) {
	switch s {
	case "install":
		return DataInstall, true
	case "untrusted":
		return DataUntrusted, true
	}
	return 0, false
}

// DataRecord is an admin managed name/index/value blob echoed into
// matching <data> elements of the response.
type DataRecord struct {
	ID    int64    `db:"id"`
	AppID string   `db:"app_id"`
	Name  DataName `db:"name"`
	Index string   `db:"index_name"`
	Value string   `db:"value"`
}

// SparkleVersion is the Sparkle (macOS) flavor of Version: a two
// component build number plus an optional human readable short
// version.
type SparkleVersion struct {
	ID                   int64     `db:"id"`
	AppID                string    `db:"app_id"`
	Channel              string    `db:"channel"`
	Version              string    `db:"version"`
	Number               uint64    `db:"version_number"`
	ShortVersion         string    `db:"short_version"`
	MinimumSystemVersion string    `db:"minimum_system_version"`
	IsEnabled            bool      `db:"is_enabled"`
	IsCritical           bool      `db:"is_critical"`
	FileKey              string    `db:"file_key"`
	FileSize             int64     `db:"file_size"`
	DSASignature         string    `db:"dsa_signature"`
	ReleaseNotes         string    `db:"release_notes"`
	CreatedAt            time.Time `db:"created_at"`
}
