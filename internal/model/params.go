package model

import (
	"time"

	"github.com/updateserve/omaha-backend/internal/vercomp"
)

type (
	SelectParam struct {
		AppID      string
		Platform   string
		Channel    string
		Installed  vercomp.Quad
		ClientID   string
		InstallAge int
		Today      time.Time
	}

	DecideOptions struct {
		Now      time.Time
		ClientIP string
	}

	CreateApplicationParam struct {
		ID   string `json:"id" validate:"required"`
		Name string `json:"name" validate:"required"`
	}

	CreateVersionParam struct {
		AppID        string `json:"app_id" validate:"required"`
		Platform     string `json:"platform" validate:"required,slug"`
		Channel      string `json:"channel" validate:"required,slug"`
		Version      string `json:"version" validate:"required"`
		FileKey      string `json:"file_key" validate:"required"`
		IsEnabled    bool   `json:"is_enabled"`
		IsCritical   bool   `json:"is_critical"`
		ReleaseNotes string `json:"release_notes"`
	}

	UpdateArtifactParam struct {
		VersionID int64  `json:"-"`
		FileKey   string `json:"file_key" validate:"required"`
	}

	SetPartialUpdateParam struct {
		VersionID       int64  `json:"-"`
		Percent         int    `json:"percent" validate:"min=0,max=100"`
		StartDate       string `json:"start_date" validate:"required"`
		EndDate         string `json:"end_date" validate:"required"`
		ExcludeNewUsers bool   `json:"exclude_new_users"`
		ActiveUsers     string `json:"active_users" validate:"omitempty,oneof=all week month"`
		IsEnabled       bool   `json:"is_enabled"`
	}

	CreateActionParam struct {
		VersionID            int64             `json:"-"`
		Event                string            `json:"event" validate:"required,oneof=preinstall install postinstall update"`
		Run                  string            `json:"run"`
		Arguments            string            `json:"arguments"`
		SuccessURL           string            `json:"successurl"`
		OnSuccess            string            `json:"onsuccess"`
		TerminateAllBrowsers bool              `json:"terminateallbrowsers"`
		Other                map[string]string `json:"other"`
	}
)
