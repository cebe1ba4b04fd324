package repo

import (
	"context"

	"github.com/pkg/errors"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id         VARCHAR(38) PRIMARY KEY,
		name       VARCHAR(64) NOT NULL UNIQUE,
		created_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS platforms (
		id   BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(16) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id   BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(16) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS versions (
		id             BIGINT AUTO_INCREMENT PRIMARY KEY,
		app_id         VARCHAR(38)     NOT NULL,
		platform       VARCHAR(16)     NOT NULL,
		channel        VARCHAR(16)     NOT NULL,
		version        VARCHAR(40)     NOT NULL,
		version_number BIGINT UNSIGNED NOT NULL,
		is_enabled     TINYINT(1)      NOT NULL DEFAULT 1,
		is_critical    TINYINT(1)      NOT NULL DEFAULT 0,
		file_key       VARCHAR(255)    NOT NULL DEFAULT '',
		file_hash      VARCHAR(140)    NOT NULL DEFAULT '',
		file_sha256    VARCHAR(64)     NOT NULL DEFAULT '',
		file_size      BIGINT          NOT NULL DEFAULT 0,
		release_notes  TEXT            NOT NULL,
		created_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uk_versions (app_id, platform, channel, version_number),
		KEY idx_versions_lookup (app_id, platform, channel, is_enabled, version_number),
		KEY idx_versions_resolve (version, platform)
	)`,
	`CREATE TABLE IF NOT EXISTS partial_updates (
		id                BIGINT AUTO_INCREMENT PRIMARY KEY,
		version_id        BIGINT     NOT NULL UNIQUE,
		percent           TINYINT    NOT NULL,
		start_date        DATE       NOT NULL,
		end_date          DATE       NOT NULL,
		exclude_new_users TINYINT(1) NOT NULL DEFAULT 1,
		active_users      TINYINT    NOT NULL DEFAULT 1,
		is_enabled        TINYINT(1) NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id                   BIGINT AUTO_INCREMENT PRIMARY KEY,
		version_id           BIGINT       NOT NULL,
		event                TINYINT      NOT NULL,
		run                  VARCHAR(255) NOT NULL DEFAULT '',
		arguments            VARCHAR(255) NOT NULL DEFAULT '',
		successurl           VARCHAR(255) NOT NULL DEFAULT '',
		onsuccess            VARCHAR(255) NOT NULL DEFAULT '',
		terminateallbrowsers TINYINT(1)   NOT NULL DEFAULT 0,
		other                TEXT         NOT NULL,
		KEY idx_actions_version_event (version_id, event)
	)`,
	`CREATE TABLE IF NOT EXISTS data (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		app_id     VARCHAR(38)  NOT NULL,
		name       TINYINT      NOT NULL,
		index_name VARCHAR(255) NOT NULL DEFAULT '',
		value      TEXT         NOT NULL,
		KEY idx_data_app (app_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sparkle_versions (
		id                     BIGINT AUTO_INCREMENT PRIMARY KEY,
		app_id                 VARCHAR(38)     NOT NULL,
		channel                VARCHAR(16)     NOT NULL,
		version                VARCHAR(16)     NOT NULL,
		version_number         BIGINT UNSIGNED NOT NULL,
		short_version          VARCHAR(40)     NOT NULL DEFAULT '',
		minimum_system_version VARCHAR(16)     NOT NULL DEFAULT '',
		is_enabled             TINYINT(1)      NOT NULL DEFAULT 1,
		is_critical            TINYINT(1)      NOT NULL DEFAULT 0,
		file_key               VARCHAR(255)    NOT NULL DEFAULT '',
		file_size              BIGINT          NOT NULL DEFAULT 0,
		dsa_signature          VARCHAR(140)    NOT NULL DEFAULT '',
		release_notes          TEXT            NOT NULL,
		created_at             TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uk_sparkle_versions (app_id, channel, version_number)
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id             BIGINT AUTO_INCREMENT PRIMARY KEY,
		version        VARCHAR(40) NOT NULL DEFAULT '',
		ismachine      VARCHAR(8)  NOT NULL DEFAULT '',
		sessionid      VARCHAR(40) NOT NULL DEFAULT '',
		userid         VARCHAR(40) NOT NULL DEFAULT '',
		installsource  VARCHAR(40) NOT NULL DEFAULT '',
		originurl      VARCHAR(255) NOT NULL DEFAULT '',
		testsource     VARCHAR(40) NOT NULL DEFAULT '',
		updaterchannel VARCHAR(16) NOT NULL DEFAULT '',
		ip             VARCHAR(45) NOT NULL DEFAULT '',
		os_platform    VARCHAR(16) NOT NULL DEFAULT '',
		os_version     VARCHAR(16) NOT NULL DEFAULT '',
		os_sp          VARCHAR(40) NOT NULL DEFAULT '',
		os_arch        VARCHAR(16) NOT NULL DEFAULT '',
		hw_sse         VARCHAR(8)  NOT NULL DEFAULT '',
		hw_sse2        VARCHAR(8)  NOT NULL DEFAULT '',
		hw_sse3        VARCHAR(8)  NOT NULL DEFAULT '',
		hw_ssse3       VARCHAR(8)  NOT NULL DEFAULT '',
		hw_sse41       VARCHAR(8)  NOT NULL DEFAULT '',
		hw_sse42       VARCHAR(8)  NOT NULL DEFAULT '',
		hw_avx         VARCHAR(8)  NOT NULL DEFAULT '',
		hw_physmemory  VARCHAR(16) NOT NULL DEFAULT '',
		created_at     TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_requests_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS app_requests (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		request_id  BIGINT      NOT NULL,
		app_id      VARCHAR(38) NOT NULL,
		version     VARCHAR(40) NOT NULL DEFAULT '',
		nextversion VARCHAR(40) NOT NULL DEFAULT '',
		lang        VARCHAR(40) NOT NULL DEFAULT '',
		tag         VARCHAR(40) NOT NULL DEFAULT '',
		installage  INT         NOT NULL DEFAULT -1,
		channel     VARCHAR(16) NOT NULL DEFAULT 'undefined',
		KEY idx_app_requests_app (app_id),
		KEY idx_app_requests_request (request_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                   BIGINT AUTO_INCREMENT PRIMARY KEY,
		app_request_id       BIGINT NOT NULL,
		eventtype            INT    NOT NULL,
		eventresult          INT    NOT NULL,
		errorcode            INT    NOT NULL DEFAULT 0,
		extracode1           INT    NOT NULL DEFAULT 0,
		download_time_ms     BIGINT UNSIGNED NOT NULL DEFAULT 0,
		downloaded           BIGINT UNSIGNED NOT NULL DEFAULT 0,
		total                BIGINT UNSIGNED NOT NULL DEFAULT 0,
		update_check_time_ms BIGINT UNSIGNED NOT NULL DEFAULT 0,
		install_time_ms      BIGINT UNSIGNED NOT NULL DEFAULT 0,
		nextversion          VARCHAR(40) NOT NULL DEFAULT '',
		previousversion      VARCHAR(40) NOT NULL DEFAULT '',
		KEY idx_events_app_request (app_request_id),
		KEY idx_events_type (eventtype)
	)`,
}

// Migrate applies the schema at startup, the sqlx counterpart of the
// automatic schema create the service ran before.
func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := r.dx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}
