package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/updateserve/omaha-backend/internal/cache"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/pkg/errs"
	"github.com/updateserve/omaha-backend/internal/repo"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAdmin(t *testing.T) (*AdminLogic, sqlmock.Sqlmock, *fakeStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	rs := redsync.New(goredis.NewPool(client))

	base := repo.NewRepo(sqlx.NewDb(db, "sqlmock"))
	store := &fakeStore{}
	admin := NewAdminLogic(zap.NewNop(), repo.NewApplication(base), repo.NewVersion(base),
		store, NewRedisActivity(client), cache.NewUpdateCacheGroup(), rs)
	return admin, mock, store
}

var versionTestColumns = []string{
	"id", "app_id", "platform", "channel", "version", "version_number",
	"is_enabled", "is_critical", "file_key", "file_hash", "file_sha256",
	"file_size", "release_notes", "created_at",
}

func versionRows(id int64, fileKey string) *sqlmock.Rows {
	return sqlmock.NewRows(versionTestColumns).AddRow(id, "{APP}", "win", "stable", "2.0.0.0", uint64(1),
		true, false, fileKey, "", "", int64(0), "",
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestReplaceArtifactDeletesOldKeyAfterCommit(t *testing.T) {
	admin, mock, store := newTestAdmin(t)

	mock.ExpectQuery("SELECT (.+) FROM versions WHERE id").
		WillReturnRows(versionRows(7, "app/win/stable/2.0.0.0/old.exe"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE versions SET file_key").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := admin.ReplaceArtifact(context.Background(), &model.UpdateArtifactParam{
		VersionID: 7,
		FileKey:   "app/win/stable/2.0.0.0/new.exe",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// exactly one deletion, and only the replaced reference
	require.Equal(t, []string{"app/win/stable/2.0.0.0/old.exe"}, store.deleted)
}

func TestReplaceArtifactFailedCommitDeletesNothing(t *testing.T) {
	admin, mock, store := newTestAdmin(t)

	mock.ExpectQuery("SELECT (.+) FROM versions WHERE id").
		WillReturnRows(versionRows(7, "app/win/stable/2.0.0.0/old.exe"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE versions SET file_key").
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := admin.ReplaceArtifact(context.Background(), &model.UpdateArtifactParam{
		VersionID: 7,
		FileKey:   "app/win/stable/2.0.0.0/new.exe",
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// the row still points at the old bytes, so they must survive
	require.Empty(t, store.deleted)
}

func TestReplaceArtifactSameKeyDeletesNothing(t *testing.T) {
	admin, mock, store := newTestAdmin(t)

	mock.ExpectQuery("SELECT (.+) FROM versions WHERE id").
		WillReturnRows(versionRows(7, "app/win/stable/2.0.0.0/setup.exe"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE versions SET file_key").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := admin.ReplaceArtifact(context.Background(), &model.UpdateArtifactParam{
		VersionID: 7,
		FileKey:   "app/win/stable/2.0.0.0/setup.exe",
	})
	require.NoError(t, err)
	require.Empty(t, store.deleted)
}

func TestDeleteVersionRemovesOnlyItsArtifact(t *testing.T) {
	admin, mock, store := newTestAdmin(t)

	mock.ExpectQuery("SELECT (.+) FROM versions WHERE id").
		WillReturnRows(versionRows(7, "app/win/stable/2.0.0.0/setup.exe"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM actions WHERE version_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM partial_updates WHERE version_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM versions WHERE id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := admin.DeleteVersion(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, []string{"app/win/stable/2.0.0.0/setup.exe"}, store.deleted)
}

func TestDeleteVersionMissingRow(t *testing.T) {
	admin, mock, store := newTestAdmin(t)

	mock.ExpectQuery("SELECT (.+) FROM versions WHERE id").
		WillReturnRows(sqlmock.NewRows(versionTestColumns))

	err := admin.DeleteVersion(context.Background(), 7)
	require.ErrorIs(t, err, errs.ErrVersionNotFound)
	require.Empty(t, store.deleted)
}
