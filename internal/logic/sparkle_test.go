package logic

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/updateserve/omaha-backend/internal/config"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/protocol"
	"github.com/updateserve/omaha-backend/internal/storage"
	"github.com/updateserve/omaha-backend/internal/vercomp"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	deleted []string
}

func (f *fakeStore) Put(_ string, _ io.Reader) (storage.Descriptor, error) {
	return storage.Descriptor{}, nil
}

func (f *fakeStore) Open(_ string) (io.ReadCloser, error) { return nil, nil }

func (f *fakeStore) Stat(_ string) (storage.Descriptor, error) {
	return storage.Descriptor{}, nil
}

func (f *fakeStore) Delete(key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) SignedURL(key string, _ time.Duration) (string, error) {
	return "http://files.local/" + key + "?token=t", nil
}

func sparkleVersion(id int64, version string) *model.SparkleVersion {
	return &model.SparkleVersion{
		ID:        id,
		Version:   version,
		Number:    vercomp.MustParsePair(version).Packed(),
		FileKey:   "mac/app-" + version + ".dmg",
		FileSize:  1000,
		IsEnabled: true,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

type sparkleRepo struct {
	*fakeRepo
	sparkle []*model.SparkleVersion
}

func (s *sparkleRepo) ListEnabledSparkleVersions(_ context.Context, _, _ string) ([]*model.SparkleVersion, error) {
	return s.sparkle, nil
}

func TestAppcastFiltersByReportedVersion(t *testing.T) {
	repo := &sparkleRepo{fakeRepo: newFakeRepo(), sparkle: []*model.SparkleVersion{
		sparkleVersion(3, "3.0"),
		sparkleVersion(2, "2.5"),
		sparkleVersion(1, "1.0"),
	}}
	l := NewSparkleLogic(zap.NewNop(), repo, &fakeStore{}, &config.Config{})

	cast, err := l.Appcast(context.Background(), "myapp", "stable", "2.5", "")
	require.NoError(t, err)
	require.Equal(t, "2.0", cast.Version)
	require.Equal(t, "myapp", cast.Channel.Title)

	require.Len(t, cast.Channel.Items, 1)
	item := cast.Channel.Items[0]
	require.Equal(t, "myapp 3.0", item.Title)
	require.Equal(t, "3.0", item.Enclosure.Version)
	require.Equal(t, "http://files.local/mac/app-3.0.dmg?token=t", item.Enclosure.URL)
}

func TestAppcastServesHistoryWithoutReport(t *testing.T) {
	repo := &sparkleRepo{fakeRepo: newFakeRepo(), sparkle: []*model.SparkleVersion{
		sparkleVersion(2, "2.5"),
		sparkleVersion(1, "1.0"),
	}}
	l := NewSparkleLogic(zap.NewNop(), repo, &fakeStore{}, &config.Config{})

	cast, err := l.Appcast(context.Background(), "myapp", "stable", "", "")
	require.NoError(t, err)
	require.Len(t, cast.Channel.Items, 2)
	require.Equal(t, "2.5", cast.Channel.Items[0].Enclosure.Version)
}

func TestAppcastCriticalAndNotes(t *testing.T) {
	v := sparkleVersion(1, "2.0")
	v.IsCritical = true
	v.ReleaseNotes = "<h1>fixes</h1>"
	v.MinimumSystemVersion = "10.13"

	repo := &sparkleRepo{fakeRepo: newFakeRepo(), sparkle: []*model.SparkleVersion{v}}
	l := NewSparkleLogic(zap.NewNop(), repo, &fakeStore{}, &config.Config{})

	cast, err := l.Appcast(context.Background(), "myapp", "stable", "", "")
	require.NoError(t, err)
	require.Len(t, cast.Channel.Items, 1)

	item := cast.Channel.Items[0]
	require.NotNil(t, item.Tags)
	require.NotNil(t, item.Tags.CriticalUpdate)
	require.NotNil(t, item.Description)
	require.Equal(t, "<h1>fixes</h1>", item.Description.Text)
	require.Equal(t, "10.13", item.MinimumSystemVersion)
}

func TestAppcastPubDateUsesNumericZone(t *testing.T) {
	repo := &sparkleRepo{fakeRepo: newFakeRepo(), sparkle: []*model.SparkleVersion{
		sparkleVersion(1, "2.0"),
	}}
	l := NewSparkleLogic(zap.NewNop(), repo, &fakeStore{}, &config.Config{})

	cast, err := l.Appcast(context.Background(), "myapp", "stable", "", "")
	require.NoError(t, err)
	require.Len(t, cast.Channel.Items, 1)
	require.Equal(t, "Sun, 01 Mar 2026 10:00:00 +0000", cast.Channel.Items[0].PubDate)

	// the assembled feed carries the numeric zone onto the wire
	out, err := protocol.RenderAppcast(cast)
	require.NoError(t, err)
	require.Contains(t, string(out), "<pubDate>Sun, 01 Mar 2026 10:00:00 +0000</pubDate>")
}

func TestAppcastFiltersByMinimumSystemVersion(t *testing.T) {
	tooNew := sparkleVersion(2, "3.0")
	tooNew.MinimumSystemVersion = "10.14.0"
	fits := sparkleVersion(1, "2.0")
	fits.MinimumSystemVersion = "10.12.0"

	repo := &sparkleRepo{fakeRepo: newFakeRepo(), sparkle: []*model.SparkleVersion{tooNew, fits}}
	l := NewSparkleLogic(zap.NewNop(), repo, &fakeStore{}, &config.Config{})

	cast, err := l.Appcast(context.Background(), "myapp", "stable", "", "10.13.6")
	require.NoError(t, err)
	require.Len(t, cast.Channel.Items, 1)
	require.Equal(t, "2.0", cast.Channel.Items[0].Enclosure.Version)

	// an OS version the requirement cannot be compared against keeps the item
	cast, err = l.Appcast(context.Background(), "myapp", "stable", "", "unknown")
	require.NoError(t, err)
	require.Len(t, cast.Channel.Items, 2)
}
