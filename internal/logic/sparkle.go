package logic

import (
	"context"
	"time"

	"github.com/updateserve/omaha-backend/internal/config"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/storage"
	"github.com/updateserve/omaha-backend/internal/vercomp"

	"go.uber.org/zap"
)

const (
	sparkleNS     = "http://www.andymatuschak.org/xml-namespaces/sparkle"
	dcNS          = "http://purl.org/dc/elements/1.1/"
	enclosureType = "application/octet-stream"
)

// SparkleLogic assembles appcast feeds for macOS clients. Enclosure
// URLs are signed so feed items expire together with the download
// grant.
type SparkleLogic struct {
	logger *zap.Logger
	repo   Repository
	store  storage.Store
	cmp    *vercomp.VersionComparator
	ttl    time.Duration
}

func NewSparkleLogic(logger *zap.Logger, repo Repository, store storage.Store, conf *config.Config) *SparkleLogic {
	ttl := conf.Storage.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SparkleLogic{
		logger: logger,
		repo:   repo,
		store:  store,
		cmp:    vercomp.NewComparator(),
		ttl:    ttl,
	}
}

// Appcast builds the feed for one app and channel. The newest build a
// client below it should install is the only item emitted when the
// client reports its version; without one the whole channel history is
// served newest first. Items whose minimum system version is provably
// above the reported OS version are dropped; when the two values are
// not comparable the item is kept.
func (l *SparkleLogic) Appcast(ctx context.Context, appName, channel, reported, osVersion string) (*model.Appcast, error) {
	versions, err := l.repo.ListEnabledSparkleVersions(ctx, appName, channel)
	if err != nil {
		return nil, err
	}

	var installed uint64
	if reported != "" {
		if p, err := vercomp.ParsePair(reported); err == nil {
			installed = p.Packed()
		}
	}

	cast := &model.Appcast{
		Version:   "2.0",
		SparkleNS: sparkleNS,
		DCNS:      dcNS,
		Channel: model.AppcastChannel{
			Title:       appName,
			Link:        "",
			Description: "Most recent changes with links to updates.",
			Language:    "en",
		},
	}

	for _, v := range versions {
		if v.Number <= installed {
			break
		}
		if l.belowMinimumSystem(osVersion, v.MinimumSystemVersion) {
			continue
		}
		item, err := l.item(appName, v)
		if err != nil {
			l.logger.Error("skipping appcast item",
				zap.String("app", appName), zap.String("version", v.Version), zap.Error(err))
			continue
		}
		cast.Channel.Items = append(cast.Channel.Items, item)
	}

	return cast, nil
}

func (l *SparkleLogic) belowMinimumSystem(osVersion, minimum string) bool {
	if osVersion == "" || minimum == "" {
		return false
	}
	ret := l.cmp.Compare(osVersion, minimum)
	return ret.Comparable && ret.Result == vercomp.Less
}

func (l *SparkleLogic) item(appName string, v *model.SparkleVersion) (model.AppcastItem, error) {
	url, err := l.store.SignedURL(v.FileKey, l.ttl)
	if err != nil {
		return model.AppcastItem{}, err
	}

	item := model.AppcastItem{
		Title:                appName + " " + v.Version,
		PubDate:              v.CreatedAt.UTC().Format(time.RFC1123Z),
		MinimumSystemVersion: v.MinimumSystemVersion,
		Enclosure: model.AppcastEnclosure{
			URL:          url,
			Version:      v.Version,
			ShortVersion: v.ShortVersion,
			DSASignature: v.DSASignature,
			Length:       v.FileSize,
			Type:         enclosureType,
		},
	}
	if v.ReleaseNotes != "" {
		item.Description = &model.CDATA{Text: v.ReleaseNotes}
	}
	if v.IsCritical {
		item.Tags = &model.AppcastTags{CriticalUpdate: &struct{}{}}
	}
	return item, nil
}
