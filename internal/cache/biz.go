package cache

import (
	"strings"
	"time"

	"github.com/updateserve/omaha-backend/internal/model"
)

// UpdateCacheGroup holds the read caches on the decision path. Values
// store pointers, treat them as immutable.
type UpdateCacheGroup struct {
	// key: appId:platform:channel -> enabled versions, newest first
	VersionListCache *Cache[string, []*model.Version]
	// key: normalized app id
	ApplicationCache *Cache[string, *model.Application]
	// key: normalized app id
	DataCache *Cache[string, []*model.DataRecord]
	// key: appName:channel -> enabled sparkle versions, newest first
	SparkleListCache *Cache[string, []*model.SparkleVersion]
}

func NewUpdateCacheGroup() *UpdateCacheGroup {
	return &UpdateCacheGroup{
		VersionListCache: NewCache[string, []*model.Version](5 * time.Minute),
		ApplicationCache: NewCache[string, *model.Application](time.Hour),
		DataCache:        NewCache[string, []*model.DataRecord](time.Hour),
		SparkleListCache: NewCache[string, []*model.SparkleVersion](5 * time.Minute),
	}
}

func (g *UpdateCacheGroup) GetCacheKey(elems ...string) string {
	return strings.Join(elems, ":")
}

// EvictAll is called by admin writes; rollout state must reach clients
// within one cache TTL regardless.
func (g *UpdateCacheGroup) EvictAll() {
	g.VersionListCache.EvictAll()
	g.ApplicationCache.EvictAll()
	g.DataCache.EvictAll()
	g.SparkleListCache.EvictAll()
}
