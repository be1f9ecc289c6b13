package proc

import (
	"time"

	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/sys"
)

// SweepCache drops cached commands older than maxAge.
func SweepCache(cache *msgcache.Cache, maxAge time.Duration) int {
	removed := cache.Sweep(maxAge)
	if removed == 0 {
		sys.LogDebug(sys.MsgCacheSweepEmpty)
		return 0
	}
	sys.LogCache(sys.MsgCacheSwept, removed, maxAge)
	return removed
}
