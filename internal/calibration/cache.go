package calibration

import (
	"encoding/binary"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/sodium-tycoon/internal/metrics"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

const lockStripes = 64

type entry struct {
	index       float64
	defined     bool
	fingerprint uint64
}

// Cache memoises calibration indices per fighter.
// Each entry is stamped with a fingerprint of the history it was computed
// from, so any change to the window (a longer history or one that slid
// forward) recomputes. Invalidate drops an entry when a result is recorded.
// Writes for one fighter are serialised by a striped lock. When maxSize is
// positive the entry closest to expiry is evicted to make room.
type Cache struct {
	store     *cache.Cache
	ttl       time.Duration
	maxSize   int
	locks     [lockStripes]sync.Mutex
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewCache creates a calibration cache
func NewCache(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		store:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Lookup returns the fighter's index, computing and storing it on a miss
func (c *Cache) Lookup(f *models.Fighter) *float64 {
	if f == nil {
		return nil
	}
	key := strconv.FormatInt(f.ID, 10)
	stamp := Fingerprint(f.Matches)

	if e, ok := c.get(key); ok && e.fingerprint == stamp {
		c.hitCount.Add(1)
		c.updateMetrics()
		return e.value()
	}

	mu := c.lockFor(f.ID)
	mu.Lock()
	defer mu.Unlock()

	// Another writer may have filled the entry while we waited.
	if e, ok := c.get(key); ok && e.fingerprint == stamp {
		c.hitCount.Add(1)
		c.updateMetrics()
		return e.value()
	}

	c.missCount.Add(1)
	c.updateMetrics()

	idx, defined := Index(f.Matches, f.ID)
	e := entry{index: idx, defined: defined, fingerprint: stamp}
	if _, held := c.store.Get(key); !held {
		c.makeRoom()
	}
	c.store.Set(key, e, c.ttl)
	return e.value()
}

// Fingerprint identifies a history window by every field the index reads
// plus identity and date, in order
func Fingerprint(matches []*models.Match) uint64 {
	buf := make([]byte, 0, 8+len(matches)*56)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(matches)))
	for _, m := range matches {
		if m == nil {
			buf = binary.LittleEndian.AppendUint64(buf, 0)
			continue
		}
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.ID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.RedID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.BlueID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.WinnerID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.StakeRed))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.StakeBlue))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(m.Date.UnixNano()))
	}
	return xxhash.Sum64(buf)
}

// makeRoom evicts until a new entry fits under maxSize
func (c *Cache) makeRoom() {
	if c.maxSize <= 0 || c.store.ItemCount() < c.maxSize {
		return
	}
	c.store.DeleteExpired()
	for c.store.ItemCount() >= c.maxSize {
		oldestKey := ""
		var oldest int64
		for k, item := range c.store.Items() {
			if oldestKey == "" || item.Expiration < oldest {
				oldestKey, oldest = k, item.Expiration
			}
		}
		if oldestKey == "" {
			return
		}
		c.store.Delete(oldestKey)
	}
}

// Invalidate drops the cached index for a fighter
func (c *Cache) Invalidate(fighterID int64) {
	mu := c.lockFor(fighterID)
	mu.Lock()
	defer mu.Unlock()
	c.store.Delete(strconv.FormatInt(fighterID, 10))
}

// Clear flushes the cache and its counters
func (c *Cache) Clear() {
	c.store.Flush()
	c.hitCount.Store(0)
	c.missCount.Store(0)
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of fighters held
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

func (c *Cache) get(key string) (entry, bool) {
	v, found := c.store.Get(key)
	if !found {
		return entry{}, false
	}
	e, ok := v.(entry)
	return e, ok
}

func (c *Cache) lockFor(fighterID int64) *sync.Mutex {
	return &c.locks[uint64(fighterID)%lockStripes]
}

func (c *Cache) updateMetrics() {
	_, _, ratio := c.Stats()
	metrics.CalibrationCacheHitRatio.Set(ratio)
}

func (e entry) value() *float64 {
	if !e.defined {
		return nil
	}
	v := e.index
	return &v
}
