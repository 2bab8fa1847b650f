package twitch

import "sync"

// Snapshot is a point-in-time read of Twitch channel state.
type Snapshot struct {
	Configured    bool
	Live          bool
	ViewerCount   int
	FollowerCount int
}

// Cache is a reader/writer-locked record of the last known Twitch
// channel state, updated asynchronously by Client.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewCache returns a Cache marked unconfigured until SetConfigured(true)
// is called.
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns the current state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// SetConfigured marks whether Twitch credentials are present.
func (c *Cache) SetConfigured(configured bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Configured = configured
}

// SetLive updates the live/viewer-count fields together, since a viewer
// count only means something while live.
func (c *Cache) SetLive(live bool, viewers int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Live = live
	c.snap.ViewerCount = viewers
}

// SetFollowerCount updates the follower count.
func (c *Cache) SetFollowerCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.FollowerCount = n
}
