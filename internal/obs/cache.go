package obs

import "sync"

// Snapshot is a point-in-time read of OBS state, for the widget engine
// and status endpoints. Writes to the backing Cache are opportunistic;
// a Snapshot may be briefly stale.
type Snapshot struct {
	Connected    bool
	Streaming    bool
	Recording    bool
	CurrentScene string
}

// Cache is a reader/writer-locked record of the last known OBS state,
// updated asynchronously by Client.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewCache returns an empty, disconnected Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns the current state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// SetConnected updates the connected flag, clearing stream/record state
// on disconnect since it is no longer known to be accurate.
func (c *Cache) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Connected = connected
	if !connected {
		c.snap.Streaming = false
		c.snap.Recording = false
		c.snap.CurrentScene = ""
	}
}

// SetStreamState updates the streaming flag.
func (c *Cache) SetStreamState(streaming bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Streaming = streaming
}

// SetRecordState updates the recording flag.
func (c *Cache) SetRecordState(recording bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Recording = recording
}

// SetCurrentScene updates the name of the currently active scene.
func (c *Cache) SetCurrentScene(scene string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.CurrentScene = scene
}
