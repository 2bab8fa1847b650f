package obs

import "testing"

func TestCacheSetCurrentScene(t *testing.T) {
	c := NewCache()
	c.SetCurrentScene("Gameplay")
	if got := c.Snapshot().CurrentScene; got != "Gameplay" {
		t.Fatalf("CurrentScene = %q, want %q", got, "Gameplay")
	}
}

func TestCacheDisconnectClearsCurrentScene(t *testing.T) {
	c := NewCache()
	c.SetConnected(true)
	c.SetCurrentScene("Gameplay")

	c.SetConnected(false)
	if got := c.Snapshot().CurrentScene; got != "" {
		t.Fatalf("CurrentScene after disconnect = %q, want empty", got)
	}
}
