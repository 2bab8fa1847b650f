// Package twitch implements a small Helix API client covering the
// endpoints the action dispatcher and widget engine need: channel
// lookup, live/viewer polling, followers, clip creation, ad commercials,
// and chat messages.
package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const helixBase = "https://api.twitch.tv/helix"

// Client is a Helix API client authenticated with a static app/user
// access token, following the Authorization: Bearer scheme Helix
// requires.
type Client struct {
	clientID   string
	channel    string
	httpClient *http.Client

	broadcasterID string
}

// NewClient builds a Client. accessToken is wrapped in an
// oauth2.StaticTokenSource so the resulting http.Client automatically
// attaches "Authorization: Bearer <token>" to every request.
func NewClient(clientID, accessToken, channel string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return &Client{
		clientID:   clientID,
		channel:    channel,
		httpClient: oauth2.NewClient(context.Background(), src),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	u := helixBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("twitch: %s %s: status %d", method, path, resp.StatusCode)
	}
	return resp, nil
}

type userResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// BroadcasterID resolves and caches the numeric broadcaster id for the
// configured channel login name.
func (c *Client) BroadcasterID(ctx context.Context) (string, error) {
	if c.broadcasterID != "" {
		return c.broadcasterID, nil
	}
	resp, err := c.do(ctx, http.MethodGet, "/users", url.Values{"login": {c.channel}}, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out userResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("twitch: decode users: %w", err)
	}
	if len(out.Data) == 0 {
		return "", fmt.Errorf("twitch: channel %q not found", c.channel)
	}
	c.broadcasterID = out.Data[0].ID
	return c.broadcasterID, nil
}

type streamsResponse struct {
	Data []struct {
		ViewerCount int `json:"viewer_count"`
	} `json:"data"`
}

// StreamStatus returns whether the channel is currently live and its
// viewer count.
func (c *Client) StreamStatus(ctx context.Context) (live bool, viewers int, err error) {
	id, err := c.BroadcasterID(ctx)
	if err != nil {
		return false, 0, err
	}
	resp, err := c.do(ctx, http.MethodGet, "/streams", url.Values{"user_id": {id}}, nil)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	var out streamsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, 0, fmt.Errorf("twitch: decode streams: %w", err)
	}
	if len(out.Data) == 0 {
		return false, 0, nil
	}
	return true, out.Data[0].ViewerCount, nil
}

type followersResponse struct {
	Total int `json:"total"`
}

// FollowerCount returns the channel's current follower count.
func (c *Client) FollowerCount(ctx context.Context) (int, error) {
	id, err := c.BroadcasterID(ctx)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(ctx, http.MethodGet, "/channels/followers", url.Values{"broadcaster_id": {id}}, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out followersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("twitch: decode followers: %w", err)
	}
	return out.Total, nil
}

// CreateClip requests a clip of the channel's current broadcast.
func (c *Client) CreateClip(ctx context.Context) error {
	id, err := c.BroadcasterID(ctx)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/clips", url.Values{"broadcaster_id": {id}}, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// StartCommercial runs an ad break of the given length in seconds.
func (c *Client) StartCommercial(ctx context.Context, lengthSeconds int) error {
	id, err := c.BroadcasterID(ctx)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"broadcaster_id": id, "length": lengthSeconds}
	resp, err := c.do(ctx, http.MethodPost, "/channels/commercial", nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// SendChatMessage posts message to the channel's chat, sent as the
// broadcaster: Helix requires a sender_id, and this client has no
// separate delegated-sender identity configured, so sender_id equals
// broadcaster_id.
func (c *Client) SendChatMessage(ctx context.Context, message string) error {
	id, err := c.BroadcasterID(ctx)
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"broadcaster_id": id,
		"sender_id":      id,
		"message":        message,
	}
	resp, err := c.do(ctx, http.MethodPost, "/chat/messages", nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// PollInterval is how often RunPoller calls StreamStatus/FollowerCount
// to keep the Cache warm.
const PollInterval = 30 * time.Second

// RunPoller blocks, refreshing cache's live/viewer/follower snapshot
// every PollInterval, until stop is closed. A failed poll logs nothing
// itself — callers that care about visibility should wrap this, since
// transient Helix errors are expected and not worth alarming on.
func (c *Client) RunPoller(stop <-chan struct{}, cache *Cache) {
	cache.SetConfigured(true)
	c.pollOnce(cache)

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.pollOnce(cache)
		}
	}
}

func (c *Client) pollOnce(cache *Cache) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	live, viewers, err := c.StreamStatus(ctx)
	if err != nil {
		return
	}
	cache.SetLive(live, viewers)

	if followers, err := c.FollowerCount(ctx); err == nil {
		cache.SetFollowerCount(followers)
	}
}
