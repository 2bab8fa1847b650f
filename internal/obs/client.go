// Package obs implements just enough of the OBS WebSocket 5.x protocol
// to drive stream/record/mute toggles and scene switches, and to keep a
// Cache of connection/stream/record state for the widget engine.
package obs

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	opHello        = 0
	opIdentify     = 1
	opIdentified   = 2
	opRequest      = 6
	opRequestResp  = 7
	rpcVersion     = 1
	requestTimeout = 5 * time.Second
)

type envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type helloData struct {
	Authentication *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication"`
}

type identifyData struct {
	RPCVersion     int    `json:"rpcVersion"`
	Authentication string `json:"authentication,omitempty"`
}

type requestData struct {
	RequestType string      `json:"requestType"`
	RequestID   string      `json:"requestId"`
	RequestData interface{} `json:"requestData,omitempty"`
}

type responseStatus struct {
	Result  bool   `json:"result"`
	Comment string `json:"comment"`
}

type requestResponseData struct {
	RequestID      string          `json:"requestId"`
	RequestStatus  responseStatus  `json:"requestStatus"`
	ResponseData   json.RawMessage `json:"responseData"`
}

// Client is a connected OBS WebSocket session. It owns a background
// goroutine that reads events/responses off the socket, updates Cache,
// and dispatches request responses to waiting callers.
type Client struct {
	log   *zap.SugaredLogger
	cache *Cache

	conn *websocket.Conn

	mu      sync.Mutex
	pending map[string]chan requestResponseData
	seq     int
}

// Dial connects to url, performs the Hello/Identify handshake using
// password (which may be empty when the OBS instance has no auth
// enabled), and starts the background read loop.
func Dial(url, password string, cache *Cache, log *zap.SugaredLogger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("obs: dial: %w", err)
	}

	c := &Client{log: log, cache: cache, conn: conn, pending: make(map[string]chan requestResponseData)}

	if err := c.handshake(password); err != nil {
		conn.Close()
		return nil, err
	}

	cache.SetConnected(true)
	go c.readLoop()
	return c, nil
}

func (c *Client) handshake(password string) error {
	var hello envelope
	if err := c.conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("obs: read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("obs: expected Hello (op 0), got op %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil {
		return fmt.Errorf("obs: decode hello: %w", err)
	}

	identify := identifyData{RPCVersion: rpcVersion}
	if hd.Authentication != nil {
		identify.Authentication = computeAuth(password, hd.Authentication.Salt, hd.Authentication.Challenge)
	}

	if err := c.send(opIdentify, identify); err != nil {
		return fmt.Errorf("obs: send identify: %w", err)
	}

	var identified envelope
	if err := c.conn.ReadJSON(&identified); err != nil {
		return fmt.Errorf("obs: read identified: %w", err)
	}
	if identified.Op != opIdentified {
		return fmt.Errorf("obs: expected Identified (op 2), got op %d", identified.Op)
	}
	return nil
}

// computeAuth implements OBS's documented challenge-response:
// base64(SHA256(base64(SHA256(password+salt)) + challenge)).
func computeAuth(password, salt, challenge string) string {
	secretHash := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secretHash[:])
	authHash := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(authHash[:])
}

func (c *Client) send(op int, d interface{}) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(envelope{Op: op, D: payload})
}

func (c *Client) nextRequestID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("req-%d", c.seq)
}

func (c *Client) readLoop() {
	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.log.Warnw("obs: read loop exiting", "error", err)
			c.cache.SetConnected(false)
			return
		}
		if env.Op != opRequestResp {
			continue
		}
		var resp requestResponseData
		if err := json.Unmarshal(env.D, &resp); err != nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.RequestID]
		if ok {
			delete(c.pending, resp.RequestID)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// Request issues a typed request and blocks for its response.
func (c *Client) Request(requestType string, data interface{}) (json.RawMessage, error) {
	id := c.nextRequestID()
	ch := make(chan requestResponseData, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.send(opRequest, requestData{RequestType: requestType, RequestID: id, RequestData: data}); err != nil {
		return nil, fmt.Errorf("obs: send request %s: %w", requestType, err)
	}

	select {
	case resp := <-ch:
		if !resp.RequestStatus.Result {
			return nil, fmt.Errorf("obs: request %s failed: %s", requestType, resp.RequestStatus.Comment)
		}
		return resp.ResponseData, nil
	case <-time.After(requestTimeout):
		return nil, fmt.Errorf("obs: request %s timed out", requestType)
	}
}

// ToggleStream toggles OBS's active stream and updates the cache from
// the result.
func (c *Client) ToggleStream() error {
	data, err := c.Request("ToggleStream", nil)
	if err != nil {
		return err
	}
	var out struct {
		OutputActive bool `json:"outputActive"`
	}
	if err := json.Unmarshal(data, &out); err == nil {
		c.cache.SetStreamState(out.OutputActive)
	}
	return nil
}

// ToggleRecord toggles OBS's active recording and updates the cache from
// the result.
func (c *Client) ToggleRecord() error {
	data, err := c.Request("ToggleRecord", nil)
	if err != nil {
		return err
	}
	var out struct {
		OutputActive bool `json:"outputActive"`
	}
	if err := json.Unmarshal(data, &out); err == nil {
		c.cache.SetRecordState(out.OutputActive)
	}
	return nil
}

// ToggleMute toggles the mute state of the given input (e.g. the default
// microphone source name).
func (c *Client) ToggleMute(inputName string) error {
	_, err := c.Request("ToggleInputMute", map[string]string{"inputName": inputName})
	return err
}

// SetCurrentScene switches the active program scene.
func (c *Client) SetCurrentScene(sceneName string) error {
	_, err := c.Request("SetCurrentProgramScene", map[string]string{"sceneName": sceneName})
	if err != nil {
		return err
	}
	c.cache.SetCurrentScene(sceneName)
	return nil
}

// Close closes the underlying WebSocket connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
