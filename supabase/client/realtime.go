// Realtime subscription support. Change notifications are delivered
// over a Phoenix-protocol websocket; consumers get a "something
// changed" event per table and are expected to refetch.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// RealtimeEvent is one message from the realtime socket.
type RealtimeEvent struct {
	Event   string          `json:"event"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// EventHandler handles realtime events.
type EventHandler func(event *RealtimeEvent)

// ChangesConfig scopes a postgres_changes subscription.
type ChangesConfig struct {
	// Event is INSERT, UPDATE, DELETE, or * (default).
	Event  string
	Schema string // default "public"
	Table  string
}

// RealtimeClient maintains the websocket connection and its channels.
type RealtimeClient struct {
	mu       sync.RWMutex
	url      string
	apiKey   string
	conn     *websocket.Conn
	channels map[string]*channelState
	done     chan struct{}
	ref      int
	closed   bool
}

type channelState struct {
	topic    string
	configs  []ChangesConfig
	handler  EventHandler
	joinRef  string
	joined   bool
}

// NewRealtimeClient creates a realtime client for the project URL.
func NewRealtimeClient(supabaseURL, apiKey string) *RealtimeClient {
	wsURL := supabaseURL
	if strings.HasPrefix(wsURL, "https") {
		wsURL = "wss" + wsURL[len("https"):]
	} else if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + wsURL[len("http"):]
	}
	wsURL += "/realtime/v1/websocket?apikey=" + apiKey + "&vsn=1.0.0"

	return &RealtimeClient{
		url:      wsURL,
		apiKey:   apiKey,
		channels: make(map[string]*channelState),
		done:     make(chan struct{}),
	}
}

// Connect establishes the websocket connection and starts the reader
// and heartbeat loops. Reconnection with backoff is handled internally
// until Disconnect is called.
func (r *RealtimeClient) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}
	if err := r.dial(ctx); err != nil {
		return err
	}

	go r.readLoop()
	go r.heartbeat()
	return nil
}

func (r *RealtimeClient) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	r.conn = conn
	return nil
}

// Disconnect closes the connection and stops the loops.
func (r *RealtimeClient) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	close(r.done)

	if r.conn != nil {
		_ = r.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		err := r.conn.Close()
		r.conn = nil
		return err
	}
	return nil
}

// Subscribe joins a channel scoped to one or more postgres_changes
// configurations. The handler fires once per change notification.
func (r *RealtimeClient) Subscribe(ctx context.Context, channel string, configs []ChangesConfig, handler EventHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic := "realtime:" + channel
	state := &channelState{topic: topic, configs: configs, handler: handler}
	r.channels[topic] = state
	return r.join(state)
}

// Unsubscribe leaves a channel.
func (r *RealtimeClient) Unsubscribe(channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic := "realtime:" + channel
	state, ok := r.channels[topic]
	if !ok || !state.joined {
		delete(r.channels, topic)
		return nil
	}

	r.ref++
	msg := map[string]any{
		"topic":   topic,
		"event":   "phx_leave",
		"payload": map[string]any{},
		"ref":     fmt.Sprintf("%d", r.ref),
	}
	delete(r.channels, topic)
	if r.conn == nil {
		return nil
	}
	return r.conn.WriteJSON(msg)
}

// join sends phx_join for a channel. Caller holds the lock.
func (r *RealtimeClient) join(state *channelState) error {
	if r.conn == nil {
		return fmt.Errorf("realtime not connected")
	}

	changes := make([]map[string]any, 0, len(state.configs))
	for _, cfg := range state.configs {
		event := cfg.Event
		if event == "" {
			event = "*"
		}
		schema := cfg.Schema
		if schema == "" {
			schema = "public"
		}
		changes = append(changes, map[string]any{
			"event":  event,
			"schema": schema,
			"table":  cfg.Table,
		})
	}

	r.ref++
	ref := fmt.Sprintf("%d", r.ref)
	state.joinRef = ref
	msg := map[string]any{
		"topic": state.topic,
		"event": "phx_join",
		"payload": map[string]any{
			"config": map[string]any{
				"postgres_changes": changes,
			},
		},
		"ref":      ref,
		"join_ref": ref,
	}
	if err := r.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	state.joined = true
	return nil
}

func (r *RealtimeClient) readLoop() {
	for {
		select {
		case <-r.done:
			return
		default:
		}

		r.mu.RLock()
		conn := r.conn
		r.mu.RUnlock()
		if conn == nil {
			if !r.reconnect() {
				return
			}
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			r.mu.Lock()
			if r.conn == conn {
				r.conn.Close()
				r.conn = nil
			}
			r.mu.Unlock()
			if !r.reconnect() {
				return
			}
			continue
		}

		var event RealtimeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		r.dispatch(&event)
	}
}

// reconnect redials with jittered backoff and rejoins all channels.
// Returns false when the client has been disconnected for good.
func (r *RealtimeClient) reconnect() bool {
	backoff := time.Second
	for {
		select {
		case <-r.done:
			return false
		case <-time.After(backoff + time.Duration(rand.Int63n(int64(backoff/2)))):
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return false
		}
		err := r.dial(context.Background())
		if err == nil {
			for _, state := range r.channels {
				state.joined = false
				_ = r.join(state)
			}
			r.mu.Unlock()
			return true
		}
		r.mu.Unlock()

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (r *RealtimeClient) dispatch(event *RealtimeEvent) {
	switch event.Event {
	case "phx_reply", "phx_close", "presence_state", "presence_diff", "system":
		return
	}

	r.mu.RLock()
	state, ok := r.channels[event.Topic]
	r.mu.RUnlock()
	if !ok || state.handler == nil {
		return
	}
	go state.handler(event)
}

func (r *RealtimeClient) heartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.conn != nil {
				r.ref++
				_ = r.conn.WriteJSON(map[string]any{
					"topic":   "phoenix",
					"event":   "heartbeat",
					"payload": map[string]any{},
					"ref":     fmt.Sprintf("%d", r.ref),
				})
			}
			r.mu.Unlock()
		}
	}
}
