package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/logging"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
	maxTopics      = 100
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	log    logging.Logger

	// topics tracks the workshops and articles this client follows.
	topics map[uuid.UUID]struct{}
	mu     sync.RWMutex

	send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		log:    hub.log.With("user_id", userID),
		topics: make(map[uuid.UUID]struct{}),
		send:   make(chan []byte, sendBufSize),
	}
}

func (c *Client) IsSubscribed(topic uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[topic]
	return ok
}

// Subscribe adds a topic. It reports false when the client follows too many.
func (c *Client) Subscribe(topic uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.topics[topic]; !ok && len(c.topics) >= maxTopics {
		return false
	}
	c.topics[topic] = struct{}{}
	return true
}

func (c *Client) Unsubscribe(topic uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topic)
}

// ReadPump reads client events until the connection fails or ctx ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.Debug(ctx, "client closed connection")
			} else {
				c.log.Debug(ctx, "read error", "error", err)
			}
			return
		}

		c.handleEvent(ctx, &event)
	}
}

// WritePump writes queued events and keeps the connection alive with pings.
// It returns once the hub closes the send channel.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusGoingAway, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Debug(ctx, "write error", "error", err)
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Debug(ctx, "ping error", "error", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) handleEvent(ctx context.Context, event *Event) {
	switch event.Type {
	case EventTypeSubscribe:
		var p TopicPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid subscribe payload")
			return
		}
		if !c.Subscribe(p.ID) {
			c.sendError("TOO_MANY_TOPICS", "subscription limit reached")
			return
		}
		c.log.Debug(ctx, "subscribed", "topic", p.ID)

	case EventTypeUnsubscribe:
		var p TopicPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid unsubscribe payload")
			return
		}
		c.Unsubscribe(p.ID)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.queue(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.queue(data)
}

func (c *Client) queue(data []byte) {
	c.hub.direct(c, data)
}
