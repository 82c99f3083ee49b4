package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/logging"
)

// Hub manages all active WebSocket clients and routes events.
type Hub struct {
	// A user may hold several connections, one per tab.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	replies    chan *reply
	done       chan struct{}

	log logging.Logger
}

type reply struct {
	client *Client
	data   []byte
}

type broadcastMsg struct {
	topic *uuid.UUID // nil: every connected client
	data  []byte
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		replies:    make(chan *reply, 64),
		done:       make(chan struct{}),
		log:        log.With("component", "ws"),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return nil

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.log.Debug(ctx, "client connected", "user_id", client.userID, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Debug(ctx, "client disconnected", "user_id", client.userID, "total", len(h.clients))
			}

		case r := <-h.replies:
			if _, ok := h.clients[r.client]; ok {
				select {
				case r.client.send <- r.data:
				default:
				}
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if msg.topic != nil && !client.IsSubscribed(*msg.topic) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					h.log.Warn(ctx, "dropping slow client", "user_id", client.userID)
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

// Register hands a client to the hub. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends an event to the subscribers of its topic, or to everyone
// when the event has no topic. Events are dropped after the hub stopped.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "marshal event", "type", event.Type, "error", err)
		return
	}

	select {
	case h.broadcast <- &broadcastMsg{topic: event.Topic, data: data}:
	case <-h.done:
	}
}

// direct queues data for one client only, such as a pong or an error reply.
func (h *Hub) direct(client *Client, data []byte) {
	select {
	case h.replies <- &reply{client: client, data: data}:
	case <-h.done:
	}
}
