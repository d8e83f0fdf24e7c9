package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/inconshreveable/log15"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed for an input to be applied by the session.
	inputTimeout = 5 * time.Second

	// Pending outbound messages before updates are dropped.
	broadcastBuffer = 256
)

// Outbound event names
const (
	EventWelcome     = "welcome"
	EventStateUpdate = "state_update"
	EventError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Any origin may watch or play the local game
		return true
	},
}

// Message represents an outbound WebSocket message
type Message struct {
	ClientID  string            `json:"client_id,omitempty"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event"`
	Data      interface{}       `json:"data,omitempty"`
}

// InputHandler receives the player inputs sent by clients.
// service.GameService satisfies it.
type InputHandler interface {
	Start(ctx context.Context) (*service.ActionResult, error)
	Select(ctx context.Context, color string) (*service.ActionResult, error)
}

// Client represents a WebSocket client
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ID returns the client identifier announced in the welcome message
func (c *Client) ID() string {
	return c.id
}

type directMessage struct {
	client  *Client
	message *Message
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan *Message

	// Outbound messages for a single client
	direct chan directMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	input    InputHandler
	snapshot func() *engine.GameState
	count    atomic.Int32
	done     chan struct{}
	log      log15.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger log15.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		direct:     make(chan directMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger,
	}
}

// SetInputHandler routes client inputs. Without one, inputs are rejected.
// It must be called before Run.
func (h *Hub) SetInputHandler(input InputHandler) {
	h.input = input
}

// SetSnapshotFunc provides the state sent to clients when they connect.
// It must be called before Run.
func (h *Hub) SetSnapshotFunc(fn func() *engine.GameState) {
	h.snapshot = fn
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Run starts the hub's event loop and closes every client when ctx ends
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case dm := <-h.direct:
			if h.clients[dm.client] {
				h.sendTo(dm.client, dm.message)
			}
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		id:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// Publish forwards a session update to every client. It never blocks, so it
// can be used directly as a session listener.
func (h *Hub) Publish(u session.Update) {
	h.enqueue(&Message{Event: EventStateUpdate, GameState: u.State})

	for _, ev := range u.Events {
		// the snapshot already carries the countdown
		if ev.Type == engine.EventTick {
			continue
		}
		ev := ev
		h.enqueue(&Message{Event: string(ev.Type), Data: &ev})
	}
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("dropping websocket message, hub is backed up", "event", message.Event)
	}
}

// registerClient adds a client and greets it with the current state
func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.count.Store(int32(len(h.clients)))

	h.sendTo(client, &Message{ClientID: client.id, Event: EventWelcome})
	if h.snapshot != nil {
		h.sendTo(client, &Message{Event: EventStateUpdate, GameState: h.snapshot()})
	}

	h.log.Debug("client registered", "client", client.id, "total", len(h.clients))
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.count.Store(int32(len(h.clients)))

		h.log.Debug("client unregistered", "client", client.id, "remaining", len(h.clients))
	}
}

// broadcastMessage sends a message to all clients
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to marshal broadcast message", "err", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, close it
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) sendTo(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to marshal message", "err", err)
		return
	}

	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

// reply queues a message for one client through the hub loop
func (h *Hub) reply(client *Client, message *Message) {
	select {
	case h.direct <- directMessage{client: client, message: message}:
	default:
		h.log.Warn("dropping websocket reply", "client", client.id)
	}
}

// handleInput applies {"action":"start"} and {"action":"select","color":"red"}
func (h *Hub) handleInput(client *Client, data []byte) {
	action, err := jsonparser.GetString(data, "action")
	if err != nil {
		h.reply(client, &Message{Event: EventError, Data: "message needs an action"})
		return
	}

	if h.input == nil {
		h.reply(client, &Message{Event: EventError, Data: "input is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inputTimeout)
	defer cancel()

	switch action {
	case "start":
		_, err = h.input.Start(ctx)
	case "select":
		color, _ := jsonparser.GetString(data, "color")
		_, err = h.input.Select(ctx, color)
	default:
		h.reply(client, &Message{Event: EventError, Data: "unknown action: " + action})
		return
	}

	if err != nil {
		h.reply(client, &Message{Event: EventError, Data: err.Error()})
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket error", "client", c.id, "err", err)
			}
			break
		}
		c.hub.handleInput(c, data)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
