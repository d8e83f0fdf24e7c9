package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
)

// GameState mirrors the server's snapshot
type GameState struct {
	Score         int    `json:"score"`
	Level         int    `json:"level"`
	Timer         int    `json:"timer"`
	CurrentTarget string `json:"current_target"`
	HighScore     int    `json:"high_score"`
	Started       bool   `json:"started"`
	Phase         string `json:"phase"`
	Message       string `json:"message"`
	ConfigName    string `json:"config_name"`
	Rounds        int    `json:"rounds"`
	BestLevel     int    `json:"best_level"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	ClientID  string          `json:"client_id,omitempty"`
	GameState *GameState      `json:"game_state,omitempty"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Connection keeps a WebSocket open to the server, reconnecting with backoff
type Connection struct {
	server string

	mu   sync.Mutex
	conn *websocket.Conn

	// onMessage is called from the reader goroutine
	onMessage func(WSMessage)
	onStatus  func(connected bool)
}

// wsURL turns http://host:port into ws://host:port/ws
func wsURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// fetchInstructions reads the instruction lines of the active preset
func fetchInstructions(server string) ([]string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(server, "/") + "/api/instructions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instructions request failed: %s", resp.Status)
	}

	var body struct {
		Instructions []string `json:"instructions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Instructions, nil
}

// run dials and reads until stop is closed
func (c *Connection) run(stop <-chan struct{}) {
	target, err := wsURL(c.server)
	if err != nil {
		log.Printf("Invalid server URL %q: %v", c.server, err)
		return
	}

	b := &backoff.Backoff{Min: 250 * time.Millisecond, Max: 5 * time.Second, Factor: 2, Jitter: true}
	for {
		conn, _, err := websocket.DefaultDialer.Dial(target, nil)
		if err != nil {
			d := b.Duration()
			log.Printf("WebSocket connection failed, retrying in %s: %v", d, err)
			select {
			case <-stop:
				return
			case <-time.After(d):
				continue
			}
		}
		b.Reset()

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.onStatus(true)

		go func() {
			<-stop
			conn.Close()
		}()

		c.listen(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.onStatus(false)

		select {
		case <-stop:
			return
		default:
		}
	}
}

func (c *Connection) listen(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		c.onMessage(msg)
	}
}

// send writes an input message; it fails when the socket is down
func (c *Connection) send(action, color string) error {
	payload := map[string]string{"action": action}
	if color != "" {
		payload["color"] = color
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(payload)
}
