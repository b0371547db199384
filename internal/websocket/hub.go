package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

// Message types pushed to clients
const (
	MessageTypeProgress       = "progress"
	MessageTypeRunCompleted   = "run_completed"
	MessageTypeSubscribed     = "subscription_confirmed"
	MessageTypeUnsubscribed   = "unsubscription_confirmed"
	MessageTypePong           = "pong"
	MessageTypeError          = "error"
	subscribeAllRuns          = "*"
	defaultClientSendCapacity = 256
)

// ClientGauge receives the connected client count
type ClientGauge interface {
	RecordWebSocketClients(count int)
}

// Hub maintains the set of active clients and fans run events out to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	gauge      ClientGauge
	log        *logger.Logger
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	// run IDs this client follows, "*" follows every run
	runs map[string]bool
	mu   sync.RWMutex
}

// Message represents a WebSocket message
type Message struct {
	Type  string      `json:"type"`
	RunID string      `json:"run_id,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
	ID    string      `json:"id,omitempty"`
}

// SubscriptionMessage is sent by clients to choose which runs they follow
type SubscriptionMessage struct {
	Type   string   `json:"type"`
	RunIDs []string `json:"run_ids"`
	ID     string   `json:"id,omitempty"`
}

type envelope struct {
	runID  string
	target *Client
	data   []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// NewHub creates a new WebSocket hub. gauge may be nil.
func NewHub(gauge ClientGauge) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 1024),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		gauge:      gauge,
		log:        logger.GetLogger("websocket.hub"),
	}
}

// Run serves the hub until ctx is done
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Starting WebSocket hub")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			h.log.Info("WebSocket hub shutting down")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.recordClients()
			h.log.Infof("Client %s registered", client.id)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Infof("Client %s unregistered", client.id)
			}

		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// OnProgress forwards an engine progress event. It never blocks the engine:
// events are dropped when the hub is saturated.
func (h *Hub) OnProgress(event models.ProgressEvent) {
	h.publish(Message{Type: MessageTypeProgress, RunID: event.RunID, Data: event})
}

// BroadcastRunCompleted announces a finished run with its summary
func (h *Hub) BroadcastRunCompleted(summary models.RunSummary) {
	h.publish(Message{Type: MessageTypeRunCompleted, RunID: summary.RunID, Data: summary})
}

func (h *Hub) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal %s message: %v", msg.Type, err)
		return
	}

	select {
	case h.broadcast <- envelope{runID: msg.RunID, data: data}:
	default:
		h.log.Debugf("Dropping %s message for run %s", msg.Type, msg.RunID)
	}
}

// HandleWebSocket handles WebSocket upgrade and client management
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, defaultClientSendCapacity),
		id:   uuid.NewString(),
		runs: map[string]bool{subscribeAllRuns: true},
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.recordClients()
}

func (h *Hub) recordClients() {
	if h.gauge != nil {
		h.gauge.RecordWebSocketClients(len(h.clients))
	}
}

// broadcastToClients runs on the hub goroutine only
func (h *Hub) broadcastToClients(msg envelope) {
	for client := range h.clients {
		if msg.target != nil && msg.target != client {
			continue
		}
		if msg.target == nil && !client.follows(msg.runID) {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			h.log.Warnf("Client %s is too slow, disconnecting", client.id)
			h.drop(client)
		}
	}
}

func (c *Client) follows(runID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runs[subscribeAllRuns] || c.runs[runID]
}

// readPump pumps messages from the websocket connection to the hub
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
				c.hub.log.Errorf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(data)
	}
}

// writePump pumps messages from the hub to the websocket connection
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

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

func (c *Client) handleMessage(data []byte) {
	var msg SubscriptionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(Message{Type: MessageTypeError, Error: "Invalid message format"})
		return
	}

	switch msg.Type {
	case "subscribe":
		c.mu.Lock()
		// an explicit subscription replaces the default follow-all
		delete(c.runs, subscribeAllRuns)
		for _, id := range msg.RunIDs {
			c.runs[id] = true
		}
		c.mu.Unlock()
		c.reply(Message{Type: MessageTypeSubscribed, Data: map[string]interface{}{"run_ids": msg.RunIDs}, ID: msg.ID})

	case "unsubscribe":
		c.mu.Lock()
		for _, id := range msg.RunIDs {
			delete(c.runs, id)
		}
		c.mu.Unlock()
		c.reply(Message{Type: MessageTypeUnsubscribed, Data: map[string]interface{}{"run_ids": msg.RunIDs}, ID: msg.ID})

	case "ping":
		c.reply(Message{Type: MessageTypePong, ID: msg.ID})

	default:
		c.reply(Message{Type: MessageTypeError, Error: "Unknown message type", ID: msg.ID})
	}
}

// reply goes through the hub so only the hub goroutine ever writes to or
// closes c.send
func (c *Client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Errorf("Failed to marshal message: %v", err)
		return
	}

	select {
	case c.hub.broadcast <- envelope{target: c, data: data}:
	default:
	}
}
