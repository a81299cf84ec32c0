package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Channels lists the realtime channels a client may subscribe to.
var Channels = []string{models.ChannelNotifications, models.ChannelVoiceDNAStatus}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection and the channels it listens on.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	channels map[string]bool
}

type outbound struct {
	channel string
	payload []byte
}

// Relay fans events out to other server instances.
type Relay interface {
	Publish(ctx context.Context, payload []byte) error
}

// Hub maintains the set of active clients and delivers each event to the
// clients subscribed to its channel.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	relay      Relay
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// SetRelay makes Publish forward events to other instances as well.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

// Run serves registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logrus.Debugf("[WS] client registered on %v", client.channelList())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logrus.Debug("[WS] client unregistered")
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.channels[msg.channel] {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish delivers an event to local subscribers and, when a relay is set,
// to the other instances.
func (h *Hub) Publish(channel, eventType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		logrus.Errorf("[WS] marshal %s event: %v", eventType, err)
		return
	}
	payload, err := json.Marshal(models.RealtimeEvent{Channel: channel, Type: eventType, Data: raw})
	if err != nil {
		logrus.Errorf("[WS] marshal envelope: %v", err)
		return
	}
	h.Deliver(channel, payload)

	h.mu.Lock()
	relay := h.relay
	h.mu.Unlock()
	if relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := relay.Publish(ctx, payload); err != nil {
			logrus.Warnf("[WS] relay publish failed: %v", err)
		}
	}
}

// Deliver queues an already encoded event for local subscribers only.
func (h *Hub) Deliver(channel string, payload []byte) {
	select {
	case h.broadcast <- outbound{channel: channel, payload: payload}:
	case <-h.done:
	}
}

// NotifyNotification pushes a new notification to the notifications channel.
func (h *Hub) NotifyNotification(n models.Notification) {
	h.Publish(models.ChannelNotifications, "notification.created", n)
}

// NotifyVoiceDNA pushes a voice DNA status change.
func (h *Hub) NotifyVoiceDNA(p models.VoiceDNAProfile) {
	h.Publish(models.ChannelVoiceDNAStatus, "voice_dna.status", p)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ParseChannels reads the comma separated ?channels= value. Empty means
// every channel.
func ParseChannels(raw string) (map[string]bool, error) {
	out := map[string]bool{}
	if strings.TrimSpace(raw) == "" {
		for _, ch := range Channels {
			out[ch] = true
		}
		return out, nil
	}
	for _, part := range strings.Split(raw, ",") {
		ch := strings.TrimSpace(part)
		if ch == "" {
			continue
		}
		known := false
		for _, k := range Channels {
			if k == ch {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown channel %q", ch)
		}
		out[ch] = true
	}
	return out, nil
}

// ServeWs upgrades the request and subscribes the connection to the
// requested channels.
func (h *Hub) ServeWs(c *gin.Context) {
	channels, err := ParseChannels(c.Query("channels"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "VALIDATION_ERROR", "message": err.Error()}})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("[WS] upgrade error: %v", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), channels: channels}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) channelList() []string {
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	return out
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
