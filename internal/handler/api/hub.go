package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ParamSweep/internal/domain/models"
	applogger "ParamSweep/pkg/logger"
	"ParamSweep/pkg/util"
)

const (
	hubSendBuffer = 32
	hubWriteWait  = 10 * time.Second
)

// Hub fans live signals out to websocket subscribers. A client may narrow
// the stream with ?coin=BTC,ETH. Clients that cannot keep up are dropped.
type Hub struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	l            *applogger.Logger

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn  *websocket.Conn
	send  chan []byte
	coins map[string]bool
	once  sync.Once
}

func (c *hubClient) wants(coin string) bool {
	return len(c.coins) == 0 || c.coins[strings.ToUpper(coin)]
}

func (c *hubClient) close() {
	c.once.Do(func() { close(c.send) })
}

// NewHub creates a hub. Subscribers are pinged every pingInterval.
func NewHub(pingInterval time.Duration, l *applogger.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: pingInterval,
		l:            l.With("ws_hub"),
		clients:      make(map[*hubClient]struct{}),
	}
}

// Broadcast implements domain SignalSink.
func (h *Hub) Broadcast(sig *models.Signal) {
	if sig == nil {
		return
	}
	payload, err := json.Marshal(sig)
	if err != nil {
		h.l.Warn("Failed to encode signal", applogger.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*hubClient
	for c := range h.clients {
		if !c.wants(sig.Coin) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.l.Warn("Dropping slow websocket client", applogger.String("remote", c.conn.RemoteAddr().String()))
		h.remove(c)
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and streams signals until the peer goes away.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // upgrader already wrote the error response
	}

	client := &hubClient{conn: conn, send: make(chan []byte, hubSendBuffer), coins: parseCoins(c.QueryParam("coin"))}
	if !h.add(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		return conn.Close()
	}
	h.l.Debug("Websocket client connected", applogger.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(client)
	h.readLoop(client)
	return nil
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*hubClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) add(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// readLoop discards client messages; it exists to notice disconnects and
// to process control frames.
func (h *Hub) readLoop(c *hubClient) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func parseCoins(raw string) map[string]bool {
	coins := util.NormalizeSymbols(util.SplitList(raw))
	if len(coins) == 0 {
		return nil
	}
	out := make(map[string]bool, len(coins))
	for _, c := range coins {
		out[c] = true
	}
	return out
}
