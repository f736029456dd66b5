package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadMessageType identifies a live-reload message.
type ReloadMessageType string

const (
	// ReloadTypeFull tells clients to reload the whole page.
	ReloadTypeFull ReloadMessageType = "reload"

	// ReloadTypeCSS tells clients to refresh stylesheets in place.
	ReloadTypeCSS ReloadMessageType = "css"

	// ReloadTypeManifest tells clients the route manifest changed.
	// Clients refetch /_zenith/manifest.json and hand it to the app,
	// falling back to a full reload when the app exposes no hook.
	ReloadTypeManifest ReloadMessageType = "manifest"

	// ReloadTypeError shows the error overlay.
	ReloadTypeError ReloadMessageType = "error"

	// ReloadTypeClear clears the error overlay.
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is the JSON frame pushed to connected browsers.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
	File  string            `json:"file,omitempty"`
}

// reloadWriteTimeout bounds a single broadcast write so one stuck
// client cannot stall the rest.
const reloadWriteTimeout = time.Second

// ReloadServer is the websocket hub behind /_zenith/reload.
type ReloadServer struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewReloadServer creates an empty hub.
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger.With("component", "reload"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // dev server trusts every origin
			},
		},
	}
}

// HandleWebSocket upgrades the request and keeps the connection
// registered until the client goes away. Clients never send anything
// meaningful; the read loop only notices disconnects.
func (rs *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, req, nil)
	if err != nil {
		rs.logger.Debug("websocket upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}

	rs.mu.Lock()
	rs.clients[conn] = true
	rs.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	rs.drop(conn)
}

// NotifyReload sends a full page reload to all clients.
func (rs *ReloadServer) NotifyReload() {
	rs.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyCSS sends a CSS-only refresh to all clients.
func (rs *ReloadServer) NotifyCSS(file string) {
	rs.broadcast(ReloadMessage{Type: ReloadTypeCSS, File: file})
}

// NotifyManifest tells all clients to refetch the route manifest.
func (rs *ReloadServer) NotifyManifest() {
	rs.broadcast(ReloadMessage{Type: ReloadTypeManifest})
}

// NotifyError shows errMsg in the error overlay on all clients.
func (rs *ReloadServer) NotifyError(errMsg string) {
	rs.broadcast(ReloadMessage{Type: ReloadTypeError, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (rs *ReloadServer) ClearError() {
	rs.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

// broadcast sends one message to every connected client, dropping
// clients whose writes fail.
func (rs *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	rs.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(rs.clients))
	for conn := range rs.clients {
		conns = append(conns, conn)
	}
	rs.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			rs.drop(conn)
		}
	}
}

func (rs *ReloadServer) drop(conn *websocket.Conn) {
	rs.mu.Lock()
	delete(rs.clients, conn)
	rs.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (rs *ReloadServer) ClientCount() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.clients)
}

// Close disconnects every client.
func (rs *ReloadServer) Close() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for conn := range rs.clients {
		conn.Close()
		delete(rs.clients, conn)
	}
}
