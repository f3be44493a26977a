package server

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
)

const wsWriteTimeout = 10 * time.Second

// handleWebSocket takes one upload over a WebSocket. The client sends a
// single text frame {"filename", "allocationMode", "data"} with the file
// base64 encoded and receives the formatted roster or {"err": ...}.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	log := logger.With("path", r.URL.Path, "client_ip", ip)

	if locked, _ := s.rejects.IsLocked(ip); locked {
		writeError(w, http.StatusTooManyRequests, msgLockedOut)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				log.Warn("WebSocket upload rejected - origin not allowed", "origin", origin, "host", r.Host)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if limit := s.cfg.WebSocket.MaxMessageSize; limit > 0 {
		conn.SetReadLimit(limit)
	}
	if secs := s.cfg.HTTP.ReadTimeoutSeconds; secs > 0 {
		conn.SetReadDeadline(time.Now().Add(time.Duration(secs) * time.Second))
	}

	msgType, payload, err := conn.ReadMessage()
	if err != nil {
		log.Warn("WebSocket read failed", "error", err)
		return
	}

	reply := s.wsReply(ip, msgType, payload)
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
		log.Warn("WebSocket write failed", "error", err)
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// wsReply formats the upload carried by one message.
func (s *Server) wsReply(ip string, msgType int, payload []byte) []byte {
	if msgType != websocket.TextMessage || !gjson.ValidBytes(payload) {
		return errorBody("Expected a JSON text message.")
	}
	msg := gjson.ParseBytes(payload)

	data, err := base64.StdEncoding.DecodeString(msg.Get("data").String())
	if err != nil {
		return errorBody(msgInvalidFormat)
	}

	p := uploadParams{
		filename:        msg.Get("filename").String(),
		allocationMode:  msg.Get("allocationMode").String(),
		decorativeNames: s.cfg.Parsing.DecorativeNames,
	}
	if p.allocationMode == "" {
		p.allocationMode = s.cfg.Parsing.AllocationMode
	}

	formatted, status, errMsg := s.format(ip, p, data)
	if status != http.StatusOK {
		return errorBody(errMsg)
	}
	logger.Info("Formatted roster over WebSocket", "client_ip", ip, "filename", p.filename, "bytes", len(data))
	return formatted
}
