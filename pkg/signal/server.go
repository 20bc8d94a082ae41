package signal

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server accepts signaling WebSocket connections and hands them to a Router.
type Server struct {
	router   *Router
	upgrader websocket.Upgrader
}

// NewServer creates a signaling server in front of router
func NewServer(router *Router) *Server {
	return &Server{
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // clients are served from the same LAN host
			},
		},
	}
}

// Router returns the router behind the server.
func (s *Server) Router() *Router {
	return s.router
}

// HandleWebSocket upgrades the request and runs the client's pumps until
// the connection ends.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := newClient(conn, s.router)
	client.log.Info("Client connected")

	go client.writePump()
	go client.readPump()
}
