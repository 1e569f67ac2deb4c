package panel

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Server hosts the panel protocol: GET /ws upgrades to a WebSocket framing
// Message values as JSON text frames, GET /healthz answers liveness probes.
type Server struct {
	handler  *Handler
	upgrader websocket.Upgrader
}

func NewServer(handler *Handler) *Server {
	return &Server{
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The panel is a local companion surface; the editor webview
			// connects from an opaque origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router builds the gin engine. Split from Run so tests can mount it on
// httptest servers.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.serveWS)
	return r
}

// Run serves the panel on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("panel: websocket read: %v", err)
			}
			return
		}

		for _, resp := range s.handler.Handle(c.Request.Context(), msg) {
			if err := conn.WriteJSON(resp); err != nil {
				log.Printf("panel: websocket write: %v", err)
				return
			}
		}
	}
}
