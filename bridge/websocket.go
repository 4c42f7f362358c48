package bridge

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/calvinmclean/servoctl/controller"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxMsgSize  = 1 << 10
	maxInterval = 10 * time.Second
)

// wsEnvelope frames every WebSocket message.
type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type telemetryData struct {
	Angle   int       `json:"angle"`
	Line    string    `json:"line"`
	Settled bool      `json:"settled"`
	Time    time.Time `json:"time"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsTelemetry streams telemetry events to one client. An optional
// ?interval= query coalesces heartbeats to at most one per interval.
func (s *Server) wsTelemetry(c *gin.Context) {
	interval := parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Errorw("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events, cancel := s.dev.Subscribe()
	defer cancel()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var lastSent time.Time
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case e := <-events:
			if e.Type == controller.EventHeartbeat && time.Since(lastSent) < interval {
				continue
			}
			lastSent = time.Now()

			_, settled := s.dev.Snapshot()
			env := wsEnvelope{
				Type: "telemetry",
				Data: telemetryData{Angle: e.Angle, Line: e.Line, Settled: settled, Time: e.Time},
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				s.log.Infow("ws write failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=200ms with bounds; zero means forward
// every event.
func parseInterval(c *gin.Context) time.Duration {
	s := c.Query("interval")
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 || d > maxInterval {
		return 0
	}
	return d
}
