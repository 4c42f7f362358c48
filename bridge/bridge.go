// Package bridge exposes the device session over HTTP for external
// UIs: a WebSocket telemetry stream, a command endpoint, and a state
// snapshot.
package bridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/calvinmclean/servoctl/controller"
	"github.com/calvinmclean/servoctl/firmware/commands"
)

// Device is the controller surface the bridge needs.
type Device interface {
	Send(line string) error
	Subscribe() (<-chan controller.Event, func())
	Snapshot() (angle int, settled bool)
}

type Server struct {
	dev Device
	log *zap.SugaredLogger
}

func New(dev Device, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{dev: dev, log: log}
}

// Routes builds the gin router.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws", s.wsTelemetry)
	r.POST("/command", s.postCommand)
	r.GET("/state", s.getState)
	return r
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type commandRequest struct {
	Line string `json:"line" binding:"required"`
}

func (s *Server) postCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.dev.Send(req.Line); err != nil {
		if errors.Is(err, commands.ErrMalformed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Errorw("command forward failed", "line", req.Line, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"line": req.Line})
}

func (s *Server) getState(c *gin.Context) {
	angle, settled := s.dev.Snapshot()
	c.JSON(http.StatusOK, gin.H{"angle": angle, "settled": settled})
}
