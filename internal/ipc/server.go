package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"github.com/sadopc/zenfocus/internal/control"
	"github.com/sadopc/zenfocus/internal/engine"
	"github.com/sadopc/zenfocus/internal/notify"
)

const (
	statusRoom  = "status"
	statusEvent = "status"
)

// Commander queues commands for the control surface.
type Commander interface {
	Enqueue(cmd control.Command) bool
}

// StateSource reports the current timer state.
type StateSource interface {
	Snapshot() engine.Snapshot
}

// Server exposes the host API over HTTP and socket.io.
type Server struct {
	commands Commander
	state    StateSource
	log      zerolog.Logger

	router *gin.Engine
	io     *socketio.Server
	http   *http.Server
}

func NewServer(commands Commander, state StateSource, logger zerolog.Logger) *Server {
	srv := &Server{
		commands: commands,
		state:    state,
		log:      logger.With().Str("component", "ipc").Logger(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		srv.log.Debug().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})
	r.GET("/api/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, notify.StatusOf(srv.state.Snapshot()))
	})
	r.GET("/api/commands", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"commands": control.CommandNames()})
	})
	r.POST("/api/commands/:name", func(c *gin.Context) {
		name := c.Param("name")
		status, body := srv.submit(name, control.SourceHTTP)
		c.JSON(status, body)
	})

	srv.router = r
	srv.io = srv.mountSocket(r)
	srv.http = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler returns the HTTP handler, mainly for tests.
func (srv *Server) Handler() http.Handler {
	return srv.router
}

func (srv *Server) submit(name string, source control.Source) (int, gin.H) {
	typ, err := control.ParseCommand(name)
	if err != nil {
		return http.StatusBadRequest, gin.H{"error": "unknown_command", "command": name}
	}
	if !srv.commands.Enqueue(control.Command{Type: typ, Source: source}) {
		return http.StatusServiceUnavailable, gin.H{"error": "queue_full", "command": typ.String()}
	}
	srv.log.Info().Str("command", typ.String()).Str("source", string(source)).Msg("command queued")
	return http.StatusAccepted, gin.H{"queued": typ.String()}
}

func (srv *Server) mountSocket(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.Join(statusRoom)
		srv.log.Debug().Str("sid", s.ID()).Msg("socket connected")
		s.Emit(statusEvent, notify.Signal{
			Type:   notify.SignalState,
			Status: statusPtr(notify.StatusOf(srv.state.Snapshot())),
			At:     time.Now(),
		})
		return nil
	})

	io.OnEvent("/", "command", func(s socketio.Conn, payload struct {
		Command string `json:"command"`
	}) map[string]any {
		status, body := srv.submit(payload.Command, control.SourceSocket)
		if status != http.StatusAccepted {
			s.Emit("error", body)
		}
		return body
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		srv.log.Warn().Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.log.Debug().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// Deliver broadcasts sig to every socket.io client. It implements
// notify.Sink.
func (srv *Server) Deliver(ctx context.Context, sig notify.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !srv.io.BroadcastToRoom("/", statusRoom, statusEvent, sig) {
		return errors.New("socket namespace not registered")
	}
	return nil
}

// Serve runs the API on l until Shutdown.
func (srv *Server) Serve(l net.Listener) error {
	go func() {
		if err := srv.io.Serve(); err != nil {
			srv.log.Error().Err(err).Msg("socket.io stopped")
		}
	}()

	srv.log.Info().Str("addr", l.Addr().String()).Msg("host api listening")
	if err := srv.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve host api: %w", err)
	}
	return nil
}

func (srv *Server) Shutdown(ctx context.Context) error {
	return errors.Join(srv.http.Shutdown(ctx), srv.io.Close())
}

func statusPtr(s notify.Status) *notify.Status {
	return &s
}
