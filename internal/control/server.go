package control

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/slogger"
)

// Server defaults.
const (
	DefaultSendBuffer   = 256
	DefaultPingInterval = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	// maxFrameBytes bounds one inbound request frame.
	maxFrameBytes = 1 << 20
	shutdownGrace = 5 * time.Second
)

// ErrSendBufferFull is returned to the broker when a connection cannot keep
// up with the event stream.
var ErrSendBufferFull = errors.New("connection send buffer full")

// ServerOptions configures a Server.
type ServerOptions struct {
	// Metrics serves /metrics when set.
	Metrics      http.Handler
	Logger       *slog.Logger
	SendBuffer   int
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// Server exposes the dispatcher over websocket together with health and
// metrics endpoints.
type Server struct {
	disp     *Dispatcher
	opts     ServerOptions
	log      *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	// conns tracks live connection handlers so Shutdown can wait for them.
	conns sync.WaitGroup
}

// NewServer creates a Server around disp.
func NewServer(disp *Dispatcher, opts ServerOptions) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	s := &Server{
		disp: disp,
		opts: opts,
		log:  slogger.OrDiscard(opts.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // client may be gone
	})
	if opts.Metrics != nil {
		r.Get("/metrics", opts.Metrics.ServeHTTP)
	}
	r.Get("/ws", s.serveWS)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully and waits for open websocket connections to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.Serve(ln) }()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.conns.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.conns.Add(1)
	defer s.conns.Done()

	c := newConnection(s, conn)
	c.run(r.Context())
}

// connection is one websocket client. A single writer goroutine owns all
// writes to the socket.
type connection struct {
	srv  *Server
	ws   *websocket.Conn
	log  *slog.Logger
	send chan any
	done chan struct{}
	sess *Session

	closeOnce sync.Once
}

func newConnection(s *Server, ws *websocket.Conn) *connection {
	c := &connection{
		srv:  s,
		ws:   ws,
		log:  s.log.With("remote", ws.RemoteAddr().String()),
		send: make(chan any, s.opts.SendBuffer),
		done: make(chan struct{}),
	}
	c.sess = NewSession(c.pushEvent)
	return c
}

func (c *connection) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Server shutdown closes the socket, which ends the read loop.
	stop := context.AfterFunc(ctx, func() { c.ws.Close() }) //nolint:errcheck // best-effort
	defer stop()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx)
	}()

	var handlers sync.WaitGroup
	c.readLoop(ctx, &handlers)

	c.sess.Close()
	c.close()
	cancel()
	handlers.Wait()
	<-writerDone
	c.ws.Close() //nolint:errcheck // best-effort cleanup
	c.log.Debug("control connection closed")
}

func (c *connection) readLoop(ctx context.Context, handlers *sync.WaitGroup) {
	c.ws.SetReadLimit(maxFrameBytes)
	deadline := 2 * c.srv.opts.PingInterval
	c.ws.SetReadDeadline(time.Now().Add(deadline)) //nolint:errcheck // best-effort
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("control connection read failed", "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(deadline)) //nolint:errcheck // best-effort

		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			c.enqueue(Response{Type: FrameResponse, Error: "invalid request: " + err.Error()})
			continue
		}

		// Requests run concurrently so a slow operation on one instance
		// does not stall the connection.
		handlers.Add(1)
		go func() {
			defer handlers.Done()
			c.enqueue(c.srv.disp.Dispatch(ctx, c.sess, req))
		}()
	}
}

func (c *connection) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(c.srv.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.drain()
			//nolint:errcheck // peer may already be gone
			c.writeControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-c.send:
			if err := c.write(frame); err != nil {
				c.log.Debug("control connection write failed", "error", err)
				c.ws.Close() //nolint:errcheck // unblocks the reader
				c.waitDone(ctx)
				return
			}
		case <-ticker.C:
			if err := c.writeControl(websocket.PingMessage, nil); err != nil {
				c.ws.Close() //nolint:errcheck // unblocks the reader
				c.waitDone(ctx)
				return
			}
		}
	}
}

// drain writes frames already queued before the connection closes.
func (c *connection) drain() {
	for {
		select {
		case frame := <-c.send:
			if c.write(frame) != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *connection) waitDone(ctx context.Context) {
	select {
	case <-c.done:
	case <-ctx.Done():
	}
}

func (c *connection) write(frame any) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.srv.opts.WriteTimeout)) //nolint:errcheck // best-effort
	return c.ws.WriteJSON(frame)
}

func (c *connection) writeControl(kind int, data []byte) error {
	return c.ws.WriteControl(kind, data, time.Now().Add(c.srv.opts.WriteTimeout))
}

// enqueue hands a response to the writer. Responses wait for buffer space;
// events do not (see pushEvent).
func (c *connection) enqueue(frame any) {
	select {
	case c.send <- frame:
	case <-c.done:
	}
}

// pushEvent is the broker sink for this connection. It never blocks.
func (c *connection) pushEvent(ev model.AgentEvent) error {
	select {
	case <-c.done:
		return net.ErrClosed
	default:
	}
	select {
	case c.send <- Push{Type: FrameAgentEvent, Data: ev}:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
