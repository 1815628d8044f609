// Package websocket carries live-view frames to browser viewers and viewer
// commands back to the game.
package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait     = 60 * time.Second
	maxReadBytes = 512
)

// DefaultSetupConn limits command size and keeps the read deadline moving
// with every pong.
func DefaultSetupConn(c *websocket.Conn) {
	c.SetReadLimit(maxReadBytes)
	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		_ = c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
}

// DefaultUpgrader accepts connections from the given origins. Requests
// without an Origin header (non-browser clients) are accepted as well.
func DefaultUpgrader(origins []string) websocket.Upgrader {
	// nolint:exhaustruct
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
	return upgrader
}

// Client is one viewer connection. Writes are queued and performed by
// WriteForever; reads are performed by ReadForever.
type Client interface {
	ID() string

	// Send queues a message; it reports false when the queue is full.
	Send([]byte) bool
	Close() error

	WriteForever(context.Context, func(Client), time.Duration)
	ReadForever(context.Context, func(Client), ...MessageHandler)

	// Wait blocks until both pumps have returned.
	Wait()
}

type MessageHandler func(Client, []byte)

// ServeWS upgrades the request, registers the viewer through onCreate and
// starts its read and write pumps. onDestroy runs when either pump exits.
func ServeWS(
	upgrader websocket.Upgrader,
	connSetup func(*websocket.Conn),
	clientFactory func(id string, conn *websocket.Conn) Client,
	idFromRequest func(*http.Request) string,
	onCreate func(context.Context, context.CancelFunc, Client),
	onDestroy func(Client),
	ping time.Duration,
	handlers []MessageHandler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client
			return
		}
		connSetup(conn)
		client := clientFactory(idFromRequest(r), conn)
		ctx, cancel := context.WithCancel(context.Background())
		onCreate(ctx, cancel, client)

		go client.WriteForever(ctx, onDestroy, ping)
		go client.ReadForever(ctx, onDestroy, handlers...)
	}
}

type client struct {
	id        string
	wg        *sync.WaitGroup
	conn      *websocket.Conn
	egress    chan []byte
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewClientFactory returns a factory for ServeWS that logs through logger.
func NewClientFactory(logger *slog.Logger) func(string, *websocket.Conn) Client {
	return func(id string, conn *websocket.Conn) Client {
		return NewClient(id, conn, logger)
	}
}

func NewClient(id string, conn *websocket.Conn, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	wg := &sync.WaitGroup{}
	wg.Add(2)
	return &client{
		id:     id,
		wg:     wg,
		conn:   conn,
		egress: make(chan []byte, 64),
		logger: logger.With(slog.String("viewer", id)),
	}
}

func (c *client) ID() string {
	return c.id
}

func (c *client) Send(p []byte) bool {
	select {
	case c.egress <- p:
		return true
	default:
		return false
	}
}

// Close may be called more than once.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
		_ = c.conn.Close()
	})
	return nil
}

// WriteForever performs every write on the connection, including pings.
func (c *client) WriteForever(ctx context.Context, onDestroy func(Client), ping time.Duration) {
	pingTicker := time.NewTicker(ping)
	defer func() {
		c.wg.Done()
		pingTicker.Stop()
		onDestroy(c)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.egress:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Error("error writing message", slog.Any("error", err))
				return
			}
		case <-pingTicker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				c.logger.Error("error writing ping", slog.Any("error", err))
				return
			}
		}
	}
}

// ReadForever reads commands and hands each one to the handlers in order.
func (c *client) ReadForever(ctx context.Context, onDestroy func(Client), handlers ...MessageHandler) {
	defer func() {
		c.wg.Done()
		onDestroy(c)
	}()

	ingress := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, payload, err := c.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case ingress <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("read loop cancelled")
			return
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Warn("read loop closed unexpectedly", slog.Any("error", err))
			}
			return
		case payload := <-ingress:
			for _, h := range handlers {
				h(c, payload)
			}
		}
	}
}

func (c *client) Wait() {
	c.wg.Wait()
}

// Manager keeps the set of connected viewers.
type Manager interface {
	Clients() []Client
	RegisterClient(context.Context, context.CancelFunc, Client)
	UnregisterClient(Client)
	Run(context.Context)
}

type manager struct {
	mu         *sync.RWMutex
	clients    map[Client]context.CancelFunc
	register   chan regreq
	unregister chan regreq
	done       chan struct{}
}

type regreq struct {
	cancel context.CancelFunc
	client Client
	done   chan struct{}
}

func NewManager() Manager {
	return newManager()
}

func newManager() *manager {
	return &manager{
		mu:         &sync.RWMutex{},
		clients:    make(map[Client]context.CancelFunc),
		register:   make(chan regreq),
		unregister: make(chan regreq),
		done:       make(chan struct{}),
	}
}

func (m *manager) Clients() []Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]Client, 0, len(m.clients))
	for c := range m.clients {
		res = append(res, c)
	}
	return res
}

// RegisterClient adds c; after Run has stopped, c is closed instead.
func (m *manager) RegisterClient(_ context.Context, cancel context.CancelFunc, c Client) {
	rr := regreq{cancel: cancel, client: c, done: make(chan struct{})}
	select {
	case m.register <- rr:
		<-rr.done
	case <-m.done:
		cancel()
		_ = c.Close()
	}
}

// UnregisterClient removes and closes c. It is safe to call more than once.
func (m *manager) UnregisterClient(c Client) {
	rr := regreq{client: c, done: make(chan struct{})}
	select {
	case m.unregister <- rr:
		<-rr.done
	case <-m.done:
	}
}

// Run processes (un)registrations until ctx is cancelled, then closes every
// remaining client.
func (m *manager) Run(ctx context.Context) {
	cleanup := func(c Client) {
		if cancel, ok := m.clients[c]; ok {
			cancel()
		}
		delete(m.clients, c)
		_ = c.Close()
	}

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for c := range m.clients {
				cleanup(c)
			}
			m.mu.Unlock()
			close(m.done)
			return

		case rr := <-m.register:
			m.mu.Lock()
			m.clients[rr.client] = rr.cancel
			m.mu.Unlock()
			close(rr.done)

		case rr := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[rr.client]; ok {
				cleanup(rr.client)
			}
			m.mu.Unlock()
			close(rr.done)
		}
	}
}

// Broadcaster is a Manager that can send a message to every viewer.
type Broadcaster interface {
	Manager
	Broadcast([]byte) error
}

type broadcaster struct {
	*manager
}

func NewBroadcaster() Broadcaster {
	return &broadcaster{manager: newManager()}
}

// Broadcast queues b for every viewer. Viewers whose queue is full miss the
// message and are reported in the returned error.
func (bb *broadcaster) Broadcast(b []byte) error {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	var errs []error
	for c := range bb.clients {
		if !c.Send(b) {
			errs = append(errs, errors.New("viewer "+c.ID()+" is not keeping up"))
		}
	}
	return errors.Join(errs...)
}
