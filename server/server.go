// Package server serves the live view: a browser mirror of the terminal
// scene where viewers can also play.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gwebsocket "github.com/gorilla/websocket"
	sticks "github.com/tkahng/stickpile"
	"github.com/tkahng/stickpile/web"
	"github.com/tkahng/stickpile/websocket"
)

type MessageType string

const (
	MessageTypePlay    MessageType = "play"
	MessageTypeConfirm MessageType = "confirm"
	MessageTypeReload  MessageType = "reload"
	MessageTypeFrame   MessageType = "frame"
	MessageTypeError   MessageType = "error"
)

type (
	// Message is a viewer command.
	Message struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data,omitempty"`
	}
	PlayMessageData struct {
		Number int `json:"number"`
	}
	outMessage struct {
		Type MessageType `json:"type"`
		Data any         `json:"data"`
	}
)

// FrameSource returns the most recent frame for late joiners.
type FrameSource interface {
	Latest() (sticks.Frame, bool)
}

const pingInterval = 30 * time.Second

// ViewServer broadcasts frames to websocket viewers and forwards their
// commands to the game input.
type ViewServer struct {
	broadcaster websocket.Broadcaster
	upgrader    gwebsocket.Upgrader
	mux         *http.ServeMux
	input       sticks.Input
	frames      FrameSource
	origin      string
	logger      *slog.Logger
	startTime   time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

var _ sticks.View = (*ViewServer)(nil)

func NewViewServer(input sticks.Input, frames FrameSource, origin string, logger *slog.Logger) *ViewServer {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ViewServer{
		broadcaster: websocket.NewBroadcaster(),
		upgrader:    websocket.DefaultUpgrader([]string{origin}),
		mux:         http.NewServeMux(),
		input:       input,
		frames:      frames,
		origin:      origin,
		logger:      logger,
		startTime:   time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (vs *ViewServer) Handler() http.Handler {
	return Cors(vs.origin, vs.mux)
}

func (vs *ViewServer) Start() {
	go vs.broadcaster.Run(vs.ctx)
	vs.setupRoutes()
}

// Stop disconnects every viewer.
func (vs *ViewServer) Stop() {
	vs.cancel()
}

func (vs *ViewServer) setupRoutes() {
	vs.mux.HandleFunc("GET /{$}", web.ServeHTML)
	vs.mux.Handle("GET /api/ws", ViewerID(websocket.ServeWS(
		vs.upgrader,
		websocket.DefaultSetupConn,
		websocket.NewClientFactory(vs.logger),
		func(r *http.Request) string { return getViewerIDFromContext(r.Context()) },
		vs.onConnect,
		vs.onDisconnect,
		pingInterval,
		[]websocket.MessageHandler{vs.handleMessage},
	)))
	vs.mux.HandleFunc("GET /api/state", vs.handleState)
	vs.mux.HandleFunc("GET /api/health", vs.handleHealth)
}

// Render implements sticks.View.
func (vs *ViewServer) Render(f sticks.Frame) {
	msg, err := json.Marshal(outMessage{Type: MessageTypeFrame, Data: f})
	if err != nil {
		vs.logger.Error("failed to encode frame", slog.Any("error", err))
		return
	}
	if err := vs.broadcaster.Broadcast(msg); err != nil {
		vs.logger.Warn("frame not delivered", slog.Any("error", err), slog.Uint64("seq", f.Seq))
	}
}

func (vs *ViewServer) onConnect(ctx context.Context, cancel context.CancelFunc, c websocket.Client) {
	vs.broadcaster.RegisterClient(ctx, cancel, c)
	vs.logger.Info("viewer connected", slog.String("viewer", c.ID()), slog.Int("viewers", len(vs.broadcaster.Clients())))
	if f, ok := vs.frames.Latest(); ok {
		vs.send(c, MessageTypeFrame, f)
	}
}

func (vs *ViewServer) onDisconnect(c websocket.Client) {
	vs.broadcaster.UnregisterClient(c)
	vs.logger.Debug("viewer disconnected", slog.String("viewer", c.ID()))
}

func (vs *ViewServer) handleMessage(c websocket.Client, payload []byte) {
	if err := vs.processMessage(payload); err != nil {
		vs.logger.Warn("bad viewer message", slog.String("viewer", c.ID()), slog.Any("error", err))
		vs.send(c, MessageTypeError, err.Error())
	}
}

func (vs *ViewServer) processMessage(payload []byte) error {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	switch msg.Type {
	case MessageTypePlay:
		var data PlayMessageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return fmt.Errorf("invalid play data: %w", err)
		}
		vs.input.Press(data.Number)
	case MessageTypeConfirm:
		vs.input.Confirm()
	case MessageTypeReload:
		vs.input.Reload()
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return nil
}

func (vs *ViewServer) handleState(w http.ResponseWriter, r *http.Request) {
	f, ok := vs.frames.Latest()
	if !ok {
		http.Error(w, "no game loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	// nolint:errcheck
	json.NewEncoder(w).Encode(f)
}

func (vs *ViewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"uptime":  time.Since(vs.startTime).String(),
		"viewers": len(vs.broadcaster.Clients()),
	}
	w.Header().Set("Content-Type", "application/json")
	// nolint:errcheck
	json.NewEncoder(w).Encode(health)
}

func (vs *ViewServer) send(c websocket.Client, msgType MessageType, data any) {
	msg, err := json.Marshal(outMessage{Type: msgType, Data: data})
	if err != nil {
		vs.logger.Error("failed to encode message", slog.Any("error", err))
		return
	}
	if !c.Send(msg) {
		vs.logger.Warn("viewer queue full", slog.String("viewer", c.ID()))
	}
}
