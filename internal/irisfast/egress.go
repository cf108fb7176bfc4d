package irisfast

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Egress abstracts message/image sending over HTTP or WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

// frameWriter is the part of WebSocket the ws egress needs.
type frameWriter interface {
	Connected() bool
	WriteJSON(ctx context.Context, v any) error
}

// textImageSender is the part of Client the http egress needs.
type textImageSender interface {
	SendMessage(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

const (
	ModeHTTP = "http"
	ModeWS   = "ws"
	ModeAuto = "auto"
)

var errEgressUnavailable = errors.New("egress not available")

// NewEgress creates an Egress based on mode. In auto mode the WebSocket is
// preferred while connected and a failed WS write falls back to HTTP once.
// dryrun logs replies instead of sending them, for every mode.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket, logger *zap.Logger) Egress {
	var (
		h textImageSender
		w frameWriter
	)
	if c != nil {
		h = c
	}
	if ws != nil {
		w = ws
	}
	return newEgress(mode, dryrun, h, w, logger)
}

func newEgress(mode string, dryrun bool, h textImageSender, w frameWriter, logger *zap.Logger) Egress {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dryrun {
		return &dryrunEgress{mode: mode, logger: logger}
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeWS:
		return &wsEgress{ws: w}
	case ModeAuto:
		return &autoEgress{ws: &wsEgress{ws: w}, http: &httpEgress{c: h}, logger: logger}
	default:
		return &httpEgress{c: h}
	}
}

type httpEgress struct{ c textImageSender }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h.c == nil {
		return errEgressUnavailable
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h.c == nil {
		return errEgressUnavailable
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

// wsEgress writes ReplyRequest frames over WebSocket.
type wsEgress struct{ ws frameWriter }

func (w *wsEgress) available() bool { return w.ws != nil && w.ws.Connected() }

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	if w.ws == nil {
		return errEgressUnavailable
	}
	return w.ws.WriteJSON(ctx, &ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if w.ws == nil {
		return errEgressUnavailable
	}
	return w.ws.WriteJSON(ctx, &ImageReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

type autoEgress struct {
	ws     *wsEgress
	http   *httpEgress
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.available() {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.available() {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}

type dryrunEgress struct {
	mode   string
	logger *zap.Logger
}

func (d *dryrunEgress) SendText(_ context.Context, room, message string) error {
	d.logger.Info("egress_dryrun",
		zap.String("mode", d.mode),
		zap.String("type", "text"),
		zap.String("room", room),
		zap.String("text", message),
	)
	return nil
}

func (d *dryrunEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	d.logger.Info("egress_dryrun",
		zap.String("mode", d.mode),
		zap.String("type", "image"),
		zap.String("room", room),
		zap.Int("bytes", len(imageBase64)),
	)
	return nil
}
