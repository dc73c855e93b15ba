package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"weldsim/model"
)

var errNoSession = fmt.Errorf("%w: no parameters set for this session", errBadRequest)

// Hub runs one interactive session on a websocket connection. Requests are handled in
// arrival order and every reply is written by a single goroutine.
type Hub struct {
	s    *Server
	conn *websocket.Conn
	id   string
	// client address, its rate limit is shared with its HTTP requests
	client string
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg

	// last accepted set-up, owned by handleRequest
	current *model.SimulateRequest
}

func NewHub(s *Server, conn *websocket.Conn) *Hub {
	return &Hub{
		s:      s,
		conn:   conn,
		id:     uuid.NewString(),
		client: hostOf(conn.RemoteAddr().String()),
		msg:    make(chan model.Msg, 10),
		reply:  make(chan model.Msg, 10),
	}
}

func (h *Hub) logger() *log.Entry {
	return log.WithField("session", h.id)
}

// Run serves the session until the peer disconnects or ctx is cancelled. The connection is
// closed on return.
func (h *Hub) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.logger().WithField("remote", h.conn.RemoteAddr().String()).Info("session opened")
	h.reply <- model.Msg{Type: model.TypeSession, Content: h.id}

	written := make(chan struct{})
	go h.handleRequest(ctx)
	go func() {
		h.handleResponse(ctx)
		close(written)
	}()
	go func() {
		<-ctx.Done()
		h.conn.Close()
	}()

	h.readLoop(ctx)
	cancel()
	<-written
	h.logger().Info("session closed")
}

func (h *Hub) readLoop(ctx context.Context) {
	for {
		var m model.Msg
		if err := h.conn.ReadJSON(&m); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger().WithError(err).Warn("read message")
			}
			return
		}
		select {
		case h.msg <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleResponse(ctx context.Context) {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				h.logger().WithError(err).Warn("write message")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRequest(ctx context.Context) {
	for {
		select {
		case msg := <-h.msg:
			reply := h.handle(ctx, msg)
			select {
			case h.reply <- reply:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handle(ctx context.Context, msg model.Msg) (reply model.Msg) {
	defer func() {
		if r := recover(); r != nil {
			h.logger().WithField("panic", r).WithField("type", msg.Type).Error("request panicked")
			reply = model.Msg{Type: model.TypeError, Content: "internal server error"}
		}
	}()

	var (
		content any
		err     error
	)
	replyType := msg.Type
	if !h.s.limiter.getLimiter(h.client).Allow() {
		h.logger().WithField("type", msg.Type).Warn("rate limited")
		return model.Msg{Type: model.TypeError, Content: errTooManyRequests.Error()}
	}
	switch msg.Type {
	case model.TypeParams:
		content, err = h.analyse(ctx, msg.Content)
		replyType = model.TypeResult
	case model.TypeSweep:
		content, err = h.sweep(ctx, msg.Content)
	case model.TypeSensitivity:
		content, err = h.sensitivity(ctx, msg.Content)
	case model.TypeReset:
		h.current = nil
		return model.Msg{Type: model.TypeReset, Content: "session reset"}
	default:
		err = fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
	}
	if err != nil {
		h.logger().WithError(err).WithField("type", msg.Type).Warn("request failed")
		return model.Msg{Type: model.TypeError, Content: err.Error()}
	}

	data, err := json.Marshal(content)
	if err != nil {
		h.logger().WithError(err).Error("encode reply")
		return model.Msg{Type: model.TypeError, Content: "internal server error"}
	}
	return model.Msg{Type: replyType, Content: string(data)}
}

func unmarshal(content string, v any) error {
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// analyse runs the full analysis for a new set-up and makes it the session default.
func (h *Hub) analyse(ctx context.Context, content string) (any, error) {
	var req model.SimulateRequest
	if err := unmarshal(content, &req); err != nil {
		return nil, err
	}
	a, err := h.s.analyse(ctx, req)
	if err != nil {
		return nil, err
	}
	h.current = &req
	resp := h.s.simulateResponse(a.result, a)
	resp.SessionID = h.id
	return resp, nil
}

func (h *Hub) sessionParams(req *model.SimulateRequest) error {
	if !isZeroRequest(*req) {
		return nil
	}
	if h.current == nil {
		return errNoSession
	}
	*req = *h.current
	return nil
}

func (h *Hub) sweep(ctx context.Context, content string) (any, error) {
	var req model.SweepRequest
	if err := unmarshal(content, &req); err != nil {
		return nil, err
	}
	if err := h.sessionParams(&req.Params); err != nil {
		return nil, err
	}
	param, points, err := h.s.sweep(ctx, req)
	if err != nil {
		return nil, err
	}
	return sweepResponse(param, points), nil
}

func (h *Hub) sensitivity(ctx context.Context, content string) (any, error) {
	var req model.SensitivityRequest
	if err := unmarshal(content, &req); err != nil {
		return nil, err
	}
	if err := h.sessionParams(&req.Params); err != nil {
		return nil, err
	}
	rows, err := h.s.sensitivity(ctx, req)
	if err != nil {
		return nil, err
	}
	return sensitivityResponse(rows), nil
}
