package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"sharefolio/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamMessage is pushed on connect (Event is nil) and after every change.
type StreamMessage struct {
	Event *realtime.Event `json:"event,omitempty"`
	Data  interface{}     `json:"data"`
}

func (h *Handlers) FeedSubscribe(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, func(ctx context.Context) (interface{}, error) {
		items, err := h.FeedService.Feed(ctx)
		return FeedResponse{Posts: items}, err
	}, realtime.TopicPosts, realtime.TopicUsers)
}

func (h *Handlers) CommentsSubscribe(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	h.stream(w, r, func(ctx context.Context) (interface{}, error) {
		comments, err := h.CommentService.ListComments(ctx, postID)
		return CommentsResponse{Comments: comments}, err
	}, realtime.CommentsTopic(postID))
}

// stream upgrades the connection and sends a fresh snapshot on connect and
// after each event on topics. Subscriptions are released when the client
// goes away.
func (h *Handlers) stream(w http.ResponseWriter, r *http.Request, snapshot func(context.Context) (interface{}, error), topics ...string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	subs := make([]*realtime.Subscription, 0, len(topics))
	for _, topic := range topics {
		subs = append(subs, h.Hub.Subscribe(topic))
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	events := realtime.Merge(done, subs...)

	send := func(ev *realtime.Event) error {
		data, err := snapshot(ctx)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(StreamMessage{Event: ev, Data: data})
	}

	if err := send(nil); err != nil {
		h.Logger.Warn("failed to send snapshot", zap.Strings("topics", topics), zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := send(&ev); err != nil {
				h.Logger.Warn("failed to send snapshot", zap.Strings("topics", topics), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
