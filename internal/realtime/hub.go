// Package realtime fans change notifications out to live listeners.
//
// A listener obtains a *Subscription from Hub.Subscribe and must Close it
// when the consuming view goes away. Events carry no payload beyond what
// changed; consumers re-read the full snapshot they render, so a dropped
// event only delays a refresh until the next one.
package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	TopicPosts = "posts"
	TopicUsers = "users"

	defaultBuffer = 8
)

const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

func CommentsTopic(postID string) string {
	return "comments:" + postID
}

type Event struct {
	Topic string    `json:"topic"`
	Kind  string    `json:"kind"`
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}

type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	logger *zap.Logger
}

type Subscription struct {
	C     <-chan Event
	ch    chan Event
	topic string
	hub   *Hub
	once  sync.Once
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: defaultBuffer,
		logger: logger,
	}
}

// Subscribe registers a listener for topic. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, topic: topic, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		sub.once.Do(func() {})
		return sub
	}

	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}

	return sub
}

// Publish delivers ev to every listener of topic without blocking.
func (h *Hub) Publish(topic, kind, id string) {
	ev := Event{Topic: topic, Kind: kind, ID: id, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Debug("subscriber buffer full, event dropped",
				zap.String("topic", topic), zap.String("kind", kind))
		}
	}
}

// Count reports the number of live listeners on topic.
func (h *Hub) Count(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

// Close releases every listener. Subscribe after Close yields closed channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for topic, subs := range h.subs {
		for sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(h.subs, topic)
	}
}

// Close removes the listener and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	s.once.Do(func() {
		if subs, ok := s.hub.subs[s.topic]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.subs, s.topic)
			}
		}
		close(s.ch)
	})
}

// Merge forwards events of several subscriptions into one channel until done
// is closed. The returned channel is closed once every source is drained.
func Merge(done <-chan struct{}, subs ...*Subscription) <-chan Event {
	out := make(chan Event)
	var wg sync.WaitGroup

	for _, sub := range subs {
		wg.Add(1)
		go func(c <-chan Event) {
			defer wg.Done()
			for {
				select {
				case ev, ok := <-c:
					if !ok {
						return
					}
					select {
					case out <- ev:
					case <-done:
						return
					}
				case <-done:
					return
				}
			}
		}(sub.C)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
