package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/skillforge/internal/types"
)

// NotifyChannel is the PostgreSQL channel carrying change events.
const NotifyChannel = "skillforge_changes"

// LeaderboardTopic receives an event whenever any user's points or name change.
const LeaderboardTopic = "leaderboard"

// Event kinds.
const (
	EventProgress    = "progress"
	EventProfile     = "profile"
	EventRoadmap     = "roadmap"
	EventLeaderboard = "leaderboard"
)

// UserTopic is the topic for changes to a single user's profile and roadmaps.
func UserTopic(id uuid.UUID) string {
	return "user:" + id.String()
}

func notifyAll(ctx context.Context, tx pgx.Tx, events ...types.ChangeEvent) error {
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode change event: %w", err)
		}
		if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, string(payload)); err != nil {
			return fmt.Errorf("failed to notify %s: %w", ev.Topic, err)
		}
	}
	return nil
}

// Hub fans change events out to in-process subscribers by topic.
// Slow subscribers drop events rather than block publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan types.ChangeEvent]struct{}
	buffer int
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[string]map[chan types.ChangeEvent]struct{}), buffer: buffer}
}

// Subscribe registers for events on topic. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(topic string) (<-chan types.ChangeEvent, func()) {
	ch := make(chan types.ChangeEvent, h.buffer)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[chan types.ChangeEvent]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[topic], ch)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of ev.Topic and returns how many
// received it.
func (h *Hub) Publish(ev types.ChangeEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subs[ev.Topic] {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of subscribers on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Notifier listens on NotifyChannel with a dedicated connection and
// republishes every event to a Hub.
type Notifier struct {
	db      *DB
	hub     *Hub
	logger  *slog.Logger
	backoff time.Duration
}

// NewNotifier creates a notifier publishing into hub.
func NewNotifier(db *DB, hub *Hub, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{db: db, hub: hub, logger: logger, backoff: time.Second}
}

// Run listens until ctx is done, reconnecting after connection errors.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		err := n.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		n.logger.Warn("change listener disconnected", "error", err, "retry_in", n.backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(n.backoff):
		}
	}
}

func (n *Notifier) listen(ctx context.Context) error {
	pooled, err := n.db.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	// LISTEN state must not leak back into the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	n.logger.Debug("listening for changes", "channel", NotifyChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := decodeEvent(notification.Payload)
		if err != nil {
			n.logger.Warn("dropping malformed change event", "error", err)
			continue
		}
		n.hub.Publish(ev)
	}
}

func decodeEvent(payload string) (types.ChangeEvent, error) {
	var ev types.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to decode change event: %w", err)
	}
	if ev.Topic == "" {
		return ev, errors.New("change event has no topic")
	}
	return ev, nil
}
