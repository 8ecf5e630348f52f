package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/server/middleware"
	"github.com/jonathan/skillforge/internal/types"
)

// SSE event names
const (
	EventProfile      = "profile"
	EventRoadmap      = "roadmap"
	EventLeaderboard  = "leaderboard"
	EventSessionEnded = "session_ended"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends a keep-alive comment line.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// stream is one subscriber connection: a hub subscription plus the session
// that opened it.
type stream struct {
	sse    *SSEWriter
	events <-chan types.ChangeEvent
	claims *Claims
}

// openStream subscribes to topic and upgrades the response.
func (s *Server) openStream(w http.ResponseWriter, r *http.Request, topic string) (*stream, func(), bool) {
	if s.hub == nil {
		errorResponse(w, http.StatusServiceUnavailable, "live updates unavailable")
		return nil, nil, false
	}
	claims, _ := middleware.GetClaims(r).(*Claims)

	events, cancel := s.hub.Subscribe(topic)
	sse, err := NewSSEWriter(w)
	if err != nil {
		cancel()
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return &stream{sse: sse, events: events, claims: claims}, cancel, true
}

// run delivers events to onEvent until the client leaves, the server shuts
// down, or the session expires or is revoked. Session checks happen on
// every heartbeat.
func (s *Server) run(ctx context.Context, st *stream, onEvent func(types.ChangeEvent) error) {
	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	var expired <-chan time.Time
	if st.claims != nil && !st.claims.Expiry().IsZero() {
		timer := time.NewTimer(time.Until(st.claims.Expiry()))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.streams.Done():
			return
		case <-expired:
			st.sse.WriteEvent(EventSessionEnded, map[string]string{"reason": "expired"}) //nolint:errcheck
			return
		case <-heartbeat.C:
			if st.claims != nil && s.jwtService.IsRevoked(st.claims) {
				st.sse.WriteEvent(EventSessionEnded, map[string]string{"reason": "logged_out"}) //nolint:errcheck
				return
			}
			if err := st.sse.WriteComment("ping"); err != nil {
				return
			}
		case ev, ok := <-st.events:
			if !ok {
				return
			}
			if err := onEvent(ev); err != nil {
				s.logger.Debug("event stream closed", "topic", ev.Topic, "error", err)
				return
			}
		}
	}
}

// handleUserEvents streams the caller's profile on progress changes and
// roadmap change notices.
func (s *Server) handleUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	st, cancel, ok := s.openStream(w, r, db.UserTopic(userID))
	if !ok {
		return
	}
	defer cancel()

	if err := s.writeProfile(r.Context(), st.sse, userID); err != nil {
		return
	}
	s.run(r.Context(), st, func(ev types.ChangeEvent) error {
		if ev.Kind == db.EventRoadmap {
			return st.sse.WriteEvent(EventRoadmap, ev)
		}
		return s.writeProfile(r.Context(), st.sse, userID)
	})
}

func (s *Server) writeProfile(ctx context.Context, sse *SSEWriter, userID uuid.UUID) error {
	profile, err := s.tracker.Profile(ctx, userID)
	if err != nil {
		sse.WriteError(publicMessage(err, HTTPStatus(err)))
		return err
	}
	return sse.WriteEvent(EventProfile, profile)
}

// handleLeaderboardEvents streams a fresh leaderboard snapshot whenever
// points change. Bursts of changes are coalesced into one snapshot.
func (s *Server) handleLeaderboardEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st, cancel, ok := s.openStream(w, r, db.LeaderboardTopic)
	if !ok {
		return
	}
	defer cancel()

	snapshot := func() error {
		entries, err := s.tracker.Leaderboard(r.Context(), limit)
		if err != nil {
			st.sse.WriteError(publicMessage(err, HTTPStatus(err)))
			return err
		}
		return st.sse.WriteEvent(EventLeaderboard, map[string]any{"entries": entries})
	}
	if err := snapshot(); err != nil {
		return
	}
	s.run(r.Context(), st, func(types.ChangeEvent) error {
		drain(st.events)
		return snapshot()
	})
}

// drain discards queued events without blocking.
func drain(events <-chan types.ChangeEvent) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
