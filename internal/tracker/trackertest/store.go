// Package trackertest provides in-memory doubles of the tracker's
// collaborators for tests in other packages.
package trackertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/types"
)

// Store is an in-memory tracker.Store that also serves user accounts.
// Documents are deep-copied on every read and write, as a database round
// trip would. When Hub is set, mutations publish the same change events
// the PostgreSQL store sends.
type Store struct {
	Hub *db.Hub

	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	roadmaps map[uuid.UUID]map[string][]byte
	seq      int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*db.User),
		roadmaps: make(map[uuid.UUID]map[string][]byte),
	}
}

// AddUser inserts a user with no password and returns its ID.
func (s *Store) AddUser(name string) uuid.UUID {
	id, err := s.CreateUser(context.Background(), name, name+"@example.com", "")
	if err != nil {
		panic(err)
	}
	return id
}

func copyUser(u *db.User) *db.User {
	c := *u
	c.Badges = append([]types.Badge(nil), u.Badges...)
	return &c
}

func (s *Store) publish(events ...types.ChangeEvent) {
	if s.Hub == nil {
		return
	}
	for _, ev := range events {
		s.Hub.Publish(ev)
	}
}

// CreateUser registers a user; registration order breaks leaderboard ties.
func (s *Store) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = db.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return uuid.Nil, db.ErrEmailTaken
		}
	}
	s.seq++
	now := time.Date(2025, 1, 1, 0, 0, s.seq, 0, time.UTC)
	id := uuid.New()
	s.users[id] = &db.User{
		ID: id, Name: name, Email: email, PasswordHash: passwordHash, Level: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = db.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found: %s", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *Store) UpdateUserName(_ context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	u, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("user not found: %s", id)
	}
	u.Name = name
	s.mu.Unlock()

	s.publish(
		types.ChangeEvent{Topic: db.UserTopic(id), Kind: db.EventProfile, UserID: id},
		types.ChangeEvent{Topic: db.LeaderboardTopic, Kind: db.EventLeaderboard, UserID: id},
	)
	return nil
}

func (s *Store) MutateProgress(_ context.Context, id uuid.UUID, fn func(u *db.User) error) (*db.User, error) {
	s.mu.Lock()
	u, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	c := copyUser(u)
	if err := fn(c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.users[id] = c
	out := copyUser(c)
	s.mu.Unlock()

	s.publish(
		types.ChangeEvent{Topic: db.UserTopic(id), Kind: db.EventProgress, UserID: id},
		types.ChangeEvent{Topic: db.LeaderboardTopic, Kind: db.EventLeaderboard, UserID: id},
	)
	return out, nil
}

func (s *Store) Leaderboard(_ context.Context, limit int) ([]types.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*db.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	entries := []types.LeaderboardEntry{}
	for i, u := range users {
		if i == limit {
			break
		}
		entries = append(entries, types.LeaderboardEntry{
			Rank: i + 1, UserID: u.ID, Name: u.Name, Points: u.Points, Level: u.Level, Badges: len(u.Badges),
		})
	}
	return entries, nil
}

func (s *Store) put(userID uuid.UUID, r *types.Roadmap) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("foreign key violation: user %s", userID)
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if s.roadmaps[userID] == nil {
		s.roadmaps[userID] = make(map[string][]byte)
	}
	s.roadmaps[userID][r.ID] = doc
	return nil
}

func (s *Store) get(userID uuid.UUID, id string) (*types.Roadmap, error) {
	doc, ok := s.roadmaps[userID][id]
	if !ok {
		return nil, nil
	}
	var r types.Roadmap
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func roadmapEvent(userID uuid.UUID, id string) types.ChangeEvent {
	return types.ChangeEvent{Topic: db.UserTopic(userID), Kind: db.EventRoadmap, UserID: userID, RoadmapID: id}
}

func (s *Store) SaveRoadmap(_ context.Context, userID uuid.UUID, r *types.Roadmap) error {
	s.mu.Lock()
	err := s.put(userID, r)
	s.mu.Unlock()
	if err == nil {
		s.publish(roadmapEvent(userID, r.ID))
	}
	return err
}

func (s *Store) GetRoadmap(_ context.Context, userID uuid.UUID, id string) (*types.Roadmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID, id)
}

func (s *Store) ListRoadmaps(_ context.Context, userID uuid.UUID) ([]types.Roadmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Roadmap{}
	for id := range s.roadmaps[userID] {
		r, err := s.get(userID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CountRoadmaps(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roadmaps[userID]), nil
}

func (s *Store) DeleteRoadmap(_ context.Context, userID uuid.UUID, id string) (bool, error) {
	s.mu.Lock()
	if _, ok := s.roadmaps[userID][id]; !ok {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.roadmaps[userID], id)
	s.mu.Unlock()
	s.publish(roadmapEvent(userID, id))
	return true, nil
}

func (s *Store) MutateRoadmap(_ context.Context, userID uuid.UUID, id string, fn func(r *types.Roadmap) error) (*types.Roadmap, error) {
	s.mu.Lock()
	r, err := s.get(userID, id)
	if err != nil || r == nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := fn(r); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	r.ID = id
	if err := s.put(userID, r); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	out, err := s.get(userID, id)
	s.mu.Unlock()
	if err == nil {
		s.publish(roadmapEvent(userID, id))
	}
	return out, err
}
