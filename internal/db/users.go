package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/skillforge/internal/types"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// User is a stored account row.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Points       int
	Level        int
	Badges       []types.Badge
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public converts the row into the API view, dropping the password hash.
func (u *User) Public() *types.User {
	badges := u.Badges
	if badges == nil {
		badges = []types.Badge{}
	}
	return &types.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Points:    u.Points,
		Level:     u.Level,
		Badges:    badges,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

const userColumns = `id, name, email, password_hash, points, level, badges, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var badges []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Points, &u.Level, &badges, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if len(badges) > 0 {
		if err := json.Unmarshal(badges, &u.Badges); err != nil {
			return nil, fmt.Errorf("failed to decode badges: %w", err)
		}
	}
	return &u, nil
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user with zero points at level 1 and returns its ID.
func (db *DB) CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		name, NormalizeEmail(email), passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUser retrieves a user by ID, or nil if it does not exist.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, or nil if it does not exist.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	u, err := scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the stored password hash.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// UpdateUserName renames a user and notifies its subscribers.
func (db *DB) UpdateUserName(ctx context.Context, id uuid.UUID, name string) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
		if err != nil {
			return fmt.Errorf("failed to update user name: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("user not found: %s", id)
		}
		return notifyAll(ctx, tx,
			types.ChangeEvent{Topic: UserTopic(id), Kind: EventProfile, UserID: id},
			types.ChangeEvent{Topic: LeaderboardTopic, Kind: EventLeaderboard, UserID: id},
		)
	})
}

// DeleteUser deletes a user and, by cascade, their roadmaps.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// MutateProgress locks the user row, applies fn and persists points, level
// and badges in one transaction. fn sees the current row and edits it in
// place; an error from fn rolls back. Returns nil, nil when the user does
// not exist.
func (db *DB) MutateProgress(ctx context.Context, id uuid.UUID, fn func(u *User) error) (*User, error) {
	var out *User
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		if err := fn(u); err != nil {
			return err
		}

		badges, err := json.Marshal(nonNilBadges(u.Badges))
		if err != nil {
			return fmt.Errorf("failed to encode badges: %w", err)
		}
		err = tx.QueryRow(ctx,
			`UPDATE users SET points = $1, level = $2, badges = $3, updated_at = NOW()
			 WHERE id = $4
			 RETURNING updated_at`,
			u.Points, u.Level, badges, id,
		).Scan(&u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		if err := notifyAll(ctx, tx,
			types.ChangeEvent{Topic: UserTopic(id), Kind: EventProgress, UserID: id},
			types.ChangeEvent{Topic: LeaderboardTopic, Kind: EventLeaderboard, UserID: id},
		); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nonNilBadges(b []types.Badge) []types.Badge {
	if b == nil {
		return []types.Badge{}
	}
	return b
}

// Leaderboard returns the top users by points; ties go to the earliest registration.
func (db *DB) Leaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, points, level, jsonb_array_length(badges)
		 FROM users
		 ORDER BY points DESC, created_at ASC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []types.LeaderboardEntry{}
	for rows.Next() {
		var e types.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Points, &e.Level, &e.Badges); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return entries, nil
}
