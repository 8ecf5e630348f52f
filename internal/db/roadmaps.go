package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/skillforge/internal/types"
)

func scanRoadmap(row pgx.Row) (*types.Roadmap, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return nil, err
	}
	var r types.Roadmap
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("failed to decode roadmap: %w", err)
	}
	return &r, nil
}

func upsertRoadmap(ctx context.Context, tx pgx.Tx, userID uuid.UUID, r *types.Roadmap) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal roadmap: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO roadmaps (user_id, id, topic, document, is_completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, id) DO UPDATE
		 SET topic = $3, document = $4, is_completed = $5, updated_at = NOW()`,
		userID, r.ID, r.Topic, doc, r.IsCompleted, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save roadmap %s: %w", r.ID, err)
	}
	return nil
}

func roadmapEvent(userID uuid.UUID, roadmapID string) types.ChangeEvent {
	return types.ChangeEvent{Topic: UserTopic(userID), Kind: EventRoadmap, UserID: userID, RoadmapID: roadmapID}
}

// SaveRoadmap inserts or replaces a roadmap document.
func (db *DB) SaveRoadmap(ctx context.Context, userID uuid.UUID, r *types.Roadmap) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if err := upsertRoadmap(ctx, tx, userID, r); err != nil {
			return err
		}
		return notifyAll(ctx, tx, roadmapEvent(userID, r.ID))
	})
}

// GetRoadmap retrieves a user's roadmap, or nil if it does not exist.
func (db *DB) GetRoadmap(ctx context.Context, userID uuid.UUID, id string) (*types.Roadmap, error) {
	r, err := scanRoadmap(db.pool.QueryRow(ctx,
		`SELECT document FROM roadmaps WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return r, nil
}

// ListRoadmaps returns a user's roadmaps, newest first.
func (db *DB) ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]types.Roadmap, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT document FROM roadmaps WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	defer rows.Close()

	roadmaps := []types.Roadmap{}
	for rows.Next() {
		r, err := scanRoadmap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap: %w", err)
		}
		roadmaps = append(roadmaps, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roadmaps: %w", err)
	}
	return roadmaps, nil
}

// CountRoadmaps returns how many roadmaps a user has.
func (db *DB) CountRoadmaps(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roadmaps WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count roadmaps: %w", err)
	}
	return n, nil
}

// DeleteRoadmap removes a roadmap. It reports whether one was deleted.
func (db *DB) DeleteRoadmap(ctx context.Context, userID uuid.UUID, id string) (bool, error) {
	deleted := false
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM roadmaps WHERE user_id = $1 AND id = $2`, userID, id)
		if err != nil {
			return fmt.Errorf("failed to delete roadmap: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil
		}
		deleted = true
		return notifyAll(ctx, tx, roadmapEvent(userID, id))
	})
	return deleted, err
}

// MutateRoadmap locks a roadmap row, applies fn to the decoded document and
// stores the result in one transaction. An error from fn rolls back.
// Returns nil, nil when the roadmap does not exist.
func (db *DB) MutateRoadmap(ctx context.Context, userID uuid.UUID, id string, fn func(r *types.Roadmap) error) (*types.Roadmap, error) {
	var out *types.Roadmap
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		r, err := scanRoadmap(tx.QueryRow(ctx,
			`SELECT document FROM roadmaps WHERE user_id = $1 AND id = $2 FOR UPDATE`, userID, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to lock roadmap: %w", err)
		}

		if err := fn(r); err != nil {
			return err
		}
		// the key is fixed by the row
		r.ID = id

		if err := upsertRoadmap(ctx, tx, userID, r); err != nil {
			return err
		}
		if err := notifyAll(ctx, tx, roadmapEvent(userID, id)); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
