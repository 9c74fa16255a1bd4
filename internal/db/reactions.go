package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kube-rca/reactions/internal/model"
)

const maxTargetFieldLength = 128

func normalizeTargetType(targetType string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(targetType))
	if normalized == "" || len(normalized) > maxTargetFieldLength {
		return "", fmt.Errorf("invalid target_type: %q", targetType)
	}
	return normalized, nil
}

func normalizeTargetID(targetID string) (string, error) {
	normalized := strings.TrimSpace(targetID)
	if normalized == "" || len(normalized) > maxTargetFieldLength {
		return "", fmt.Errorf("invalid target_id: %q", targetID)
	}
	return normalized, nil
}

func normalizeTarget(targetType, targetID string) (string, string, error) {
	t, err := normalizeTargetType(targetType)
	if err != nil {
		return "", "", err
	}
	id, err := normalizeTargetID(targetID)
	if err != nil {
		return "", "", err
	}
	return t, id, nil
}

func (db *Postgres) EnsureReactionSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS reactions (
			id UUID PRIMARY KEY,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('LIKE', 'FAVORITE', 'BOOKMARK', 'EMOJI')),
			emoji TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(target_type, target_id, user_id, kind, emoji)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS ratings (
			id UUID PRIMARY KEY,
			target_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			value SMALLINT NOT NULL CHECK (value BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(target_type, target_id, user_id)
		)
		`,
		`CREATE INDEX IF NOT EXISTS reactions_target_idx ON reactions(target_type, target_id)`,
		`CREATE INDEX IF NOT EXISTS reactions_user_idx ON reactions(user_id, target_type, target_id)`,
		`CREATE INDEX IF NOT EXISTS ratings_target_idx ON ratings(target_type, target_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// ToggleReaction removes the actor's reaction if present, otherwise adds it.
// It returns the resulting state.
func (db *Postgres) ToggleReaction(ctx context.Context, targetType, targetID string, userID int64, kind model.Kind, emoji string) (bool, error) {
	targetType, targetID, err := normalizeTarget(targetType, targetID)
	if err != nil {
		return false, err
	}
	if kind != model.KindEmoji {
		emoji = ""
	}

	active := false
	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			DELETE FROM reactions
			WHERE target_type = $1 AND target_id = $2 AND user_id = $3 AND kind = $4 AND emoji = $5
		`, targetType, targetID, userID, string(kind), emoji)
		if err != nil {
			return err
		}
		if result.RowsAffected() > 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reactions (id, target_type, target_id, user_id, kind, emoji)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (target_type, target_id, user_id, kind, emoji) DO NOTHING
		`, uuid.New(), targetType, targetID, userID, string(kind), emoji)
		if err != nil {
			return err
		}
		active = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle reaction: %w", err)
	}
	return active, nil
}

func (db *Postgres) SetRating(ctx context.Context, targetType, targetID string, userID int64, value int) error {
	targetType, targetID, err := normalizeTarget(targetType, targetID)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO ratings (id, target_type, target_id, user_id, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (target_type, target_id, user_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, uuid.New(), targetType, targetID, userID, value)
	return err
}

func (db *Postgres) GetSummary(ctx context.Context, targetType, targetID string) (*model.SummaryNode, error) {
	targetType, targetID, err := normalizeTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT kind, emoji, COUNT(*)
		FROM reactions
		WHERE target_type = $1 AND target_id = $2
		GROUP BY kind, emoji
	`, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	node := &model.SummaryNode{
		ByKind:  map[model.Kind]int64{},
		ByEmoji: map[string]int64{},
	}
	for rows.Next() {
		var (
			kind  string
			emoji string
			count int64
		)
		if err := rows.Scan(&kind, &emoji, &count); err != nil {
			return nil, err
		}
		if model.Kind(kind) == model.KindEmoji {
			node.ByEmoji[emoji] += count
		}
		node.ByKind[model.Kind(kind)] += count
	}
	return node, rows.Err()
}

func (db *Postgres) GetRatingSummary(ctx context.Context, targetType, targetID string) (*model.RatingSummaryNode, error) {
	targetType, targetID, err := normalizeTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	node := &model.RatingSummaryNode{}
	err = db.Pool.QueryRow(ctx, `
		SELECT AVG(value)::float8, COUNT(*)
		FROM ratings
		WHERE target_type = $1 AND target_id = $2
	`, targetType, targetID).Scan(&node.Average, &node.Count)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// GetMine returns the actor's reactions and rating for every listed target.
func (db *Postgres) GetMine(ctx context.Context, targetType string, targetIDs []string, userID int64) ([]model.ReactionRecord, error) {
	targetType, err := normalizeTargetType(targetType)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(targetIDs))
	for _, raw := range targetIDs {
		id, err := normalizeTargetID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []model.ReactionRecord{}, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT target_id, kind, emoji, NULL::int4 AS value
		FROM reactions
		WHERE target_type = $1 AND target_id = ANY($2) AND user_id = $3
		UNION ALL
		SELECT target_id, 'RATING', '', value::int4
		FROM ratings
		WHERE target_type = $1 AND target_id = ANY($2) AND user_id = $3
		ORDER BY 1, 2, 3
	`, targetType, ids, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.ReactionRecord, 0)
	for rows.Next() {
		var (
			r     model.ReactionRecord
			kind  string
			value *int32
		)
		if err := rows.Scan(&r.TargetID, &kind, &r.Emoji, &value); err != nil {
			return nil, err
		}
		r.TargetType = targetType
		r.Kind = model.Kind(kind)
		if value != nil {
			v := int(*value)
			r.Value = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
