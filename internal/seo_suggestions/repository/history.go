package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the history store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// HistoryRepository persists suggestion runs in Postgres.
type HistoryRepository struct {
	db Querier
}

func NewHistoryRepository(db Querier) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) SaveRun(ctx context.Context, run *domain.SuggestionRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Suggestions == nil {
		run.Suggestions = []domain.Suggestion{}
	}

	payload, err := json.Marshal(run.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	const q = `
insert into seo_suggestion_runs (id, user_id, post_slug, input_hash, outcome, error, cached, suggestions, created_at)
values ($1, $2, nullif($3,''), $4, $5, nullif($6,''), $7, $8, $9)
`
	if _, err := r.db.Exec(ctx, q,
		run.ID, run.UserID, run.PostSlug, run.InputHash, run.Outcome, run.Error, run.Cached, payload, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save suggestion run: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent runs, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SuggestionRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const q = `
select id::text, user_id, coalesce(post_slug,''), input_hash, outcome, coalesce(error,''), cached, suggestions, created_at
from seo_suggestion_runs
where user_id=$1
order by created_at desc
limit $2
`
	rows, err := r.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestion runs: %w", err)
	}
	defer rows.Close()

	out := []domain.SuggestionRun{}
	for rows.Next() {
		var run domain.SuggestionRun
		var payload []byte
		if err := rows.Scan(&run.ID, &run.UserID, &run.PostSlug, &run.InputHash, &run.Outcome, &run.Error, &run.Cached, &payload, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion run: %w", err)
		}
		run.Suggestions = []domain.Suggestion{}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &run.Suggestions); err != nil {
				return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
			}
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestion runs: %w", err)
	}
	return out, nil
}

// PurgeOlderThan deletes runs created before cutoff and reports how many went.
func (r *HistoryRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `delete from seo_suggestion_runs where created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge suggestion runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
