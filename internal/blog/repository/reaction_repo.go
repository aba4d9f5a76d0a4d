package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
)

type ReactionRepository struct {
	db *sql.DB
}

func NewReactionRepository(db *sql.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

const reactionSelect = `
SELECT r.id, r.post_id, p.slug, r.user_uid, r.reaction, r.created_at, r.updated_at
FROM reactions r
JOIN posts p ON p.id = r.post_id`

func scanReaction(row rowScanner) (*domain.Reaction, error) {
	var re domain.Reaction
	err := row.Scan(&re.ID, &re.PostID, &re.PostSlug, &re.UserUID, &re.Reaction, &re.CreatedAt, &re.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &re, nil
}

// Upsert records the user's reaction to a post, replacing any earlier one.
func (r *ReactionRepository) Upsert(ctx context.Context, re *domain.Reaction) error {
	const q = `
INSERT INTO reactions (post_id, user_uid, reaction)
VALUES ($1, $2, $3)
ON CONFLICT (post_id, user_uid) DO UPDATE
SET reaction = EXCLUDED.reaction, updated_at = NOW()
RETURNING id, created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, re.PostID, re.UserUID, re.Reaction).Scan(&re.ID, &re.CreatedAt, &re.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save reaction: %w", err)
	}
	return nil
}

func (r *ReactionRepository) GetByID(ctx context.Context, id int64) (*domain.Reaction, error) {
	re, err := scanReaction(r.db.QueryRowContext(ctx, reactionSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return re, nil
}

// ListByUser returns uid's reactions, optionally narrowed to one post.
func (r *ReactionRepository) ListByUser(ctx context.Context, uid, postSlug string) ([]domain.Reaction, error) {
	rows, err := r.db.QueryContext(ctx,
		reactionSelect+` WHERE r.user_uid = $1 AND ($2 = '' OR p.slug = $2) ORDER BY r.updated_at DESC, r.id DESC`,
		uid, postSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Reaction{}
	for rows.Next() {
		re, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *re)
	}
	return out, rows.Err()
}

func (r *ReactionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrReactionNotFound
	}
	return nil
}

// CountsForPost tallies likes and dislikes on a post.
func (r *ReactionRepository) CountsForPost(ctx context.Context, postID int64) (domain.ReactionCounts, error) {
	var counts domain.ReactionCounts
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FILTER (WHERE reaction = 'like'),
       COUNT(*) FILTER (WHERE reaction = 'dislike')
FROM reactions WHERE post_id = $1`, postID).Scan(&counts.Like, &counts.Dislike)
	if err != nil {
		return counts, fmt.Errorf("failed to count reactions: %w", err)
	}
	return counts, nil
}
