package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
SELECT c.id, c.post_id, p.slug, c.author_uid,
       COALESCE(u.email, ''), COALESCE(u.display_name, ''), COALESCE(u.bio, ''), COALESCE(u.avatar_url, ''),
       c.body, c.parent_id, c.is_public, c.created_at, c.updated_at
FROM comments c
JOIN posts p ON p.id = c.post_id
LEFT JOIN users u ON u.firebase_uid = c.author_uid`

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	var parent sql.NullInt64
	err := row.Scan(
		&c.ID, &c.PostID, &c.PostSlug, &c.AuthorUID,
		&c.Author.Email, &c.Author.DisplayName, &c.Author.Bio, &c.Author.AvatarURL,
		&c.Body, &parent, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Author.FirebaseUID = c.AuthorUID
	if parent.Valid {
		id := parent.Int64
		c.ParentID = &id
	}
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	const q = `
INSERT INTO comments (post_id, author_uid, body, parent_id, is_public)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, c.PostID, c.AuthorUID, c.Body, c.ParentID, c.IsPublic).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// ListVisible returns comments the viewer may see, oldest first. Anonymous
// viewers see public comments; signed-in viewers also see their own hidden
// ones; staff see everything. An empty postSlug lists across all posts.
func (r *CommentRepository) ListVisible(ctx context.Context, viewer domain.Actor, postSlug string) ([]domain.Comment, error) {
	query := commentSelect + ` WHERE ($1 = '' OR p.slug = $1)`
	args := []any{postSlug}
	switch {
	case !viewer.Authenticated():
		query += ` AND c.is_public`
	case !viewer.Staff:
		query += ` AND (c.is_public OR c.author_uid = $2)`
		args = append(args, viewer.UID)
	}
	query += ` ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	const q = `
UPDATE comments SET body = $2, is_public = $3, updated_at = NOW()
WHERE id = $1
RETURNING updated_at;
`
	err := r.db.QueryRowContext(ctx, q, c.ID, c.Body, c.IsPublic).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
