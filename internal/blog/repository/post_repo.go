package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/storage/postgres"
)

const maxSlugAttempts = 5

// PostRepository provides persistence operations for posts
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const postSelect = `
SELECT p.id, p.author_uid,
       COALESCE(u.email, ''), COALESCE(u.display_name, ''), COALESCE(u.bio, ''), COALESCE(u.avatar_url, ''),
       p.title, p.slug, p.summary, p.content, p.status, p.published_at, p.created_at, p.updated_at,
       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.is_public)
FROM posts p
LEFT JOIN users u ON u.firebase_uid = p.author_uid`

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	var publishedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.AuthorUID,
		&p.Author.Email, &p.Author.DisplayName, &p.Author.Bio, &p.Author.AvatarURL,
		&p.Title, &p.Slug, &p.Summary, &p.Content, &p.Status, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.PublicCommentCount,
	)
	if err != nil {
		return nil, err
	}
	p.Author.FirebaseUID = p.AuthorUID
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	p.Tags = []string{}
	return &p, nil
}

// Create inserts the post and its tags. A slug already in use gets a random
// suffix; p.Slug holds the stored value afterwards.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	return postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		base := p.Slug
		slug := base
		for i := 0; ; i++ {
			const q = `
INSERT INTO posts (author_uid, title, slug, summary, content, status, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (slug) DO NOTHING
RETURNING id, created_at, updated_at;
`
			err := tx.QueryRowContext(ctx, q, p.AuthorUID, p.Title, slug, p.Summary, p.Content, p.Status, p.PublishedAt).
				Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
			if err == nil {
				p.Slug = slug
				break
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to insert post: %w", err)
			}
			// slug taken → retry with a suffix
			if i+1 >= maxSlugAttempts {
				return domain.ErrSlugUnavailable
			}
			suffix, err := domain.RandomSuffix(6)
			if err != nil {
				return err
			}
			slug = domain.SlugWithSuffix(base, suffix, domain.MaxSlugLen)
		}

		return setPostTags(ctx, tx, p.ID, p.Tags)
	})
}

// GetBySlug returns the post regardless of status; callers apply visibility.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, postSelect+` WHERE p.slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if err := r.attachTags(ctx, []*domain.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page of posts matching f and the total match count.
func (r *PostRepository) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, int, error) {
	where, args := buildPostWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	offset := (f.Page - 1) * f.PageSize
	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		postSelect, where, orderClause(f.Ordering), len(args)+1, len(args)+2)
	args = append(args, f.PageSize, offset)

	posts, err := r.queryPosts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByAuthor returns every post by uid, most recently updated first.
func (r *PostRepository) ListByAuthor(ctx context.Context, uid string) ([]domain.Post, error) {
	return r.queryPosts(ctx, postSelect+` WHERE p.author_uid = $1 ORDER BY p.updated_at DESC, p.id DESC`, uid)
}

// CountByStatus returns the number of posts by uid in each status.
func (r *PostRepository) CountByStatus(ctx context.Context, uid string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM posts WHERE author_uid = $1 GROUP BY status`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Update writes the mutable columns. A nil tags leaves the tag set unchanged.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post, tags *[]string) error {
	return postgres.InTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
UPDATE posts
SET title = $2, summary = $3, content = $4, status = $5, published_at = $6, updated_at = NOW()
WHERE id = $1
RETURNING updated_at;
`
		err := tx.QueryRowContext(ctx, q, p.ID, p.Title, p.Summary, p.Content, p.Status, p.PublishedAt).Scan(&p.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		if tags == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear post tags: %w", err)
		}
		if err := setPostTags(ctx, tx, p.ID, *tags); err != nil {
			return err
		}
		p.Tags = *tags
		return nil
	})
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var ptrs []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		ptrs = append(ptrs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachTags(ctx, ptrs); err != nil {
		return nil, err
	}

	out := make([]domain.Post, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out, nil
}

func (r *PostRepository) attachTags(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(posts))
	byID := make(map[int64]*domain.Post, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT pt.post_id, t.name
FROM post_tags pt
JOIN tags t ON t.id = pt.tag_id
WHERE pt.post_id = ANY($1)
ORDER BY t.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var name string
		if err := rows.Scan(&postID, &name); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, name)
		}
	}
	return rows.Err()
}

// buildPostWhere turns the filter into a WHERE clause with positional args.
func buildPostWhere(f domain.PostFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case !f.Viewer.Authenticated():
		conds = append(conds, "p.status = 'published'")
	case f.Mine:
		conds = append(conds, "p.author_uid = "+arg(f.Viewer.UID))
	case !f.Viewer.Staff:
		conds = append(conds, "(p.status = 'published' OR p.author_uid = "+arg(f.Viewer.UID)+")")
	}

	if f.Status != "" {
		conds = append(conds, "p.status = "+arg(f.Status))
	}
	if f.TagSlug != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t.slug = `+arg(f.TagSlug)+`)`)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		ph := arg("%" + escapeLike(q) + "%")
		conds = append(conds, fmt.Sprintf(
			`(p.title ILIKE %[1]s OR p.summary ILIKE %[1]s OR p.content ILIKE %[1]s OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t.name ILIKE %[1]s))`,
			ph))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var postOrderings = map[string]string{
	"published_at":  "p.published_at ASC NULLS FIRST, p.id ASC",
	"-published_at": "p.published_at DESC NULLS LAST, p.created_at DESC, p.id DESC",
	"created_at":    "p.created_at ASC, p.id ASC",
	"-created_at":   "p.created_at DESC, p.id DESC",
	"title":         "p.title ASC, p.id ASC",
	"-title":        "p.title DESC, p.id DESC",
}

// ValidOrdering reports whether the listing supports ordering o.
func ValidOrdering(o string) bool {
	_, ok := postOrderings[o]
	return o == "" || ok
}

func orderClause(o string) string {
	if clause, ok := postOrderings[o]; ok {
		return clause
	}
	return postOrderings["-published_at"]
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
