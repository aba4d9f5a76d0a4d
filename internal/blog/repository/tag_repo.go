package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
)

const tagColumns = `id, name, slug, created_at, updated_at`

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

func scanTag(row rowScanner) (*domain.Tag, error) {
	var t domain.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tags ordered by name. A non-empty q keeps tags whose name
// contains it, ignoring case.
func (r *TagRepository) List(ctx context.Context, q string) ([]domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ORDER BY name`,
		escapeLike(q))
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func (r *TagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	t, err := scanTag(r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return t, nil
}

// Create stores a new tag. The slug is derived from the name and suffixed
// when another tag already holds it.
func (r *TagRepository) Create(ctx context.Context, name string) (*domain.Tag, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}
	if exists {
		return nil, domain.ErrTagExists
	}

	id, err := insertTag(ctx, r.db, name)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		// lost a race on the name
		return nil, domain.ErrTagExists
	}
	t, err := scanTag(r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return t, nil
}

// Rename changes the tag's name. Its slug stays the same.
func (r *TagRepository) Rename(ctx context.Context, slug, name string) (*domain.Tag, error) {
	const q = `UPDATE tags SET name = $2, updated_at = NOW() WHERE slug = $1 RETURNING ` + tagColumns
	t, err := scanTag(r.db.QueryRowContext(ctx, q, slug, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrTagExists
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return t, nil
}

func (r *TagRepository) Delete(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insertTag inserts name with a free slug and returns its id, or 0 when a tag
// with that name already exists.
func insertTag(ctx context.Context, q queryRower, name string) (int64, error) {
	base := domain.TruncateSlug(domain.Slugify(name), domain.MaxTagNameLen)
	slug := base
	for i := 0; i < maxSlugAttempts; i++ {
		var id int64
		err := q.QueryRowContext(ctx, `
INSERT INTO tags (name, slug) VALUES ($1, $2)
ON CONFLICT DO NOTHING
RETURNING id`, name, slug).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to insert tag: %w", err)
		}

		// Either the name or the slug is taken; only the slug is retried.
		var nameTaken bool
		if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&nameTaken); err != nil {
			return 0, fmt.Errorf("failed to check tag: %w", err)
		}
		if nameTaken {
			return 0, nil
		}
		suffix, err := domain.RandomSuffix(6)
		if err != nil {
			return 0, err
		}
		slug = domain.SlugWithSuffix(base, suffix, domain.MaxTagNameLen)
	}
	return 0, domain.ErrSlugUnavailable
}

// getOrCreateTag returns the id of the tag called name, creating it if needed.
func getOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up tag: %w", err)
	}

	id, err = insertTag(ctx, tx, name)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}
	// created concurrently by someone else
	if err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up tag: %w", err)
	}
	return id, nil
}

func setPostTags(ctx context.Context, tx *sql.Tx, postID int64, names []string) error {
	for _, name := range names {
		tagID, err := getOrCreateTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tagID); err != nil {
			return fmt.Errorf("failed to link tag: %w", err)
		}
	}
	return nil
}
