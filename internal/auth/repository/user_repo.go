package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/blogcraftai/blogcraft-backend/internal/auth/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `firebase_uid, email, display_name, bio, avatar_url, role, created_at, updated_at, last_login_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var lastLoginAt sql.NullTime
	err := row.Scan(
		&user.FirebaseUID,
		&user.Email,
		&user.DisplayName,
		&user.Bio,
		&user.AvatarURL,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return &user, nil
}

// GetByFirebaseUID retrieves a user by their Firebase UID
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Upsert creates the user on first sign-in and refreshes identity fields on
// later ones. Profile fields the user edited (bio, display name once set) are
// kept, and the role is never touched here.
func (r *UserRepository) Upsert(ctx context.Context, req *domain.SyncUserRequest) (*domain.User, error) {
	query := `
		INSERT INTO users (firebase_uid, email, display_name, avatar_url, role, last_login_at)
		VALUES ($1, $2, COALESCE($3, ''), COALESCE($4, ''), $5, NOW())
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = CASE WHEN users.display_name = '' THEN EXCLUDED.display_name ELSE users.display_name END,
		    avatar_url = CASE WHEN users.avatar_url = '' THEN EXCLUDED.avatar_url ELSE users.avatar_url END,
		    last_login_at = NOW(),
		    updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		req.FirebaseUID,
		req.Email,
		req.DisplayName,
		req.AvatarURL,
		domain.RoleUser,
	))
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// UpdateProfile writes the editable profile fields. Nil fields keep their value.
func (r *UserRepository) UpdateProfile(ctx context.Context, uid string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    bio = COALESCE($3, bio),
		    avatar_url = COALESCE($4, avatar_url),
		    updated_at = NOW()
		WHERE firebase_uid = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, uid, req.DisplayName, req.Bio, req.AvatarURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GetRole returns the stored role, or ErrUserNotFound when the user has never
// synced.
func (r *UserRepository) GetRole(ctx context.Context, uid string) (string, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `SELECT role FROM users WHERE firebase_uid = $1`, uid).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user role: %w", err)
	}
	return role, nil
}
