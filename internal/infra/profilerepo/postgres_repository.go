package profilerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/quiz-catalog/internal/domain/bookmark"
)

// PostgresRepository persists profiles in Postgres. Bookmarks and the legacy
// topics field are JSONB documents.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = `id::text, user_id, bookmarks, topics, created_at, updated_at`

// Ensure inserts an empty profile unless one exists, then reads it back.
func (r *PostgresRepository) Ensure(ctx context.Context, userID string) (bookmark.Profile, error) {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.NewString(), userID); err != nil {
		return bookmark.Profile{}, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

// SaveBookmarks replaces bookmarks and nulls the legacy field in one write.
func (r *PostgresRepository) SaveBookmarks(ctx context.Context, profileID string, bookmarks []bookmark.TopicBookmarks) (bookmark.Profile, error) {
	if bookmarks == nil {
		bookmarks = []bookmark.TopicBookmarks{}
	}
	payload, err := json.Marshal(bookmarks)
	if err != nil {
		return bookmark.Profile{}, fmt.Errorf("encode bookmarks: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET bookmarks = $2::jsonb, topics = NULL, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		profileID, payload)
	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return bookmark.Profile{}, bookmark.ErrProfileNotFound
	}
	return profile, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (bookmark.Profile, error) {
	var (
		profile   bookmark.Profile
		bookmarks []byte
		legacy    []byte
	)
	if err := row.Scan(&profile.ID, &profile.UserID, &bookmarks, &legacy, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return bookmark.Profile{}, err
	}
	profile.Bookmarks = []bookmark.TopicBookmarks{}
	if len(bookmarks) > 0 {
		if err := json.Unmarshal(bookmarks, &profile.Bookmarks); err != nil {
			return bookmark.Profile{}, fmt.Errorf("decode bookmarks of profile %s: %w", profile.ID, err)
		}
	}
	if len(legacy) > 0 {
		if err := json.Unmarshal(legacy, &profile.Topics); err != nil {
			return bookmark.Profile{}, fmt.Errorf("decode legacy topics of profile %s: %w", profile.ID, err)
		}
	}
	return profile, nil
}

var _ bookmark.Repository = (*PostgresRepository)(nil)
