package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"sharefolio/internal/models"
)

const postColumns = `post_id, author_id, app_name, title, description, level, technologies,
		app_url, github_url, image_url, created_at, updated_at`

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

// Create inserts post and assigns its id and timestamps. On failure the
// post is left without an id.
func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts
		(post_id, author_id, app_name, title, description, level, technologies, app_url, github_url, image_url, created_at, updated_at)
		VALUES
		(:post_id, :author_id, :app_name, :title, :description, :level, :technologies, :app_url, :github_url, :image_url, :created_at, :updated_at)
	`

	draft := *post
	draft.PostID = uuid.New().String()
	if draft.Technologies == nil {
		draft.Technologies = []string{}
	}

	now := time.Now()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	_, err := r.DB.NamedExecContext(ctx, query, &draft)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	*post = draft
	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пост с ID %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	return &post, nil
}

// ListLatest returns every post, newest first.
func (r *PostRepositoryImpl) ListLatest(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`

	var posts []*models.Post
	if err := r.DB.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ORDER BY created_at DESC`

	var posts []*models.Post
	if err := r.DB.SelectContext(ctx, &posts, query, authorID); err != nil {
		return nil, fmt.Errorf("ошибка при получении постов пользователя %s: %w", authorID, err)
	}

	return posts, nil
}

// Update overwrites the editable fields. Rows of other authors are never touched.
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			app_name = :app_name,
			title = :title,
			description = :description,
			level = :level,
			technologies = :technologies,
			app_url = :app_url,
			github_url = :github_url,
			image_url = :image_url,
			updated_at = :updated_at
		WHERE post_id = :post_id AND author_id = :author_id
	`

	post.UpdatedAt = time.Now()
	if post.Technologies == nil {
		post.Technologies = []string{}
	}

	result, err := r.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост %s: %w", post.PostID, ErrNotFound)
	}

	return nil
}

// Delete removes the post; its comments go with it (ON DELETE CASCADE).
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	query := `DELETE FROM posts WHERE post_id = $1`

	result, err := r.DB.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост %s: %w", postID, ErrNotFound)
	}

	return nil
}
