package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"sharefolio/internal/models"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (comment_id, post_id, author_id, username, photo_url, text, created_at)
		VALUES (:comment_id, :post_id, :author_id, :username, :photo_url, :text, :created_at)
	`

	comment.CommentID = uuid.New().String()
	comment.CreatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("пост %s: %w", comment.PostID, ErrNotFound)
		}
		return fmt.Errorf("ошибка при создании комментария: %w", err)
	}

	return nil
}

// ListByPostID returns the comments of a post, newest first.
func (r *commentRepository) ListByPostID(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `
		SELECT comment_id, post_id, author_id, username, photo_url, text, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC
	`

	var comments []*models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	return comments, nil
}
