package service

import (
	"context"
	"fmt"
	"time"

	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/realtime"
	"sharefolio/internal/repository"
	"sharefolio/internal/validation"
)

type CommentService interface {
	AddComment(ctx context.Context, authorID, postID string, form validation.CommentForm) (*models.CommentView, error)
	ListComments(ctx context.Context, postID string) ([]models.CommentView, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	events      Publisher
	cfg         *config.Config
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	events Publisher,
	cfg *config.Config,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		events:      events,
		cfg:         cfg,
	}
}

// AddComment stores the author's current name and avatar with the comment.
func (s *commentService) AddComment(ctx context.Context, authorID, postID string, form validation.CommentForm) (*models.CommentView, error) {
	if authorID == "" {
		return nil, ErrUnauthorized
	}
	if err := validationError(validation.Validate(form)); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении автора комментария: %w", err)
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: author.UserID,
		Username: author.Username,
		PhotoURL: author.PhotoURL,
		Text:     form.Text,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.events.Publish(realtime.CommentsTopic(postID), realtime.KindCreated, comment.CommentID)

	return &models.CommentView{
		Comment:     comment,
		DisplayTime: models.DisplayTime(comment.CreatedAt, s.cfg.DisplayLocation),
	}, nil
}

func (s *commentService) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return commentViews(comments, s.cfg.DisplayLocation), nil
}

func commentViews(comments []*models.Comment, loc *time.Location) []models.CommentView {
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{
			Comment:     c,
			DisplayTime: models.DisplayTime(c.CreatedAt, loc),
		})
	}
	return views
}
