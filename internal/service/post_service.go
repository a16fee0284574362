package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"sharefolio/internal/catalog"
	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/realtime"
	"sharefolio/internal/repository"
	"sharefolio/internal/storage"
	"sharefolio/internal/validation"
)

type PostService interface {
	CreatePost(ctx context.Context, authorID string, form validation.PostForm, image *ImageUpload) (*models.Post, error)
	UpdatePost(ctx context.Context, editorID, postID string, form validation.PostForm, image *ImageUpload) (*models.Post, error)
	DeletePost(ctx context.Context, editorID, postID string) error
	GetPostDetail(ctx context.Context, viewerID, postID string) (*models.PostDetail, error)
	GetEditablePost(ctx context.Context, editorID, postID string) (*models.Post, error)
}

type postService struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	storage     storage.Storage
	events      Publisher
	catalog     *catalog.Catalog
	cfg         *config.Config
	logger      *zap.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	store storage.Storage,
	events Publisher,
	cat *catalog.Catalog,
	cfg *config.Config,
	logger *zap.Logger,
) PostService {
	return &postService{
		postRepo:    postRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		storage:     store,
		events:      events,
		catalog:     cat,
		cfg:         cfg,
		logger:      logger,
	}
}

func (p *postService) CreatePost(ctx context.Context, authorID string, form validation.PostForm, image *ImageUpload) (*models.Post, error) {
	if authorID == "" {
		return nil, ErrUnauthorized
	}
	if err := validationError(validation.Validate(form)); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: authorID}
	applyForm(post, form)
	if post.Level == "" {
		post.Level = models.LevelBeginner
	}

	if image != nil {
		imageURL, err := p.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = imageURL
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		p.discardImage(ctx, post.ImageURL)
		return nil, err
	}

	p.events.Publish(realtime.TopicPosts, realtime.KindCreated, post.PostID)

	return post, nil
}

// UpdatePost overwrites the post with form. A new image is uploaded and
// referenced before the previous one is removed; failing to remove the
// previous image is only logged.
func (p *postService) UpdatePost(ctx context.Context, editorID, postID string, form validation.PostForm, image *ImageUpload) (*models.Post, error) {
	post, err := p.authorizedPost(ctx, editorID, postID)
	if err != nil {
		return nil, err
	}
	if err := validationError(validation.Validate(form)); err != nil {
		return nil, err
	}

	applyForm(post, form)
	if post.Level == "" {
		post.Level = models.LevelBeginner
	}

	previousImage := post.ImageURL
	if image != nil {
		imageURL, err := p.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = imageURL
	}

	if err := p.postRepo.Update(ctx, post); err != nil {
		if post.ImageURL != previousImage {
			p.discardImage(ctx, post.ImageURL)
		}
		return nil, err
	}

	if post.ImageURL != previousImage {
		p.discardImage(ctx, previousImage)
	}

	p.events.Publish(realtime.TopicPosts, realtime.KindUpdated, post.PostID)

	return post, nil
}

// DeletePost removes the document first; the stored image is removed on a
// best-effort basis afterwards.
func (p *postService) DeletePost(ctx context.Context, editorID, postID string) error {
	post, err := p.authorizedPost(ctx, editorID, postID)
	if err != nil {
		return err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	p.discardImage(ctx, post.ImageURL)
	p.events.Publish(realtime.TopicPosts, realtime.KindDeleted, postID)

	return nil
}

func (p *postService) GetPostDetail(ctx context.Context, viewerID, postID string) (*models.PostDetail, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var (
		author   *models.User
		comments []*models.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := p.userRepo.GetUserByID(gctx, post.AuthorID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		author = u
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = p.commentRepo.ListByPostID(gctx, postID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка загрузки поста: %w", err)
	}

	return &models.PostDetail{
		Post:        post,
		Author:      author.Summary(),
		Comments:    commentViews(comments, p.cfg.DisplayLocation),
		LevelLabel:  p.catalog.LevelLabel(post.Level),
		DisplayTime: models.DisplayTime(post.CreatedAt, p.cfg.DisplayLocation),
		Editable:    viewerID != "" && viewerID == post.AuthorID,
		CanComment:  viewerID != "",
	}, nil
}

func (p *postService) GetEditablePost(ctx context.Context, editorID, postID string) (*models.Post, error) {
	return p.authorizedPost(ctx, editorID, postID)
}

func (p *postService) authorizedPost(ctx context.Context, editorID, postID string) (*models.Post, error) {
	if editorID == "" {
		return nil, ErrUnauthorized
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != editorID {
		return nil, ErrForbidden
	}

	return post, nil
}

func (p *postService) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	contentType, err := ValidateImage(image.File, image.Size, p.cfg.Upload.MaxPostImageSize)
	if err != nil {
		return "", err
	}

	_, imageURL, err := p.storage.UploadImage(ctx, storage.FolderImages, image.FileName, image.File, image.Size, contentType)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки изображения: %w", err)
	}

	return imageURL, nil
}

func (p *postService) discardImage(ctx context.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	if err := p.storage.DeleteImage(ctx, imageURL); err != nil {
		p.logger.Warn("failed to delete stored image", zap.String("url", imageURL), zap.Error(err))
	}
}

func applyForm(post *models.Post, form validation.PostForm) {
	post.AppName = form.AppName
	post.Title = form.Title
	post.Description = form.Description
	post.Level = form.Level
	post.Technologies = append([]string{}, form.Technologies...)
	post.AppURL = form.AppURL
	post.GithubURL = form.GithubURL
}
