package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/realtime"
	"sharefolio/internal/repository"
	"sharefolio/internal/storage"
	"sharefolio/internal/validation"
)

// Profile is the my-page view: the user and the posts they wrote.
type Profile struct {
	User  *ProfileUser       `json:"user"`
	Posts []*models.FeedItem `json:"posts"`
	Owner bool               `json:"owner"`
}

// ProfileUser is the public part of a user. Email is filled in for the
// owner only.
type ProfileUser struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
	Email    string `json:"email,omitempty"`
}

func profileUser(user *models.User, owner bool) *ProfileUser {
	out := &ProfileUser{
		UID:      user.UserID,
		Username: user.Username,
		PhotoURL: user.PhotoURL,
	}
	if owner {
		out.Email = user.Email
	}
	return out
}

type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetProfile(ctx context.Context, viewerID, userID string) (*Profile, error)
	ListUserPosts(ctx context.Context, userID string) ([]*models.Post, error)
	UpdateProfile(ctx context.Context, editorID, userID string, form validation.ProfileForm, icon *ImageUpload) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	storage  storage.Storage
	events   Publisher
	cfg      *config.Config
	logger   *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	store storage.Storage,
	events Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		storage:  store,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *userService) GetProfile(ctx context.Context, viewerID, userID string) (*Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.ListUserPosts(ctx, userID)
	if err != nil {
		return nil, err
	}

	owner := viewerID != "" && viewerID == userID

	return &Profile{
		User:  profileUser(user, owner),
		Posts: joinAuthors(posts, []*models.User{user}, s.cfg.DisplayLocation),
		Owner: owner,
	}, nil
}

func (s *userService) ListUserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении постов пользователя: %w", err)
	}
	return posts, nil
}

// UpdateProfile renames the user and optionally replaces the icon. The new
// icon is stored before the profile is updated; the old one is then
// removed on a best-effort basis.
func (s *userService) UpdateProfile(ctx context.Context, editorID, userID string, form validation.ProfileForm, icon *ImageUpload) (*models.User, error) {
	if editorID == "" {
		return nil, ErrUnauthorized
	}
	if editorID != userID {
		return nil, ErrForbidden
	}
	if err := validationError(validation.Validate(form)); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousIcon := user.PhotoURL
	if icon != nil {
		contentType, err := ValidateImage(icon.File, icon.Size, s.cfg.Upload.MaxIconSize)
		if err != nil {
			return nil, err
		}

		_, iconURL, err := s.storage.UploadImage(ctx, storage.FolderIcons, icon.FileName, icon.File, icon.Size, contentType)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки иконки: %w", err)
		}
		user.PhotoURL = iconURL
	}
	user.Username = form.Username

	if err := s.userRepo.UpdateProfile(ctx, user.UserID, user.Username, user.PhotoURL); err != nil {
		if user.PhotoURL != previousIcon {
			s.deleteIcon(ctx, user.PhotoURL)
		}
		return nil, err
	}

	if user.PhotoURL != previousIcon {
		s.deleteIcon(ctx, previousIcon)
	}

	s.events.Publish(realtime.TopicUsers, realtime.KindUpdated, user.UserID)

	return user, nil
}

// deleteIcon skips icons the bucket does not own, such as provider avatars.
func (s *userService) deleteIcon(ctx context.Context, iconURL string) {
	if iconURL == "" {
		return
	}
	err := s.storage.DeleteImage(ctx, iconURL)
	if errors.Is(err, storage.ErrForeignURL) {
		return
	}
	if err != nil {
		s.logger.Warn("failed to delete previous icon", zap.String("url", iconURL), zap.Error(err))
	}
}
