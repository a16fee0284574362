package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/repository"
)

type FeedService interface {
	Feed(ctx context.Context) ([]*models.FeedItem, error)
}

type feedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository, cfg *config.Config) FeedService {
	return &feedService{
		postRepo: postRepo,
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Feed lists every post newest first with its author attached. Posts whose
// author record is missing are kept with a nil author.
func (s *feedService) Feed(ctx context.Context) ([]*models.FeedItem, error) {
	var (
		posts []*models.Post
		users []*models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.postRepo.ListLatest(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.userRepo.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка загрузки ленты: %w", err)
	}

	return joinAuthors(posts, users, s.cfg.DisplayLocation), nil
}

func joinAuthors(posts []*models.Post, users []*models.User, loc *time.Location) []*models.FeedItem {
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	items := make([]*models.FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, &models.FeedItem{
			Post:        p,
			Author:      byID[p.AuthorID].Summary(),
			DisplayTime: models.DisplayTime(p.CreatedAt, loc),
		})
	}
	return items
}
