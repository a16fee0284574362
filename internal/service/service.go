package service

import (
	"go.uber.org/zap"
	"sharefolio/internal/catalog"
	"sharefolio/internal/config"
	"sharefolio/internal/repository"
	"sharefolio/internal/storage"
)

// Publisher receives a notification after every successful write.
type Publisher interface {
	Publish(topic, kind, id string)
}

type Service struct {
	Auth    AuthService
	Feed    FeedService
	Post    PostService
	Comment CommentService
	User    UserService
	Tables  TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, store storage.Storage, events Publisher, logger *zap.Logger) *Service {
	cat := catalog.Default()

	return &Service{
		Auth:    NewAuthService(rep.User, NewFederatedVerifier(cfg.Federated), events, cfg, logger),
		Feed:    NewFeedService(rep.Post, rep.User, cfg),
		Post:    NewPostService(rep.Post, rep.User, rep.Comment, store, events, cat, cfg, logger),
		Comment: NewCommentService(rep.Comment, rep.Post, rep.User, events, cfg),
		User:    NewUserService(rep.User, rep.Post, store, events, cfg, logger),
		Tables:  NewTablesService(rep.Tables),
	}
}
