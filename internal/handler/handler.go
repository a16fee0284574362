package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"sharefolio/internal/catalog"
	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/realtime"
	"sharefolio/internal/service"
	"sharefolio/internal/state"
)

// StateStore is the part of state.Store the handlers use.
type StateStore interface {
	Snapshot(ctx context.Context, sessionID string) (state.Snapshot, error)
	SetCurrentUser(ctx context.Context, sessionID string, user state.CurrentUser) error
	ClearCurrentUser(ctx context.Context, sessionID string) error
	SelectPost(ctx context.Context, sessionID, postID, authorID string) error
	EditedPost(ctx context.Context, sessionID string) (*models.Post, error)
	SetEditedPost(ctx context.Context, sessionID string, post models.Post) error
	ToggleEditedTag(ctx context.Context, sessionID, tag string, checked bool) (*models.Post, error)
}

type Subscriber interface {
	Subscribe(topic string) *realtime.Subscription
}

type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	AuthService    service.AuthService
	FeedService    service.FeedService
	PostService    service.PostService
	CommentService service.CommentService
	UserService    service.UserService
	TablesService  service.TablesService
	State          StateStore
	Hub            Subscriber
	Catalog        *catalog.Catalog
	DB             HealthChecker
	Cfg            *config.Config
	Logger         *zap.Logger
	upgrader       websocket.Upgrader
}

func NewHandlers(services *service.Service, store StateStore, hub Subscriber, db HealthChecker, cfg *config.Config, logger *zap.Logger) *Handlers {
	h := &Handlers{
		AuthService:    services.Auth,
		FeedService:    services.Feed,
		PostService:    services.Post,
		CommentService: services.Comment,
		UserService:    services.User,
		TablesService:  services.Tables,
		State:          store,
		Hub:            hub,
		Catalog:        catalog.Default(),
		DB:             db,
		Cfg:            cfg,
		Logger:         logger,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

func (h *Handlers) checkOrigin(r *http.Request) bool {
	if h.Cfg.CORSOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == h.Cfg.CORSOrigin
}
