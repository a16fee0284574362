package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every route. middlewares run only for matched routes;
// metrics is served at /metrics when non-nil.
func NewRouter(h *Handlers, metrics http.Handler, middlewares ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(middlewares...)

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.TablesHandler).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)

	api.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/guest", h.GuestLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/federated", h.FederatedLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", h.RefreshToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/me", h.GetCurrentUser).Methods(http.MethodGet)

	api.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	api.HandleFunc("/state/selection", h.SelectPost).Methods(http.MethodPost)
	api.HandleFunc("/state/edited-post/tags", h.ToggleEditedTag).Methods(http.MethodPost)

	api.HandleFunc("/feed", h.GetFeed).Methods(http.MethodGet)
	api.HandleFunc("/feed/subscribe", h.FeedSubscribe).Methods(http.MethodGet)

	api.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.UpdatePost).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{id}/edit", h.GetEditPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/comments", h.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/comments", h.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comments/subscribe", h.CommentsSubscribe).Methods(http.MethodGet)

	api.HandleFunc("/mypage/{uid}", h.GetMyPage).Methods(http.MethodGet)
	api.HandleFunc("/mypage/{uid}", h.UpdateMyPage).Methods(http.MethodPut)

	return r
}
