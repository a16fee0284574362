package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"sharefolio/internal/models"
	"sharefolio/internal/service"
	"sharefolio/internal/validation"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// is spooled to temporary files.
const multipartMemory = 4 << 20

type EditPostResponse struct {
	Post    *models.Post    `json:"post"`
	Catalog CatalogResponse `json:"catalog"`
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := service.UserIDFromContext(r.Context())
	if userID == "" {
		h.handleError(w, r, service.ErrUnauthorized)
		return
	}

	image, cleanup, err := h.parseMultipart(w, r, "image")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer cleanup()

	post, err := h.PostService.CreatePost(r.Context(), userID, postFormFromRequest(r), image)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, post, http.StatusCreated)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	detail, err := h.PostService.GetPostDetail(r.Context(), service.UserIDFromContext(r.Context()), postID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, detail, http.StatusOK)
}

// GetEditPost returns the post for the edit form and makes it the
// session's edited-post snapshot.
func (h *Handlers) GetEditPost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	post, err := h.PostService.GetEditablePost(r.Context(), service.UserIDFromContext(r.Context()), postID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.State.SetEditedPost(r.Context(), service.SessionIDFromContext(r.Context()), *post); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, EditPostResponse{Post: post, Catalog: h.catalogResponse()}, http.StatusOK)
}

// UpdatePost overwrites the post. When the request carries no technologies
// the tags of the session's edited-post snapshot are used.
func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	userID := service.UserIDFromContext(r.Context())
	sessionID := service.SessionIDFromContext(r.Context())

	if userID == "" {
		h.handleError(w, r, service.ErrUnauthorized)
		return
	}

	image, cleanup, err := h.parseMultipart(w, r, "image")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer cleanup()

	form := postFormFromRequest(r)
	if _, sent := r.MultipartForm.Value["technologies"]; !sent {
		edited, err := h.State.EditedPost(r.Context(), sessionID)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if edited != nil && edited.PostID == postID {
			form.Technologies = edited.Technologies
		}
	}

	post, err := h.PostService.UpdatePost(r.Context(), userID, postID, form, image)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.State.SetEditedPost(r.Context(), sessionID, *post); err != nil {
		h.Logger.Warn("failed to refresh edited post", zap.String("session", sessionID), zap.Error(err))
	}

	writeSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	err := h.PostService.DeletePost(r.Context(), service.UserIDFromContext(r.Context()), postID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Пост удален", Redirect: "/"}, http.StatusOK)
}

// parseMultipart reads a multipart body bounded by the configured request
// size and returns the optional file sent under field.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request, field string) (*service.ImageUpload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.Upload.MaxRequestSize)
	noop := func() {}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, noop, maxBytesErr
		}
		return nil, noop, &service.FileError{Message: "Неверный формат формы"}
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return nil, noop, err
	}

	return &service.ImageUpload{
			FileName: header.Filename,
			File:     file,
			Size:     header.Size,
		}, func() {
			_ = file.Close()
			cleanup()
		}, nil
}

func postFormFromRequest(r *http.Request) validation.PostForm {
	return validation.PostForm{
		AppName:      r.FormValue("appName"),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Level:        models.Level(r.FormValue("level")),
		Technologies: r.MultipartForm.Value["technologies"],
		AppURL:       r.FormValue("appUrl"),
		GithubURL:    r.FormValue("githubUrl"),
	}
}
