package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"sharefolio/internal/models"
	"sharefolio/internal/service"
	"sharefolio/internal/validation"
)

type CommentsResponse struct {
	Comments []models.CommentView `json:"comments"`
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.CommentService.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, CommentsResponse{Comments: comments}, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	var form validation.CommentForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	comment, err := h.CommentService.AddComment(r.Context(), service.UserIDFromContext(r.Context()), mux.Vars(r)["id"], form)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, comment, http.StatusCreated)
}
