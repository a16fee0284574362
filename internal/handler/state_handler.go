package handlers

import (
	"net/http"

	"sharefolio/internal/service"
)

type SelectionRequest struct {
	PostID   string `json:"postId"`
	AuthorID string `json:"authorId"`
}

type TagToggleRequest struct {
	Tag     string `json:"tag"`
	Checked bool   `json:"checked"`
}

func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.State.Snapshot(r.Context(), service.SessionIDFromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, snap, http.StatusOK)
}

// SelectPost records the post and author picked in the feed.
func (h *Handlers) SelectPost(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeJSON(r, &req); err != nil || req.PostID == "" {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	sessionID := service.SessionIDFromContext(r.Context())
	if err := h.State.SelectPost(r.Context(), sessionID, req.PostID, req.AuthorID); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "ok", Redirect: "/posts/" + req.PostID}, http.StatusOK)
}

// ToggleEditedTag applies a technology checkbox change to the post being edited.
func (h *Handlers) ToggleEditedTag(w http.ResponseWriter, r *http.Request) {
	var req TagToggleRequest
	if err := decodeJSON(r, &req); err != nil || req.Tag == "" {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	post, err := h.State.ToggleEditedTag(r.Context(), service.SessionIDFromContext(r.Context()), req.Tag, req.Checked)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, post, http.StatusOK)
}
