package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"sharefolio/internal/service"
	"sharefolio/internal/validation"
)

func (h *Handlers) GetMyPage(w http.ResponseWriter, r *http.Request) {
	profile, err := h.UserService.GetProfile(r.Context(), service.UserIDFromContext(r.Context()), mux.Vars(r)["uid"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, profile, http.StatusOK)
}

// UpdateMyPage saves the profile form and refreshes the session's
// current-user slot with the new name and icon.
func (h *Handlers) UpdateMyPage(w http.ResponseWriter, r *http.Request) {
	userID := service.UserIDFromContext(r.Context())
	if userID == "" {
		h.handleError(w, r, service.ErrUnauthorized)
		return
	}

	icon, cleanup, err := h.parseMultipart(w, r, "icon")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer cleanup()

	form := validation.ProfileForm{Username: r.FormValue("username")}

	user, err := h.UserService.UpdateProfile(r.Context(), userID, mux.Vars(r)["uid"], form, icon)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.rememberUser(r, user)

	writeSuccess(w, userResponse(user), http.StatusOK)
}
