package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"sharefolio/internal/models"
	"sharefolio/internal/service"
	"sharefolio/internal/state"
	"sharefolio/internal/validation"
)

type UserResponse struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
	Redirect     string       `json:"redirect"`
}

type FederatedRequest struct {
	IDToken string `json:"idToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		UID:      user.UserID,
		Username: user.Username,
		Email:    user.Email,
		PhotoURL: user.PhotoURL,
	}
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var form validation.SignUpForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.SignUp(r.Context(), form)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// a new account lands on its own page to fill in the profile
	h.signedIn(w, r, result, "/mypage/"+result.User.UserID)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.Login(r.Context(), form)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.signedIn(w, r, result, "/")
}

func (h *Handlers) GuestLogin(w http.ResponseWriter, r *http.Request) {
	result, err := h.AuthService.GuestLogin(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.signedIn(w, r, result, "/")
}

func (h *Handlers) FederatedLogin(w http.ResponseWriter, r *http.Request) {
	var req FederatedRequest
	if err := decodeJSON(r, &req); err != nil || req.IDToken == "" {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.FederatedSignIn(r.Context(), req.IDToken)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.signedIn(w, r, result, "/")
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         userResponse(result.User),
	}, http.StatusOK)
}

// Logout clears the signed-in user slot of the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := service.SessionIDFromContext(r.Context())
	if err := h.State.ClearCurrentUser(r.Context(), sessionID); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Вы вышли из системы", Redirect: "/login"}, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := service.UserIDFromContext(r.Context())
	if userID == "" {
		h.handleError(w, r, service.ErrUnauthorized)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, userResponse(user), http.StatusOK)
}

func (h *Handlers) signedIn(w http.ResponseWriter, r *http.Request, result *service.AuthResult, redirect string) {
	h.rememberUser(r, result.User)

	writeSuccess(w, AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         userResponse(result.User),
		Redirect:     redirect,
	}, http.StatusOK)
}

// rememberUser fills the current-user slot. The sign-in itself has already
// succeeded, so a failed write is only logged.
func (h *Handlers) rememberUser(r *http.Request, user *models.User) {
	sessionID := service.SessionIDFromContext(r.Context())
	err := h.State.SetCurrentUser(r.Context(), sessionID, state.CurrentUser{
		UID:         user.UserID,
		DisplayName: user.Username,
		PhotoURL:    user.PhotoURL,
	})
	if err != nil {
		h.Logger.Warn("failed to store current user", zap.String("session", sessionID), zap.Error(err))
	}
}
