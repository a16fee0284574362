package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"sharefolio/internal/middleware"
	"sharefolio/internal/repository"
	"sharefolio/internal/service"
	"sharefolio/internal/state"
)

const retryMessage = "Не удалось выполнить запрос. Попробуйте ещё раз."

// ErrorResponse - стандартный ответ с ошибкой.
// Fields holds inline messages per form field; Alert asks the client to
// show a blocking dialog.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Alert  bool              `json:"alert"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeSuccess(w, ErrorResponse{Error: message}, statusCode)
}

func writeAlert(w http.ResponseWriter, message string, statusCode int) {
	writeSuccess(w, ErrorResponse{Error: message, Alert: true}, statusCode)
}

func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// handleError maps service errors to responses. Unclassified errors are
// logged with the request id and answered with a generic retry alert.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		fileErr       *service.FileError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		writeSuccess(w, ErrorResponse{
			Error:  "Проверьте правильность заполнения формы",
			Fields: validationErr.Fields,
		}, http.StatusUnprocessableEntity)
	case errors.As(err, &fileErr):
		writeAlert(w, fileErr.Message, http.StatusBadRequest)
	case errors.As(err, &maxBytesErr):
		writeAlert(w, "Размер запроса превышает "+humanize.IBytes(uint64(maxBytesErr.Limit)), http.StatusRequestEntityTooLarge)
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, "Требуется авторизация", http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, service.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, "Недействительный токен", http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, "Доступ запрещен", http.StatusForbidden)
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, service.ErrEmailTaken.Error(), http.StatusConflict)
	case errors.Is(err, state.ErrNoEditedPost):
		writeError(w, state.ErrNoEditedPost.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrFederatedDisabled):
		writeError(w, service.ErrFederatedDisabled.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, "Не найдено", http.StatusNotFound)
	default:
		h.Logger.Error("request failed",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeAlert(w, retryMessage, http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
