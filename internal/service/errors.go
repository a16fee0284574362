package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	ErrUnauthorized       = errors.New("требуется авторизация")
	ErrForbidden          = errors.New("недостаточно прав")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrEmailTaken         = errors.New("пользователь с таким email уже существует")
	ErrInvalidToken       = errors.New("недействительный токен")
	ErrFederatedDisabled  = errors.New("федеративный вход не настроен")
)

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "ошибка валидации: " + strings.Join(names, ", ")
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// FileError rejects an uploaded file. The operation is aborted and the
// message is shown to the user as an alert.
type FileError struct {
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

func fileTooLarge(limit int64) *FileError {
	return &FileError{Message: fmt.Sprintf("Размер файла превышает %s", humanize.IBytes(uint64(limit)))}
}

var (
	errFileEmpty    = &FileError{Message: "Файл пуст"}
	errFileNotImage = &FileError{Message: "Файл не является изображением"}
)
