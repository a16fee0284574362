// Package validation holds the form schemas and the rules they are checked with.
// Rules are declared once as struct tags; Validate turns violations into a
// field -> message map that handlers return next to the offending inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"sharefolio/internal/models"
)

// urlPattern is deliberately permissive: a scheme, "www." or "user@" prefix
// followed by a host is enough.
var urlPattern = regexp.MustCompile(`(([A-Za-z]{3,9}:(?://)?)(?:[-;:&=+$,\w]+@)?[A-Za-z0-9.-]+|(?:www.|[-;:&=+$,\w]+@)[A-Za-z0-9.-]+)((?:/[+~%/.\w_-]*)?\??(?:[-+=&;%@.\w_]*)#?(?:[\w]*))?`)

type PostForm struct {
	AppName      string       `json:"appName" validate:"required,max=30"`
	Title        string       `json:"title" validate:"required,max=60"`
	Description  string       `json:"description" validate:"required,max=1000"`
	Level        models.Level `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Technologies []string     `json:"technologies" validate:"dive,required,max=30"`
	AppURL       string       `json:"appUrl" validate:"required,urlish"`
	GithubURL    string       `json:"githubUrl" validate:"omitempty,urlish"`
}

type ProfileForm struct {
	Username string `json:"username" validate:"required,max=30"`
}

type SignUpForm struct {
	Username string `json:"username" validate:"required,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CommentForm struct {
	Text string `json:"text" validate:"required,max=1000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("urlish", func(fl validator.FieldLevel) bool {
		return IsURLish(fl.Field().String())
	})

	return v
}

// IsURLish reports whether value looks like a link.
func IsURLish(value string) bool {
	return urlPattern.MatchString(value)
}

// Validate checks form against its declared rules. It returns nil when the
// form is valid, otherwise one message per failing field.
func Validate(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return map[string]string{"form": "Неверные данные формы"}
	}

	result := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		name := fe.Field()
		if _, exists := result[name]; exists {
			continue
		}
		result[name] = message(fe)
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Обязательное поле"
	case "max":
		return fmt.Sprintf("Не более %s символов", fe.Param())
	case "min":
		return fmt.Sprintf("Не менее %s символов", fe.Param())
	case "email":
		return "Неверный формат email"
	case "urlish":
		return "Неверный формат адреса"
	case "oneof":
		return "Недопустимое значение"
	default:
		return "Неверное значение"
	}
}
