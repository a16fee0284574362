package state

import "errors"

var ErrNoEditedPost = errors.New("нет поста в режиме редактирования")
