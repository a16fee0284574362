package test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	handlers "sharefolio/internal/handler"
	"sharefolio/internal/models"
	"sharefolio/internal/repository"
	"sharefolio/internal/service"
	"sharefolio/internal/validation"
)

func postFields() map[string][]string {
	return map[string][]string{
		"appName":      {"ShareFolio"},
		"title":        {"Портфолио"},
		"description":  {"Описание"},
		"level":        {"advanced"},
		"technologies": {"Go", "Docker"},
		"appUrl":       {"https://sharefolio.example.com"},
	}
}

func expectedForm() validation.PostForm {
	return validation.PostForm{
		AppName:      "ShareFolio",
		Title:        "Портфолио",
		Description:  "Описание",
		Level:        models.LevelAdvanced,
		Technologies: []string{"Go", "Docker"},
		AppURL:       "https://sharefolio.example.com",
	}
}

func TestCreatePostHandler(t *testing.T) {
	t.Run("created with image", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("CreatePost", anyCtx, "u1", expectedForm(), mock.MatchedBy(func(img *service.ImageUpload) bool {
			return img != nil && img.FileName == "shot.png" && img.Size == 4
		})).Return(&models.Post{PostID: "p1", AuthorID: "u1"}, nil)

		req := multipartRequest(t, http.MethodPost, "/api/posts", postFields(), &filePart{"image", "shot.png", []byte("data")})
		rr := f.do(authorized(req))

		require.Equal(t, http.StatusCreated, rr.Code)
		var post models.Post
		decodeBody(t, rr, &post)
		assert.Equal(t, "p1", post.PostID)
		f.posts.AssertExpectations(t)
	})

	t.Run("without image", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("CreatePost", anyCtx, "u1", expectedForm(), (*service.ImageUpload)(nil)).
			Return(&models.Post{PostID: "p1"}, nil)

		rr := f.do(authorized(multipartRequest(t, http.MethodPost, "/api/posts", postFields(), nil)))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)

		rr := f.do(multipartRequest(t, http.MethodPost, "/api/posts", postFields(), nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		f.posts.AssertNotCalled(t, "CreatePost")
	})

	t.Run("field errors are returned inline", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("CreatePost", anyCtx, "u1", mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Fields: map[string]string{"appName": "Не более 30 символов"}})

		rr := f.do(authorized(multipartRequest(t, http.MethodPost, "/api/posts", postFields(), nil)))

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp handlers.ErrorResponse
		decodeBody(t, rr, &resp)
		assert.Equal(t, "Не более 30 символов", resp.Fields["appName"])
		assert.False(t, resp.Alert)
	})

	t.Run("file errors raise an alert", func(t *testing.T) {
		f := newFixture(t)
		f.posts.On("CreatePost", anyCtx, "u1", mock.Anything, mock.Anything).
			Return(nil, &service.FileError{Message: "Размер файла превышает 3.0 MiB"})

		rr := f.do(authorized(multipartRequest(t, http.MethodPost, "/api/posts", postFields(), &filePart{"image", "big.png", []byte("x")})))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var resp handlers.ErrorResponse
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Alert)
		assert.Equal(t, "Размер файла превышает 3.0 MiB", resp.Error)
	})

	t.Run("not multipart", func(t *testing.T) {
		f := newFixture(t)

		rr := f.do(authorized(jsonRequest(t, http.MethodPost, "/api/posts", expectedForm())))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetPostHandler(t *testing.T) {
	f := newFixture(t)
	f.posts.On("GetPostDetail", anyCtx, "u1", "p1").
		Return(&models.PostDetail{Post: &models.Post{PostID: "p1"}, Editable: true}, nil)
	f.posts.On("GetPostDetail", anyCtx, "", "missing").
		Return(nil, repository.ErrNotFound)

	rr := f.do(authorized(jsonRequest(t, http.MethodGet, "/api/posts/p1", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	var detail models.PostDetail
	decodeBody(t, rr, &detail)
	assert.True(t, detail.Editable)

	rr = f.do(jsonRequest(t, http.MethodGet, "/api/posts/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEditPostUsesSessionTags(t *testing.T) {
	f := newFixture(t)
	existing := &models.Post{PostID: "p1", AuthorID: "u1", Technologies: []string{"Go", "Docker"}}
	f.posts.On("GetEditablePost", anyCtx, "u1", "p1").Return(existing, nil)

	rr := f.do(authorized(jsonRequest(t, http.MethodGet, "/api/posts/p1/edit", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	var edit handlers.EditPostResponse
	decodeBody(t, rr, &edit)
	assert.NotEmpty(t, edit.Catalog.Technologies)

	rr = f.do(authorized(jsonRequest(t, http.MethodPost, "/api/state/edited-post/tags", handlers.TagToggleRequest{Tag: "Docker", Checked: false})))
	require.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(authorized(jsonRequest(t, http.MethodPost, "/api/state/edited-post/tags", handlers.TagToggleRequest{Tag: "React.js", Checked: true})))
	require.Equal(t, http.StatusOK, rr.Code)

	fields := postFields()
	delete(fields, "technologies")
	form := expectedForm()
	form.Technologies = []string{"Go", "React.js"}

	f.posts.On("UpdatePost", anyCtx, "u1", "p1", form, (*service.ImageUpload)(nil)).
		Return(&models.Post{PostID: "p1", AuthorID: "u1", Technologies: form.Technologies}, nil)

	rr = f.do(authorized(multipartRequest(t, http.MethodPut, "/api/posts/p1", fields, nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	f.posts.AssertExpectations(t)
}

func TestToggleTagWithoutEditForm(t *testing.T) {
	f := newFixture(t)

	rr := f.do(jsonRequest(t, http.MethodPost, "/api/state/edited-post/tags", handlers.TagToggleRequest{Tag: "Go", Checked: true}))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestDeletePostHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantAlert  bool
	}{
		{"deleted", nil, http.StatusOK, false},
		{"not the author", service.ErrForbidden, http.StatusForbidden, false},
		{"missing", repository.ErrNotFound, http.StatusNotFound, false},
		{"backend failure", errors.New("db down"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.posts.On("DeletePost", anyCtx, "u1", "p1").Return(tt.err)

			rr := f.do(authorized(jsonRequest(t, http.MethodDelete, "/api/posts/p1", nil)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.err != nil {
				var resp handlers.ErrorResponse
				decodeBody(t, rr, &resp)
				assert.Equal(t, tt.wantAlert, resp.Alert)
			}
		})
	}
}

func TestCommentsHandler(t *testing.T) {
	f := newFixture(t)
	form := validation.CommentForm{Text: "Круто"}
	view := &models.CommentView{Comment: &models.Comment{CommentID: "c1", Text: "Круто"}}
	f.comments.On("AddComment", anyCtx, "u1", "p1", form).Return(view, nil)
	f.comments.On("ListComments", anyCtx, "p1").Return([]models.CommentView{*view}, nil)

	rr := f.do(authorized(jsonRequest(t, http.MethodPost, "/api/posts/p1/comments", form)))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(jsonRequest(t, http.MethodGet, "/api/posts/p1/comments", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.CommentsResponse
	decodeBody(t, rr, &resp)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "c1", resp.Comments[0].CommentID)
}
