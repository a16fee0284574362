package test

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"sharefolio/internal/models"
	"sharefolio/internal/service"
	"sharefolio/internal/validation"
)

type MockAuthService struct {
	mock.Mock
}

func authResult(args mock.Arguments) (*service.AuthResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) SignUp(ctx context.Context, form validation.SignUpForm) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, form))
}

func (m *MockAuthService) Login(ctx context.Context, form validation.LoginForm) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, form))
}

func (m *MockAuthService) GuestLogin(ctx context.Context) (*service.AuthResult, error) {
	return authResult(m.Called(ctx))
}

func (m *MockAuthService) FederatedSignIn(ctx context.Context, idToken string) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, idToken))
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, refreshToken))
}

func (m *MockAuthService) ValidateToken(tokenString string) (*jwt.Token, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Token), args.Error(1)
}

func (m *MockAuthService) UserIDFromToken(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) Feed(ctx context.Context) ([]*models.FeedItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FeedItem), args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func postResult(args mock.Arguments) (*models.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) CreatePost(ctx context.Context, authorID string, form validation.PostForm, image *service.ImageUpload) (*models.Post, error) {
	return postResult(m.Called(ctx, authorID, form, image))
}

func (m *MockPostService) UpdatePost(ctx context.Context, editorID, postID string, form validation.PostForm, image *service.ImageUpload) (*models.Post, error) {
	return postResult(m.Called(ctx, editorID, postID, form, image))
}

func (m *MockPostService) DeletePost(ctx context.Context, editorID, postID string) error {
	return m.Called(ctx, editorID, postID).Error(0)
}

func (m *MockPostService) GetPostDetail(ctx context.Context, viewerID, postID string) (*models.PostDetail, error) {
	args := m.Called(ctx, viewerID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostDetail), args.Error(1)
}

func (m *MockPostService) GetEditablePost(ctx context.Context, editorID, postID string) (*models.Post, error) {
	return postResult(m.Called(ctx, editorID, postID))
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) AddComment(ctx context.Context, authorID, postID string, form validation.CommentForm) (*models.CommentView, error) {
	args := m.Called(ctx, authorID, postID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommentView), args.Error(1)
}

func (m *MockCommentService) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommentView), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, viewerID, userID string) (*service.Profile, error) {
	args := m.Called(ctx, viewerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Profile), args.Error(1)
}

func (m *MockUserService) ListUserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, editorID, userID string, form validation.ProfileForm, icon *service.ImageUpload) (*models.User, error) {
	args := m.Called(ctx, editorID, userID, form, icon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockTablesService struct {
	mock.Mock
}

func (m *MockTablesService) GetTables(ctx context.Context) (*service.TablesReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TablesReport), args.Error(1)
}

type stubHealth struct {
	err error
}

func (s stubHealth) HealthCheck() error {
	return s.err
}

// failingPersister loads nothing and rejects every write.
type failingPersister struct{}

func (failingPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	return nil, nil
}

func (failingPersister) Save(ctx context.Context, sessionID string, payload []byte) error {
	return errors.New("connection refused")
}

func (failingPersister) Delete(ctx context.Context, sessionID string) error {
	return errors.New("connection refused")
}
