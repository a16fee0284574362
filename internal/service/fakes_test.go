package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sharefolio/internal/catalog"
	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/repository"
	"sharefolio/internal/validation"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:         "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		Federated:            config.Federated{Issuer: "https://issuer.test", Secret: "federated-secret"},
		Guest:                config.Guest{Email: "guest@test.com", Password: "guestuser"},
		Upload: config.Upload{
			MaxPostImageSize: 3 * 1024 * 1024,
			MaxIconSize:      5 * 1024 * 1024,
			MaxRequestSize:   10 * 1024 * 1024,
		},
		DisplayLocation: time.UTC,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func pngUpload(t *testing.T, name string) *ImageUpload {
	data := pngBytes(t)
	return &ImageUpload{FileName: name, File: bytes.NewReader(data), Size: int64(len(data))}
}

// callLog records the order of side effects across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeStorage struct {
	log        *callLog
	n          int
	uploads    []string
	deleted    []string
	failUpload error
	failDelete error
}

func (s *fakeStorage) UploadImage(_ context.Context, folder, fileName string, file io.Reader, size int64, _ string) (string, string, error) {
	s.log.add("upload " + fileName)
	if s.failUpload != nil {
		return "", "", s.failUpload
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", "", err
	}
	s.n++
	objectName := fmt.Sprintf("%s/token%d_%s", folder, s.n, fileName)
	s.uploads = append(s.uploads, objectName)
	return objectName, s.ImageURL(objectName), nil
}

func (s *fakeStorage) DeleteImage(_ context.Context, imageURL string) error {
	s.log.add("delete " + imageURL)
	s.deleted = append(s.deleted, imageURL)
	return s.failDelete
}

func (s *fakeStorage) ImageURL(objectName string) string {
	return "http://storage.test/sharefolio/" + objectName
}

type fakePostRepo struct {
	mu         sync.Mutex
	log        *callLog
	posts      map[string]*models.Post
	n          int
	failCreate error
	failUpdate error
}

func newFakePostRepo(log *callLog) *fakePostRepo {
	return &fakePostRepo{log: log, posts: make(map[string]*models.Post)}
}

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.add("create")
	if r.failCreate != nil {
		return r.failCreate
	}
	r.n++
	post.PostID = fmt.Sprintf("post-%d", r.n)
	post.CreatedAt = baseTime.Add(time.Duration(r.n) * time.Minute)
	post.UpdatedAt = post.CreatedAt
	stored := *post
	r.posts[post.PostID] = &stored
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, postID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("пост %s: %w", postID, repository.ErrNotFound)
	}
	out := *p
	return &out, nil
}

func (r *fakePostRepo) ListLatest(_ context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(*models.Post) bool { return true }), nil
}

func (r *fakePostRepo) ListByAuthor(_ context.Context, authorID string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) sorted(keep func(*models.Post) bool) []*models.Post {
	var out []*models.Post
	for _, p := range r.posts {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakePostRepo) Update(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.add("update")
	if r.failUpdate != nil {
		return r.failUpdate
	}
	stored, ok := r.posts[post.PostID]
	if !ok || stored.AuthorID != post.AuthorID {
		return repository.ErrNotFound
	}
	cp := *post
	r.posts[post.PostID] = &cp
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.add("delete post")
	if _, ok := r.posts[postID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, postID)
	return nil
}

func (r *fakePostRepo) put(post models.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.PostID] = &post
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	passwords map[string]string
	refresh   map[string]string
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:     make(map[string]*models.User),
		passwords: make(map[string]string),
		refresh:   make(map[string]string),
	}
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Provider == models.ProviderPassword && u.Email == user.Email {
			return repository.ErrAlreadyExists
		}
	}
	user.UserID = fmt.Sprintf("user-%d", len(r.users)+1)
	user.Provider = models.ProviderPassword
	cp := *user
	r.users[user.UserID] = &cp
	r.passwords[user.Email] = password
	return nil
}

func (r *fakeUserRepo) UpsertFederatedUser(_ context.Context, user *models.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.UserID]; ok {
		return false, nil
	}
	cp := *user
	cp.Provider = models.ProviderFederated
	r.users[user.UserID] = &cp
	return true, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.Provider == models.ProviderPassword {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ListUsers(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID, username, photoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Username = username
	u.PhotoURL = photoURL
	return nil
}

func (r *fakeUserRepo) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	u, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.passwords[email] != password {
		return nil, repository.ErrInvalidPassword
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateRefreshToken(_ context.Context, userID, refreshToken string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh[refreshToken] = userID
	return nil
}

func (r *fakeUserRepo) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	r.mu.Lock()
	userID, ok := r.refresh[refreshToken]
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetUserByID(ctx, userID)
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string][]*models.Comment
	n        int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string][]*models.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	comment.CommentID = fmt.Sprintf("comment-%d", r.n)
	comment.CreatedAt = baseTime.Add(time.Duration(r.n) * time.Second)
	cp := *comment
	r.comments[comment.PostID] = append([]*models.Comment{&cp}, r.comments[comment.PostID]...)
	return nil
}

func (r *fakeCommentRepo) ListByPostID(_ context.Context, postID string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Comment(nil), r.comments[postID]...), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(topic, kind, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, topic+" "+kind+" "+id)
}

func (p *recordingPublisher) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type postFixture struct {
	log      *callLog
	storage  *fakeStorage
	posts    *fakePostRepo
	users    *fakeUserRepo
	comments *fakeCommentRepo
	events   *recordingPublisher
	service  PostService
	feed     FeedService
}

func newPostFixture(users ...*models.User) *postFixture {
	log := &callLog{}
	f := &postFixture{
		log:      log,
		storage:  &fakeStorage{log: log},
		posts:    newFakePostRepo(log),
		users:    newFakeUserRepo(users...),
		comments: newFakeCommentRepo(),
		events:   &recordingPublisher{},
	}
	cfg := testConfig()
	f.service = NewPostService(f.posts, f.users, f.comments, f.storage, f.events, catalog.Default(), cfg, zap.NewNop())
	f.feed = NewFeedService(f.posts, f.users, cfg)
	return f
}

func validPostForm() validation.PostForm {
	return validation.PostForm{
		AppName:      "ShareFolio",
		Title:        "Портфолио",
		Description:  "Сервис для публикации проектов",
		Level:        models.LevelIntermediate,
		Technologies: []string{"Go", "PostgreSQL"},
		AppURL:       "https://sharefolio.example.com",
		GithubURL:    "https://github.com/example/sharefolio",
	}
}
