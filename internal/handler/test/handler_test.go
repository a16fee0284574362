package test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sharefolio/internal/config"
	handlers "sharefolio/internal/handler"
	"sharefolio/internal/middleware"
	"sharefolio/internal/realtime"
	"sharefolio/internal/service"
	"sharefolio/internal/state"
)

const testToken = "valid-token"

type fixture struct {
	auth     *MockAuthService
	feed     *MockFeedService
	posts    *MockPostService
	comments *MockCommentService
	users    *MockUserService
	tables   *MockTablesService
	store    *state.Store
	hub      *realtime.Hub
	health   *stubHealth
	handlers *handlers.Handlers
	server   http.Handler
	cookies  []*http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, state.NewStore(nil, zap.NewNop()))
}

func newFixtureWithStore(t *testing.T, store *state.Store) *fixture {
	t.Helper()

	f := &fixture{
		auth:     new(MockAuthService),
		feed:     new(MockFeedService),
		posts:    new(MockPostService),
		comments: new(MockCommentService),
		users:    new(MockUserService),
		tables:   new(MockTablesService),
		store:    store,
		hub:      realtime.NewHub(zap.NewNop()),
		health:   &stubHealth{},
	}
	t.Cleanup(f.hub.Close)

	f.auth.On("UserIDFromToken", testToken).Return("u1", nil).Maybe()

	cfg := &config.Config{
		CORSOrigin: "*",
		Upload: config.Upload{
			MaxPostImageSize: 3 * 1024 * 1024,
			MaxIconSize:      5 * 1024 * 1024,
			MaxRequestSize:   10 * 1024 * 1024,
		},
	}

	services := &service.Service{
		Auth:    f.auth,
		Feed:    f.feed,
		Post:    f.posts,
		Comment: f.comments,
		User:    f.users,
		Tables:  f.tables,
	}

	f.handlers = handlers.NewHandlers(services, f.store, f.hub, f.health, cfg, zap.NewNop())
	f.server = middleware.Chain(
		handlers.NewRouter(f.handlers, nil),
		middleware.Session(false),
		middleware.AuthMiddleware(f.auth, zap.NewNop()),
	)

	return f
}

// do sends req through the full stack keeping the session cookie between calls.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)
	if cookies := rr.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return rr
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authorized(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

type filePart struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string][]string, file *filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(name, v))
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(file.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(strings.NewReader(rr.Body.String())).Decode(dst))
}

var anyCtx = mock.Anything
