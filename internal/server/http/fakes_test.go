package http

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/auth"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
	someID     = "6f1c2a4e-8a4b-4d8e-9b3c-1a2b3c4d5e6f"
)

var (
	regularUser = &models.User{ID: "11111111-1111-1111-1111-111111111111", Name: "Ula", Email: "ula@example.com", Role: models.RoleUser}
	adminUser   = &models.User{ID: "22222222-2222-2222-2222-222222222222", Name: "Adam", Email: "adam@example.com", Role: models.RoleAdministrator}
)

// fakeGuard accepts two fixed bearer tokens.
type fakeGuard struct{}

func (fakeGuard) Authenticate(_ context.Context, header string, roles []models.Role) (*models.User, error) {
	var u *models.User
	switch auth.StripBearer(header) {
	case userToken:
		u = regularUser
	case adminToken:
		u = adminUser
	default:
		return nil, common.ErrIncorrectAuthorizationToken
	}
	if !u.HasRole(roles) {
		return nil, common.ErrForbidden
	}
	return u, nil
}

type fakeAuth struct {
	AuthService
	loginErr  error
	loggedOut *models.User
}

func (f *fakeAuth) LoginWithPassword(_ context.Context, email, _ string) (*auth.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &auth.AuthResult{Token: "t-" + email, TokenExpiresIn: "15m", RefreshToken: "r", RefreshTokenExpiresIn: "30m"}, nil
}

func (f *fakeAuth) Logout(_ context.Context, u *models.User) error {
	f.loggedOut = u
	return nil
}

type fakeUsers struct {
	UserService
	err error
}

func (f *fakeUsers) Register(_ context.Context, name, email, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: someID, Name: name, Email: email, Password: "hash-of-" + password, Role: models.RoleUser}, nil
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.User{regularUser, adminUser}, nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: id}, nil
}

type fakePasswords struct {
	PasswordService
	capsule string
	err     error
}

func (f *fakePasswords) PerformReset(_ context.Context, capsule string) error {
	f.capsule = capsule
	return f.err
}

type fakePages struct {
	PageService
	publishedOnly *bool
	opts          models.ListOptions
	author        *models.User
	input         services.PageInput
	err           error
	panicOnGet    bool
}

func (f *fakePages) List(_ context.Context, opts models.ListOptions, publishedOnly bool) (*models.Paginated[*models.Page], error) {
	f.opts, f.publishedOnly = opts, &publishedOnly
	if f.err != nil {
		return nil, f.err
	}
	return models.NewPaginated[*models.Page](opts, nil, 0, 0), nil
}

func (f *fakePages) Get(_ context.Context, id string, publishedOnly bool) (*models.Page, error) {
	if f.panicOnGet {
		panic("boom")
	}
	f.publishedOnly = &publishedOnly
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{ID: id}, nil
}

func (f *fakePages) Create(_ context.Context, author *models.User, in services.PageInput) (*models.Page, error) {
	f.author, f.input = author, in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{ID: someID, Name: in.Name, Slug: "generated"}, nil
}

type fakeFiles struct {
	FileService
	upload services.Upload
	body   string
	path   string
	err    error
}

func (f *fakeFiles) Upload(_ context.Context, up services.Upload) (*models.File, error) {
	b, _ := io.ReadAll(up.Body)
	f.upload, f.body = up, string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &models.File{ID: someID, Name: up.Name, Title: up.Title, Mime: up.Mime, Path: "files/x"}, nil
}

func (f *fakeFiles) DownloadURL(_ context.Context, path string) (string, error) {
	f.path = path
	if f.err != nil {
		return "", f.err
	}
	return "http://minio/" + path + "?sig=abc", nil
}

type fakeSettings struct {
	SettingService
	values map[string]*string
}

func (f *fakeSettings) Update(_ context.Context, values map[string]*string) ([]*models.Setting, error) {
	f.values = values
	return []*models.Setting{{Name: models.SettingName}}, nil
}

type testEnv struct {
	router    *mux.Router
	auth      *fakeAuth
	users     *fakeUsers
	passwords *fakePasswords
	pages     *fakePages
	files     *fakeFiles
	settings  *fakeSettings
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		auth:      &fakeAuth{},
		users:     &fakeUsers{},
		passwords: &fakePasswords{},
		pages:     &fakePages{},
		files:     &fakeFiles{},
		settings:  &fakeSettings{},
	}
	h := NewHandler(Services{
		Auth:      env.auth,
		Users:     env.users,
		Passwords: env.passwords,
		Pages:     env.pages,
		Files:     env.files,
		Settings:  env.settings,
	}, 1<<20, logging.NewNop())
	env.router = NewRouter(h, fakeGuard{}, prometheus.NewRegistry())
	return env
}

func (e *testEnv) do(method, target, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

