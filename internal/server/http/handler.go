// Package http exposes the CMS over a JSON REST API. Routes are declared
// in a static table; each entry states whether it needs an authenticated
// principal and which roles may call it.
package http

import (
	"context"

	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/auth"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/services"
	"github.com/go-playground/validator/v10"
)

type Authenticator interface {
	Authenticate(ctx context.Context, header string, roles []models.Role) (*models.User, error)
}

type AuthService interface {
	LoginWithPassword(ctx context.Context, email, password string) (*auth.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.AuthResult, error)
	Logout(ctx context.Context, user *models.User) error
}

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id, name, email string, role models.Role) (*models.User, error)
	UpdateAccount(ctx context.Context, user *models.User, name, email string) (*models.User, error)
	ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error
	Delete(ctx context.Context, id string) (*models.User, error)
	ResetPassword(ctx context.Context, id string) error
}

type PasswordService interface {
	RequestReset(ctx context.Context, email string) error
	PerformReset(ctx context.Context, capsule string) error
}

type PageService interface {
	Create(ctx context.Context, author *models.User, in services.PageInput) (*models.Page, error)
	Update(ctx context.Context, id string, in services.PageInput) (*models.Page, error)
	Delete(ctx context.Context, id string) (*models.Page, error)
	Get(ctx context.Context, id string, publishedOnly bool) (*models.Page, error)
	List(ctx context.Context, opts models.ListOptions, publishedOnly bool) (*models.Paginated[*models.Page], error)
	TogglePublished(ctx context.Context, id string) (*models.Page, error)
}

type CategoryService interface {
	Create(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, in services.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) (*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context, opts models.ListOptions) (*models.Paginated[*models.Category], error)
	Children(ctx context.Context, id string, opts models.ListOptions) (*models.Paginated[*models.Category], error)
}

type FileService interface {
	Upload(ctx context.Context, up services.Upload) (*models.File, error)
	Get(ctx context.Context, id string) (*models.File, error)
	UpdateTitle(ctx context.Context, id, title string) (*models.File, error)
	Delete(ctx context.Context, id string) (*models.File, error)
	List(ctx context.Context, opts models.ListOptions) (*models.Paginated[*models.File], error)
	DownloadURL(ctx context.Context, path string) (string, error)
}

type SettingService interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Get(ctx context.Context, id string) (*models.Setting, error)
	GetSettingByName(ctx context.Context, name string) (*models.Setting, error)
	Update(ctx context.Context, values map[string]*string) ([]*models.Setting, error)
}

// Services bundles the business logic the handlers delegate to.
type Services struct {
	Auth       AuthService
	Users      UserService
	Passwords  PasswordService
	Pages      PageService
	Categories CategoryService
	Files      FileService
	Settings   SettingService
}

type Handler struct {
	svc           Services
	log           logging.Logger
	validator     *validator.Validate
	maxUploadSize int64
}

func NewHandler(svc Services, maxUploadSize int64, log logging.Logger) *Handler {
	return &Handler{
		svc:           svc,
		log:           log.With("component", "http"),
		validator:     newValidator(),
		maxUploadSize: maxUploadSize,
	}
}
