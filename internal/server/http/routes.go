package http

import (
	"net/http"

	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// Route is one entry of the API surface. Auth routes run behind the
// access guard; a non-empty Roles further restricts who may call them.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	Auth    bool
	Roles   []models.Role
}

var adminOnly = []models.Role{models.RoleAdministrator}

// Routes lists every endpoint. More specific paths precede the
// parameterised ones they would otherwise collide with.
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/auth/register", Handler: h.register},
		{Method: http.MethodPost, Path: "/auth/login", Handler: h.login},
		{Method: http.MethodPost, Path: "/auth/refresh", Handler: h.refresh},
		{Method: http.MethodPost, Path: "/auth/logout", Handler: h.logout, Auth: true},

		{Method: http.MethodGet, Path: "/account", Handler: h.getAccount, Auth: true},
		{Method: http.MethodPut, Path: "/account", Handler: h.updateAccount, Auth: true},
		{Method: http.MethodPatch, Path: "/account/password", Handler: h.changePassword, Auth: true},
		{Method: http.MethodPost, Path: "/account/password/reset/request", Handler: h.requestPasswordReset},
		{Method: http.MethodPost, Path: "/account/password/reset", Handler: h.performPasswordReset},

		{Method: http.MethodGet, Path: "/users", Handler: h.listUsers, Auth: true, Roles: adminOnly},
		{Method: http.MethodPost, Path: "/users", Handler: h.createUser, Auth: true, Roles: adminOnly},
		{Method: http.MethodPut, Path: "/users/password/reset/{id}", Handler: h.resetUserPassword, Auth: true, Roles: adminOnly},
		{Method: http.MethodGet, Path: "/users/{id}", Handler: h.getUser, Auth: true, Roles: adminOnly},
		{Method: http.MethodPut, Path: "/users/{id}", Handler: h.updateUser, Auth: true, Roles: adminOnly},
		{Method: http.MethodDelete, Path: "/users/{id}", Handler: h.deleteUser, Auth: true, Roles: adminOnly},

		{Method: http.MethodGet, Path: "/pages/preview", Handler: h.previewPages, Auth: true},
		{Method: http.MethodGet, Path: "/pages/preview/{id}", Handler: h.previewPage, Auth: true},
		{Method: http.MethodPatch, Path: "/pages/publishedAt/{id}", Handler: h.togglePublished, Auth: true},
		{Method: http.MethodGet, Path: "/pages", Handler: h.listPages},
		{Method: http.MethodGet, Path: "/pages/{id}", Handler: h.getPage},
		{Method: http.MethodPost, Path: "/pages", Handler: h.createPage, Auth: true},
		{Method: http.MethodPut, Path: "/pages/{id}", Handler: h.updatePage, Auth: true},
		{Method: http.MethodDelete, Path: "/pages/{id}", Handler: h.deletePage, Auth: true},

		{Method: http.MethodGet, Path: "/categories/children/{id}", Handler: h.categoryChildren, Auth: true},
		{Method: http.MethodGet, Path: "/categories", Handler: h.listCategories},
		{Method: http.MethodGet, Path: "/categories/{id}", Handler: h.getCategory},
		{Method: http.MethodPost, Path: "/categories", Handler: h.createCategory, Auth: true},
		{Method: http.MethodPut, Path: "/categories/{id}", Handler: h.updateCategory, Auth: true},
		{Method: http.MethodDelete, Path: "/categories/{id}", Handler: h.deleteCategory, Auth: true},

		{Method: http.MethodGet, Path: "/files/{year:[0-9]{4}}/{month:[0-9]{1,2}}/{day:[0-9]{1,2}}/{fileName}", Handler: h.downloadFile},
		{Method: http.MethodGet, Path: "/files", Handler: h.listFiles, Auth: true},
		{Method: http.MethodGet, Path: "/files/{id}", Handler: h.getFile, Auth: true},
		{Method: http.MethodPost, Path: "/files", Handler: h.uploadFile, Auth: true},
		{Method: http.MethodPut, Path: "/files/{id}", Handler: h.updateFile, Auth: true},
		{Method: http.MethodDelete, Path: "/files/{id}", Handler: h.deleteFile, Auth: true},

		{Method: http.MethodGet, Path: "/settings", Handler: h.listSettings, Auth: true},
		{Method: http.MethodPost, Path: "/settings", Handler: h.updateSettings, Auth: true, Roles: adminOnly},
		{Method: http.MethodGet, Path: "/settings/name/{name}", Handler: h.getSettingByName, Auth: true},
		{Method: http.MethodGet, Path: "/settings/{id}", Handler: h.getSetting, Auth: true},
	}
}
