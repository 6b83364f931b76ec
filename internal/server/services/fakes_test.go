package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/dbx"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/pages"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeManager hands out the same in-memory repositories for the pool and
// for transactions.
type fakeManager struct {
	users      *fakeUsers
	pages      *fakePages
	categories *fakeCategories
	files      *fakeFiles
	settings   *fakeSettings
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:      &fakeUsers{byID: map[string]*models.User{}},
		pages:      &fakePages{byID: map[string]*models.Page{}, links: map[string][]string{}},
		categories: &fakeCategories{byID: map[string]*models.Category{}},
		files:      &fakeFiles{byID: map[string]*models.File{}},
		settings:   &fakeSettings{byName: map[string]*models.Setting{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository { return m.users }
func (m *fakeManager) Pages(dbx.DBTX) pages.Repository { return m.pages }
func (m *fakeManager) Categories(dbx.DBTX) categories.Repository { return m.categories }
func (m *fakeManager) Files(dbx.DBTX) files.Repository { return m.files }
func (m *fakeManager) Settings(dbx.DBTX) settings.Repository { return m.settings }

// --- users ---

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	updateErr error
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byID {
		if o.Email == u.Email {
			return nil, common.ErrCredentialsInUse
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	c := *u
	f.byID[u.ID] = &c
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.User{}
	for _, u := range f.byID {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cur, ok := f.byID[u.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Name, cur.Email, cur.Role = u.Name, u.Email, u.Role
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Password = password
	return nil
}

func (f *fakeUsers) SetToken(_ context.Context, id string, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Token = token
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

// --- pages ---

type fakePages struct {
	byID       map[string]*models.Page
	links      map[string][]string
	replaceErr error
	slugErr    error
}

func (f *fakePages) Create(_ context.Context, p *models.Page) (*models.Page, error) {
	for _, o := range f.byID {
		if o.Slug == p.Slug {
			return nil, common.ErrSlugAlreadyExists
		}
	}
	p.ID = uuid.NewString()
	c := *p
	f.byID[p.ID] = &c
	return p, nil
}

func (f *fakePages) Update(_ context.Context, p *models.Page) error {
	if _, ok := f.byID[p.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakePages) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePages) GetByID(_ context.Context, id string) (*models.Page, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	c.Categories = slices.Clone(f.links[id])
	if c.Categories == nil {
		c.Categories = []string{}
	}
	return &c, nil
}

func (f *fakePages) SlugExists(_ context.Context, slug string) (bool, error) {
	if f.slugErr != nil {
		return false, f.slugErr
	}
	for _, p := range f.byID {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePages) List(_ context.Context, opts models.ListOptions, publishedOnly bool) ([]*models.Page, int, error) {
	out := []*models.Page{}
	for _, p := range f.byID {
		if publishedOnly && !p.Published() {
			continue
		}
		out = append(out, p)
	}
	n := len(out)
	if opts.Offset() >= n {
		return []*models.Page{}, n, nil
	}
	return out[opts.Offset():min(n, opts.Offset()+opts.Limit)], n, nil
}

func (f *fakePages) Count(context.Context) (int, error) { return len(f.byID), nil }

func (f *fakePages) SetPublishedAt(_ context.Context, id string, at *time.Time) error {
	p, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.PublishedAt = at
	return nil
}

func (f *fakePages) ReplaceCategories(_ context.Context, pageID string, ids []string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.links[pageID] = slices.Clone(ids)
	return nil
}

// --- categories ---

type fakeCategories struct {
	byID map[string]*models.Category
}

func (f *fakeCategories) add(c *models.Category) *models.Category {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	f.byID[c.ID] = c
	return c
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	c.ID = uuid.NewString()
	cp := *c
	f.byID[c.ID] = &cp
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	if _, ok := f.byID[c.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, c := range f.byID {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategories) List(_ context.Context, opts models.ListOptions, filter categories.Filter) ([]*models.Category, int, error) {
	out := []*models.Category{}
	for _, c := range f.byID {
		if filter.ParentID != "" && (c.CategoryID == nil || *c.CategoryID != filter.ParentID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeCategories) Count(context.Context) (int, error) { return len(f.byID), nil }

// --- files ---

type fakeFiles struct {
	byID      map[string]*models.File
	createErr error
}

func (f *fakeFiles) Create(_ context.Context, file *models.File) (*models.File, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	file.ID = uuid.NewString()
	c := *file
	f.byID[file.ID] = &c
	return file, nil
}

func (f *fakeFiles) UpdateTitle(_ context.Context, id, title string) error {
	file, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	file.Title = title
	return nil
}

func (f *fakeFiles) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	file, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *file
	return &c, nil
}

func (f *fakeFiles) GetByPath(_ context.Context, path string) (*models.File, error) {
	for _, file := range f.byID {
		if file.Path == path {
			c := *file
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFiles) List(_ context.Context, opts models.ListOptions) ([]*models.File, int, error) {
	out := []*models.File{}
	for _, file := range f.byID {
		if strings.Contains(file.Title, strings.ToLower(opts.Search)) {
			out = append(out, file)
		}
	}
	return out, len(out), nil
}

func (f *fakeFiles) Count(context.Context) (int, error) { return len(f.byID), nil }

// --- settings ---

type fakeSettings struct {
	byName    map[string]*models.Setting
	nameCalls int
	updateErr error
	// afterRead runs once the row has been copied, before it is returned.
	afterRead func()
}

func (f *fakeSettings) seed() {
	for _, n := range models.SettingNames {
		f.byName[n] = &models.Setting{ID: uuid.NewString(), Name: n}
	}
}

func (f *fakeSettings) List(context.Context) ([]*models.Setting, error) {
	out := []*models.Setting{}
	for _, n := range models.SettingNames {
		if s, ok := f.byName[n]; ok {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeSettings) GetByID(_ context.Context, id string) (*models.Setting, error) {
	for _, s := range f.byName {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSettings) GetByName(_ context.Context, name string) (*models.Setting, error) {
	f.nameCalls++
	s, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	if f.afterRead != nil {
		f.afterRead()
	}
	return &c, nil
}

func (f *fakeSettings) UpdateValue(_ context.Context, name string, value *string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	s, ok := f.byName[name]
	if !ok {
		return common.ErrorNotFound
	}
	s.Value = value
	return nil
}

// --- notifier / storage ---

type sentMail struct {
	kind    string
	userID  string
	payload string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (n *fakeNotifier) SendResetRequest(_ context.Context, u *models.User, url string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{"request", u.ID, url})
	return nil
}

func (n *fakeNotifier) SendNewPassword(_ context.Context, u *models.User, password string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{"password", u.ID, password})
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
	putErr  error
	delErr  error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (s *fakeStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "http://minio/" + key + "?sig=1", nil
}
