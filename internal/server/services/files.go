package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var allowedMime = regexp.MustCompile(`^(text|image|application)/`)

// ObjectStorage holds file payloads.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// Upload is a file received from a client.
type Upload struct {
	Name  string
	Title string
	Mime  string
	Size  int64
	Body  io.Reader
}

type FileService struct {
	db          DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStorage
	maxSize     int64
	log         logging.Logger
	now         func() time.Time
}

func NewFileService(db DB, m repomanager.RepositoryManager, storage ObjectStorage, maxSize int64, log logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		storage:     storage,
		maxSize:     maxSize,
		log:         log.With("component", "files"),
		now:         time.Now,
	}
}

// storageKey returns files/<yyyy>/<m>/<d>/<random><ext> for a file named
// name uploaded at t.
func storageKey(t time.Time, name string) string {
	return fmt.Sprintf("files/%d/%d/%d/%s%s", t.Year(), int(t.Month()), t.Day(), uuid.NewString(), strings.ToLower(path.Ext(name)))
}

func normalizeTitle(title, name string) string {
	if title == "" {
		return name
	}
	return strings.ToLower(title)
}

// Upload stores the payload and records it. When the record cannot be
// written the stored object is removed again.
func (s *FileService) Upload(ctx context.Context, up Upload) (*models.File, error) {
	if up.Body == nil || up.Name == "" {
		return nil, common.ErrFileNotSent
	}
	if !allowedMime.MatchString(up.Mime) {
		return nil, common.ErrUnsupportedFileType
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return nil, common.ErrFileNotSent
	}

	key := storageKey(s.now().UTC(), up.Name)
	if err := s.storage.Put(ctx, key, up.Body, up.Size, up.Mime); err != nil {
		return nil, err
	}

	file := &models.File{Name: up.Name, Title: normalizeTitle(up.Title, up.Name), Mime: up.Mime, Path: key}
	if _, err := s.repomanager.Files(s.db).Create(ctx, file); err != nil {
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.log.Error(ctx, "orphaned object", "path", key, "error", derr)
		}
		return nil, err
	}

	s.log.Info(ctx, "file uploaded", "file_id", file.ID, "path", key, "size", up.Size)
	return file, nil
}

func (s *FileService) Get(ctx context.Context, id string) (*models.File, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, common.ErrFileNotExist)
	}
	return f, nil
}

func (s *FileService) UpdateTitle(ctx context.Context, id, title string) (*models.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Title = normalizeTitle(title, f.Name)
	if err := s.repomanager.Files(s.db).UpdateTitle(ctx, id, f.Title); err != nil {
		return nil, notFound(err, common.ErrFileNotExist)
	}
	return f, nil
}

// Delete removes the record, then the object. A failure to remove the
// object is logged and does not fail the call.
func (s *FileService) Delete(ctx context.Context, id string) (*models.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Files(s.db).Delete(ctx, id); err != nil {
		return nil, notFound(err, common.ErrFileNotExist)
	}
	if err := s.storage.Delete(ctx, f.Path); err != nil {
		s.log.Error(ctx, "object delete failed", "path", f.Path, "error", err)
	}
	return f, nil
}

func (s *FileService) List(ctx context.Context, opts models.ListOptions) (*models.Paginated[*models.File], error) {
	opts = opts.Normalize()
	repo := s.repomanager.Files(s.db)

	rows, count, err := repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewPaginated(opts, rows, count, total), nil
}

// DownloadURL resolves a public file path to a presigned storage URL.
func (s *FileService) DownloadURL(ctx context.Context, filePath string) (string, error) {
	f, err := s.repomanager.Files(s.db).GetByPath(ctx, filePath)
	if err != nil {
		return "", notFound(err, common.ErrFileNotExist)
	}
	return s.storage.PresignGet(ctx, f.Path)
}
