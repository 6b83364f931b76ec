package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileService(t *testing.T) (*FileService, *fakeManager, *fakeStorage) {
	t.Helper()
	m := newFakeManager()
	st := newFakeStorage()
	s := NewFileService(nil, m, st, 1024, logging.NewNop())
	s.now = func() time.Time { return time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC) }
	return s, m, st
}

func upload(name, title, mime, body string) Upload {
	return Upload{Name: name, Title: title, Mime: mime, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestStorageKey(t *testing.T) {
	key := storageKey(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), "Photo.JPG")
	assert.Regexp(t, regexp.MustCompile(`^files/2024/3/7/[0-9a-f-]{36}\.jpg$`), key)
}

func TestFileService_Upload(t *testing.T) {
	s, m, st := newFileService(t)

	f, err := s.Upload(context.Background(), upload("logo.png", "Site LOGO", "image/png", "png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "site logo", f.Title)
	assert.Equal(t, "logo.png", f.Name)
	assert.True(t, strings.HasPrefix(f.Path, "files/2024/3/7/"))
	assert.Equal(t, []byte("png-bytes"), st.objects[f.Path])
	assert.Contains(t, m.files.byID, f.ID)
}

func TestFileService_UploadDefaultsTitleToName(t *testing.T) {
	s, _, _ := newFileService(t)

	f, err := s.Upload(context.Background(), upload("Report.PDF", "", "application/pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Report.PDF", f.Title)
}

func TestFileService_UploadRejects(t *testing.T) {
	s, _, st := newFileService(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, upload("clip.mp4", "", "video/mp4", "x"))
	require.ErrorIs(t, err, common.ErrUnsupportedFileType)

	_, err = s.Upload(ctx, upload("big.txt", "", "text/plain", strings.Repeat("x", 2048)))
	require.ErrorIs(t, err, common.ErrFileNotSent)

	_, err = s.Upload(ctx, Upload{Mime: "text/plain"})
	require.ErrorIs(t, err, common.ErrFileNotSent)

	assert.Empty(t, st.objects)
}

func TestFileService_UploadRemovesObjectWhenRecordFails(t *testing.T) {
	s, m, st := newFileService(t)
	m.files.createErr = errors.New("db down")

	_, err := s.Upload(context.Background(), upload("a.txt", "", "text/plain", "x"))
	require.ErrorIs(t, err, m.files.createErr)
	assert.Empty(t, st.objects)
}

func TestFileService_DeleteToleratesStorageFailure(t *testing.T) {
	s, m, st := newFileService(t)
	ctx := context.Background()
	f, err := s.Upload(ctx, upload("a.txt", "", "text/plain", "x"))
	require.NoError(t, err)

	st.delErr = errors.New("minio down")
	got, err := s.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.NotContains(t, m.files.byID, f.ID)

	_, err = s.Delete(ctx, f.ID)
	require.ErrorIs(t, err, common.ErrFileNotExist)
}

func TestFileService_UpdateTitle(t *testing.T) {
	s, m, _ := newFileService(t)
	m.files.byID["f"] = &models.File{ID: "f", Name: "a.txt", Title: "a.txt"}

	f, err := s.UpdateTitle(context.Background(), "f", "New Title")
	require.NoError(t, err)
	assert.Equal(t, "new title", f.Title)
	assert.Equal(t, "new title", m.files.byID["f"].Title)

	_, err = s.UpdateTitle(context.Background(), "nope", "x")
	require.ErrorIs(t, err, common.ErrFileNotExist)
}

func TestFileService_DownloadURL(t *testing.T) {
	s, _, _ := newFileService(t)
	ctx := context.Background()
	f, err := s.Upload(ctx, upload("a.txt", "", "text/plain", "x"))
	require.NoError(t, err)

	u, err := s.DownloadURL(ctx, f.Path)
	require.NoError(t, err)
	assert.Equal(t, "http://minio/"+f.Path+"?sig=1", u)

	_, err = s.DownloadURL(ctx, "files/2024/3/7/missing.txt")
	require.ErrorIs(t, err, common.ErrFileNotExist)
}

func TestFileService_List(t *testing.T) {
	s, _, _ := newFileService(t)
	ctx := context.Background()
	_, err := s.Upload(ctx, upload("a.txt", "Budget", "text/plain", "x"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, upload("b.txt", "Holiday", "text/plain", "x"))
	require.NoError(t, err)

	res, err := s.List(ctx, models.ListOptions{Search: "BUD"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 2, res.TotalCount)
}
