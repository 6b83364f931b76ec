package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{common.ErrIncorrectAuthorizationToken, http.StatusUnauthorized},
		{common.ErrIncorrectRefreshToken, http.StatusUnauthorized},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrUserNotExist, http.StatusNotFound},
		{common.ErrInvalidResetToken, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", common.ErrPageNotExist), http.StatusNotFound},
		{common.ErrWrongCredentials, http.StatusBadRequest},
		{common.ErrSlugAlreadyExists, http.StatusBadRequest},
		{common.ErrUnsupportedFileType, http.StatusBadRequest},
		{fmt.Errorf("%w: name is required", errBadRequest), http.StatusBadRequest},
		{common.ErrDecryption, http.StatusInternalServerError},
		{errors.New("db error: boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

func TestGuardedRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/account", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, common.ErrIncorrectAuthorizationToken.Error(), decodeError(t, rec))

	rec = env.do(http.MethodGet, "/account", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/users", userToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/users", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/account", userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var u map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, regularUser.Email, u["email"])
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", `{"name":"Al","email":"not-mail","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decodeError(t, rec)
	assert.Contains(t, msg, "name must be at least 3")
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be at least 8")

	rec = env.do(http.MethodPost, "/auth/register", "", `{"name":"Alice","email":"alice@example.com","password":"password1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash-of")
	assert.NotContains(t, rec.Body.String(), "password")

	env.users.err = common.ErrCredentialsInUse
	rec = env.do(http.MethodPost, "/auth/register", "", `{"name":"Alice","email":"alice@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", "", `{"email":"a@example.com","password":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "t-a@example.com", res["token"])
	assert.Equal(t, "15m", res["tokenExpiresIn"])
	assert.Equal(t, "30m", res["refreshTokenExpiresIn"])

	env.auth.loginErr = common.ErrWrongCredentials
	rec = env.do(http.MethodPost, "/auth/login", "", `{"email":"a@example.com","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.ErrWrongCredentials.Error(), decodeError(t, rec))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/logout", userToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Same(t, regularUser, env.auth.loggedOut)
}

func TestPerformPasswordReset(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/account/password/reset", "", `{"token":"abc"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc", env.passwords.capsule)

	env.passwords.err = common.ErrInvalidResetToken
	rec = env.do(http.MethodPost, "/account/password/reset", "", `{"token":"abc"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPages_PublicAndPreview(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/pages?page=2&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.pages.publishedOnly)
	assert.True(t, *env.pages.publishedOnly)
	assert.Equal(t, models.ListOptions{Page: 2, Limit: 5}, env.pages.opts)
	assert.JSONEq(t, `{"page":2,"limit":5,"count":0,"totalCount":0,"rows":[]}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/pages/preview", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/pages/preview", userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *env.pages.publishedOnly)

	rec = env.do(http.MethodGet, "/pages/preview/"+someID, userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *env.pages.publishedOnly)

	rec = env.do(http.MethodGet, "/pages/"+someID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *env.pages.publishedOnly)
}

func TestPages_BadQueryAndID(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"limit=1000", "limit=0", "page=abc", "page=-1"} {
		rec := env.do(http.MethodGet, "/pages?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec := env.do(http.MethodGet, "/pages/not-a-uuid", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPages_Create(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/pages", userToken, `{"name":"Hi","slug":"bad slug"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "slug")

	rec = env.do(http.MethodPost, "/pages", userToken,
		`{"name":"Hello","template":"full-width","categories":["`+someID+`"],"thumbnail":"https://cdn.example.com/a.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Same(t, regularUser, env.pages.author)
	assert.Equal(t, models.TemplateFullWidth, env.pages.input.Template)
	assert.Equal(t, []string{someID}, env.pages.input.Categories)

	rec = env.do(http.MethodPost, "/pages", userToken, `{"name":"Hello","categories":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalErrorHidden(t *testing.T) {
	env := newTestEnv(t)
	env.pages.err = errors.New("db error: connection reset")

	rec := env.do(http.MethodGet, "/pages", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeError(t, rec))
}

func TestPanicRecovered(t *testing.T) {
	env := newTestEnv(t)
	env.pages.panicOnGet = true

	rec := env.do(http.MethodGet, "/pages/"+someID, "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func multipartBody(t *testing.T, field, name, mime, content, title string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if title != "" {
		require.NoError(t, mw.WriteField("title", title))
	}
	if field != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
		hdr.Set("Content-Type", mime)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartBody(t, "file", "logo.png", "image/png", "PNGDATA", " Site Logo ")
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+userToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "logo.png", env.files.upload.Name)
	assert.Equal(t, "image/png", env.files.upload.Mime)
	assert.Equal(t, "Site Logo", env.files.upload.Title)
	assert.Equal(t, int64(7), env.files.upload.Size)
	assert.Equal(t, "PNGDATA", env.files.body)
}

func TestUploadFile_Missing(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartBody(t, "", "", "", "", "only a title")
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+userToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.ErrFileNotSent.Error(), decodeError(t, rec))
}

func TestUploadFile_TooLarge(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartBody(t, "file", "big.bin", "application/octet-stream", strings.Repeat("x", 3<<20), "")
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+userToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/files/2024/03/07/abc.png", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "files/2024/3/7/abc.png", env.files.path)
	assert.Equal(t, "http://minio/files/2024/3/7/abc.png?sig=abc", rec.Header().Get("Location"))

	env.files.err = common.ErrFileNotExist
	rec = env.do(http.MethodGet, "/files/2024/3/7/missing.png", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/settings", userToken, `{"name":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/settings", adminToken, `{"name":"My site","logo":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, env.settings.values, "logo")
	assert.Nil(t, env.settings.values["logo"])
	assert.Equal(t, "My site", *env.settings.values["name"])

	rec = env.do(http.MethodPost, "/settings", adminToken, `{"name":42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/pages", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))

	rec = env.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cms_http_requests_total{method="GET",route="/pages",status="200"} 2`)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec))
}
