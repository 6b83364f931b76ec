package http

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/auth"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func wrapWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logRequests tags the request with an id (taken from X-Request-ID when
// the client sent one) and logs it once it completes.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)

		rw := wrapWriter(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		h.log.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start).String(),
		)
	})
}

func (h *Handler) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				h.log.Error(r.Context(), "panic", "value", fmt.Sprint(p), "stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth runs the access guard before next and stores the principal
// in the request context.
func (h *Handler) requireAuth(guard Authenticator, roles []models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := guard.Authenticate(r.Context(), r.Header.Get(common.AuthorizationHeaderName), roles)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next(w, r.WithContext(auth.WithPrincipal(r.Context(), user)))
	}
}

// principal returns the authenticated user of the request. Only valid
// behind requireAuth.
func principal(r *http.Request) (*models.User, error) {
	user := auth.PrincipalFromContext(r.Context())
	if user == nil {
		return nil, common.ErrIncorrectAuthorizationToken
	}
	return user, nil
}
