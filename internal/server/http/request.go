package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	return v
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "slug":
		return "must contain only letters, digits and single dashes"
	default:
		return "is invalid"
	}
}

// validate checks v against its validate tags. The error lists every
// failing field.
func (h *Handler) validate(v any) error {
	err := h.validator.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+" "+describe(e))
	}
	return fmt.Errorf("%w: %s", errBadRequest, strings.Join(msgs, "; "))
}

// decode reads a JSON body into v and validates it.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", errBadRequest)
	}
	return h.validate(v)
}

// pathID returns the {id} path variable. Anything but a UUID cannot name
// a row and is reported as not found.
func pathID(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", common.ErrorNotFound
	}
	return id, nil
}

// queryInt parses an optional integer query parameter bounded by
// [lo, hi]. An absent parameter yields zero.
func queryInt(q url.Values, name string, lo, hi int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", errBadRequest, name, lo, hi)
	}
	return n, nil
}

// listOptions parses page, limit and search from the query string.
func listOptions(r *http.Request) (models.ListOptions, error) {
	q := r.URL.Query()
	opts := models.ListOptions{Search: strings.TrimSpace(q.Get("search"))}

	var err error
	if opts.Page, err = queryInt(q, "page", 1, math.MaxInt32); err != nil {
		return opts, err
	}
	if opts.Limit, err = queryInt(q, "limit", 1, models.MaxPageLimit); err != nil {
		return opts, err
	}
	return opts.Normalize(), nil
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type accountRequest struct {
	Name  string `json:"name" validate:"required,min=3,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	Password    string `json:"password" validate:"required,min=8,max=255"`
}

type resetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Token string `json:"token" validate:"required"`
}

type userRequest struct {
	Name     string      `json:"name" validate:"required,min=3,max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=255"`
	Role     models.Role `json:"role" validate:"required,oneof=administrator user"`
}

type userUpdateRequest struct {
	Name  string      `json:"name" validate:"required,min=3,max=255"`
	Email string      `json:"email" validate:"required,email,max=255"`
	Role  models.Role `json:"role" validate:"required,oneof=administrator user"`
}

type pageRequest struct {
	Name            string          `json:"name" validate:"required,min=3,max=253"`
	Content         string          `json:"content"`
	IsPage          bool            `json:"isPage"`
	Template        models.Template `json:"template" validate:"omitempty,oneof=basic full-width"`
	Slug            string          `json:"slug" validate:"omitempty,max=255,slug"`
	Thumbnail       *string         `json:"thumbnail" validate:"omitempty,url"`
	MetaTitle       *string         `json:"metaTitle" validate:"omitempty,max=255"`
	MetaDescription *string         `json:"metaDescription"`
	Categories      []string        `json:"categories" validate:"omitempty,dive,uuid"`
}

type categoryRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	Slug       string  `json:"slug" validate:"omitempty,max=255,slug"`
	CategoryID *string `json:"categoryId" validate:"omitempty,uuid"`
}

type fileTitleRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}
