package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/cryptox"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
)

// capsuleSeparator splits the email from the issue time inside a reset
// capsule. It cannot occur in a valid email address.
const capsuleSeparator = `"`

// UserStore is the user persistence the reset flow needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, password string) error
}

// PasswordOptions configures the reset flow.
type PasswordOptions struct {
	CryptSecret string
	// FrontURL is the front-end page that receives the capsule.
	FrontURL string
	// MaxAge bounds the capsule's age; zero disables the check.
	MaxAge time.Duration
}

// PasswordService implements the stateless, mail-driven password reset.
// The capsule sent to the user is the encrypted email and issue time, so
// the server keeps no reset state.
type PasswordService struct {
	users    UserStore
	notifier Notifier
	opts     PasswordOptions
	log      logging.Logger
	now      func() time.Time
}

func NewPasswordService(users UserStore, notifier Notifier, opts PasswordOptions, log logging.Logger) *PasswordService {
	return &PasswordService{
		users:    users,
		notifier: notifier,
		opts:     opts,
		log:      log.With("component", "passwords"),
		now:      time.Now,
	}
}

func (s *PasswordService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, common.ErrUserNotExist)
	}
	return user, nil
}

// RequestReset mails the user a link carrying a fresh reset capsule.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	capsule, err := cryptox.EncryptString(user.Email+capsuleSeparator+s.now().UTC().Format(time.RFC3339Nano), s.opts.CryptSecret)
	if err != nil {
		return fmt.Errorf("seal reset capsule: %w", err)
	}
	link := s.opts.FrontURL + "?token=" + url.QueryEscape(capsule)

	if err := s.notifier.SendResetRequest(ctx, user, link); err != nil {
		return fmt.Errorf("send reset request: %w", err)
	}
	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// openCapsule returns the email sealed in capsule, checking its age.
func (s *PasswordService) openCapsule(capsule string) (string, error) {
	plain, err := cryptox.DecryptString(capsule, s.opts.CryptSecret)
	if err != nil {
		return "", common.ErrInvalidResetToken
	}

	email, issued, ok := strings.Cut(plain, capsuleSeparator)
	if !ok || email == "" {
		return "", common.ErrInvalidResetToken
	}

	if s.opts.MaxAge > 0 {
		at, err := time.Parse(time.RFC3339Nano, issued)
		if err != nil || s.now().Sub(at) > s.opts.MaxAge {
			return "", common.ErrInvalidResetToken
		}
	}
	return email, nil
}

// PerformReset redeems a capsule: the user gets a new random password,
// which is mailed to them. A mail failure is returned after the password
// has already been changed.
func (s *PasswordService) PerformReset(ctx context.Context, capsule string) error {
	email, err := s.openCapsule(capsule)
	if err != nil {
		return err
	}

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	password := common.GenerateRandPassword(NewPasswordLength)
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return notFound(err, common.ErrUserNotExist)
	}

	if err := s.notifier.SendNewPassword(ctx, user, password); err != nil {
		return fmt.Errorf("send new password: %w", err)
	}
	s.log.Info(ctx, "password reset performed", "user_id", user.ID)
	return nil
}
