package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/cryptox"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
)

// NewPasswordLength is the number of random bytes in a generated password.
const NewPasswordLength = 8

// UserService manages accounts: self registration, the signed-in user's
// profile and the administrator's user management.
type UserService struct {
	db          DB
	repomanager repomanager.RepositoryManager
	notifier    Notifier
	log         logging.Logger
}

func NewUserService(db DB, m repomanager.RepositoryManager, notifier Notifier, log logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, notifier: notifier, log: log.With("component", "users")}
}

// Register creates a user with the default role.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.Create(ctx, name, email, password, models.RoleUser)
}

// Create stores a new user with a hashed password. A taken email fails
// with common.ErrCredentialsInUse.
func (s *UserService) Create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, Password: hash, Role: role}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user created", "user_id", u.ID, "role", string(role))
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, common.ErrUserNotExist)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// ensureEmailFree fails when email belongs to a user other than id.
func (s *UserService) ensureEmailFree(ctx context.Context, id, email string) error {
	other, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != id {
		return common.ErrCredentialsInUse
	}
	return nil
}

// Update changes a user's name, email and role.
func (s *UserService) Update(ctx context.Context, id, name, email string, role models.Role) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, id, email); err != nil {
		return nil, err
	}

	user.Name, user.Email, user.Role = name, email, role
	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return nil, notFound(err, common.ErrUserNotExist)
	}
	return user, nil
}

// UpdateAccount changes the signed-in user's own name and email.
func (s *UserService) UpdateAccount(ctx context.Context, user *models.User, name, email string) (*models.User, error) {
	return s.Update(ctx, user.ID, name, email, user.Role)
}

// ChangePassword replaces the user's password after checking the current
// one.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if !cryptox.VerifyPassword(oldPassword, user.Password) {
		return common.ErrWrongCredentials
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *UserService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, user.ID, hash); err != nil {
		return notFound(err, common.ErrUserNotExist)
	}
	user.Password = hash
	return nil
}

// Delete removes a user and returns the removed record.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return nil, notFound(err, common.ErrUserNotExist)
	}
	s.log.Info(ctx, "user deleted", "user_id", id)
	return user, nil
}

// ResetPassword sets a random password for the user and mails it to them.
func (s *UserService) ResetPassword(ctx context.Context, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	password := common.GenerateRandPassword(NewPasswordLength)
	if err := s.setPassword(ctx, user, password); err != nil {
		return err
	}

	if err := s.notifier.SendNewPassword(ctx, user, password); err != nil {
		return fmt.Errorf("send new password: %w", err)
	}
	s.log.Info(ctx, "password reset by administrator", "user_id", id)
	return nil
}
