// Package cmsctl implements the administrative commands of the cmsctl
// tool. Currently it bootstraps administrator accounts on a fresh
// installation, where no one could create them through the API.
package cmsctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/cmskeeper/internal/flagx"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const CommandCreateAdmin = "create-admin"

var (
	ErrUsage            = errors.New("usage: cmsctl create-admin -n <name> -m <email>")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// UserCreator is the part of the user service the tool needs.
type UserCreator interface {
	Create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error)
}

// CreateAdmin holds the arguments of create-admin.
type CreateAdmin struct {
	Name     string `validate:"required,min=3,max=255"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=255"`
}

// Parse reads the command and its flags from args (os.Args[1:]). Flags
// that belong to the server configuration are skipped.
func Parse(args []string) (*CreateAdmin, error) {
	if len(args) == 0 || args[0] != CommandCreateAdmin {
		return nil, ErrUsage
	}

	cmd := &CreateAdmin{}
	fs := flag.NewFlagSet(CommandCreateAdmin, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cmd.Name, "n", "", "administrator name")
	fs.StringVar(&cmd.Email, "m", "", "administrator email")

	if err := fs.Parse(flagx.FilterArgs(args[1:], []string{"-n", "-m"})); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.TrimSpace(cmd.Email)
	if cmd.Name == "" || cmd.Email == "" {
		return nil, ErrUsage
	}
	return cmd, nil
}

// ReadPassword prompts for the password twice.
func (c *CreateAdmin) ReadPassword(w io.Writer) error {
	pw, err := GetPassword(w, "Password")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(w, "Repeat password")
	if err != nil {
		return err
	}
	if pw != confirm {
		return ErrPasswordMismatch
	}
	c.Password = pw
	return nil
}

// Execute validates the arguments and creates the administrator.
func (c *CreateAdmin) Execute(ctx context.Context, users UserCreator, w io.Writer) error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.ToLower(e.Field()), e.Tag()))
			}
			return fmt.Errorf("invalid arguments: %s", strings.Join(msgs, ", "))
		}
		return err
	}

	user, err := users.Create(ctx, c.Name, c.Email, c.Password, models.RoleAdministrator)
	if err != nil {
		return fmt.Errorf("create administrator: %w", err)
	}
	fmt.Fprintf(w, "Administrator %s <%s> created, id=%s\n", user.Name, user.Email, user.ID)
	return nil
}
