// Package admincli implements the skillshare-admin maintenance commands.
package admincli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/auth"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/repository"
	"github.com/vedran77/skillshare/pkg/validator"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

const usage = `usage: skillshare-admin <command> [flags]

commands:
  migrate                           apply database migrations
  create-admin -name N -email E     create an admin account (prompts for password)
  promote -email E                  grant the admin role
  demote -email E                   revoke the admin role
`

var ErrUsage = errors.New("invalid usage")

// Run executes one command against store. Migrations have already been
// applied by the time the store is opened.
func Run(ctx context.Context, args []string, store *repository.Store, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		fmt.Fprintln(out, "migrations applied")
		return nil
	case "create-admin":
		return createAdmin(ctx, rest, store.Users, out)
	case "promote":
		return setRole(ctx, rest, store.Users, domain.RoleAdmin, out)
	case "demote":
		return setRole(ctx, rest, store.Users, domain.RoleMember, out)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func createAdmin(ctx context.Context, args []string, users repository.UserRepository, out io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	fmt.Fprint(out, "Enter password: ")
	pw, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password := string(pw)

	addr := strings.ToLower(strings.TrimSpace(*email))
	if errs := validator.ValidateRegister(*name, addr, password, ""); errs.HasErrors() {
		for field, msg := range errs {
			fmt.Fprintf(out, "%s: %s\n", field, msg)
		}
		return fmt.Errorf("%w: invalid account details", ErrUsage)
	}

	existing, err := users.GetByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(*name),
		Email:        addr,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	fmt.Fprintf(out, "created admin %s (%s)\n", user.Email, user.ID)
	return nil
}

func setRole(ctx context.Context, args []string, users repository.UserRepository, role domain.Role, out io.Writer) error {
	fs := flag.NewFlagSet(string(role), flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *email == "" {
		return fmt.Errorf("%w: -email is required", ErrUsage)
	}

	user, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", *email)
	}

	if err := users.SetRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("setting role: %w", err)
	}

	fmt.Fprintf(out, "%s is now %s\n", user.Email, role)
	return nil
}
