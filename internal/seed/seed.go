// Package seed creates the initial account of a fresh installation.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/flagx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"golang.org/x/term"
)

// DefaultUserName is the account created when -user is not given.
const DefaultUserName = "mikines"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// UserEnsurer is implemented by services.UserService.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, username, password string) (*models.User, bool, error)
	IssueToken(user *models.User, ttl time.Duration) (string, error)
}

// Options of one seed run. A positive TokenTTL also prints a session token
// for the account, usable as a Bearer credential against the API.
type Options struct {
	UserName string
	Password string
	TokenTTL time.Duration
}

// ParseArgs reads -user, -password and -token from args. Server flags are ignored
// so the same command line can carry the database settings.
func ParseArgs(args []string) (Options, error) {
	opts := Options{}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.UserName, "user", DefaultUserName, "user name to create")
	fs.StringVar(&opts.Password, "password", "", "password (prompted when empty)")
	fs.DurationVar(&opts.TokenTTL, "token", 0, "print a session token valid for this long (e.g. 24h)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-user", "-password", "-token"})); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// GetPassword prints a prompt to w and reads a password from the terminal
// without echo.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Run makes sure the account in opts exists. Running it twice is harmless,
// an existing account keeps its password.
func Run(ctx context.Context, us UserEnsurer, opts Options, w io.Writer) error {
	password := opts.Password
	if password == "" {
		pw, err := GetPassword(w)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(pw)
		clear(pw)
	}

	user, created, err := us.EnsureUser(ctx, opts.UserName, password)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(w, "Created user %s (%s)\n", user.UserName, user.ID)
	} else {
		fmt.Fprintf(w, "User %s already exists, nothing to do\n", user.UserName)
	}

	if opts.TokenTTL > 0 {
		token, err := us.IssueToken(user, opts.TokenTTL)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintf(w, "Session token: %s\n", token)
	}
	return nil
}
