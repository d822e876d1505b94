// Package admin implements the taxportal-admin maintenance command.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/config"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/users"
	"github.com/dmitrijs2005/taxportal/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// OpenUsers opens the configured store and returns its users repository
// together with a function releasing the store.
type OpenUsers func(ctx context.Context, logger logging.Logger) (users.Repository, func(), error)

// OpenConfiguredStore loads the server configuration (JSON file, .env and
// environment) and opens the store it names.
func OpenConfiguredStore(ctx context.Context, logger logging.Logger) (users.Repository, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := repomanager.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error(ctx, "storage close error", "error", err)
		}
	}
	return store.Users(), closeFn, nil
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer, open OpenUsers) *cobra.Command {
	root := &cobra.Command{
		Use:           "taxportal-admin",
		Short:         "Maintenance commands for the tax portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateAdminCommand(out, open))
	return root
}

func newCreateAdminCommand(out io.Writer, open OpenUsers) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the administrator account or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := promptPassword(out)
				if err != nil {
					return err
				}
				password = p
			}

			logger := logging.New(logging.BackendZerolog, "warn", os.Stderr)
			repo, closeFn, err := open(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("storage init error: %w", err)
			}
			defer closeFn()

			auth := services.NewAuthService(repo, logger, false)
			user, err := auth.EnsureAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Administrator %s ready (id %s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Administrator email (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "Administrator", "Display name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password; prompted for when omitted")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// promptPassword reads the password twice without echo.
func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())

	_, _ = fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	_, _ = fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
