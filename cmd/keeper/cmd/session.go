package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xraph/keeper/credential"
)

// errNotLoggedIn is returned by commands that need a persisted principal.
var errNotLoggedIn = errors.New("not logged in")

func newLoginCmd(a *app) *cobra.Command {
	var secret string
	c := &cobra.Command{
		Use:   "login <handle>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				s, err := readSecret(cmd)
				if err != nil {
					return err
				}
				secret = s
			}

			ok, err := a.session.Login(cmd.Context(), args[0], secret)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if !ok {
				return errors.New("invalid credentials")
			}

			p, _ := a.session.Principal()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", p.ContactHandle, p.Role)
			return nil
		},
	}
	c.Flags().StringVar(&secret, "secret", "", "Secret; read from stdin when empty")
	return c
}

// readSecret prompts without echo on a terminal, or reads one line
// otherwise.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Secret: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.session.Restore(cmd.Context()) {
				return errNotLoggedIn
			}
			p, _ := a.session.Principal()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintf(w, "ID\t%s\n", p.ID)
			fmt.Fprintf(w, "Name\t%s\n", p.DisplayName)
			fmt.Fprintf(w, "Handle\t%s\n", p.ContactHandle)
			fmt.Fprintf(w, "Role\t%s\n", p.Role)
			fmt.Fprintf(w, "Permissions\t%s\n", joinPermissions(p.Permissions.Sorted()))
			return w.Flush()
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return c
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "hash",
		Short:       "Print a bcrypt hash of a secret for use as secret_hash in a policy file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			if secret == "" {
				return errors.New("empty secret")
			}
			h, err := credential.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
