package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xraph/keeper/principal"
)

func newCheckCmd(a *app) *cobra.Command {
	var strict bool
	c := &cobra.Command{
		Use:   "check <path>...",
		Short: "Evaluate paths for the signed-in principal",
		Long:  `check evaluates each path against the rule table as the persisted principal, or anonymously when nobody is signed in.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Restore(cmd.Context())

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "PATH\tDECISION\tRULE\tREDIRECT")
			denied := 0
			for _, path := range args {
				res := a.guard.Evaluate(a.session, path)
				if !res.Allowed {
					denied++
				}
				ruleLabel, redirect := "-", "-"
				if res.Rule != nil {
					ruleLabel = res.Rule.Label()
				}
				if res.Redirect != nil {
					redirect = res.Redirect.URL()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", path, res.Decision, ruleLabel, redirect)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if strict && denied > 0 {
				return fmt.Errorf("%d of %d paths denied", denied, len(args))
			}
			return nil
		},
	}
	c.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any path is denied")
	return c
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule table, most specific first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "PATTERN\tNAME\tROLES\tPERMISSIONS")
			for _, r := range a.guard.Rules() {
				roles := make([]string, len(r.AllowedRoles))
				for i, role := range r.AllowedRoles {
					roles[i] = role.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.Pattern,
					orDash(r.Name),
					orDash(strings.Join(roles, ", ")),
					joinPermissions(r.RequiredPermissions.Sorted()),
				)
			}
			return w.Flush()
		},
	}
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func joinPermissions(perms []principal.Permission) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return orDash(strings.Join(names, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
