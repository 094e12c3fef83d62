// Package cmd implements the keeper command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/policyfile"
	"github.com/xraph/keeper/rule"
	"github.com/xraph/keeper/snapshot"
	"github.com/xraph/keeper/store/file"
)

// Environment variables read when the matching flag is not set.
const (
	envPolicy     = "KEEPER_POLICY"
	envStateDir   = "KEEPER_STATE_DIR"
	envSigningKey = "KEEPER_SIGNING_KEY"
)

type flags struct {
	policy     string
	stateDir   string
	signingKey string
	debug      bool
}

// app holds what every subcommand works against. It is built once per
// invocation in PersistentPreRunE.
type app struct {
	session *keeper.Session
	guard   *keeper.Guard
	store   *file.Store
	logger  *slog.Logger
}

// NewRootCmd returns the keeper command tree.
func NewRootCmd() *cobra.Command {
	f := &flags{}
	a := &app{}

	root := &cobra.Command{
		Use:           "keeper",
		Short:         "Single-user session and route guard",
		Long:          `keeper keeps one signed-in user between invocations and checks paths against role and permission rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return a.init(cmd, f)
		},
	}

	root.PersistentFlags().StringVar(&f.policy, "policy", "", "Policy file (YAML or TOML) (env: "+envPolicy+")")
	root.PersistentFlags().StringVar(&f.stateDir, "state-dir", "", "Directory for the session snapshot (env: "+envStateDir+")")
	root.PersistentFlags().StringVar(&f.signingKey, "signing-key", "", "Sign snapshots with this key, at least 32 bytes (env: "+envSigningKey+")")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCheckCmd(a),
		newRulesCmd(a),
		newHashCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "keeper:", err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command, f *flags) error {
	level := slog.LevelWarn
	if f.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	dir := firstNonEmpty(f.stateDir, os.Getenv(envStateDir))
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve state dir: %w", err)
		}
		dir = filepath.Join(base, "keeper")
	}
	st, err := file.New(dir)
	if err != nil {
		return err
	}
	a.store = st

	opts := []keeper.Option{
		keeper.WithLogger(a.logger),
		keeper.WithSnapshotStore(st),
		keeper.WithNavigator(keeper.NavigatorFunc(func(_ context.Context, r keeper.Redirect) {
			a.logger.Debug("redirect", slog.String("to", r.URL()))
		})),
	}

	if path := firstNonEmpty(f.policy, os.Getenv(envPolicy)); path != "" {
		doc, err := policyfile.Load(path)
		if err != nil {
			return err
		}
		docOpts, err := doc.Options()
		if err != nil {
			return err
		}
		opts = append(opts, docOpts...)
	} else {
		opts = append(opts,
			keeper.WithDirectory(credential.Demo()),
			keeper.WithRules(rule.Defaults()),
		)
	}

	if key := firstNonEmpty(f.signingKey, os.Getenv(envSigningKey)); key != "" {
		codec, err := snapshot.NewSigned([]byte(key))
		if err != nil {
			return err
		}
		opts = append(opts, keeper.WithCodec(codec))
	}

	if a.session, err = keeper.NewSession(opts...); err != nil {
		return err
	}
	if a.guard, err = keeper.NewGuard(opts...); err != nil {
		return err
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
