package keeper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/keeper/checklog"
	"github.com/xraph/keeper/id"
	"github.com/xraph/keeper/plugin"
	"github.com/xraph/keeper/principal"
	"github.com/xraph/keeper/rule"
)

// Guard decides whether a session may navigate to a path.
//
// Evaluation follows these steps:
//  1. Select the rule with the longest pattern that prefixes the path.
//  2. No rule: allow, unless the unmatched policy requires a principal.
//  3. No principal: redirect to the login path, carrying the original path.
//  4. Role not allowed, or a required permission missing: redirect to the
//     unauthorized path, carrying the original path.
//  5. Otherwise allow.
type Guard struct {
	rules     *rule.Table
	navigator Navigator
	checkLogs checklog.Store
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config
}

// NewGuard creates a guard. WithRules is required.
func NewGuard(opts ...Option) (*Guard, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if o.rules == nil {
		return nil, ErrRulesRequired
	}
	return &Guard{
		rules:     o.rules,
		navigator: o.navigator,
		checkLogs: o.checkLogs,
		plugins:   o.registry,
		logger:    o.logger,
		config:    o.config,
	}, nil
}

// Evaluate decides path for the session's current principal without side
// effects. A nil session is treated as unauthenticated.
func (g *Guard) Evaluate(s *Session, path string) *Result {
	var p *principal.Principal
	if s != nil {
		p, _ = s.Principal()
	}
	return g.EvaluatePrincipal(p, path)
}

// EvaluatePrincipal decides path for p. A nil p is unauthenticated.
func (g *Guard) EvaluatePrincipal(p *principal.Principal, path string) *Result {
	start := time.Now()
	res := g.evaluate(p, path)
	res.EvalTimeNs = time.Since(start).Nanoseconds()
	return res
}

func (g *Guard) evaluate(p *principal.Principal, path string) *Result {
	r, matched := g.rules.Match(path)
	if !matched {
		if p == nil && g.config.UnmatchedPolicy == UnmatchedRequireAuth {
			return &Result{
				Decision: DecisionDenyUnauthenticated,
				Reason:   "no rule matches and the unmatched policy requires a principal",
				Path:     path,
				Redirect: &Redirect{To: g.config.LoginPath, From: path},
			}
		}
		return &Result{
			Allowed:  true,
			Decision: DecisionAllowUnmatched,
			Reason:   "no rule matches",
			Path:     path,
		}
	}

	if p == nil {
		return &Result{
			Decision: DecisionDenyUnauthenticated,
			Reason:   fmt.Sprintf("rule %q requires a principal", r.Label()),
			Path:     path,
			Rule:     r,
			Redirect: &Redirect{To: g.config.LoginPath, From: path},
		}
	}

	if !r.AllowsRole(p.Role) {
		return &Result{
			Decision: DecisionDenyRole,
			Reason:   fmt.Sprintf("role %s is not allowed by rule %q", p.Role, r.Label()),
			Path:     path,
			Rule:     r,
			Redirect: &Redirect{To: g.config.UnauthorizedPath, From: path},
		}
	}

	if missing := p.Permissions.Missing(r.RequiredPermissions); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		return &Result{
			Decision: DecisionDenyPermission,
			Reason:   fmt.Sprintf("missing permissions %s for rule %q", strings.Join(names, ", "), r.Label()),
			Path:     path,
			Rule:     r,
			Redirect: &Redirect{To: g.config.UnauthorizedPath, From: path},
		}
	}

	return &Result{
		Allowed:  true,
		Decision: DecisionAllow,
		Reason:   fmt.Sprintf("rule %q satisfied", r.Label()),
		Path:     path,
		Rule:     r,
	}
}

// Check evaluates path for s and acts on the result: a denial is sent to the
// navigator, the decision is recorded in the check log when one is
// configured, and plugins are notified. Recording failures are logged and do
// not change the result.
func (g *Guard) Check(ctx context.Context, s *Session, path string) *Result {
	var p *principal.Principal
	if s != nil {
		p, _ = s.Principal()
	}
	res := g.EvaluatePrincipal(p, path)

	if res.Redirect != nil {
		g.navigator.Navigate(ctx, *res.Redirect)
	}

	g.logger.Debug("guard check",
		slog.String("path", path),
		slog.String("decision", string(res.Decision)),
		slog.Int64("eval_ns", res.EvalTimeNs),
	)

	if g.checkLogs != nil {
		if err := g.checkLogs.CreateCheckLog(ctx, g.entryFor(ctx, p, res)); err != nil {
			g.logger.Warn("record check log failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	if g.plugins != nil {
		g.plugins.EmitAfterGuard(ctx, path, res)
	}
	return res
}

func (g *Guard) entryFor(ctx context.Context, p *principal.Principal, res *Result) *checklog.Entry {
	scope := scopeFromContext(ctx)
	e := &checklog.Entry{
		ID:         id.NewCheckLogID(),
		TenantID:   scope.tenantID,
		AppID:      scope.appID,
		Path:       res.Path,
		Decision:   string(res.Decision),
		Reason:     res.Reason,
		EvalTimeNs: res.EvalTimeNs,
		CreatedAt:  time.Now().UTC(),
	}
	if p != nil {
		e.PrincipalID = p.ID
		e.Role = p.Role.String()
	}
	if res.Rule != nil {
		e.Rule = res.Rule.Pattern
	}
	if res.Redirect != nil {
		e.RedirectTo = res.Redirect.URL()
	}
	return e
}

// Rules returns the guard's rules, most specific first.
func (g *Guard) Rules() []rule.Rule { return g.rules.Rules() }

// Config returns the guard's effective configuration.
func (g *Guard) Config() Config { return g.config }
