// Package keeper provides a single-user access-control session and a
// route guard for hosts that gate navigation by role and permission.
//
// A Session owns the current principal: it verifies credentials against a
// credential.Directory, persists the principal to a snapshot.Store so it
// survives restarts, and answers role and permission queries. A Guard maps
// route prefixes to rules and decides, on every navigation, whether the
// session may proceed or must be redirected.
//
//	sess, err := keeper.NewSession(
//	    keeper.WithDirectory(credential.Demo()),
//	    keeper.WithSnapshotStore(memory.New()),
//	)
//	ok, err := sess.Login(ctx, "admin@hawkly.io", "password")
//
//	guard, err := keeper.NewGuard(keeper.WithRules(rule.Defaults()))
//	res := guard.Check(ctx, sess, "/admin/users")
package keeper

import "github.com/xraph/keeper/rule"

// Decision is the outcome of a guard evaluation.
type Decision string

const (
	// DecisionAllow means a rule matched and the principal satisfies it.
	DecisionAllow Decision = "allow"

	// DecisionAllowUnmatched means no rule matched and the default-open
	// policy let the request through, authenticated or not.
	DecisionAllowUnmatched Decision = "allow_unmatched"

	// DecisionDenyUnauthenticated means the path requires a principal and
	// none is present.
	DecisionDenyUnauthenticated Decision = "deny_unauthenticated"

	// DecisionDenyRole means the principal's role is not allowed by the rule.
	DecisionDenyRole Decision = "deny_role"

	// DecisionDenyPermission means the principal lacks a required permission.
	DecisionDenyPermission Decision = "deny_permission"
)

// Result is the outcome of evaluating a path.
type Result struct {
	Allowed    bool       `json:"allowed"`
	Decision   Decision   `json:"decision"`
	Reason     string     `json:"reason,omitempty"`
	Path       string     `json:"path"`
	Rule       *rule.Rule `json:"rule,omitempty"`
	Redirect   *Redirect  `json:"redirect,omitempty"`
	EvalTimeNs int64      `json:"eval_time_ns"`
}
