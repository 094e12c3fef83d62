package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/keeper/checklog"
	"github.com/xraph/keeper/id"
)

// ──────────────────────────────────────────────────
// Snapshot model
// ──────────────────────────────────────────────────

type snapshotModel struct {
	grove.BaseModel `grove:"table:keeper_snapshots"`
	Key             string    `grove:"snapshot_key,pk"`
	Data            []byte    `grove:"data,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

// ──────────────────────────────────────────────────
// Check log model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:keeper_check_logs"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	AppID           string    `grove:"app_id,notnull"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	Role            string    `grove:"role,notnull"`
	Path            string    `grove:"path,notnull"`
	Rule            string    `grove:"rule,notnull"`
	Decision        string    `grove:"decision,notnull"`
	Reason          string    `grove:"reason"`
	RedirectTo      string    `grove:"redirect_to"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) *checkLogModel {
	return &checkLogModel{
		ID:          e.ID.String(),
		TenantID:    e.TenantID,
		AppID:       e.AppID,
		PrincipalID: e.PrincipalID,
		Role:        e.Role,
		Path:        e.Path,
		Rule:        e.Rule,
		Decision:    e.Decision,
		Reason:      e.Reason,
		RedirectTo:  e.RedirectTo,
		EvalTimeNs:  e.EvalTimeNs,
		CreatedAt:   e.CreatedAt,
	}
}

func checkLogFromModel(m *checkLogModel) *checklog.Entry {
	clid, _ := id.ParseCheckLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &checklog.Entry{
		ID:          clid,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		PrincipalID: m.PrincipalID,
		Role:        m.Role,
		Path:        m.Path,
		Rule:        m.Rule,
		Decision:    m.Decision,
		Reason:      m.Reason,
		RedirectTo:  m.RedirectTo,
		EvalTimeNs:  m.EvalTimeNs,
		CreatedAt:   m.CreatedAt,
	}
}
