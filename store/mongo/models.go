package mongo

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
	Key             string    `grove:"snapshot_key,pk" bson:"_id"`
	Data            []byte    `grove:"data"            bson:"data"`
	UpdatedAt       time.Time `grove:"updated_at"      bson:"updated_at"`
}

// ──────────────────────────────────────────────────
// Check log model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:keeper_check_logs"`
	ID              string    `grove:"id,pk"         bson:"_id"`
	TenantID        string    `grove:"tenant_id"     bson:"tenant_id"`
	AppID           string    `grove:"app_id"        bson:"app_id"`
	PrincipalID     string    `grove:"principal_id"  bson:"principal_id"`
	Role            string    `grove:"role"          bson:"role"`
	Path            string    `grove:"path"          bson:"path"`
	Rule            string    `grove:"rule"          bson:"rule"`
	Decision        string    `grove:"decision"      bson:"decision"`
	Reason          string    `grove:"reason"        bson:"reason"`
	RedirectTo      string    `grove:"redirect_to"   bson:"redirect_to"`
	EvalTimeNs      int64     `grove:"eval_time_ns"  bson:"eval_time_ns"`
	CreatedAt       time.Time `grove:"created_at"    bson:"created_at"`
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
