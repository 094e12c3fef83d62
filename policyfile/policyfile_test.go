package policyfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/id"
	"github.com/xraph/keeper/principal"
	"github.com/xraph/keeper/rule"
	"github.com/xraph/keeper/store/memory"
)

const yamlDoc = `
config:
  login_path: /signin
  login_delay: 250ms
  unmatched_policy: require_auth
rules:
  - name: admin area
    pattern: /admin
    allowed_roles: [admin]
    required_permissions: [admin.access]
  - pattern: /admin/reports
    allowed_roles: [admin, auditor]
users:
  - principal:
      id: prin_01jb8x6c2zf3q9v0a1b2c3d4f0
      display_name: Ops
      contact_handle: Ops@Example.com
      role: admin
      permissions: [admin.access, users.manage]
    secret: s3cret
  - principal:
      id: prin_01jb8x6c2zf3q9v0a1b2c3d4f1
      contact_handle: reviewer@example.com
      role: auditor
      permissions: [audits.view]
    secret: r3view
`

const tomlDoc = `
[config]
login_path = "/signin"
login_delay = "250ms"
unmatched_policy = "require_auth"

[[rules]]
name = "admin area"
pattern = "/admin"
allowed_roles = ["admin"]
required_permissions = ["admin.access"]

[[rules]]
pattern = "/admin/reports"
allowed_roles = ["admin", "auditor"]

[[users]]
secret = "s3cret"

[users.principal]
id = "prin_01jb8x6c2zf3q9v0a1b2c3d4f0"
display_name = "Ops"
contact_handle = "Ops@Example.com"
role = "admin"
permissions = ["admin.access", "users.manage"]

[[users]]
secret = "r3view"

[users.principal]
id = "prin_01jb8x6c2zf3q9v0a1b2c3d4f1"
contact_handle = "reviewer@example.com"
role = "auditor"
permissions = ["audits.view"]
`

func checkDocument(t *testing.T, doc *Document) {
	t.Helper()
	require.Equal(t, "/signin", doc.Config.LoginPath)
	require.Equal(t, 250*time.Millisecond, doc.Config.LoginDelay)
	require.Equal(t, keeper.UnmatchedRequireAuth, doc.Config.UnmatchedPolicy)

	require.Len(t, doc.Rules, 2)
	require.Equal(t, "admin area", doc.Rules[0].Name)
	require.Equal(t, []principal.Role{principal.RoleAdmin}, doc.Rules[0].AllowedRoles)
	require.True(t, doc.Rules[0].RequiredPermissions.Has("admin.access"))
	require.Equal(t, []principal.Role{principal.RoleAdmin, principal.RoleAuditor}, doc.Rules[1].AllowedRoles)

	require.Len(t, doc.Users, 2)
	require.Equal(t, principal.RoleAdmin, doc.Users[0].Principal.Role)
	require.True(t, doc.Users[0].Principal.HasPermission("users.manage"))
	require.Equal(t, "s3cret", doc.Users[0].Secret)
}

func TestParseYAML(t *testing.T) {
	doc, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	checkDocument(t, doc)
}

func TestParseTOML(t *testing.T) {
	doc, err := Parse([]byte(tomlDoc), FormatTOML)
	require.NoError(t, err)
	checkDocument(t, doc)
}

func TestRoundTrip(t *testing.T) {
	orig, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(orig, format)
			require.NoError(t, err)
			back, err := Parse(data, format)
			require.NoError(t, err, string(data))
			require.Equal(t, orig, back)
		})
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown role":     "rules:\n  - pattern: /x\n    allowed_roles: [emperor]\n",
		"empty roles":      "rules:\n  - pattern: /x\n    allowed_roles: []\n",
		"duplicate rule":   "rules:\n  - {pattern: /x, allowed_roles: [admin]}\n  - {pattern: /x, allowed_roles: [guest]}\n",
		"unknown field":    "colour: blue\n",
		"bad policy":       "config:\n  unmatched_policy: sometimes\n",
		"user sans secret": "users:\n  - principal: {id: p1, contact_handle: a@b.c, role: guest}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), FormatYAML)
			require.Error(t, err)
		})
	}

	_, err := Parse([]byte("mystery = 1\n"), FormatTOML)
	require.Error(t, err)
}

func TestEmptyDocumentFallsBackToDefaults(t *testing.T) {
	doc, err := Parse(nil, FormatYAML)
	require.NoError(t, err)

	table, err := doc.RuleTable()
	require.NoError(t, err)
	require.Equal(t, rule.Defaults().Len(), table.Len())

	dir, err := doc.Directory()
	require.NoError(t, err)
	require.Equal(t, credential.Demo().Len(), dir.Len())
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "keeper.yml")
	tml := filepath.Join(dir, "keeper.toml")
	require.NoError(t, os.WriteFile(yml, []byte(yamlDoc), 0o600))
	require.NoError(t, os.WriteFile(tml, []byte(tomlDoc), 0o600))

	for _, p := range []string{yml, tml} {
		doc, err := Load(p)
		require.NoError(t, err, p)
		checkDocument(t, doc)
	}

	_, err := Load(filepath.Join(dir, "keeper.ini"))
	require.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestOptionsBuildWorkingSession(t *testing.T) {
	doc, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	opts, err := doc.Options()
	require.NoError(t, err)

	guard, err := keeper.NewGuard(opts...)
	require.NoError(t, err)
	require.Equal(t, "/signin", guard.Config().LoginPath)

	res := guard.Evaluate(nil, "/admin/reports/q1")
	require.Equal(t, keeper.DecisionDenyUnauthenticated, res.Decision)
	require.Equal(t, "/admin/reports", res.Rule.Pattern)
}

func TestUserWithoutIDGetsGeneratedID(t *testing.T) {
	src := "users:\n  - principal: {contact_handle: new@example.com, role: guest}\n    secret: pw\n"
	doc, err := Parse([]byte(src), FormatYAML)
	require.NoError(t, err)
	opts, err := doc.Options()
	require.NoError(t, err)

	s, err := keeper.NewSession(append(opts, keeper.WithSnapshotStore(memory.New()))...)
	require.NoError(t, err)
	ok, err := s.Login(context.Background(), "new@example.com", "pw")
	require.NoError(t, err)
	require.True(t, ok)

	p, _ := s.Principal()
	parsed, err := id.ParseWithPrefix(p.ID, id.PrefixPrincipal)
	require.NoError(t, err)
	require.False(t, parsed.IsNil())
}
