package rule

import (
	"testing"

	"github.com/xraph/keeper/principal"
)

func TestTableLongestPrefixWins(t *testing.T) {
	tbl := MustNewTable(
		Rule{Pattern: "/admin", AllowedRoles: []principal.Role{principal.RoleAdmin}},
		Rule{Pattern: "/admin/settings", AllowedRoles: []principal.Role{principal.RoleAdmin, principal.RoleAuditor}},
	)

	tests := []struct {
		path    string
		want    string
		matched bool
	}{
		{"/admin/settings/x", "/admin/settings", true},
		{"/admin/settings", "/admin/settings", true},
		{"/admin/other", "/admin", true},
		{"/admin", "/admin", true},
		{"/public", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := tbl.Match(tt.path)
			if ok != tt.matched {
				t.Fatalf("Match(%q) matched=%v, want %v", tt.path, ok, tt.matched)
			}
			if ok && r.Pattern != tt.want {
				t.Fatalf("Match(%q) = %q, want %q", tt.path, r.Pattern, tt.want)
			}
		})
	}
}

func TestTableMatchingOrder(t *testing.T) {
	tbl := MustNewTable(
		Rule{Pattern: "/a", AllowedRoles: []principal.Role{principal.RoleGuest}},
		Rule{Pattern: "/a/b/c", AllowedRoles: []principal.Role{principal.RoleGuest}},
		Rule{Pattern: "/a/b", AllowedRoles: []principal.Role{principal.RoleGuest}},
	)
	got := tbl.Matching("/a/b/c/d")
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	for i, want := range []string{"/a/b/c", "/a/b", "/a"} {
		if got[i].Pattern != want {
			t.Fatalf("match %d = %q, want %q", i, got[i].Pattern, want)
		}
	}
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{"empty pattern", []Rule{{AllowedRoles: []principal.Role{principal.RoleAdmin}}}},
		{"no roles", []Rule{{Pattern: "/x"}}},
		{"invalid role", []Rule{{Pattern: "/x", AllowedRoles: []principal.Role{0}}}},
		{"duplicate", []Rule{
			{Pattern: "/x", AllowedRoles: []principal.Role{principal.RoleAdmin}},
			{Pattern: "/x", AllowedRoles: []principal.Role{principal.RoleGuest}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.rules...); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestTableReturnsCopies(t *testing.T) {
	tbl := MustNewTable(Rule{Pattern: "/x", AllowedRoles: []principal.Role{principal.RoleAdmin}})
	r, _ := tbl.Match("/x")
	r.AllowedRoles[0] = principal.RoleGuest
	again, _ := tbl.Match("/x")
	if again.AllowedRoles[0] != principal.RoleAdmin {
		t.Fatal("table was mutated through a returned rule")
	}
}

func TestDefaults(t *testing.T) {
	tbl := Defaults()
	r, ok := tbl.Match("/admin/users")
	if !ok || r.Name != "admin" {
		t.Fatalf("expected admin rule, got %+v", r)
	}
	if !r.RequiredPermissions.Has("admin.access") {
		t.Fatal("admin rule must require admin.access")
	}
	if _, ok := tbl.Match("/marketplace"); ok {
		t.Fatal("marketplace is public")
	}
}
