package principal

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"auditor", RoleAuditor},
		{"projectOwner", RoleProjectOwner},
		{"project_owner", RoleProjectOwner},
		{"serviceProvider", RoleServiceProvider},
		{"SERVICE_PROVIDER", RoleServiceProvider},
		{" guest ", RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("ParseRole(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestRoleIn(t *testing.T) {
	if !RoleAuditor.In(RoleAdmin, RoleAuditor) {
		t.Fatal("auditor should be in [admin auditor]")
	}
	if RoleProjectOwner.In(RoleAdmin, RoleAuditor) {
		t.Fatal("projectOwner should not be in [admin auditor]")
	}
	if RoleGuest.In() {
		t.Fatal("no role is in an empty list")
	}
}

func TestRoleMarshalInvalid(t *testing.T) {
	var r Role
	if _, err := r.MarshalText(); err == nil {
		t.Fatal("expected error marshalling zero role")
	}
}

func TestPermissionSet(t *testing.T) {
	s := NewPermissionSet("admin.access", "users.manage", "admin.access", "")
	if len(s) != 2 {
		t.Fatalf("expected 2 unique tokens, got %d", len(s))
	}
	if !s.Has("admin.access") {
		t.Fatal("expected admin.access")
	}
	if s.Has("admin") || s.Has("admin.*") {
		t.Fatal("permission matching must be exact")
	}
	if !s.ContainsAll(NewPermissionSet("users.manage")) {
		t.Fatal("expected superset")
	}
	if s.ContainsAll(NewPermissionSet("users.manage", "audits.view")) {
		t.Fatal("expected not a superset")
	}
	if got := s.Missing(NewPermissionSet("b", "a", "users.manage")); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected missing set %v", got)
	}
}

func TestPrincipalJSON(t *testing.T) {
	p := &Principal{
		ID:            "prin_1",
		DisplayName:   "Ada",
		ContactHandle: "ada@hawkly.io",
		Role:          RoleProjectOwner,
		Permissions:   NewPermissionSet("projects.manage", "audits.request"),
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"prin_1","display_name":"Ada","contact_handle":"ada@hawkly.io","role":"projectOwner","permissions":["audits.request","projects.manage"]}`
	if string(data) != want {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", data, want)
	}

	var back Principal
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(p) {
		t.Fatalf("decoded principal differs: %+v", back)
	}
}

func TestPrincipalCloneIsIndependent(t *testing.T) {
	p := &Principal{ID: "prin_1", ContactHandle: "a@b.c", Role: RoleGuest, Permissions: NewPermissionSet("x")}
	cp := p.Clone()
	cp.Permissions.Add("y")
	if p.HasPermission("y") {
		t.Fatal("clone shares permission set with original")
	}
}

func TestPrincipalValidate(t *testing.T) {
	if err := (&Principal{ID: "1", ContactHandle: "a@b.c", Role: RoleAdmin}).Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (&Principal{ID: "1", ContactHandle: "a@b.c"}).Validate(); err == nil {
		t.Fatal("expected error for missing role")
	}
	if err := (&Principal{ContactHandle: "a@b.c", Role: RoleAdmin}).Validate(); err == nil {
		t.Fatal("expected error for missing id")
	}
}
