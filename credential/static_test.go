package credential

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xraph/keeper/principal"
)

func TestStaticLookupCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	d := Demo()

	for _, handle := range []string{"admin@hawkly.io", "Admin@Hawkly.IO", "  ADMIN@HAWKLY.IO "} {
		e, err := d.Lookup(ctx, handle)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", handle, err)
		}
		if e.Principal.Role != principal.RoleAdmin {
			t.Fatalf("Lookup(%q) role = %s", handle, e.Principal.Role)
		}
	}

	_, err := d.Lookup(ctx, "nobody@hawkly.io")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaticLookupReturnsCopy(t *testing.T) {
	ctx := context.Background()
	d := Demo()
	e, _ := d.Lookup(ctx, "guest@hawkly.io")
	e.Principal.Permissions.Add("admin.access")

	again, _ := d.Lookup(ctx, "guest@hawkly.io")
	if again.Principal.HasPermission("admin.access") {
		t.Fatal("directory entry mutated through lookup result")
	}
}

func TestNewStaticRejectsDuplicates(t *testing.T) {
	p := principal.Principal{ID: "1", ContactHandle: "a@b.c", Role: principal.RoleGuest}
	q := principal.Principal{ID: "2", ContactHandle: "A@B.C", Role: principal.RoleGuest}
	if _, err := NewStatic(Entry{Principal: p, Secret: "x"}, Entry{Principal: q, Secret: "y"}); err == nil {
		t.Fatal("expected duplicate handle error")
	}
}

func TestNewStaticRejectsMissingSecret(t *testing.T) {
	p := principal.Principal{ID: "1", ContactHandle: "a@b.c", Role: principal.RoleGuest}
	if _, err := NewStatic(Entry{Principal: p}); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestEntryVerify(t *testing.T) {
	plain := &Entry{Secret: "s3cret"}
	if !plain.Verify("s3cret") || plain.Verify("S3CRET") || plain.Verify("") {
		t.Fatal("plain secret comparison is wrong")
	}

	hash, err := HashSecret("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	hashed := &Entry{SecretHash: hash, Secret: "ignored"}
	if !hashed.Verify("hunter2") {
		t.Fatal("expected bcrypt match")
	}
	if hashed.Verify("ignored") {
		t.Fatal("hash must take precedence over plain secret")
	}

	if (&Entry{}).Verify("") {
		t.Fatal("an entry without secrets must never verify")
	}
}

func TestNewStaticGeneratesMissingID(t *testing.T) {
	p := principal.Principal{ContactHandle: "a@b.c", Role: principal.RoleGuest}
	d, err := NewStatic(Entry{Principal: p, Secret: "x"})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := d.Lookup(context.Background(), "a@b.c")
	if !strings.HasPrefix(e.Principal.ID, "prin_") {
		t.Fatalf("expected generated prin_ id, got %q", e.Principal.ID)
	}

	again, _ := d.Lookup(context.Background(), "a@b.c")
	if again.Principal.ID != e.Principal.ID {
		t.Fatal("generated id must be stable for the directory's lifetime")
	}
}
