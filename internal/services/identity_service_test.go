package services

import (
	"context"
	"errors"
	"testing"

	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/store"
)

func newTestStore(t *testing.T) *store.Local {
	t.Helper()
	s, err := store.OpenLocal(store.LocalOptions{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterAndLoginRoundtrip(t *testing.T) {
	identity := NewIdentityService(newTestStore(t))
	ctx := context.Background()

	registered, err := identity.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Mobile:   "5551234",
		Address:  "12 Main St",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.Role != models.RoleCitizen {
		t.Errorf("Public registration must yield a citizen, got %s", registered.Role)
	}
	if registered.ID == "" {
		t.Error("Expected a generated id")
	}
	if registered.Avatar == "" {
		t.Error("Expected a generated avatar URL")
	}

	// Login with a different email casing must still resolve the account.
	user, err := identity.Login(ctx, "ALICE@Example.COM", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID || user.Mobile != "5551234" || user.Address != "12 Main St" {
		t.Errorf("Login returned wrong profile: %+v", user)
	}

	current, err := identity.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if current == nil || current.ID != registered.ID {
		t.Errorf("Expected session for registered user, got %+v", current)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	identity := NewIdentityService(newTestStore(t))
	ctx := context.Background()

	if _, err := identity.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := identity.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := identity.Login(ctx, "nobody@example.com", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	identity := NewIdentityService(st)
	ctx := context.Background()

	if _, err := identity.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []string{"alice@example.com", "ALICE@EXAMPLE.COM", "Alice@Example.com"}
	for _, email := range tests {
		if _, err := identity.Register(ctx, RegisterInput{Name: "Imposter", Email: email, Password: "other"}); !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists for %q, got %v", email, err)
		}
	}

	users, _ := st.Users(ctx)
	if len(users) != 1 {
		t.Errorf("Failed registrations must not add records, have %d users", len(users))
	}
}

func TestCheckEmailExists(t *testing.T) {
	identity := NewIdentityService(newTestStore(t))
	ctx := context.Background()

	exists, err := identity.CheckEmailExists(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("CheckEmailExists failed: %v", err)
	}
	if exists {
		t.Error("Empty store should not report any email")
	}

	identity.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})

	exists, _ = identity.CheckEmailExists(ctx, "AlIcE@exAmple.com")
	if !exists {
		t.Error("Expected case-insensitive match")
	}
}

func TestSaveUserRefreshesOwnSession(t *testing.T) {
	identity := NewIdentityService(newTestStore(t))
	ctx := context.Background()

	user, err := identity.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user.Name = "Alice Renamed"
	user.Mobile = "5559999"
	if err := identity.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	current, _ := identity.CurrentUser(ctx)
	if current == nil || current.Name != "Alice Renamed" || current.Mobile != "5559999" {
		t.Errorf("Session not refreshed after self-edit: %+v", current)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	identity := NewIdentityService(newTestStore(t))
	ctx := context.Background()

	identity.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})

	if err := identity.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	current, _ := identity.CurrentUser(ctx)
	if current != nil {
		t.Errorf("Expected no session after logout, got %+v", current)
	}
}

func TestEmployeesFiltersByRole(t *testing.T) {
	st := newTestStore(t)
	identity := NewIdentityService(st)
	ctx := context.Background()

	if err := st.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	employees, err := identity.Employees(ctx)
	if err != nil {
		t.Fatalf("Employees failed: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("Expected 2 seeded employees, got %d", len(employees))
	}
	for _, e := range employees {
		if e.Role != models.RoleEmployee {
			t.Errorf("Non-employee in employee listing: %+v", e)
		}
		if e.Department == "" {
			t.Errorf("Seeded employee %s has no department", e.ID)
		}
	}
}
