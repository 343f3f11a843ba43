package services

import (
	"context"
	"errors"
	"testing"

	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/store"
)

var (
	testCitizen  = models.User{ID: "u1", Name: "John Citizen", Role: models.RoleCitizen}
	testEmployee = models.User{ID: "e1", Name: "Sarah Engineer", Role: models.RoleEmployee, Department: "Roads"}
)

func TestCreateComplaintDefaults(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))
	ctx := context.Background()

	cp, err := complaints.Create(ctx, CreateComplaintInput{
		Title:       "Large Pothole on Main St",
		Description: "Massive pothole near the bakery.",
		Category:    "Roads",
	}, testCitizen)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if cp.Status != models.StatusPending {
		t.Errorf("New complaint must start Pending, got %s", cp.Status)
	}
	if cp.UserID != "u1" || cp.UserName != "John Citizen" {
		t.Errorf("Owner not denormalized: %+v", cp)
	}
	if len(cp.Logs) != 1 {
		t.Fatalf("Expected exactly one initial log entry, got %d", len(cp.Logs))
	}
	if cp.Logs[0].Action != "Complaint Raised" || cp.Logs[0].ByUser != "John Citizen" {
		t.Errorf("Unexpected initial log entry: %+v", cp.Logs[0])
	}
	if !cp.CreatedAt.Equal(cp.UpdatedAt) {
		t.Errorf("CreatedAt and UpdatedAt must match at creation: %v vs %v", cp.CreatedAt, cp.UpdatedAt)
	}
	if cp.AssignedTo != "" {
		t.Errorf("New complaint must be unassigned, got %q", cp.AssignedTo)
	}
}

func TestCreateComplaintDefaultsCategory(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))

	cp, err := complaints.Create(context.Background(), CreateComplaintInput{
		Title:       "Something odd",
		Description: "Hard to classify.",
	}, testCitizen)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cp.Category != DefaultCategory {
		t.Errorf("Expected category %q, got %q", DefaultCategory, cp.Category)
	}
}

func TestAppendLogIsMonotonic(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))
	ctx := context.Background()

	cp, err := complaints.Create(ctx, CreateComplaintInput{Title: "t", Description: "d", Category: "Roads"}, testCitizen)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	firstLog := cp.Logs[0]

	updated, err := complaints.AppendLog(ctx, cp.ID, "Inspected on site", "Sarah Engineer", "crew dispatched")
	if err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}

	if len(updated.Logs) != len(cp.Logs)+1 {
		t.Fatalf("Log length must grow by exactly one: %d -> %d", len(cp.Logs), len(updated.Logs))
	}
	if updated.Logs[0].ID != firstLog.ID || updated.Logs[0].Action != firstLog.Action || !updated.Logs[0].Timestamp.Equal(firstLog.Timestamp) {
		t.Errorf("Earlier log entries must never mutate: %+v", updated.Logs[0])
	}
	last := updated.Logs[len(updated.Logs)-1]
	if last.Action != "Inspected on site" || last.Note != "crew dispatched" {
		t.Errorf("Unexpected appended entry: %+v", last)
	}
	if !updated.UpdatedAt.After(cp.UpdatedAt) {
		t.Errorf("UpdatedAt must strictly increase: %v -> %v", cp.UpdatedAt, updated.UpdatedAt)
	}
}

func TestAppendLogUnknownComplaint(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))

	_, err := complaints.AppendLog(context.Background(), "missing", "action", "nobody", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown complaint, got %v", err)
	}
}

func TestAutoRoutingByDepartment(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))
	ctx := context.Background()

	cp, err := complaints.Create(ctx, CreateComplaintInput{Title: "Pothole", Description: "d", Category: "Roads"}, testCitizen)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Unassigned Roads complaint shows up for every Roads employee.
	for _, employeeID := range []string{"e1", "e9"} {
		queue, err := complaints.ListForEmployee(ctx, employeeID, "Roads")
		if err != nil {
			t.Fatalf("ListForEmployee failed: %v", err)
		}
		if len(queue) != 1 || queue[0].ID != cp.ID {
			t.Errorf("Expected complaint in %s's Roads queue, got %+v", employeeID, queue)
		}
	}

	// But not for other departments.
	queue, _ := complaints.ListForEmployee(ctx, "e2", "Sanitation")
	if len(queue) != 0 {
		t.Errorf("Roads complaint leaked into the Sanitation queue: %+v", queue)
	}

	// Claiming it removes it from everyone else's queue.
	if _, err := complaints.UpdateStatus(ctx, cp.ID, models.StatusInProgress, testEmployee, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	queue, _ = complaints.ListForEmployee(ctx, "e9", "Roads")
	if len(queue) != 0 {
		t.Errorf("Claimed complaint still in another employee's queue: %+v", queue)
	}
	queue, _ = complaints.ListForEmployee(ctx, "e1", "Roads")
	if len(queue) != 1 {
		t.Errorf("Claimed complaint missing from the claimer's queue: %+v", queue)
	}
}

func TestUpdateStatusClaimsForEmployee(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))
	ctx := context.Background()

	cp, _ := complaints.Create(ctx, CreateComplaintInput{Title: "t", Description: "d", Category: "Roads"}, testCitizen)

	updated, err := complaints.UpdateStatus(ctx, cp.ID, models.StatusInProgress, testEmployee, "on it")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.StatusInProgress {
		t.Errorf("Expected In Progress, got %s", updated.Status)
	}
	if updated.AssignedTo != testEmployee.ID {
		t.Errorf("Employee status change must claim the complaint, got %q", updated.AssignedTo)
	}
	last := updated.Logs[len(updated.Logs)-1]
	if last.Action != "Status Update: In Progress" || last.ByUser != "Sarah Engineer" || last.Note != "on it" {
		t.Errorf("Unexpected status log entry: %+v", last)
	}

	// Reopening is legal: any status can follow any other.
	reopened, err := complaints.UpdateStatus(ctx, cp.ID, models.StatusPending, testEmployee, "needs rework")
	if err != nil {
		t.Fatalf("UpdateStatus (reopen) failed: %v", err)
	}
	if reopened.Status != models.StatusPending {
		t.Errorf("Expected reopen to Pending, got %s", reopened.Status)
	}
}

func TestUpdateStatusByAdminDoesNotClaim(t *testing.T) {
	complaints := NewComplaintService(newTestStore(t))
	ctx := context.Background()

	admin := models.User{ID: "a1", Name: "Admin User", Role: models.RoleAdmin}
	cp, _ := complaints.Create(ctx, CreateComplaintInput{Title: "t", Description: "d", Category: "Roads"}, testCitizen)

	updated, err := complaints.UpdateStatus(ctx, cp.ID, models.StatusResolved, admin, "")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.AssignedTo != "" {
		t.Errorf("Admin status change must not claim the complaint, got %q", updated.AssignedTo)
	}
}

func TestStats(t *testing.T) {
	complaints := []models.Complaint{
		{ID: "c1", Status: models.StatusPending},
		{ID: "c2", Status: models.StatusPending},
		{ID: "c3", Status: models.StatusResolved},
	}

	stats := Stats(complaints)
	want := models.DashboardStats{Total: 3, Pending: 2, InProgress: 0, Resolved: 1}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}

	if empty := Stats(nil); empty != (models.DashboardStats{}) {
		t.Errorf("Expected zero stats for no complaints, got %+v", empty)
	}
}

func TestCitizenComplaintJourney(t *testing.T) {
	st := newTestStore(t)
	identity := NewIdentityService(st)
	complaints := NewComplaintService(st)
	ctx := context.Background()

	alice, err := identity.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := identity.Login(ctx, "alice@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	created, err := complaints.Create(ctx, CreateComplaintInput{
		Title:       "Broken streetlight",
		Description: "The light at 5th and Oak has been out for a week.",
		Category:    "Electricity",
	}, alice)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mine, err := complaints.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("Expected exactly one complaint, got %d", len(mine))
	}
	if mine[0].Status != models.StatusPending || len(mine[0].Logs) != 1 {
		t.Errorf("Fresh complaint should be Pending with one log entry: %+v", mine[0])
	}

	bob := models.User{ID: "e7", Name: "Bob", Role: models.RoleEmployee, Department: "Electricity"}
	if _, err := complaints.UpdateStatus(ctx, created.ID, models.StatusInProgress, bob, "dispatched"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	mine, _ = complaints.ListForUser(ctx, alice.ID)
	if mine[0].Status != models.StatusInProgress {
		t.Errorf("Expected In Progress after update, got %s", mine[0].Status)
	}
	if len(mine[0].Logs) != 2 {
		t.Errorf("Expected 2 log entries after status update, got %d", len(mine[0].Logs))
	}
}
