package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/store"
)

// DefaultCategory is applied when a complaint is filed without one and the
// advisory suggestion is unavailable.
const DefaultCategory = "General"

// ComplaintService owns the complaint lifecycle: creation, edits, status
// transitions and the append-only audit log. Transitions are permissive —
// any status may follow any other — matching how the portal's employees
// actually work (including reopening resolved complaints).
type ComplaintService struct {
	store store.RecordStore
}

func NewComplaintService(s store.RecordStore) *ComplaintService {
	return &ComplaintService{store: s}
}

type CreateComplaintInput struct {
	Title       string
	Description string
	Category    string
	Image       string
	VoiceNote   string
}

// Create files a new complaint for the given citizen. Status starts at
// Pending and the log opens with a "Complaint Raised" entry, so the history
// is never empty.
func (s *ComplaintService) Create(ctx context.Context, in CreateComplaintInput, creator models.User) (models.Complaint, error) {
	now := time.Now().UTC()
	category := in.Category
	if category == "" {
		category = DefaultCategory
	}

	cp := models.Complaint{
		ID:          uuid.NewString(),
		UserID:      creator.ID,
		UserName:    creator.Name,
		Title:       in.Title,
		Description: in.Description,
		Category:    category,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Image:       in.Image,
		VoiceNote:   in.VoiceNote,
		Logs: []models.ComplaintLog{
			{
				ID:        uuid.NewString(),
				Timestamp: now,
				Action:    "Complaint Raised",
				ByUser:    creator.Name,
			},
		},
	}

	if err := s.store.SaveComplaint(ctx, cp); err != nil {
		return models.Complaint{}, err
	}
	logger.WithComplaint(cp.ID).Info("Complaint created", map[string]interface{}{
		"category": cp.Category,
		"user_id":  cp.UserID,
	})
	return cp, nil
}

// Save upserts a full complaint record. The caller is responsible for
// setting UpdatedAt.
func (s *ComplaintService) Save(ctx context.Context, cp models.Complaint) error {
	return s.store.SaveComplaint(ctx, cp)
}

// Get returns the complaint with the given id, or store.ErrNotFound.
func (s *ComplaintService) Get(ctx context.Context, id string) (models.Complaint, error) {
	complaints, err := s.store.Complaints(ctx)
	if err != nil {
		return models.Complaint{}, err
	}
	for _, cp := range complaints {
		if cp.ID == id {
			return cp, nil
		}
	}
	return models.Complaint{}, fmt.Errorf("%w: complaint %s", store.ErrNotFound, id)
}

// AppendLog adds one entry to a complaint's history and bumps UpdatedAt.
// An unknown complaint id is a reported failure, not a silent no-op.
func (s *ComplaintService) AppendLog(ctx context.Context, complaintID, action, byUser, note string) (models.Complaint, error) {
	cp, err := s.Get(ctx, complaintID)
	if err != nil {
		return models.Complaint{}, err
	}

	now := time.Now().UTC()
	cp.Logs = append(cp.Logs, models.ComplaintLog{
		ID:        uuid.NewString(),
		Timestamp: now,
		Action:    action,
		ByUser:    byUser,
		Note:      note,
	})
	cp.UpdatedAt = now

	if err := s.store.SaveComplaint(ctx, cp); err != nil {
		return models.Complaint{}, err
	}
	return cp, nil
}

// UpdateStatus moves a complaint to the given status and records the change
// in the log. When the actor is an employee, acting on the complaint also
// claims it: AssignedTo is set to the actor, which removes it from other
// employees' auto-routed queues.
func (s *ComplaintService) UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus, actor models.User, note string) (models.Complaint, error) {
	cp, err := s.Get(ctx, complaintID)
	if err != nil {
		return models.Complaint{}, err
	}

	now := time.Now().UTC()
	cp.Status = status
	cp.UpdatedAt = now
	if actor.Role == models.RoleEmployee {
		cp.AssignedTo = actor.ID
	}
	cp.Logs = append(cp.Logs, models.ComplaintLog{
		ID:        uuid.NewString(),
		Timestamp: now,
		Action:    fmt.Sprintf("Status Update: %s", status),
		ByUser:    actor.Name,
		Note:      note,
	})

	if err := s.store.SaveComplaint(ctx, cp); err != nil {
		return models.Complaint{}, err
	}
	logger.WithComplaint(cp.ID).Info("Complaint status updated", map[string]interface{}{
		"status":   string(status),
		"actor_id": actor.ID,
	})
	return cp, nil
}

// ListAll returns every complaint, newest first.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.Complaint, error) {
	return s.store.Complaints(ctx)
}

// ListForUser returns the complaints a citizen filed.
func (s *ComplaintService) ListForUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	complaints, err := s.store.Complaints(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Complaint, 0, len(complaints))
	for _, cp := range complaints {
		if cp.UserID == userID {
			mine = append(mine, cp)
		}
	}
	return mine, nil
}

// ListForEmployee returns the complaints in an employee's queue: those
// assigned to them, plus unassigned ones whose category matches their
// department. The latter is the auto-routing rule — an unclaimed complaint
// is implicitly queued to every employee of the matching department until
// one of them claims it.
func (s *ComplaintService) ListForEmployee(ctx context.Context, employeeID, department string) ([]models.Complaint, error) {
	complaints, err := s.store.Complaints(ctx)
	if err != nil {
		return nil, err
	}
	queue := make([]models.Complaint, 0, len(complaints))
	for _, cp := range complaints {
		if cp.AssignedTo == employeeID || (cp.AssignedTo == "" && cp.Category == department) {
			queue = append(queue, cp)
		}
	}
	return queue, nil
}

// Delete removes a complaint record. Not part of any portal flow today.
func (s *ComplaintService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteComplaint(ctx, id)
}

// Stats aggregates complaint counts by status. Pure computation over the
// slice the caller already scoped (own complaints, queue, or all).
func Stats(complaints []models.Complaint) models.DashboardStats {
	stats := models.DashboardStats{Total: len(complaints)}
	for _, cp := range complaints {
		switch cp.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusResolved:
			stats.Resolved++
		}
	}
	return stats
}
