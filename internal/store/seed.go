package store

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/civicdesk/backend/internal/models"
)

// DefaultSeedPassword is the development password shared by all seeded
// accounts. Override per deployment by re-registering or running cmd/seed
// with a fixture file.
const DefaultSeedPassword = "changeme123"

// SeedUsers returns the first-run user set: one citizen, two employees
// covering different departments, one admin. Passwords are bcrypt-hashed
// here so seeded accounts can log in through the normal credential check.
func SeedUsers() ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultSeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	pw := string(hash)

	return []models.User{
		{
			ID:       "u1",
			Name:     "John Citizen",
			Email:    "john@example.com",
			Password: pw,
			Role:     models.RoleCitizen,
			Avatar:   "https://picsum.photos/200",
		},
		{
			ID:         "e1",
			Name:       "Sarah Engineer",
			Email:      "sarah@civic.com",
			Password:   pw,
			Role:       models.RoleEmployee,
			Department: "Roads",
			Avatar:     "https://picsum.photos/201",
		},
		{
			ID:         "e2",
			Name:       "Mike Sanitation",
			Email:      "mike@civic.com",
			Password:   pw,
			Role:       models.RoleEmployee,
			Department: "Sanitation",
			Avatar:     "https://picsum.photos/202",
		},
		{
			ID:       "a1",
			Name:     "Admin User",
			Email:    "admin@civic.com",
			Password: pw,
			Role:     models.RoleAdmin,
			Avatar:   "https://picsum.photos/203",
		},
	}, nil
}

// SeedComplaints returns the first-run complaint set: one pending and one
// in-progress record with a populated log history, so both the list and
// detail views have data from day one.
func SeedComplaints() []models.Complaint {
	now := time.Now().UTC()
	twoDaysAgo := now.Add(-48 * time.Hour)
	fiveDaysAgo := now.Add(-120 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	return []models.Complaint{
		{
			ID:          "c1",
			UserID:      "u1",
			UserName:    "John Citizen",
			Title:       "Large Pothole on Main St",
			Description: "There is a massive pothole causing traffic slowdowns near the bakery.",
			Category:    "Roads",
			Status:      models.StatusPending,
			CreatedAt:   twoDaysAgo,
			UpdatedAt:   twoDaysAgo,
			Image:       "https://picsum.photos/seed/pothole/400/300",
			Logs: []models.ComplaintLog{
				{ID: "l1", Timestamp: twoDaysAgo, Action: "Created", ByUser: "John Citizen"},
			},
		},
		{
			ID:          "c2",
			UserID:      "u1",
			UserName:    "John Citizen",
			AssignedTo:  "e2",
			Title:       "Garbage not collected",
			Description: "The garbage truck skipped our street this Tuesday.",
			Category:    "Sanitation",
			Status:      models.StatusInProgress,
			CreatedAt:   fiveDaysAgo,
			UpdatedAt:   yesterday,
			Logs: []models.ComplaintLog{
				{ID: "l2", Timestamp: fiveDaysAgo, Action: "Created", ByUser: "John Citizen"},
				{ID: "l3", Timestamp: yesterday, Action: "Status Update: In Progress", ByUser: "Admin User", Note: "Assigned to Mike"},
			},
		},
	}
}
