package models

import "time"

type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

// ValidStatus reports whether s is one of the three complaint statuses.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

type Complaint struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	UserName    string          `json:"userName"`
	AssignedTo  string          `json:"assignedTo,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Image       string          `json:"image,omitempty"`
	VoiceNote   string          `json:"voiceNote,omitempty"`
	Logs        []ComplaintLog  `json:"logs"`
}

// ComplaintLog is a single entry in a complaint's append-only history.
// Entries are never reordered or removed once written.
type ComplaintLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ByUser    string    `json:"byUser"`
	Note      string    `json:"note,omitempty"`
}

type DashboardStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}
