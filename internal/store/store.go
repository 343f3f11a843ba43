package store

import (
	"context"
	"errors"

	"github.com/civicdesk/backend/internal/models"
)

// Storage keys for the three persisted entries. The users and complaints
// entries hold whole collections serialized as JSON arrays; the session
// entry holds a single user record or is absent.
const (
	usersKey       = "civic_users"
	complaintsKey  = "civic_complaints"
	currentUserKey = "civic_current_user"
)

var (
	// ErrStorageUnavailable means the durable medium could not be read or
	// written. Callers must surface a "not saved" signal; no retries happen
	// at this layer.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound means a record id lookup missed during an update.
	ErrNotFound = errors.New("record not found")
)

// RecordStore is the persistence contract shared by the local and remote
// backends. Whole-collection reads and id-keyed upserts are the only
// primitives; every higher-level write funnels through SaveUser or
// SaveComplaint. Reads always hit the medium, so callers see the latest
// committed state without any cache layer in between.
type RecordStore interface {
	// Initialize seeds the users and complaints collections the first time
	// the store is observed empty. Idempotent.
	Initialize(ctx context.Context) error

	// Ping reports whether the medium is reachable.
	Ping(ctx context.Context) error

	Users(ctx context.Context) ([]models.User, error)
	Complaints(ctx context.Context) ([]models.Complaint, error)

	// SaveUser upserts by id, appending new users to the end.
	SaveUser(ctx context.Context, u models.User) error

	// SaveComplaint upserts by id, prepending new complaints so the
	// collection stays newest-first for display.
	SaveComplaint(ctx context.Context, cp models.Complaint) error

	DeleteUser(ctx context.Context, id string) error
	DeleteComplaint(ctx context.Context, id string) error

	// CurrentUser returns the session pointer, or nil when no session is
	// active.
	CurrentUser(ctx context.Context) (*models.User, error)
	SetCurrentUser(ctx context.Context, u models.User) error
	ClearCurrentUser(ctx context.Context) error
}
