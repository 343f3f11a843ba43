package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/civicdesk/backend/internal/models"
)

// Remote proxies the RecordStore contract to another portal instance over
// HTTP with JSON bodies. It is a drop-in replacement for Local: the
// identity and complaint services never know which backend they run on.
//
// The session pointer stays on the local device even in remote mode, so
// Remote delegates the session entry to a local store.
type Remote struct {
	baseURL  string
	client   *http.Client
	sessions sessionStore
}

type sessionStore interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	SetCurrentUser(ctx context.Context, u models.User) error
	ClearCurrentUser(ctx context.Context) error
}

// NewRemote builds a remote store against baseURL. Sessions are kept in the
// given local session store. Request timeout comes from
// STORE_TIMEOUT_SECONDS, defaulting to 10s.
func NewRemote(baseURL string, sessions sessionStore) *Remote {
	timeout := 10 * time.Second
	if raw := os.Getenv("STORE_TIMEOUT_SECONDS"); raw != "" {
		if t, err := time.ParseDuration(raw + "s"); err == nil {
			timeout = t
		}
	}
	return &Remote{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		sessions: sessions,
	}
}

func (r *Remote) Initialize(ctx context.Context) error {
	// Seeding is the remote server's concern; observing it reachable is all
	// initialization means on this side.
	return r.Ping(ctx)
}

func (r *Remote) Ping(ctx context.Context) error {
	return r.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (r *Remote) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Remote) Complaints(ctx context.Context) ([]models.Complaint, error) {
	var complaints []models.Complaint
	if err := r.do(ctx, http.MethodGet, "/complaints", nil, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *Remote) SaveUser(ctx context.Context, u models.User) error {
	if err := r.do(ctx, http.MethodPost, "/users/"+url.PathEscape(u.ID), u, nil); err != nil {
		return err
	}
	current, err := r.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.ID == u.ID {
		return r.sessions.SetCurrentUser(ctx, u)
	}
	return nil
}

func (r *Remote) SaveComplaint(ctx context.Context, cp models.Complaint) error {
	return r.do(ctx, http.MethodPost, "/complaints/"+url.PathEscape(cp.ID), cp, nil)
}

func (r *Remote) DeleteUser(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) DeleteComplaint(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/complaints/"+url.PathEscape(id), nil, nil)
}

func (r *Remote) CurrentUser(ctx context.Context) (*models.User, error) {
	return r.sessions.CurrentUser(ctx)
}

func (r *Remote) SetCurrentUser(ctx context.Context, u models.User) error {
	return r.sessions.SetCurrentUser(ctx, u)
}

func (r *Remote) ClearCurrentUser(ctx context.Context) error {
	return r.sessions.ClearCurrentUser(ctx)
}

// do performs one JSON request. Any transport failure or non-2xx status
// maps to ErrStorageUnavailable; callers treat the backend like an
// unreadable medium.
func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrStorageUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrStorageUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d", ErrStorageUnavailable, method, path, resp.StatusCode)
	}

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response: %v", ErrStorageUnavailable, err)
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrStorageUnavailable, err)
		}
	}
	return nil
}
