package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicdesk/backend/internal/models"
)

func newAdvisoryServer(t *testing.T, answer string, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		if req.Stream {
			t.Error("Requests must not stream")
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: answer, Done: true})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSuggestCategory(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		status int
		want   string
	}{
		{"clean answer", "Electricity", http.StatusOK, "Electricity"},
		{"answer with whitespace", "  roads \n", http.StatusOK, "Roads"},
		{"chatty answer falls back", "I would say Roads.", http.StatusOK, "General"},
		{"unknown category falls back", "Potholes", http.StatusOK, "General"},
		{"server error falls back", "", http.StatusInternalServerError, "General"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ts := newAdvisoryServer(t, test.answer, test.status)
			advisory := NewAdvisoryService(ts.URL, "test-model")

			got := advisory.SuggestCategory(context.Background(), "streetlight is out")
			if got != test.want {
				t.Errorf("Expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestSuggestCategoryUnreachableEndpoint(t *testing.T) {
	ts := newAdvisoryServer(t, "", http.StatusOK)
	ts.Close()

	advisory := NewAdvisoryService(ts.URL, "test-model")
	if got := advisory.SuggestCategory(context.Background(), "anything"); got != DefaultCategory {
		t.Errorf("Expected fallback %q on dead endpoint, got %q", DefaultCategory, got)
	}
}

func TestSuggestCategoryHonorsContextTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "Roads", Done: true})
	}))
	defer ts.Close()

	advisory := NewAdvisoryService(ts.URL, "test-model")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := advisory.SuggestCategory(ctx, "slow model")
	if got != DefaultCategory {
		t.Errorf("Expected fallback on timeout, got %q", got)
	}
	if time.Since(start) > time.Second {
		t.Error("Timed-out call should return promptly")
	}
}

func TestAdminBriefing(t *testing.T) {
	complaints := []models.Complaint{
		{Title: "Pothole", Category: "Roads", Status: models.StatusPending, CreatedAt: time.Now()},
		{Title: "Outage", Category: "Electricity", Status: models.StatusResolved, CreatedAt: time.Now()},
	}

	ts := newAdvisoryServer(t, "Key Trends: road damage dominates.", http.StatusOK)
	advisory := NewAdvisoryService(ts.URL, "test-model")

	report := advisory.AdminBriefing(context.Background(), complaints)
	if report != "Key Trends: road damage dominates." {
		t.Errorf("Unexpected briefing: %q", report)
	}
}

func TestAdminBriefingFallsBack(t *testing.T) {
	ts := newAdvisoryServer(t, "", http.StatusBadGateway)
	advisory := NewAdvisoryService(ts.URL, "test-model")

	report := advisory.AdminBriefing(context.Background(), nil)
	if report != FallbackBriefing {
		t.Errorf("Expected fallback briefing, got %q", report)
	}

	// A blank model answer is as useless as a failure.
	ts2 := newAdvisoryServer(t, "   ", http.StatusOK)
	advisory = NewAdvisoryService(ts2.URL, "test-model")
	if report := advisory.AdminBriefing(context.Background(), nil); report != FallbackBriefing {
		t.Errorf("Expected fallback for blank answer, got %q", report)
	}
}
