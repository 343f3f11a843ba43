package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/models"
)

// Categories a complaint can be routed under. Departments carry the same
// names, which is what makes auto-routing work.
var ComplaintCategories = []string{"Roads", "Sanitation", "Electricity", "Water", "Safety", "General"}

// FallbackBriefing is returned whenever the briefing call fails.
const FallbackBriefing = "Could not generate report at this time."

// AdvisoryService produces best-effort free-text enrichment (category
// suggestions, admin briefings) from an Ollama-compatible endpoint. Every
// call is bounded by a timeout and degrades to a static default; no portal
// mutation ever waits on or fails because of this service.
type AdvisoryService struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewAdvisoryService(baseURL, model string) *AdvisoryService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}

	timeout := 30 * time.Second
	if raw := os.Getenv("OLLAMA_TIMEOUT_SECONDS"); raw != "" {
		if t, err := time.ParseDuration(raw + "s"); err == nil {
			timeout = t
		}
	}

	return &AdvisoryService{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// SuggestCategory asks the model to place a description into one of the
// known categories. Anything other than a clean in-set answer — transport
// failure, timeout, or a chatty response — yields "General".
func (s *AdvisoryService) SuggestCategory(ctx context.Context, description string) string {
	prompt := fmt.Sprintf(
		"Analyze the following complaint description and categorize it into ONE of these categories: %s. Return ONLY the category name. Description: %q",
		strings.Join(ComplaintCategories, ", "), description,
	)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		logger.WithAdvisory("suggest_category").Warn("Category suggestion failed, using default", map[string]interface{}{
			"error": err.Error(),
		})
		return DefaultCategory
	}

	answer = strings.TrimSpace(answer)
	for _, category := range ComplaintCategories {
		if strings.EqualFold(answer, category) {
			return category
		}
	}
	return DefaultCategory
}

// AdminBriefing summarizes the complaint load into a short executive
// briefing for the admin dashboard. Only condensed fields are sent to the
// model.
func (s *AdvisoryService) AdminBriefing(ctx context.Context, complaints []models.Complaint) string {
	type summaryRow struct {
		Category string `json:"category"`
		Status   string `json:"status"`
		Title    string `json:"title"`
		Date     string `json:"date"`
	}
	rows := make([]summaryRow, 0, len(complaints))
	for _, cp := range complaints {
		rows = append(rows, summaryRow{
			Category: cp.Category,
			Status:   string(cp.Status),
			Title:    cp.Title,
			Date:     cp.CreatedAt.Format("2006-01-02"),
		})
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return FallbackBriefing
	}

	prompt := fmt.Sprintf(`You are an assistant for a City Administration Dashboard.
Analyze the following complaint data and provide a professional "Daily Executive Briefing".

Data: %s

Structure the response with these sections:
1. Key Trends: the most common issue.
2. Critical Attention: any urgent patterns.
3. Sentiment Summary: general tone of complaints.
4. Recommendation: one actionable advice for the admin.

Keep it concise and professional.`, data)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		logger.WithAdvisory("admin_briefing").Warn("Briefing generation failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return FallbackBriefing
	}
	if strings.TrimSpace(answer) == "" {
		return FallbackBriefing
	}
	return answer
}

func (s *AdvisoryService) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var generated ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	return generated.Response, nil
}
