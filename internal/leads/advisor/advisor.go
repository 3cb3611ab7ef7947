// Package advisor scores leads with Gemini as a second opinion next to the
// rule-based engine. The AI score is advisory only and never feeds the
// qualification score.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/platform/logger"
)

const modelName = "gemini-2.0-flash"

// Advisor asks Gemini for a 0-100 conversion likelihood per lead.
type Advisor struct {
	client *genai.Client
	log    *logger.Logger
}

type scoreResponse struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// New creates the advisor. Returns an error when the API key is rejected;
// callers should treat the advisor as optional.
func New(ctx context.Context, apiKey string, log *logger.Logger) (*Advisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Advisor{client: client, log: log}, nil
}

// Score returns an AI-estimated conversion likelihood in [0, 100].
func (a *Advisor) Score(ctx context.Context, lead domain.Lead) (int, error) {
	prompt := buildPrompt(lead)

	resp, err := a.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return 0, fmt.Errorf("generate content: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	var parsed scoreResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return 0, fmt.Errorf("parse advisor response %q: %w", raw, err)
	}

	score := parsed.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	a.log.Debug("advisor scored lead", "lead_id", lead.ID, "score", score, "rationale", parsed.Rationale)
	return score, nil
}

func buildPrompt(lead domain.Lead) string {
	var b strings.Builder
	b.WriteString("You score B2B SaaS leads for an agriculture software vendor in India. ")
	b.WriteString("Given the lead below, estimate how likely it is to convert to a paying tenant. ")
	b.WriteString(`Respond with JSON only: {"score": <0-100 integer>, "rationale": "<one sentence>"}.`)
	b.WriteString("\n\nLead:\n")
	fmt.Fprintf(&b, "- contact: %s\n", lead.ContactName)
	if lead.OrganizationName != nil {
		fmt.Fprintf(&b, "- organization: %s\n", *lead.OrganizationName)
	}
	fmt.Fprintf(&b, "- priority: %s\n", lead.Priority)
	fmt.Fprintf(&b, "- status: %s\n", lead.Status)
	if lead.Source != "" {
		fmt.Fprintf(&b, "- source: %s\n", lead.Source)
	}
	if lead.Phone != nil {
		b.WriteString("- phone: provided\n")
	}
	if strings.TrimSpace(lead.Notes) != "" {
		fmt.Fprintf(&b, "- notes: %s\n", lead.Notes)
	}
	return b.String()
}
