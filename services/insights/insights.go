package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"lab-booking/logger"
	reportModel "lab-booking/models/report"
)

// Severity values for abnormal results. The automatic classifier only
// emits low and high; critical exists for the AI path and manual review.
const (
	SeverityLow      = "low"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// AbnormalValue is one out-of-range result with its plain-language
// explanation.
type AbnormalValue struct {
	Name           string      `json:"name"`
	Value          interface{} `json:"value"`
	Explanation    string      `json:"explanation"`
	Recommendation string      `json:"recommendation"`
	Severity       string      `json:"severity"`
}

// Insights is the patient-facing interpretation of a result set.
type Insights struct {
	Summary         string          `json:"summary"`
	AbnormalValues  []AbnormalValue `json:"abnormalValues"`
	Recommendations []string        `json:"recommendations"`
}

const defaultModel = "gemini-2.5-flash-lite"

// Service generates insights, preferring the Gemini API and degrading to
// the deterministic fallback whenever the primary path fails.
type Service struct {
	apiKey  string
	model   string
	timeout time.Duration
}

func NewService() *Service {
	timeout := 20 * time.Second
	if v := os.Getenv("INSIGHTS_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return &Service{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		model:   defaultModel,
		timeout: timeout,
	}
}

// Generate produces insights for a result set. It always returns a valid
// response: the canned favorable answer when nothing is out of range, the
// AI answer when the Gemini call succeeds, and Fallback otherwise.
func (s *Service) Generate(ctx context.Context, results []reportModel.TestResult) Insights {
	abnormal := classify(results)
	if len(abnormal) == 0 {
		return favorableInsights()
	}

	if s.apiKey == "" {
		logger.Warning("GEMINI_API_KEY not set, using fallback insights")
		return Fallback(results)
	}

	generated, err := s.generateWithGemini(ctx, abnormal)
	if err != nil {
		logger.Error("Insight generation failed, using fallback", err)
		return Fallback(results)
	}
	return generated
}

// generateWithGemini asks the model for structured JSON describing the
// abnormal subset.
func (s *Service) generateWithGemini(ctx context.Context, abnormal []flaggedResult) (Insights, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return Insights{}, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	payload, err := json.MarshalIndent(promptPayload(abnormal), "", "  ")
	if err != nil {
		return Insights{}, fmt.Errorf("failed to encode abnormal values: %w", err)
	}

	prompt := `You are a medical laboratory AI assistant providing insights on test results.
Analyze these abnormal lab results, providing clear explanations and actionable recommendations.
For each abnormal value, explain what it means in plain language for the patient and give appropriate health recommendations.
Be informative but not alarmist, and always recommend consulting a healthcare provider.
Return ONLY valid JSON.

Test results with abnormal values:
` + string(payload) + `

Required JSON format:
{
  "summary": "A 1-2 sentence overview of the test results",
  "abnormalValues": [
    {
      "name": "Test name",
      "value": "Value",
      "explanation": "Clear explanation of what this means in plain language",
      "recommendation": "Specific recommendation for this value",
      "severity": "low/high/critical"
    }
  ],
  "recommendations": ["3-5 general health recommendations based on these results"]
}`

	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}

	result, err := client.Models.GenerateContent(
		ctx,
		s.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.2)),
		},
	)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to generate insights: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return Insights{}, fmt.Errorf("no content generated")
	}

	responseText := result.Candidates[0].Content.Parts[0].Text
	if responseText == "" {
		return Insights{}, fmt.Errorf("empty response from model")
	}

	jsonText := extractJSONFromMarkdown(responseText)

	var parsed Insights
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return Insights{}, fmt.Errorf("failed to parse JSON response: %w, response: %s", err, jsonText)
	}
	if parsed.Summary == "" || len(parsed.AbnormalValues) == 0 {
		return Insights{}, fmt.Errorf("response missing required fields")
	}

	return parsed, nil
}

func promptPayload(abnormal []flaggedResult) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(abnormal))
	for _, item := range abnormal {
		out = append(out, map[string]interface{}{
			"name":           item.Result.Name,
			"value":          item.Result.Value,
			"unit":           item.Result.Unit,
			"referenceRange": item.Result.ReferenceRange,
			"status":         item.Severity,
		})
	}
	return out
}

// extractJSONFromMarkdown extracts JSON content from markdown code blocks
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 1 {
			return strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	return text
}
