package insights

import (
	"fmt"
	"strconv"
	"strings"

	reportModel "lab-booking/models/report"
)

// flaggedResult is an out-of-range result with its direction.
type flaggedResult struct {
	Result   reportModel.TestResult
	Severity string
}

// classify partitions results by comparing numeric values against their
// "low-high" reference range. Non-numeric values and unparsable ranges are
// treated as normal since they cannot be evaluated.
func classify(results []reportModel.TestResult) []flaggedResult {
	var out []flaggedResult
	for _, r := range results {
		value, ok := numericValue(r.Value)
		if !ok {
			continue
		}
		low, high, ok := parseRange(r.ReferenceRange)
		if !ok {
			continue
		}
		switch {
		case value < low:
			out = append(out, flaggedResult{Result: r, Severity: SeverityLow})
		case value > high:
			out = append(out, flaggedResult{Result: r, Severity: SeverityHigh})
		}
	}
	return out
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseRange(s string) (low, high float64, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	high, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return low, high, true
}

// favorableInsights is the canned answer when every value is in range.
func favorableInsights() Insights {
	return Insights{
		Summary:        "Great news! All your test results are within normal ranges.",
		AbnormalValues: []AbnormalValue{},
		Recommendations: []string{
			"Continue maintaining your current health routine.",
			"Stay hydrated by drinking adequate water throughout the day.",
			"Engage in regular physical activity for at least 30 minutes daily.",
			"Ensure you get 7-8 hours of quality sleep each night.",
			"Schedule regular check-ups to monitor your health proactively.",
		},
	}
}

// Fallback builds a deterministic local response for results whose AI
// enrichment failed. The output is always a valid insights object.
func Fallback(results []reportModel.TestResult) Insights {
	abnormal := classify(results)
	if len(abnormal) == 0 {
		return favorableInsights()
	}

	values := make([]AbnormalValue, 0, len(abnormal))
	for _, item := range abnormal {
		direction := "above"
		if item.Severity == SeverityLow {
			direction = "below"
		}
		values = append(values, AbnormalValue{
			Name:           item.Result.Name,
			Value:          item.Result.Value,
			Explanation:    fmt.Sprintf("This value is %s the reference range.", direction),
			Recommendation: "Please consult with your healthcare provider about these results.",
			Severity:       item.Severity,
		})
	}

	return Insights{
		Summary:        fmt.Sprintf("Some test values (%d) appear to be outside normal ranges.", len(abnormal)),
		AbnormalValues: values,
		Recommendations: []string{
			"Please consult with a healthcare professional for proper interpretation of these results.",
		},
	}
}
