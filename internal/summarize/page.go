// Package summarize implements the two-stage learning-note pipeline:
// per-page structured summaries followed by windowed merging.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/genai"
	"github.com/lectio/lectio/internal/models"
)

const maxKeyPoints = 5

// PageSummarizer produces a PageSummary for one page via a single
// remote call.
type PageSummarizer struct {
	client genai.Client
}

// NewPageSummarizer creates a summarizer backed by the given client.
func NewPageSummarizer(client genai.Client) *PageSummarizer {
	return &PageSummarizer{client: client}
}

// Summarize builds the page prompt and parses the structured response.
// A non-JSON response is fatal for this page: downstream merging
// assumes every summarized page has a summary record.
func (s *PageSummarizer) Summarize(ctx context.Context, label, text string) (models.PageSummary, error) {
	raw, err := s.client.Generate(ctx, pagePrompt(label, text))
	if err != nil {
		return models.PageSummary{}, err
	}
	return parsePageSummary(raw)
}

// pageSummaryPayload is the tagged decoder for the model's summary
// JSON. Field aliases exist because free-text models drift on field
// names; the fallback order is fixed:
//
//	outline:       outline, then summary
//	keyPoints:     keyPoints, then bullets, then details
//	studyQuestion: studyQuestion, then quiz
type pageSummaryPayload struct {
	Outline       json.RawMessage `json:"outline"`
	Summary       json.RawMessage `json:"summary"`
	KeyPoints     json.RawMessage `json:"keyPoints"`
	Bullets       json.RawMessage `json:"bullets"`
	Details       json.RawMessage `json:"details"`
	StudyQuestion json.RawMessage `json:"studyQuestion"`
	Quiz          json.RawMessage `json:"quiz"`
}

func parsePageSummary(raw string) (models.PageSummary, error) {
	var payload pageSummaryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.PageSummary{}, &apperr.BadResponseError{
			Reason: "page summary is not valid JSON",
			Raw:    raw,
		}
	}

	points := firstList(payload.KeyPoints, payload.Bullets, payload.Details)
	if len(points) > maxKeyPoints {
		points = points[:maxKeyPoints]
	}

	return models.PageSummary{
		Outline:       firstString(payload.Outline, payload.Summary),
		KeyPoints:     points,
		StudyQuestion: firstString(payload.StudyQuestion, payload.Quiz),
	}, nil
}

// firstString returns the first candidate that decodes to a non-empty
// trimmed string. Non-string scalars are stringified.
func firstString(candidates ...json.RawMessage) string {
	for _, c := range candidates {
		if s := coerceString(c); s != "" {
			return s
		}
	}
	return ""
}

// firstList returns the first candidate that yields a non-empty list.
// A JSON string splits into lines; a JSON array stringifies each
// element. Blank entries are dropped either way.
func firstList(candidates ...json.RawMessage) []string {
	for _, c := range candidates {
		if items := coerceList(c); len(items) > 0 {
			return items
		}
	}
	return nil
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func coerceList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var out []string
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if item == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
