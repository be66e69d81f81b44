// Package quiz builds multiple-choice quizzes from source text via one
// remote call and defensively parses the model's JSON reply.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/genai"
	"github.com/lectio/lectio/internal/models"
)

const optionsPerQuestion = 4

// Assembler turns source material into a validated question set.
type Assembler struct {
	client genai.Client
}

// NewAssembler creates an assembler backed by the given client.
func NewAssembler(client genai.Client) *Assembler {
	return &Assembler{client: client}
}

// Result is the parsed output of one quiz generation call.
type Result struct {
	Questions []models.Question
	Notes     []string
}

// FromText generates a quiz from freeform study notes.
func (a *Assembler) FromText(ctx context.Context, source string, numQuestions int, difficulty string) (Result, error) {
	raw, err := a.client.Generate(ctx, textPrompt(source, numQuestions, difficulty))
	if err != nil {
		return Result{}, err
	}
	return ParsePayload(raw)
}

// FromDocument generates a quiz from extracted lecture-document text.
func (a *Assembler) FromDocument(ctx context.Context, source string, numQuestions int) (Result, error) {
	raw, err := a.client.Generate(ctx, filePrompt(source, numQuestions))
	if err != nil {
		return Result{}, err
	}
	return ParsePayload(raw)
}

// quizItemPayload is the tagged decoder for one question item. Aliases
// and their fallback order: options then opts; correctIndex then
// correct; question then q. Every field is raw so a type-malformed
// value in one item never fails the decode of the whole batch.
type quizItemPayload struct {
	Question     json.RawMessage `json:"question"`
	Q            json.RawMessage `json:"q"`
	Options      json.RawMessage `json:"options"`
	Opts         json.RawMessage `json:"opts"`
	CorrectIndex json.RawMessage `json:"correctIndex"`
	Correct      json.RawMessage `json:"correct"`
	Explanation  json.RawMessage `json:"explanation"`
}

type quizPayload struct {
	Questions []quizItemPayload `json:"questions"`
	Notes     json.RawMessage   `json:"notes"`
}

// ParsePayload parses raw model output (code fences already stripped)
// into a validated question set.
//
// Accepted top-level shapes: {"questions": [...], "notes": ...} or a
// bare question array. Items with fewer than four options are dropped,
// and a non-list options value counts as no options, so one malformed
// item never discards the rest. Longer option lists are truncated to
// four. correctIndex is coerced to an integer (default 0) and clamped
// into range. An empty surviving question list fails the whole
// request: a quiz with no questions is not a valid result.
func ParsePayload(raw string) (Result, error) {
	trimmed := strings.TrimSpace(raw)

	var payload quizPayload
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &payload.Questions); err != nil {
			return Result{}, &apperr.BadResponseError{Reason: "quiz payload is not valid JSON", Raw: raw}
		}
	} else if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return Result{}, &apperr.BadResponseError{Reason: "quiz payload is not valid JSON", Raw: raw}
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for idx, item := range payload.Questions {
		options := coerceOptions(item.Options, item.Opts)
		if len(options) < optionsPerQuestion {
			continue
		}
		kept := make([]string, 0, optionsPerQuestion)
		for _, opt := range options[:optionsPerQuestion] {
			kept = append(kept, strings.TrimSpace(fmt.Sprint(opt)))
		}

		correct := coerceIndex(item.CorrectIndex, item.Correct)
		if correct < 0 {
			correct = 0
		}
		if correct > len(kept)-1 {
			correct = len(kept) - 1
		}

		text := firstNonEmpty(item.Question, item.Q)
		if text == "" {
			text = fmt.Sprintf("Question %d", idx+1)
		}

		questions = append(questions, models.Question{
			Question:     text,
			Options:      kept,
			CorrectIndex: correct,
			Explanation:  firstNonEmpty(item.Explanation),
		})
	}

	if len(questions) == 0 {
		return Result{}, &apperr.BadResponseError{Reason: "no usable questions in response", Raw: raw}
	}

	return Result{Questions: questions, Notes: parseNotes(payload.Notes)}, nil
}

// coerceOptions resolves the options list with alias fallback. A
// present value that is not a JSON array (the model occasionally emits
// a string here) yields an empty list, dropping only that item.
func coerceOptions(candidates ...json.RawMessage) []any {
	for _, raw := range candidates {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var options []any
		if err := json.Unmarshal(raw, &options); err != nil {
			return nil
		}
		return options
	}
	return nil
}

// coerceIndex resolves correctIndex with alias fallback, accepting
// JSON numbers and numeric strings. Anything else defaults to 0.
func coerceIndex(candidates ...json.RawMessage) int {
	for _, raw := range candidates {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return int(n)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n
			}
		}
		return 0
	}
	return 0
}

func firstNonEmpty(candidates ...json.RawMessage) string {
	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// parseNotes accepts a string (split into lines) or a list (each
// element stringified); any other shape yields an empty list.
func parseNotes(raw json.RawMessage) []string {
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
		if s := strings.TrimSpace(marshalNote(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// marshalNote renders one notes element as text. Structured elements
// (the model sometimes returns {title, summary, ...} objects) are kept
// as compact JSON rather than Go's map formatting.
func marshalNote(item any) string {
	switch v := item.(type) {
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
