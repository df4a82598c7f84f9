// Package evaluator scores answers with a language model.
//
// An Evaluator grades a text answer against a question and grading
// instructions. A VisualEvaluator grades a PDF export of a report.
// Both return a Result with a score between 0 and 100.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidResponse is returned when the model reply is not a
	// well-formed result.
	ErrInvalidResponse = errors.New("invalid evaluator response")
	// ErrMissingCredentials is returned when the selected backend lacks the
	// key or project it needs.
	ErrMissingCredentials = errors.New("missing evaluator credentials")
	// ErrInvalidDocument is returned when a visual evaluation is given a path
	// that is not a readable PDF file.
	ErrInvalidDocument = errors.New("invalid document")
)

// Result is the outcome of a single evaluation.
type Result struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Evaluator scores a text answer.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer, prompt string) (Result, error)
}

// VisualEvaluator scores a PDF document.
type VisualEvaluator interface {
	EvaluateVisual(ctx context.Context, question, prompt, pdfPath string) (Result, error)
}

// ParseResult decodes a model reply into a Result.
// Markdown code fences around the JSON object are tolerated. Both fields
// are required and the score must lie in [0, 100].
func ParseResult(text string) (Result, error) {
	body := stripFences(text)
	if body == "" {
		return Result{}, fmt.Errorf("%w: empty reply", ErrInvalidResponse)
	}

	var raw struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v\nraw output:\n%s", ErrInvalidResponse, err, body)
	}
	if raw.Score == nil || raw.Feedback == nil {
		return Result{}, fmt.Errorf("%w: missing required fields (score, feedback) in %s", ErrInvalidResponse, body)
	}
	if *raw.Score < 0 || *raw.Score > 100 {
		return Result{}, fmt.Errorf("%w: score %v out of range", ErrInvalidResponse, *raw.Score)
	}

	return Result{Score: *raw.Score, Feedback: *raw.Feedback}, nil
}

func stripFences(text string) string {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "```") {
		return body
	}

	body = strings.TrimPrefix(body, "```")
	// Drop the info string, e.g. ```json.
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
