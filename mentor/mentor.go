// Package mentor grades whole submissions against an assignment.
//
// A submission is a directory, a zip archive or a single answer file. Each
// assignment question kind is answered by one file type:
//
//	dax     .pbit  the template's report is the answer
//	visual  .pdf   the document is graded by a VisualEvaluator
//	write   .txt   the file contents are the answer
//
// Basic usage:
//
//	m := mentor.New(eval, eval, mentor.WithLogger(logger))
//	grade, err := m.EvaluateAll(ctx, "submissions/alice.zip", assignment)
package mentor

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lucasefe/pbimentor/evaluator"
	"github.com/lucasefe/pbimentor/extract"
	"github.com/lucasefe/pbimentor/report"
)

// Kind is an assignment question kind.
type Kind string

const (
	KindDAX    Kind = "dax"
	KindVisual Kind = "visual"
	KindWrite  Kind = "write"
)

// Kinds lists the question kinds in evaluation and report order.
var Kinds = []Kind{KindDAX, KindVisual, KindWrite}

// NoEvaluations is the feedback of a grade when no question was evaluated.
const NoEvaluations = "No evaluations completed."

var sectionRule = strings.Repeat("=", 70)

// Texts holds one string per question kind.
type Texts struct {
	DAX    string `yaml:"dax" json:"dax"`
	Visual string `yaml:"visual" json:"visual"`
	Write  string `yaml:"write" json:"write"`
}

// For returns the text for kind.
func (t Texts) For(kind Kind) string {
	switch kind {
	case KindDAX:
		return t.DAX
	case KindVisual:
		return t.Visual
	case KindWrite:
		return t.Write
	}
	return ""
}

// Assignment pairs each question with its grading instructions.
// A kind whose question is empty is not evaluated.
type Assignment struct {
	Questions Texts `yaml:"questions" json:"questions"`
	Prompts   Texts `yaml:"prompts" json:"prompts"`
}

// Section is the evaluation of a single question kind.
type Section struct {
	Kind   Kind             `json:"kind"`
	Result evaluator.Result `json:"result"`
}

// Grade is the aggregated evaluation of a submission.
type Grade struct {
	Path     string    `json:"path"`
	Score    float64   `json:"score"`
	Feedback string    `json:"feedback"`
	Sections []Section `json:"sections"`
}

// Option configures a Mentor.
type Option func(*Mentor)

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Mentor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithExtractOptions sets the options used when reading templates.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(m *Mentor) {
		m.extractOpts = opts
	}
}

// Mentor evaluates submissions with a text and a visual evaluator.
type Mentor struct {
	text        evaluator.Evaluator
	visual      evaluator.VisualEvaluator
	logger      *zap.Logger
	extractOpts []extract.Option
}

// New creates a Mentor.
func New(text evaluator.Evaluator, visual evaluator.VisualEvaluator, opts ...Option) *Mentor {
	m := &Mentor{
		text:   text,
		visual: visual,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EvaluateAll grades the submission at path.
//
// The question kinds are evaluated concurrently. A kind whose answer file
// is missing scores 0 with an explanatory feedback. The grade's score is the
// mean of the evaluated kinds rounded to two decimals.
func (m *Mentor) EvaluateAll(ctx context.Context, path string, assignment *Assignment) (*Grade, error) {
	working, cleanup, err := PrepareSubmission(path)
	defer cleanup()
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		assignment = &Assignment{}
	}

	m.logger.Info("Evaluating submission", zap.String("path", path), zap.String("working", working))

	results := make([]*evaluator.Result, len(Kinds))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		question := assignment.Questions.For(kind)
		if strings.TrimSpace(question) == "" {
			continue
		}
		prompt := assignment.Prompts.For(kind)

		eg.Go(func() error {
			result, err := m.evaluateKind(egCtx, kind, working, question, prompt)
			if err != nil {
				return fmt.Errorf("%s evaluation failed: %w", kind, err)
			}
			results[i] = &result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	grade := aggregate(results)
	grade.Path = path

	m.logger.Info("Submission graded",
		zap.String("path", path),
		zap.Float64("score", grade.Score),
		zap.Int("sections", len(grade.Sections)))

	return grade, nil
}

func (m *Mentor) evaluateKind(ctx context.Context, kind Kind, working, question, prompt string) (evaluator.Result, error) {
	file, ok := answerFile(working, extensionFor(kind))
	if !ok {
		m.logger.Warn("Answer file missing", zap.String("kind", string(kind)), zap.String("path", working))
		return missingAnswer(kind), nil
	}

	m.logger.Debug("Evaluating answer", zap.String("kind", string(kind)), zap.String("file", file))

	switch kind {
	case KindDAX:
		model, err := extract.Schema(file, m.extractOpts...)
		if err != nil {
			return evaluator.Result{}, err
		}
		answer, err := report.GenerateString(extract.Reduce(model, m.extractOpts...))
		if err != nil {
			return evaluator.Result{}, err
		}
		return m.text.Evaluate(ctx, question, answer, prompt)
	case KindVisual:
		return m.visual.EvaluateVisual(ctx, question, prompt, file)
	default:
		answer, err := os.ReadFile(file)
		if err != nil {
			return evaluator.Result{}, fmt.Errorf("failed to read answer: %w", err)
		}
		return m.text.Evaluate(ctx, question, string(answer), prompt)
	}
}

func extensionFor(kind Kind) string {
	switch kind {
	case KindDAX:
		return ExtTemplate
	case KindVisual:
		return ExtVisual
	}
	return ExtWrite
}

// answerFile locates the answer with extension ext. A single-file
// submission only answers its own kind.
func answerFile(working, ext string) (string, bool) {
	info, err := os.Stat(working)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		return working, strings.EqualFold(filepath.Ext(working), ext)
	}
	return FindFileByType(working, ext)
}

func missingAnswer(kind Kind) evaluator.Result {
	var label, file string
	switch kind {
	case KindDAX:
		label, file = "DAX related", "DAX related response(pbit file)"
	case KindVisual:
		label, file = "visual type", "visual type response(pdf file)"
	default:
		label, file = "written type", "written type response(txt file)"
	}

	return evaluator.Result{
		Score: 0,
		Feedback: "Unable to evaluate submission.\n\n" +
			fmt.Sprintf("The assignment includes %s questions, but no %s file was found. ", label, file) +
			"Please ensure your submission includes all required components and resubmit.",
	}
}

func aggregate(results []*evaluator.Result) *Grade {
	grade := &Grade{Sections: []Section{}}

	var total float64
	var parts []string
	for i, result := range results {
		if result == nil {
			continue
		}
		kind := Kinds[i]
		grade.Sections = append(grade.Sections, Section{Kind: kind, Result: *result})
		total += result.Score
		parts = append(parts, formatSection(kind, *result))
	}

	if len(parts) == 0 {
		grade.Feedback = NoEvaluations
		return grade
	}

	grade.Score = math.Round(total/float64(len(parts))*100) / 100
	grade.Feedback = strings.Join(parts, "\n")
	return grade
}

func formatSection(kind Kind, result evaluator.Result) string {
	var builder strings.Builder

	builder.WriteString(sectionRule + "\n")
	builder.WriteString(strings.ToUpper(string(kind)) + " EVALUATION\n")
	builder.WriteString(sectionRule + "\n")
	builder.WriteString(fmt.Sprintf("Score: %s/100\n\n", strconv.FormatFloat(result.Score, 'f', -1, 64)))
	builder.WriteString(result.Feedback + "\n")

	return builder.String()
}
