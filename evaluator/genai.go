package evaluator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Backend names accepted by Config.Backend.
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Defaults applied by New.
const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultLocation = "us-central1"
)

// Config selects and configures the model backend.
type Config struct {
	// Backend is BackendGemini (API key) or BackendVertex (project and location).
	Backend string
	// APIKey authenticates against the Gemini API.
	APIKey string
	// Project and Location address a Vertex AI deployment.
	Project  string
	Location string
	// Model is the model name, e.g. "gemini-2.0-flash".
	Model string
	// Logger receives request diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// contentGenerator is the subset of the genai client used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAI evaluates answers with a Gemini model. It implements both
// Evaluator and VisualEvaluator.
type GenAI struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// New creates a GenAI evaluator for the configured backend.
func New(ctx context.Context, cfg Config) (*GenAI, error) {
	cc, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGenAI(client.Models, cfg.Model, cfg.Logger), nil
}

func clientConfig(cfg Config) (*genai.ClientConfig, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: the gemini backend requires an API key", ErrMissingCredentials)
		}
		return &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}, nil
	case BackendVertex:
		if cfg.Project == "" {
			return nil, fmt.Errorf("%w: the vertex backend requires a project", ErrMissingCredentials)
		}
		location := cfg.Location
		if location == "" {
			location = DefaultLocation
		}
		return &genai.ClientConfig{
			Project:  cfg.Project,
			Location: location,
			Backend:  genai.BackendVertexAI,
		}, nil
	default:
		return nil, fmt.Errorf("unknown evaluator backend %q", cfg.Backend)
	}
}

func newGenAI(models contentGenerator, model string, logger *zap.Logger) *GenAI {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenAI{models: models, model: model, logger: logger}
}

// Evaluate scores a text answer.
func (g *GenAI) Evaluate(ctx context.Context, question, answer, prompt string) (Result, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildContent(question, answer, prompt), genai.RoleUser),
	}
	return g.generate(ctx, "text", contents)
}

// EvaluateVisual scores the PDF at pdfPath.
func (g *GenAI) EvaluateVisual(ctx context.Context, question, prompt, pdfPath string) (Result, error) {
	info, err := os.Stat(pdfPath)
	if err != nil || !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		return Result{}, fmt.Errorf("%w: %s is not a PDF file", ErrInvalidDocument, pdfPath)
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read PDF: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(BuildVisualContent(question, prompt)),
		genai.NewPartFromBytes(data, "application/pdf"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return g.generate(ctx, "visual", contents)
}

func (g *GenAI) generate(ctx context.Context, kind string, contents []*genai.Content) (Result, error) {
	g.logger.Debug("Requesting evaluation", zap.String("kind", kind), zap.String("model", g.model))

	resp, err := g.models.GenerateContent(ctx, g.model, contents, responseConfig())
	if err != nil {
		return Result{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	if resp == nil {
		return Result{}, fmt.Errorf("%w: no response", ErrInvalidResponse)
	}

	result, err := ParseResult(resp.Text())
	if err != nil {
		g.logger.Warn("Unusable evaluation reply", zap.String("kind", kind), zap.Error(err))
		return Result{}, err
	}

	g.logger.Debug("Evaluation complete", zap.String("kind", kind), zap.Float64("score", result.Score))
	return result, nil
}

func responseConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score": {
					Type:        genai.TypeNumber,
					Description: "The numerical score for the evaluation",
				},
				"feedback": {
					Type:        genai.TypeString,
					Description: "Detailed feedback explaining the score",
				},
			},
			Required: []string{"score", "feedback"},
		},
	}
}
