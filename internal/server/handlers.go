package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor/evaluator"
	"github.com/lucasefe/pbimentor/extract"
	"github.com/lucasefe/pbimentor/report"
	"github.com/lucasefe/pbimentor/schema"
)

// MaxUploadSize bounds multipart request bodies.
const MaxUploadSize = 50 << 20

// AnalyzeResponse is the body of POST /api/analyze.
type AnalyzeResponse struct {
	ID          string              `json:"id"`
	GradingInfo *schema.GradingInfo `json:"gradingInfo"`
	Report      string              `json:"report"`
}

// EvaluateResponse is the body of POST /api/evaluate.
type EvaluateResponse struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the API. Evaluation routes answer 503 when no evaluator
// is configured.
type Handler struct {
	Evaluator      evaluator.Evaluator
	Visual         evaluator.VisualEvaluator
	Logger         *zap.Logger
	ExtractOptions []extract.Option
}

// NewHandler creates a Handler.
func NewHandler(eval evaluator.Evaluator, visual evaluator.VisualEvaluator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Evaluator:      eval,
		Visual:         visual,
		Logger:         logger,
		ExtractOptions: []extract.Option{extract.WithLogger(logger)},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Post("/api/analyze", h.Analyze)
	r.Post("/api/evaluate", h.Evaluate)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze reduces an uploaded template and renders its report.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.upload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	info, text, err := h.analyze(file, header.Size)
	if err != nil {
		h.writeExtractError(w, header.Filename, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		ID:          uuid.NewString(),
		GradingInfo: info,
		Report:      text,
	})
}

// Evaluate grades an uploaded answer. The file type selects the answer:
// a template's report, a PDF document or plain text.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.upload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	question := strings.TrimSpace(r.FormValue("question"))
	prompt := r.FormValue("prompt")
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	id := uuid.NewString()
	var (
		result evaluator.Result
		err    error
	)

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".pbit":
		if h.Evaluator == nil {
			writeError(w, http.StatusServiceUnavailable, "no evaluator configured")
			return
		}
		_, text, aerr := h.analyze(file, header.Size)
		if aerr != nil {
			h.writeExtractError(w, header.Filename, aerr)
			return
		}
		result, err = h.Evaluator.Evaluate(r.Context(), question, text, prompt)
	case ".txt":
		if h.Evaluator == nil {
			writeError(w, http.StatusServiceUnavailable, "no evaluator configured")
			return
		}
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload")
			return
		}
		result, err = h.Evaluator.Evaluate(r.Context(), question, string(data), prompt)
	case ".pdf":
		if h.Visual == nil {
			writeError(w, http.StatusServiceUnavailable, "no visual evaluator configured")
			return
		}
		path, cleanup, serr := spool(file, id)
		if serr != nil {
			h.Logger.Error("Failed to spool upload", zap.Error(serr))
			writeError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		defer cleanup()
		result, err = h.Visual.EvaluateVisual(r.Context(), question, prompt, path)
	default:
		writeError(w, http.StatusBadRequest, "file must be a .pbit, .pdf or .txt")
		return
	}

	if err != nil {
		h.Logger.Error("Evaluation failed", zap.String("file", header.Filename), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, evaluator.ErrInvalidResponse) {
			status = http.StatusBadGateway
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{ID: id, Score: result.Score, Feedback: result.Feedback})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return nil, nil, false
	}
	return file, header, true
}

func (h *Handler) analyze(file multipart.File, size int64) (*schema.GradingInfo, string, error) {
	model, err := extract.FromArchive(file, size, h.ExtractOptions...)
	if err != nil {
		return nil, "", err
	}
	info := extract.Reduce(model, h.ExtractOptions...)
	text, err := report.GenerateString(info)
	if err != nil {
		return nil, "", err
	}
	return info, text, nil
}

func (h *Handler) writeExtractError(w http.ResponseWriter, filename string, err error) {
	h.Logger.Warn("Template rejected", zap.String("file", filename), zap.Error(err))

	switch {
	case errors.Is(err, extract.ErrNotFound), errors.Is(err, extract.ErrSchemaNotFound), errors.Is(err, extract.ErrSchemaParse):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// spool copies an upload to a scratch file so it can be read by path.
func spool(file io.Reader, id string) (string, func(), error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("pbimentor-%s.pdf", id))
	out, err := os.Create(path)
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { os.Remove(path) }

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
