package mentor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/pbimentor/evaluator"
)

const modelJSON = `{"name": "SalesModel", "model": {"tables": [{"name": "Sales", "columns": [{"name": "Amount", "dataType": "double"}], "measures": [{"name": "Total", "expression": "SUM(Sales[Amount])"}]}]}}`

type call struct {
	question string
	answer   string
	prompt   string
	pdf      string
}

type fakeEvaluator struct {
	mu     sync.Mutex
	calls  []call
	scores map[string]float64
	err    error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, question, answer, prompt string) (evaluator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{question: question, answer: answer, prompt: prompt})
	if f.err != nil {
		return evaluator.Result{}, f.err
	}
	return evaluator.Result{Score: f.scores[question], Feedback: "feedback for " + question}, nil
}

func (f *fakeEvaluator) EvaluateVisual(ctx context.Context, question, prompt, pdfPath string) (evaluator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{question: question, prompt: prompt, pdf: pdfPath})
	return evaluator.Result{Score: f.scores[question], Feedback: "feedback for " + question}, nil
}

func (f *fakeEvaluator) callFor(question string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.question == question {
			return c, true
		}
	}
	return call{}, false
}

func zipBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func templateBytes(t *testing.T) []byte {
	return zipBytes(t, map[string][]byte{"DataModelSchema": []byte(modelJSON)})
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func fullSubmission(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.pbit"), templateBytes(t))
	writeFile(t, filepath.Join(dir, "dashboard.pdf"), []byte("%PDF-1.7"))
	writeFile(t, filepath.Join(dir, "essay.txt"), []byte("Sales grew 10%."))
	return dir
}

func assignment() *Assignment {
	return &Assignment{
		Questions: Texts{DAX: "dax-q", Visual: "visual-q", Write: "write-q"},
		Prompts:   Texts{DAX: "dax-p", Visual: "visual-p", Write: "write-p"},
	}
}

func TestEvaluateAllDirectory(t *testing.T) {
	eval := &fakeEvaluator{scores: map[string]float64{"dax-q": 80, "visual-q": 70, "write-q": 91}}
	m := New(eval, eval)

	dir := fullSubmission(t)
	grade, err := m.EvaluateAll(context.Background(), dir, assignment())
	require.NoError(t, err)

	assert.Equal(t, 80.33, grade.Score)
	require.Len(t, grade.Sections, 3)
	assert.Equal(t, KindDAX, grade.Sections[0].Kind)
	assert.Equal(t, KindVisual, grade.Sections[1].Kind)
	assert.Equal(t, KindWrite, grade.Sections[2].Kind)

	dax, ok := eval.callFor("dax-q")
	require.True(t, ok)
	assert.Equal(t, "dax-p", dax.prompt)
	assert.True(t, strings.HasPrefix(dax.answer, "Model: SalesModel\n"))
	assert.Contains(t, dax.answer, "  - Total (table: Sales)\n      SUM(Sales[Amount])\n")

	visual, ok := eval.callFor("visual-q")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "dashboard.pdf"), visual.pdf)

	write, ok := eval.callFor("write-q")
	require.True(t, ok)
	assert.Equal(t, "Sales grew 10%.", write.answer)

	rule := strings.Repeat("=", 70)
	expected := rule + "\nDAX EVALUATION\n" + rule + "\nScore: 80/100\n\nfeedback for dax-q\n" +
		"\n" + rule + "\nVISUAL EVALUATION\n" + rule + "\nScore: 70/100\n\nfeedback for visual-q\n" +
		"\n" + rule + "\nWRITE EVALUATION\n" + rule + "\nScore: 91/100\n\nfeedback for write-q\n"
	assert.Equal(t, expected, grade.Feedback)
}

func TestEvaluateAllMissingAnswerFile(t *testing.T) {
	eval := &fakeEvaluator{scores: map[string]float64{"dax-q": 80, "write-q": 90}}
	m := New(eval, eval)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.PBIT"), templateBytes(t))
	writeFile(t, filepath.Join(dir, "essay.txt"), []byte("answer"))

	grade, err := m.EvaluateAll(context.Background(), dir, assignment())
	require.NoError(t, err)

	assert.Equal(t, 56.67, grade.Score)
	require.Len(t, grade.Sections, 3)
	assert.Equal(t, 0.0, grade.Sections[1].Result.Score)
	assert.True(t, strings.HasPrefix(grade.Sections[1].Result.Feedback, "Unable to evaluate submission.\n\n"))
	assert.Contains(t, grade.Sections[1].Result.Feedback, "pdf file")

	_, called := eval.callFor("visual-q")
	assert.False(t, called)
}

func TestEvaluateAllSkipsEmptyQuestions(t *testing.T) {
	eval := &fakeEvaluator{scores: map[string]float64{"write-q": 75}}
	m := New(eval, eval)

	a := &Assignment{Questions: Texts{Write: "write-q"}}
	grade, err := m.EvaluateAll(context.Background(), fullSubmission(t), a)
	require.NoError(t, err)

	assert.Equal(t, 75.0, grade.Score)
	require.Len(t, grade.Sections, 1)
	assert.Equal(t, KindWrite, grade.Sections[0].Kind)
}

func TestEvaluateAllNothingToEvaluate(t *testing.T) {
	eval := &fakeEvaluator{}
	m := New(eval, eval)

	grade, err := m.EvaluateAll(context.Background(), fullSubmission(t), &Assignment{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, grade.Score)
	assert.Equal(t, NoEvaluations, grade.Feedback)
	assert.Empty(t, grade.Sections)
}

func TestEvaluateAllSingleFile(t *testing.T) {
	eval := &fakeEvaluator{scores: map[string]float64{"write-q": 60}}
	m := New(eval, eval)

	path := writeFile(t, filepath.Join(t.TempDir(), "answer.txt"), []byte("just text"))
	grade, err := m.EvaluateAll(context.Background(), path, assignment())
	require.NoError(t, err)

	require.Len(t, grade.Sections, 3)
	assert.Contains(t, grade.Sections[0].Result.Feedback, "pbit file")
	assert.Contains(t, grade.Sections[1].Result.Feedback, "pdf file")
	assert.Equal(t, 60.0, grade.Sections[2].Result.Score)
	assert.Equal(t, 20.0, grade.Score)
}

func TestEvaluateAllZipIsCleanedUp(t *testing.T) {
	eval := &fakeEvaluator{scores: map[string]float64{"dax-q": 100, "visual-q": 100, "write-q": 100}}
	m := New(eval, eval)

	archive := zipBytes(t, map[string][]byte{
		"model.pbit":    templateBytes(t),
		"dashboard.pdf": []byte("%PDF-1.7"),
		"essay.txt":     []byte("text"),
	})
	path := writeFile(t, filepath.Join(t.TempDir(), "alice.zip"), archive)

	grade, err := m.EvaluateAll(context.Background(), path, assignment())
	require.NoError(t, err)
	assert.Equal(t, 100.0, grade.Score)

	visual, ok := eval.callFor("visual-q")
	require.True(t, ok)
	_, statErr := os.Stat(visual.pdf)
	assert.True(t, os.IsNotExist(statErr), "scratch directory should be removed")
}

func TestEvaluateAllEvaluatorError(t *testing.T) {
	boom := errors.New("model unavailable")
	eval := &fakeEvaluator{err: boom}
	m := New(eval, eval)

	_, err := m.EvaluateAll(context.Background(), fullSubmission(t), &Assignment{Questions: Texts{Write: "write-q"}})
	assert.ErrorIs(t, err, boom)
}

func TestEvaluateAllBrokenTemplate(t *testing.T) {
	eval := &fakeEvaluator{}
	m := New(eval, eval)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.pbit"), []byte("not a zip"))

	_, err := m.EvaluateAll(context.Background(), dir, &Assignment{Questions: Texts{DAX: "dax-q"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGradeBatch(t *testing.T) {
	eval := &fakeEvaluator{scores: map[string]float64{"write-q": 50}}
	m := New(eval, eval)

	good := fullSubmission(t)
	missing := filepath.Join(t.TempDir(), "nobody")

	outcomes, err := m.GradeBatch(context.Background(), []string{good, missing, good}, &Assignment{Questions: Texts{Write: "write-q"}}, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, good, outcomes[0].Path)
	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, 50.0, outcomes[0].Grade.Score)

	assert.Equal(t, missing, outcomes[1].Path)
	assert.ErrorIs(t, outcomes[1].Err, ErrNotFound)
	assert.Nil(t, outcomes[1].Grade)

	require.NoError(t, outcomes[2].Err)
}

func TestGradeBatchCancelled(t *testing.T) {
	eval := &fakeEvaluator{}
	m := New(eval, eval)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []string{fullSubmission(t), fullSubmission(t), fullSubmission(t)}
	outcomes, err := m.GradeBatch(ctx, paths, assignment(), 1)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, outcomes, len(paths))
	for i, o := range outcomes {
		assert.Equal(t, paths[i], o.Path)
		assert.Nil(t, o.Grade)
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}
