package mentor

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds GradeBatch when no limit is given.
const DefaultConcurrency = 4

// Outcome is the grading result of one submission in a batch.
// Exactly one of Grade and Err is set. Submissions skipped because the
// context was cancelled carry the context error.
type Outcome struct {
	Path  string
	Grade *Grade
	Err   error
}

// GradeBatch grades every submission in paths with at most concurrency
// submissions in flight. A failing submission does not stop the batch; its
// error is reported in its Outcome. Outcomes keep the order of paths.
// The returned error is non-nil only when ctx is cancelled.
func (m *Mentor) GradeBatch(ctx context.Context, paths []string, assignment *Assignment, concurrency int) ([]Outcome, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(paths))
	for i, path := range paths {
		outcomes[i].Path = path
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				outcomes[i].Err = err
				return err
			}
			grade, err := m.EvaluateAll(egCtx, path, assignment)
			if err != nil {
				m.logger.Error("Submission failed", zap.String("path", path), zap.Error(err))
			}
			outcomes[i] = Outcome{Path: path, Grade: grade, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return outcomes, err
	}

	return outcomes, ctx.Err()
}
