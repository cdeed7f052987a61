package seed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/vanshika/graphqa/internal/logging"
)

// LoadError accumulates the per-item failures of a load.
type LoadError struct {
	Errors []error
}

func (e *LoadError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	return e.Errors
}

// Loader writes a Dataset through a Repository using a bounded worker pool.
type Loader struct {
	repo    *Repository
	workers int
	logger  *slog.Logger
}

// NewLoader creates a Loader with the provided concurrency.
func NewLoader(repo *Repository, workers int, logger *slog.Logger) *Loader {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{repo: repo, workers: workers, logger: logger}
}

// Load creates constraints, then upserts every user, then every pin. Pins
// are written after all users so their owner and viewer nodes exist.
func (l *Loader) Load(ctx context.Context, ds Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if err := l.repo.EnsureConstraints(ctx); err != nil {
		return err
	}

	l.logger.Info("loading users", "count", len(ds.Users), "workers", l.workers)
	if err := l.run(ctx, len(ds.Users), func(idx int) error {
		return l.repo.UpsertUser(ctx, ds.Users[idx])
	}); err != nil {
		return err
	}

	l.logger.Info("loading pins", "count", len(ds.Pins))
	return l.run(ctx, len(ds.Pins), func(idx int) error {
		return l.repo.UpsertPin(ctx, ds.Pins[idx])
	})
}

func (l *Loader) run(ctx context.Context, total int, fn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if err := fn(idx); err != nil {
					errCh <- err
				}
			}
		}()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var loadErr LoadError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		loadErr.Errors = append(loadErr.Errors, err)
	}
	if len(loadErr.Errors) == 0 {
		return nil
	}
	return &loadErr
}
