package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simonjohansson/jobboard/internal/model"
	"golang.org/x/sync/errgroup"
)

var timeNow = time.Now

type Persister interface {
	LoadBoard(ctx context.Context) (model.Board, error)
	SaveBoard(ctx context.Context, b model.Board) error
}

var (
	_ Persister = (*MarkdownStore)(nil)
	_ Persister = (*PostgresStore)(nil)
	_ Persister = (*Fanout)(nil)
)

// Fanout loads from the primary persister and saves to the primary and every
// mirror concurrently. All save failures are reported together.
type Fanout struct {
	primary Persister
	mirrors []Persister
}

func NewFanout(primary Persister, mirrors ...Persister) *Fanout {
	return &Fanout{primary: primary, mirrors: mirrors}
}

func (f *Fanout) LoadBoard(ctx context.Context) (model.Board, error) {
	return f.primary.LoadBoard(ctx)
}

func (f *Fanout) SaveBoard(ctx context.Context, b model.Board) error {
	sinks := append([]Persister{f.primary}, f.mirrors...)
	errs := make([]error, len(sinks))

	g, gctx := errgroup.WithContext(ctx)
	for i, sink := range sinks {
		i, sink := i, sink
		g.Go(func() error {
			if err := sink.SaveBoard(gctx, b); err != nil {
				errs[i] = fmt.Errorf("sink %d: %w", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
