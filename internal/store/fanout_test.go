package store

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"

	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/stretchr/testify/require"
)

type persisterStub struct {
	loadFn func(context.Context) (model.Board, error)
	saveFn func(context.Context, model.Board) error
	saves  atomic.Int32
}

func (p *persisterStub) LoadBoard(ctx context.Context) (model.Board, error) {
	if p.loadFn != nil {
		return p.loadFn(ctx)
	}
	return nil, os.ErrNotExist
}

func (p *persisterStub) SaveBoard(ctx context.Context, b model.Board) error {
	p.saves.Add(1)
	if p.saveFn != nil {
		return p.saveFn(ctx, b)
	}
	return nil
}

func TestFanoutSavesEverywhere(t *testing.T) {
	t.Parallel()

	primary := &persisterStub{}
	mirrorA := &persisterStub{}
	mirrorB := &persisterStub{}
	f := NewFanout(primary, mirrorA, mirrorB)

	require.NoError(t, f.SaveBoard(context.Background(), sampleBoard()))
	require.EqualValues(t, 1, primary.saves.Load())
	require.EqualValues(t, 1, mirrorA.saves.Load())
	require.EqualValues(t, 1, mirrorB.saves.Load())
}

func TestFanoutJoinsFailuresAndStillSavesOthers(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("disk full")
	offline := errors.New("postgres offline")
	primary := &persisterStub{saveFn: func(context.Context, model.Board) error { return diskFull }}
	healthy := &persisterStub{}
	mirror := &persisterStub{saveFn: func(context.Context, model.Board) error { return offline }}

	err := NewFanout(primary, healthy, mirror).SaveBoard(context.Background(), sampleBoard())
	require.ErrorIs(t, err, diskFull)
	require.ErrorIs(t, err, offline)
	require.EqualValues(t, 1, healthy.saves.Load())
}

func TestFanoutLoadsFromPrimaryOnly(t *testing.T) {
	t.Parallel()

	want := sampleBoard()
	primary := &persisterStub{loadFn: func(context.Context) (model.Board, error) { return want, nil }}
	mirror := &persisterStub{loadFn: func(context.Context) (model.Board, error) {
		t.Fatal("mirror must not be read")
		return nil, nil
	}}

	got, err := NewFanout(primary, mirror).LoadBoard(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = NewFanout(&persisterStub{}).LoadBoard(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}
