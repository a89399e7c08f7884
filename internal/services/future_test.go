package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_ResolvesValue(t *testing.T) {
	f := Go(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	<-f.Done()
	assert.True(t, f.Result().OK())
}

func TestFuture_ResolvesError(t *testing.T) {
	boom := errors.New("boom")
	f := Go(context.Background(), func(context.Context) (string, error) {
		return "", boom
	})

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, f.Result().OK())
}

func TestFuture_AwaitStopsOnContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_RunsConcurrently(t *testing.T) {
	l := NewSimulatedLatency(0.05)
	ctx := context.Background()

	start := time.Now()
	a := Go(ctx, func(ctx context.Context) (bool, error) { return true, l.Wait(ctx, OpListEvents) })
	b := Go(ctx, func(ctx context.Context) (bool, error) { return true, l.Wait(ctx, OpLogin) })

	_, errA := a.Await(ctx)
	_, errB := b.Await(ctx)

	require.NoError(t, errA)
	require.NoError(t, errB)
	// 40ms and 50ms in parallel, not 90ms in sequence.
	assert.Less(t, time.Since(start), 85*time.Millisecond)
}
