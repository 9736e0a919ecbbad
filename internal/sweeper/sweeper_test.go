package sweeper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	purged int64
	err    error
	calls  int
}

func (f *fakePurger) PurgeExpired(ctx context.Context) (int64, error) {
	f.calls++
	return f.purged, f.err
}

func TestSweeper_Run(t *testing.T) {
	purger := &fakePurger{purged: 3}
	s := New(purger, "@every 1m")

	s.run()

	assert.Equal(t, 1, purger.calls)
}

func TestSweeper_RunSurvivesPurgeError(t *testing.T) {
	purger := &fakePurger{err: errors.New("connection refused")}
	s := New(purger, "@every 1m")

	s.run()
	s.run()

	assert.Equal(t, 2, purger.calls)
}

func TestSweeper_StartStop(t *testing.T) {
	s := New(&fakePurger{}, "*/5 * * * *")

	require.NoError(t, s.Start())
	s.Stop()
}

func TestSweeper_StartInvalidSchedule(t *testing.T) {
	s := New(&fakePurger{}, "not a schedule")

	assert.Error(t, s.Start())
}
