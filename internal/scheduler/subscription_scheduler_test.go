package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeExpirer) ExpireSubscriptions(now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return 1, f.err
}

func TestSubscriptionScheduler_RunOnce(t *testing.T) {
	expirer := &fakeExpirer{}
	s := NewSubscriptionScheduler(expirer, "5 0 * * *", time.UTC)
	fixed := time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunOnce()

	require.Len(t, expirer.calls, 1)
	assert.Equal(t, fixed, expirer.calls[0])
}

func TestSubscriptionScheduler_RunOnceSwallowsErrors(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("database down")}
	s := NewSubscriptionScheduler(expirer, "5 0 * * *", nil)

	assert.NotPanics(t, s.RunOnce)
	assert.Len(t, expirer.calls, 1)
}

func TestSubscriptionScheduler_Start(t *testing.T) {
	t.Run("Invalid schedule", func(t *testing.T) {
		s := NewSubscriptionScheduler(&fakeExpirer{}, "not a schedule", nil)
		assert.Error(t, s.Start())
	})

	t.Run("Valid schedule", func(t *testing.T) {
		s := NewSubscriptionScheduler(&fakeExpirer{}, "@every 1h", nil)
		require.NoError(t, s.Start())
		s.Stop()
	})
}
