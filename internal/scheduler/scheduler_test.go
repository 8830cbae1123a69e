package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/atmosphere/internal/weather"
)

type recordingRefresher struct {
	mu    sync.Mutex
	seen  []string
	fails map[string]bool
}

func (r *recordingRefresher) Refresh(_ context.Context, loc weather.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, loc.City)
	if r.fails[loc.City] {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingRefresher) cities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.seen...)
	sort.Strings(out)
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce_RefreshesEveryLocation(t *testing.T) {
	ref := &recordingRefresher{fails: map[string]bool{"Rome": true}}
	locs := []weather.Location{{City: "Paris"}, {City: "Rome"}, {City: "Lisbon"}}

	s := New(locs, time.Minute, ref, quietLogger())
	s.RunOnce()

	assert.Equal(t, []string{"Lisbon", "Paris", "Rome"}, ref.cities())
}

func TestStart_NoLocations(t *testing.T) {
	ref := &recordingRefresher{}
	s := New(nil, time.Minute, ref, quietLogger())

	require.NoError(t, s.Start())
	s.Stop()
	assert.Empty(t, ref.cities())
}

func TestStart_RunsImmediately(t *testing.T) {
	ref := &recordingRefresher{}
	s := New([]weather.Location{{City: "Paris"}}, time.Hour, ref, quietLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return len(ref.cities()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
