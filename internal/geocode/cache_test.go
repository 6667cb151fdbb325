package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/telemacher/internal/domain"
)

type fakeGeocoder struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeGeocoder) Lookup(_ context.Context, q string) (domain.Coordinate, error) {
	f.calls.Add(1)
	if f.fail[q] {
		return domain.Coordinate{}, errors.New("no result")
	}
	return domain.Coordinate{Lat: float64(len(q)), Lng: -float64(len(q))}, nil
}

// gatedGeocoder blocks each lookup until release is closed and fails if the
// lookup context has been cancelled by then.
type gatedGeocoder struct {
	calls   atomic.Int32
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedGeocoder() *gatedGeocoder {
	return &gatedGeocoder{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedGeocoder) Lookup(ctx context.Context, q string) (domain.Coordinate, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	return domain.Coordinate{Lat: 1, Lng: 2}, nil
}

type memStore struct {
	mu   sync.Mutex
	rows map[string]domain.Coordinate
	err  error
}

func (m *memStore) Get(_ context.Context, q string) (domain.Coordinate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Coordinate{}, m.err
	}
	c, ok := m.rows[q]
	if !ok {
		return domain.Coordinate{}, ErrNotStored
	}
	return c, nil
}

func (m *memStore) Put(_ context.Context, q string, c domain.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[q] = c
	return nil
}

func TestResolve_SameQueryHitsUpstreamOnce(t *testing.T) {
	g := &fakeGeocoder{}
	c, err := NewCache(g, 4)
	require.NoError(t, err)

	first, ok := c.Resolve(context.Background(), "Boston")
	require.True(t, ok)
	second, ok := c.Resolve(context.Background(), "Boston")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), g.calls.Load())
}

func TestResolve_KeyIsExactString(t *testing.T) {
	g := &fakeGeocoder{}
	c, err := NewCache(g, 4)
	require.NoError(t, err)

	for _, q := range []string{"Boston", "boston", " Boston"} {
		_, ok := c.Resolve(context.Background(), q)
		require.True(t, ok)
	}
	assert.Equal(t, int32(3), g.calls.Load())
	assert.Equal(t, 3, c.Len())
}

func TestResolve_EvictsLeastRecentlyUsed(t *testing.T) {
	g := &fakeGeocoder{}
	c, err := NewCache(g, 3)
	require.NoError(t, err)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		c.Resolve(ctx, q)
	}
	// Touch "a" so "b" becomes least recently used.
	c.Resolve(ctx, "a")
	c.Resolve(ctx, "d")

	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.True(t, c.Contains("d"))
	assert.Equal(t, int32(4), g.calls.Load())
}

func TestResolve_FailureIsNotCached(t *testing.T) {
	g := &fakeGeocoder{fail: map[string]bool{"Atlantis": true}}
	c, err := NewCache(g, 4)
	require.NoError(t, err)

	_, ok := c.Resolve(context.Background(), "Atlantis")
	assert.False(t, ok)
	_, ok = c.Resolve(context.Background(), "Atlantis")
	assert.False(t, ok)

	assert.Equal(t, int32(2), g.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestResolve_ConcurrentCallersShareOneLookup(t *testing.T) {
	g := &fakeGeocoder{}
	c, err := NewCache(g, DefaultCapacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("city-%d", i%8)
			_, ok := c.Resolve(context.Background(), q)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, c.Len())
	assert.LessOrEqual(t, g.calls.Load(), int32(64))
	assert.GreaterOrEqual(t, g.calls.Load(), int32(8))
}

func TestResolve_CancelledCallerStillFills(t *testing.T) {
	g := newGatedGeocoder()
	close(g.release)
	c, err := NewCache(g, 4)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, ok := c.Resolve(ctx, "Oslo")
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Lat: 1, Lng: 2}, got)
	assert.True(t, c.Contains("Oslo"))
}

func TestResolve_LeaderCancelDoesNotFailWaiters(t *testing.T) {
	g := newGatedGeocoder()
	c, err := NewCache(g, 4)
	require.NoError(t, err)

	leaderCtx, cancel := context.WithCancel(context.Background())
	results := make(chan bool, 2)
	go func() {
		_, ok := c.Resolve(leaderCtx, "Lima")
		results <- ok
	}()
	<-g.started

	go func() {
		_, ok := c.Resolve(context.Background(), "Lima")
		results <- ok
	}()
	cancel()
	close(g.release)

	assert.True(t, <-results)
	assert.True(t, <-results)
	assert.True(t, c.Contains("Lima"))
}

func TestResolve_StoreTier(t *testing.T) {
	g := &fakeGeocoder{}
	st := &memStore{rows: map[string]domain.Coordinate{"Berlin": {Lat: 52.52, Lng: 13.4}}}
	c, err := NewCache(g, 4, WithStore(st))
	require.NoError(t, err)
	ctx := context.Background()

	got, ok := c.Resolve(ctx, "Berlin")
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Lat: 52.52, Lng: 13.4}, got)
	assert.Equal(t, int32(0), g.calls.Load(), "stored entry must not hit upstream")

	_, ok = c.Resolve(ctx, "Paris")
	require.True(t, ok)
	assert.Equal(t, int32(1), g.calls.Load())
	assert.Contains(t, st.rows, "Paris", "upstream result must be written through")
}

func TestResolve_StoreErrorFallsBackToUpstream(t *testing.T) {
	g := &fakeGeocoder{}
	st := &memStore{rows: map[string]domain.Coordinate{}, err: errors.New("disk on fire")}
	c, err := NewCache(g, 4, WithStore(st))
	require.NoError(t, err)

	_, ok := c.Resolve(context.Background(), "Rome")
	assert.True(t, ok)
	assert.Equal(t, int32(1), g.calls.Load())
}

func TestNewCache_DefaultCapacity(t *testing.T) {
	c, err := NewCache(&fakeGeocoder{}, 0)
	require.NoError(t, err)
	for i := 0; i < DefaultCapacity+1; i++ {
		c.entries.Add(fmt.Sprint(i), domain.Coordinate{})
	}
	assert.Equal(t, DefaultCapacity, c.Len())
}
