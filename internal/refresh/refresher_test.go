package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehq/servicebot/internal/cache"
	"github.com/garagehq/servicebot/internal/pricing"
	"github.com/garagehq/servicebot/internal/recall"
)

type stubPricing struct {
	mu     sync.Mutex
	ranges []pricing.Range
	err    error
	calls  int
	block  chan struct{} // when set, FetchRanges waits until closed
}

func (s *stubPricing) Name() string { return "stub-pricing" }

func (s *stubPricing) FetchRanges(ctx context.Context) ([]pricing.Range, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.ranges, s.err
}

func (s *stubPricing) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubRecalls struct {
	files []recall.File
	err   error
	calls int
}

func (s *stubRecalls) Name() string { return "stub-recalls" }

func (s *stubRecalls) ListFiles(ctx context.Context) ([]recall.File, error) {
	s.calls++
	return s.files, s.err
}

func testRanges() []pricing.Range {
	return []pricing.Range{{
		Name: "MG!A1:D10",
		Rows: [][]string{
			{"Model", "Engine", "Interim Service"},
			{"MG HS", "1.5T", "£150"},
		},
	}}
}

func TestRefresh_InstallsSnapshot(t *testing.T) {
	c := cache.New(time.Hour)
	src := &stubPricing{ranges: testRanges()}
	rec := &stubRecalls{files: []recall.File{
		{Name: "MG HS Recall 2023.pdf"},
		{Name: "notes.txt"},
	}}

	r := New(c, []PricingSource{src}, rec, Options{})
	require.NoError(t, r.Refresh(context.Background()))

	snap := c.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Pricing, 1)
	assert.Equal(t, "MG HS", snap.Pricing[0].Model)
	require.Len(t, snap.Recalls, 1)
	assert.Equal(t, "MG HS Recall 2023.pdf", snap.Recalls[0].Name)
	assert.False(t, c.Refreshing(), "guard released after success")
}

func TestRefresh_IdempotentUnderStableInput(t *testing.T) {
	c := cache.New(time.Hour)
	src := &stubPricing{ranges: testRanges()}
	r := New(c, []PricingSource{src}, &stubRecalls{}, Options{})

	require.NoError(t, r.Refresh(context.Background()))
	first := c.Snapshot()

	require.NoError(t, r.Refresh(context.Background()))
	second := c.Snapshot()

	require.Len(t, second.Pricing, len(first.Pricing))
	assert.Equal(t, first.Pricing[0].Fields(), second.Pricing[0].Fields())
}

func TestRefresh_FetchFailureLeavesSnapshot(t *testing.T) {
	c := cache.New(time.Hour)
	good := &stubPricing{ranges: testRanges()}
	r := New(c, []PricingSource{good}, &stubRecalls{}, Options{})
	require.NoError(t, r.Refresh(context.Background()))
	before := c.Snapshot()

	// Second refresh fails; the first snapshot must survive untouched.
	bad := &stubPricing{err: eris.New("upstream 500")}
	r = New(c, []PricingSource{good, bad}, &stubRecalls{}, Options{})
	err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stub-pricing")

	assert.Same(t, before, c.Snapshot())
	assert.False(t, c.Refreshing(), "guard released after failure")
}

func TestRefresh_RecallFailureAbortsWholeRefresh(t *testing.T) {
	c := cache.New(time.Hour)
	src := &stubPricing{ranges: testRanges()}
	rec := &stubRecalls{err: eris.New("listing failed")}

	r := New(c, []PricingSource{src}, rec, Options{})
	require.Error(t, r.Refresh(context.Background()))
	assert.Nil(t, c.Snapshot())
}

func TestRefresh_ReentrancySuppressed(t *testing.T) {
	c := cache.New(time.Hour)
	block := make(chan struct{})
	src := &stubPricing{ranges: testRanges(), block: block}
	r := New(c, []PricingSource{src}, &stubRecalls{}, Options{})

	done := make(chan error, 1)
	go func() { done <- r.Refresh(context.Background()) }()

	// Wait until the first refresh is inside its fetch.
	require.Eventually(t, func() bool { return src.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	// Re-entrant call: immediate no-op, no second fetch.
	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, 1, src.callCount())
	assert.Nil(t, c.Snapshot())

	close(block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, src.callCount())
	assert.False(t, c.Refreshing())
	assert.NotNil(t, c.Snapshot())
}

func TestRefresh_ConcurrentFetchPreservesSourceOrder(t *testing.T) {
	c := cache.New(time.Hour)
	first := &stubPricing{ranges: []pricing.Range{{
		Rows: [][]string{{"Model"}, {"MG HS"}},
	}}}
	second := &stubPricing{ranges: []pricing.Range{{
		Rows: [][]string{{"Model"}, {"Citroen C3"}},
	}}}

	r := New(c, []PricingSource{first, second}, &stubRecalls{}, Options{Concurrent: true})
	require.NoError(t, r.Refresh(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap.Pricing, 2)
	assert.Equal(t, "MG HS", snap.Pricing[0].Model)
	assert.Equal(t, "Citroen C3", snap.Pricing[1].Model)
}

func TestEnsureFresh_SkipsWhenFresh(t *testing.T) {
	c := cache.New(time.Hour)
	src := &stubPricing{ranges: testRanges()}
	r := New(c, []PricingSource{src}, &stubRecalls{}, Options{})

	require.NoError(t, r.EnsureFresh(context.Background()))
	assert.Equal(t, 1, src.callCount())

	// Fresh snapshot: no second fetch.
	require.NoError(t, r.EnsureFresh(context.Background()))
	assert.Equal(t, 1, src.callCount())
}

func TestRun_StopsOnCancel(t *testing.T) {
	c := cache.New(time.Hour)
	src := &stubPricing{ranges: testRanges()}
	r := New(c, []PricingSource{src}, &stubRecalls{}, Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.callCount() >= 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
