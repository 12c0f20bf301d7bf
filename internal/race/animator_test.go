package race

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/footdash/internal/api"
	"github.com/keilerkonzept/footdash/internal/chart"
	"github.com/keilerkonzept/footdash/internal/chart/charttest"
	"github.com/keilerkonzept/footdash/internal/views"
)

var raceView = views.Descriptor{
	ID: views.RaceCumWins, Kind: views.KindRace,
	Path: views.PathTopCumulative, Metric: "wins", TopN: 10, Cumulative: true,
}

func sampleDataset() Dataset {
	return Dataset{
		{Year: 2000, Rows: []Row{{"A", 5}, {"B", 3}}},
		{Year: 2001, Rows: []Row{{"B", 6}, {"A", 5}}},
		{Year: 2002, Rows: []Row{{"A", 7}, {"C", 9}, {"B", 6}}},
	}
}

func testPainter(_ views.Descriptor, f Frame) chart.Description {
	labels := make([]string, len(f.Rows))
	data := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		labels[i] = r.Team
		data[i] = r.Value
	}
	return chart.Description{
		Title:      fmt.Sprint(f.Year),
		Categories: labels,
		Series:     []chart.Series{{Type: chart.Bar, Data: data}},
	}
}

func staticLoader(ds Dataset, err error) Loader {
	return func(context.Context, views.Descriptor) (Dataset, error) {
		return ds, err
	}
}

func newTestAnimator(load Loader) (*Animator, *charttest.Recorder, *ManualScheduler) {
	rec := charttest.NewRecorder()
	sched := NewManualScheduler()
	a := NewAnimator(rec, load, testPainter, WithScheduler(sched))
	return a, rec, sched
}

func TestAnimator_StartPaintsFirstFrameImmediately(t *testing.T) {
	a, rec, sched := newTestAnimator(staticLoader(sampleDataset(), nil))
	assert.Equal(t, Idle, a.State())

	require.NoError(t, a.Start(context.Background(), raceView))

	assert.Equal(t, Playing, a.State())
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 1, sched.Active())
	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Reset)
	assert.Equal(t, "2000", calls[0].Desc.Title)
	assert.Equal(t, []string{"A", "B"}, calls[0].Desc.Categories)
}

func TestAnimator_TickReordersDescending(t *testing.T) {
	a, rec, sched := newTestAnimator(staticLoader(sampleDataset(), nil))
	require.NoError(t, a.Start(context.Background(), raceView))

	sched.Fire()
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "2001", last.Title)
	assert.Equal(t, []string{"B", "A"}, last.Categories)
	assert.False(t, rec.Calls()[1].Reset, "ticks merge into the current chart")

	sched.Fire()
	last, _ = rec.Last()
	assert.Equal(t, []string{"C", "A", "B"}, last.Categories)
	assert.Equal(t, []float64{9, 7, 6}, last.Series[0].Data)
}

func TestAnimator_LoopsCyclically(t *testing.T) {
	ds := sampleDataset()
	a, rec, sched := newTestAnimator(staticLoader(ds, nil))
	require.NoError(t, a.Start(context.Background(), raceView))

	for i := 1; i <= len(ds); i++ {
		sched.Fire()
		assert.Equal(t, i%len(ds), a.Index())
	}
	assert.Equal(t, 0, a.Index())
	last, _ := rec.Last()
	assert.Equal(t, "2000", last.Title)
	assert.Equal(t, len(ds)+1, rec.Len())
}

func TestAnimator_StopIsIdempotent(t *testing.T) {
	a, rec, sched := newTestAnimator(staticLoader(sampleDataset(), nil))
	assert.NotPanics(t, a.Stop)
	assert.NotPanics(t, a.Stop)
	assert.Equal(t, Stopped, a.State())

	require.NoError(t, a.Start(context.Background(), raceView))
	a.Stop()
	a.Stop()
	assert.Equal(t, Stopped, a.State())
	assert.Equal(t, 0, sched.Active())

	sched.Fire()
	assert.Equal(t, 1, rec.Len(), "no paint after stop")
}

func TestAnimator_RestartKeepsSingleTimer(t *testing.T) {
	a, _, sched := newTestAnimator(staticLoader(sampleDataset(), nil))
	require.NoError(t, a.Start(context.Background(), raceView))
	require.NoError(t, a.Start(context.Background(), raceView))
	require.NoError(t, a.Start(context.Background(), raceView))

	assert.Equal(t, 1, sched.Active())
	assert.Equal(t, 3, sched.Armed())
	assert.Equal(t, Playing, a.State())
}

func TestAnimator_StaleTickIsIgnored(t *testing.T) {
	a, rec, _ := newTestAnimator(staticLoader(sampleDataset(), nil))
	require.NoError(t, a.Start(context.Background(), raceView))
	a.mu.Lock()
	oldRun := a.run
	a.mu.Unlock()

	require.NoError(t, a.Start(context.Background(), raceView))
	before := rec.Len()
	a.tick(oldRun)
	assert.Equal(t, before, rec.Len())
	assert.Equal(t, 0, a.Index())
}

func TestAnimator_LoadError(t *testing.T) {
	boom := &api.FetchError{Path: views.PathTopCumulative, Status: 500}
	a, rec, sched := newTestAnimator(staticLoader(nil, boom))

	err := a.Start(context.Background(), raceView)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Stopped, a.State())
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, 0, sched.Armed())
}

func TestAnimator_EmptyDataset(t *testing.T) {
	a, rec, sched := newTestAnimator(staticLoader(Dataset{}, nil))

	err := a.Start(context.Background(), raceView)
	assert.ErrorIs(t, err, ErrEmptyDataset)
	assert.Equal(t, Stopped, a.State())
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, 0, sched.Armed())
}

func TestAnimator_StopDuringLoadSupersedes(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	load := func(ctx context.Context, _ views.Descriptor) (Dataset, error) {
		close(entered)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return sampleDataset(), nil
	}
	a, rec, sched := newTestAnimator(load)

	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background(), raceView) }()

	<-entered
	assert.Equal(t, Loading, a.State())
	a.Stop()
	close(release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("Start did not return")
	}
	assert.Equal(t, Stopped, a.State())
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, 0, sched.Armed())
}

func TestAnimator_CancelledContextPaintsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	load := func(context.Context, views.Descriptor) (Dataset, error) {
		cancel()
		return sampleDataset(), nil
	}
	a, rec, sched := newTestAnimator(load)

	err := a.Start(ctx, raceView)
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, Stopped, a.State())
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, 0, sched.Armed())
}

func TestAnimator_TickerScheduler(t *testing.T) {
	rec := charttest.NewRecorder()
	a := NewAnimator(rec, staticLoader(sampleDataset(), nil), testPainter,
		WithInterval(5*time.Millisecond))
	require.NoError(t, a.Start(context.Background(), raceView))

	require.True(t, rec.WaitFor(4, 2*time.Second), "expected repaints from the ticker")
	a.Stop()
	n := rec.Len()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, rec.Len(), "ticker keeps painting after stop")
}

func TestFrame_Sorted(t *testing.T) {
	f := Frame{Year: 1, Rows: []Row{{"x", 1}, {"y", 2}, {"z", 2}}}
	assert.Equal(t, []Row{{"y", 2}, {"z", 2}, {"x", 1}}, f.Sorted().Rows)
	assert.Equal(t, "x", f.Rows[0].Team)
}

func TestFromItems(t *testing.T) {
	items := []api.RaceItem{
		{Year: 2001, Top: []api.RaceEntry{{Team: "B", Metrics: map[string]float64{"wins": 6, "gf": 1}}}},
		{Year: 2000, Top: []api.RaceEntry{{Team: "A", Metrics: map[string]float64{"wins": 5, "gf": 2}}}},
	}
	ds := FromItems(items, "gf")
	require.Len(t, ds, 2)
	assert.Equal(t, 2000, ds[0].Year)
	assert.Equal(t, []Row{{"A", 2}}, ds[0].Rows)
	assert.Equal(t, []Row{{"B", 1}}, ds[1].Rows)

	assert.Empty(t, FromItems(nil, "wins"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "unknown", State(42).String())
}
