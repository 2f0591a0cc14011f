// internal/telemetry/loop_test.go
package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/poller"
	"github.com/tamzrod/vision-dashboard/internal/render"
	"github.com/tamzrod/vision-dashboard/internal/status"
)

// ---- helpers ----

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// scriptedFetcher plays back a fixed list of outcomes, then repeats the last one.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	sample status.Sample
	err    error
}

func (f *scriptedFetcher) FetchStatus(ctx context.Context) (status.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	return f.steps[i].sample, f.steps[i].err
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newPoller(t *testing.T, f poller.Fetcher) *poller.Poller {
	t.Helper()
	p, err := poller.New(poller.Config{Interval: 5 * time.Millisecond, Timeout: time.Second}, f)
	if err != nil {
		t.Fatalf("poller.New() err=%v", err)
	}
	return p
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	p := newPoller(t, &scriptedFetcher{steps: []step{{}}})

	if _, err := New(nil, render.NewSurface(), nil); err == nil {
		t.Fatalf("expected error for nil poller")
	}
	if _, err := New(p, nil, nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestLoop_RendersDecidedState(t *testing.T) {
	f := &scriptedFetcher{steps: []step{
		{sample: status.Sample{Human: 90, Animal: 5, Other: 5, TimeMs: 120}},
	}}
	surface := render.NewSurface()

	l, err := New(newPoller(t, f), surface, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	defer l.Stop()

	waitFor(t, "first render", func() bool { return surface.Snapshot().Version > 0 })

	fr := surface.Frame()
	if fr.Label != render.TextHuman || fr.LabelClass != render.ClassBase+" "+render.ClassHuman {
		t.Fatalf("unexpected label: %q / %q", fr.Label, fr.LabelClass)
	}
	if fr.Confidence != "90% Confidence" {
		t.Fatalf("unexpected confidence: %q", fr.Confidence)
	}
	if fr.Latency != "120" {
		t.Fatalf("unexpected latency: %q", fr.Latency)
	}
}

func TestLoop_FailedTickKeepsPriorState(t *testing.T) {
	f := &scriptedFetcher{steps: []step{
		{sample: status.Sample{Human: 10, Animal: 80, Other: 10, TimeMs: 95}},
		{err: errors.New("dial tcp 192.168.4.1:80: i/o timeout")},
	}}
	surface := render.NewSurface()
	logs := &syncBuffer{}

	p := newPoller(t, f)
	l, err := New(p, surface, logger.NewWriter(logs))
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() err=%v", err)
	}

	waitFor(t, "failed ticks", func() bool { return p.Stats().TransportFailures >= 3 })
	l.Stop()

	snap := surface.Snapshot()
	if snap.Version != 1 {
		t.Fatalf("failed ticks must not render, version=%d", snap.Version)
	}
	if snap.Frame.Label != render.TextAnimal {
		t.Fatalf("prior state lost: %+v", snap.Frame)
	}
	if !strings.Contains(logs.String(), "status poll #2 failed: dial tcp") {
		t.Fatalf("failure not logged:\n%s", logs.String())
	}
}

func TestLoop_StartTwiceAndRestart(t *testing.T) {
	f := &scriptedFetcher{steps: []step{{sample: status.Sample{Other: 1}}}}

	var renders atomic.Int64
	r := render.Func(func(status.DisplayState) { renders.Add(1) })

	l, err := New(newPoller(t, f), r, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	if err := l.Start(context.Background()); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", err)
	}
	if !l.Running() {
		t.Fatalf("expected running")
	}

	l.Stop()
	l.Stop()
	if l.Running() {
		t.Fatalf("expected stopped")
	}

	before := renders.Load()
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("restart err=%v", err)
	}
	waitFor(t, "render after restart", func() bool { return renders.Load() > before })
	l.Stop()
}

func TestLoop_NoFetchAfterStop(t *testing.T) {
	f := &scriptedFetcher{steps: []step{{sample: status.Sample{Human: 1}}}}

	l, err := New(newPoller(t, f), render.NewSurface(), nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() err=%v", err)
	}

	waitFor(t, "some fetches", func() bool { return f.Calls() >= 3 })
	l.Stop()

	calls := f.Calls()
	time.Sleep(40 * time.Millisecond)
	if f.Calls() != calls {
		t.Fatalf("fetches after Stop: %d -> %d", calls, f.Calls())
	}
}

func TestLoop_FirstTickAfterOneInterval(t *testing.T) {
	f := &scriptedFetcher{steps: []step{{sample: status.Sample{Human: 1}}}}
	p, err := poller.New(poller.Config{Interval: time.Hour}, f)
	if err != nil {
		t.Fatalf("poller.New() err=%v", err)
	}

	l, err := New(p, render.NewSurface(), nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() err=%v", err)
	}

	time.Sleep(20 * time.Millisecond)
	l.Stop()

	if f.Calls() != 0 {
		t.Fatalf("expected no fetch before the first interval, got %d", f.Calls())
	}
}

func TestLoop_SlowRendererKeepsPollCadence(t *testing.T) {
	f := &scriptedFetcher{steps: []step{{sample: status.Sample{Animal: 50}}}}
	p := newPoller(t, f)

	var renders atomic.Int64
	slow := render.Func(func(status.DisplayState) {
		renders.Add(1)
		time.Sleep(100 * time.Millisecond)
	})

	l, err := New(p, slow, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() err=%v", err)
	}
	time.Sleep(500 * time.Millisecond)
	l.Stop()

	// ~100 intervals elapsed; the renderer managed about 5.
	st := p.Stats()
	if st.Ticks < 30 || f.Calls() < 30 {
		t.Fatalf("renderer throttled polling: calls=%d stats=%+v renders=%d", f.Calls(), st, renders.Load())
	}
	if st.Superseded == 0 {
		t.Fatalf("expected superseded results, stats=%+v", st)
	}
}

// A sequence of completed ticks applied in order, as the consumer sees them.
func TestApply_Sequence(t *testing.T) {
	surface := render.NewSurface()
	l := &Loop{renderer: surface}

	steps := []struct {
		res       poller.PollResult
		wantLabel string
		wantConf  string
	}{
		{poller.PollResult{Seq: 1, Sample: status.Sample{}}, render.TextOther, "0% Confidence"},
		{poller.PollResult{Seq: 2, Sample: status.Sample{Human: 60, Animal: 60, Other: 1}}, render.TextOther, "1% Confidence"},
		{poller.PollResult{Seq: 3, Err: errors.New("timeout")}, render.TextOther, "1% Confidence"},
		{poller.PollResult{Seq: 4, Sample: status.Sample{Human: 20, Animal: 70, Other: 10}}, render.TextAnimal, "70% Confidence"},
		{poller.PollResult{Seq: 5, Err: status.ErrMalformed}, render.TextAnimal, "70% Confidence"},
		{poller.PollResult{Seq: 6, Sample: status.Sample{Human: 90, Animal: 5, Other: 5}}, render.TextHuman, "90% Confidence"},
	}

	for _, s := range steps {
		l.apply(s.res)

		fr := surface.Frame()
		if fr.Label != s.wantLabel || fr.Confidence != s.wantConf {
			t.Fatalf("tick #%d: got=%q/%q want=%q/%q", s.res.Seq, fr.Label, fr.Confidence, s.wantLabel, s.wantConf)
		}
	}

	if v := surface.Snapshot().Version; v != 4 {
		t.Fatalf("expected 4 renders, got %d", v)
	}
}
