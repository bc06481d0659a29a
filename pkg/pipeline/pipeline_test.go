package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/townsquare/pkg/cache"
	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/measure"
	"github.com/matzehuels/townsquare/pkg/names"
	"github.com/matzehuels/townsquare/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !terr.Is(err, terr.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, terr.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Participants: Generate(6)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("viewport = %vx%v, want defaults", opts.Width, opts.Height)
	}
	if opts.TokenSize != opts.Config.Theme.TokenSize {
		t.Errorf("TokenSize = %v, want theme default", opts.TokenSize)
	}
	if opts.Margin != opts.Config.Margin(opts.Names()) || opts.Margin <= 0 {
		t.Errorf("Margin = %v, want derived budget", opts.Margin)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code terr.Code
	}{
		{"too few participants", Options{Participants: Generate(4)}, terr.ErrCodeInvalidInput},
		{"too many participants", Options{Participants: Generate(21)}, terr.ErrCodeInvalidInput},
		{"empty name", Options{Participants: FromNames("A", "B", "", "D", "E")}, terr.ErrCodeInvalidInput},
		{"negative reminders", Options{Participants: append(Generate(4), Participant{Name: "X", Reminders: -1})}, terr.ErrCodeInvalidInput},
		{"margin swallows circle", Options{Participants: Generate(5), Width: 200, Height: 200, Margin: 100}, terr.ErrCodeInvalidViewport},
		{"negative size", Options{Participants: Generate(5), Width: -1}, terr.ErrCodeInvalidViewport},
		{"bad format", Options{Participants: Generate(5), Formats: []string{"gif"}}, terr.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !terr.Is(err, tt.code) {
				t.Errorf("code = %q, want %q (%v)", terr.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestDedupeFormats(t *testing.T) {
	opts := Options{Formats: []string{"svg", "json", "svg"}}
	opts.SetRenderDefaults()
	if strings.Join(opts.Formats, ",") != "svg,json" {
		t.Errorf("Formats = %v, want [svg json]", opts.Formats)
	}
}

func TestReadParticipants(t *testing.T) {
	src := `
[[participant]]
name = "Ada"
reminders = 3
expanded = true

[[participant]]
name = "Brin"
`
	ps, err := ReadParticipants(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadParticipants() error: %v", err)
	}
	want := []Participant{{Name: "Ada", Reminders: 3, Expanded: true}, {Name: "Brin"}}
	if len(ps) != len(want) {
		t.Fatalf("got %d participants, want %d", len(ps), len(want))
	}
	for i := range want {
		if ps[i] != want[i] {
			t.Errorf("participant %d = %+v, want %+v", i, ps[i], want[i])
		}
	}

	opts := Options{Participants: ps}
	if got := opts.Reminders(); len(got) != 1 || got[0].Count != 3 || !got[0].Expanded {
		t.Errorf("Reminders() = %+v", got)
	}

	if _, err := ReadParticipants(strings.NewReader("[[participant]]\nnick = \"x\"\n")); err == nil {
		t.Error("unknown keys should be rejected")
	}
	if _, err := LoadParticipants(t.TempDir() + "/missing.toml"); !terr.Is(err, terr.ErrCodeNotFound) {
		t.Errorf("LoadParticipants(missing) = %v, want NOT_FOUND", err)
	}
}

func TestGenerate(t *testing.T) {
	ps := Generate(3)
	if len(ps) != 3 || ps[0].Name != "Player 1" || ps[2].Name != "Player 3" {
		t.Errorf("Generate(3) = %+v", ps)
	}
	if len(Generate(-1)) != 0 {
		t.Error("Generate(-1) should be empty")
	}
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestExecuteCaches(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{
		Participants: FromNames("Ada", "Brin", "Cato", "Dax", "Eve", "Fay", "Gus"),
		Formats:      []string{FormatSVG, FormatJSON, FormatDOT},
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if first.Stats.Participants != 7 || len(first.Layout.Slots) != 7 {
		t.Errorf("slots = %d, want 7", len(first.Layout.Slots))
	}
	for _, f := range opts.Formats {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !strings.HasPrefix(string(first.Artifacts[FormatDOT]), "digraph stacking {") {
		t.Errorf("dot artifact = %.40q", first.Artifacts[FormatDOT])
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if second.LayoutHash != first.LayoutHash {
		t.Errorf("layout hash changed: %s != %s", second.LayoutHash, first.LayoutHash)
	}
	for i, s := range second.Layout.Slots {
		f := first.Layout.Slots[i]
		if s.DistanceMultiplier != f.DistanceMultiplier || s.Z != f.Z || s.Label != f.Label {
			t.Errorf("slot %d differs after cache round trip: %+v vs %+v", i, s, f)
		}
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the layout cache")
	}
	if !third.CacheInfo.RenderHit {
		t.Error("identical layouts should reuse rendered artifacts")
	}
}

func TestInjectedMeasurerBypassesLayoutCache(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{Participants: FromNames("Ada", "Brin", "Cato", "Dax", "Eve")}

	if _, _, err := r.ComputeLayoutWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("ComputeLayoutWithCacheInfo() error: %v", err)
	}

	base := opts
	base.SetLayoutDefaults()
	counting := measure.NewCounting(base.Heuristic())
	opts.Measurer = counting
	for i := range 2 {
		_, hit, err := r.ComputeLayoutWithCacheInfo(ctx, opts)
		if err != nil {
			t.Fatalf("run %d: error: %v", i, err)
		}
		if hit {
			t.Errorf("run %d: injected measurer served from the layout cache", i)
		}
	}
	if counting.Total() == 0 {
		t.Error("injected measurer was never called")
	}
}

func TestCacheKeyCoversReminders(t *testing.T) {
	a := Options{Participants: FromNames("A", "B", "C", "D", "E")}
	b := Options{Participants: FromNames("A", "B", "C", "D", "E")}
	b.Participants[2].Reminders = 4
	if a.InputHash() == b.InputHash() {
		t.Error("reminders must change the input hash")
	}

	a.SetLayoutDefaults()
	c := a
	cfg := *a.Config
	cfg.Optimizer.Gap = 20
	c.Config = &cfg
	if a.LayoutKeyOpts() == c.LayoutKeyOpts() {
		t.Error("engine config must change the layout key")
	}
}

func TestScopeIsolatesTables(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{Participants: FromNames("Ada", "Brin", "Cato", "Dax", "Eve")}

	steps := []struct {
		scope   string
		wantHit bool
	}{
		{"t1", false},
		{"t2", false},
		{"t1", true},
		{"", false},
	}
	for i, step := range steps {
		opts.Scope = step.scope
		_, hit, err := r.ComputeLayoutWithCacheInfo(ctx, opts)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if hit != step.wantHit {
			t.Errorf("step %d (scope %q): hit = %v, want %v", i, step.scope, hit, step.wantHit)
		}
	}
}

// blockingMeasurer parks the first label measurement until release is closed.
type blockingMeasurer struct {
	names.Measurer
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingMeasurer) MeasureLabel(l names.Label) (geom.Rect, error) {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return b.Measurer.MeasureLabel(l)
}

func TestSharedEngineRejectsOverlappingPass(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	eng := layout.New(layout.DefaultConfig())

	base := Options{Participants: Generate(8)}
	base.SetLayoutDefaults()
	m := &blockingMeasurer{
		Measurer: base.Heuristic(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		opts := Options{Participants: Generate(8), Engine: eng, Measurer: m}
		_, err := r.ComputeLayout(ctx, opts)
		done <- err
	}()

	select {
	case <-m.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first pass never started")
	}

	_, err := r.ComputeLayout(ctx, Options{Participants: Generate(8), Engine: eng})
	var busy *terr.BusyError
	if !errors.As(err, &busy) {
		t.Errorf("overlapping pass error = %v, want *BusyError", err)
	}
	if !errors.Is(err, names.ErrPassInProgress) {
		t.Error("BusyError should unwrap to ErrPassInProgress")
	}

	close(m.release)
	if err := <-done; err != nil {
		t.Fatalf("first pass error: %v", err)
	}
	if eng.Busy() {
		t.Error("engine still busy after both passes")
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	mu       sync.Mutex
	started  []int
	complete int
	stacking int
	renders  int
}

func (h *recordingHooks) OnLayoutStart(_ context.Context, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, n)
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.complete++
}

func (h *recordingHooks) OnStacking(context.Context, int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stacking++
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func TestExecuteEmitsHooks(t *testing.T) {
	h := &recordingHooks{}
	t.Cleanup(observability.Register(observability.Hooks{Layout: h}))

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Participants: Generate(5)}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(h.started) != 1 || h.started[0] != 5 {
		t.Errorf("OnLayoutStart calls = %v, want [5]", h.started)
	}
	if h.complete != 1 || h.stacking != 1 || h.renders != 1 {
		t.Errorf("complete=%d stacking=%d renders=%d, want 1 each", h.complete, h.stacking, h.renders)
	}
}

func TestRenderFromLayoutData(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{Participants: Generate(5), Formats: []string{FormatJSON}}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	out, err := RenderFromLayoutData(res.Artifacts[FormatJSON], Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("RenderFromLayoutData() error: %v", err)
	}
	if got := strings.Count(string(out[FormatSVG]), `class="seat"`); got != 5 {
		t.Errorf("seats = %d, want 5", got)
	}

	if _, err := RenderFromLayoutData([]byte("{"), opts); err == nil {
		t.Error("broken layout data should fail")
	}
}
