package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/observability"
)

func testOptions(formats ...string) Options {
	return Options{
		Topology: "../loader/testdata/mini.json",
		Data:     "../loader/testdata/states.csv",
		Formats:  formats,
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), testOptions(FormatSVG, FormatHTML, FormatLegend, FormatJSON, FormatGeoJSON))
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Stats.Regions != 5 || res.Stats.Joined != 3 || res.Stats.Dropped != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	for _, f := range []string{FormatSVG, FormatHTML, FormatLegend, FormatJSON, FormatGeoJSON} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s is empty", f)
		}
	}
	if strings.Contains(string(res.Artifacts[FormatSVG]), "#67000d\" stroke-width") {
		t.Error("unfiltered map should be gray")
	}
	if res.CacheInfo.RenderHit {
		t.Error("NullCache should never hit")
	}
}

func TestRunnerExecuteFiltered(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := testOptions(FormatSVG)
	opts.Filtered = true
	opts.ClinicMax = 60
	opts.ProviderMax = 70

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), `id="state-50" d="M10,20L12,20L12,22L10,22L10,20Z" fill="#67000d"`) {
		t.Error("Vermont should be colored at 60/70")
	}

	opts.ClinicMax = 59
	res, err = r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), `id="state-50" d="M10,20L12,20L12,22L10,22L10,20Z" fill="#ccc"`) {
		t.Error("Vermont should be gray at clinicMax 59")
	}
}

func TestRunnerArtifactCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := testOptions(FormatSVG, FormatLegend)
	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit || !second.CacheInfo.RenderHit {
		t.Errorf("RenderHit = %v then %v, want false then true", first.CacheInfo.RenderHit, second.CacheInfo.RenderHit)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from rendered one")
	}

	opts.Tooltips = true
	third, _ := r.Execute(context.Background(), opts)
	if third.CacheInfo.RenderHit {
		t.Error("changed options should miss the cache")
	}
}

func TestRunnerLoadError(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := testOptions()
	opts.Data = "../loader/testdata/missing.csv"

	_, err := r.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want FILE_NOT_FOUND", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	loads   []int
	renders [][]string
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, regions int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads = append(h.loads, regions)
}

func (h *recordingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, formats)
}

func TestRunnerEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	h := &recordingHooks{}
	observability.SetPipelineHooks(h)

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), testOptions(FormatLegend)); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(h.loads) != 1 || h.loads[0] != 3 {
		t.Errorf("load events = %v, want [3]", h.loads)
	}
	if len(h.renders) != 1 || h.renders[0][0] != FormatLegend {
		t.Errorf("render events = %v", h.renders)
	}
}
