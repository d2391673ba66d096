package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/accessmap/internal/config"
	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/pipeline"
)

const (
	testTopology = "../../pkg/loader/testdata/mini.json"
	testData     = "../../pkg/loader/testdata/states.csv"
)

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCLICacheDirFromConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = "/srv/accessmap-cache"

	dir, err := c.cacheDir()
	if err != nil || dir != "/srv/accessmap-cache" {
		t.Errorf("cacheDir() = %q, %v", dir, err)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		noCache bool
		want    string
	}{
		{"no-cache flag", config.BackendFile, true, "null"},
		{"none backend", config.BackendNone, false, "null"},
		{"file backend", config.BackendFile, false, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.cfg.Cache.Backend = tt.backend

			got, err := c.newCache(ctx, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer got.Close()

			kind := "other"
			switch got.(type) {
			case cache.NullCache:
				kind = "null"
			case *cache.FileCache:
				kind = "file"
			}
			if kind != tt.want {
				t.Errorf("newCache() = %T, want %s", got, tt.want)
			}
		})
	}
}

func TestOptionsLayering(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Source.Data = "from-config.csv"
	c.cfg.Render.Width = 480

	opts := c.options(&sourceFlags{topology: "flag.json", warn: true})
	if opts.Topology != "flag.json" {
		t.Errorf("Topology = %q, flag should win", opts.Topology)
	}
	if opts.Data != "from-config.csv" {
		t.Errorf("Data = %q, config should fill unset flag", opts.Data)
	}
	if opts.Width != 480 || !opts.Warn {
		t.Errorf("opts = %+v", opts)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg, legend,html", []string{"svg", "legend", "html"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"default base", "", []string{"svg", "legend"}, map[string]string{"svg": "accessmap.svg", "legend": "accessmap.legend.svg"}},
		{"single explicit file", "out/map.svg", []string{"svg"}, map[string]string{"svg": "out/map.svg"}},
		{"single without extension", "out/map", []string{"json"}, map[string]string{"json": "out/map.json"}},
		{"multi strips extension", "out/map.svg", []string{"svg", "html"}, map[string]string{"svg": "out/map.svg", "html": "out/map.html"}},
		{"multi strips legend extension", "key.legend.svg", []string{"legend", "geojson"}, map[string]string{"legend": "key.legend.svg", "geojson": "key.geojson"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, tt.formats)
			for f, want := range tt.want {
				if got[f] != want {
					t.Errorf("outputPaths()[%s] = %q, want %q", f, got[f], want)
				}
			}
		})
	}
}

func TestThresholdFlags(t *testing.T) {
	tests := []struct {
		name         string
		flags        thresholdFlags
		wantFiltered bool
		wantClinic   float64
		wantProvider float64
		wantErr      bool
	}{
		{"unset", thresholdFlags{}, false, 0, 0, false},
		{"both", thresholdFlags{"60", "72.5%"}, true, 60, 72.5, false},
		{"clinic only", thresholdFlags{clinicMax: "40"}, true, 40, 100, false},
		{"invalid", thresholdFlags{providerMax: "lots"}, false, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			err := tt.flags.apply(&opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidThreshold) {
					t.Errorf("apply() error code = %v", err)
				}
				return
			}
			if opts.Filtered != tt.wantFiltered || opts.ClinicMax != tt.wantClinic || opts.ProviderMax != tt.wantProvider {
				t.Errorf("opts = filtered %v clinic %v provider %v", opts.Filtered, opts.ClinicMax, opts.ProviderMax)
			}
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug message logged at info level")
	}
	logger.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("info message missing")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Loaded 51 regions")

	if !strings.Contains(buf.String(), "Loaded 51 regions (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected log.Default() without an attached logger")
	}
	l := newLogger(io.Discard, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("expected the attached logger")
	}
}

func TestSpinner(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Loading")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	if !strings.Contains(buf.String(), "Loading") {
		t.Errorf("spinner output = %q", buf.String())
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner(context.Background(), io.Discard, "idle").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked without Start()")
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "http://localhost:8080" {
		t.Errorf("displayAddr(:8080) = %q", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "http://0.0.0.0:9000" {
		t.Errorf("displayAddr(0.0.0.0:9000) = %q", got)
	}
}
