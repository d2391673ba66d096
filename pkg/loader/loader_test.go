package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/httputil"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func newTestLoader(t *testing.T, srv *httptest.Server, c cache.Cache) *Loader {
	t.Helper()
	var client *httputil.Client
	if srv != nil {
		client = httputil.NewClient(nil, httputil.WithHTTPClient(srv.Client()), httputil.WithRetry(2, time.Millisecond))
	}
	return New(client, c, nil, nil)
}

func TestLoadLocalFiles(t *testing.T) {
	l := newTestLoader(t, nil, nil)
	res, err := l.Load(context.Background(), Source{
		Topology: "testdata/mini.json",
		Data:     "testdata/states.csv",
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(res.Records) != 4 {
		t.Fatalf("Records = %d, want 4", len(res.Records))
	}
	if res.Records[0].State != "Vermont" {
		t.Errorf("first state = %q, want Vermont (BOM not stripped?)", res.Records[0].State)
	}
	if _, err := res.Topology.Features("states"); err != nil {
		t.Errorf("Features() error: %v", err)
	}
	want := cache.Hash(readFixture(t, "mini.json"), readFixture(t, "states.csv"))
	if res.Hash != want {
		t.Errorf("Hash = %s, want %s", res.Hash, want)
	}
}

func TestLoadRemoteTopologyIsCached(t *testing.T) {
	topology := readFixture(t, "mini.json")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(topology)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := newTestLoader(t, srv, fc)
	src := Source{Topology: srv.URL + "/states.json", Data: "testdata/states.csv"}

	for range 2 {
		if _, err := l.Load(context.Background(), src); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second load should use cache)", hits.Load())
	}

	src.Refresh = true
	if _, err := l.Load(context.Background(), src); err != nil {
		t.Fatalf("Load() with refresh error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 after refresh", hits.Load())
	}
}

func TestLoadRemoteCSV(t *testing.T) {
	csvData := readFixture(t, "states.csv")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(csvData)
	}))
	defer srv.Close()

	res, err := newTestLoader(t, srv, nil).Load(context.Background(), Source{
		Topology: "testdata/mini.json",
		Data:     srv.URL + "/data.csv",
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(res.Records) != 4 {
		t.Errorf("Records = %d, want 4", len(res.Records))
	}
}

func TestLoadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.json":
			http.NotFound(w, r)
		case "/broken.json":
			w.Write([]byte(`{"type":"FeatureCollection"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name string
		src  Source
		want errors.Code
	}{
		{"missing local csv", Source{Topology: "testdata/mini.json", Data: "testdata/nope.csv"}, errors.ErrCodeFileNotFound},
		{"missing local topology", Source{Topology: "testdata/nope.json", Data: "testdata/states.csv"}, errors.ErrCodeFileNotFound},
		{"remote 404", Source{Topology: srv.URL + "/missing.json", Data: "testdata/states.csv"}, errors.ErrCodeFileNotFound},
		{"remote 503", Source{Topology: srv.URL + "/down.json", Data: "testdata/states.csv"}, errors.ErrCodeNetwork},
		{"not a topology", Source{Topology: srv.URL + "/broken.json", Data: "testdata/states.csv"}, errors.ErrCodeInvalidTopology},
		{"csv is topology", Source{Topology: "testdata/mini.json", Data: "testdata/mini.json"}, errors.ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader(t, srv, nil).Load(context.Background(), tt.src)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("error code = %s, want %s (%v)", got, tt.want, err)
			}
		})
	}
}

func TestSourceWithDefaults(t *testing.T) {
	s := Source{}.WithDefaults()
	if s.Topology != DefaultTopology || s.Data != DefaultData {
		t.Errorf("WithDefaults() = %+v", s)
	}
	s = Source{Topology: "a.json", Data: "b.csv"}.WithDefaults()
	if s.Topology != "a.json" || s.Data != "b.csv" {
		t.Errorf("WithDefaults() overwrote explicit values: %+v", s)
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://cdn.jsdelivr.net/x.json": true,
		"http://localhost/x.csv":          true,
		"data.csv":                        false,
		"/srv/data.csv":                   false,
		"ftp://host/file":                 false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
