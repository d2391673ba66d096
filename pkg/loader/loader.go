// Package loader fetches the two resources the map needs, the state
// topology and the statistics CSV, and joins their loading.
//
// Both resources are read concurrently. Load returns only when both have
// arrived and decoded; if either fails the other is cancelled and the
// first error is returned. Remote topology bytes are cached because the
// CDN file never changes for a given URL.
package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/accessmap/pkg/buildinfo"
	"github.com/matzehuels/accessmap/pkg/cache"
	apperrors "github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/httputil"
	"github.com/matzehuels/accessmap/pkg/observability"
	"github.com/matzehuels/accessmap/pkg/stats"
	"github.com/matzehuels/accessmap/pkg/topo"
)

const (
	// DefaultTopology is the pre-projected (Albers USA, 975x610) states topology.
	DefaultTopology = "https://cdn.jsdelivr.net/npm/us-atlas@3/states-albers-10m.json"

	// DefaultData is the statistics CSV, relative to the working directory.
	DefaultData = "GuttmacherInstituteAbortionDataByState.csv"
)

// Source names where the topology and the statistics come from. Each may
// be an http(s) URL or a local path.
type Source struct {
	Topology string
	Data     string
	Refresh  bool // bypass the topology cache
}

// WithDefaults fills empty locations with [DefaultTopology] and [DefaultData].
func (s Source) WithDefaults() Source {
	if s.Topology == "" {
		s.Topology = DefaultTopology
	}
	if s.Data == "" {
		s.Data = DefaultData
	}
	return s
}

// Result holds both decoded resources.
type Result struct {
	Topology *topo.Topology
	Records  []stats.Record
	Hash     string // SHA-256 over the raw topology and CSV bytes
}

// Loader reads map resources.
type Loader struct {
	Client *httputil.Client
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// New creates a Loader. Nil arguments fall back to a default HTTP client,
// a NullCache, the DefaultKeyer and the default logger.
func New(client *httputil.Client, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Loader {
	if client == nil {
		client = httputil.NewClient(map[string]string{"User-Agent": buildinfo.UserAgent()})
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{Client: client, Cache: c, Keyer: keyer, Logger: logger}
}

// Load fetches and decodes both resources concurrently.
func (l *Loader) Load(ctx context.Context, src Source) (*Result, error) {
	src = src.WithDefaults()

	var topoData, csvData []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.fetchTopology(gctx, src)
		topoData = data
		return err
	})
	g.Go(func() error {
		data, err := l.read(gctx, src.Data)
		csvData = data
		return err
	})
	if err := g.Wait(); err != nil {
		l.Logger.Error("load failed", "error", err)
		return nil, err
	}

	t, err := topo.Decode(bytes.NewReader(topoData))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTopology, err, "decode topology %s", src.Topology)
	}
	records, err := DecodeRecords(csvData)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidData, err, "decode statistics %s", src.Data)
	}

	l.Logger.Debug("loaded resources",
		"topology_bytes", len(topoData),
		"csv_bytes", len(csvData),
		"rows", len(records))

	return &Result{
		Topology: t,
		Records:  records,
		Hash:     cache.Hash(topoData, csvData),
	}, nil
}

func (l *Loader) fetchTopology(ctx context.Context, src Source) ([]byte, error) {
	if !IsURL(src.Topology) {
		return l.read(ctx, src.Topology)
	}

	hooks := observability.Cache()
	key := l.Keyer.TopologyKey(src.Topology)
	if !src.Refresh {
		if data, hit, err := l.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, observability.KeyTypeTopology)
			l.Logger.Debug("topology cache hit", "url", src.Topology)
			return data, nil
		}
		hooks.OnCacheMiss(ctx, observability.KeyTypeTopology)
	}

	data, err := l.read(ctx, src.Topology)
	if err != nil {
		return nil, err
	}
	if err := l.Cache.Set(ctx, key, data, cache.TopologyTTL); err != nil {
		l.Logger.Warn("cache topology", "error", err)
	} else {
		hooks.OnCacheSet(ctx, observability.KeyTypeTopology, len(data))
	}
	return data, nil
}

// read returns the bytes at a URL or local path.
func (l *Loader) read(ctx context.Context, loc string) ([]byte, error) {
	if IsURL(loc) {
		data, err := l.Client.GetBytes(ctx, loc)
		switch {
		case errors.Is(err, httputil.ErrNotFound):
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "fetch %s", loc)
		case err != nil:
			return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch %s", loc)
		}
		return data, nil
	}

	if err := apperrors.ValidatePath(loc); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(loc)
	switch {
	case os.IsNotExist(err):
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read %s", loc)
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read %s", loc)
	}
	return data, nil
}

// IsURL reports whether loc is an http or https URL.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}
