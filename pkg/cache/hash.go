package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data ...[]byte) string {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Keyer builds cache keys.
type Keyer interface {
	// TopologyKey addresses a fetched topology document by its source.
	TopologyKey(source string) string
	// ArtifactKey addresses a rendered artifact of a dataset.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Filtered    bool    `json:"filtered"`
	ClinicMax   float64 `json:"clinic_max"`
	ProviderMax float64 `json:"provider_max"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Tooltips    bool    `json:"tooltips"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TopologyKey returns "topology:<source>".
func (DefaultKeyer) TopologyKey(source string) string {
	return "topology:" + source
}

// ArtifactKey returns "artifact:<hash of dataset and options>".
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
