// Package cache stores built layout models and rendered exports so repeated
// runs on the same faces document skip the geometry work.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything.
//   - [FileCache] keeps entries as JSON files, the CLI default.
//   - [RedisCache] shares entries between server instances.
//
// Keys are content hashes produced by a [Keyer]. A key changes whenever the
// input document or any option that affects the output changes, so entries
// never need invalidating, only expiring.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. hit is false on a miss or an expired
	// entry; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	ModelTTL    = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// ModelKeyOpts are the build options that change a layout model.
type ModelKeyOpts struct {
	Units       string  `json:"units,omitempty"`
	DepthIn     float64 `json:"depth_in"`
	ThicknessIn float64 `json:"thickness_in"`
	Fallback    string  `json:"fallback"`
}

// ArtifactKeyOpts are the export options that change a rendered file.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Layer   int    `json:"layer"` // -1 for all layers
	Labels  bool   `json:"labels,omitempty"`
	Circles bool   `json:"circles,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ModelKey returns the key of the model built from a faces document.
	ModelKey(facesHash string, opts ModelKeyOpts) string

	// ArtifactKey returns the key of an export rendered from a model.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every input into a prefixed SHA-256 key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ModelKey implements Keyer.
func (DefaultKeyer) ModelKey(facesHash string, opts ModelKeyOpts) string {
	return hashKey("model", facesHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}

// Hash returns the hex SHA-256 digest of data. Faces documents and models
// are keyed by this digest.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins prefix with the digest of the JSON encoding of parts.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
