package vectorindex

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	gocache "github.com/patrickmn/go-cache"
)

// embeddingCache memoizes text -> embedding by content hash so rescans of
// an unchanged tree skip recomputation, an ambient concern recovered in
// SPEC_FULL.md (not present in the distilled spec.md, since the original
// embedder had its own model-side caching that spec.md treats as out of
// scope). In-memory lookups go through patrickmn/go-cache with a TTL. A
// gzip-compressed snapshot on disk (via klauspost/compress) is loaded once
// at construction; entries evicted later are not reloaded from it, and
// the snapshot is written only by persist, which nothing in this
// repository calls.
type embeddingCache struct {
	mem *gocache.Cache
	dir string
}

const cacheTTL = 24 * time.Hour

func init() {
	gob.Register([]float32{})
}

func newEmbeddingCache(dir string) *embeddingCache {
	c := &embeddingCache{
		mem: gocache.New(cacheTTL, cacheTTL/2),
		dir: dir,
	}
	c.loadSnapshot()
	return c
}

func hashKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *embeddingCache) get(text string) ([]float32, bool) {
	v, ok := c.mem.Get(hashKey(text))
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	return vec, ok
}

func (c *embeddingCache) put(text string, vec []float32) {
	c.mem.Set(hashKey(text), vec, gocache.DefaultExpiration)
}

// snapshotPath returns the on-disk location for this cache's persisted
// entries, or "" when no cache directory was configured (tests commonly
// disable persistence this way).
func (c *embeddingCache) snapshotPath() string {
	if c.dir == "" {
		return ""
	}
	return filepath.Join(c.dir, "embeddings.gob.gz")
}

// persist gzip-compresses the current cache contents and atomically
// writes them to the configured cache directory.
func (c *embeddingCache) persist() error {
	path := c.snapshotPath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o777); err != nil {
		return err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(c.mem.Items()); err != nil {
		_ = gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *embeddingCache) loadSnapshot() {
	path := c.snapshotPath()
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return
	}
	defer gz.Close()

	var items map[string]gocache.Item
	if err := gob.NewDecoder(gz).Decode(&items); err != nil {
		return
	}
	for k, item := range items {
		if item.Expired() {
			continue
		}
		c.mem.Set(k, item.Object, cacheTTL)
	}
}
