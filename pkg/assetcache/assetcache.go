// Package assetcache maps asset ids to their canonical repository URI and
// persists the mapping between runs as a two-column text file.
package assetcache

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/safeio"
)

// DefaultPath is where the cache lives relative to the working directory.
const DefaultPath = "out/asset_cache.txt"

// Entry is one id/URI binding.
type Entry struct {
	ID  string `json:"id" yaml:"id"`
	URI string `json:"uri" yaml:"uri"`
}

// Cache is an insertion-ordered id -> repository URI map. Rebinding an id
// overwrites its URI and keeps its position.
type Cache struct {
	uris  map[string]string
	order []string
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{uris: make(map[string]string)}
}

// Put binds id to uri.
func (c *Cache) Put(id, uri string) {
	if prev, ok := c.uris[id]; ok {
		if prev != uri {
			logger.Debug("asset rebound", logger.String("id", id), logger.String("old", prev), logger.String("new", uri))
		}
	} else {
		c.order = append(c.order, id)
	}
	c.uris[id] = uri
}

// Get returns the URI bound to id.
func (c *Cache) Get(id string) (string, bool) {
	uri, ok := c.uris[id]
	return uri, ok
}

// Len returns the number of ids.
func (c *Cache) Len() int {
	return len(c.order)
}

// Entries returns all bindings in insertion order.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Entry{ID: id, URI: c.uris[id]})
	}
	return out
}

// Load merges the file at path into the cache, overwriting ids already
// present. A missing file is not an error. Lines without two fields are
// skipped; fields past the second are ignored.
func (c *Cache) Load(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no asset cache to seed from", logger.String("path", path))
			return nil
		}
		return fmt.Errorf("failed to read asset cache %s: %w", path, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(safeio.NormalizeNewlines(data)))
	lineNo := 0
	loaded := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			logger.Warn(fmt.Sprintf("skipping malformed asset cache line %d", lineNo), logger.String("path", path))
			continue
		}
		c.Put(fields[0], fields[1])
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to parse asset cache %s: %w", path, err)
	}
	logger.Debug("seeded asset cache", logger.String("path", path), logger.Int("entries", loaded))
	return nil
}

// Save writes every binding to path as "<id> <uri>\n", creating the parent
// directory. Line endings are always "\n".
func (c *Cache) Save(path string) error {
	if err := safeio.EnsureParentDir(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, id := range c.order {
		fmt.Fprintf(&buf, "%s %s\n", id, c.uris[id])
	}
	if err := safeio.WriteFilePreservePerms(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write asset cache %s: %w", path, err)
	}
	return nil
}
