// Package catalogindex loads the static style indices built by catalog-index
// and keeps them in memory for the life of the process.
package catalogindex

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"

	"storefront-catalog/internal/model"
)

// Source names one independent index file.
type Source string

const (
	SourcePrimary   Source = "primary"   // primary vendor style index
	SourceSecondary Source = "secondary" // secondary vendor index with pre-computed size prices
)

var validate = validator.New()

type entry struct {
	once sync.Once
	rows []model.CatalogStyle
}

// Cache lazily reads each source on first use. The returned slices are shared
// between requests and must not be modified by callers.
type Cache struct {
	paths map[Source]string

	mu      sync.Mutex
	entries map[Source]*entry
}

// NewCache creates a cache over the given index files.
func NewCache(paths map[Source]string) *Cache {
	p := make(map[Source]string, len(paths))
	for k, v := range paths {
		p[k] = v
	}
	return &Cache{paths: p, entries: map[Source]*entry{}}
}

// Load returns the rows of src, reading the backing file on the first call.
// A missing or malformed file yields an empty index, not an error.
func (c *Cache) Load(src Source) []model.CatalogStyle {
	c.mu.Lock()
	e, ok := c.entries[src]
	if !ok {
		e = &entry{}
		c.entries[src] = e
	}
	path := c.paths[src]
	c.mu.Unlock()

	e.once.Do(func() {
		e.rows = readIndex(src, path)
	})
	return e.rows
}

// Reset drops every cached index so the next Load re-reads from disk.
// Requests already holding a slice keep using it.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = map[Source]*entry{}
	c.mu.Unlock()
}

func readIndex(src Source, path string) []model.CatalogStyle {
	if path == "" {
		return []model.CatalogStyle{}
	}
	data, used, err := readFirst(candidatePaths(path))
	if err != nil {
		log.Printf("Index: %s index unavailable at %s: %v", src, path, err)
		return []model.CatalogStyle{}
	}

	var raw []model.CatalogStyle
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Index: %s index %s is not a JSON array of styles: %v", src, used, err)
		return []model.CatalogStyle{}
	}

	rows := make([]model.CatalogStyle, 0, len(raw))
	skipped := 0
	for _, row := range raw {
		// go-playground/validator/v10: styleID required, size costs and prices non-negative.
		if err := validate.Struct(row); err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	log.Printf("Index: loaded %d %s styles from %s (%d skipped)", len(rows), src, used, skipped)
	return rows
}

// candidatePaths lists where a relative index path may live: the working
// directory first, then next to the executable.
func candidatePaths(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	out := []string{path}
	if exe, err := os.Executable(); err == nil {
		out = append(out, filepath.Join(filepath.Dir(exe), path))
	}
	return out
}

func readFirst(paths []string) ([]byte, string, error) {
	var firstErr error
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", firstErr
}
