package venom

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const irSuffix = ".ir"

// diskCache persists the textual IR of compiled artifacts under one
// directory, keyed by fingerprint. A file lock serializes writers across
// processes; entries appear atomically via a tmp-file rename, so readers
// never observe a half-written artifact.
type diskCache struct {
	dir  string
	keep int
	lock *flock.Flock
}

func newDiskCache(dir string, keep int) (*diskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &diskCache{
		dir:  dir,
		keep: keep,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (c *diskCache) path(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+irSuffix)
}

// load reads a cached artifact's IR text if present.
func (c *diskCache) load(fingerprint string) (string, bool) {
	data, err := os.ReadFile(c.path(fingerprint))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// store writes the IR text under the fingerprint and prunes old entries.
func (c *diskCache) store(fingerprint, text string) error {
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer c.lock.Unlock()

	tmp := filepath.Join(c.dir, uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, c.path(fingerprint)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish artifact: %w", err)
	}

	// Keep the most recent entries, only deleting ones old enough that no
	// concurrent process should still be reading them.
	c.cleanup(c.keep, 7*24*60*60)
	return nil
}

func (c *diskCache) cleanup(keep int, minAge int64) {
	entries, err := os.ReadDir(c.dir)
	if err != nil || len(entries) <= keep {
		return
	}

	type fileInfo struct {
		name  string
		mtime int64
	}
	var files []fileInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != irSuffix {
			continue
		}
		if info, err := e.Info(); err == nil {
			files = append(files, fileInfo{e.Name(), info.ModTime().Unix()})
		}
	}

	if len(files) <= keep {
		return
	}

	cutoff := time.Now().Unix() - minAge
	sort.Slice(files, func(i, j int) bool { return files[i].mtime < files[j].mtime })
	for i := 0; i < len(files)-keep; i++ {
		if files[i].mtime < cutoff {
			path := filepath.Join(c.dir, files[i].name)
			if err := os.Remove(path); err != nil {
				fmt.Printf("warning: failed to remove old artifact %s: %v\n", path, err)
			}
		}
	}
}
