package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/source"
	"github.com/haiman1024/Contractus/internal/version"
)

// DiagCache persists per-file diagnostics keyed by content hash, so
// `check` runs skip files that have not changed since the last run. The
// compiler version participates in the key, invalidating entries across
// upgrades.
type DiagCache struct {
	dir string
}

// OpenDiagCache creates or reuses a cache directory.
func OpenDiagCache(dir string) (*DiagCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open diagnostics cache: %w", err)
	}
	return &DiagCache{dir: dir}, nil
}

type cacheEntry struct {
	Version string            `msgpack:"version"`
	Diags   []diag.Diagnostic `msgpack:"diags"`
}

// Key derives the cache key for a file's content.
func (dc *DiagCache) Key(file *source.File) string {
	h := sha256.New()
	h.Write([]byte(version.Version))
	h.Write([]byte{0})
	h.Write(file.Content)
	return hex.EncodeToString(h.Sum(nil))
}

func (dc *DiagCache) path(key string) string {
	return filepath.Join(dc.dir, key+".diag")
}

// Get returns the cached diagnostics for a key. A decode failure is
// treated as a miss; the entry is rewritten on the next Put.
func (dc *DiagCache) Get(key string) ([]diag.Diagnostic, bool) {
	raw, err := os.ReadFile(dc.path(key))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.Version != version.Version {
		return nil, false
	}
	return entry.Diags, true
}

// Put stores the diagnostics for a key.
func (dc *DiagCache) Put(key string, diags []diag.Diagnostic) error {
	raw, err := msgpack.Marshal(cacheEntry{Version: version.Version, Diags: diags})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp := dc.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dc.path(key))
}

// CheckCached analyzes a file, consulting the cache first. The boolean
// reports whether the diagnostics came from the cache.
func CheckCached(dc *DiagCache, path string, opts Options) (*Output, bool, error) {
	file, err := source.Load(path)
	if err != nil {
		return nil, false, err
	}
	key := dc.Key(file)
	if diags, ok := dc.Get(key); ok {
		bag := diag.NewBag(DefaultMaxErrors)
		for _, d := range diags {
			bag.Add(d)
		}
		return &Output{File: file, Diags: bag}, true, nil
	}

	opts.StopAfter = StageSema
	out, err := Compile(file, opts)
	if err != nil {
		return nil, false, err
	}
	if err := dc.Put(key, out.Diags.Items()); err != nil {
		return nil, false, err
	}
	return out, false, nil
}
