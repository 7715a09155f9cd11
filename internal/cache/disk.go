// Package cache memoizes external service responses on disk. The planner
// calls the same routing endpoints with the same coordinates over and over;
// keeping payloads keyed by a hash of the request parameters avoids
// re-fetching them. Always an injected object, never package state.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Disk is a directory-backed JSON cache. Entries live under
// <root>/<namespace>/<sha1(key)>.json and expire by file mtime when MaxAge
// is positive.
type Disk struct {
	dir    string
	maxAge time.Duration
}

type envelope struct {
	Created int64           `json:"created"`
	Payload json.RawMessage `json:"payload"`
}

// NewDisk creates (and mkdirs) a cache rooted at root/namespace. maxAge <= 0
// means entries never expire.
func NewDisk(root, namespace string, maxAge time.Duration) (*Disk, error) {
	dir := filepath.Join(root, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir, maxAge: maxAge}, nil
}

// KeyFromMap builds a deterministic cache key from a JSON-serializable map.
func KeyFromMap(m map[string]any) string {
	b, _ := json.Marshal(m)
	return string(b)
}

func (d *Disk) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+".json")
}

// Load returns the cached payload for key, or (nil, false) on miss or
// expiry. Expired entries are removed on the way out.
func (d *Disk) Load(key string) ([]byte, bool) {
	p := d.path(key)
	st, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if d.maxAge > 0 && time.Since(st.ModTime()) > d.maxAge {
		_ = os.Remove(p)
		return nil, false
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Payload == nil {
		return nil, false
	}
	return env.Payload, true
}

// Save stores a payload under key.
func (d *Disk) Save(key string, payload []byte) error {
	env := envelope{Created: time.Now().Unix(), Payload: payload}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(d.path(key), raw, 0o644)
}

// GetOrCreate returns the cached payload or produces, stores, and returns a
// fresh one. A failed store does not fail the call; the payload is returned
// either way.
func (d *Disk) GetOrCreate(key string, create func() ([]byte, error)) ([]byte, error) {
	if cached, ok := d.Load(key); ok {
		return cached, nil
	}
	payload, err := create()
	if err != nil {
		return nil, err
	}
	_ = d.Save(key, payload)
	return payload, nil
}
