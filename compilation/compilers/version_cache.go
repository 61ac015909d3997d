package compilers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/utils"
	"go.etcd.io/bbolt"
)

// versionCacheBucket is the bbolt bucket holding version cache entries.
var versionCacheBucket = []byte("versions")

// versionCacheEntry is the value stored for a compiler binary.
type versionCacheEntry struct {
	Version     string `json:"version"`
	LongVersion string `json:"longVersion"`
}

// VersionCache memoizes the versions reported by compiler binaries on disk, so binaries are not executed on every
// run. Entries are keyed by the binary's path, size and modification time, so replacing a binary invalidates its
// entry.
type VersionCache struct {
	db *bbolt.DB
}

// OpenVersionCache opens (or creates) the version cache database at the given path.
func OpenVersionCache(path string) (*VersionCache, error) {
	if err := utils.MakeDirectory(filepath.Dir(path)); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open version cache: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(versionCacheBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &VersionCache{db: db}, nil
}

// Lookup returns the cached version of the binary at the given path. The boolean is false if no valid entry exists.
func (c *VersionCache) Lookup(binaryPath string) (*semver.Version, string, bool) {
	key, err := versionCacheKey(binaryPath)
	if err != nil {
		return nil, "", false
	}

	var entry versionCacheEntry
	found := false
	err = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(versionCacheBucket).Get(key)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil || !found {
		return nil, "", false
	}

	version, err := semver.NewVersion(entry.Version)
	if err != nil {
		return nil, "", false
	}
	return version, entry.LongVersion, true
}

// Store records the version of the binary at the given path.
func (c *VersionCache) Store(binaryPath string, version *semver.Version, longVersion string) error {
	key, err := versionCacheKey(binaryPath)
	if err != nil {
		return err
	}
	data, err := json.Marshal(versionCacheEntry{Version: version.String(), LongVersion: longVersion})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(versionCacheBucket).Put(key, data)
	})
}

// Close closes the underlying database.
func (c *VersionCache) Close() error {
	return c.db.Close()
}

// versionCacheKey derives the cache key of a binary from its absolute path, size and modification time.
func versionCacheKey(binaryPath string) ([]byte, error) {
	absPath, err := filepath.Abs(binaryPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%s|%d|%d", absPath, info.Size(), info.ModTime().UnixNano())), nil
}
