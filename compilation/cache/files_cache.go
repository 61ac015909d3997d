// Package cache tracks the files compiled by previous runs, so that only files which changed (or whose imports
// changed) are recompiled.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
)

const (
	// FilesCacheFormat is the format identifier of the files cache. A cache file of any other format is discarded.
	FilesCacheFormat = "solbuild-cache-1"

	// FilesCacheFileName is the name of the files cache within the cache directory.
	FilesCacheFileName = "solbuild-files-cache.json"
)

// CacheEntry describes the last compilation of a file with a given compiler version and profile.
type CacheEntry struct {
	// Fingerprint is the content fingerprint of the file when it was compiled.
	Fingerprint string `json:"fingerprint"`

	// Imports lists the resolved paths of the files the file imported.
	Imports []string `json:"imports"`

	// Artifacts maps each contract name of the file to its artifact path, relative to the artifacts directory.
	Artifacts map[string]string `json:"artifacts"`

	// BuildID is the id of the build which produced the artifacts.
	BuildID string `json:"buildId"`
}

// FilesCache is the on-disk representation of the cache.
type FilesCache struct {
	Format string `json:"_format"`

	// Profiles maps each profile name to the fingerprint of its compiler settings.
	Profiles map[string]string `json:"profiles"`

	// Files maps a source path to a compiler version to a profile to the entry of that compilation.
	Files map[string]map[string]map[string]*CacheEntry `json:"files"`

	// Builds maps each build id referenced by an entry to its build context.
	Builds map[string]*types.BuildContext `json:"builds"`
}

// NewFilesCache returns an empty FilesCache.
func NewFilesCache() *FilesCache {
	return &FilesCache{
		Format:   FilesCacheFormat,
		Profiles: make(map[string]string),
		Files:    make(map[string]map[string]map[string]*CacheEntry),
		Builds:   make(map[string]*types.BuildContext),
	}
}

// FilesCachePath returns the path of the files cache within the given cache directory.
func FilesCachePath(cacheDir string) string {
	return filepath.Join(cacheDir, FilesCacheFileName)
}

// ReadFilesCache reads the files cache at the given path. An error is returned if the file cannot be read, is not
// valid JSON, or has an unexpected format.
func ReadFilesCache(path string) (*FilesCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cache := NewFilesCache()
	if err = json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.Format != FilesCacheFormat {
		return nil, fmt.Errorf("unsupported cache format %q (expected %q)", cache.Format, FilesCacheFormat)
	}

	// Fields may have been explicitly set to null.
	if cache.Profiles == nil {
		cache.Profiles = make(map[string]string)
	}
	if cache.Files == nil {
		cache.Files = make(map[string]map[string]map[string]*CacheEntry)
	}
	if cache.Builds == nil {
		cache.Builds = make(map[string]*types.BuildContext)
	}
	return cache, nil
}

// WriteToFile writes the cache to the given path atomically.
func (c *FilesCache) WriteToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	return utils.WriteFileAtomic(path, data, 0644)
}

// Entry returns the entry of the file for the given version and profile, or nil if none exists.
func (c *FilesCache) Entry(path string, version string, profile string) *CacheEntry {
	return c.Files[path][version][profile]
}

// SetEntry stores the entry of the file for the given version and profile.
func (c *FilesCache) SetEntry(path string, version string, profile string, entry *CacheEntry) {
	if _, ok := c.Files[path]; !ok {
		c.Files[path] = make(map[string]map[string]*CacheEntry)
	}
	if _, ok := c.Files[path][version]; !ok {
		c.Files[path][version] = make(map[string]*CacheEntry)
	}
	c.Files[path][version][profile] = entry
}

// EntryCount returns the number of entries of the cache.
func (c *FilesCache) EntryCount() int {
	count := 0
	for _, versions := range c.Files {
		for _, profiles := range versions {
			count += len(profiles)
		}
	}
	return count
}

// dropProfiles removes the entries of every profile whose settings fingerprint differs from the provided one.
// Profiles absent from fingerprints are dropped as well.
func (c *FilesCache) dropProfiles(fingerprints map[string]string) []string {
	dropped := make([]string, 0)
	for profile, fingerprint := range c.Profiles {
		if current, ok := fingerprints[profile]; !ok || current != fingerprint {
			dropped = append(dropped, profile)
		}
	}
	for _, profile := range dropped {
		for _, versions := range c.Files {
			for _, profiles := range versions {
				delete(profiles, profile)
			}
		}
	}
	// Entries of profiles the cache never recorded a fingerprint for cannot be trusted either.
	for _, versions := range c.Files {
		for _, profiles := range versions {
			for profile := range profiles {
				if _, ok := c.Profiles[profile]; !ok {
					delete(profiles, profile)
				}
			}
		}
	}
	return dropped
}
