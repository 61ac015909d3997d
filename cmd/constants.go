package cmd

import "github.com/crytic/solbuild/config"

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = config.DefaultConfigFileName

// VersionCacheFilename is the name of the compiler version database kept in the cache directory.
const VersionCacheFilename = "compiler-versions.db"
