package logging

// These constants are used to identify the various services that may do some logging
const (
	// COMPILATION_SERVICE is the constant used to identify the compilation packages
	COMPILATION_SERVICE = "compilation"
	// CACHE_SERVICE is the constant used to identify the artifacts cache
	CACHE_SERVICE = "cache"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)
