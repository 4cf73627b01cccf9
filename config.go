package jobstamp

import (
	"os"
	"strings"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvDisabled        = "JOBSTAMPS_DISABLED"
	EnvDebug           = "JOBSTAMPS_DEBUG"
	EnvAlwaysUseHashes = "JOBSTAMPS_ALWAYS_USE_HASHES"
)

// Config holds the process-wide overrides. It is read once (usually via
// ConfigFromEnv) and passed in Options; the engine never consults the
// environment itself.
type Config struct {
	// Disabled runs every job and never reads or writes stamps.
	Disabled bool
	// Debug emits one diagnostic line per invocation.
	Debug bool
	// AlwaysUseHashes forces ContentHashBased regardless of RunOptions.
	AlwaysUseHashes bool
}

// ConfigFromEnv reads the JOBSTAMPS_* variables.
func ConfigFromEnv() Config {
	return configFrom(os.LookupEnv)
}

func configFrom(lookup func(string) (string, bool)) Config {
	return Config{
		Disabled:        envSet(lookup, EnvDisabled),
		Debug:           envSet(lookup, EnvDebug),
		AlwaysUseHashes: envSet(lookup, EnvAlwaysUseHashes),
	}
}

func envSet(lookup func(string) (string, bool), name string) bool {
	v, ok := lookup(name)
	return ok && EnvTrue(v)
}

// EnvTrue reports whether an override value counts as set: non-empty and
// not "0" or "false".
func EnvTrue(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}
