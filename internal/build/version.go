package build

// Set with -ldflags "-X github.com/unkn0wn-root/jobstamp/internal/build.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Describe is the one-line form printed by --version.
func Describe() string {
	return "jobstamp " + FullVersion() + " (built " + BuildTime + ")"
}
