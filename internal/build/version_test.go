package build_test

import (
	"testing"

	"github.com/unkn0wn-root/jobstamp/internal/build"
)

func TestFullVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{name: "default values", version: "dev", commit: "none", want: "dev+none"},
		{name: "version with commit", version: "1.0.0", commit: "abc123", want: "1.0.0+abc123"},
		{name: "version with empty commit", version: "1.0.0", commit: "", want: "1.0.0+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build.Version = tt.version
			build.Commit = tt.commit

			if got := build.FullVersion(); got != tt.want {
				t.Errorf("FullVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	build.Version, build.Commit, build.BuildTime = "1.2.0", "deadbee", "2026-01-02T03:04:05Z"
	want := "jobstamp 1.2.0+deadbee (built 2026-01-02T03:04:05Z)"
	if got := build.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
