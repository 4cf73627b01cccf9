package jobstamp

import "testing"

func TestConfigFrom(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want Config
	}{
		{nil, Config{}},
		{map[string]string{EnvDisabled: "1"}, Config{Disabled: true}},
		{map[string]string{EnvDebug: "yes", EnvAlwaysUseHashes: "true"}, Config{Debug: true, AlwaysUseHashes: true}},
		{map[string]string{EnvDisabled: "0", EnvDebug: "false", EnvAlwaysUseHashes: ""}, Config{}},
		{map[string]string{EnvDisabled: "FALSE"}, Config{}},
	}
	for i, tc := range cases {
		got := configFrom(func(k string) (string, bool) {
			v, ok := tc.env[k]
			return v, ok
		})
		if got != tc.want {
			t.Fatalf("case %d: got %+v want %+v", i, got, tc.want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvDisabled, "")
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvAlwaysUseHashes, "on")
	if got := ConfigFromEnv(); got != (Config{AlwaysUseHashes: true}) {
		t.Fatalf("got %+v", got)
	}
}
