package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/unkn0wn-root/jobstamp"
	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when --config is not given.
const EnvConfig = "JOBSTAMPS_CONFIG"

var ErrInvalidConfig = errors.New("invalid config")

// fileConfig is the YAML config file. Pointers distinguish "absent" from
// an explicit false.
type fileConfig struct {
	StampDirectory  string `yaml:"stamp-directory"`
	UseHashes       *bool  `yaml:"use-hashes"`
	Disabled        *bool  `yaml:"disabled"`
	Debug           *bool  `yaml:"debug"`
	AlwaysUseHashes *bool  `yaml:"always-use-hashes"`
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return fc, nil
}

// settings is the effective configuration of one invocation.
type settings struct {
	stampDir  string
	useHashes bool
	cfg       jobstamp.Config
}

// resolve layers defaults, the config file, the environment and flags, in
// increasing precedence.
func resolve(o *options, changed func(string) bool, lookup func(string) (string, bool)) (settings, error) {
	var s settings

	path := o.configFile
	if path == "" {
		path, _ = lookup(EnvConfig)
	}
	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return s, err
		}
		s.stampDir = fc.StampDirectory
		setBool(&s.useHashes, fc.UseHashes)
		setBool(&s.cfg.Disabled, fc.Disabled)
		setBool(&s.cfg.Debug, fc.Debug)
		setBool(&s.cfg.AlwaysUseHashes, fc.AlwaysUseHashes)
	}

	envBool(&s.cfg.Disabled, lookup, jobstamp.EnvDisabled)
	envBool(&s.cfg.Debug, lookup, jobstamp.EnvDebug)
	envBool(&s.cfg.AlwaysUseHashes, lookup, jobstamp.EnvAlwaysUseHashes)

	if changed(flagStampDirectory) {
		s.stampDir = o.stampDir
	}
	if changed(flagUseHashes) {
		s.useHashes = o.useHashes
	}
	return s, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func envBool(dst *bool, lookup func(string) (string, bool), name string) {
	if v, ok := lookup(name); ok {
		*dst = jobstamp.EnvTrue(v)
	}
}
