package main

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/surfdeck/surfdeck/boot"
	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/server"
	"github.com/surfdeck/surfdeck/surface"
)

// Config holds the resolved CLI configuration.
type Config struct {
	Module       string `koanf:"module"`
	Profile      string `koanf:"profile"`
	Workers      int    `koanf:"workers"`
	InitialPages int    `koanf:"initial_pages"`
	MaximumPages int    `koanf:"maximum_pages"`

	Slides   string `koanf:"slides"`
	Surfaces string `koanf:"surfaces"`
	Width    int    `koanf:"width"`
	Height   int    `koanf:"height"`

	Addr  string `koanf:"addr"`
	Dir   string `koanf:"dir"`
	Watch bool   `koanf:"watch"`

	Verbose bool `koanf:"verbose"`
}

const envPrefix = "SURFDECK_"

// findConfigFile resolves the config file path: explicit flag first,
// then surfdeck.yaml/.yml in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"surfdeck.yaml", "surfdeck.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// loadConfig resolves configuration with precedence, lowest to highest:
// defaults, config file, SURFDECK_* environment variables, flags.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"module":        boot.DefaultModulePath,
		"profile":       "simple",
		"workers":       0,
		"initial_pages": int(boot.DefaultInitialPages),
		"maximum_pages": int(boot.DefaultMaximumPages),
		"slides":        "slides",
		"surfaces":      "surfaces",
		"width":         surface.DefaultWidth,
		"height":        surface.DefaultHeight,
		"addr":          server.DefaultAddr,
		"dir":           "www",
		"watch":         false,
		"verbose":       false,
	}, "."), nil); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load defaults")
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "read config file %s", path)
		}
	}

	// SURFDECK_INITIAL_PAGES -> initial_pages
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	return &cfg, nil
}

// profileFromName maps the profile flag to a boot profile.
func profileFromName(name string) (boot.Profile, error) {
	switch name {
	case "simple":
		return boot.ProfileSimple, nil
	case "logged":
		return boot.ProfileLogged, nil
	case "threaded":
		return boot.ProfileThreaded, nil
	default:
		return 0, errors.New(errors.PhaseConfig, errors.KindInvalidInput,
			"unknown profile %q, want simple, logged or threaded", name)
	}
}
