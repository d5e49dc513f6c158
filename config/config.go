// Package config loads openschema settings from defaults, optional YAML
// files and OPENSCHEMA_* environment variables, and installs them.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/logger"
	"github.com/reoring/openschema/spec"
)

// EnvPrefix prefixes the environment variables read by Load. A double
// underscore separates nested keys: OPENSCHEMA_LOG__LEVEL sets log.level.
const EnvPrefix = "OPENSCHEMA_"

// Settings is the process-wide configuration.
type Settings struct {
	Language string `koanf:"language"`
	// UseTZ is the default timezone policy of Datetime: "true", "false",
	// or empty to accept both.
	UseTZ         string           `koanf:"use_tz"`
	UnknownFields string           `koanf:"unknown_fields"`
	Log           LogSettings      `koanf:"log"`
	Document      DocumentSettings `koanf:"document"`
}

type LogSettings struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type DocumentSettings struct {
	Title       string   `koanf:"title"`
	Version     string   `koanf:"version"`
	Description string   `koanf:"description"`
	Servers     []string `koanf:"servers"`
}

// Load reads defaults, then each YAML file in paths, then the environment.
// Later sources win. A listed file that cannot be read is an error.
func Load(paths ...string) (*Settings, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, p := range paths {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	if err := k.Load(envprovider.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &s, nil
}

// envKey maps OPENSCHEMA_LOG__LEVEL to log.level.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"language":       "en",
		"use_tz":         "",
		"unknown_fields": "exclude",

		"log.level":  "disabled",
		"log.pretty": false,

		"document.title":   "API Document",
		"document.version": "0.1.0",
	}
	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Validate checks every setting and reports the first problem.
func Validate(s *Settings) error {
	if !slices.Contains(i18n.Languages(), s.Language) {
		return fmt.Errorf("invalid language: %s (must be one of: %s)",
			s.Language, strings.Join(i18n.Languages(), ", "))
	}
	if _, err := s.withTZ(); err != nil {
		return err
	}
	if _, err := openschema.ParseUnknownPolicy(s.UnknownFields); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func (s *Settings) withTZ() (*bool, error) {
	switch strings.ToLower(s.UseTZ) {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	}
	return nil, fmt.Errorf("invalid use_tz: %q (must be true, false or empty)", s.UseTZ)
}

// Apply validates s and installs it: message language, Datetime and model
// defaults, and the shared logger.
func Apply(s *Settings) error {
	if err := Validate(s); err != nil {
		return err
	}
	tz, _ := s.withTZ()
	policy, _ := openschema.ParseUnknownPolicy(s.UnknownFields)

	i18n.SetLanguage(s.Language)
	dsl.SetDefaultWithTimezone(tz)
	dsl.SetDefaultUnknownFields(policy)
	logger.Set(logger.New(s.Log.Level, s.Log.Pretty))
	logger.L().Debug().Str("language", s.Language).Str("unknown_fields", s.UnknownFields).Msg("settings applied")
	return nil
}

// DocumentInfo is the info object for spec.NewDocument.
func (s *Settings) DocumentInfo() spec.Info {
	return spec.Info{Title: s.Document.Title, Version: s.Document.Version, Description: s.Document.Description}
}

// Servers lists the document server URLs.
func (s *Settings) Servers() []string { return slices.Clone(s.Document.Servers) }
