package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/openschema/config"
	"github.com/reoring/openschema/logger"
	"github.com/reoring/openschema/spec"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "validate":
		validateCmd(os.Args[2:])
	case "settings":
		settingsCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "openschema CLI\n\nUsage:\n  openschema validate [-config file.yaml] openapi.{json,yaml} ...\n  openschema settings [-config file.yaml]\n\nNotes:\n  - validate loads each document with kin-openapi and reports structural errors.\n  - settings prints the effective configuration (defaults, file, OPENSCHEMA_* env).")
}

func load(paths string) *config.Settings {
	var files []string
	if paths != "" {
		files = strings.Split(paths, ",")
	}
	s, err := config.Load(files...)
	if err != nil {
		fatalf("config: %v", err)
	}
	if err := config.Apply(s); err != nil {
		fatalf("config: %v", err)
	}
	return s
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var cfg string
	fs.StringVar(&cfg, "config", "", "comma-separated YAML settings files")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	load(cfg)

	failed := false
	for _, path := range fs.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			fatalf("read %s: %v", path, err)
		}
		if err := spec.Validate(context.Background(), raw); err != nil {
			failed = true
			fmt.Printf("%s: %v\n", path, err)
			continue
		}
		logger.L().Debug().Str("file", path).Msg("document valid")
		fmt.Printf("%s: ok\n", path)
	}
	if failed {
		os.Exit(1)
	}
}

func settingsCmd(args []string) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	var cfg string
	fs.StringVar(&cfg, "config", "", "comma-separated YAML settings files")
	_ = fs.Parse(args)
	s := load(cfg)

	out, err := yaml.Marshal(map[string]any{
		"language":       s.Language,
		"use_tz":         s.UseTZ,
		"unknown_fields": s.UnknownFields,
		"log":            map[string]any{"level": s.Log.Level, "pretty": s.Log.Pretty},
		"document": map[string]any{
			"title":       s.Document.Title,
			"version":     s.Document.Version,
			"description": s.Document.Description,
			"servers":     s.Servers(),
		},
	})
	if err != nil {
		fatalf("encode: %v", err)
	}
	os.Stdout.Write(out)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
