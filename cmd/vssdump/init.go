package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/zerodha/logf"
)

// initLogger initializes the logger instance per the app.log setting.
func initLogger(ko *koanf.Koanf) logf.Logger {
	opts := logf.Opts{EnableCaller: true}
	if ko.String("app.log") == "debug" {
		opts.Level = logf.DebugLevel
		opts.EnableColor = true
	}
	return logf.New(opts)
}

// initConfig parses flags, loads an optional config file, then layers
// environment overrides on top, and returns the positional database path
// left on the command line.
func initConfig() (*koanf.Koanf, string, error) {
	var (
		ko = koanf.New(".")
		f  = flag.NewFlagSet("vssdump", flag.ContinueOnError)
	)

	f.Usage = func() {
		fmt.Println("vssdump [flags] <path-to-vss-database>")
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	cfgPath := f.String("config", "", "Path to an optional config file to load.")
	logLevel := f.String("log", "info", "Log level: info or debug.")
	codepage := f.Int("encoding", 0, "Windows codepage to decode names/comments with (0 = use srcsafe.ini, fallback UTF-8).")
	root := f.String("root-project", "$", "Path printed for the root project (the dump always starts at physical name AAAAAAAA).")
	mode := f.String("mode", "tree", "What to dump: tree, history, or both.")
	verbose := f.Bool("verbose", false, "Include item kinds and physical names in the dump.")

	if err := f.Parse(os.Args[1:]); err != nil {
		return nil, "", err
	}

	// Flags seed the defaults; an optional config file and environment
	// variables can override them, in that order.
	if err := ko.Load(confmap.Provider(map[string]interface{}{
		"app.log":      *logLevel,
		"app.codepage": *codepage,
		"app.root":     *root,
		"app.mode":     *mode,
		"app.verbose":  *verbose,
	}, "."), nil); err != nil {
		return nil, "", err
	}

	if *cfgPath != "" {
		if err := ko.Load(file.Provider(*cfgPath), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("loading config %s: %w", *cfgPath, err)
		}
	}

	if err := ko.Load(env.Provider("VSSDUMP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "VSSDUMP_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, "", err
	}

	args := f.Args()
	if len(args) != 1 {
		f.Usage()
		return nil, "", fmt.Errorf("exactly one database path is required")
	}
	return ko, args[0], nil
}
