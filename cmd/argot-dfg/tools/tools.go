// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tools contains utility types and functions for the argot-dfg sub-commands.
package tools

import (
	"flag"
	"fmt"
	"go/build"
	"os"

	"github.com/awslabs/ar-go-dfg/analysis"
	"github.com/awslabs/ar-go-dfg/analysis/config"
	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"github.com/awslabs/ar-go-dfg/analysis/ir/lower"
	"github.com/awslabs/ar-go-dfg/analysis/render"
	"github.com/awslabs/ar-go-dfg/internal/formatutil"
	"golang.org/x/tools/go/buildutil"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	EnvFile    *string
	Verbose    *bool
	WithTest   *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// Sub-commands that need other flags add them to the flag set before parsing.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	envFile := cmd.String("env", "", ".env file with ARGOT_DFG_* overrides (default: .env if present)")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	withTest := cmd.Bool("with-test", false, "load tests during analysis")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		EnvFile:    envFile,
		Verbose:    verbose,
		WithTest:   withTest,
	}
}

// Parsed returns the common flags after the flag set has been parsed
func (u UnparsedCommonFlags) Parsed() CommonFlags {
	return CommonFlags{
		FlagSet:    u.FlagSet,
		ConfigPath: *u.ConfigPath,
		EnvFile:    *u.EnvFile,
		Verbose:    *u.Verbose,
		WithTest:   *u.WithTest,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `argot-dfg build ...`, "build" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	EnvFile    string
	Verbose    bool
	WithTest   bool
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath, or returns the default config if configPath is empty. The
// ARGOT_DFG_* environment variables, possibly set by the .env file, override the options of the file.
func LoadConfig(flags CommonFlags) (*config.Config, error) {
	cfg := config.NewDefault()
	if flags.ConfigPath != "" {
		config.SetGlobalConfig(flags.ConfigPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", flags.ConfigPath, err)
		}
		cfg = loaded
	}
	if flags.EnvFile != "" {
		config.LoadDotEnv(flags.EnvFile)
	} else {
		config.LoadDotEnv()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if flags.Verbose && !cfg.Verbose() {
		cfg.LogLevel = int(config.DebugLevel)
	}
	return cfg, nil
}

// Session is a loaded program ready to be analyzed
type Session struct {
	Config   *config.Config
	Logger   *config.LogGroup
	Unit     *lower.Unit
	Analyzer *dataflow.Analyzer
}

// NewSession loads the program designated by the remaining arguments of flags and prepares an analyzer for its
// functions. Nothing is built yet.
func NewSession(flags CommonFlags) (*Session, error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, err
	}
	logger := config.NewLogGroup(cfg)

	fmt.Fprintln(os.Stderr, formatutil.Faint("Reading sources"))
	loadCfg := &packages.Config{Mode: analysis.PkgLoadMode, Tests: flags.WithTest}
	program, err := analysis.LoadProgram(loadCfg, "", ssa.InstantiateGenerics, flags.FlagSet.Args())
	if err != nil {
		return nil, fmt.Errorf("could not load program: %w", err)
	}

	unit, err := lower.NewUnit(program.Program, program.SSAPackages, cfg, logger)
	if err != nil {
		return nil, err
	}
	analyzer := dataflow.NewAnalyzer(unit, logger, cfg)
	analyzer.SetExporter(render.Exporter(cfg, logger))
	return &Session{Config: cfg, Logger: logger, Unit: unit, Analyzer: analyzer}, nil
}

// WriteSnapshot writes the snapshot of results into filename, when filename is not empty
func WriteSnapshot(results *dataflow.Results, filename string) error {
	if filename == "" {
		return nil
	}
	if err := render.SnapshotToFile(results, filename); err != nil {
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", formatutil.Faint("Snapshot written to"), filename)
	return nil
}
