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

package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig. If no file has been set, it returns the
// default config.
func LoadGlobal() (*Config, error) {
	if configFile == "" {
		return NewDefault(), nil
	}
	return Load(configFile)
}

// Config contains the options of the dataflow analysis and of the tools running it.
// If some field is not defined in the config file, it will have its default value (see NewDefault).
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp
}

type Options struct {
	// PkgFilter restricts the functions analyzed to the ones whose package path matches the filter. Closures of
	// analyzed functions are always analyzed.
	PkgFilter string `yaml:"pkg-filter"`

	// Workers is the number of functions whose graphs are built concurrently. When Workers <= 1 the graphs are built
	// sequentially.
	Workers int `yaml:"workers"`

	// BodyCacheSize is the number of function bodies lowered from SSA that are kept in memory
	BodyCacheSize int `yaml:"body-cache-size"`

	// Debug makes the analysis export every graph it builds to ExportDir after building them
	Debug bool `yaml:"debug"`

	// ExportDir is the directory graphs are exported to. It is emptied before every export. A relative path is
	// relative to the config file.
	ExportDir string `yaml:"export-dir"`

	// RenderPNG specifies whether exported graphs should also be rendered to png with the Graphviz dot command
	RenderPNG bool `yaml:"render-png"`

	// SnapshotFile is a file where a snapshot of all the graphs is written after the analysis. Empty means no
	// snapshot.
	SnapshotFile string `yaml:"snapshot-file"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			PkgFilter:     "",
			Workers:       DefaultWorkers,
			BodyCacheSize: DefaultBodyCacheSize,
			Debug:         false,
			ExportDir:     DefaultExportDir,
			RenderPNG:     false,
			SnapshotFile:  "",
			LogLevel:      int(InfoLevel),
			SilenceWarn:   false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(filename, b)
}

// Parse reads a configuration from the content b of the file filename
func Parse(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// normalize sets the defaults of the options that have not been specified and checks their values
func (c *Config) normalize() error {
	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if c.LogLevel == 0 {
		c.LogLevel = int(InfoLevel)
	}
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level %d out of range [%d, %d]", c.LogLevel, ErrLevel, TraceLevel)
	}

	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}

	if c.BodyCacheSize <= 0 {
		c.BodyCacheSize = DefaultBodyCacheSize
	}

	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}

	c.pkgFilterRegex = nil
	if c.PkgFilter != "" {
		r, err := regexp.Compile(c.PkgFilter)
		if err == nil {
			c.pkgFilterRegex = r
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// ExportPath returns the path of the export directory. A relative ExportDir is resolved against the directory of
// the config file, when the config has been loaded from a file.
func (c Config) ExportPath() string {
	if c.sourceFile == "" || filepath.IsAbs(c.ExportDir) {
		return c.ExportDir
	}
	return c.RelPath(c.ExportDir)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// Parallel returns true when graphs should be built by several workers
func (c Config) Parallel() bool {
	return c.Workers > 1
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
