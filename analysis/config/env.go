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
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the environment variables defined in the given .env files, or in the .env file of the current
// directory when no file is given. Variables already set in the environment are not overridden, and missing files
// are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ApplyEnv overrides the options of the config with the values of the ARGOT_DFG_* environment variables that are
// set. It returns an error if one of the values cannot be parsed, in which case the config is left unchanged.
func (c *Config) ApplyEnv() error {
	opts := c.Options
	if s, ok := os.LookupEnv(EnvLogLevel); ok {
		level, err := ParseLogLevel(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		opts.LogLevel = int(level)
	}
	if s, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		opts.Workers = n
	}
	if s, ok := os.LookupEnv(EnvExportDir); ok && s != "" {
		opts.ExportDir = s
	}
	if s, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		opts.Debug = b
	}
	c.Options = opts
	return c.normalize()
}
