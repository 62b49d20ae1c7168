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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. For example, a valid config file is as follows:

	options:
	  log-level: 4
	  pkg-filter: "github.com/awslabs/ar-go-dfg"
	  workers: 8
	  debug: true
	  export-dir: "graphs"

Options can be overridden by environment variables with [Config.ApplyEnv], after loading a .env file with
[LoadDotEnv]:

	ARGOT_DFG_LOG_LEVEL=debug
	ARGOT_DFG_WORKERS=4
	ARGOT_DFG_EXPORT_DIR=/tmp/graphs
	ARGOT_DFG_DEBUG=true

Loggers are grouped by level in a [LogGroup] built from a config.
*/
package config
