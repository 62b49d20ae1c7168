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

const (
	// DefaultWorkers is the default number of functions whose graphs are built concurrently. One means the build is
	// sequential.
	DefaultWorkers = 1
	// DefaultBodyCacheSize is the default number of lowered function bodies kept in memory
	DefaultBodyCacheSize = 1024
	// DefaultExportDir is the directory graphs are exported to in debug mode
	DefaultExportDir = "DataflowGraph"
)

// Environment variables overriding the options of a configuration, see [Config.ApplyEnv]
const (
	EnvLogLevel  = "ARGOT_DFG_LOG_LEVEL"
	EnvWorkers   = "ARGOT_DFG_WORKERS"
	EnvExportDir = "ARGOT_DFG_EXPORT_DIR"
	EnvDebug     = "ARGOT_DFG_DEBUG"
)
