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

// Package export implements the front-end writing the dataflow graphs of a Go program as Graphviz files.
package export

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-dfg/analysis/render"
	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/tools"
	"github.com/awslabs/ar-go-dfg/internal/formatutil"
)

// Usage of the export sub-command
const Usage = `Export the dataflow graphs of a Go program to a directory of dot files.

Usage:
  argot-dfg export [-out dir] [-png] package...

The output directory is emptied first. When -out is not given, the export-dir of the config is used.

Examples:
% argot-dfg export -out graphs -png main.go
`

// Flags represents the flags for the export sub-command.
type Flags struct {
	tools.CommonFlags
	out      string
	png      bool
	snapshot string
}

// NewFlags returns parsed flags for export.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("export")
	out := flags.FlagSet.String("out", "", "output directory")
	png := flags.FlagSet.Bool("png", false, "also render the graphs to png with Graphviz")
	snapshot := flags.FlagSet.String("snapshot", "", "write a msgpack snapshot of the graphs to this file")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command export with args %v: %v", args, err)
	}
	return Flags{
		CommonFlags: flags.Parsed(),
		out:         *out,
		png:         *png,
		snapshot:    *snapshot,
	}, nil
}

// Run builds every graph of the program and exports them.
func Run(flags Flags) error {
	session, err := tools.NewSession(flags.CommonFlags)
	if err != nil {
		return err
	}
	session.Analyzer.BuildAll()
	results := session.Analyzer.Results()

	dir := flags.out
	if dir == "" {
		dir = session.Config.ExportPath()
	}
	opts := render.ExportOptions{PNG: flags.png || session.Config.RenderPNG}
	if err := render.ExportDir(results, dir, opts, session.Logger); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s %d graphs to %s\n", formatutil.Green("Exported"), results.Len(), dir)

	snapshot := flags.snapshot
	if snapshot == "" {
		snapshot = session.Config.SnapshotFile
	}
	return tools.WriteSnapshot(results, snapshot)
}
