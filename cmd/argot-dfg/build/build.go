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

// Package build implements the front-end building the dataflow graphs of a Go program.
package build

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/tools"
	"github.com/awslabs/ar-go-dfg/internal/formatutil"
)

// Usage of the build sub-command
const Usage = `Build the dataflow graphs of the functions of a Go program.

Usage:
  argot-dfg build [options] package...
  argot-dfg build [options] source.go

Use the -help flag to display the options.

Examples:
% argot-dfg build -config config.yaml ./...
% argot-dfg build -json -snapshot graphs.msgpack main.go
`

// Flags represents the flags for the build sub-command.
type Flags struct {
	tools.CommonFlags
	outputJson bool
	list       bool
	snapshot   string
}

// NewFlags returns parsed flags for build.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("build")
	outputJson := flags.FlagSet.Bool("json", false, "output statistics as JSON")
	list := flags.FlagSet.Bool("list", false, "print the identifiers of the analyzed functions")
	snapshot := flags.FlagSet.String("snapshot", "", "write a msgpack snapshot of the graphs to this file")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command build with args %v: %v", args, err)
	}
	return Flags{
		CommonFlags: flags.Parsed(),
		outputJson:  *outputJson,
		list:        *list,
		snapshot:    *snapshot,
	}, nil
}

// Run builds the graphs of every function of the program and prints statistics about them.
func Run(flags Flags) error {
	session, err := tools.NewSession(flags.CommonFlags)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, formatutil.Faint("Analyzing"))
	start := time.Now()
	if err := session.Analyzer.Run(); err != nil {
		return fmt.Errorf("debug export failed: %w", err)
	}
	results := session.Analyzer.Results()
	stats := dataflow.Statistics(results)

	if flags.outputJson {
		buf, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("could not encode statistics: %w", err)
		}
		fmt.Println(string(buf))
	} else {
		printStats(stats, session.Analyzer.Skipped(), time.Since(start))
		for _, group := range session.Analyzer.ClosureGroups() {
			fmt.Printf("%s %v\n", formatutil.Yellow("Mutually recursive closures:"), group)
		}
	}

	if flags.list {
		for _, id := range results.FuncIDs() {
			fmt.Println(id)
		}
	}

	snapshot := flags.snapshot
	if snapshot == "" {
		snapshot = session.Config.SnapshotFile
	}
	return tools.WriteSnapshot(results, snapshot)
}

func printStats(stats dataflow.Stats, skipped []ir.FuncID, elapsed time.Duration) {
	fmt.Printf("%s %d functions in %.2f s\n", formatutil.Green("Analyzed"), stats.NumberOfFunctions, elapsed.Seconds())
	if len(skipped) > 0 {
		fmt.Printf("%s %d functions without body\n", formatutil.Yellow("Skipped"), len(skipped))
	}
	fmt.Printf("Number of nodes: %d\n", stats.NumberOfNodes)
	fmt.Printf("Number of edges: %d\n", stats.NumberOfEdges)
	kinds := make([]string, 0, len(stats.EdgesByKind))
	for k := range stats.EdgesByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-8s %d\n", k, stats.EdgesByKind[k])
	}
	fmt.Printf("Number of closures: %d\n", stats.NumberOfClosures)
	fmt.Printf("Number of call sites: %d\n", stats.NumberOfCallSites)
	fmt.Printf("Number of dependency cycles: %d\n", stats.NumberOfCycles)
	fmt.Printf("Parameters flowing to the return value: %d definitely, %d through calls\n",
		stats.ArgsToReturn[dataflow.Definite.String()], stats.ArgsToReturn[dataflow.May.String()])
}
