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

// Package query implements the front-end answering connectivity, equivalence and argument-to-return queries on the
// dataflow graph of one function.
package query

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/tools"
	"github.com/awslabs/ar-go-dfg/internal/formatutil"
)

// Usage of the query sub-command
const Usage = `Query the dataflow graph of a function.

Usage:
  argot-dfg query -func id [-from local -to local] [-equiv local] [-dump] package...

Without -from/-to or -equiv, prints which parameters flow into the return value.
Locals are numbered as in the graph: 0 is the return value, parameters start at 1.

Examples:
% argot-dfg query -func example.com/app.handle -from 1 -to 0 ./app
% argot-dfg query -func example.com/app.handle -equiv 2 ./app
`

// Flags represents the flags for the query sub-command.
type Flags struct {
	tools.CommonFlags
	fn    string
	from  int
	to    int
	equiv int
	dump  bool
}

// NewFlags returns parsed flags for query.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("query")
	fn := flags.FlagSet.String("func", "", "identifier of the function to query")
	from := flags.FlagSet.Int("from", -1, "source local of a connectivity query")
	to := flags.FlagSet.Int("to", -1, "destination local of a connectivity query")
	equiv := flags.FlagSet.Int("equiv", -1, "print the locals holding the same value as this local")
	dump := flags.FlagSet.Bool("dump", false, "print the nodes and edges of the graph")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command query with args %v: %v", args, err)
	}
	if *fn == "" {
		return Flags{}, fmt.Errorf("query needs a function: use -func")
	}
	if (*from < 0) != (*to < 0) {
		return Flags{}, fmt.Errorf("a connectivity query needs both -from and -to")
	}
	return Flags{
		CommonFlags: flags.Parsed(),
		fn:          *fn,
		from:        *from,
		to:          *to,
		equiv:       *equiv,
		dump:        *dump,
	}, nil
}

// Run builds the graph of the queried function and its closures, then answers the query.
func Run(flags Flags) error {
	session, err := tools.NewSession(flags.CommonFlags)
	if err != nil {
		return err
	}
	id := ir.FuncID(flags.fn)
	if _, ok := session.Unit.Function(id); !ok {
		return fmt.Errorf("unknown function %s", id)
	}
	session.Analyzer.Build(id)
	results := session.Analyzer.Results()
	g, ok := results.GraphOf(id)
	if !ok {
		return fmt.Errorf("no dataflow graph for %s: the function has no body", id)
	}
	if err := checkLocals(g, flags.from, flags.to, flags.equiv); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", formatutil.Faint("Querying"), id)
	switch {
	case flags.from >= 0:
		a, b := ir.Local(flags.from), ir.Local(flags.to)
		flow := g.FlowBetween(a, b)
		fmt.Printf("%s -> %s: %s\n", a, b, colorFlow(flow))
	case flags.equiv >= 0:
		l := ir.Local(flags.equiv)
		fmt.Printf("%s is equivalent to %v\n", l, results.EquivalentLocals(id, l).Sorted())
	default:
		for _, line := range argToReturnLines(g.Params(), results.ArgToReturn(id)) {
			fmt.Println(line)
		}
	}
	if flags.dump {
		fmt.Print(g.String())
	}
	return nil
}

// argToReturnLines formats the flow of each parameter into the return value
func argToReturnLines(params []ir.Local, deps dataflow.Arg2Ret) []string {
	lines := make([]string, 0, len(params))
	for _, p := range params {
		lines = append(lines, fmt.Sprintf("%s (arg) -> %s: %s", p, ir.ReturnLocal, colorFlow(deps[p])))
	}
	return lines
}

func checkLocals(g *dataflow.Graph, locals ...int) error {
	for _, l := range locals {
		if l >= g.LocalCount {
			return fmt.Errorf("local _%d out of range: %s has %d locals", l, g.ID, g.LocalCount)
		}
	}
	return nil
}

func colorFlow(f dataflow.Flow) string {
	switch f {
	case dataflow.Definite:
		return formatutil.Green(f.String())
	case dataflow.May:
		return formatutil.Yellow(f.String())
	default:
		return formatutil.Faint(f.String())
	}
}
