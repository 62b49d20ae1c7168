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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/build"
	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/export"
	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/query"
	"github.com/awslabs/ar-go-dfg/cmd/argot-dfg/tools"
)

const version = "0.1.0"

const usage = `argot-dfg: dataflow graphs of Go functions
Usage:
  argot-dfg [tool] [options] <Go file path(s)>
Tools:
  - build: builds the dataflow graphs of all the functions and prints statistics
  - query: answers connectivity, equivalence and argument-to-return queries on one function
  - export: writes the graphs as Graphviz dot files
Examples:
  argot-dfg build -config config.yaml ./...
  argot-dfg query -func example.com/app.handle -from 1 -to 0 ./app`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "build":
		flags, err := build.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := build.Run(flags); err != nil {
			errExit(err)
		}
	case "query":
		flags, err := query.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := query.Run(flags); err != nil {
			errExit(err)
		}
	case "export":
		flags, err := export.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := export.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
