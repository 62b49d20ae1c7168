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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of go files
var namedFilesMustBeGoFiles = regexp.MustCompile("-: named files must be .go files: -(\\w)")

// Captures queries on a function that has not been analyzed
var unknownFunction = regexp.MustCompile("unknown function|no dataflow graph")

// Captures configuration errors
var badConfig = regexp.MustCompile("failed to load config file|invalid environment")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if namedFilesMustBeGoFiles.MatchString(errMsg) {
			return "all command line flags should be before the path to the Go files to analyze"
		}
		return "make sure you have provided the right arguments to load a Go program"
	}
	if unknownFunction.MatchString(errMsg) {
		return "functions are named by their full SSA name, e.g. example.com/pkg.F or (*example.com/pkg.T).M; " +
			"use the -list flag of the build command to print them"
	}
	if badConfig.MatchString(errMsg) {
		return "check the yaml format of the config file and the values of the ARGOT_DFG_* variables"
	}
	return ""
}
