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

package dataflow

import "github.com/awslabs/ar-go-dfg/analysis/ir"

// BuildGraph builds the dataflow graph of body in one linear scan: blocks in order, and in each block the
// statements followed by the terminator.
func BuildGraph(body *ir.Body) *Graph {
	g := NewGraph(body.ID, body.Name, body.Span, body.ArgCount, body.LocalCount)
	for _, block := range body.Blocks {
		for _, stmt := range block.Statements {
			g.AddStatement(stmt)
		}
		if block.Terminator != nil {
			g.AddTerminator(block.Terminator)
		} else {
			g.seq++
		}
	}
	return g
}
