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
The dataflow package implements the dataflow graph engine. For every function of a unit it builds a [Graph] whose
nodes are the locals of the function and whose edges are direct data dependencies: assignments, moves, field and
index projections, dereferences, references, and call arguments flowing to the call destination.

The graphs of a unit are built by an [Analyzer]:

	analyzer := dataflow.NewAnalyzer(unit, logger, cfg)
	analyzer.BuildAll()
	results := analyzer.Results()

BuildAll builds the graph of every item of the unit, and recursively the graph of every closure referenced by a
function it analyzes. Each function is built at most once. The returned [Results] is an immutable snapshot
implementing [Analysis], the query interface used by downstream analyses:

	results.HasFlowBetween(id, 1, ir.ReturnLocal) // does parameter 1 flow into the return value?
	results.EquivalentLocals(id, 2)               // locals holding the same value as local 2
	results.ArgToReturn(id)                       // which parameters flow into the return value

Querying a function that has no graph through HasFlowBetween, EquivalentLocals or ArgToReturn is a contract
violation and panics with a [*ContractViolation]; use [Results.GraphOf] to check first.
*/
package dataflow
