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

import (
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/awslabs/ar-go-dfg/internal/funcutil"
)

// Analysis is the query interface of the dataflow analysis used by downstream analyses
type Analysis interface {
	// GraphOf returns the graph of id, and false if there is none
	GraphOf(id ir.FuncID) (*Graph, bool)

	// AllGraphs returns the graphs of all the analyzed functions
	AllGraphs() map[ir.FuncID]*Graph

	// HasFlowBetween returns true when the value of local a flows into local b in function id
	HasFlowBetween(id ir.FuncID, a, b ir.Local) bool

	// EquivalentLocals returns the locals holding the same value as local in function id
	EquivalentLocals(id ir.FuncID, local ir.Local) LocalSet

	// ArgToReturn returns which parameters of function id flow into its return value
	ArgToReturn(id ir.FuncID) Arg2Ret

	// AllArgToReturn returns ArgToReturn for every analyzed function
	AllArgToReturn() map[ir.FuncID]Arg2Ret
}

var _ Analysis = (*Results)(nil)

// Results is an immutable snapshot of the graphs built by an Analyzer. It is safe for concurrent use.
type Results struct {
	graphs map[ir.FuncID]*Graph
}

// NewResults returns the results made of the given graphs, indexed by their ID
func NewResults(graphs ...*Graph) *Results {
	r := &Results{graphs: make(map[ir.FuncID]*Graph, len(graphs))}
	for _, g := range graphs {
		r.graphs[g.ID] = g
	}
	return r
}

// Len returns the number of graphs
func (r *Results) Len() int {
	return len(r.graphs)
}

// FuncIDs returns the identifiers of all the functions that have a graph, sorted
func (r *Results) FuncIDs() []ir.FuncID {
	return funcutil.SortedKeys(r.graphs)
}

func (r *Results) GraphOf(id ir.FuncID) (*Graph, bool) {
	g, ok := r.graphs[id]
	return g, ok
}

// AllGraphs returns a copy of the map from function to graph
func (r *Results) AllGraphs() map[ir.FuncID]*Graph {
	graphs := make(map[ir.FuncID]*Graph, len(r.graphs))
	for id, g := range r.graphs {
		graphs[id] = g
	}
	return graphs
}

// mustGraph returns the graph of id, and panics when there is none
func (r *Results) mustGraph(id ir.FuncID) *Graph {
	g, ok := r.graphs[id]
	if !ok {
		panic(violation(id, "no dataflow graph"))
	}
	return g
}

// HasFlowBetween panics with a *ContractViolation when id has no graph or when a local is out of range.
func (r *Results) HasFlowBetween(id ir.FuncID, a, b ir.Local) bool {
	return r.mustGraph(id).IsConnected(a, b)
}

// FlowBetween returns how local a flows into local b in function id. It panics like HasFlowBetween.
func (r *Results) FlowBetween(id ir.FuncID, a, b ir.Local) Flow {
	return r.mustGraph(id).FlowBetween(a, b)
}

// EquivalentLocals returns the transitive equivalence class of local. It panics with a *ContractViolation when id
// has no graph.
func (r *Results) EquivalentLocals(id ir.FuncID, local ir.Local) LocalSet {
	return r.mustGraph(id).CollectEquivalentLocals(local, true)
}

// ArgToReturn panics with a *ContractViolation when id has no graph.
func (r *Results) ArgToReturn(id ir.FuncID) Arg2Ret {
	return r.mustGraph(id).ParamReturnDeps()
}

func (r *Results) AllArgToReturn() map[ir.FuncID]Arg2Ret {
	all := make(map[ir.FuncID]Arg2Ret, len(r.graphs))
	for id, g := range r.graphs {
		all[id] = g.ParamReturnDeps()
	}
	return all
}
