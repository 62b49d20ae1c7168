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
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// Flow summarizes whether a value flows from one local to another
type Flow uint8

const (
	// Never means there is no path between the locals
	Never Flow = iota
	// May means every path goes through at least one call, whose effect is approximated by letting every argument
	// flow into the result
	May
	// Definite means there is a path that does not rely on the call approximation
	Definite
)

func (f Flow) String() string {
	switch f {
	case Definite:
		return "definite"
	case May:
		return "may"
	default:
		return "never"
	}
}

// Flows returns true when there is any path, approximated or not
func (f Flow) Flows() bool {
	return f != Never
}

// LocalSet is a set of locals
type LocalSet map[ir.Local]bool

// Sorted returns the locals of the set in increasing order
func (s LocalSet) Sorted() []ir.Local {
	return funcutil.SetToOrderedSlice(s)
}

// Arg2Ret maps every parameter of a function to whether it flows into the return value
type Arg2Ret map[ir.Local]Flow

// Flowing returns the parameters that flow into the return value, in increasing order
func (a Arg2Ret) Flowing() []ir.Local {
	params := LocalSet{}
	for p, f := range a {
		params[p] = f.Flows()
	}
	return params.Sorted()
}

// IsConnected returns true when there is a directed path from a to b. Every local is connected to itself.
func (g *Graph) IsConnected(a, b ir.Local) bool {
	g.checkLocal(a)
	g.checkLocal(b)
	return g.reaches(a, b, nil)
}

func (g *Graph) reaches(a, b ir.Local, follow func(e viewEdge) bool) bool {
	bfs := traverse.BreadthFirst{}
	if follow != nil {
		bfs.Traverse = func(e graph.Edge) bool { return follow(e.(viewEdge)) }
	}
	target := int64(b)
	found := bfs.Walk(g.View(), &g.nodes[a], func(n graph.Node, _ int) bool { return n.ID() == target })
	return found != nil
}

// FlowBetween returns how the value of a flows into b
func (g *Graph) FlowBetween(a, b ir.Local) Flow {
	g.checkLocal(a)
	g.checkLocal(b)
	if !g.reaches(a, b, nil) {
		return Never
	}
	if g.reaches(a, b, func(e viewEdge) bool { return e.kinds&^(1<<CallArg) != 0 }) {
		return Definite
	}
	return May
}

// CollectEquivalentLocals returns the locals that hold the same value as local: local itself and the locals it is
// moved, copied or field-projected into as a whole. When transitive is false, only the direct successors are
// considered.
func (g *Graph) CollectEquivalentLocals(local ir.Local, transitive bool) LocalSet {
	g.checkLocal(local)
	set := LocalSet{local: true}
	if !transitive {
		for _, idx := range g.nodes[local].out {
			e := g.edges[idx]
			if !e.Projected && aliasKinds.has(e.Kind) {
				set[e.Dst] = true
			}
		}
		return set
	}
	bfs := traverse.BreadthFirst{
		Visit:    func(n graph.Node) { set[ir.Local(n.ID())] = true },
		Traverse: func(e graph.Edge) bool { return e.(viewEdge).whole&aliasKinds != 0 },
	}
	bfs.Walk(g.View(), &g.nodes[local], nil)
	return set
}

// ParamReturnDeps returns, for each parameter, whether it flows into the return value
func (g *Graph) ParamReturnDeps() Arg2Ret {
	deps := make(Arg2Ret, g.ArgCount)
	for _, p := range g.Params() {
		deps[p] = g.FlowBetween(p, ir.ReturnLocal)
	}
	return deps
}
