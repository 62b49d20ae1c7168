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
	"fmt"
	"sort"
	"strings"

	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/yourbasic/graph"
)

// Graph is the dataflow graph of one function: one node per local, one edge per direct data dependency.
//
// A Graph is built by a single scan of the function body (see BuildGraph) and is read-only afterwards. Nodes and
// edges live in arenas; nodes are indexed by local and adjacency lists refer to edges by index.
type Graph struct {
	ID         ir.FuncID
	Name       string
	Span       ir.Span
	ArgCount   int
	LocalCount int

	nodes      []Node
	edges      []Edge
	closures   []ir.FuncID
	closureSet map[ir.FuncID]bool
	callSites  []CallSite

	// seq is the sequence number of the statement being added
	seq int
}

// NewGraph returns a graph with localCount nodes and no edges. localCount must account for the return place
// and the argCount parameters.
func NewGraph(id ir.FuncID, name string, span ir.Span, argCount int, localCount int) *Graph {
	if argCount < 0 || localCount < argCount+1 {
		panic(violation(id, "%d locals cannot hold a return place and %d parameters", localCount, argCount))
	}
	g := &Graph{
		ID:         id,
		Name:       name,
		Span:       span,
		ArgCount:   argCount,
		LocalCount: localCount,
		nodes:      make([]Node, localCount),
		closureSet: map[ir.FuncID]bool{},
	}
	for i := range g.nodes {
		l := ir.Local(i)
		g.nodes[i] = Node{Local: l, Label: nodeLabel(l, argCount)}
	}
	return g
}

func (g *Graph) checkLocal(l ir.Local) {
	if int(l) >= len(g.nodes) {
		panic(violation(g.ID, "local %s out of range (%d locals)", l, len(g.nodes)))
	}
}

// IsParam returns true when l is one of the formal parameters
func (g *Graph) IsParam(l ir.Local) bool {
	return l != ir.ReturnLocal && int(l) <= g.ArgCount
}

// Params returns the parameter locals in order
func (g *Graph) Params() []ir.Local {
	params := make([]ir.Local, g.ArgCount)
	for i := range params {
		params[i] = ir.Local(i + 1)
	}
	return params
}

// Node returns the node of local l
func (g *Graph) Node(l ir.Local) *Node {
	g.checkLocal(l)
	return &g.nodes[l]
}

// Nodes returns the nodes of the graph, ordered by local
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.nodes))
	for i := range g.nodes {
		nodes[i] = &g.nodes[i]
	}
	return nodes
}

// Edges returns the edges of the graph in insertion order. The returned slice must not be modified.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// OutEdges returns the edges starting at l, in insertion order
func (g *Graph) OutEdges(l ir.Local) []Edge {
	g.checkLocal(l)
	return g.collect(g.nodes[l].out)
}

// InEdges returns the edges ending at l, in insertion order
func (g *Graph) InEdges(l ir.Local) []Edge {
	g.checkLocal(l)
	return g.collect(g.nodes[l].in)
}

func (g *Graph) collect(indices []int) []Edge {
	edges := make([]Edge, len(indices))
	for i, idx := range indices {
		edges[i] = g.edges[idx]
	}
	return edges
}

// Successors returns the distinct locals that l flows into directly
func (g *Graph) Successors(l ir.Local) []ir.Local {
	g.checkLocal(l)
	return g.distinct(g.nodes[l].out, func(e *Edge) ir.Local { return e.Dst })
}

// Predecessors returns the distinct locals that flow directly into l
func (g *Graph) Predecessors(l ir.Local) []ir.Local {
	g.checkLocal(l)
	return g.distinct(g.nodes[l].in, func(e *Edge) ir.Local { return e.Src })
}

func (g *Graph) distinct(indices []int, end func(*Edge) ir.Local) []ir.Local {
	seen := map[ir.Local]bool{}
	var res []ir.Local
	for _, idx := range indices {
		l := end(&g.edges[idx])
		if !seen[l] {
			seen[l] = true
			res = append(res, l)
		}
	}
	return res
}

// Closures returns the identifiers of the closures referenced by the function, in discovery order
func (g *Graph) Closures() []ir.FuncID {
	return append([]ir.FuncID(nil), g.closures...)
}

// CallSites returns the calls of the function, in body order
func (g *Graph) CallSites() []CallSite {
	return append([]CallSite(nil), g.callSites...)
}

// AddEdge adds an edge from src to dst and returns its index. Both locals must be in range.
func (g *Graph) AddEdge(src, dst ir.Local, kind EdgeKind) int {
	return g.addEdge(src, dst, kind, false)
}

func (g *Graph) addEdge(src, dst ir.Local, kind EdgeKind, projected bool) int {
	g.checkLocal(src)
	g.checkLocal(dst)
	id := len(g.edges)
	g.edges = append(g.edges, Edge{ID: id, Src: src, Dst: dst, Kind: kind, Seq: g.seq, Projected: projected})
	g.nodes[src].out = append(g.nodes[src].out, id)
	g.nodes[dst].in = append(g.nodes[dst].in, id)
	return id
}

// AddClosure records that the function references the closure id. The function itself and already recorded
// closures are ignored.
func (g *Graph) AddClosure(id ir.FuncID) {
	if id == "" || id == g.ID || g.closureSet[id] {
		return
	}
	g.closureSet[id] = true
	g.closures = append(g.closures, id)
}

// AddStatement adds the edges induced by one statement
func (g *Graph) AddStatement(stmt ir.Statement) {
	defer func() { g.seq++ }()
	assign, ok := stmt.(ir.Assign)
	if !ok {
		return
	}
	dst := assign.Dest.Local
	projected := !assign.Dest.IsLocal()
	// locals used to compute the address of the destination
	for _, l := range assign.Dest.Locals()[1:] {
		g.addEdge(l, dst, Operand, projected)
	}
	g.addRvalue(dst, assign.Value, projected)
}

// AddTerminator adds the edges induced by a block terminator. Only calls induce edges.
func (g *Graph) AddTerminator(term ir.Terminator) {
	defer func() { g.seq++ }()
	call, ok := term.(ir.Call)
	if !ok {
		return
	}
	dst := call.Dest.Local
	projected := !call.Dest.IsLocal()
	site := CallSite{
		Callee: call.Func.String(),
		Dest:   dst,
		Seq:    g.seq,
		Span:   call.Span,
	}
	if call.Func.IsConstant() {
		site.Func = call.Func.Const.Func
		site.Closure = call.Func.Const.Closure
		if site.Closure {
			g.AddClosure(site.Func)
		}
	} else {
		for _, l := range call.Func.Locals() {
			g.addEdge(l, dst, CallArg, projected)
		}
	}
	for _, arg := range call.Args {
		g.noteClosure(arg)
		for _, l := range arg.Locals() {
			g.addEdge(l, dst, CallArg, projected)
			site.Args = append(site.Args, l)
		}
	}
	for _, l := range call.Dest.Locals()[1:] {
		g.addEdge(l, dst, Operand, projected)
	}
	g.callSites = append(g.callSites, site)
}

func (g *Graph) noteClosure(op ir.Operand) {
	if op.IsConstant() && op.Const.Closure {
		g.AddClosure(op.Const.Func)
	}
}

func (g *Graph) addRvalue(dst ir.Local, rv ir.Rvalue, projected bool) {
	switch v := rv.(type) {
	case ir.Use:
		g.addOperand(dst, v.Operand, projected)
	case ir.Ref:
		g.addPlace(dst, v.Place, Ref, projected)
	case ir.AddressOf:
		g.addPlace(dst, v.Place, Ref, projected)
	case ir.CopyForDeref:
		g.addPlace(dst, v.Place, Deref, projected)
	case ir.Repeat:
		g.addComputed(dst, projected, v.Operand)
	case ir.Cast:
		g.addComputed(dst, projected, v.Operand)
	case ir.BinaryOp:
		g.addComputed(dst, projected, v.Left, v.Right)
	case ir.UnaryOp:
		g.addComputed(dst, projected, v.Operand)
	case ir.Len:
		g.addPlace(dst, v.Place, Operand, projected)
	case ir.Discriminant:
		g.addPlace(dst, v.Place, Operand, projected)
	case ir.Aggregate:
		if v.Kind == ir.AggClosure {
			g.AddClosure(v.Closure)
		}
		g.addComputed(dst, projected, v.Operands...)
	case ir.Nullary:
	default:
		panic(violation(g.ID, "unsupported rvalue %T", rv))
	}
}

// addOperand adds the edge of an operand read as is: the kind reflects the projection path of the place read.
func (g *Graph) addOperand(dst ir.Local, op ir.Operand, projected bool) {
	if op.IsConstant() {
		g.noteClosure(op)
		return
	}
	kind := projectionKind(op.Place)
	if op.Place.IsLocal() {
		kind = Copy
		if op.Kind == ir.OpMove {
			kind = Move
		}
	}
	g.addPlace(dst, op.Place, kind, projected)
}

// addPlace adds an edge of the given kind from the base local of place, and operand edges from its index locals
func (g *Graph) addPlace(dst ir.Local, place ir.Place, kind EdgeKind, projected bool) {
	g.addEdge(place.Local, dst, kind, projected)
	for _, l := range place.Locals()[1:] {
		g.addEdge(l, dst, Operand, projected)
	}
}

func (g *Graph) addComputed(dst ir.Local, projected bool, ops ...ir.Operand) {
	for _, op := range ops {
		if op.IsConstant() {
			g.noteClosure(op)
			continue
		}
		g.addPlace(dst, op.Place, Operand, projected)
	}
}

// projectionKind returns the kind of an edge reading through the projections of p. A dereference anywhere in the
// path dominates, then indexing, then field selection.
func projectionKind(p ir.Place) EdgeKind {
	kind := Field
	for _, pr := range p.Projection {
		switch pr.Kind {
		case ir.ProjDeref:
			return Deref
		case ir.ProjIndex, ir.ProjConstantIndex, ir.ProjSubslice:
			kind = Index
		}
	}
	return kind
}

// Cycles returns the groups of locals that depend on each other through a cycle of edges, including the locals
// with a self loop. Each group is sorted, and groups are ordered by their smallest local.
func (g *Graph) Cycles() [][]ir.Local {
	var groups [][]ir.Local
	for _, component := range graph.StrongComponents(localIterator{g}) {
		if len(component) == 1 && !g.hasSelfLoop(ir.Local(component[0])) {
			continue
		}
		group := make([]ir.Local, len(component))
		for i, v := range component {
			group[i] = ir.Local(v)
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func (g *Graph) hasSelfLoop(l ir.Local) bool {
	for _, idx := range g.nodes[l].out {
		if g.edges[idx].Dst == l {
			return true
		}
	}
	return false
}

// localIterator exposes the graph as a yourbasic/graph Iterator over local indices
type localIterator struct {
	g *Graph
}

func (it localIterator) Order() int {
	return len(it.g.nodes)
}

func (it localIterator) Visit(v int, do func(w int, c int64) bool) bool {
	for _, idx := range it.g.nodes[v].out {
		if do(int(it.g.edges[idx].Dst), 0) {
			return true
		}
	}
	return false
}

func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dataflow graph of %s (%d locals, %d edges)\n", g.ID, len(g.nodes), len(g.edges))
	for _, e := range g.edges {
		fmt.Fprintf(&sb, "  %s\n", e)
	}
	if len(g.closures) > 0 {
		fmt.Fprintf(&sb, "  closures: %v\n", g.closures)
	}
	return sb.String()
}
