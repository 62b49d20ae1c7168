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
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// graphView exposes a Graph as a gonum directed graph. Parallel edges between two locals are merged into a single
// view edge carrying the set of their kinds.
type graphView struct {
	g *Graph
}

var _ graph.Directed = graphView{}

// View returns the graph as a gonum directed graph, for use with the gonum graph algorithms.
func (g *Graph) View() graph.Directed {
	return graphView{g}
}

func (v graphView) node(id int64) (*Node, bool) {
	if id < 0 || id >= int64(len(v.g.nodes)) {
		return nil, false
	}
	return &v.g.nodes[id], true
}

func (v graphView) Node(id int64) graph.Node {
	if n, ok := v.node(id); ok {
		return n
	}
	return nil
}

func (v graphView) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(v.g.nodes))
	for i := range v.g.nodes {
		nodes[i] = &v.g.nodes[i]
	}
	return iterator.NewOrderedNodes(nodes)
}

func (v graphView) adjacent(id int64, out bool) graph.Nodes {
	n, ok := v.node(id)
	if !ok {
		return graph.Empty
	}
	var locals []int
	seen := map[int]bool{}
	indices := n.in
	if out {
		indices = n.out
	}
	for _, idx := range indices {
		e := v.g.edges[idx]
		l := int(e.Src)
		if out {
			l = int(e.Dst)
		}
		if !seen[l] {
			seen[l] = true
			locals = append(locals, l)
		}
	}
	if len(locals) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(locals))
	for i, l := range locals {
		nodes[i] = &v.g.nodes[l]
	}
	return iterator.NewOrderedNodes(nodes)
}

func (v graphView) From(id int64) graph.Nodes {
	return v.adjacent(id, true)
}

func (v graphView) To(id int64) graph.Nodes {
	return v.adjacent(id, false)
}

func (v graphView) HasEdgeBetween(xid, yid int64) bool {
	return v.HasEdgeFromTo(xid, yid) || v.HasEdgeFromTo(yid, xid)
}

func (v graphView) HasEdgeFromTo(uid, vid int64) bool {
	return v.Edge(uid, vid) != nil
}

// Edge returns the merged edge from uid to vid, or nil when there is none
func (v graphView) Edge(uid, vid int64) graph.Edge {
	u, ok := v.node(uid)
	if !ok {
		return nil
	}
	w, ok := v.node(vid)
	if !ok {
		return nil
	}
	e := viewEdge{from: u, to: w}
	for _, idx := range u.out {
		de := v.g.edges[idx]
		if de.Dst != w.Local {
			continue
		}
		e.kinds = e.kinds.with(de.Kind)
		if !de.Projected {
			e.whole = e.whole.with(de.Kind)
		}
	}
	if e.kinds == 0 {
		return nil
	}
	return e
}

// viewEdge is the merge of the parallel edges from one local to another
type viewEdge struct {
	from, to *Node

	// kinds are the kinds of all the merged edges
	kinds kindSet
	// whole are the kinds of the merged edges that write the destination as a whole
	whole kindSet
}

func (e viewEdge) From() graph.Node { return e.from }
func (e viewEdge) To() graph.Node   { return e.to }

func (e viewEdge) ReversedEdge() graph.Edge {
	return viewEdge{from: e.to, to: e.from, kinds: e.kinds, whole: e.whole}
}
