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

// Package render exports dataflow graphs: Graphviz dot files, optionally rendered to png, and msgpack snapshots.
package render

import (
	"fmt"

	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// dotGraph is the multigraph handed to the dot encoder. Parallel edges of the dataflow graph are kept as separate
// lines so that every edge keeps its own kind label.
type dotGraph struct {
	*multi.DirectedGraph
	name string
}

func (g dotGraph) DOTID() string { return g.name }

func (g dotGraph) DOTAttributers() (gr, node, edge encoding.Attributer) {
	return attributes{{Key: "rankdir", Value: "LR"}},
		attributes{{Key: "shape", Value: "box"}, {Key: "fontname", Value: "Courier"}},
		attributes{{Key: "fontsize", Value: "10"}}
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }

type dotNode struct {
	node *dataflow.Node
}

func (n dotNode) ID() int64 { return n.node.ID() }

func (n dotNode) DOTID() string { return n.node.Local.String() }

func (n dotNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: n.node.Label}}
	if n.node.Local == 0 {
		attrs = append(attrs, encoding.Attribute{Key: "peripheries", Value: "2"})
	}
	return attrs
}

type dotLine struct {
	from, to dotNode
	edge     dataflow.Edge
}

func (l dotLine) From() graph.Node { return l.from }

func (l dotLine) To() graph.Node { return l.to }

func (l dotLine) ReversedLine() graph.Line { return dotLine{from: l.to, to: l.from, edge: l.edge} }

func (l dotLine) ID() int64 { return int64(l.edge.ID) }

func (l dotLine) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: l.edge.Kind.String()}}
	if l.edge.Projected {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	if l.edge.Kind == dataflow.CallArg {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "blue"})
	}
	return attrs
}

// MarshalDot returns the Graphviz representation of the dataflow graph g. Nodes are the locals of the function,
// labelled with their role, and each edge is labelled with its kind. Edges writing through a projection are dashed.
func MarshalDot(g *dataflow.Graph) ([]byte, error) {
	dg := dotGraph{DirectedGraph: multi.NewDirectedGraph(), name: string(g.ID)}
	nodes := g.Nodes()
	for _, n := range nodes {
		dg.AddNode(dotNode{node: n})
	}
	for _, e := range g.Edges() {
		dg.SetLine(dotLine{from: dotNode{node: nodes[e.Src]}, to: dotNode{node: nodes[e.Dst]}, edge: e})
	}
	b, err := dot.MarshalMulti(dg, "", "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error while encoding graph of %s: %w", g.ID, err)
	}
	return b, nil
}
