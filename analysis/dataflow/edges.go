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
	"strings"

	"github.com/awslabs/ar-go-dfg/analysis/ir"
)

// EdgeKind is the syntactic form of the data dependency an edge represents
type EdgeKind uint8

const (
	// Move is a value moved out of a local
	Move EdgeKind = iota
	// Copy is a value copied out of a local
	Copy
	// Field is a value read through a field or downcast projection
	Field
	// Deref is a value read through a dereference
	Deref
	// Index is a value read through an index or subslice projection
	Index
	// Ref is a reference or address taken on a place
	Ref
	// Operand is an input of a computed value (arithmetic, cast, aggregate, ...) or a local used as an index
	Operand
	// CallArg is an argument (or dynamic callee) of a call flowing to the call destination
	CallArg

	numEdgeKinds
)

var edgeKindNames = [numEdgeKinds]string{"move", "copy", "field", "deref", "index", "ref", "operand", "call_arg"}

func (k EdgeKind) String() string {
	if k < numEdgeKinds {
		return edgeKindNames[k]
	}
	return fmt.Sprintf("EdgeKind(%d)", uint8(k))
}

// ParseEdgeKind returns the edge kind whose name is s
func ParseEdgeKind(s string) (EdgeKind, error) {
	for i, name := range edgeKindNames {
		if strings.EqualFold(name, s) {
			return EdgeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

// kindSet is a bit set of edge kinds
type kindSet uint16

func (s kindSet) has(k EdgeKind) bool { return s&(1<<k) != 0 }

func (s kindSet) with(k EdgeKind) kindSet { return s | 1<<k }

// aliasKinds are the kinds along which the destination holds the same value as the source
const aliasKinds kindSet = 1<<Move | 1<<Copy | 1<<Field

// Node is a local of the analyzed function. Nodes are stored in an arena indexed by local; adjacency lists hold
// indices in the edge arena of the graph.
type Node struct {
	Local ir.Local
	Label string

	in  []int
	out []int
}

// ID returns the node identifier in graph views, which is the local index
func (n *Node) ID() int64 { return int64(n.Local) }

func (n *Node) String() string { return n.Label }

// InDegree returns the number of edges ending at the node
func (n *Node) InDegree() int { return len(n.in) }

// OutDegree returns the number of edges starting at the node
func (n *Node) OutDegree() int { return len(n.out) }

// Edge is a direct data dependency from Src to Dst
type Edge struct {
	ID   int
	Src  ir.Local
	Dst  ir.Local
	Kind EdgeKind

	// Seq is the sequence number of the statement (or terminator) that induced the edge
	Seq int

	// Projected is true when the destination was written through a projection (e.g. _2.0 = _1), in which case
	// the destination does not hold the value of the source as a whole.
	Projected bool
}

func (e Edge) String() string {
	p := ""
	if e.Projected {
		p = "*"
	}
	return fmt.Sprintf("%s -[%s]-> %s%s", e.Src, e.Kind, e.Dst, p)
}

// CallSite records one call of the function
type CallSite struct {
	// Callee is the textual callee operand
	Callee string
	// Func is the identifier of the callee when it is statically known
	Func ir.FuncID
	// Closure is set when the callee is a closure of the function
	Closure bool
	Args    []ir.Local
	Dest    ir.Local
	Seq     int
	Span    ir.Span
}

func nodeLabel(l ir.Local, argCount int) string {
	switch {
	case l == ir.ReturnLocal:
		return l.String() + " (return)"
	case int(l) <= argCount:
		return l.String() + " (arg)"
	default:
		return l.String()
	}
}
