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
	"testing"

	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgeTriples(g *Graph) [][3]any {
	var res [][3]any
	for _, e := range g.Edges() {
		res = append(res, [3]any{e.Src, e.Dst, e.Kind})
	}
	return res
}

func TestNewGraphAllocatesEveryLocal(t *testing.T) {
	g := NewGraph("f", "f", ir.Span{}, 2, 7)
	require.Len(t, g.Nodes(), 7)
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.Closures())
	assert.Equal(t, "_0 (return)", g.Node(0).Label)
	assert.Equal(t, "_2 (arg)", g.Node(2).Label)
	assert.Equal(t, "_3", g.Node(3).Label)
	assert.Equal(t, []ir.Local{1, 2}, g.Params())
	assert.True(t, g.IsParam(2))
	assert.False(t, g.IsParam(0))
	assert.False(t, g.IsParam(3))
}

func TestNewGraphRejectsTooFewLocals(t *testing.T) {
	assert.PanicsWithError(t, "dataflow contract violation in f: 2 locals cannot hold a return place and 2 parameters",
		func() { NewGraph("f", "f", ir.Span{}, 2, 2) })
}

func TestNodeCountIndependentOfEdges(t *testing.T) {
	for _, body := range allTestBodies() {
		g := BuildGraph(body)
		assert.Len(t, g.Nodes(), body.LocalCount, body.ID)
		for i, n := range g.Nodes() {
			assert.Equal(t, ir.Local(i), n.Local)
		}
	}
}

func TestEdgeKinds(t *testing.T) {
	b := ir.NewBodyBuilder("kinds", "kinds", 2)
	l := make([]ir.Local, 10)
	for i := range l {
		l[i] = b.NewLocal()
	}
	// l[0]..l[9] are locals 3..12
	b.Assign(local(l[0]), moveOf(1))
	b.Assign(local(l[1]), copyOf(1))
	b.Assign(local(l[2]), ir.Use{Operand: ir.Copy(local(1).Field(0))})
	b.Assign(local(l[3]), ir.Use{Operand: ir.Copy(local(1).Field(0).Deref())})
	b.Assign(local(l[4]), ir.Use{Operand: ir.Copy(local(1).Index(2))})
	b.Assign(local(l[5]), ir.Ref{Place: local(1), Mutable: true})
	b.Assign(local(l[6]), ir.CopyForDeref{Place: local(1)})
	b.Assign(local(l[7]), ir.Cast{Operand: ir.Copy(local(2)), Type: "int64"})
	b.Assign(local(l[8]), ir.Nullary{Op: "SizeOf"})
	b.Assign(local(l[9]), ir.Len{Place: local(1)})
	b.Push(ir.Effect{Kind: "StorageLive(_3)"})
	g := BuildGraph(b.Finish())

	assert.Equal(t, [][3]any{
		{ir.Local(1), l[0], Move},
		{ir.Local(1), l[1], Copy},
		{ir.Local(1), l[2], Field},
		{ir.Local(1), l[3], Deref},
		{ir.Local(1), l[4], Index},
		{ir.Local(2), l[4], Operand},
		{ir.Local(1), l[5], Ref},
		{ir.Local(1), l[6], Deref},
		{ir.Local(2), l[7], Operand},
		{ir.Local(1), l[9], Operand},
	}, edgeTriples(g))
	assert.Zero(t, g.Node(l[8]).InDegree(), "a local-free value adds no edge")
}

func TestProjectedDestination(t *testing.T) {
	b := ir.NewBodyBuilder("store", "store", 2)
	b.Assign(local(1).Deref().Field(2), copyOf(2))
	g := BuildGraph(b.Finish())
	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, ir.Local(2), edges[0].Src)
	assert.Equal(t, ir.Local(1), edges[0].Dst)
	assert.True(t, edges[0].Projected)
	assert.Equal(t, "_2 -[copy]-> _1*", edges[0].String())
}

func TestSequenceNumbers(t *testing.T) {
	g := BuildGraph(callBody())
	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, 0, edges[0].Seq, "call terminator of block 0")
	assert.Equal(t, 1, edges[1].Seq, "first statement of block 1")
	assert.Equal(t, 0, edges[0].ID)
	assert.Equal(t, 1, edges[1].ID)
}

func TestCallEdgesAndCallSites(t *testing.T) {
	b := ir.NewBodyBuilder("calls", "calls", 2)
	f, r1, r2 := b.NewLocal(), b.NewLocal(), b.NewLocal()
	b.Call(ir.FuncConstant("pkg.g"), []ir.Operand{ir.Copy(local(1)), ir.Constant("3"), ir.Move(local(2))}, local(r1))
	b.Call(ir.Copy(local(f)), []ir.Operand{ir.Copy(local(r1))}, local(r2))
	g := BuildGraph(b.Finish())

	assert.Equal(t, [][3]any{
		{ir.Local(1), r1, CallArg},
		{ir.Local(2), r1, CallArg},
		{f, r2, CallArg},
		{r1, r2, CallArg},
	}, edgeTriples(g))

	sites := g.CallSites()
	require.Len(t, sites, 2)
	assert.Equal(t, ir.FuncID("pkg.g"), sites[0].Func)
	assert.Equal(t, []ir.Local{1, 2}, sites[0].Args)
	assert.Equal(t, r1, sites[0].Dest)
	assert.Equal(t, ir.FuncID(""), sites[1].Func)
	assert.Equal(t, "copy _3", sites[1].Callee)
	assert.Empty(t, g.Closures())
}

func TestClosureSet(t *testing.T) {
	b := ir.NewBodyBuilder("f", "f", 1)
	c1, c2, r := b.NewLocal(), b.NewLocal(), b.NewLocal()
	b.Assign(local(c1), ir.Aggregate{Kind: ir.AggClosure, Closure: "f$1", Operands: []ir.Operand{ir.Copy(local(1))}})
	b.Assign(local(c2), ir.Aggregate{Kind: ir.AggClosure, Closure: "f$2"})
	// referencing the function itself or an already recorded closure does not change the set
	b.Assign(local(c2), ir.Aggregate{Kind: ir.AggClosure, Closure: "f"})
	b.Assign(local(c2), ir.Use{Operand: ir.ClosureConstant("f$1")})
	b.Call(ir.ClosureConstant("f$3"), []ir.Operand{ir.ClosureConstant("f$4")}, local(r))
	g := BuildGraph(b.Finish())

	assert.Equal(t, []ir.FuncID{"f$1", "f$2", "f$3", "f$4"}, g.Closures())
	assert.NotContains(t, g.Closures(), g.ID)
	assert.True(t, g.CallSites()[0].Closure)
	assert.Equal(t, [][3]any{{ir.Local(1), c1, Operand}}, edgeTriples(g))
}

func TestOutOfRangeLocalPanics(t *testing.T) {
	g := BuildGraph(identityBody())
	assertViolation := func(f func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic")
			cv, ok := r.(*ContractViolation)
			require.True(t, ok, "expected a *ContractViolation, got %T", r)
			assert.Equal(t, ir.FuncID("id"), cv.Func)
		}()
		f()
	}
	assertViolation(func() { g.IsConnected(0, 9) })
	assertViolation(func() { g.CollectEquivalentLocals(2, true) })
	assertViolation(func() { g.AddEdge(0, 5, Copy) })
	assertViolation(func() { g.Node(2) })
}

func TestSelfLoopAndCycles(t *testing.T) {
	g := BuildGraph(loopBody())
	assert.Equal(t, [][]ir.Local{{2, 3}}, g.Cycles())

	g.AddEdge(1, 1, Copy)
	assert.Equal(t, [][]ir.Local{{1}, {2, 3}}, g.Cycles())
	assert.True(t, g.IsConnected(1, 1))

	assert.Empty(t, BuildGraph(identityBody()).Cycles())
}

func TestAdjacency(t *testing.T) {
	g := BuildGraph(arithBody())
	assert.Equal(t, []ir.Local{3}, g.Successors(1))
	assert.Equal(t, []ir.Local{1, 2}, g.Predecessors(3))
	assert.Len(t, g.InEdges(3), 2)
	assert.Len(t, g.OutEdges(3), 1)
	assert.Equal(t, 2, g.Node(3).InDegree())
	assert.Equal(t, 1, g.Node(3).OutDegree())
}

func TestGonumView(t *testing.T) {
	b := ir.NewBodyBuilder("view", "view", 1)
	l := b.NewLocal()
	b.Assign(local(l), copyOf(1))
	b.Assign(local(l).Field(0), ir.Use{Operand: ir.Copy(local(1).Field(1))})
	g := BuildGraph(b.Finish())
	v := g.View()

	assert.Equal(t, 3, v.Nodes().Len())
	assert.True(t, v.HasEdgeFromTo(1, 2))
	assert.False(t, v.HasEdgeFromTo(2, 1))
	assert.True(t, v.HasEdgeBetween(2, 1))
	assert.Nil(t, v.Edge(0, 1))
	assert.Nil(t, v.Node(7))
	assert.Equal(t, 1, v.From(1).Len(), "parallel edges are merged")
	assert.Equal(t, 0, v.From(42).Len())

	e, ok := v.Edge(1, 2).(viewEdge)
	require.True(t, ok)
	assert.True(t, e.kinds.has(Copy))
	assert.True(t, e.kinds.has(Field))
	assert.True(t, e.whole.has(Copy))
	assert.False(t, e.whole.has(Field))
	assert.Equal(t, int64(1), e.ReversedEdge().To().ID())
}

func TestParseEdgeKind(t *testing.T) {
	for k := Move; k < numEdgeKinds; k++ {
		parsed, err := ParseEdgeKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseEdgeKind("assign")
	assert.Error(t, err)
}
