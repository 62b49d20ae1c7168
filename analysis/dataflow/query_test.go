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

func TestIdentityFunction(t *testing.T) {
	g := BuildGraph(identityBody())
	assert.Equal(t, [][3]any{{ir.Local(1), ir.ReturnLocal, Copy}}, edgeTriples(g))
	assert.True(t, g.IsConnected(1, 0))
	assert.False(t, g.IsConnected(0, 1))
	assert.Equal(t, Arg2Ret{1: Definite}, g.ParamReturnDeps())
}

func TestUnusedParameter(t *testing.T) {
	g := BuildGraph(constantBody())
	assert.Zero(t, g.Node(1).OutDegree())
	assert.Equal(t, Arg2Ret{1: Never}, g.ParamReturnDeps())
	assert.Empty(t, g.ParamReturnDeps().Flowing())
}

func TestFlowThroughCall(t *testing.T) {
	g := BuildGraph(callBody())
	assert.Equal(t, [][3]any{
		{ir.Local(1), ir.Local(2), CallArg},
		{ir.Local(2), ir.ReturnLocal, Move},
	}, edgeTriples(g))
	assert.True(t, g.IsConnected(1, 0))
	assert.Equal(t, May, g.FlowBetween(1, 0), "the only path goes through a call")
	assert.Equal(t, Definite, g.FlowBetween(2, 0))
	assert.Equal(t, Arg2Ret{1: May}, g.ParamReturnDeps())
	assert.Equal(t, []ir.Local{1}, g.ParamReturnDeps().Flowing())
}

func TestDefiniteFlowAvoidsCalls(t *testing.T) {
	// _2 = f(_1); _3 = _1; _0 = _2 + _3
	b := ir.NewBodyBuilder("both", "both", 1)
	l2, l3 := b.NewLocal(), b.NewLocal()
	b.Call(ir.FuncConstant("f"), []ir.Operand{ir.Copy(local(1))}, local(l2))
	b.Assign(local(l3), copyOf(1))
	b.Assign(local(ir.ReturnLocal), ir.BinaryOp{Op: "Add", Left: ir.Copy(local(l2)), Right: ir.Copy(local(l3))})
	g := BuildGraph(b.Finish())
	assert.Equal(t, Definite, g.FlowBetween(1, 0))
	assert.Equal(t, Never, g.FlowBetween(0, 1))
}

func TestEquivalenceOfArithmeticTarget(t *testing.T) {
	g := BuildGraph(arithBody())
	assert.Equal(t, LocalSet{3: true}, g.CollectEquivalentLocals(3, true))
	assert.Equal(t, LocalSet{1: true}, g.CollectEquivalentLocals(1, true))
}

func TestEquivalenceFollowsCopiesAndFields(t *testing.T) {
	g := BuildGraph(aliasBody())
	// _1 -copy-> _2 -move-> _3 -deref-> _4 -ref-> _5, _4 -copy-> _0
	assert.Equal(t, []ir.Local{1, 2, 3}, g.CollectEquivalentLocals(1, true).Sorted())
	assert.Equal(t, []ir.Local{1, 2}, g.CollectEquivalentLocals(1, false).Sorted())
	assert.Equal(t, []ir.Local{0, 4}, g.CollectEquivalentLocals(4, true).Sorted())
	assert.Equal(t, []ir.Local{5}, g.CollectEquivalentLocals(5, true).Sorted())

	// field projections preserve equivalence
	b := ir.NewBodyBuilder("fields", "fields", 1)
	l2, l3 := b.NewLocal(), b.NewLocal()
	b.Assign(local(l2), ir.Use{Operand: ir.Copy(local(1).Field(0))})
	b.Assign(local(l3).Field(1), copyOf(l2))
	fg := BuildGraph(b.Finish())
	assert.Equal(t, []ir.Local{1, 2}, fg.CollectEquivalentLocals(1, true).Sorted(),
		"a destination written through a projection does not hold the whole value")
}

func TestEquivalenceIncludesSelfOnCycle(t *testing.T) {
	g := BuildGraph(loopBody())
	assert.Equal(t, []ir.Local{0, 2, 3}, g.CollectEquivalentLocals(2, true).Sorted())
}

func TestReflexiveReachability(t *testing.T) {
	for _, body := range allTestBodies() {
		g := BuildGraph(body)
		for _, n := range g.Nodes() {
			assert.True(t, g.IsConnected(n.Local, n.Local), "%s: %s", body.ID, n.Local)
			assert.Equal(t, Definite, g.FlowBetween(n.Local, n.Local))
		}
	}
}

func TestEquivalenceImpliesConnectivity(t *testing.T) {
	for _, body := range allTestBodies() {
		g := BuildGraph(body)
		for _, n := range g.Nodes() {
			for _, transitive := range []bool{true, false} {
				for l := range g.CollectEquivalentLocals(n.Local, transitive) {
					assert.True(t, g.IsConnected(n.Local, l), "%s: %s ~ %s", body.ID, n.Local, l)
				}
			}
		}
	}
}

func TestArgToReturnMatchesConnectivity(t *testing.T) {
	for _, body := range allTestBodies() {
		g := BuildGraph(body)
		deps := g.ParamReturnDeps()
		require.Len(t, deps, body.ArgCount)
		for p, flow := range deps {
			assert.Equal(t, g.IsConnected(p, ir.ReturnLocal), flow.Flows(), "%s: %s", body.ID, p)
		}
	}
}

func TestFlowString(t *testing.T) {
	assert.Equal(t, "definite", Definite.String())
	assert.Equal(t, "may", May.String())
	assert.Equal(t, "never", Never.String())
	assert.False(t, Never.Flows())
}
