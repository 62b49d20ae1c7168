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

package lower

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sync"
	"testing"

	"github.com/awslabs/ar-go-dfg/analysis/config"
	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

const testSource = `package p

func id(x int) int { return x }

func five(x int) int { return 5 }

func inc(y int) int { return y + 1 }

func caller(x int) int { return inc(x) }

func outer(x int) int {
	f := func() int { return x }
	return f()
}

func deref(p *int) int { return *p }

func store(p *int, v int) { *p = v }

type T struct{ a, b int }

func (t *T) getB() int { return t.b }

func pick(c bool, x, y int) int {
	z := y
	if c {
		z = x
	}
	return z
}

func pair(x, y int) (int, int) { return y, x }

var counter int

func bump(n int) { counter += n }

func extern(x int) int

func mk(x int) *T { return &T{a: x} }

func setget(x int) int {
	var t T
	t.b = x
	return t.b
}

func arr(x int) int {
	var a [2]int
	a[1] = x
	return a[1]
}

func elem(x int, i int) int {
	s := make([]int, 2)
	s[i] = x
	return s[i]
}

type U struct{ t T }

func nested(x int) *U {
	u := &U{}
	u.t.b = x
	return u
}

func setField(t *T, x int) { t.a = x }
`

const pkgPath = "example.com/p"

func fid(name string) ir.FuncID {
	return ir.FuncID(pkgPath + "." + name)
}

func buildTestPackage(t *testing.T) *ssa.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", testSource, parser.ParseComments)
	require.NoError(t, err)
	pkg := types.NewPackage(pkgPath, "p")
	ssaPkg, _, err := ssautil.BuildPackage(&types.Config{Importer: importer.Default()}, fset, pkg,
		[]*ast.File{f}, ssa.SanityCheckFunctions)
	require.NoError(t, err)
	return ssaPkg
}

func newTestUnit(t *testing.T, cfg *config.Config) *Unit {
	t.Helper()
	pkg := buildTestPackage(t)
	if cfg == nil {
		cfg = config.NewDefault()
	}
	cfg.LogLevel = int(config.ErrLevel)
	unit, err := NewUnit(pkg.Prog, []*ssa.Package{pkg, nil}, cfg, config.NewLogGroup(cfg))
	require.NoError(t, err)
	return unit
}

func graphOf(t *testing.T, unit *Unit, id ir.FuncID) *dataflow.Graph {
	t.Helper()
	body, ok := unit.Body(id)
	require.True(t, ok, "no body for %s", id)
	return dataflow.BuildGraph(body)
}

func TestItems(t *testing.T) {
	unit := newTestUnit(t, nil)
	items := unit.Items()
	for _, name := range []string{"id", "five", "caller", "outer", "deref", "pick", "extern"} {
		assert.Contains(t, items, fid(name))
	}
	assert.Contains(t, items, ir.FuncID("(*example.com/p.T).getB"))
	assert.NotContains(t, items, fid("outer$1"), "closures are not items")
	assert.NotContains(t, items, fid("init"), "synthetic functions are not items")
	assert.IsIncreasing(t, items)

	_, ok := unit.Function(fid("outer$1"))
	assert.True(t, ok, "closures are known to the unit")
}

func TestPackageFilter(t *testing.T) {
	cfg := config.NewDefault()
	cfg.PkgFilter = "other.org/"
	unit := newTestUnit(t, cfg)
	assert.Empty(t, unit.Items())
	_, ok := unit.Body(fid("id"))
	assert.False(t, ok)
}

func TestLowerIdentity(t *testing.T) {
	unit := newTestUnit(t, nil)
	body, ok := unit.Body(fid("id"))
	require.True(t, ok)
	assert.Equal(t, 1, body.ArgCount)
	assert.Equal(t, 2, body.LocalCount)
	assert.Equal(t, "id", body.Name)
	assert.Equal(t, 3, body.Span.Line)
	assert.Equal(t, "fn example.com/p.id(_1) -> _0 { // 2 locals\n  bb0: {\n    _0 = copy _1;\n    return;\n  }\n}\n",
		body.String())

	g := dataflow.BuildGraph(body)
	assert.Equal(t, dataflow.Arg2Ret{1: dataflow.Definite}, g.ParamReturnDeps())
}

func TestLowerConstantReturn(t *testing.T) {
	g := graphOf(t, newTestUnit(t, nil), fid("five"))
	assert.Zero(t, g.EdgeCount())
	assert.Equal(t, dataflow.Arg2Ret{1: dataflow.Never}, g.ParamReturnDeps())
}

func TestLowerStaticCall(t *testing.T) {
	g := graphOf(t, newTestUnit(t, nil), fid("caller"))
	sites := g.CallSites()
	require.Len(t, sites, 1)
	assert.Equal(t, fid("inc"), sites[0].Func)
	assert.Equal(t, []ir.Local{1}, sites[0].Args)
	assert.Equal(t, 9, sites[0].Span.Line)
	assert.Equal(t, dataflow.May, g.FlowBetween(1, ir.ReturnLocal))

	inc := graphOf(t, newTestUnit(t, nil), fid("inc"))
	assert.Equal(t, dataflow.Definite, inc.FlowBetween(1, ir.ReturnLocal))
}

func TestLowerClosureCapture(t *testing.T) {
	unit := newTestUnit(t, nil)
	g := graphOf(t, unit, fid("outer"))
	assert.Equal(t, []ir.FuncID{fid("outer$1")}, g.Closures())
	assert.True(t, g.IsConnected(1, ir.ReturnLocal))

	// the closure reads the captured variable through its free variable, local 1
	cg := graphOf(t, unit, fid("outer$1"))
	assert.Equal(t, 0, cg.ArgCount)
	assert.True(t, cg.IsConnected(1, ir.ReturnLocal))

	a := dataflow.NewAnalyzer(unit, nil, quietConfig())
	a.BuildAll()
	_, ok := a.Results().GraphOf(fid("outer$1"))
	assert.True(t, ok)
}

func TestLowerPointers(t *testing.T) {
	unit := newTestUnit(t, nil)

	deref := graphOf(t, unit, fid("deref"))
	require.NotEmpty(t, deref.OutEdges(1))
	assert.Equal(t, dataflow.Deref, deref.OutEdges(1)[0].Kind)
	assert.Equal(t, dataflow.Definite, deref.FlowBetween(1, ir.ReturnLocal))

	store := graphOf(t, unit, fid("store"))
	edges := store.InEdges(1)
	require.Len(t, edges, 1)
	assert.Equal(t, ir.Local(2), edges[0].Src)
	assert.True(t, edges[0].Projected)
	assert.Equal(t, dataflow.Arg2Ret{1: dataflow.Never, 2: dataflow.Never}, store.ParamReturnDeps())

	getB := graphOf(t, unit, "(*example.com/p.T).getB")
	require.NotEmpty(t, getB.OutEdges(1))
	assert.Equal(t, dataflow.Ref, getB.OutEdges(1)[0].Kind)
	assert.True(t, getB.IsConnected(1, ir.ReturnLocal))
}

func TestLowerWritesThroughAddresses(t *testing.T) {
	unit := newTestUnit(t, nil)
	for _, name := range []string{"mk", "setget", "arr", "elem", "nested"} {
		t.Run(name, func(t *testing.T) {
			g := graphOf(t, unit, fid(name))
			assert.True(t, g.IsConnected(1, ir.ReturnLocal), "param 1 does not flow to return:\n%s", g)
			assert.Equal(t, dataflow.Definite, g.FlowBetween(1, ir.ReturnLocal))
		})
	}

	// the stored value is an edge into the pointer parameter, written through a projection
	setField := graphOf(t, unit, fid("setField"))
	edges := setField.InEdges(1)
	require.Len(t, edges, 1)
	assert.Equal(t, ir.Local(2), edges[0].Src)
	assert.True(t, edges[0].Projected)
}

func TestLowerControlFlow(t *testing.T) {
	unit := newTestUnit(t, nil)
	pick := graphOf(t, unit, fid("pick"))
	assert.Equal(t, dataflow.Arg2Ret{1: dataflow.Never, 2: dataflow.Definite, 3: dataflow.Definite},
		pick.ParamReturnDeps())

	pair := graphOf(t, unit, fid("pair"))
	assert.Equal(t, []ir.Local{1, 2}, pair.ParamReturnDeps().Flowing())
}

func TestLowerGlobal(t *testing.T) {
	g := graphOf(t, newTestUnit(t, nil), fid("bump"))
	assert.Equal(t, dataflow.Arg2Ret{1: dataflow.Never}, g.ParamReturnDeps())
	assert.NotZero(t, g.EdgeCount())
	assert.Len(t, g.Nodes(), g.LocalCount)
}

func TestBodyWithoutBlocks(t *testing.T) {
	unit := newTestUnit(t, nil)
	_, ok := unit.Body(fid("extern"))
	assert.False(t, ok)
	_, ok = unit.Body("unknown.f")
	assert.False(t, ok)

	a := dataflow.NewAnalyzer(unit, nil, quietConfig())
	a.BuildAll()
	assert.Equal(t, []ir.FuncID{fid("extern")}, a.Skipped())
}

func TestBodiesAreCached(t *testing.T) {
	unit := newTestUnit(t, nil)
	var wg sync.WaitGroup
	bodies := make([]*ir.Body, 16)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bodies[i], _ = unit.Body(fid("pick"))
		}(i)
	}
	wg.Wait()
	for _, b := range bodies {
		assert.Same(t, bodies[0], b)
	}
	assert.Equal(t, 1, unit.CachedBodies())
}

func TestParallelAnalysisOfUnit(t *testing.T) {
	unit := newTestUnit(t, nil)
	cfg := quietConfig()
	cfg.Workers = 4
	a := dataflow.NewAnalyzer(unit, nil, cfg)
	a.BuildAll()
	results := a.Results()
	assert.Equal(t, len(unit.Items()), results.Len(), "every item but extern, plus the closure")
	assert.True(t, results.HasFlowBetween(fid("id"), 1, 0))
	assert.False(t, results.HasFlowBetween(fid("five"), 1, 0))
}

func quietConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.ErrLevel)
	return cfg
}
