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
	"errors"
	"sync"
	"time"

	"github.com/awslabs/ar-go-dfg/analysis/config"
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/awslabs/ar-go-dfg/internal/funcutil"
	"github.com/awslabs/ar-go-dfg/internal/graphutil"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// AnalysisName is the name of the dataflow analysis
const AnalysisName = "DataFlow Analysis"

// Exporter is called by Run after all graphs have been built when the config enables debug mode
type Exporter func(results *Results) error

// Analyzer builds the dataflow graphs of the functions of a unit and keeps them in a cache. Each function is built
// at most once, even when BuildAll runs with several workers.
type Analyzer struct {
	unit   ir.Unit
	logger *config.LogGroup
	config *config.Config

	exporter Exporter

	// mu guards the fields below
	mu      sync.Mutex
	graphs  map[ir.FuncID]*Graph
	claimed map[ir.FuncID]bool
	skipped map[ir.FuncID]bool
	builds  int
}

// NewAnalyzer returns an analyzer for the functions of unit. The analyzer does not build anything until Build,
// BuildAll or Run is called.
func NewAnalyzer(unit ir.Unit, logger *config.LogGroup, cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	return &Analyzer{
		unit:    unit,
		logger:  logger,
		config:  cfg,
		graphs:  map[ir.FuncID]*Graph{},
		claimed: map[ir.FuncID]bool{},
		skipped: map[ir.FuncID]bool{},
	}
}

// Name returns the name of the analysis
func (a *Analyzer) Name() string {
	return AnalysisName
}

// SetExporter sets the function Run calls to export the graphs in debug mode
func (a *Analyzer) SetExporter(e Exporter) {
	a.exporter = e
}

// Run builds the graphs of all the items of the unit, and exports them when the config enables debug mode.
func (a *Analyzer) Run() error {
	a.BuildAll()
	if !a.config.Debug || a.exporter == nil {
		return nil
	}
	return a.exporter(a.Results())
}

// Reset empties the cache of the analyzer. Graphs handed out in previous Results are not affected.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.graphs = map[ir.FuncID]*Graph{}
	a.claimed = map[ir.FuncID]bool{}
	a.skipped = map[ir.FuncID]bool{}
	a.builds = 0
}

// BuildAll builds the graph of every item of the unit, and of every closure they reference. Items are processed
// sequentially when the config has at most one worker, and by a bounded pool of workers otherwise.
// A contract violation raised while building a graph is raised again once all the workers have stopped.
func (a *Analyzer) BuildAll() {
	items := a.unit.Items()
	a.logger.Infof("Building dataflow graphs of %d items...", len(items))
	start := time.Now()
	if a.config.Workers <= 1 {
		for _, id := range items {
			a.Build(id)
		}
	} else {
		a.buildParallel(items)
	}
	a.mu.Lock()
	built, skipped := len(a.graphs), len(a.skipped)
	a.mu.Unlock()
	a.logger.Infof("Dataflow graphs built for %d functions, %d skipped (%.2f s).",
		built, skipped, time.Since(start).Seconds())
}

func (a *Analyzer) buildParallel(items []ir.FuncID) {
	group := new(errgroup.Group)
	group.SetLimit(a.config.Workers)
	for _, id := range items {
		id := id
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = panicError{value: r}
				}
			}()
			a.Build(id)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		var p panicError
		if errors.As(err, &p) {
			panic(p.value)
		}
		panic(err)
	}
}

// Build builds the graph of id and the graphs of the closures it references, transitively. Functions whose graph
// has already been built, or is being built by another worker, are not built again.
// The closures are processed depth-first with an explicit worklist, so deeply nested closures do not grow the
// goroutine stack.
func (a *Analyzer) Build(id ir.FuncID) {
	worklist := []ir.FuncID{id}
	for len(worklist) > 0 {
		last := len(worklist) - 1
		cur := worklist[last]
		worklist = worklist[:last]
		closures := a.buildOne(cur)
		for i := len(closures) - 1; i >= 0; i-- {
			worklist = append(worklist, closures[i])
		}
	}
}

// claim returns true when the caller is the first to claim id, and must build its graph
func (a *Analyzer) claim(id ir.FuncID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.claimed[id] {
		return false
	}
	a.claimed[id] = true
	return true
}

// buildOne builds the graph of id if it has not been claimed yet and returns the closures it references
func (a *Analyzer) buildOne(id ir.FuncID) []ir.FuncID {
	if !a.claim(id) {
		return nil
	}
	body, ok := a.unit.Body(id)
	if !ok || body == nil {
		a.logger.Debugf("No body for %s, skipping.", id)
		a.mu.Lock()
		a.skipped[id] = true
		a.mu.Unlock()
		return nil
	}
	if body.ID != id {
		panic(violation(id, "unit returned the body of %s", body.ID))
	}
	g := BuildGraph(body)
	a.logger.Tracef("Built graph of %s: %d nodes, %d edges, %d closures", id, g.LocalCount, g.EdgeCount(),
		len(g.closures))

	a.mu.Lock()
	a.graphs[id] = g
	a.builds++
	a.mu.Unlock()
	return g.Closures()
}

// Graph returns the graph of id if it has been built
func (a *Analyzer) Graph(id ir.FuncID) (*Graph, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.graphs[id]
	return g, ok
}

// Skipped returns the identifiers of the functions that were skipped because the unit has no body for them, sorted
func (a *Analyzer) Skipped() []ir.FuncID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return funcutil.SetToOrderedSlice(a.skipped)
}

// Builds returns the number of graphs built since the creation or the last reset of the analyzer
func (a *Analyzer) Builds() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.builds
}

// ClosureGroups returns the groups of functions that reference each other through closures in a cycle, for example
// a recursive closure. Each group is sorted, groups are sorted by their first element.
func (a *Analyzer) ClosureGroups() [][]ir.FuncID {
	a.mu.Lock()
	closures := make(map[ir.FuncID][]ir.FuncID, len(a.graphs))
	ids := make([]ir.FuncID, 0, len(a.graphs))
	for id, g := range a.graphs {
		ids = append(ids, id)
		closures[id] = g.closures
	}
	a.mu.Unlock()
	slices.Sort(ids)

	var groups [][]ir.FuncID
	successors := func(id ir.FuncID) []ir.FuncID { return closures[id] }
	sccs := graphutil.StronglyConnectedComponents(ids, successors)
	for _, scc := range graphutil.NonTrivialComponents(sccs, successors) {
		slices.Sort(scc)
		groups = append(groups, scc)
	}
	slices.SortFunc(groups, func(x, y []ir.FuncID) bool { return x[0] < y[0] })
	return groups
}

// Results returns an immutable snapshot of the graphs built so far
func (a *Analyzer) Results() *Results {
	a.mu.Lock()
	defer a.mu.Unlock()
	graphs := make(map[ir.FuncID]*Graph, len(a.graphs))
	for id, g := range a.graphs {
		graphs[id] = g
	}
	return &Results{graphs: graphs}
}
