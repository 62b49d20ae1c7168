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

// Package lower produces the IR consumed by the dataflow analysis from Go SSA (golang.org/x/tools/go/ssa).
//
// [Function] lowers a single function. [Unit] exposes the functions of a set of SSA packages as an [ir.Unit]: its
// items are the named functions and methods of the packages, and the bodies of closures are available through
// [Unit.Body] so that the analysis can discover them while scanning their enclosing functions. Bodies are lowered
// on demand and kept in a bounded cache.
package lower

import (
	"fmt"

	"github.com/awslabs/ar-go-dfg/analysis/config"
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/awslabs/ar-go-dfg/internal/funcutil"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Unit is an ir.Unit backed by an SSA program. It is safe for concurrent use.
type Unit struct {
	logger *config.LogGroup

	items []ir.FuncID

	// funcs contains every function of the packages, closures included
	funcs map[ir.FuncID]*ssa.Function

	bodies *lru.Cache[ir.FuncID, *ir.Body]

	// lowering de-duplicates concurrent lowering of the same function
	lowering singleflight.Group
}

var _ ir.Unit = (*Unit)(nil)

// NewUnit returns the unit made of the functions of the packages pkgs of prog that match the package filter of cfg.
// Nil packages are ignored. Synthetic functions (wrappers, package initializers) are not items.
func NewUnit(prog *ssa.Program, pkgs []*ssa.Package, cfg *config.Config, logger *config.LogGroup) (*Unit, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	cache, err := lru.New[ir.FuncID, *ir.Body](cfg.BodyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create body cache: %w", err)
	}
	u := &Unit{
		logger: logger,
		funcs:  map[ir.FuncID]*ssa.Function{},
		bodies: cache,
	}

	included := map[*ssa.Package]bool{}
	for _, pkg := range pkgs {
		if pkg != nil && cfg.MatchPkgFilter(pkg.Pkg.Path()) {
			included[pkg] = true
		}
	}
	items := map[ir.FuncID]bool{}
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Pkg == nil || !included[fn.Pkg] {
			continue
		}
		u.register(fn)
		if fn.Parent() == nil && fn.Synthetic == "" {
			items[FuncID(fn)] = true
		}
	}
	u.items = funcutil.SetToOrderedSlice(items)
	logger.Debugf("Lowering unit: %d items, %d functions with closures, in %d packages",
		len(u.items), len(u.funcs), len(included))
	return u, nil
}

// register adds fn and its anonymous functions, recursively, to the functions of the unit
func (u *Unit) register(fn *ssa.Function) {
	todo := []*ssa.Function{fn}
	for len(todo) > 0 {
		f := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		id := FuncID(f)
		if _, ok := u.funcs[id]; ok {
			continue
		}
		u.funcs[id] = f
		todo = append(todo, f.AnonFuncs...)
	}
}

// Items implements ir.Unit. Items are sorted.
func (u *Unit) Items() []ir.FuncID {
	return append([]ir.FuncID(nil), u.items...)
}

// Function returns the SSA function of id
func (u *Unit) Function(id ir.FuncID) (*ssa.Function, bool) {
	fn, ok := u.funcs[id]
	return fn, ok
}

// Body implements ir.Unit. It returns false for unknown functions and functions without SSA body.
func (u *Unit) Body(id ir.FuncID) (*ir.Body, bool) {
	fn, ok := u.funcs[id]
	if !ok || len(fn.Blocks) == 0 {
		return nil, false
	}
	if body, ok := u.bodies.Get(id); ok {
		return body, true
	}
	res, _, _ := u.lowering.Do(string(id), func() (any, error) {
		// another caller may have lowered the body in the meantime
		if body, ok := u.bodies.Get(id); ok {
			return body, nil
		}
		body := Function(fn)
		u.bodies.Add(id, body)
		u.logger.Tracef("Lowered %s: %d locals, %d blocks", id, body.LocalCount, len(body.Blocks))
		return body, nil
	})
	body, ok := res.(*ir.Body)
	return body, ok && body != nil
}

// CachedBodies returns the number of lowered bodies currently cached
func (u *Unit) CachedBodies() int {
	return u.bodies.Len()
}
