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

package ir

import "sync"

// Unit is a compilation unit as seen by the dataflow analysis.
//
// Items returns the identifiers of the top-level function-like items of the unit. Closures do not need to be
// listed: they are discovered while analyzing the items that reference them.
//
// Body returns the body of a function-like item, and false when the item has no concrete body (declarations
// without a default body, external or opaque functions). Implementations must be safe for concurrent use.
type Unit interface {
	Items() []FuncID
	Body(id FuncID) (*Body, bool)
}

// MemUnit is a Unit backed by a map of bodies.
type MemUnit struct {
	mu     sync.RWMutex
	items  []FuncID
	bodies map[FuncID]*Body
}

// NewMemUnit returns a unit whose items are the bodies provided, in that order.
func NewMemUnit(bodies ...*Body) *MemUnit {
	u := &MemUnit{bodies: make(map[FuncID]*Body, len(bodies))}
	for _, b := range bodies {
		u.AddItem(b)
	}
	return u
}

// AddItem adds a top-level item with a body
func (u *MemUnit) AddItem(b *Body) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.bodies[b.ID]; !ok {
		u.items = append(u.items, b.ID)
	}
	u.bodies[b.ID] = b
}

// AddBody adds a body that is not a top-level item, e.g. a closure body.
func (u *MemUnit) AddBody(b *Body) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bodies[b.ID] = b
}

// Declare adds a top-level item that has no body.
func (u *MemUnit) Declare(id FuncID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.items = append(u.items, id)
}

// Items implements Unit
func (u *MemUnit) Items() []FuncID {
	u.mu.RLock()
	defer u.mu.RUnlock()
	items := make([]FuncID, len(u.items))
	copy(items, u.items)
	return items
}

// Body implements Unit
func (u *MemUnit) Body(id FuncID) (*Body, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	b, ok := u.bodies[id]
	return b, ok
}
