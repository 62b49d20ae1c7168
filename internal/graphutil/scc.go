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

package graphutil

// StronglyConnectedComponents is an implementation of Tarjan's strongly connected component (SCC) algorithm
// for generic nodes T.
// Successors returns a slice containing the targets of directed edges out from the given node.
// sccs is a slice of slices containing the nodes in each SCC. The order within the SCC is arbitrary.
// The order of SCCs is toposorted so that successors appear first; i.e. if the graph is a tree then
// in order from leaves towards the root.
//
// The depth-first search uses an explicit stack of frames, so long chains of nodes (e.g. closures nested in
// closures) do not grow the goroutine stack.
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) (sccs [][]T) {
	type frame struct {
		node T
		succ []T
		next int
	}
	var (
		stack     []T
		onStack   = map[T]bool{}
		index     = map[T]int{}
		lowlink   = map[T]int{}
		nextIndex = 0
		frames    []frame
	)
	sccs = make([][]T, 0)

	push := func(v T) {
		index[v] = nextIndex
		lowlink[v] = nextIndex
		nextIndex++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, frame{node: v, succ: successors(v)})
	}

	for _, root := range nodes {
		if _, ok := index[root]; ok {
			continue
		}
		push(root)
		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			v := top.node
			if top.next < len(top.succ) {
				w := top.succ[top.next]
				top.next++
				if _, visited := index[w]; !visited {
					push(w)
				} else if onStack[w] && index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
				continue
			}
			// all successors of v have been visited
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
			if lowlink[v] == index[v] {
				var scc []T
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}
	return sccs
}

// NonTrivialComponents returns the components of sccs that contain a cycle: the components with more than one node,
// and the single nodes that are their own successor.
func NonTrivialComponents[T comparable](sccs [][]T, successors func(T) []T) [][]T {
	var res [][]T
	for _, scc := range sccs {
		if len(scc) > 1 || isSelfLoop(scc[0], successors) {
			res = append(res, scc)
		}
	}
	return res
}

func isSelfLoop[T comparable](v T, successors func(T) []T) bool {
	for _, w := range successors(v) {
		if w == v {
			return true
		}
	}
	return false
}
