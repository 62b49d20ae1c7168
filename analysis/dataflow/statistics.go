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

// Stats holds general statistics about a set of dataflow graphs
type Stats struct {
	NumberOfFunctions uint           `json:"functions"`
	NumberOfNodes     uint           `json:"nodes"`
	NumberOfEdges     uint           `json:"edges"`
	NumberOfClosures  uint           `json:"closures"`
	NumberOfCallSites uint           `json:"call_sites"`
	NumberOfCycles    uint           `json:"cycles"`
	EdgesByKind       map[string]int `json:"edges_by_kind"`
	// ArgsToReturn counts the parameters of each flow category
	ArgsToReturn map[string]int `json:"args_to_return"`
}

// Statistics returns the statistics of the graphs in r
func Statistics(r *Results) Stats {
	s := Stats{EdgesByKind: map[string]int{}, ArgsToReturn: map[string]int{}}
	for _, g := range r.graphs {
		s.NumberOfFunctions++
		s.NumberOfNodes += uint(len(g.nodes))
		s.NumberOfEdges += uint(len(g.edges))
		s.NumberOfClosures += uint(len(g.closures))
		s.NumberOfCallSites += uint(len(g.callSites))
		s.NumberOfCycles += uint(len(g.Cycles()))
		for _, e := range g.edges {
			s.EdgesByKind[e.Kind.String()]++
		}
		for _, flow := range g.ParamReturnDeps() {
			s.ArgsToReturn[flow.String()]++
		}
	}
	return s
}
