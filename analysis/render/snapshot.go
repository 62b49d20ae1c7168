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

package render

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"github.com/awslabs/ar-go-dfg/internal/funcutil"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the version of the snapshot format written by WriteSnapshot
const SnapshotVersion = 1

// Snapshot is the serialized form of the dataflow graphs of a unit, for tools that consume the results of the
// analysis without running it.
type Snapshot struct {
	Version   int             `msgpack:"v"`
	Functions []FunctionGraph `msgpack:"fns"`
}

// FunctionGraph is the serialized dataflow graph of one function
type FunctionGraph struct {
	ID          string            `msgpack:"id"`
	Name        string            `msgpack:"name"`
	Span        ir.Span           `msgpack:"span"`
	ArgCount    int               `msgpack:"args"`
	LocalCount  int               `msgpack:"locals"`
	Edges       []EdgeRecord      `msgpack:"edges"`
	Closures    []string          `msgpack:"closures"`
	CallSites   []CallSiteRecord  `msgpack:"calls"`
	ArgToReturn map[uint32]string `msgpack:"a2r"`
}

// EdgeRecord is one serialized edge
type EdgeRecord struct {
	Src       uint32 `msgpack:"s"`
	Dst       uint32 `msgpack:"d"`
	Kind      string `msgpack:"k"`
	Seq       int    `msgpack:"q"`
	Projected bool   `msgpack:"p,omitempty"`
}

// CallSiteRecord is one serialized call site
type CallSiteRecord struct {
	Callee  string   `msgpack:"callee"`
	Func    string   `msgpack:"fn,omitempty"`
	Closure bool     `msgpack:"closure,omitempty"`
	Args    []uint32 `msgpack:"args"`
	Dest    uint32   `msgpack:"dest"`
	Seq     int      `msgpack:"q"`
	Span    ir.Span  `msgpack:"span"`
}

// Function returns the graph of the function id in the snapshot
func (s *Snapshot) Function(id string) (FunctionGraph, bool) {
	for _, f := range s.Functions {
		if f.ID == id {
			return f, true
		}
	}
	return FunctionGraph{}, false
}

// NewSnapshot returns the snapshot of results. Functions are ordered by id.
func NewSnapshot(results *dataflow.Results) *Snapshot {
	s := &Snapshot{Version: SnapshotVersion}
	for _, id := range results.FuncIDs() {
		g, _ := results.GraphOf(id)
		s.Functions = append(s.Functions, newFunctionGraph(g))
	}
	return s
}

func newFunctionGraph(g *dataflow.Graph) FunctionGraph {
	f := FunctionGraph{
		ID:          string(g.ID),
		Name:        g.Name,
		Span:        g.Span,
		ArgCount:    g.ArgCount,
		LocalCount:  g.LocalCount,
		ArgToReturn: map[uint32]string{},
	}
	for _, e := range g.Edges() {
		f.Edges = append(f.Edges, EdgeRecord{
			Src:       uint32(e.Src),
			Dst:       uint32(e.Dst),
			Kind:      e.Kind.String(),
			Seq:       e.Seq,
			Projected: e.Projected,
		})
	}
	f.Closures = funcutil.Map(g.Closures(), func(c ir.FuncID) string { return string(c) })
	for _, site := range g.CallSites() {
		rec := CallSiteRecord{
			Callee:  site.Callee,
			Func:    string(site.Func),
			Closure: site.Closure,
			Dest:    uint32(site.Dest),
			Seq:     site.Seq,
			Span:    site.Span,
			Args:    funcutil.Map(site.Args, func(l ir.Local) uint32 { return uint32(l) }),
		}
		f.CallSites = append(f.CallSites, rec)
	}
	for p, flow := range g.ParamReturnDeps() {
		f.ArgToReturn[uint32(p)] = flow.String()
	}
	return f
}

// WriteSnapshot encodes the snapshot of results into w
func WriteSnapshot(w io.Writer, results *dataflow.Results) error {
	encoder := msgpack.NewEncoder(w)
	if err := encoder.Encode(NewSnapshot(results)); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	decoder := msgpack.NewDecoder(r)
	var s Snapshot
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}

// SnapshotToFile writes the snapshot of results into filename
func SnapshotToFile(results *dataflow.Results, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := WriteSnapshot(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
