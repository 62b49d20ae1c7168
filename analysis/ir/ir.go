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

// Package ir defines the function-level intermediate representation consumed by the dataflow analysis.
//
// A [Body] is an ordered list of basic blocks. Each block holds statements followed by at most one terminator.
// Storage slots of a body are [Local] indices: local 0 is the return place, locals 1..ArgCount are the formal
// parameters, and the remaining locals are temporaries introduced by the producer.
//
// Producers implement [Unit] to expose the function-like items of a compilation unit and their bodies. The
// ir/lower package produces bodies from Go SSA; [MemUnit] is a simple in-memory unit.
package ir

import (
	"fmt"
	"strconv"
)

// Local is a storage slot inside one function body.
type Local uint32

// ReturnLocal is the local holding the return value of a function.
const ReturnLocal Local = 0

func (l Local) String() string {
	return "_" + strconv.FormatUint(uint64(l), 10)
}

// FuncID identifies a function-like item (function, method or closure) in a unit.
type FuncID string

// Span is a source range.
type Span struct {
	File    string
	Line    int
	Column  int
	EndLine int
	EndCol  int
}

// IsValid returns true when the span points to an actual source location
func (s Span) IsValid() bool {
	return s.Line > 0
}

func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}
	if s.EndLine > 0 {
		return fmt.Sprintf("%s:%d:%d-%d:%d", s.File, s.Line, s.Column, s.EndLine, s.EndCol)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}
