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

import (
	"fmt"
	"strings"
)

// Statement is a non-terminating instruction of a basic block. The set of implementations is closed.
type Statement interface {
	fmt.Stringer
	isStatement()
}

// Assign writes the value of an rvalue into a place
type Assign struct {
	Dest  Place
	Value Rvalue
	Span  Span
}

// Effect is a statement without a data dependency (storage markers, debug information, deferred calls
// bookkeeping, ...)
type Effect struct {
	Kind string
}

func (Assign) isStatement() {}
func (Effect) isStatement() {}

func (s Assign) String() string { return fmt.Sprintf("%s = %s", s.Dest, s.Value) }
func (s Effect) String() string { return s.Kind }

// Terminator ends a basic block. The set of implementations is closed.
type Terminator interface {
	fmt.Stringer
	isTerminator()
}

// BlockID indexes a basic block in its body
type BlockID int

// Call calls Func with Args and writes the result into Dest. Target is the block control continues at; it is
// negative when the call does not return.
type Call struct {
	Func   Operand
	Args   []Operand
	Dest   Place
	Target BlockID
	Span   Span
}

// Return returns the content of ReturnLocal to the caller
type Return struct{}

// Goto jumps to Target
type Goto struct {
	Target BlockID
}

// SwitchInt branches on the value of Discr
type SwitchInt struct {
	Discr   Operand
	Targets []BlockID
}

// Drop runs the destructor of a place
type Drop struct {
	Place  Place
	Target BlockID
}

// Panic aborts the current function with a value
type Panic struct {
	Value Operand
}

// Unreachable marks code that cannot be executed
type Unreachable struct{}

func (Call) isTerminator()        {}
func (Return) isTerminator()      {}
func (Goto) isTerminator()        {}
func (SwitchInt) isTerminator()   {}
func (Drop) isTerminator()        {}
func (Panic) isTerminator()       {}
func (Unreachable) isTerminator() {}

func (t Call) String() string {
	s := fmt.Sprintf("%s = call %s(%s)", t.Dest, t.Func, operandList(t.Args))
	if t.Target >= 0 {
		s += fmt.Sprintf(" -> bb%d", t.Target)
	}
	return s
}

func (Return) String() string      { return "return" }
func (t Goto) String() string      { return fmt.Sprintf("goto bb%d", t.Target) }
func (t Drop) String() string      { return fmt.Sprintf("drop(%s) -> bb%d", t.Place, t.Target) }
func (t Panic) String() string     { return fmt.Sprintf("panic(%s)", t.Value) }
func (Unreachable) String() string { return "unreachable" }

func (t SwitchInt) String() string {
	targets := make([]string, len(t.Targets))
	for i, b := range t.Targets {
		targets[i] = fmt.Sprintf("bb%d", b)
	}
	return fmt.Sprintf("switchInt(%s) -> [%s]", t.Discr, strings.Join(targets, ", "))
}

// BasicBlock is a sequence of statements followed by at most one terminator
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// Body is the IR of one function-like item
type Body struct {
	ID   FuncID
	Name string
	Span Span

	// ArgCount is the number of formal parameters. Parameters are locals 1..ArgCount.
	ArgCount int

	// LocalCount is the total number of locals, including the return place and the parameters
	LocalCount int

	Blocks []BasicBlock
}

// NumStatements returns the number of statements in the body, terminators excluded
func (b *Body) NumStatements() int {
	n := 0
	for _, block := range b.Blocks {
		n += len(block.Statements)
	}
	return n
}

// String returns a textual dump of the body, one block per paragraph.
func (b *Body) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn %s(", b.ID)
	for i := 1; i <= b.ArgCount; i++ {
		if i > 1 {
			sb.WriteString(", ")
		}
		sb.WriteString(Local(i).String())
	}
	fmt.Fprintf(&sb, ") -> %s { // %d locals\n", ReturnLocal, b.LocalCount)
	for i, block := range b.Blocks {
		fmt.Fprintf(&sb, "  bb%d: {\n", i)
		for _, stmt := range block.Statements {
			fmt.Fprintf(&sb, "    %s;\n", stmt)
		}
		if block.Terminator != nil {
			fmt.Fprintf(&sb, "    %s;\n", block.Terminator)
		}
		sb.WriteString("  }\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
