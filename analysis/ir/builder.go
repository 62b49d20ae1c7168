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

// BodyBuilder assembles a Body block by block. Statements are appended to the current block; terminators close
// the current block. A Call terminator continues in a fresh block.
type BodyBuilder struct {
	body    *Body
	current int
}

// NewBodyBuilder returns a builder for a function with argCount parameters. The return place and the parameters
// are allocated; the builder starts in block 0.
func NewBodyBuilder(id FuncID, name string, argCount int) *BodyBuilder {
	return &BodyBuilder{
		body: &Body{
			ID:         id,
			Name:       name,
			ArgCount:   argCount,
			LocalCount: argCount + 1,
			Blocks:     []BasicBlock{{}},
		},
		current: 0,
	}
}

// SetSpan sets the span of the body being built
func (b *BodyBuilder) SetSpan(span Span) {
	b.body.Span = span
}

// NewLocal allocates a fresh temporary local
func (b *BodyBuilder) NewLocal() Local {
	l := Local(b.body.LocalCount)
	b.body.LocalCount++
	return l
}

// Param returns the local of the i-th parameter, starting at 0
func (b *BodyBuilder) Param(i int) Local {
	return Local(i + 1)
}

// CurrentBlock returns the identifier of the block statements are appended to
func (b *BodyBuilder) CurrentBlock() BlockID {
	return BlockID(b.current)
}

// NewBlock appends an empty block and returns its identifier. The current block does not change.
func (b *BodyBuilder) NewBlock() BlockID {
	b.body.Blocks = append(b.body.Blocks, BasicBlock{})
	return BlockID(len(b.body.Blocks) - 1)
}

// SwitchTo makes blk the current block
func (b *BodyBuilder) SwitchTo(blk BlockID) {
	b.current = int(blk)
}

// Push appends a statement to the current block
func (b *BodyBuilder) Push(stmt Statement) {
	blk := &b.body.Blocks[b.current]
	blk.Statements = append(blk.Statements, stmt)
}

// Assign appends dest = value to the current block
func (b *BodyBuilder) Assign(dest Place, value Rvalue) {
	b.Push(Assign{Dest: dest, Value: value})
}

// Terminate sets the terminator of the current block
func (b *BodyBuilder) Terminate(t Terminator) {
	b.body.Blocks[b.current].Terminator = t
}

// Call terminates the current block with a call to f and continues in a new block that becomes current.
func (b *BodyBuilder) Call(f Operand, args []Operand, dest Place) {
	b.CallAt(f, args, dest, Span{})
}

// CallAt is Call with the source location of the call
func (b *BodyBuilder) CallAt(f Operand, args []Operand, dest Place, span Span) {
	next := b.NewBlock()
	b.Terminate(Call{Func: f, Args: args, Dest: dest, Target: next, Span: span})
	b.current = int(next)
}

// Finish returns the built body. A current block left without terminator is terminated with Return.
func (b *BodyBuilder) Finish() *Body {
	if b.body.Blocks[b.current].Terminator == nil {
		b.Terminate(Return{})
	}
	return b.body
}
