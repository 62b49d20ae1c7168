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

import "github.com/awslabs/ar-go-dfg/analysis/ir"

// Bodies shared by the tests of the package

func local(l ir.Local) ir.Place { return ir.LocalPlace(l) }

func copyOf(l ir.Local) ir.Rvalue { return ir.Use{Operand: ir.Copy(local(l))} }

func moveOf(l ir.Local) ir.Rvalue { return ir.Use{Operand: ir.Move(local(l))} }

// identityBody is fn id(x) { x }
func identityBody() *ir.Body {
	b := ir.NewBodyBuilder("id", "id", 1)
	b.Assign(local(ir.ReturnLocal), copyOf(b.Param(0)))
	return b.Finish()
}

// constantBody is fn unused(x) { 5 }
func constantBody() *ir.Body {
	b := ir.NewBodyBuilder("unused", "unused", 1)
	b.Assign(local(ir.ReturnLocal), ir.Use{Operand: ir.Constant("5")})
	return b.Finish()
}

// callBody is fn caller(x) { _2 = callee(x); _0 = _2 }
func callBody() *ir.Body {
	b := ir.NewBodyBuilder("caller", "caller", 1)
	tmp := b.NewLocal()
	b.Call(ir.FuncConstant("callee"), []ir.Operand{ir.Copy(local(b.Param(0)))}, local(tmp))
	b.Assign(local(ir.ReturnLocal), moveOf(tmp))
	return b.Finish()
}

// arithBody is fn arith(x, y) { _3 = x + y; _0 = _3 * 2 }
func arithBody() *ir.Body {
	b := ir.NewBodyBuilder("arith", "arith", 2)
	sum := b.NewLocal()
	b.Assign(local(sum), ir.BinaryOp{Op: "Add", Left: ir.Copy(local(1)), Right: ir.Copy(local(2))})
	b.Assign(local(ir.ReturnLocal), ir.BinaryOp{Op: "Mul", Left: ir.Copy(local(sum)), Right: ir.Constant("2")})
	return b.Finish()
}

// closureBodies returns fn outer(x) { c := func() { return x }; return c() } and the body of the closure, whose
// captured value is local 1.
func closureBodies() (*ir.Body, *ir.Body) {
	b := ir.NewBodyBuilder("outer", "outer", 1)
	c := b.NewLocal()
	res := b.NewLocal()
	b.Assign(local(c), ir.Aggregate{
		Kind:     ir.AggClosure,
		Closure:  "outer$1",
		Operands: []ir.Operand{ir.Copy(local(b.Param(0)))},
	})
	b.Call(ir.Move(local(c)), nil, local(res))
	b.Assign(local(ir.ReturnLocal), moveOf(res))
	outer := b.Finish()

	cb := ir.NewBodyBuilder("outer$1", "outer$1", 0)
	captured := cb.NewLocal()
	cb.Assign(local(ir.ReturnLocal), copyOf(captured))
	return outer, cb.Finish()
}

// aliasBody is fn alias(p) { _2 = p; _3 = _2; _4 = (*_3).1; _5 = &_4; _0 = _4 }
func aliasBody() *ir.Body {
	b := ir.NewBodyBuilder("alias", "alias", 1)
	l2, l3, l4, l5 := b.NewLocal(), b.NewLocal(), b.NewLocal(), b.NewLocal()
	b.Assign(local(l2), copyOf(1))
	b.Assign(local(l3), moveOf(l2))
	b.Assign(local(l4), ir.Use{Operand: ir.Copy(local(l3).Deref().Field(1))})
	b.Assign(local(l5), ir.Ref{Place: local(l4)})
	b.Assign(local(ir.ReturnLocal), copyOf(l4))
	return b.Finish()
}

// loopBody is fn loop(n) { _2 = n; loop { _3 = _2; _2 = _3 - 1 }; _0 = _2 }
func loopBody() *ir.Body {
	b := ir.NewBodyBuilder("loop", "loop", 1)
	acc, tmp := b.NewLocal(), b.NewLocal()
	b.Assign(local(acc), copyOf(1))
	head := b.NewBlock()
	exit := b.NewBlock()
	b.Terminate(ir.Goto{Target: head})
	b.SwitchTo(head)
	b.Assign(local(tmp), copyOf(acc))
	b.Assign(local(acc), ir.BinaryOp{Op: "Sub", Left: ir.Copy(local(tmp)), Right: ir.Constant("1")})
	b.Terminate(ir.SwitchInt{Discr: ir.Copy(local(acc)), Targets: []ir.BlockID{head, exit}})
	b.SwitchTo(exit)
	b.Assign(local(ir.ReturnLocal), copyOf(acc))
	return b.Finish()
}

func allTestBodies() []*ir.Body {
	outer, inner := closureBodies()
	return []*ir.Body{
		identityBody(), constantBody(), callBody(), arithBody(), outer, inner, aliasBody(), loopBody(),
	}
}
