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

package lower

import (
	"go/constant"
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-dfg/analysis/ir"
	"golang.org/x/tools/go/ssa"
)

// FuncID returns the identifier of an SSA function in the IR. Closures are named after their enclosing function,
// e.g. example.com/pkg.f$1.
func FuncID(fn *ssa.Function) ir.FuncID {
	return ir.FuncID(fn.String())
}

// Function lowers the SSA function fn to an IR body. It returns nil if fn has no body (external function).
//
// Local 0 is the return place, locals 1..len(fn.Params) are the parameters (receiver included), then come the free
// variables of closures and one local per SSA value defined in the function. Every SSA block is mapped to the IR
// block with the same index; calls continue in fresh blocks appended after them.
func Function(fn *ssa.Function) *ir.Body {
	if len(fn.Blocks) == 0 {
		return nil
	}
	l := &lowerer{
		fn:     fn,
		b:      ir.NewBodyBuilder(FuncID(fn), fn.Name(), len(fn.Params)),
		locals: map[ssa.Value]ir.Local{},
		blocks: make([]ir.BlockID, len(fn.Blocks)),
	}
	l.b.SetSpan(functionSpan(fn))
	for i, p := range fn.Params {
		l.locals[p] = l.b.Param(i)
	}
	for _, fv := range fn.FreeVars {
		l.locals[fv] = l.b.NewLocal()
	}
	l.blocks[0] = l.b.CurrentBlock()
	for i := 1; i < len(fn.Blocks); i++ {
		l.blocks[i] = l.b.NewBlock()
	}
	for i, block := range fn.Blocks {
		l.b.SwitchTo(l.blocks[i])
		for _, instr := range block.Instrs {
			l.instruction(instr)
		}
	}
	return l.b.Finish()
}

type lowerer struct {
	fn     *ssa.Function
	b      *ir.BodyBuilder
	locals map[ssa.Value]ir.Local
	// blocks maps the index of an SSA block to the IR block its instructions start in
	blocks []ir.BlockID
}

// local returns the local holding the value v, allocating it on first use
func (l *lowerer) local(v ssa.Value) ir.Local {
	if loc, ok := l.locals[v]; ok {
		return loc
	}
	loc := l.b.NewLocal()
	l.locals[v] = loc
	return loc
}

func (l *lowerer) dest(v ssa.Value) ir.Place {
	return ir.LocalPlace(l.local(v))
}

// isLocalValue returns true when v is stored in a local, as opposed to constants, globals and functions
func isLocalValue(v ssa.Value) bool {
	switch v.(type) {
	case *ssa.Const, *ssa.Global, *ssa.Function, *ssa.Builtin:
		return false
	default:
		return true
	}
}

func (l *lowerer) operand(v ssa.Value) ir.Operand {
	switch v := v.(type) {
	case *ssa.Function:
		if v.Parent() != nil {
			return ir.ClosureConstant(FuncID(v))
		}
		return ir.FuncConstant(FuncID(v))
	case *ssa.Const, *ssa.Global, *ssa.Builtin:
		return ir.Constant(v.String())
	default:
		return ir.Copy(l.dest(v))
	}
}

func (l *lowerer) operands(values []ssa.Value) []ir.Operand {
	ops := make([]ir.Operand, 0, len(values))
	for _, v := range values {
		if v != nil {
			ops = append(ops, l.operand(v))
		}
	}
	return ops
}

// place returns a place holding v. Values that do not live in a local (globals, constants) are first copied into a
// fresh local.
func (l *lowerer) place(v ssa.Value) ir.Place {
	if isLocalValue(v) {
		return l.dest(v)
	}
	tmp := ir.LocalPlace(l.b.NewLocal())
	l.b.Assign(tmp, ir.Use{Operand: l.operand(v)})
	return tmp
}

// pointee returns the place pointed to by v, or v itself when v is not a pointer (slices, maps, strings)
func (l *lowerer) pointee(v ssa.Value) ir.Place {
	p := l.place(v)
	if _, ok := v.Type().Underlying().(*types.Pointer); ok {
		return p.Deref()
	}
	return p
}

// addrPlace returns the place designated by the address v. Field and element address chains are followed back to
// the local holding the whole value, so a write through the address is a write into that local.
func (l *lowerer) addrPlace(v ssa.Value) ir.Place {
	switch v := v.(type) {
	case *ssa.FieldAddr:
		return l.addrPlace(v.X).Field(v.Field)
	case *ssa.IndexAddr:
		if _, ok := v.X.Type().Underlying().(*types.Pointer); ok {
			return l.index(l.addrPlace(v.X), v.Index)
		}
		return l.index(l.place(v.X), v.Index)
	default:
		return l.place(v).Deref()
	}
}

func (l *lowerer) index(base ir.Place, idx ssa.Value) ir.Place {
	if c, ok := idx.(*ssa.Const); ok && c.Value != nil && c.Value.Kind() == constant.Int {
		if i, exact := constant.Int64Val(c.Value); exact {
			return base.ConstantIndex(int(i))
		}
	}
	return base.Index(l.place(idx).Local)
}

func (l *lowerer) assign(v ssa.Value, rv ir.Rvalue) {
	l.b.Push(ir.Assign{Dest: l.dest(v), Value: rv, Span: l.span(v.Pos())})
}

func (l *lowerer) span(pos token.Pos) ir.Span {
	if !pos.IsValid() || l.fn.Prog == nil {
		return ir.Span{}
	}
	p := l.fn.Prog.Fset.Position(pos)
	return ir.Span{File: p.Filename, Line: p.Line, Column: p.Column}
}

func functionSpan(fn *ssa.Function) ir.Span {
	if fn.Prog == nil || !fn.Pos().IsValid() {
		return ir.Span{}
	}
	fset := fn.Prog.Fset
	start := fset.Position(fn.Pos())
	span := ir.Span{File: start.Filename, Line: start.Line, Column: start.Column}
	if syntax := fn.Syntax(); syntax != nil {
		end := fset.Position(syntax.End())
		span.EndLine, span.EndCol = end.Line, end.Column
	}
	return span
}

//gocyclo:ignore
func (l *lowerer) instruction(instr ssa.Instruction) {
	switch v := instr.(type) {
	case *ssa.Alloc:
		l.assign(v, ir.Aggregate{Kind: ir.AggAlloc})
	case *ssa.BinOp:
		l.assign(v, ir.BinaryOp{Op: v.Op.String(), Left: l.operand(v.X), Right: l.operand(v.Y)})
	case *ssa.UnOp:
		switch v.Op {
		case token.MUL, token.ARROW:
			// load and channel receive read the pointed-to cell
			l.assign(v, ir.Use{Operand: ir.Copy(l.place(v.X).Deref())})
		default:
			l.assign(v, ir.UnaryOp{Op: v.Op.String(), Operand: l.operand(v.X)})
		}
	case *ssa.Call:
		l.call(v.Common(), l.dest(v), v.Pos())
	case *ssa.Go:
		l.call(v.Common(), ir.LocalPlace(l.b.NewLocal()), v.Pos())
	case *ssa.Defer:
		l.call(v.Common(), ir.LocalPlace(l.b.NewLocal()), v.Pos())
	case *ssa.ChangeType:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: v.Type().String()})
	case *ssa.Convert:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: v.Type().String()})
	case *ssa.ChangeInterface:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: v.Type().String()})
	case *ssa.MakeInterface:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: v.Type().String()})
	case *ssa.SliceToArrayPointer:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: v.Type().String()})
	case *ssa.TypeAssert:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: v.AssertedType.String()})
	case *ssa.Range:
		l.assign(v, ir.Cast{Operand: l.operand(v.X), Type: "range"})
	case *ssa.Extract:
		l.assign(v, ir.Use{Operand: ir.Copy(l.place(v.Tuple).Field(v.Index))})
	case *ssa.Field:
		l.assign(v, ir.Use{Operand: ir.Copy(l.place(v.X).Field(v.Field))})
	case *ssa.FieldAddr:
		l.assign(v, ir.AddressOf{Place: l.addrPlace(v)})
	case *ssa.Index:
		l.assign(v, ir.Use{Operand: ir.Copy(l.index(l.place(v.X), v.Index))})
	case *ssa.IndexAddr:
		l.assign(v, ir.AddressOf{Place: l.addrPlace(v)})
	case *ssa.Lookup:
		l.assign(v, ir.Use{Operand: ir.Copy(l.index(l.place(v.X), v.Index))})
	case *ssa.Slice:
		l.assign(v, ir.Ref{Place: l.pointee(v.X).Subslice()})
	case *ssa.MakeClosure:
		l.assign(v, ir.Aggregate{
			Kind:     ir.AggClosure,
			Closure:  FuncID(v.Fn.(*ssa.Function)),
			Operands: l.operands(v.Bindings),
		})
	case *ssa.MakeSlice:
		l.assign(v, ir.Aggregate{Kind: ir.AggSlice, Operands: l.operands([]ssa.Value{v.Len, v.Cap})})
	case *ssa.MakeMap:
		l.assign(v, ir.Aggregate{Kind: ir.AggMap, Operands: l.operands([]ssa.Value{v.Reserve})})
	case *ssa.MakeChan:
		l.assign(v, ir.Aggregate{Kind: ir.AggChan, Operands: l.operands([]ssa.Value{v.Size})})
	case *ssa.Next:
		l.assign(v, ir.Aggregate{Kind: ir.AggTuple, Operands: l.operands([]ssa.Value{v.Iter})})
	case *ssa.Select:
		var values []ssa.Value
		for _, st := range v.States {
			values = append(values, st.Chan, st.Send)
		}
		l.assign(v, ir.Aggregate{Kind: ir.AggTuple, Operands: l.operands(values)})
	case *ssa.Phi:
		for _, edge := range v.Edges {
			l.assign(v, ir.Use{Operand: l.operand(edge)})
		}
	case *ssa.Store:
		l.b.Push(ir.Assign{
			Dest:  l.addrPlace(v.Addr),
			Value: ir.Use{Operand: l.operand(v.Val)},
			Span:  l.span(v.Pos()),
		})
	case *ssa.MapUpdate:
		l.b.Assign(l.index(l.place(v.Map), v.Key), ir.Use{Operand: l.operand(v.Value)})
	case *ssa.Send:
		l.b.Assign(l.place(v.Chan).Deref(), ir.Use{Operand: l.operand(v.X)})
	case *ssa.DebugRef:
		l.b.Push(ir.Effect{Kind: "debug_ref"})
	case *ssa.RunDefers:
		l.b.Push(ir.Effect{Kind: "run_defers"})
	case *ssa.If:
		succs := instr.Block().Succs
		l.b.Terminate(ir.SwitchInt{
			Discr:   l.operand(v.Cond),
			Targets: []ir.BlockID{l.blocks[succs[0].Index], l.blocks[succs[1].Index]},
		})
	case *ssa.Jump:
		l.b.Terminate(ir.Goto{Target: l.blocks[instr.Block().Succs[0].Index]})
	case *ssa.Return:
		switch len(v.Results) {
		case 0:
		case 1:
			l.b.Assign(ir.LocalPlace(ir.ReturnLocal), ir.Use{Operand: l.operand(v.Results[0])})
		default:
			l.b.Assign(ir.LocalPlace(ir.ReturnLocal), ir.Aggregate{Kind: ir.AggTuple, Operands: l.operands(v.Results)})
		}
		l.b.Terminate(ir.Return{})
	case *ssa.Panic:
		l.b.Terminate(ir.Panic{Value: l.operand(v.X)})
	default:
		// any other value is approximated as an aggregate of its operands
		if value, ok := instr.(ssa.Value); ok {
			var values []ssa.Value
			for _, op := range instr.Operands(nil) {
				if *op != nil {
					values = append(values, *op)
				}
			}
			l.assign(value, ir.Aggregate{Kind: ir.AggTuple, Operands: l.operands(values)})
		} else {
			l.b.Push(ir.Effect{Kind: instr.String()})
		}
	}
}

// call lowers a call, go or defer instruction. The callee is a constant when it is statically known (function or
// closure without free variables), and the called value otherwise, e.g. a closure built by MakeClosure or the
// receiver of an interface method call.
func (l *lowerer) call(common *ssa.CallCommon, dest ir.Place, pos token.Pos) {
	args := l.operands(common.Args)
	callee := l.operand(common.Value)
	if common.IsInvoke() {
		args = append([]ir.Operand{callee}, args...)
		callee = ir.Constant(common.Method.FullName())
	}
	l.b.CallAt(callee, args, dest, l.span(pos))
}
