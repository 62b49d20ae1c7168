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

// ProjectionKind is the kind of one step of a place projection.
type ProjectionKind int

const (
	// ProjDeref dereferences the pointer held by the place
	ProjDeref ProjectionKind = iota
	// ProjField selects a field by index
	ProjField
	// ProjIndex indexes with the value of a local
	ProjIndex
	// ProjConstantIndex indexes with a constant offset
	ProjConstantIndex
	// ProjSubslice selects a sub-range of an array or slice
	ProjSubslice
	// ProjDowncast views an enum or interface value as one of its variants
	ProjDowncast
)

// Projection is one step of a place path.
type Projection struct {
	Kind ProjectionKind
	// Field is the field index for ProjField, the offset for ProjConstantIndex and the variant for ProjDowncast
	Field int
	// Index is the indexing local for ProjIndex
	Index Local
}

// Place is a local with an optional projection path, e.g. (*_1).0
type Place struct {
	Local      Local
	Projection []Projection
}

// LocalPlace returns the place of the local l without projections
func LocalPlace(l Local) Place {
	return Place{Local: l}
}

// IsLocal returns true when the place is the whole local, without projections
func (p Place) IsLocal() bool {
	return len(p.Projection) == 0
}

// LastProjection returns the last projection of the place and false when the place has no projection.
func (p Place) LastProjection() (Projection, bool) {
	if len(p.Projection) == 0 {
		return Projection{}, false
	}
	return p.Projection[len(p.Projection)-1], true
}

func (p Place) project(pr Projection) Place {
	proj := make([]Projection, len(p.Projection), len(p.Projection)+1)
	copy(proj, p.Projection)
	return Place{Local: p.Local, Projection: append(proj, pr)}
}

// Deref returns the place *p
func (p Place) Deref() Place { return p.project(Projection{Kind: ProjDeref}) }

// Field returns the place p.i
func (p Place) Field(i int) Place { return p.project(Projection{Kind: ProjField, Field: i}) }

// Index returns the place p[idx]
func (p Place) Index(idx Local) Place { return p.project(Projection{Kind: ProjIndex, Index: idx}) }

// ConstantIndex returns the place p[i] for a constant i
func (p Place) ConstantIndex(i int) Place {
	return p.project(Projection{Kind: ProjConstantIndex, Field: i})
}

// Subslice returns the place p[..]
func (p Place) Subslice() Place { return p.project(Projection{Kind: ProjSubslice}) }

// Downcast returns the place (p as variant)
func (p Place) Downcast(variant int) Place {
	return p.project(Projection{Kind: ProjDowncast, Field: variant})
}

// Locals returns the locals read to compute the address of the place: the base local and every index local.
func (p Place) Locals() []Local {
	locals := []Local{p.Local}
	for _, pr := range p.Projection {
		if pr.Kind == ProjIndex {
			locals = append(locals, pr.Index)
		}
	}
	return locals
}

func (p Place) String() string {
	s := p.Local.String()
	for _, pr := range p.Projection {
		switch pr.Kind {
		case ProjDeref:
			s = "(*" + s + ")"
		case ProjField:
			s = fmt.Sprintf("%s.%d", s, pr.Field)
		case ProjIndex:
			s = fmt.Sprintf("%s[%s]", s, pr.Index)
		case ProjConstantIndex:
			s = fmt.Sprintf("%s[%d]", s, pr.Field)
		case ProjSubslice:
			s = s + "[..]"
		case ProjDowncast:
			s = fmt.Sprintf("(%s as #%d)", s, pr.Field)
		}
	}
	return s
}

// OperandKind distinguishes how an operand reads its value
type OperandKind int

const (
	// OpCopy copies the value out of a place
	OpCopy OperandKind = iota
	// OpMove moves the value out of a place
	OpMove
	// OpConstant is a value that does not live in any local
	OpConstant
)

// Const is a constant operand. Func is set when the constant denotes a function-like item; Closure is set when
// that item is a closure of the enclosing function.
type Const struct {
	Value   string
	Func    FuncID
	Closure bool
}

// Operand is the input of an rvalue or a call.
type Operand struct {
	Kind  OperandKind
	Place Place
	Const Const
}

// Copy returns an operand copying the place p
func Copy(p Place) Operand { return Operand{Kind: OpCopy, Place: p} }

// Move returns an operand moving out of the place p
func Move(p Place) Operand { return Operand{Kind: OpMove, Place: p} }

// Constant returns a constant operand with the given textual value
func Constant(value string) Operand { return Operand{Kind: OpConstant, Const: Const{Value: value}} }

// FuncConstant returns a constant operand naming the function f
func FuncConstant(f FuncID) Operand {
	return Operand{Kind: OpConstant, Const: Const{Value: string(f), Func: f}}
}

// ClosureConstant returns a constant operand naming the closure f
func ClosureConstant(f FuncID) Operand {
	return Operand{Kind: OpConstant, Const: Const{Value: string(f), Func: f, Closure: true}}
}

// IsConstant returns true when the operand does not read any local
func (o Operand) IsConstant() bool {
	return o.Kind == OpConstant
}

// Locals returns the locals the operand reads
func (o Operand) Locals() []Local {
	if o.IsConstant() {
		return nil
	}
	return o.Place.Locals()
}

func (o Operand) String() string {
	switch o.Kind {
	case OpCopy:
		return "copy " + o.Place.String()
	case OpMove:
		return "move " + o.Place.String()
	default:
		if o.Const.Closure {
			return "closure " + string(o.Const.Func)
		}
		if o.Const.Func != "" {
			return "fn " + string(o.Const.Func)
		}
		return "const " + o.Const.Value
	}
}

func operandList(ops []Operand) string {
	s := make([]string, len(ops))
	for i, op := range ops {
		s[i] = op.String()
	}
	return strings.Join(s, ", ")
}
