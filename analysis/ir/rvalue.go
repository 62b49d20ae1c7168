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

import "fmt"

// Rvalue is the right-hand side of an assignment. The set of implementations is closed.
type Rvalue interface {
	fmt.Stringer
	isRvalue()
}

// Use reads an operand as is
type Use struct {
	Operand Operand
}

// Ref takes a reference to a place
type Ref struct {
	Place   Place
	Mutable bool
}

// AddressOf takes the raw address of a place
type AddressOf struct {
	Place Place
}

// CopyForDeref copies a place for the purpose of dereferencing it
type CopyForDeref struct {
	Place Place
}

// Repeat builds an array of Count copies of Operand
type Repeat struct {
	Operand Operand
	Count   int
}

// Cast converts an operand to another type
type Cast struct {
	Operand Operand
	Type    string
}

// BinaryOp applies a binary operator
type BinaryOp struct {
	Op          string
	Left, Right Operand
}

// UnaryOp applies a unary operator
type UnaryOp struct {
	Op      string
	Operand Operand
}

// Len reads the length of a place
type Len struct {
	Place Place
}

// Discriminant reads the discriminant (dynamic variant) of a place
type Discriminant struct {
	Place Place
}

// AggregateKind is the kind of value built by an Aggregate rvalue
type AggregateKind int

const (
	AggTuple AggregateKind = iota
	AggArray
	AggStruct
	AggClosure
	AggAlloc
	AggSlice
	AggMap
	AggChan
)

var aggregateNames = [...]string{"tuple", "array", "struct", "closure", "alloc", "slice", "map", "chan"}

func (k AggregateKind) String() string {
	if int(k) < len(aggregateNames) {
		return aggregateNames[k]
	}
	return "aggregate"
}

// Aggregate builds a compound value from operands. For AggClosure, Closure is the identifier of the closure
// body and Operands are the captured values.
type Aggregate struct {
	Kind     AggregateKind
	Closure  FuncID
	Operands []Operand
}

// Nullary is a computation that does not read any local (size-of, new heap cell, ...)
type Nullary struct {
	Op string
}

func (Use) isRvalue()          {}
func (Ref) isRvalue()          {}
func (AddressOf) isRvalue()    {}
func (CopyForDeref) isRvalue() {}
func (Repeat) isRvalue()       {}
func (Cast) isRvalue()         {}
func (BinaryOp) isRvalue()     {}
func (UnaryOp) isRvalue()      {}
func (Len) isRvalue()          {}
func (Discriminant) isRvalue() {}
func (Aggregate) isRvalue()    {}
func (Nullary) isRvalue()      {}

func (r Use) String() string { return r.Operand.String() }

func (r Ref) String() string {
	if r.Mutable {
		return "&mut " + r.Place.String()
	}
	return "&" + r.Place.String()
}

func (r AddressOf) String() string    { return "&raw " + r.Place.String() }
func (r CopyForDeref) String() string { return "deref_copy " + r.Place.String() }
func (r Repeat) String() string       { return fmt.Sprintf("[%s; %d]", r.Operand, r.Count) }
func (r Cast) String() string         { return fmt.Sprintf("%s as %s", r.Operand, r.Type) }
func (r BinaryOp) String() string     { return fmt.Sprintf("%s(%s, %s)", r.Op, r.Left, r.Right) }
func (r UnaryOp) String() string      { return fmt.Sprintf("%s(%s)", r.Op, r.Operand) }
func (r Len) String() string          { return "len(" + r.Place.String() + ")" }
func (r Discriminant) String() string { return "discriminant(" + r.Place.String() + ")" }
func (r Nullary) String() string      { return r.Op }

func (r Aggregate) String() string {
	if r.Kind == AggClosure {
		return fmt.Sprintf("closure %s [%s]", r.Closure, operandList(r.Operands))
	}
	return fmt.Sprintf("%s(%s)", r.Kind, operandList(r.Operands))
}
