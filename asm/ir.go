// This file is part of fc16 - https://github.com/db47h/fc16
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"fmt"
	"math"
	"strconv"

	"github.com/db47h/fc16/vm"
	"github.com/pkg/errors"
)

// OperandKind is the tag of an Operand.
type OperandKind uint8

// Operand kinds.
const (
	KindCommand          OperandKind = iota // opcode
	KindRegister                            // register alias
	KindInt                                 // Word literal
	KindFloat                               // float32 literal
	KindInt32                               // int32 literal
	KindFunction                            // address of a function, by name
	KindConstant                            // address of a constant pool entry
	KindBlock                               // address of a block of the current function
	KindSymbol                              // frame relative address of a local symbol
	KindSymbolSectionLen                    // size of the local symbol section
	KindArgCount                            // argument count of the current function
	KindArgument                            // frame relative address of an argument
)

var kindNames = [...]string{"command", "register", "int", "float", "int32", "function", "constant", "block", "symbol", "locals", "argc", "argument"}

func (k OperandKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Operand is one element of a code block or constant: either an opcode or an
// instruction operand. References are resolved to Int32 values when the
// enclosing function is built.
type Operand struct {
	Kind  OperandKind
	Op    vm.Opcode
	Reg   vm.Register
	Int   int32 // integer value, constant or block id, symbol extra offset or argument index
	Float float32
	Name  string // function or symbol name
}

// ThisBlock is the block id designating the block where a Block operand
// appears.
const ThisBlock = -1

// Op returns a command operand.
func Op(op vm.Opcode) Operand { return Operand{Kind: KindCommand, Op: op} }

// Reg returns a register operand.
func Reg(r vm.Register) Operand { return Operand{Kind: KindRegister, Reg: r} }

// Int returns a Word literal operand. The sentinel value cannot be encoded in
// one Word, so it yields an Int32 operand.
func Int(w vm.Word) Operand {
	if w == vm.Sentinel {
		return I32(int32(w))
	}
	return Operand{Kind: KindInt, Int: int32(w)}
}

// I32 returns an int32 literal operand.
func I32(v int32) Operand { return Operand{Kind: KindInt32, Int: v} }

// F32 returns a float literal operand.
func F32(f float32) Operand { return Operand{Kind: KindFloat, Float: f} }

// Fn returns a reference to the function with the given name.
func Fn(name string) Operand { return Operand{Kind: KindFunction, Name: name} }

// Const returns a reference to the constant with the given id.
func Const(id int) Operand { return Operand{Kind: KindConstant, Int: int32(id)} }

// Block returns a reference to the block with the given id in the current
// function. Use ThisBlock for the block where the operand appears.
func Block(id int) Operand { return Operand{Kind: KindBlock, Int: int32(id)} }

// Sym returns the frame relative address of local symbol name plus extra.
func Sym(name string, extra int) Operand {
	return Operand{Kind: KindSymbol, Name: name, Int: int32(extra)}
}

// Locals returns the size of the local symbol section.
func Locals() Operand { return Operand{Kind: KindSymbolSectionLen} }

// ArgCount returns the argument count of the current function.
func ArgCount() Operand { return Operand{Kind: KindArgCount} }

// Arg returns the frame relative address of argument n. Arguments are
// addressed in Words, one Word per argument, whereas the argument count given
// to the Return instruction counts stack slots.
func Arg(n int) Operand { return Operand{Kind: KindArgument, Int: int32(n)} }

// Width returns the number of Words o occupies once lowered.
func (o Operand) Width() int {
	switch o.Kind {
	case KindCommand, KindInt:
		return 1
	case KindRegister:
		return 3
	default:
		return 4
	}
}

// dataWidth returns the number of Words o occupies in a constant pool entry.
func (o Operand) dataWidth() int {
	if o.Kind == KindInt {
		return 1
	}
	return 2
}

func (o Operand) String() string {
	switch o.Kind {
	case KindCommand:
		return o.Op.String()
	case KindRegister:
		return o.Reg.String()
	case KindInt:
		return strconv.Itoa(int(o.Int))
	case KindInt32:
		return "#" + strconv.Itoa(int(o.Int))
	case KindFloat:
		return formatFloat(o.Float)
	case KindFunction:
		return "@" + o.Name
	case KindConstant:
		return "$" + strconv.Itoa(int(o.Int))
	case KindBlock:
		if o.Int == ThisBlock {
			return "&."
		}
		return "&" + strconv.Itoa(int(o.Int))
	case KindSymbol:
		if o.Int != 0 {
			return fmt.Sprintf("%%%s%+d", o.Name, o.Int)
		}
		return "%" + o.Name
	case KindSymbolSectionLen:
		return ".locals"
	case KindArgCount:
		return ".argc"
	case KindArgument:
		return "^" + strconv.Itoa(int(o.Int))
	}
	return o.Kind.String()
}

// formatFloat formats f so that it reads back as a float.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return s
	}
	for _, c := range s {
		if c == '.' || c == 'e' {
			return s
		}
	}
	return s + ".0"
}

// lower appends the wire encoding of a resolved operand to dst.
func (o Operand) lower(dst []vm.Word) ([]vm.Word, error) {
	switch o.Kind {
	case KindCommand:
		return append(dst, vm.EncodeOpcode(o.Op)), nil
	case KindRegister:
		return append(dst, vm.PackRegister(o.Reg)...), nil
	case KindInt:
		return append(dst, vm.Word(o.Int)), nil
	case KindInt32:
		return append(dst, vm.PackInt32(o.Int)...), nil
	case KindFloat:
		return append(dst, vm.PackFloat(o.Float)...), nil
	}
	return dst, errors.Errorf("unresolved %v operand %v", o.Kind, o)
}
