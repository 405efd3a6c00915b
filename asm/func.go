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
	"github.com/db47h/fc16/vm"
	"github.com/pkg/errors"
)

// Symbol is a named local variable of a function.
type Symbol struct {
	Name string
	Size int // in Words
}

// SymbolTable holds the local symbols of a function, in declaration order.
type SymbolTable struct {
	syms []Symbol
}

// Add declares a symbol of the given size.
func (t *SymbolTable) Add(name string, size int) error {
	if size <= 0 {
		return errors.Errorf("symbol %s: invalid size %d", name, size)
	}
	if _, ok := t.Offset(name); ok {
		return errors.Errorf("symbol %s redefined", name)
	}
	t.syms = append(t.syms, Symbol{name, size})
	return nil
}

// Offset returns the offset of the named symbol from the start of the symbol
// section.
func (t *SymbolTable) Offset(name string) (int, bool) {
	off := 0
	for _, s := range t.syms {
		if s.Name == name {
			return off, true
		}
		off += s.Size
	}
	return 0, false
}

// Len returns the size of the symbol section.
func (t *SymbolTable) Len() int {
	l := 0
	for _, s := range t.syms {
		l += s.Size
	}
	return l
}

// Symbols returns the declared symbols.
func (t *SymbolTable) Symbols() []Symbol { return t.syms }

// Function is a named sequence of code blocks.
//
// When built, a function starts with a stub that reserves its local symbol
// section on the stack (only if it declares symbols), followed by a jump to
// its entry block. Blocks are laid out in order after the stub.
//
// Seen from the arp register, a frame looks like this (word addresses):
//
//	arp-2-argc+n	argument n (one Word each)
//	arp-2		saved arp
//	arp		return address
//	arp+2		first local symbol
type Function struct {
	Name     string
	ArgCount int
	Symbols  SymbolTable
	blocks   [][]Operand
	entry    int
}

// NewFunction returns a new empty function.
func NewFunction(name string, argCount int) *Function {
	return &Function{Name: name, ArgCount: argCount}
}

// AddBlock appends a block of code and returns its id. If entry is true, the
// block becomes the function's entry point.
func (f *Function) AddBlock(ops []Operand, entry bool) int {
	id := len(f.blocks)
	f.blocks = append(f.blocks, ops)
	if entry {
		f.entry = id
	}
	return id
}

// AddSymbol declares a local symbol.
func (f *Function) AddSymbol(name string, size int) error {
	return f.Symbols.Add(name, size)
}

// Blocks returns the function's code blocks.
func (f *Function) Blocks() [][]Operand { return f.blocks }

// Entry returns the id of the entry block.
func (f *Function) Entry() int { return f.entry }

func (f *Function) stubLen() int {
	if f.Symbols.Len() == 0 {
		return vm.InsertionJumpSize
	}
	// AddEx srp, L + Mov ex1, srp
	return 8 + 7 + vm.InsertionJumpSize
}

// Len returns the built size of f in Words.
func (f *Function) Len() int {
	l := f.stubLen()
	for _, b := range f.blocks {
		l += blockLen(b)
	}
	return l
}

func blockLen(ops []Operand) int {
	l := 0
	for _, o := range ops {
		l += o.Width()
	}
	return l
}

// Build lowers f to bytecode located at address base. Function references are
// resolved with fns and constant references with dataBase + dataOffsets[id].
func (f *Function) Build(base int, fns map[string]int, dataBase int, dataOffsets []int) ([]vm.Word, error) {
	if f.entry >= len(f.blocks) {
		return nil, errors.Errorf("%s: entry block %d does not exist", f.Name, f.entry)
	}
	addrs := make([]int, len(f.blocks))
	pc := base + f.stubLen()
	for id, b := range f.blocks {
		addrs[id] = pc
		pc += blockLen(b)
	}

	code := make([]vm.Word, 0, pc-base)
	var stub []Operand
	if l := f.Symbols.Len(); l > 0 {
		stub = append(stub,
			Op(vm.OpAddEx), Reg(vm.RegSRP), I32(int32(l)),
			Op(vm.OpMov), Reg(vm.RegEX1), Reg(vm.RegSRP))
	}
	stub = append(stub, Op(vm.OpJump), I32(int32(addrs[f.entry])))
	for _, o := range stub {
		code, _ = o.lower(code)
	}

	for id, b := range f.blocks {
		for _, o := range b {
			r, err := f.resolve(o, id, addrs, fns, dataBase, dataOffsets)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: block %d", f.Name, id)
			}
			if code, err = r.lower(code); err != nil {
				return nil, errors.Wrapf(err, "%s: block %d", f.Name, id)
			}
		}
	}
	return code, nil
}

func (f *Function) resolve(o Operand, block int, addrs []int, fns map[string]int, dataBase int, dataOffsets []int) (Operand, error) {
	switch o.Kind {
	case KindFunction:
		addr, ok := fns[o.Name]
		if !ok {
			return o, errors.Errorf("undefined function %s", o.Name)
		}
		return I32(int32(addr)), nil
	case KindConstant:
		if o.Int < 0 || int(o.Int) >= len(dataOffsets) {
			return o, errors.Errorf("undefined constant %d", o.Int)
		}
		return I32(int32(dataBase + dataOffsets[o.Int])), nil
	case KindBlock:
		id := int(o.Int)
		if id == ThisBlock {
			id = block
		}
		if id < 0 || id >= len(addrs) {
			return o, errors.Errorf("undefined block %d", o.Int)
		}
		return I32(int32(addrs[id])), nil
	case KindSymbol:
		off, ok := f.Symbols.Offset(o.Name)
		if !ok {
			return o, errors.Errorf("undefined symbol %s", o.Name)
		}
		return I32(int32(2 + off + int(o.Int))), nil
	case KindSymbolSectionLen:
		return I32(int32(f.Symbols.Len())), nil
	case KindArgCount:
		return I32(int32(f.ArgCount)), nil
	case KindArgument:
		// word offset; Return counts the same arguments in slots
		return I32(o.Int - 2 - int32(f.ArgCount)), nil
	}
	return o, nil
}

// clone returns a deep copy of f with every operand passed through fix.
func (f *Function) clone(fix func(Operand) Operand) *Function {
	g := *f
	g.Symbols.syms = append([]Symbol(nil), f.Symbols.syms...)
	g.blocks = make([][]Operand, len(f.blocks))
	for id, b := range f.blocks {
		nb := make([]Operand, len(b))
		for k, o := range b {
			nb[k] = fix(o)
		}
		g.blocks[id] = nb
	}
	return &g
}
