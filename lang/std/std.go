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

// Package std provides the fc16 standard library and helpers to exchange
// strings with programs.
//
// Library functions take their arguments as Int32 values pushed with pushex,
// leftmost argument first, and return nothing:
//
//	std::puts(addr)		write the zero terminated string at addr to the console
//	std::putn(n)		write n in decimal to the console
//	std::memcpy(dst, src, n)	copy n words from src to dst
package std

import (
	"github.com/db47h/fc16/asm"
	"github.com/db47h/fc16/vm"
)

// Name is the name of the standard library.
const Name = "std"

// StringCodec encodes and decodes zero terminated strings of Words, one rune
// per Word.
//
// Decode returns the string starting at position start in the specified
// slice. The trailing 0 is not returned.
//
// Encode writes the given string at position start in the specified slice
// and terminates it with a 0 Word.
var StringCodec stringCodec

type stringCodec struct{}

func (stringCodec) Decode(mem []vm.Word, start int) []rune {
	if start < 0 || start >= len(mem) {
		return nil
	}
	var str []rune
	for _, c := range mem[start:] {
		if c == 0 {
			break
		}
		str = append(str, rune(c))
	}
	return str
}

func (stringCodec) Encode(mem []vm.Word, start int, s string) {
	pos := start
	for _, c := range s {
		if pos >= len(mem) {
			break
		}
		mem[pos] = vm.Word(c)
		pos++
	}
	if pos < len(mem) {
		mem[pos] = 0
	}
}

// Constant returns s as zero terminated constant data, suitable for
// AddConstant.
func (stringCodec) Constant(s string) []asm.Operand {
	var data []asm.Operand
	for _, c := range s {
		data = append(data, asm.Int(vm.Word(c)))
	}
	return append(data, asm.Int(0))
}

// ReadString reads the zero terminated string at address addr of m, which
// may point into the stack.
func ReadString(m *vm.Memory, addr int) (string, error) {
	var str []rune
	for {
		c, err := m.Read(addr)
		if err != nil {
			return string(str), err
		}
		if c == 0 {
			return string(str), nil
		}
		str = append(str, rune(c))
		addr++
	}
}

// loadArg returns the operands that load the int32 argument n into ex2.
func loadArg(n int) []asm.Operand {
	return []asm.Operand{
		asm.Op(vm.OpAddEx), asm.Reg(vm.RegARP), asm.Arg(n),
		asm.Op(vm.OpLoadEx), asm.Reg(vm.RegEX1), asm.Reg(vm.RegEX2),
	}
}

func ops(parts ...[]asm.Operand) []asm.Operand {
	var r []asm.Operand
	for _, p := range parts {
		r = append(r, p...)
	}
	return r
}

func puts() *asm.Function {
	f := asm.NewFunction("puts", 2)
	f.AddBlock(loadArg(0), true)
	f.AddBlock([]asm.Operand{
		asm.Op(vm.OpLoad), asm.Reg(vm.RegEX2), asm.Reg(vm.RegR2),
		asm.Op(vm.OpJumpZero), asm.Block(2), asm.Reg(vm.RegR2),
		asm.Op(vm.OpPush), asm.Reg(vm.RegR2),
		asm.Op(vm.OpIO), asm.Int(vm.DevConsole), asm.Int(vm.ConsolePutc),
		asm.Op(vm.OpAddEx), asm.Reg(vm.RegEX2), asm.Int(1),
		asm.Op(vm.OpMov), asm.Reg(vm.RegEX1), asm.Reg(vm.RegEX2),
		asm.Op(vm.OpJump), asm.Block(asm.ThisBlock),
	}, false)
	f.AddBlock([]asm.Operand{
		asm.Op(vm.OpReturn), asm.Int(0), asm.Locals(), asm.Int(1),
	}, false)
	return f
}

func putn() *asm.Function {
	f := asm.NewFunction("putn", 2)
	f.AddBlock(ops(loadArg(0), []asm.Operand{
		asm.Op(vm.OpPushEx), asm.Reg(vm.RegEX2),
		asm.Op(vm.OpIO), asm.Int(vm.DevConsole), asm.Int(vm.ConsolePutn),
		asm.Op(vm.OpReturn), asm.Int(0), asm.Locals(), asm.Int(1),
	}), true)
	return f
}

// memcpy keeps the destination in a local, the source in ex2, the count in
// r3 and the index in r4.
func memcpy() *asm.Function {
	f := asm.NewFunction("memcpy", 6)
	f.AddSymbol("dst", 2)
	f.AddBlock(ops(
		loadArg(0),
		[]asm.Operand{
			asm.Op(vm.OpAddEx), asm.Reg(vm.RegARP), asm.Sym("dst", 0),
			asm.Op(vm.OpStoreEx), asm.Reg(vm.RegEX1), asm.Reg(vm.RegEX2),
			asm.Op(vm.OpAddEx), asm.Reg(vm.RegARP), asm.Arg(4),
			asm.Op(vm.OpLoadEx), asm.Reg(vm.RegEX1), asm.Reg(vm.RegEX1),
			asm.Op(vm.OpMov), asm.Reg(vm.RegEX1), asm.Reg(vm.RegR3),
		},
		loadArg(2),
		[]asm.Operand{
			asm.Op(vm.OpMov), asm.Int(0), asm.Reg(vm.RegR4),
		}), true)
	f.AddBlock([]asm.Operand{
		asm.Op(vm.OpLessThan), asm.Reg(vm.RegR4), asm.Reg(vm.RegR3),
		asm.Op(vm.OpJumpZero), asm.Block(2), asm.Reg(vm.RegR1),
		asm.Op(vm.OpAddEx), asm.Reg(vm.RegEX2), asm.Reg(vm.RegR4),
		asm.Op(vm.OpLoad), asm.Reg(vm.RegEX1), asm.Reg(vm.RegR2),
		asm.Op(vm.OpAddEx), asm.Reg(vm.RegARP), asm.Sym("dst", 0),
		asm.Op(vm.OpLoadEx), asm.Reg(vm.RegEX1), asm.Reg(vm.RegEX1),
		asm.Op(vm.OpAddEx), asm.Reg(vm.RegEX1), asm.Reg(vm.RegR4),
		asm.Op(vm.OpStore), asm.Reg(vm.RegEX1), asm.Reg(vm.RegR2),
		asm.Op(vm.OpAdd), asm.Reg(vm.RegR4), asm.Int(1),
		asm.Op(vm.OpMov), asm.Reg(vm.RegR1), asm.Reg(vm.RegR4),
		asm.Op(vm.OpJump), asm.Block(asm.ThisBlock),
	}, false)
	f.AddBlock([]asm.Operand{
		asm.Op(vm.OpReturn), asm.Int(0), asm.Locals(), asm.Int(3),
	}, false)
	return f
}

// Library returns a new instance of the standard library.
func Library() *asm.Library {
	l := asm.NewLibrary(Name)
	l.AddFn(puts())
	l.AddFn(putn())
	l.AddFn(memcpy())
	return l
}
