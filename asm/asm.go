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
	"io"
	"strconv"

	"github.com/db47h/fc16/internal/fci"
	"github.com/db47h/fc16/vm"
)

// decodeOperand decodes the operand at mem[pc] and returns it along with the
// position of the next one. ok is false if the operand is truncated or
// malformed.
func decodeOperand(mem []vm.Word, pc int) (o Operand, next int, ok bool) {
	if pc >= len(mem) {
		return o, pc, false
	}
	if mem[pc] != vm.Sentinel {
		return Int(mem[pc]), pc + 1, true
	}
	if pc+2 >= len(mem) {
		return o, pc, false
	}
	switch mem[pc+1] {
	case vm.TagRegister:
		r := vm.DecodeRegister(mem[pc+2])
		return Reg(r), pc + 3, r != vm.RegNone
	case vm.TagFloat:
		if pc+3 < len(mem) {
			return F32(vm.WordsFloat(mem[pc+2], mem[pc+3])), pc + 4, true
		}
	case vm.TagInt32:
		if pc+3 < len(mem) {
			return I32(vm.WordsInt32(mem[pc+2], mem[pc+3])), pc + 4, true
		}
	}
	return o, pc, false
}

// Disassemble writes a disassembly of the instruction at position pc in mem
// to the specified io.Writer and returns the position of the next
// instruction and any write error. Truncated or malformed operands, as well
// as a pc outside of mem, are rendered as "???".
func Disassemble(mem []vm.Word, pc int, w io.Writer) (next int, err error) {
	ew := fci.NewErrWriter(w)
	if pc < 0 || pc >= len(mem) {
		io.WriteString(ew, "???")
		return len(mem), ew.Err
	}
	op := vm.DecodeOpcode(mem[pc])
	if vm.EncodeOpcode(op) != mem[pc] {
		io.WriteString(ew, ".dat ")
		io.WriteString(ew, strconv.Itoa(int(mem[pc])))
		return pc + 1, ew.Err
	}
	io.WriteString(ew, op.String())
	pc++
	for n := 0; n < op.Operands(); n++ {
		o, np, ok := decodeOperand(mem, pc)
		if !ok {
			io.WriteString(ew, " ???")
			return len(mem), ew.Err
		}
		ew.Write([]byte{' '})
		io.WriteString(ew, o.String())
		pc = np
	}
	return pc, ew.Err
}

// DisassembleAll writes a disassembly of all words in the given slice to
// the specified io.Writer. The base argument specifies the real address of the
// first word (mem[0]). It will return any write error.
func DisassembleAll(mem []vm.Word, base int, w io.Writer) error {
	ew := fci.NewErrWriter(w)
	for pc := 0; pc < len(mem); {
		fmt.Fprintf(ew, "% 10d\t", base+pc)
		pc, _ = Disassemble(mem, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
