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

package vm

import (
	"encoding/binary"
	"math"
)

// Word is the machine's native storage unit.
type Word int16

// Sentinel marks the start of an extended operand.
const Sentinel Word = math.MinInt16

// Extended operand tags. An extended operand is encoded as
// [Sentinel, tag, payload...].
const (
	TagFloat Word = iota
	TagRegister
	TagInt32
)

// Opcode is an instruction opcode.
type Opcode Word

// Opcodes.
const (
	OpNop         Opcode = 0
	OpSub         Opcode = 1
	OpMul         Opcode = 2
	OpDiv         Opcode = 3
	OpMod         Opcode = 4
	OpAddf        Opcode = 5
	OpSubf        Opcode = 6
	OpMulf        Opcode = 7
	OpDivf        Opcode = 8
	OpAnd         Opcode = 9
	OpNot         Opcode = 10
	OpOr          Opcode = 11
	OpXor         Opcode = 12
	OpPush        Opcode = 13
	OpPop         Opcode = 14
	OpLoad        Opcode = 15
	OpStore       Opcode = 16
	OpMov         Opcode = 17
	OpJump        Opcode = 19
	OpJumpNotZero Opcode = 20
	OpGreater     Opcode = 21
	OpLessThan    Opcode = 22
	OpExit        Opcode = 23
	OpAdd         Opcode = 32
	OpIO          Opcode = 33
	OpCall        Opcode = 34
	OpReturn      Opcode = 35
	OpJumpZero    Opcode = 36
	OpLoadf       Opcode = 37
	OpAddEx       Opcode = 38
	OpSubEx       Opcode = 39
	OpMulEx       Opcode = 40
	OpDivEx       Opcode = 41
	OpPushEx      Opcode = 42
	OpPushf       Opcode = 43
	OpLoadEx      Opcode = 44
	OpStoreEx     Opcode = 45
	OpStoref      Opcode = 46
)

type opInfo struct {
	name string
	args int // logical operand count
}

var opcodes = map[Opcode]opInfo{
	OpNop:         {"nop", 0},
	OpAdd:         {"add", 2},
	OpSub:         {"sub", 2},
	OpMul:         {"mul", 2},
	OpDiv:         {"div", 2},
	OpMod:         {"mod", 2},
	OpAddf:        {"addf", 2},
	OpSubf:        {"subf", 2},
	OpMulf:        {"mulf", 2},
	OpDivf:        {"divf", 2},
	OpAnd:         {"and", 2},
	OpNot:         {"not", 1},
	OpOr:          {"or", 2},
	OpXor:         {"xor", 2},
	OpPush:        {"push", 1},
	OpPop:         {"pop", 1},
	OpLoad:        {"load", 2},
	OpStore:       {"store", 2},
	OpMov:         {"mov", 2},
	OpJump:        {"jump", 1},
	OpJumpNotZero: {"jnz", 2},
	OpGreater:     {"gt", 2},
	OpLessThan:    {"lt", 2},
	OpExit:        {"exit", 0},
	OpIO:          {"io", 2},
	OpCall:        {"call", 1},
	OpReturn:      {"ret", 3},
	OpJumpZero:    {"jz", 2},
	OpLoadf:       {"loadf", 2},
	OpAddEx:       {"addex", 2},
	OpSubEx:       {"subex", 2},
	OpMulEx:       {"mulex", 2},
	OpDivEx:       {"divex", 2},
	OpPushEx:      {"pushex", 1},
	OpPushf:       {"pushf", 1},
	OpLoadEx:      {"loadex", 2},
	OpStoreEx:     {"storeex", 2},
	OpStoref:      {"storef", 2},
}

// Opcodes returns all defined opcodes in ascending order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodes))
	for op := OpNop; op <= OpStoref; op++ {
		if _, ok := opcodes[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

func (op Opcode) String() string {
	if inf, ok := opcodes[op]; ok {
		return inf.name
	}
	return "nop"
}

// Operands returns the number of logical operands that follow op.
func (op Opcode) Operands() int {
	return opcodes[op].args
}

// EncodeOpcode returns the Word encoding of op.
func EncodeOpcode(op Opcode) Word { return Word(op) }

// DecodeOpcode returns the opcode encoded by w. Unknown encodings decode to
// OpNop.
func DecodeOpcode(w Word) Opcode {
	if _, ok := opcodes[Opcode(w)]; ok {
		return Opcode(w)
	}
	return OpNop
}

// OpcodeByName returns the opcode with the given mnemonic.
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodeIndex[name]
	return op, ok
}

// Register identifies a slot in the register file.
type Register Word

// Registers. RegSP reads as the stack length and RegSRP as the stack cursor;
// both resize the stack when written.
const (
	RegNone Register = iota
	RegR1
	RegR2
	RegR3
	RegR4
	RegF1
	RegF2
	RegIP
	RegSP
	RegSRP
	RegR5
	RegEX1
	RegEX2
	RegARP
	regCount
)

var registers = [...]string{"none", "r1", "r2", "r3", "r4", "f1", "f2", "ip", "sp", "srp", "r5", "ex1", "ex2", "arp"}

// Registers returns all valid registers.
func Registers() []Register {
	regs := make([]Register, 0, regCount-1)
	for r := RegR1; r < regCount; r++ {
		regs = append(regs, r)
	}
	return regs
}

func (r Register) String() string {
	if r > RegNone && r < regCount {
		return registers[r]
	}
	return "none"
}

// EncodeRegister returns the payload Word of a register alias operand.
func EncodeRegister(r Register) Word { return Word(r) }

// DecodeRegister returns the register encoded by w or RegNone.
func DecodeRegister(w Word) Register {
	if r := Register(w); r > RegNone && r < regCount {
		return r
	}
	return RegNone
}

// RegisterByName returns the register with the given name.
func RegisterByName(name string) (Register, bool) {
	r, ok := registerIndex[name]
	return r, ok
}

var (
	opcodeIndex   = make(map[string]Opcode)
	registerIndex = make(map[string]Register)
)

func init() {
	for op, inf := range opcodes {
		opcodeIndex[inf.name] = op
	}
	for r := RegR1; r < regCount; r++ {
		registerIndex[registers[r]] = r
	}
}

// PackRegister returns the extended operand encoding of a register alias.
func PackRegister(r Register) []Word {
	return []Word{Sentinel, TagRegister, EncodeRegister(r)}
}

// FloatWords returns the two little-endian Words of f.
func FloatWords(f float32) [2]Word {
	return int32Words(int32(math.Float32bits(f)))
}

// WordsFloat is the inverse of FloatWords.
func WordsFloat(lo, hi Word) float32 {
	return math.Float32frombits(uint32(wordsInt32(lo, hi)))
}

// Int32Words returns the two Words of v, low word first.
func Int32Words(v int32) [2]Word { return int32Words(v) }

// WordsInt32 is the inverse of Int32Words.
func WordsInt32(lo, hi Word) int32 { return wordsInt32(lo, hi) }

func int32Words(v int32) [2]Word {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return [2]Word{
		Word(binary.LittleEndian.Uint16(b[0:2])),
		Word(binary.LittleEndian.Uint16(b[2:4])),
	}
}

func wordsInt32(lo, hi Word) int32 {
	var b [4]byte
	binary.LittleEndian.PutUint16(b[0:2], uint16(lo))
	binary.LittleEndian.PutUint16(b[2:4], uint16(hi))
	return int32(binary.LittleEndian.Uint32(b[:]))
}

// PackFloat returns the extended operand encoding of f.
func PackFloat(f float32) []Word {
	w := FloatWords(f)
	return []Word{Sentinel, TagFloat, w[0], w[1]}
}

// PackInt32 returns the extended operand encoding of v.
func PackInt32(v int32) []Word {
	w := int32Words(v)
	return []Word{Sentinel, TagInt32, w[0], w[1]}
}
