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

package asm_test

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/db47h/fc16/asm"
	"github.com/db47h/fc16/vm"
)

func assemble(t *testing.T, src string) *asm.Executable {
	t.Helper()
	exe, err := asm.Assemble(t.Name(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("%v", err)
	}
	return exe
}

func buildDisk(t *testing.T, exe *asm.Executable) vm.Disk {
	t.Helper()
	var d vm.Disk
	if err := exe.Build(0, &d, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	return d
}

func runDisk(t *testing.T, d vm.Disk, memSize int) *vm.Instance {
	t.Helper()
	i, err := vm.New(vm.InsertDisk(d), vm.MemorySize(memSize), vm.Diagnostics(&bytes.Buffer{}))
	if err == nil {
		err = i.Boot()
	}
	if err == nil {
		err = i.Run()
	}
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return i
}

func opsString(ops []asm.Operand) string {
	s := make([]string, len(ops))
	for k, o := range ops {
		s[k] = o.String()
	}
	return strings.Join(s, " ")
}

func TestAssemble_operands(t *testing.T) {
	exe := assemble(t, `
		.const c 1 #2 3.5 'x' $c
		.func main 2
			.local x 2
			push 40000 push -32768 push #1 push 1.5 push 1e2 push 'a' push 0x10
			push r1 push @main push &. push $c
			push .locals push .argc push ^1
			addex arp %x+1
			exit`)
	fns := exe.Functions()
	if len(fns) != 1 || fns[0].Name != "main" || fns[0].ArgCount != 2 {
		t.Fatalf("unexpected functions %v", fns)
	}
	f := fns[0]
	if syms := f.Symbols.Symbols(); len(syms) != 1 || syms[0] != (asm.Symbol{Name: "x", Size: 2}) {
		t.Errorf("unexpected symbols %v", syms)
	}
	if len(f.Blocks()) != 1 || f.Entry() != 0 {
		t.Fatalf("expected 1 block, got %d", len(f.Blocks()))
	}
	want := "push #40000 push #-32768 push #1 push 1.5 push 100.0 push 97 push 16 " +
		"push r1 push @main push &. push $0 " +
		"push .locals push .argc push ^1 " +
		"addex arp %x+1 exit"
	if got := opsString(f.Blocks()[0]); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestAssemble_labels(t *testing.T) {
	exe := assemble(t, `
		.func main 0
			jump &end
		:loop
			jnz &loop r1
		:start .entry
			jz &. 0
		:end
			exit
		.func other 0
			:first exit`)
	fns := exe.Functions()
	if len(fns) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(fns))
	}
	m := fns[0]
	var got []string
	for _, b := range m.Blocks() {
		got = append(got, opsString(b))
	}
	want := []string{"jump &3", "jnz &1 r1", "jz &. 0", "exit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected blocks %q, got %q", want, got)
	}
	if m.Entry() != 2 {
		t.Errorf("expected entry block 2, got %d", m.Entry())
	}
	if b := fns[1].Blocks(); len(b) != 1 || opsString(b[0]) != "exit" {
		t.Errorf("unexpected blocks for other: %v", b)
	}
}

func TestAssemble_errors(t *testing.T) {
	var tests = [...]struct {
		name string
		code string
		line int
		msg  string
	}{
		{"outside", "nop", 1, "instruction outside of function: nop"},
		{"instruction", ".func main 0\nfoo", 2, "unknown instruction foo"},
		{"missing", ".func main 0\npush", 0, "push: missing operand"},
		{"register", ".func main 0\npop 3", 2, "pop: register expected: 3"},
		{"dest", ".func main 0\nmov 1 2", 2, "mov: register expected: 2"},
		{"operand", ".func main 0\npush ~x", 2, "unknown operand ~x"},
		{"label", ".func main 0\njump &nowhere", 2, "undefined label nowhere"},
		{"symbol", ".func main 0\naddex arp %x", 2, "undefined symbol x"},
		{"constant", ".func main 0\npush $nothing", 2, "undefined constant nothing"},
		{"directive", ".foo", 1, "unknown directive .foo"},
		{"const redef", ".const a 1\n.const a 2", 2, "constant redefinition: a"},
		{"const redef data", ".const a 1\n.const a 2 \"xy\" $a\n.func main 0 exit", 2, "constant redefinition: a"},
		{"label redef", ".func main 0\n:a\n:a", 3, "label redefinition: a"},
		{"func redef", ".func main 0\n.func main 0", 2, "function main redefined"},
		{"string", "\"hello\"", 1, "unexpected string \"hello\""},
		{"data", ".const a foo", 1, "invalid constant data foo"},
		{"int32", ".func main 0\npush #x", 2, "invalid int32 literal #x"},
		{"argc", ".func main x", 1, ".func main: invalid integer x"},
		{"local", ".func main 0\n.local x 2\n.local x 1", 3, "symbol x redefined"},
		{"comment", ".func main 0 ( unterminated", 1, "unterminated comment"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := asm.Assemble(test.name, strings.NewReader(test.code))
			if err == nil {
				t.Fatal("expected error")
			}
			errs, ok := err.(asm.ErrAsm)
			if !ok {
				t.Fatalf("unexpected error type %T", err)
			}
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", err)
			}
			if errs[0].Msg != test.msg {
				t.Errorf("expected message %q, got %q", test.msg, errs[0].Msg)
			}
			if test.line != 0 && errs[0].Pos.Line != test.line {
				t.Errorf("expected error at line %d, got %v", test.line, errs[0].Pos)
			}
			if !strings.HasPrefix(err.Error(), test.name+":") {
				t.Errorf("error does not start with the source name: %q", err.Error())
			}
		})
	}
}

func TestAssemble_maxErrors(t *testing.T) {
	src := ".func main 0\n" + strings.Repeat("foo\n", 20)
	_, err := asm.Assemble("many", strings.NewReader(src))
	errs, ok := err.(asm.ErrAsm)
	if !ok {
		t.Fatalf("unexpected error %v", err)
	}
	if len(errs) != 10 {
		t.Errorf("expected 10 errors, got %d", len(errs))
	}
	if l := strings.Count(err.Error(), "\n"); l != 9 {
		t.Errorf("expected 10 lines, got %d", l+1)
	}
}

func TestBuild_layout(t *testing.T) {
	exe := assemble(t, `
		.const c 7 #70000 1.5 $c
		.func main 0
			call @f
			exit
		.func f 0
			.local x 1
			load $c r1
			ret 0 .locals 0`)
	d1 := buildDisk(t, exe)
	d2 := buildDisk(t, exe)
	if !reflect.DeepEqual(d1, d2) {
		t.Fatal("builds differ")
	}
	if len(d1) != 2 || d1[0].Kind != vm.SectionEntrypoint || d1[1].Kind != vm.SectionData || d1[1].ID != 1 {
		t.Fatalf("unexpected sections %v", d1)
	}
	hdr := d1[0].Data[vm.BootloaderSize:]
	codeStart := vm.BootloaderSize + vm.HeaderSize + vm.InsertionJumpSize
	// main: stub 5, call 5, exit 1; f: stub 20, load 8, ret 7
	codeLen := 11 + 35
	dataBase := codeStart + codeLen
	want := []vm.Word{vm.BootloaderSize, 0, vm.Word(vm.InsertionJumpSize + codeLen), 1, 7, 1}
	if !reflect.DeepEqual(hdr[:vm.HeaderSize], want) {
		t.Errorf("expected header %v, got %v", want, hdr[:vm.HeaderSize])
	}
	jump := append([]vm.Word{vm.EncodeOpcode(vm.OpJump)}, vm.PackInt32(int32(codeStart))...)
	if !reflect.DeepEqual(hdr[vm.HeaderSize:vm.HeaderSize+vm.InsertionJumpSize], jump) {
		t.Errorf("bad insertion jump %v", hdr[vm.HeaderSize:vm.HeaderSize+vm.InsertionJumpSize])
	}
	if len(d1[0].Data) != dataBase {
		t.Errorf("expected section 0 length %d, got %d", dataBase, len(d1[0].Data))
	}
	f1, f2 := vm.FloatWords(1.5), vm.Int32Words(int32(dataBase))
	data := []vm.Word{7, 4464, 1, f1[0], f1[1], f2[0], f2[1]}
	if !reflect.DeepEqual(d1[1].Data, data) {
		t.Errorf("expected data %v, got %v", data, d1[1].Data)
	}

	i := runDisk(t, d1, 4096)
	if r := i.Reg(vm.RegR1); r != vm.IntValue(7) {
		t.Errorf("expected r1 7, got %v", r)
	}
	// data is loaded right after the code
	if w, _ := i.Mem.Read(dataBase + 5); w != f2[0] {
		t.Errorf("data not loaded at %d", dataBase)
	}

	var trace bytes.Buffer
	if err := exe.Build(0, &d1, &trace); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"Offset: 512\n", "Code Sector Count: 1\n", "  main:\n", "  f:\n", "  $0:\n"} {
		if !strings.Contains(trace.String(), s) {
			t.Errorf("%q not found in trace:\n%s", s, trace.String())
		}
	}
}

func TestBuild_offset(t *testing.T) {
	exe := assemble(t, ".func main 0 mov 3 r2 exit")
	var d vm.Disk
	if err := exe.Build(100, &d, nil); err != nil {
		t.Fatal(err)
	}
	if d[0].Data[612+vm.HdrLoadOffset] != 612 {
		t.Errorf("header not at 612")
	}
	i := runDisk(t, d, 4096)
	if r := i.Reg(vm.RegR2); r != vm.IntValue(3) {
		t.Errorf("expected r2 3, got %v", r)
	}
	if err := exe.Build(vm.SectorCap, &d, nil); err == nil {
		t.Error("expected error with header outside of sector 0")
	}
	if err := exe.Build(-1, &d, nil); err == nil {
		t.Error("expected error on negative offset")
	}
	if err := asm.NewExecutable().Build(0, &d, nil); err == nil || !strings.Contains(err.Error(), "no main function") {
		t.Errorf("expected missing main error, got %v", err)
	}
}

func TestBuild_sectors(t *testing.T) {
	const nops = 40000
	exe := asm.NewExecutable()
	c := exe.AddConstant([]asm.Operand{asm.Int(1234)})
	ops := make([]asm.Operand, 0, nops+4)
	for k := 0; k < nops; k++ {
		ops = append(ops, asm.Op(vm.OpNop))
	}
	ops = append(ops, asm.Op(vm.OpLoad), asm.Const(c), asm.Reg(vm.RegR1), asm.Op(vm.OpExit))
	f := asm.NewFunction(asm.EntryPoint, 0)
	f.AddBlock(ops, true)
	if err := exe.AddFn(f); err != nil {
		t.Fatal(err)
	}
	d := buildDisk(t, exe)

	codeEnd := vm.BootloaderSize + vm.HeaderSize + vm.InsertionJumpSize + f.Len()
	kinds := []vm.SectionKind{vm.SectionEntrypoint, vm.SectionCode, vm.SectionData}
	lens := []int{vm.SectorCap, codeEnd - vm.SectorCap, 1}
	if len(d) != len(kinds) {
		t.Fatalf("expected %d sections, got %d", len(kinds), len(d))
	}
	for k, s := range d {
		if s.Kind != kinds[k] || len(s.Data) != lens[k] || s.ID != vm.Word(k) {
			t.Errorf("section %d: expected %v, %d words, got %v, %d words (id %d)", k, kinds[k], lens[k], s.Kind, len(s.Data), s.ID)
		}
	}
	// concatenated sections reconstruct the code stream
	var stream []vm.Word
	for _, s := range d[:2] {
		stream = append(stream, s.Data...)
	}
	codeStart := vm.BootloaderSize + vm.HeaderSize + vm.InsertionJumpSize
	if stream[codeStart] != vm.EncodeOpcode(vm.OpJump) || stream[codeStart+vm.InsertionJumpSize+nops] != vm.EncodeOpcode(vm.OpLoad) || stream[codeEnd-1] != vm.EncodeOpcode(vm.OpExit) {
		t.Error("code stream not split at sector boundaries")
	}
	hdr := d[0].Data[vm.BootloaderSize:]
	if hdr[vm.HdrCodeSectors] != 2 || hdr[vm.HdrDataLen] != 1 || hdr[vm.HdrDataSectors] != 1 {
		t.Errorf("bad header %v", hdr[:vm.HeaderSize])
	}
	codeLen := vm.InsertionJumpSize + f.Len()
	if hdr[vm.HdrCodeLen] != vm.Word(codeLen) {
		t.Errorf("expected truncated code length %d, got %d", vm.Word(codeLen), hdr[vm.HdrCodeLen])
	}

	i := runDisk(t, d, 65536)
	if r := i.Reg(vm.RegR1); r != vm.IntValue(1234) {
		t.Errorf("expected r1 1234, got %v", r)
	}
	if n := i.InstructionCount(); n < nops {
		t.Errorf("expected at least %d instructions, got %d", nops, n)
	}
}

func TestBuild_libraryDisk(t *testing.T) {
	exe := assemble(t, ".func main 0 exit")
	d := vm.Disk{{Kind: vm.SectionLibrary}}
	if err := exe.Build(vm.SectorCap-vm.BootloaderSize-vm.HeaderSize, &d, nil); err != nil {
		t.Fatal(err)
	}
	if len(d) != 2 || d[0].Kind != vm.SectionLibrary || d[1].Kind != vm.SectionLibrary {
		t.Errorf("unexpected sections %v, %v", d[0].Kind, d[len(d)-1].Kind)
	}
}

func TestLibrary(t *testing.T) {
	lib := asm.NewLibrary("math")
	c := lib.AddConstant([]asm.Operand{asm.Int(5)})
	five := asm.NewFunction("five", 0)
	five.AddBlock([]asm.Operand{
		asm.Op(vm.OpLoad), asm.Const(c), asm.Reg(vm.RegR2),
		asm.Op(vm.OpReturn), asm.Int(0), asm.Int(0), asm.Int(0),
	}, true)
	call := asm.NewFunction("call", 0)
	call.AddBlock([]asm.Operand{
		asm.Op(vm.OpCall), asm.Fn("self::five"),
		asm.Op(vm.OpReturn), asm.Int(0), asm.Int(0), asm.Int(0),
	}, true)
	lib.AddFn(five)
	lib.AddFn(call)
	if call.Name != "call" || call.Blocks()[0][1].Name != "self::five" {
		t.Error("AddFn modified its argument")
	}
	g := lib.Fn("call")
	if g == nil || g.Name != "math::call" || g.Blocks()[0][1].Name != "math::five" {
		t.Fatalf("bad qualification: %v", g)
	}
	if lib.Fn("nope") != nil {
		t.Error("found nonexistent function")
	}

	app := asm.NewLibrary("app")
	app.AddConstant([]asm.Operand{asm.Int(9)})
	lib.LinkLib(app)
	var names []string
	for _, f := range app.Functions() {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"app::math::five", "app::math::call"}) {
		t.Errorf("unexpected names %v", names)
	}
	if o := app.Fn("math::call").Blocks()[0][1]; o.Name != "app::math::five" {
		t.Errorf("unexpected reference %v", o)
	}
	if o := app.Fn("math::five").Blocks()[0][1]; o != asm.Const(1) {
		t.Errorf("constant not shifted: %v", o)
	}

	exe := assemble(t, `
		.const pad 1 2 3
		.func main 0
			call @app::math::call
			exit`)
	if err := app.Link(exe); err != nil {
		t.Fatal(err)
	}
	nfns, nconsts := len(exe.Functions()), exe.AddConstant(nil)
	if err := app.Link(exe); err == nil {
		t.Error("expected error on duplicate link")
	}
	if len(exe.Functions()) != nfns || exe.AddConstant(nil) != nconsts+1 {
		t.Error("failed link modified the executable")
	}
	i := runDisk(t, buildDisk(t, exe), 4096)
	if r := i.Reg(vm.RegR2); r != vm.IntValue(5) {
		t.Errorf("expected r2 5, got %v", r)
	}
}

func TestBootloader(t *testing.T) {
	for _, header := range []int{vm.BootloaderSize, 1000, vm.SectorCap - vm.HeaderSize} {
		t.Run(fmt.Sprint(header), func(t *testing.T) {
			l, err := asm.Bootloader(header)
			if err != nil {
				t.Fatal(err)
			}
			if len(l) != 73 {
				t.Errorf("expected 73 words, got %d", len(l))
			}
			var b bytes.Buffer
			if err = asm.DisassembleAll(l, 0, &b); err != nil {
				t.Fatal(err)
			}
			last := strings.Split(strings.TrimSpace(b.String()), "\n")
			if want := fmt.Sprintf("jump #%d", header+vm.HeaderSize); !strings.HasSuffix(last[len(last)-1], want) {
				t.Errorf("expected %q, got %q", want, last[len(last)-1])
			}
		})
	}
}

func TestDisassemble_range(t *testing.T) {
	mem := []vm.Word{vm.EncodeOpcode(vm.OpNop)}
	for _, pc := range []int{-1, 1, 10} {
		var b bytes.Buffer
		next, err := asm.Disassemble(mem, pc, &b)
		if err != nil {
			t.Fatal(err)
		}
		if next != len(mem) || b.String() != "???" {
			t.Errorf("pc %d: expected %d, \"???\", got %d, %q", pc, len(mem), next, b.String())
		}
	}
}
