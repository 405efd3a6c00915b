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

package std_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/fc16/asm"
	"github.com/db47h/fc16/lang/std"
	"github.com/db47h/fc16/vm"
)

func Test_stringCodec(t *testing.T) {
	s := "Go 1.7 rocks ☺"
	b := make([]vm.Word, 20)
	var i int
	for i = range b {
		b[i] = -1
	}
	e := std.StringCodec

	e.Encode(b, 1, s)
	if b[0] != -1 {
		t.Fatal("encode at wrong place")
	}
	rs := []rune(s)
	for i = range rs {
		if vm.Word(rs[i]) != b[i+1] {
			t.Fatalf("Encoding error at pos %d, expected %c, got %c", i+1, rs[i], b[i+1])
		}
	}
	if b[len(rs)+1] != 0 {
		t.Fatalf("Buffer overrun: expected 0, got %c", b[len(rs)+1])
	}

	d := e.Decode(b, 1)
	if string(d) != s {
		t.Fatalf("Decode error. Expected \"%s\", got \"%s\"", s, string(d))
	}

	if x := e.Decode(b, 100); x != nil {
		t.Fatalf("Decode error. Expected nil, got \"%s\"", string(x))
	}

	e.Encode(b, 19, "XYZ")
	if b[19] != 'X' {
		t.Fatalf("Edge encode error. Expected X, got '%c'", b[19])
	}

	c := e.Constant("hi")
	if len(c) != 3 || c[0] != asm.Int('h') || c[1] != asm.Int('i') || c[2] != asm.Int(0) {
		t.Fatalf("bad constant %v", c)
	}
}

func setup(t *testing.T, src string, out *bytes.Buffer) *vm.Instance {
	t.Helper()
	exe, err := asm.Assemble(t.Name(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if err = std.Library().Link(exe); err != nil {
		t.Fatal(err)
	}
	var d vm.Disk
	if err = exe.Build(0, &d, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	i, err := vm.New(vm.InsertDisk(d), vm.MemorySize(4096), vm.Output(out), vm.Diagnostics(out))
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

func TestLibrary(t *testing.T) {
	l := std.Library()
	if l.Name != std.Name {
		t.Errorf("expected name %s, got %s", std.Name, l.Name)
	}
	for _, name := range []string{"puts", "putn", "memcpy"} {
		if l.Fn(name) == nil {
			t.Errorf("%s not found", name)
		}
	}
}

func TestPuts(t *testing.T) {
	var out bytes.Buffer
	i := setup(t, `
		.const s "héllo" 0
		.const empty 0
		.func main 0
			push 99
			pushex $s
			call @std::puts
			pushex $empty
			call @std::puts
			pushex #-70000
			call @std::putn
			exit`, &out)
	if out.String() != "héllo-70000" {
		t.Errorf("unexpected output %q", out.String())
	}
	if v := i.Stack.Values(); len(v) != 1 || v[0] != vm.IntValue(99) {
		t.Errorf("unbalanced stack %v", v)
	}
}

func TestMemcpy(t *testing.T) {
	var out bytes.Buffer
	i := setup(t, `
		.const src "copy me" 0
		.func main 0
			pushex #3000
			pushex $src
			pushex 8
			call @std::memcpy
			pushex #3000
			call @std::puts
			exit`, &out)
	if out.String() != "copy me" {
		t.Errorf("unexpected output %q", out.String())
	}
	s, err := std.ReadString(i.Mem, 3000)
	if err != nil || s != "copy me" {
		t.Errorf("expected \"copy me\", got %q, %v", s, err)
	}
	if i.Stack.Len() != 0 {
		t.Errorf("unbalanced stack %v", i.Stack.Values())
	}
}

func TestReadString(t *testing.T) {
	i, err := vm.New(vm.MemorySize(8))
	if err != nil {
		t.Fatal(err)
	}
	if err = i.Mem.WriteRange(5, []vm.Word{'a', 'b', 'c'}); err != nil {
		t.Fatal(err)
	}
	if s, err := std.ReadString(i.Mem, 5); err == nil || s != "abc" {
		t.Errorf("expected access fault after \"abc\", got %q, %v", s, err)
	}
	i.Stack.Push(vm.IntValue(0))
	if s, err := std.ReadString(i.Mem, 5); err != nil || s != "abc" {
		t.Errorf("expected \"abc\" terminated in the stack, got %q, %v", s, err)
	}
}
