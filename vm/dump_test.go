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

package vm_test

import (
	"bytes"
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	i := run(t, ".func main 0 pushex #70000 pushf 0.5 push 3 store 2049 -7 exit")
	var b bytes.Buffer
	if err := i.DumpStack(&b); err != nil {
		t.Fatal(err)
	}
	want := "SRP: 3\n%4096: 70000 (int32)\n%4098: 0.5 (float)\n%4100: 3 (int)\n"
	if b.String() != want {
		t.Errorf("stack dump: expected\n%s\ngot\n%s", want, b.String())
	}

	b.Reset()
	if err := i.DumpMemory(&b, 2000, 2052); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(b.String(), "\n")
	if len(lines) != 3 || lines[2] != "" {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if lines[1] != "%0002050: 0 0" {
		t.Errorf("unexpected second line %q", lines[1])
	}
	if !strings.HasPrefix(lines[0], "%0002000: 0") || !strings.HasSuffix(lines[0], " 0 -7") {
		t.Errorf("unexpected first line %q", lines[0])
	}

	for _, r := range []struct {
		from, to int
		want     string
	}{
		{-5, -1, ""},
		{-5, 2, "%0000000: 19 -32768\n"},
		{10, 5, ""},
	} {
		b.Reset()
		if err := i.DumpMemory(&b, r.from, r.to); err != nil {
			t.Fatal(err)
		}
		if b.String() != r.want {
			t.Errorf("DumpMemory(%d, %d): expected %q, got %q", r.from, r.to, r.want, b.String())
		}
	}

	b.Reset()
	if err := i.DumpRegisters(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "srp: 3\n") || !strings.Contains(b.String(), "ip: ") {
		t.Errorf("unexpected register dump:\n%s", b.String())
	}

	b.Reset()
	if err := i.Dump(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "State: halted, ") {
		t.Errorf("unexpected dump header %q", strings.SplitN(b.String(), "\n", 2)[0])
	}
	if !strings.Contains(b.String(), "%0002000:") {
		t.Error("memory dump does not reach the high-water mark")
	}
}
