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
	"io"
	"strings"
	"testing"

	"github.com/db47h/fc16/vm"
	"github.com/pkg/errors"
)

// script is a Prompter that replays canned input lines.
type script struct {
	lines   []string
	prompts []string
	err     error
}

func (s *script) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

const debugSrc = ".func main 0 mov 1 r2 mov 2 r3 exit"

func TestDebug(t *testing.T) {
	var diag bytes.Buffer
	p := &script{lines: []string{
		"help",
		"",
		"registers",
		"stack",
		"nextCommand",
		"readMem 0 3",
		"breakpoint 528",
		"exitConsole",
		"device 0",
		"exitConsole",
	}}
	i := setup(t, debugSrc, vm.Debug(p, true), vm.Diagnostics(&diag))
	if i.State() != vm.DebugSuspended {
		t.Fatalf("expected state %v, got %v", vm.DebugSuspended, i.State())
	}
	if err := i.Run(); err != nil {
		t.Fatalf("%+v", err)
	}
	if i.State() != vm.HaltedNormal {
		t.Errorf("expected state %v, got %v", vm.HaltedNormal, i.State())
	}
	checkReg(t, i, vm.RegR3, vm.IntValue(2))
	if len(p.prompts) != 10 {
		t.Fatalf("expected 10 prompts, got %v", p.prompts)
	}
	for k, want := range map[int]string{0: "%0> ", 1: "%0> ", 2: "%5> ", 7: "%5> ", 8: "%528> ", 9: "%528> "} {
		if p.prompts[k] != want {
			t.Errorf("prompt %d: expected %q, got %q", k, want, p.prompts[k])
		}
	}
	out := diag.String()
	for _, s := range []string{
		"Available commands:",
		"r1: 0\n",
		"SRP: 0\n",
		"Command: push (1 operands)\n",
		"%0000000: 19 -32768 2\n",
		"section 0: entrypoint,",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("%q not found in console output:\n%s", s, out)
		}
	}
}

func TestDebug_commands(t *testing.T) {
	var tests = [...]struct {
		name  string
		lines []string
		state vm.State
		r3    vm.Word
		out   string
	}{
		{"stop", []string{"stop"}, vm.HaltedNormal, 0, ""},
		{"eof", nil, vm.HaltedNormal, 0, ""},
		{"debugOff", []string{"debugOff"}, vm.HaltedNormal, 2, "Debug Off\n"},
		{"goto", []string{"goto 5", "exitConsole"}, vm.HaltedNormal, 2, ""},
		{"unknown", []string{"frobnicate", "stop"}, vm.HaltedNormal, 0, "unknown command \"frobnicate\", try help\n"},
		{"bad argument", []string{"goto x", "stop"}, vm.HaltedNormal, 0, "goto: invalid argument \"x\"\n"},
		{"missing argument", []string{"readMem 0", "stop"}, vm.HaltedNormal, 0, "readMem: missing argument\n"},
		{"readMem length", []string{"readMem 0 -1", "exitConsole"}, vm.HaltedNormal, 2, "invalid memory access: invalid length -1\n"},
		{"unbound device", []string{"device 7", "stop"}, vm.HaltedNormal, 0, "device 7: not bound\n"},
		{"dumpMem", []string{"dumpMem", "stop"}, vm.HaltedNormal, 0, "%0000000: 19 -32768 2 5 0"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var diag bytes.Buffer
			p := &script{lines: test.lines}
			i := setup(t, debugSrc, vm.Debug(p, true), vm.Diagnostics(&diag))
			if err := i.Run(); err != nil {
				t.Fatalf("%+v", err)
			}
			if i.State() != test.state {
				t.Errorf("expected state %v, got %v", test.state, i.State())
			}
			checkReg(t, i, vm.RegR3, vm.IntValue(test.r3))
			if !strings.Contains(diag.String(), test.out) {
				t.Errorf("%q not found in console output:\n%s", test.out, diag.String())
			}
		})
	}
}

func TestDebug_promptError(t *testing.T) {
	p := &script{err: errors.New("tty gone")}
	i := setup(t, debugSrc, vm.Debug(p, true))
	err := i.Run()
	if err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected prompt error, got %v", err)
	}
	if _, ok := vm.IsFault(err); ok {
		t.Errorf("prompt error reported as fault: %v", err)
	}
	if i.State() != vm.HaltedNormal {
		t.Errorf("expected state %v, got %v", vm.HaltedNormal, i.State())
	}
}

func TestBreakpoints(t *testing.T) {
	p := &script{lines: []string{"registers", "stop"}}
	i := setup(t, debugSrc, vm.Debug(p, false), vm.Breakpoints(mainBlock+5))
	if i.State() != vm.Running {
		t.Fatalf("expected state %v, got %v", vm.Running, i.State())
	}
	if err := i.Run(); err != nil {
		t.Fatalf("%+v", err)
	}
	if len(p.prompts) != 2 || p.prompts[0] != "%533> " {
		t.Errorf("unexpected prompts %v", p.prompts)
	}
	checkReg(t, i, vm.RegR2, vm.IntValue(1))
	checkReg(t, i, vm.RegR3, vm.IntValue(0))
}
