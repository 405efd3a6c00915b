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
	"fmt"
	"strconv"
	"strings"

	"github.com/db47h/fc16/internal/fci"
)

// Prompter reads a line of input from the user after displaying prompt.
// *liner.State satisfies this interface.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

var consoleHelp = `Available commands:
  help - Display this help message
  step - Execute the next instruction (same as an empty line)
  dumpMem - Dump memory contents
  debugOff - Exit Debugger
  goto <addr> - Jump to an address
  stack - Display the stack
  exitConsole - Exit debug console
  breakpoint <addr> - Set a breakpoint
  device <n> - Dump a device
  registers - Dump registers
  stop - Stops execution
  nextCommand - Reads the word at IP and displays it as a command
  readMem <addr> <len> - Reads len words from an address and displays them
`

// command reads and executes one debug console command.
func (i *Instance) command() error {
	i.state = DebugSuspended
	line, err := i.prompt("%" + strconv.Itoa(i.IP) + "> ")
	if err != nil || i.state != DebugSuspended {
		return err
	}
	ew := fci.NewErrWriter(i.diag)
	args := strings.Fields(line)
	if len(args) == 0 {
		return i.resume()
	}
	num := func(n int) (int, bool) {
		if n >= len(args) {
			ew.Printf("%s: missing argument\n", args[0])
			return 0, false
		}
		v, err := strconv.Atoi(args[n])
		if err != nil {
			ew.Printf("%s: invalid argument %q\n", args[0], args[n])
			return 0, false
		}
		return v, true
	}
	switch args[0] {
	case "help":
		ew.Printf("%s", consoleHelp)
	case "step":
		return i.resume()
	case "dumpMem":
		i.DumpMemory(ew, 0, len(i.Mem.Used()))
	case "debugOff":
		i.debug = false
		ew.Printf("Debug Off\n")
		return i.resume()
	case "goto":
		if addr, ok := num(1); ok {
			i.IP = addr
		}
	case "stack":
		i.DumpStack(ew)
	case "exitConsole":
		i.console = false
		return i.resume()
	case "breakpoint":
		if addr, ok := num(1); ok {
			i.breaks[addr] = true
		}
	case "device":
		if n, ok := num(1); ok {
			i.describeDevice(ew, n)
		}
	case "registers":
		i.DumpRegisters(ew)
	case "stop":
		i.Stop()
	case "nextCommand":
		w, err := i.Mem.Read(i.IP)
		if err != nil {
			ew.Printf("%v\n", err)
			break
		}
		op := DecodeOpcode(w)
		ew.Printf("Command: %v (%d operands)\n", op, op.Operands())
	case "readMem":
		addr, ok := num(1)
		if !ok {
			break
		}
		n, ok := num(2)
		if !ok {
			break
		}
		ws, err := i.Mem.ReadRange(addr, n)
		if err != nil {
			ew.Printf("%v\n", err)
			break
		}
		dumpWords(ew, addr, ws)
	default:
		ew.Printf("unknown command %q, try help\n", args[0])
	}
	return nil
}

// resume executes one instruction on behalf of the console.
func (i *Instance) resume() error {
	i.state = Running
	return i.Step()
}

func (i *Instance) describeDevice(ew *fci.ErrWriter, n int) {
	dev := i.Device(n)
	if dev == nil {
		ew.Printf("device %d: not bound\n", n)
		return
	}
	if s, ok := dev.(fmt.Stringer); ok {
		ew.Printf("device %d: %s\n", n, s)
	} else {
		ew.Printf("device %d: %T\n", n, dev)
	}
	if n == DevDisk {
		for _, s := range i.disk {
			ew.Printf("  section %d: %v, %d words\n", s.ID, s.Kind, len(s.Data))
		}
	}
}
