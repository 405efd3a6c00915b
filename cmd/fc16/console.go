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

package main

import (
	"bufio"
	"io"

	"github.com/db47h/fc16/vm"
)

const (
	eot       = 4
	backspace = 8
)

// consoleDevice wraps vm.ConsoleDevice. Output is flushed before reading
// input. In raw tty mode, CTRL-D is reported as EOF and backspaces erase the
// character under the cursor.
func consoleDevice(out *bufio.Writer, raw bool) vm.Device {
	return vm.DeviceFunc(func(i *vm.Instance, cmd vm.Word) error {
		var c vm.Value
		switch cmd {
		case vm.ConsoleGetc:
			if err := out.Flush(); err != nil {
				return err
			}
		case vm.ConsolePutc:
			if s := i.Stack.Values(); len(s) > 0 {
				c = s[len(s)-1]
			}
		}
		if err := vm.ConsoleDevice.Handle(i, cmd); err != nil || !raw {
			return err
		}
		switch cmd {
		case vm.ConsoleGetc:
			s := i.Stack.Values()
			if s[len(s)-1].Word() == eot {
				s[len(s)-1] = vm.IntValue(-1)
			}
		case vm.ConsolePutc:
			if c.Word() == backspace {
				_, err := io.WriteString(out, " \b")
				return err
			}
		}
		return nil
	})
}
