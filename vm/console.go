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
	"io"

	"github.com/pkg/errors"
)

// Console device commands.
const (
	ConsolePutc  = 0 // pop a rune and write it
	ConsoleGetc  = 1 // read a rune and push it as Int, -1 on EOF
	ConsolePutn  = 2 // pop a value and write it in decimal
	ConsoleFlush = 3 // flush output
)

// ConsoleDevice is the console driver. It uses the instance's Input and
// Output.
var ConsoleDevice Device = DeviceFunc(console)

func console(i *Instance, cmd Word) error {
	switch cmd {
	case ConsolePutc:
		v, err := i.Stack.Pop()
		if err != nil {
			return err
		}
		_, err = newWriter(i.output).WriteRune(rune(v.Int32()))
		return errors.Wrap(err, "putc")
	case ConsoleGetc:
		r, size, err := i.input.ReadRune()
		if size == 0 {
			if err != nil && err != io.EOF {
				return errors.Wrap(err, "getc")
			}
			i.Stack.Push(IntValue(-1))
			return nil
		}
		i.Stack.Push(IntValue(Word(r)))
	case ConsolePutn:
		v, err := i.Stack.Pop()
		if err != nil {
			return err
		}
		_, err = io.WriteString(i.output, v.String())
		return errors.Wrap(err, "putn")
	case ConsoleFlush:
		if f, ok := i.output.(flusher); ok {
			return errors.Wrap(f.Flush(), "flush")
		}
	}
	return nil
}
