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
	"fmt"
	"strings"

	"github.com/db47h/fc16/asm"
	"github.com/db47h/fc16/lang/std"
	"github.com/db47h/fc16/vm"
)

// Shows how to build a disk, boot it and run it.
func ExampleInstance_Run() {
	exe, err := asm.Assemble("hello", strings.NewReader(`
		.const hello "Hello, World!" 0
		.func main 0
			pushex $hello
			call @std::puts
			pushex #42
			call @std::putn
			exit`))
	if err != nil {
		panic(err)
	}
	if err = std.Library().Link(exe); err != nil {
		panic(err)
	}
	var disk vm.Disk
	if err = exe.Build(0, &disk, nil); err != nil {
		panic(err)
	}

	// output capture buffer
	output := bytes.NewBuffer(nil)

	i, err := vm.New(vm.InsertDisk(disk), vm.MemorySize(65536), vm.Output(output))
	if err == nil {
		err = i.Boot()
	}
	if err == nil {
		err = i.Run()
	}
	if err != nil {
		panic(err)
	}
	fmt.Println(output.String())
	fmt.Println(i.State())

	// Output:
	// Hello, World!42
	// halted
}

// Shows how to bind a custom device.
func ExampleBindDevice() {
	exe, err := asm.Assemble("square", strings.NewReader(`
		.func main 0
			push 12
			io 3 0
			pop r1
			exit`))
	if err != nil {
		panic(err)
	}
	var disk vm.Disk
	if err = exe.Build(0, &disk, nil); err != nil {
		panic(err)
	}

	// Our device pops a value and pushes back its square.
	square := vm.DeviceFunc(func(i *vm.Instance, cmd vm.Word) error {
		v, err := i.Stack.Pop()
		if err != nil {
			return err
		}
		i.Stack.Push(vm.IntValue(v.Word() * v.Word()))
		return nil
	})

	i, err := vm.New(vm.InsertDisk(disk), vm.MemorySize(4096), vm.BindDevice(3, square))
	if err == nil {
		err = i.Boot()
	}
	if err == nil {
		err = i.Run()
	}
	if err != nil {
		panic(err)
	}
	fmt.Println(i.Reg(vm.RegR1))

	// Output:
	// 144
}
