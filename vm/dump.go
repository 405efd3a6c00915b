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
	"io"
	"strconv"

	"github.com/db47h/fc16/internal/fci"
)

// DumpWidth is the number of Words per line in memory dumps.
const DumpWidth = 50

// DumpRegisters writes the register file to w, one register per line.
func (i *Instance) DumpRegisters(w io.Writer) error {
	ew := fci.NewErrWriter(w)
	for _, r := range Registers() {
		ew.Printf("%s: %v\n", r, i.Reg(r))
	}
	return ew.Err
}

// DumpStack writes the live stack slots to w, each prefixed with its word
// address.
func (i *Instance) DumpStack(w io.Writer) error {
	ew := fci.NewErrWriter(w)
	ew.Printf("SRP: %d\n", i.Stack.Len())
	base := i.FrameBase()
	for n, v := range i.Stack.Values() {
		ew.Printf("%%%d: %v (%s)\n", base+i.Stack.wordOffset(n), v, v.Kind)
	}
	return ew.Err
}

// DumpMemory writes the flat memory words in [from, to) to w, DumpWidth words
// per line.
func (i *Instance) DumpMemory(w io.Writer, from, to int) error {
	if to > i.Mem.Size() {
		to = i.Mem.Size()
	}
	if to < 0 {
		to = 0
	}
	if from < 0 {
		from = 0
	}
	if from > to {
		from = to
	}
	return dumpWords(w, from, i.Mem.data[from:to])
}

func dumpWords(w io.Writer, addr int, ws []Word) error {
	ew := fci.NewErrWriter(w)
	b := make([]byte, 0, 8*DumpWidth)
	for len(ws) > 0 {
		n := len(ws)
		if n > DumpWidth {
			n = DumpWidth
		}
		b = append(b[:0], fmt.Sprintf("%%%07d:", addr)...)
		for _, v := range ws[:n] {
			b = append(b, ' ')
			b = strconv.AppendInt(b, int64(v), 10)
		}
		b = append(b, '\n')
		ew.Write(b)
		ws = ws[n:]
		addr += n
	}
	return ew.Err
}

// Dump writes the registers, the stack and the flat memory up to its
// high-water mark to w.
func (i *Instance) Dump(w io.Writer) error {
	ew := fci.NewErrWriter(w)
	ew.Printf("State: %v, %d instructions\n", i.state, i.insCount)
	ew.Printf("Registers:\n")
	i.DumpRegisters(ew)
	ew.Printf("Stack:\n")
	i.DumpStack(ew)
	ew.Printf("Memory:\n")
	i.DumpMemory(ew, 0, len(i.Mem.Used()))
	return ew.Err
}

func (i *Instance) dumpState(w io.Writer, err error) {
	if w == nil {
		return
	}
	ew := fci.NewErrWriter(w)
	ew.Printf("PANIC at %%%d: %v\n", i.IP, err)
	ew.Printf("__________________________________________\n")
	if e := i.Dump(ew); e != nil {
		log.Warningf("fault dump: %v", e)
	}
}
