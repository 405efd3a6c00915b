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

package asm

import (
	"io"

	"github.com/db47h/fc16/internal/fci"
	"github.com/db47h/fc16/vm"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("fc16.asm")

// EntryPoint is the name of the function the insertion jump transfers
// control to.
const EntryPoint = "main"

// Executable is a set of functions and a constant pool that can be built into
// a bootable Disk.
type Executable struct {
	fns    []*Function
	names  map[string]bool
	consts [][]Operand
}

// NewExecutable returns a new empty executable.
func NewExecutable() *Executable {
	return &Executable{names: make(map[string]bool)}
}

// AddFn adds a function. Functions are laid out in the order they are added.
func (e *Executable) AddFn(f *Function) error {
	if e.names[f.Name] {
		return errors.Errorf("function %s redefined", f.Name)
	}
	e.names[f.Name] = true
	e.fns = append(e.fns, f)
	return nil
}

// AddConstant adds a constant to the pool and returns its id. Constant data
// may contain Int, Int32, Float and Const operands.
func (e *Executable) AddConstant(data []Operand) int {
	e.consts = append(e.consts, data)
	return len(e.consts) - 1
}

// Functions returns the executable's functions in layout order.
func (e *Executable) Functions() []*Function { return e.fns }

// layout is the address table computed before any code is emitted.
type layout struct {
	header      int // header address
	codeStart   int // first function address
	entry       int
	fns         map[string]int
	dataBase    int
	dataOffsets []int
	dataLen     int
}

func (e *Executable) layout(offset int) (*layout, error) {
	if offset < 0 {
		return nil, errors.Errorf("invalid offset %d", offset)
	}
	l := &layout{
		header: offset + vm.BootloaderSize,
		fns:    make(map[string]int, len(e.fns)),
	}
	if l.header+vm.HeaderSize > vm.SectorCap {
		return nil, errors.Errorf("offset %d places the header outside of sector 0", offset)
	}
	l.codeStart = l.header + vm.HeaderSize + vm.InsertionJumpSize
	pc := l.codeStart
	for _, f := range e.fns {
		l.fns[f.Name] = pc
		log.Debugf("%s at %%%d, %d words", f.Name, pc, f.Len())
		pc += f.Len()
	}
	entry, ok := l.fns[EntryPoint]
	if !ok {
		return nil, errors.Errorf("no %s function", EntryPoint)
	}
	l.entry = entry
	l.dataBase = pc
	for _, c := range e.consts {
		l.dataOffsets = append(l.dataOffsets, l.dataLen)
		for _, o := range c {
			l.dataLen += o.dataWidth()
		}
	}
	return l, nil
}

func (e *Executable) lowerData(l *layout) ([]vm.Word, error) {
	data := make([]vm.Word, 0, l.dataLen)
	for id, c := range e.consts {
		for _, o := range c {
			switch o.Kind {
			case KindInt:
				data = append(data, vm.Word(o.Int))
			case KindInt32:
				w := vm.Int32Words(o.Int)
				data = append(data, w[:]...)
			case KindFloat:
				w := vm.FloatWords(o.Float)
				data = append(data, w[:]...)
			case KindConstant:
				if o.Int < 0 || int(o.Int) >= len(l.dataOffsets) {
					return nil, errors.Errorf("constant %d: undefined constant %d", id, o.Int)
				}
				w := vm.Int32Words(int32(l.dataBase + l.dataOffsets[o.Int]))
				data = append(data, w[:]...)
			default:
				return nil, errors.Errorf("constant %d: invalid data operand %v", id, o)
			}
		}
	}
	return data, nil
}

func sectors(n int) int {
	return (n + vm.SectorCap - 1) / vm.SectorCap
}

// Build lays out the executable at the given offset past the bootloader and
// writes it to disk, replacing its contents. The kind of the disk's first
// section, if any, is preserved: an Entrypoint disk gets Code continuation
// sections, a Library disk gets Library ones. If trace is not nil, the image
// structure is printed to it.
//
// Building the same executable twice yields identical disks.
func (e *Executable) Build(offset int, disk *vm.Disk, trace io.Writer) error {
	l, err := e.layout(offset)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	var code []vm.Word
	for _, f := range e.fns {
		b, err := f.Build(l.fns[f.Name], l.fns, l.dataBase, l.dataOffsets)
		if err != nil {
			return errors.Wrap(err, "build")
		}
		code = append(code, b...)
	}
	data, err := e.lowerData(l)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	loader, err := Bootloader(l.header)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	if len(loader) > vm.BootloaderSize {
		log.Warningf("oversized bootloader: %d words, max is %d", len(loader), vm.BootloaderSize)
	}

	codeSectors := sectors(l.dataBase)
	dataSectors := sectors(len(data))
	header := []vm.Word{
		vm.HdrLoadOffset:  vm.Word(l.header),
		vm.HdrBaseSector:  vm.Word(l.header / vm.SectorCap),
		vm.HdrCodeLen:     vm.Word(vm.InsertionJumpSize + len(code)),
		vm.HdrCodeSectors: vm.Word(codeSectors),
		vm.HdrDataLen:     vm.Word(len(data)),
		vm.HdrDataSectors: vm.Word(dataSectors),
	}
	jump := append([]vm.Word{vm.EncodeOpcode(vm.OpJump)}, vm.PackInt32(int32(l.entry))...)

	base := vm.SectionEntrypoint
	if len(*disk) > 0 {
		base = (*disk)[0].Kind
	}
	next := vm.SectionCode
	if base == vm.SectionLibrary {
		next = vm.SectionLibrary
	}
	d := vm.Disk{{Kind: base}}
	d.WriteAt(l.header, header, next)
	d.WriteAt(l.header+vm.HeaderSize, jump, next)
	d.WriteAt(l.codeStart, code, next)
	d.WriteAt(codeSectors*vm.SectorCap, data, vm.SectionData)
	if len(loader) < vm.BootloaderSize {
		loader = append(loader, make([]vm.Word, vm.BootloaderSize-len(loader))...)
	}
	d.WriteAt(0, loader, next)
	*disk = d

	log.Infof("built %d functions, %d code words, %d data words, %d sections", len(e.fns), len(code), len(data), len(d))
	if trace != nil {
		return e.printStructure(trace, l, header, jump, code, data)
	}
	return nil
}

const traceWidth = 32

func (e *Executable) printStructure(w io.Writer, l *layout, header, jump, code, data []vm.Word) error {
	ew := fci.NewErrWriter(w)
	ew.Printf("Offset: %d\n", header[vm.HdrLoadOffset])
	ew.Printf("Base Sector: %d\n", header[vm.HdrBaseSector])
	ew.Printf("Code Length: %d\n", header[vm.HdrCodeLen])
	ew.Printf("Code Sector Count: %d\n", header[vm.HdrCodeSectors])
	ew.Printf("Data Length: %d\n", header[vm.HdrDataLen])
	ew.Printf("Data Sector Count: %d\n", header[vm.HdrDataSectors])
	ew.Printf("Insertion Jump: %v\n", jump)
	ew.Printf("Bytecode:\n")
	for _, f := range e.fns {
		ew.Printf("  %s:\n", f.Name)
		start := l.fns[f.Name] - l.codeStart
		printChunks(ew, l.fns[f.Name], code[start:start+f.Len()])
	}
	ew.Printf("Data:\n")
	for id, off := range l.dataOffsets {
		end := l.dataLen
		if id+1 < len(l.dataOffsets) {
			end = l.dataOffsets[id+1]
		}
		ew.Printf("  $%d:\n", id)
		printChunks(ew, l.dataBase+off, data[off:end])
	}
	return ew.Err
}

func printChunks(ew *fci.ErrWriter, addr int, ws []vm.Word) {
	for len(ws) > 0 {
		n := len(ws)
		if n > traceWidth {
			n = traceWidth
		}
		ew.Printf("    %%%d: %v\n", addr, ws[:n])
		ws = ws[n:]
		addr += n
	}
}
