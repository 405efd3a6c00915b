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
	"bufio"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("fc16.vm")

// State is the execution state of an Instance.
type State int

// Instance states.
const (
	Running State = iota
	HaltedNormal
	HaltedFault
	DebugSuspended
)

var stateNames = [...]string{"running", "halted", "faulted", "suspended"}

func (s State) String() string { return stateNames[s] }

// FrameBase is the distance between an activation record pointer and the
// stack slot index it designates. It equals the flat memory size, so arp
// relative addresses resolve through the stack overlay.
func (i *Instance) FrameBase() int { return i.Mem.Size() }

// integer register slots
const (
	slotR1 = iota
	slotR2
	slotR3
	slotR4
	slotR5
	slotEX1Lo
	slotEX1Hi
	slotEX2Lo
	slotEX2Hi
	slotCount
)

// Instance represents a machine instance.
type Instance struct {
	IP       int     // Instruction Pointer
	ARP      int     // Activation Record Pointer
	Stack    Stack   // Operand stack, its length is srp
	Mem      *Memory // Address space
	ints     [slotCount]Word
	floats   [2]float32
	disk     Disk
	devices  []Device
	state    State
	insCount int64
	debug    bool
	console  bool
	prompter Prompter
	breaks   map[int]bool
	diag     io.Writer
	input    io.RuneReader
	output   io.Writer
	booted   time.Time
}

// Option interface
type Option func(*Instance) error

// MemorySize sets the capacity of the flat memory region in Words. Memory
// contents are lost. The default is DefaultMemorySize.
func MemorySize(size int) Option {
	return func(i *Instance) error {
		if size <= 0 {
			return errors.Errorf("invalid memory size %d", size)
		}
		i.Mem = newMemory(size, &i.Stack)
		return nil
	}
}

// InsertDisk plugs d into the disk drive. Boot loads its bootloader.
func InsertDisk(d Disk) Option {
	return func(i *Instance) error {
		i.disk = d
		return nil
	}
}

// BindDevice binds dev to the given device index. Binding a nil Device
// unplugs it.
func BindDevice(index int, dev Device) Option {
	return func(i *Instance) error {
		if index < 0 {
			return errors.Errorf("invalid device index %d", index)
		}
		for len(i.devices) <= index {
			i.devices = append(i.devices, nil)
		}
		i.devices[index] = dev
		return nil
	}
}

// Debug enables the debug console. When on is true, execution starts
// suspended in the console. Console input is read from p.
func Debug(p Prompter, on bool) Option {
	return func(i *Instance) error {
		i.prompter = p
		i.debug = on
		i.console = on
		return nil
	}
}

// Breakpoints sets breakpoints at the given addresses. Hitting one suspends
// execution in the debug console, which requires a Prompter set with Debug.
func Breakpoints(addrs ...int) Option {
	return func(i *Instance) error {
		for _, a := range addrs {
			i.breaks[a] = true
		}
		return nil
	}
}

// Diagnostics sets the writer fault dumps and console output go to. The
// default is os.Stderr.
func Diagnostics(w io.Writer) Option {
	return func(i *Instance) error {
		i.diag = w
		return nil
	}
}

// Input sets the reader for the console device.
func Input(r io.Reader) Option {
	return func(i *Instance) error {
		i.input = newRuneReader(r)
		return nil
	}
}

// Output sets the writer for the console device.
func Output(w io.Writer) Option {
	return func(i *Instance) error {
		i.output = w
		return nil
	}
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new machine instance with the default devices bound: disk
// on index 0, console on index 1 and clock on index 2.
//
// Options will be set by calling SetOptions.
func New(opts ...Option) (*Instance, error) {
	i := &Instance{
		breaks:  make(map[int]bool),
		diag:    os.Stderr,
		devices: []Device{DiskDevice, ConsoleDevice, ClockDevice},
		booted:  time.Now(),
	}
	i.Mem = newMemory(DefaultMemorySize, &i.Stack)
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	if i.input == nil {
		i.input = bufio.NewReader(os.Stdin)
	}
	if i.output == nil {
		i.output = os.Stdout
	}
	if i.debug {
		i.state = DebugSuspended
	}
	return i, nil
}

// Boot resets the machine and loads the bootloader from the first section
// of the inserted disk into memory at address 0.
func (i *Instance) Boot() error {
	if len(i.disk) == 0 {
		return errors.New("no disk inserted")
	}
	i.Stack.Reset()
	i.Mem.reset()
	i.ints = [slotCount]Word{}
	i.floats = [2]float32{}
	i.IP, i.ARP, i.insCount = 0, 0, 0
	i.booted = time.Now()
	loader := i.disk[0].Data
	if len(loader) > BootloaderSize {
		loader = loader[:BootloaderSize]
	}
	if err := i.Mem.WriteRange(0, loader); err != nil {
		return errors.Wrap(err, "boot")
	}
	i.state = Running
	if i.console {
		i.state = DebugSuspended
	}
	log.Debugf("booted %d sections, loader %d words", len(i.disk), len(loader))
	return nil
}

// Disk returns the inserted disk.
func (i *Instance) Disk() Disk { return i.disk }

// State returns the current execution state.
func (i *Instance) State() State { return i.state }

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Reg returns the value of register r.
func (i *Instance) Reg(r Register) Value {
	switch r {
	case RegR1, RegR2, RegR3, RegR4:
		return IntValue(i.ints[slotR1+int(r-RegR1)])
	case RegR5:
		return IntValue(i.ints[slotR5])
	case RegF1, RegF2:
		return FloatValue(i.floats[r-RegF1])
	case RegEX1:
		return Int32Value(wordsInt32(i.ints[slotEX1Lo], i.ints[slotEX1Hi]))
	case RegEX2:
		return Int32Value(wordsInt32(i.ints[slotEX2Lo], i.ints[slotEX2Hi]))
	case RegIP:
		return Int32Value(int32(i.IP))
	case RegSP, RegSRP:
		return Int32Value(int32(i.Stack.Len()))
	case RegARP:
		return Int32Value(int32(i.ARP))
	}
	return Value{}
}

// SetReg sets register r to v, converting v to the register's type.
func (i *Instance) SetReg(r Register, v Value) error {
	switch r {
	case RegR1, RegR2, RegR3, RegR4:
		i.ints[slotR1+int(r-RegR1)] = v.Word()
	case RegR5:
		i.ints[slotR5] = v.Word()
	case RegF1, RegF2:
		i.floats[r-RegF1] = v.Float()
	case RegEX1:
		w := int32Words(v.Int32())
		i.ints[slotEX1Lo], i.ints[slotEX1Hi] = w[0], w[1]
	case RegEX2:
		w := int32Words(v.Int32())
		i.ints[slotEX2Lo], i.ints[slotEX2Hi] = w[0], w[1]
	case RegIP:
		i.IP = int(v.Int32())
	case RegSP, RegSRP:
		return i.Stack.Resize(int(v.Int32()))
	case RegARP:
		i.ARP = int(v.Int32())
	default:
		return fault(FaultOperand, i.IP, "invalid register %d", r)
	}
	return nil
}
