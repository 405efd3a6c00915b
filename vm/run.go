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

// reader fetches the operands of one instruction. Each logical operand
// consumes 1, 3 or 4 physical Words depending on its encoding.
type reader struct {
	i  *Instance
	pc int
}

func (r *reader) word() (Word, error) {
	w, err := r.i.Mem.Read(r.pc)
	if err != nil {
		return 0, err
	}
	r.pc++
	return w, nil
}

func (r *reader) pair() (lo, hi Word, err error) {
	if lo, err = r.word(); err != nil {
		return
	}
	hi, err = r.word()
	return
}

// operand reads one logical operand. Register aliases are resolved against
// the live register file.
func (r *reader) operand() (Value, error) {
	at := r.pc
	w, err := r.word()
	if err != nil || w != Sentinel {
		return IntValue(w), err
	}
	tag, err := r.word()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case TagFloat:
		lo, hi, err := r.pair()
		return FloatValue(WordsFloat(lo, hi)), err
	case TagInt32:
		lo, hi, err := r.pair()
		return Int32Value(wordsInt32(lo, hi)), err
	case TagRegister:
		reg, err := r.registerID(at)
		if err != nil {
			return Value{}, err
		}
		return r.i.Reg(reg), nil
	}
	return Value{}, fault(FaultOperand, at, "unknown extended operand tag %d", tag)
}

func (r *reader) registerID(at int) (Register, error) {
	w, err := r.word()
	if err != nil {
		return RegNone, err
	}
	reg := DecodeRegister(w)
	if reg == RegNone {
		return RegNone, fault(FaultOperand, at, "invalid register id %d", w)
	}
	return reg, nil
}

// register reads a destination register operand.
func (r *reader) register() (Register, error) {
	at := r.pc
	w, err := r.word()
	if err != nil {
		return RegNone, err
	}
	tag, err := r.word()
	if err != nil {
		return RegNone, err
	}
	if w != Sentinel || tag != TagRegister {
		return RegNone, fault(FaultOperand, at, "register operand expected")
	}
	return r.registerID(at)
}

// Step executes the instruction at IP. On error, IP still points to the
// instruction that triggered it.
func (i *Instance) Step() error {
	ip := i.IP
	r := reader{i: i, pc: ip}
	w, err := r.word()
	if err == nil {
		err = i.exec(DecodeOpcode(w), &r)
	}
	if err != nil {
		i.IP = ip
		return err
	}
	i.insCount++
	return nil
}

// Run starts execution of the machine from the current IP. It returns when
// an Exit instruction is executed, when the debug console stops the machine,
// or when an instruction faults.
//
// A fault halts the machine: a diagnostic banner and a full dump of the
// registers, stack and memory are written to the diagnostics writer and the
// fault is returned. IP will point to the instruction that triggered it.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = i.halt(fault(FaultInternal, i.IP, "%v", e))
		}
	}()
	for i.state == Running || i.state == DebugSuspended {
		if i.prompter != nil && (i.debug && i.console || i.breaks[i.IP]) {
			i.console = true
			err = i.command()
		} else {
			i.state = Running
			err = i.Step()
		}
		if err != nil {
			if _, ok := IsFault(err); !ok {
				return err
			}
			return i.halt(err)
		}
	}
	return nil
}

func (i *Instance) halt(err error) error {
	i.state = HaltedFault
	log.Errorf("halted at %%%d: %v", i.IP, err)
	i.dumpState(i.diag, err)
	return errors.Wrapf(err, "fault @ip=%d, stack %d, arp %d", i.IP, i.Stack.Len(), i.ARP)
}

// Stop halts the machine. Run returns after the current instruction.
func (i *Instance) Stop() {
	i.state = HaltedNormal
}

func (i *Instance) prompt(s string) (string, error) {
	line, err := i.prompter.Prompt(s)
	if err != nil {
		i.Stop()
		if err == io.EOF {
			return "", nil
		}
		return "", errors.Wrap(err, "debug console")
	}
	return line, nil
}
