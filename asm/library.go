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
	"strings"

	"github.com/pkg/errors"
)

// SelfPrefix qualifies function references that designate functions of the
// library being built.
const SelfPrefix = "self::"

// Library is a named collection of functions and constants that can be
// linked into an Executable or into another Library. Function names are
// qualified as <library>::<function>.
type Library struct {
	Name   string
	fns    []*Function
	consts [][]Operand
}

// NewLibrary returns a new empty library.
func NewLibrary(name string) *Library {
	return &Library{Name: name}
}

func (l *Library) prefix() string { return l.Name + "::" }

// AddConstant adds a constant to the library pool and returns its id.
func (l *Library) AddConstant(data []Operand) int {
	l.consts = append(l.consts, data)
	return len(l.consts) - 1
}

// AddFn adds f to the library and returns its index. f's name is qualified
// with the library name and references to self::name are rewritten to
// <library>::name.
func (l *Library) AddFn(f *Function) int {
	g := f.clone(func(o Operand) Operand {
		if o.Kind == KindFunction && strings.HasPrefix(o.Name, SelfPrefix) {
			o.Name = l.prefix() + o.Name[len(SelfPrefix):]
		}
		return o
	})
	g.Name = l.prefix() + f.Name
	l.fns = append(l.fns, g)
	return len(l.fns) - 1
}

// Functions returns the library functions.
func (l *Library) Functions() []*Function { return l.fns }

// Fn returns the library function with the given unqualified name.
func (l *Library) Fn(name string) *Function {
	for _, f := range l.fns {
		if f.Name == l.prefix()+name {
			return f
		}
	}
	return nil
}

func shiftConstants(shift int) func(Operand) Operand {
	return func(o Operand) Operand {
		if o.Kind == KindConstant {
			o.Int += int32(shift)
		}
		return o
	}
}

func shiftData(data []Operand, shift int) []Operand {
	fix := shiftConstants(shift)
	r := make([]Operand, len(data))
	for k, o := range data {
		r[k] = fix(o)
	}
	return r
}

// Link copies the library functions and constants into exe. Constant
// references are shifted by the number of constants already in exe. If any
// function name is already defined in exe, exe is left unchanged.
func (l *Library) Link(exe *Executable) error {
	for _, f := range l.fns {
		if exe.names[f.Name] {
			return errors.Errorf("link %s: function %s redefined", l.Name, f.Name)
		}
	}
	shift := len(exe.consts)
	for _, c := range l.consts {
		exe.consts = append(exe.consts, shiftData(c, shift))
	}
	for _, f := range l.fns {
		if err := exe.AddFn(f.clone(shiftConstants(shift))); err != nil {
			return errors.Wrapf(err, "link %s", l.Name)
		}
	}
	return nil
}

// LinkLib copies the library functions and constants into dst. Functions are
// re-qualified under dst's namespace, as well as references to them.
func (l *Library) LinkLib(dst *Library) {
	shift := len(dst.consts)
	for _, c := range l.consts {
		dst.consts = append(dst.consts, shiftData(c, shift))
	}
	fix := shiftConstants(shift)
	for _, f := range l.fns {
		g := f.clone(func(o Operand) Operand {
			if o.Kind == KindFunction && strings.HasPrefix(o.Name, l.prefix()) {
				o.Name = dst.prefix() + o.Name
			}
			return fix(o)
		})
		g.Name = dst.prefix() + f.Name
		dst.fns = append(dst.fns, g)
	}
}
