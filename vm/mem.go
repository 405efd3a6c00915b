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

// DefaultMemorySize is the default capacity of the flat memory region in
// Words.
const DefaultMemorySize = 4 * 1024 * 1024

type region int

const (
	regionFlat region = iota
	regionStack
)

// Memory is the machine's address space: a flat Word array of fixed capacity
// followed by the word view of the operand stack. Addresses at or beyond
// Size() resolve into the stack, so the top of the call stack is memory
// mapped.
type Memory struct {
	data  []Word
	stack *Stack
	high  int // one past the highest written flat address
}

func newMemory(size int, s *Stack) *Memory {
	return &Memory{data: make([]Word, size), stack: s}
}

// Size returns the capacity of the flat region. It is also the base address
// of the stack overlay.
func (m *Memory) Size() int { return len(m.data) }

// translate maps addr to a region and an offset within that region.
func (m *Memory) translate(addr int) (region, int, error) {
	switch {
	case addr < 0:
	case addr < len(m.data):
		return regionFlat, addr, nil
	case addr-len(m.data) < m.stack.WordLen():
		return regionStack, addr - len(m.data), nil
	}
	return 0, 0, fault(FaultAccess, addr, "address %%%d is out of bounds", addr)
}

// Read returns the Word at address addr.
func (m *Memory) Read(addr int) (Word, error) {
	r, off, err := m.translate(addr)
	if err != nil {
		return 0, err
	}
	if r == regionStack {
		w, _ := m.stack.ReadWord(off)
		return w, nil
	}
	return m.data[off], nil
}

// ReadRange returns n Words starting at addr.
func (m *Memory) ReadRange(addr, n int) ([]Word, error) {
	if n < 0 {
		return nil, fault(FaultAccess, addr, "invalid length %d", n)
	}
	ws := make([]Word, n)
	for k := range ws {
		w, err := m.Read(addr + k)
		if err != nil {
			return nil, err
		}
		ws[k] = w
	}
	return ws, nil
}

// Write stores w at address addr.
func (m *Memory) Write(addr int, w Word) error {
	r, off, err := m.translate(addr)
	if err != nil {
		return err
	}
	if r == regionStack {
		m.stack.WriteWord(off, w)
		return nil
	}
	m.data[off] = w
	if off >= m.high {
		m.high = off + 1
	}
	return nil
}

// WriteRange stores ws starting at address addr. The whole range is checked
// before anything is written.
func (m *Memory) WriteRange(addr int, ws []Word) error {
	if len(ws) == 0 {
		return nil
	}
	for _, a := range []int{addr, addr + len(ws) - 1} {
		if _, _, err := m.translate(a); err != nil {
			return err
		}
	}
	for k, w := range ws {
		if err := m.Write(addr+k, w); err != nil {
			return err
		}
	}
	return nil
}

// Used returns the flat memory up to the highest address written so far.
func (m *Memory) Used() []Word { return m.data[:m.high] }

func (m *Memory) reset() {
	for k := range m.data[:m.high] {
		m.data[k] = 0
	}
	m.high = 0
}
