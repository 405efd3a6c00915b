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

// Stack is the operand stack. Its length is the srp register: every push
// increments it and every removal decrements it exactly once.
type Stack struct {
	data []Value
}

// Len returns the number of live slots (srp).
func (s *Stack) Len() int { return len(s.data) }

// Values returns the live slots. Changes to values will be reflected in the
// stack, but re-slicing will not affect it.
func (s *Stack) Values() []Value { return s.data }

// Push pushes v on top of the stack.
func (s *Stack) Push(v Value) { s.data = append(s.data, v) }

// Pop removes and returns the top of the stack.
func (s *Stack) Pop() (Value, error) {
	return s.Remove(len(s.data) - 1)
}

// Remove removes and returns the slot at index idx.
func (s *Stack) Remove(idx int) (Value, error) {
	if idx < 0 || idx >= len(s.data) {
		return Value{}, fault(FaultUnderflow, idx, "remove slot %d of %d", idx, len(s.data))
	}
	v := s.data[idx]
	s.data = append(s.data[:idx], s.data[idx+1:]...)
	return v, nil
}

// RemoveRange removes slots [lo, hi).
func (s *Stack) RemoveRange(lo, hi int) error {
	if lo < 0 || hi > len(s.data) || lo > hi {
		return fault(FaultUnderflow, lo, "remove slots [%d:%d] of %d", lo, hi, len(s.data))
	}
	s.data = append(s.data[:lo], s.data[hi:]...)
	return nil
}

// Resize sets the stack length to n, dropping slots or appending Empty ones.
func (s *Stack) Resize(n int) error {
	if n < 0 {
		return fault(FaultUnderflow, n, "resize stack to %d", n)
	}
	if n <= len(s.data) {
		s.data = s.data[:n]
		return nil
	}
	s.data = append(s.data, make([]Value, n-len(s.data))...)
	return nil
}

// Reset empties the stack.
func (s *Stack) Reset() { s.data = s.data[:0] }

// WordLen returns the length of the stack's word view.
func (s *Stack) WordLen() int { return s.wordOffset(len(s.data)) }

// wordOffset returns the word view offset of slot n.
func (s *Stack) wordOffset(n int) int {
	off := 0
	for _, v := range s.data[:n] {
		off += v.Kind.Width()
	}
	return off
}

// locate returns the slot holding word view offset off and the index of that
// word within the slot.
func (s *Stack) locate(off int) (slot, sub int, ok bool) {
	if off < 0 {
		return 0, 0, false
	}
	for i, v := range s.data {
		w := v.Kind.Width()
		if off < w {
			return i, off, true
		}
		off -= w
	}
	return 0, 0, false
}

// ReadWord reads the Word at offset off in the stack's word view.
func (s *Stack) ReadWord(off int) (Word, bool) {
	slot, sub, ok := s.locate(off)
	if !ok {
		return 0, false
	}
	return s.data[slot].Words()[sub], true
}

// WriteWord writes w at offset off in the stack's word view.
func (s *Stack) WriteWord(off int, w Word) bool {
	slot, sub, ok := s.locate(off)
	if !ok {
		return false
	}
	s.data[slot] = s.data[slot].setWord(sub, w)
	return true
}
