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

import "strconv"

// Kind is the tag of a Value.
type Kind uint8

// Value kinds.
const (
	Empty Kind = iota
	Int
	Int32
	Float
)

var kindNames = [...]string{"empty", "int", "int32", "float"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Width returns the number of Words a value of kind k occupies in the
// stack's word view.
func (k Kind) Width() int {
	switch k {
	case Int32, Float:
		return 2
	default:
		return 1
	}
}

// Value is a tagged operand or stack slot.
type Value struct {
	Kind Kind
	i    int32
	f    float32
}

// IntValue returns an Int Value.
func IntValue(w Word) Value { return Value{Kind: Int, i: int32(w)} }

// Int32Value returns an Int32 Value.
func Int32Value(v int32) Value { return Value{Kind: Int32, i: v} }

// FloatValue returns a Float Value.
func FloatValue(f float32) Value { return Value{Kind: Float, f: f} }

// Int32 returns v converted to a 32 bits integer. Floats are truncated.
func (v Value) Int32() int32 {
	if v.Kind == Float {
		return int32(v.f)
	}
	return v.i
}

// Word returns v converted to a Word.
func (v Value) Word() Word { return Word(v.Int32()) }

// Float returns v converted to a float32.
func (v Value) Float() float32 {
	if v.Kind == Float {
		return v.f
	}
	return float32(v.i)
}

// IsZero reports whether v is numerically zero.
func (v Value) IsZero() bool {
	if v.Kind == Float {
		return v.f == 0
	}
	return v.i == 0
}

// Words returns the word view of v.
func (v Value) Words() []Word {
	switch v.Kind {
	case Int32:
		w := int32Words(v.i)
		return w[:]
	case Float:
		w := FloatWords(v.f)
		return w[:]
	case Int:
		return []Word{Word(v.i)}
	default:
		return []Word{0}
	}
}

// setWord replaces the n-th Word of v's word view, keeping its kind. Empty
// slots become Int.
func (v Value) setWord(n int, w Word) Value {
	switch v.Kind {
	case Int32:
		ws := int32Words(v.i)
		ws[n] = w
		return Int32Value(wordsInt32(ws[0], ws[1]))
	case Float:
		ws := FloatWords(v.f)
		ws[n] = w
		return FloatValue(WordsFloat(ws[0], ws[1]))
	default:
		return IntValue(w)
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Int, Int32:
		return strconv.Itoa(int(v.i))
	case Float:
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	default:
		return "_"
	}
}
