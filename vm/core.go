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

// exec fetches the operands of op and executes it.
func (i *Instance) exec(op Opcode, r *reader) (err error) {
	var (
		args [3]Value
		dst  Register
	)
	switch op {
	case OpPop:
		dst, err = r.register()
	case OpLoad, OpLoadEx, OpLoadf, OpMov:
		if args[0], err = r.operand(); err == nil {
			dst, err = r.register()
		}
	default:
		for n := 0; n < op.Operands() && err == nil; n++ {
			args[n], err = r.operand()
		}
	}
	if err != nil {
		return err
	}
	i.IP = r.pc

	a, b := args[0], args[1]
	switch op {
	case OpNop:
	case OpAdd:
		i.ints[slotR1] = Word(a.Int32() + b.Int32())
	case OpSub:
		i.ints[slotR1] = Word(a.Int32() - b.Int32())
	case OpMul:
		i.ints[slotR1] = Word(a.Int32() * b.Int32())
	case OpDiv, OpMod:
		if b.Int32() == 0 {
			return fault(FaultArith, r.pc, "integer division by zero")
		}
		if op == OpDiv {
			i.ints[slotR1] = Word(a.Int32() / b.Int32())
		} else {
			i.ints[slotR1] = Word(a.Int32() % b.Int32())
		}
	case OpAnd:
		i.ints[slotR1] = a.Word() & b.Word()
	case OpOr:
		i.ints[slotR1] = a.Word() | b.Word()
	case OpXor:
		i.ints[slotR1] = a.Word() ^ b.Word()
	case OpNot:
		i.ints[slotR1] = ^a.Word()
	case OpGreater:
		i.ints[slotR1] = boolWord(less(b, a))
	case OpLessThan:
		i.ints[slotR1] = boolWord(less(a, b))
	case OpAddf:
		i.floats[0] = a.Float() + b.Float()
	case OpSubf:
		i.floats[0] = a.Float() - b.Float()
	case OpMulf:
		i.floats[0] = a.Float() * b.Float()
	case OpDivf:
		i.floats[0] = a.Float() / b.Float()
	case OpAddEx:
		return i.SetReg(RegEX1, Int32Value(a.Int32()+b.Int32()))
	case OpSubEx:
		return i.SetReg(RegEX1, Int32Value(a.Int32()-b.Int32()))
	case OpMulEx:
		return i.SetReg(RegEX1, Int32Value(a.Int32()*b.Int32()))
	case OpDivEx:
		if b.Int32() == 0 {
			return fault(FaultArith, r.pc, "integer division by zero")
		}
		return i.SetReg(RegEX1, Int32Value(a.Int32()/b.Int32()))
	case OpPush:
		i.Stack.Push(IntValue(a.Word()))
	case OpPushEx:
		i.Stack.Push(Int32Value(a.Int32()))
	case OpPushf:
		i.Stack.Push(FloatValue(a.Float()))
	case OpPop:
		v, err := i.Stack.Pop()
		if err != nil {
			return err
		}
		return i.SetReg(dst, v)
	case OpLoad:
		w, err := i.Mem.Read(int(a.Int32()))
		if err != nil {
			return err
		}
		return i.SetReg(dst, IntValue(w))
	case OpLoadEx, OpLoadf:
		ws, err := i.Mem.ReadRange(int(a.Int32()), 2)
		if err != nil {
			return err
		}
		if op == OpLoadEx {
			return i.SetReg(dst, Int32Value(wordsInt32(ws[0], ws[1])))
		}
		return i.SetReg(dst, FloatValue(WordsFloat(ws[0], ws[1])))
	case OpStore:
		return i.Mem.Write(int(a.Int32()), b.Word())
	case OpStoreEx:
		w := int32Words(b.Int32())
		return i.Mem.WriteRange(int(a.Int32()), w[:])
	case OpStoref:
		w := FloatWords(b.Float())
		return i.Mem.WriteRange(int(a.Int32()), w[:])
	case OpMov:
		return i.SetReg(dst, a)
	case OpJump:
		i.IP = int(a.Int32())
	case OpJumpZero:
		if b.IsZero() {
			i.IP = int(a.Int32())
		}
	case OpJumpNotZero:
		if !b.IsZero() {
			i.IP = int(a.Int32())
		}
	case OpCall:
		i.Call(int(a.Int32()))
	case OpReturn:
		return i.Return(int(a.Int32()), int(b.Int32()), int(args[2].Int32()))
	case OpIO:
		return i.io(int(a.Int32()), b.Word())
	case OpExit:
		i.state = HaltedNormal
	}
	return nil
}

func boolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}

func less(a, b Value) bool {
	if a.Kind == Float || b.Kind == Float {
		return a.Float() < b.Float()
	}
	return a.Int32() < b.Int32()
}

// Call pushes the current activation record pointer, points a new one at the
// return address slot, pushes the return address (the current IP) and
// transfers control to addr.
func (i *Instance) Call(addr int) {
	i.Stack.Push(Int32Value(int32(i.ARP)))
	i.ARP = i.FrameBase() + i.Stack.WordLen()
	i.Stack.Push(Int32Value(int32(i.IP)))
	i.IP = addr
}

// Return unwinds the current activation record. The top n stack values are
// the returned values; below them lie s named local slots, the return
// address, the saved activation record pointer and the a arguments pushed by
// the caller. Everything but the returned values is removed, and IP and ARP
// are restored.
//
// n, s and a count stack slots, not Words: an Int32 or Float slot occupies
// two Words in the memory mapped view of the stack.
func (i *Instance) Return(n, s, a int) error {
	top := i.Stack.Len()
	ret := top - n - s - 1
	if n < 0 || s < 0 || a < 0 || ret-1-a < 0 {
		return fault(FaultUnderflow, i.IP, "return %d %d %d with %d stack slots", n, s, a, top)
	}
	ip, arp := i.Stack.data[ret], i.Stack.data[ret-1]
	if err := i.Stack.RemoveRange(ret-1-a, top-n); err != nil {
		return err
	}
	i.IP, i.ARP = int(ip.Int32()), int(arp.Int32())
	return nil
}
