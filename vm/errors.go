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

	"github.com/pkg/errors"
)

// FaultKind classifies unrecoverable run-time conditions.
type FaultKind int

// Fault kinds.
const (
	FaultAccess    FaultKind = iota + 1 // out of range memory or stack overlay access
	FaultOperand                        // malformed extended operand
	FaultUnderflow                      // stack underflow
	FaultArith                          // integer division by zero
	FaultDevice                         // unbound device or driver failure
	FaultInternal                       // recovered Go runtime panic
)

var faultNames = [...]string{
	FaultAccess:    "invalid memory access",
	FaultOperand:   "malformed operand",
	FaultUnderflow: "stack underflow",
	FaultArith:     "arithmetic fault",
	FaultDevice:    "device fault",
	FaultInternal:  "internal error",
}

func (k FaultKind) String() string {
	if k > 0 && int(k) < len(faultNames) {
		return faultNames[k]
	}
	return fmt.Sprintf("fault(%d)", int(k))
}

// Fault is the error returned by an instruction that cannot complete.
type Fault struct {
	Kind FaultKind
	Addr int // offending address, if any
	Msg  string
}

func (f *Fault) Error() string {
	if f.Msg == "" {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Msg
}

func fault(kind FaultKind, addr int, format string, args ...interface{}) error {
	return errors.WithStack(&Fault{Kind: kind, Addr: addr, Msg: fmt.Sprintf(format, args...)})
}

// IsFault returns the Fault at the root of err, if any.
func IsFault(err error) (*Fault, bool) {
	f, ok := errors.Cause(err).(*Fault)
	return f, ok
}
