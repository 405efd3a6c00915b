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

// Package vm implements the fc16 virtual machine: a 16 bits computer with a
// sentinel tagged variable width instruction encoding, a register file, a
// typed operand stack, a flat Word memory and a small device bus.
//
// Memory addresses at or beyond the flat memory size designate the stack:
// address Mem.Size()+n is word n of the stack's word view, where Int slots
// take one Word and Int32 or Float slots take two. Activation record pointers
// (the arp register) are such addresses, so a function reaches its locals and
// arguments with plain Load and Store instructions.
//
// The machine boots from a Disk: Boot copies the first BootloaderSize words of
// section 0 to address 0 and execution starts there. The bootloader generated
// by package asm then uses the disk device to load the executable.
//
// Instructions report unrecoverable conditions as a *Fault. Run halts the
// machine on the first fault, writes a diagnostic dump and returns the error.
// IP is left pointing to the faulting instruction.
//
// When a Prompter is set with the Debug option, Run can suspend execution in a
// debug console, either right from the start or when hitting a breakpoint.
package vm
