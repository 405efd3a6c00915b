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

// Package asm assembles, links and disassembles fc16 programs.
//
// Programs are built from Functions, made of blocks of Operands, and a
// constant pool. Functions and constants are gathered in an Executable, which
// Build lays out and writes to a bootable vm.Disk along with a generated
// bootloader. Libraries hold functions and constants under a namespace and can
// be linked into executables or other libraries.
//
// Disk layout:
//
//	0		bootloader, padded to vm.BootloaderSize words
//	offset+512	header (6 words): load offset, base sector, code length,
//			code sector count, data length, data sector count
//	offset+518	insertion jump to main
//	offset+523	functions, in the order they were added
//	...		constant pool, starting at the next sector boundary on
//			disk and loaded right after the code in memory
//
// Text assembler:
//
// Assemble reads a Forth like source where tokens are separated by white
// space. Comments are placed between parentheses, i.e. '(' and ')'. The body of
// the comment must be separated from the enclosing parentheses by a space:
//
//	( this is a valid comment )
//
// Directives:
//
//	.const name values...	define a constant. Values are ints, floats, chars,
//				strings between double quotes and $const references.
//				Strings are not zero terminated
//	.func name argc		start a function taking argc argument words
//	.local name size	declare a local symbol of size words
//	.entry			make the current block the function's entry point
//	:label			start a new block named label
//
// Instructions are written as a mnemonic followed by its operands:
//
//	mnemonic	operands	description
//	--------	--------	---------------------------------
//	nop				no-op
//	add sub mul div mod and or xor gt lt
//			a b		integer operation, result in r1
//	not		a		bitwise not, result in r1
//	addf subf mulf divf
//			a b		float operation, result in f1
//	addex subex mulex divex
//			a b		int32 operation, result in ex1
//	push pushex pushf
//			v		push v as int, int32 or float
//	pop		reg		pop into reg
//	load loadex loadf
//			addr reg	read 1, 2 or 2 words at addr into reg
//	store storeex storef
//			addr v		write v as 1, 2 or 2 words at addr
//	mov		v reg		move v into reg
//	jump		addr		jump to addr
//	jz jnz		addr v		jump to addr if v is zero / not zero
//	call		addr		call function at addr
//	ret		n s a		return n values, dropping s locals and a arguments
//	io		dev cmd		send command cmd to device dev
//	exit				halt the machine
//
// Operands:
//
//	42 -1 0x2a	int, encoded on one word. Out of range values become int32
//	#42		int32
//	1.5 2e3		float
//	'a'		char, as an int
//	r1 ... arp	register
//	@name		address of function name
//	$name		address of constant name
//	&label &.	address of block label, or of the current block
//	%sym %sym+2	frame relative address of local symbol sym (plus offset)
//	^n		frame relative address of argument word n
//	.locals		size of the local symbol section
//	.argc		argument count
//
// Frame relative addresses are meant to be added to the arp register:
//
//	addex arp %x	( ex1 = address of x )
//	storeex ex1 #1000
package asm
