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

// The fc16 command line tool assembles fc16 programs into bootable disk
// images, saves and loads disk images, and boots them in the fc16 virtual
// machine.
//
// Usage:
//
//	-asm filename
//		  assemble filename and boot the resulting disk
//	-break address
//		  set a breakpoint at address (can be specified multiple times)
//	-config filename
//		  read settings from TOML file filename
//	-debug
//		  start in the debug console and print full error traces
//	-dump
//		  dump registers, stack and memory upon exit
//	-image filename
//		  boot the disk image filename
//	-log filename
//		  write logs to filename instead of stderr
//	-mem int
//		  memory size in words (default 4194304)
//	-noraw
//		  disable raw terminal IO
//	-norun
//		  build and save the disk image but do not run it
//	-nostd
//		  do not link the standard library
//	-o filename
//		  save the disk image to filename
//	-offset int
//		  load offset of the executable past the bootloader
//	-trace
//		  print the disk image structure
//	-v int
//		  log verbosity
//
// -asm: the source file is assembled, linked with the std library (unless
// -nostd is given) and built into a disk image. The program must define a
// main function.
//
// -debug, -break: the debug console reads commands from the terminal with line
// editing. Type help at the prompt for a list of commands. When the console is
// enabled, the terminal is not switched to raw mode.
//
// -noraw: upon startup, fc16 switches the terminal to raw mode unless the debug
// console is enabled. This flag disables this behavior.
//
// -config: settings can be read from a TOML file. Flags given on the command
// line take precedence over the file. Breakpoints from both are merged:
//
//	[machine]
//	memory = 65536
//	debug = false
//	breakpoints = [523]
//	dump = false
//	noraw = false
//
//	[build]
//	offset = 0
//	trace = true
//	nostd = false
//
//	[log]
//	verbosity = 1
//	file = "fc16.log"
package main
