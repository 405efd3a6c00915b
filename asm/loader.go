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

import "github.com/db47h/fc16/vm"

// Bootloader returns the default bootloader for an executable whose header
// is located at address header in sector 0.
//
// The bootloader first loads sector 0 to read the header, then loads all
// code and data sections starting at the base sector in a single request and
// jumps to the insertion jump that follows the header.
func Bootloader(header int) ([]vm.Word, error) {
	f := NewFunction("loader", 0)
	f.AddBlock([]Operand{
		Op(vm.OpPush), Int(0), // dest
		Op(vm.OpPush), Int(1), // count
		Op(vm.OpPush), Int(0), // start
		Op(vm.OpIO), Int(vm.DevDisk), Int(vm.DiskLoadSectors),
		Op(vm.OpLoad), I32(int32(header + vm.HdrBaseSector)), Reg(vm.RegR2),
		Op(vm.OpLoad), I32(int32(header + vm.HdrCodeSectors)), Reg(vm.RegR1),
		Op(vm.OpLoad), I32(int32(header + vm.HdrDataSectors)), Reg(vm.RegR3),
		Op(vm.OpAdd), Reg(vm.RegR1), Reg(vm.RegR3),
		Op(vm.OpMulEx), Reg(vm.RegR2), I32(vm.SectorCap),
		Op(vm.OpPushEx), Reg(vm.RegEX1), // dest
		Op(vm.OpPush), Reg(vm.RegR1), // count
		Op(vm.OpPush), Reg(vm.RegR2), // start
		Op(vm.OpIO), Int(vm.DevDisk), Int(vm.DiskLoadSectors),
		Op(vm.OpJump), I32(int32(header + vm.HeaderSize)),
	}, true)
	return f.Build(0, nil, 0, nil)
}
