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

import "fmt"

// Disk geometry.
const (
	SectorCap         = 32767 // maximum payload of a Section, in Words
	BootloaderSize    = 512   // words reserved for the bootloader at the start of section 0
	HeaderSize        = 6     // executable header length
	InsertionJumpSize = 5     // Jump opcode + int32 operand
)

// Executable header fields, relative to the header address.
const (
	HdrLoadOffset = iota
	HdrBaseSector
	HdrCodeLen
	HdrCodeSectors
	HdrDataLen
	HdrDataSectors
)

// SectionKind is the role of a disk Section.
type SectionKind uint8

// Section kinds.
const (
	SectionEntrypoint SectionKind = iota
	SectionLibrary
	SectionCode
	SectionLoader
	SectionData
)

var sectionKindNames = [...]string{"entrypoint", "library", "code", "loader", "data"}

func (k SectionKind) String() string {
	if int(k) < len(sectionKindNames) {
		return sectionKindNames[k]
	}
	return fmt.Sprintf("section(%d)", int(k))
}

// Section is one sector of a Disk. Its payload never exceeds SectorCap Words.
type Section struct {
	Kind SectionKind `cbor:"kind"`
	ID   Word        `cbor:"id"`
	Data []Word      `cbor:"data"`
}

// Disk is an ordered sequence of sections. Section 0 starts with the
// bootloader.
type Disk []Section

// WriteAt writes ws at absolute word position pos, where position p lives in
// section p / SectorCap at index p % SectorCap. Missing sections are created
// with the given kind and payloads are zero-extended as needed.
func (d *Disk) WriteAt(pos int, ws []Word, kind SectionKind) {
	for len(ws) > 0 {
		sec, off := pos/SectorCap, pos%SectorCap
		for len(*d) <= sec {
			*d = append(*d, Section{Kind: kind, ID: Word(len(*d))})
		}
		s := &(*d)[sec]
		n := len(ws)
		if n > SectorCap-off {
			n = SectorCap - off
		}
		if len(s.Data) < off+n {
			s.Data = append(s.Data, make([]Word, off+n-len(s.Data))...)
		}
		copy(s.Data[off:], ws[:n])
		ws = ws[n:]
		pos += n
	}
}

// Disk device commands. Arguments are popped in the order listed.
const (
	DiskReadWord     = 0 // section, index -> Int
	DiskWriteWord    = 1 // section, index, value
	DiskLoadSectors  = 2 // start, count, dest
	DiskSectionCount = 3 // -> Int
)

// DiskDevice is the disk drive driver. It operates on the inserted disk.
var DiskDevice Device = DeviceFunc(diskDevice)

func diskDevice(i *Instance, cmd Word) error {
	switch cmd {
	case DiskReadWord:
		args, err := i.PopArgs(2)
		if err != nil {
			return err
		}
		s, idx, err := i.diskSlot(args[0], args[1], false)
		if err != nil {
			return err
		}
		i.Stack.Push(IntValue(s.Data[idx]))
	case DiskWriteWord:
		args, err := i.PopArgs(3)
		if err != nil {
			return err
		}
		s, idx, err := i.diskSlot(args[0], args[1], true)
		if err != nil {
			return err
		}
		s.Data[idx] = args[2].Word()
	case DiskLoadSectors:
		args, err := i.PopArgs(3)
		if err != nil {
			return err
		}
		start, count, dest := int(args[0].Int32()), int(args[1].Int32()), int(args[2].Int32())
		if start < 0 || count < 0 || start+count > len(i.disk) {
			return fault(FaultDevice, dest, "load sectors [%d:%d] of %d", start, start+count, len(i.disk))
		}
		for _, s := range i.disk[start : start+count] {
			if err := i.Mem.WriteRange(dest, s.Data); err != nil {
				return err
			}
			dest += len(s.Data)
		}
	case DiskSectionCount:
		i.Stack.Push(IntValue(Word(len(i.disk))))
	}
	return nil
}

func (i *Instance) diskSlot(sec, idx Value, grow bool) (*Section, int, error) {
	n, k := int(sec.Int32()), int(idx.Int32())
	if n < 0 || n >= len(i.disk) {
		return nil, 0, fault(FaultDevice, n, "no disk section %d", n)
	}
	s := &i.disk[n]
	if grow && k >= len(s.Data) && k < SectorCap {
		s.Data = append(s.Data, make([]Word, k+1-len(s.Data))...)
	}
	if k < 0 || k >= len(s.Data) {
		return nil, 0, fault(FaultDevice, k, "section %d index %d out of range", n, k)
	}
	return s, k, nil
}
