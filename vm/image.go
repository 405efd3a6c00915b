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
	"io/ioutil"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

const imageVersion = 1

// diskImage is the on-file representation of a Disk.
type diskImage struct {
	Version  int       `cbor:"version"`
	Sections []Section `cbor:"sections"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(errors.Wrap(err, "vm: CBOR encoding mode"))
	}
	encMode = em
}

// EncodeDisk serializes d to canonical CBOR. Encoding the same disk twice
// yields identical bytes.
func EncodeDisk(d Disk) ([]byte, error) {
	b, err := encMode.Marshal(&diskImage{imageVersion, d})
	return b, errors.Wrap(err, "encode disk")
}

// DecodeDisk deserializes a Disk encoded with EncodeDisk.
func DecodeDisk(b []byte) (Disk, error) {
	var img diskImage
	if err := cbor.Unmarshal(b, &img); err != nil {
		return nil, errors.Wrap(err, "decode disk")
	}
	if img.Version != imageVersion {
		return nil, errors.Errorf("decode disk: unsupported image version %d", img.Version)
	}
	for n, s := range img.Sections {
		if len(s.Data) > SectorCap {
			return nil, errors.Errorf("decode disk: section %d holds %d words, max is %d", n, len(s.Data), SectorCap)
		}
	}
	return Disk(img.Sections), nil
}

// SaveDisk saves d to file fileName.
func SaveDisk(fileName string, d Disk) error {
	b, err := EncodeDisk(d)
	if err != nil {
		return err
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "SaveDisk")
	}
	_, err = f.Write(b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "SaveDisk")
}

// LoadDisk loads a disk image from file fileName.
func LoadDisk(fileName string) (Disk, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "LoadDisk")
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "LoadDisk")
	}
	d, err := DecodeDisk(b)
	return d, errors.Wrap(err, fileName)
}
