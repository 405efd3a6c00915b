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
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Device is the interface implemented by device drivers. Handle is called by
// the IO instruction with the requested command. Drivers exchange arguments
// and results through the instance stack: arguments are popped in the order
// they are documented, results are pushed. Unknown commands must be ignored.
type Device interface {
	Handle(i *Instance, command Word) error
}

// DeviceFunc is an adapter to allow the use of ordinary functions as devices.
type DeviceFunc func(i *Instance, command Word) error

// Handle calls f(i, command).
func (f DeviceFunc) Handle(i *Instance, command Word) error {
	return f(i, command)
}

// Default device indices.
const (
	DevDisk = iota
	DevConsole
	DevClock
)

// Device returns the device bound at index, or nil.
func (i *Instance) Device(index int) Device {
	if index < 0 || index >= len(i.devices) {
		return nil
	}
	return i.devices[index]
}

func (i *Instance) io(index int, cmd Word) error {
	dev := i.Device(index)
	if dev == nil {
		return fault(FaultDevice, index, "no device bound at index %d", index)
	}
	err := dev.Handle(i, cmd)
	if err == nil {
		return nil
	}
	if _, ok := IsFault(err); ok {
		return err
	}
	return fault(FaultDevice, index, "device %d, command %d: %v", index, cmd, err)
}

// PopArgs pops n driver arguments. The first popped value is returned first.
func (i *Instance) PopArgs(n int) ([]Value, error) {
	args := make([]Value, n)
	for k := range args {
		v, err := i.Stack.Pop()
		if err != nil {
			return nil, err
		}
		args[k] = v
	}
	return args, nil
}

type flusher interface {
	Flush() error
}

type runeWriter interface {
	io.Writer
	WriteRune(r rune) (size int, err error)
}

type runeWriterWrapper struct {
	io.Writer
}

func (w *runeWriterWrapper) WriteRune(r rune) (size int, err error) {
	b := [utf8.UTFMax]byte{}
	l := utf8.EncodeRune(b[:], r)
	return w.Writer.Write(b[:l])
}

func (w *runeWriterWrapper) Flush() error {
	if f, ok := w.Writer.(flusher); ok {
		return errors.Wrap(f.Flush(), "flush")
	}
	return nil
}

// newWriter returns either w if it implements runeWriter or wraps it up into
// a runeWriterWrapper
func newWriter(w io.Writer) runeWriter {
	switch ww := w.(type) {
	case nil:
		return nil
	case runeWriter:
		return ww
	default:
		return &runeWriterWrapper{w}
	}
}

// runeReaderWrapper wraps a basic reader into a io.RuneReader
type runeReaderWrapper struct {
	io.Reader
}

func (r *runeReaderWrapper) ReadRune() (ret rune, size int, err error) {
	var (
		b = [utf8.UTFMax]byte{}
		i = 0
	)
	for i < utf8.UTFMax && err == nil && !utf8.FullRune(b[:i]) {
		var n int
		n, err = r.Reader.Read(b[i : i+1])
		i += n
	}
	if i == 0 {
		return 0, 0, err
	}
	ret, size = rune(b[0]), 1
	if ret >= utf8.RuneSelf {
		ret, size = utf8.DecodeRune(b[:i])
	}
	return ret, size, err
}

func newRuneReader(r io.Reader) io.RuneReader {
	switch rr := r.(type) {
	case nil:
		return nil
	case io.RuneReader:
		return rr
	default:
		return &runeReaderWrapper{r}
	}
}
