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

import "time"

// Clock device commands.
const (
	ClockTime   = 0 // push seconds since the Unix epoch as Float
	ClockUptime = 1 // push milliseconds since boot as Int32
)

// ClockDevice is the clock driver.
var ClockDevice Device = DeviceFunc(func(i *Instance, cmd Word) error {
	switch cmd {
	case ClockTime:
		i.Stack.Push(FloatValue(float32(time.Now().Unix())))
	case ClockUptime:
		i.Stack.Push(Int32Value(int32(time.Since(i.booted) / time.Millisecond)))
	}
	return nil
})
