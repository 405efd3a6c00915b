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

package main

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// config mirrors the command line flags. Flags given explicitly on the
// command line override values read from the config file.
type config struct {
	Machine struct {
		Memory      int   `toml:"memory"`
		Debug       bool  `toml:"debug"`
		Breakpoints []int `toml:"breakpoints"`
		Dump        bool  `toml:"dump"`
		NoRaw       bool  `toml:"noraw"`
	} `toml:"machine"`
	Build struct {
		Offset int  `toml:"offset"`
		Trace  bool `toml:"trace"`
		NoStd  bool `toml:"nostd"`
	} `toml:"build"`
	Log struct {
		Verbosity int    `toml:"verbosity"`
		File      string `toml:"file"`
	} `toml:"log"`
}

func loadConfig(fileName string, cfg *config) error {
	md, err := toml.DecodeFile(fileName, cfg)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return errors.Errorf("config %s: unknown key %s", fileName, keys[0])
	}
	return nil
}
