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
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/db47h/fc16/asm"
	"github.com/db47h/fc16/lang/std"
	"github.com/db47h/fc16/vm"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("fc16")

type addrList []int

func (l *addrList) String() string { return fmt.Sprint(*l) }
func (l *addrList) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*l = append(*l, n)
	return nil
}
func (l *addrList) Get() interface{} { return *l }

var (
	cfg        config
	configFile string
	srcFile    string
	imageFile  string
	outFile    string
	logFile    string
	noRun      bool
	breaks     addrList
)

func init() {
	flag.StringVar(&configFile, "config", "", "read settings from TOML file `filename`")
	flag.StringVar(&srcFile, "asm", "", "assemble `filename` and boot the resulting disk")
	flag.StringVar(&imageFile, "image", "", "boot the disk image `filename`")
	flag.StringVar(&outFile, "o", "", "save the disk image to `filename`")
	flag.BoolVar(&cfg.Machine.Debug, "debug", false, "start in the debug console and print full error traces")
	flag.Var(&breaks, "break", "set a breakpoint at `address` (can be specified multiple times)")
	flag.BoolVar(&cfg.Machine.Dump, "dump", false, "dump registers, stack and memory upon exit")
	flag.BoolVar(&cfg.Machine.NoRaw, "noraw", false, "disable raw terminal IO")
	flag.IntVar(&cfg.Machine.Memory, "mem", vm.DefaultMemorySize, "memory size in words")
	flag.IntVar(&cfg.Build.Offset, "offset", 0, "load offset of the executable past the bootloader")
	flag.BoolVar(&cfg.Build.Trace, "trace", false, "print the disk image structure")
	flag.BoolVar(&cfg.Build.NoStd, "nostd", false, "do not link the standard library")
	flag.IntVar(&cfg.Log.Verbosity, "v", 0, "log verbosity")
	flag.StringVar(&logFile, "log", "", "write logs to `filename` instead of stderr")
	flag.BoolVar(&noRun, "norun", false, "build and save the disk image but do not run it")
}

// parseFlags parses the command line, then loads the config file if any.
// Flags set on the command line take precedence.
func parseFlags() error {
	flag.Parse()
	if configFile == "" {
		cfg.Machine.Breakpoints = breaks
		cfg.Log.File = logFile
		return nil
	}
	cl := cfg
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := loadConfig(configFile, &cfg); err != nil {
		return err
	}
	override := func(name string, apply func()) {
		if set[name] {
			apply()
		}
	}
	override("debug", func() { cfg.Machine.Debug = cl.Machine.Debug })
	override("dump", func() { cfg.Machine.Dump = cl.Machine.Dump })
	override("noraw", func() { cfg.Machine.NoRaw = cl.Machine.NoRaw })
	override("mem", func() { cfg.Machine.Memory = cl.Machine.Memory })
	override("offset", func() { cfg.Build.Offset = cl.Build.Offset })
	override("trace", func() { cfg.Build.Trace = cl.Build.Trace })
	override("nostd", func() { cfg.Build.NoStd = cl.Build.NoStd })
	override("v", func() { cfg.Log.Verbosity = cl.Log.Verbosity })
	override("log", func() { cfg.Log.File = logFile })
	cfg.Machine.Breakpoints = append(cfg.Machine.Breakpoints, breaks...)
	return nil
}

func build(fileName string) (vm.Disk, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "build")
	}
	defer f.Close()
	exe, err := asm.Assemble(fileName, bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	if !cfg.Build.NoStd {
		if err = std.Library().Link(exe); err != nil {
			return nil, err
		}
	}
	var trace io.Writer
	if cfg.Build.Trace {
		trace = os.Stdout
	}
	var d vm.Disk
	err = exe.Build(cfg.Build.Offset, &d, trace)
	return d, err
}

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !cfg.Machine.Debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	if i != nil {
		fmt.Fprintf(os.Stderr, "IP: %d, ARP: %d, Stack: %v, State: %v\n", i.IP, i.ARP, i.Stack.Values(), i.State())
	}
	os.Exit(1)
}

func main() {
	// check exit condition
	var err error
	var i *vm.Instance

	stdout := bufio.NewWriter(os.Stdout)

	// flush output, catch and log errors
	defer func() {
		stdout.Flush()
		if err == nil && i != nil && cfg.Machine.Dump {
			err = i.Dump(os.Stdout)
		}
		atExit(i, err)
	}()

	if err = parseFlags(); err != nil {
		return
	}
	if cfg.Log.File != "" {
		commonlog.Configure(cfg.Log.Verbosity, &cfg.Log.File)
	} else {
		commonlog.Configure(cfg.Log.Verbosity, nil)
	}

	var disk vm.Disk
	switch {
	case srcFile != "":
		disk, err = build(srcFile)
	case imageFile != "":
		disk, err = vm.LoadDisk(imageFile)
	default:
		err = errors.New("no input: use -asm or -image")
	}
	if err != nil {
		return
	}
	if outFile != "" {
		if err = vm.SaveDisk(outFile, disk); err != nil {
			return
		}
		log.Infof("disk image saved to %s", outFile)
	}
	if noRun {
		return
	}

	opts := []vm.Option{
		vm.MemorySize(cfg.Machine.Memory),
		vm.InsertDisk(disk),
		vm.Breakpoints(cfg.Machine.Breakpoints...),
		vm.Output(stdout),
	}

	// the debug console owns the terminal when enabled
	console := cfg.Machine.Debug || len(cfg.Machine.Breakpoints) > 0
	raw := false
	if console {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		opts = append(opts, vm.Debug(ln, cfg.Machine.Debug), vm.Input(os.Stdin))
	} else if !cfg.Machine.NoRaw {
		tearDown, rerr := setRawIO()
		if rerr == nil {
			raw = true
			defer tearDown()
		}
	}
	if !raw && !console {
		opts = append(opts, vm.Input(bufio.NewReader(os.Stdin)))
	} else if raw {
		opts = append(opts, vm.Input(os.Stdin))
	}
	opts = append(opts, vm.BindDevice(vm.DevConsole, consoleDevice(stdout, raw)))

	if i, err = vm.New(opts...); err != nil {
		return
	}
	if err = i.Boot(); err != nil {
		return
	}
	err = i.Run()
	log.Infof("%v after %d instructions", i.State(), i.InstructionCount())
}
