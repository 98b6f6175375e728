// Copyright 2026 The gVisor Authors.
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

// Package cli is the main entrypoint for trapctl.
package cli

import (
	"context"
	"flag"
	"io"
	"os"
	"runtime"

	"github.com/google/subcommands"
	"gvisor.dev/pikernel/pkg/kernel"
	"gvisor.dev/pikernel/pkg/log"
	"gvisor.dev/pikernel/tools/trapctl/cmd"
)

var (
	configPath      = flag.String("config", "", "path to a TOML kernel configuration file.")
	debug           = flag.Bool("debug", false, "enable debug logging.")
	debugLog        = flag.String("debug-log", "", "file to write logs to. Logs are discarded if neither this nor --alsologtostderr is set.")
	logFormat       = flag.String("log-format", "", "log format: text (default) or json. Overrides the configuration file.")
	alsoLogToStderr = flag.Bool("alsologtostderr", false, "send log messages to stderr.")
)

// Main is the main entrypoint.
func Main() {
	forEachCmd(subcommands.Register)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	conf, err := loadConfig()
	if err != nil {
		cmd.Fatalf("%v", err)
	}

	var emitters log.MultiEmitter
	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			cmd.Fatalf("error opening debug log file %q: %v", *debugLog, err)
		}
		emitters = append(emitters, newEmitter(conf.Log.Format, f))
		cmd.ErrorLogger = f
	}
	if *alsoLogToStderr {
		emitters = append(emitters, newEmitter(conf.Log.Format, os.Stderr))
	}
	switch len(emitters) {
	case 0:
		log.SetTarget(newEmitter("text", io.Discard))
	case 1:
		log.SetTarget(emitters[0])
	default:
		log.SetTarget(&emitters)
	}
	level, _ := log.ParseLevel(conf.Log.Level)
	log.SetLevel(level)

	const delimString = `**************** trapctl ****************`
	log.Infof(delimString)
	log.Infof("%s, %s, %s, PID %d", runtime.Version(), runtime.GOARCH, runtime.GOOS, os.Getpid())
	log.Infof("Args: %v", os.Args)
	conf.LogSummary()
	log.Infof(delimString)

	status := subcommands.Execute(context.Background(), conf)
	if status != subcommands.ExitSuccess {
		log.Warningf("Failure to execute command, status: %v", status)
	}
	os.Exit(int(status))
}

// loadConfig reads --config, if given, and applies flag overrides.
func loadConfig() (*kernel.Config, error) {
	conf := kernel.DefaultConfig()
	if *configPath != "" {
		var err error
		if conf, err = kernel.LoadConfig(*configPath); err != nil {
			return nil, err
		}
	}
	if *debug {
		conf.Log.Level = "debug"
	}
	if *logFormat != "" {
		conf.Log.Format = *logFormat
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// forEachCmd invokes the passed callback for each command supported by trapctl.
func forEachCmd(cb func(cmd subcommands.Command, group string)) {
	cb(subcommands.HelpCommand(), "")
	cb(subcommands.FlagsCommand(), "")

	cb(new(cmd.Decode), "")
	cb(new(cmd.Syscalls), "")
	cb(new(cmd.Replay), "")
	cb(new(cmd.Config), "")
}

func newEmitter(format string, logFile io.Writer) log.Emitter {
	switch format {
	case "text":
		return log.GoogleEmitter{Writer: &log.Writer{Next: logFile}}
	case "json":
		return log.JSONEmitter{Writer: &log.Writer{Next: logFile}}
	}
	cmd.Fatalf("invalid log format %q, must be 'text' or 'json'", format)
	panic("unreachable")
}
