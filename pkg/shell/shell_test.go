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

package shell

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

// pipe feeds scripted input and collects output.
type pipe struct {
	io.Reader
	bytes.Buffer
}

func (p *pipe) Write(b []byte) (int, error) {
	return p.Buffer.Write(b)
}

func (p *pipe) Read(b []byte) (int, error) {
	return p.Reader.Read(b)
}

func run(t *testing.T, s *Shell, p *pipe) string {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Enter("debug> ")
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("shell did not return")
	}
	return p.Buffer.String()
}

func TestExit(t *testing.T) {
	p := &pipe{Reader: strings.NewReader("echo hello  world\rbogus\rexit\recho after\r")}
	out := run(t, New(p), p)

	if !strings.Contains(out, "debug> ") {
		t.Errorf("prompt missing from output %q", out)
	}
	if !strings.Contains(out, "hello world\r\n") {
		t.Errorf("echo output missing from %q", out)
	}
	if !strings.Contains(out, "unknown command: bogus") {
		t.Errorf("unknown command not reported in %q", out)
	}
	if strings.Contains(out, "after\r\n") {
		t.Errorf("shell kept running after exit: %q", out)
	}
}

func TestEOF(t *testing.T) {
	p := &pipe{Reader: strings.NewReader("echo one\r")}
	out := run(t, New(p), p)
	if !strings.Contains(out, "echo one\r\none\r\n") {
		t.Errorf("echo output missing from %q", out)
	}
}

func TestRegisterAndHelp(t *testing.T) {
	p := &pipe{Reader: strings.NewReader("ticks\rhelp\rexit\r")}
	s := New(p)
	if err := s.Register(Command{
		Name: "ticks",
		Help: "print the tick count",
		Run: func(w io.Writer, _ []string) {
			io.WriteString(w, "ticks: 12\n")
		},
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	out := run(t, s, p)

	for _, want := range []string{
		"ticks: 12",
		"echo     print the arguments",
		"exit     leave the shell and resume",
		"ticks    print the tick count",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestRegisterRejected(t *testing.T) {
	noop := func(io.Writer, []string) {}
	for _, cmd := range []Command{
		{Name: "exit", Run: noop},
		{Name: "", Run: noop},
		{Name: "two words", Run: noop},
		{Name: "norun"},
	} {
		if err := New(&pipe{}).Register(cmd); err == nil {
			t.Errorf("Register(%q) succeeded", cmd.Name)
		}
	}
}

func TestExitIsBuiltIn(t *testing.T) {
	p := &pipe{Reader: strings.NewReader("exit\recho after\r")}
	s := New(p)
	ran := false
	s.Register(Command{Name: "exit", Run: func(io.Writer, []string) { ran = true }})
	out := run(t, s, p)
	if ran {
		t.Errorf("registered exit command ran")
	}
	if strings.Contains(out, "after\r\n") {
		t.Errorf("shell kept reading after exit: %q", out)
	}
}
