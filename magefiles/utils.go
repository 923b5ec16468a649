//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

// cmdSpec collects how a tool invocation runs: arguments, working folder,
// extra environment and whether its output goes to the terminal.
type cmdSpec struct {
	args   []string
	dir    string
	env    []string
	stream bool
}

type cmdOption func(*cmdSpec)

func withArgs(args ...string) cmdOption {
	return func(s *cmdSpec) {
		s.args = append(s.args, args...)
	}
}

func withDir(dir string) cmdOption {
	return func(s *cmdSpec) {
		s.dir = dir
	}
}

// withEnv adds KEY=VALUE pairs on top of the current environment.
func withEnv(kv ...string) cmdOption {
	return func(s *cmdSpec) {
		s.env = append(s.env, kv...)
	}
}

func withStream() cmdOption {
	return func(s *cmdSpec) {
		s.stream = true
	}
}

func (s *cmdSpec) String() string {
	var b strings.Builder
	for _, kv := range s.env {
		b.WriteString(kv)
		b.WriteByte(' ')
	}
	return b.String() + strings.Join(s.args, " ")
}

// goCmd runs the go tool with options. Output is returned and, in verbose
// mode or when streaming, mirrored to the terminal.
func goCmd(options ...cmdOption) (string, error) {
	return executeCmd("go", options...)
}

func executeCmd(command string, options ...cmdOption) (string, error) {
	spec := &cmdSpec{}
	for _, o := range options {
		o(spec)
	}
	fmt.Printf("Executing: %s %s\n", command, spec)

	cmd := exec.Command(command, spec.args...)
	cmd.Dir = spec.dir
	if len(spec.env) > 0 {
		cmd.Env = append(os.Environ(), spec.env...)
	}

	var out bytes.Buffer
	stream := mg.Verbose() || spec.stream
	cmd.Stdout, cmd.Stderr = &out, &out
	if stream {
		cmd.Stdout = io.MultiWriter(&out, os.Stdout)
		cmd.Stderr = io.MultiWriter(&out, os.Stderr)
	}

	if err := cmd.Run(); err != nil {
		if !stream {
			fmt.Printf("... %s failed:\n%s\n", command, out.String())
		}
		return "", fmt.Errorf("%s %s: %w", command, spec, err)
	}
	return out.String(), nil
}
