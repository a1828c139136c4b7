package guide

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Prompter presents an interactive acknowledgment to the operator. The
// license-agreement-url step uses it to implement the reference semantics
// of a single "a" keypress on standard input.
type Prompter interface {
	Confirm(url string) (string, error)
}

// StdioPrompter implements Prompter against the process's stdout/stdin.
type StdioPrompter struct {
	Out io.Writer
	In  io.Reader
}

// NewStdioPrompter returns a Prompter wired to the process's standard
// streams.
func NewStdioPrompter() StdioPrompter {
	return StdioPrompter{Out: os.Stdout, In: os.Stdin}
}

// Confirm prints the agreement URL and reads one line of input, returning
// it trimmed of its trailing newline.
func (p StdioPrompter) Confirm(url string) (string, error) {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	fmt.Fprintf(out, "Review the license agreement at %s and enter \"a\" to accept: ", url)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
