// Package userio implements the interactive confirmation surface that
// spec.md §1 names as an out-of-core "terminal UI" collaborator: reading a
// yes/no answer from the operator before an install/update/uninstall plan
// is applied. Non-interactive input (pipes, CI) falls back to "no" rather
// than blocking, the same way a scripted tsuku run must pass --force.
package userio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalConfirmer implements manager.Confirmer against the process's
// controlling terminal, grounded on tsuku's cmd/tsuku confirmInstall/
// stdinIsTerminal pair.
type TerminalConfirmer struct {
	Out io.Writer
	In  io.Reader

	// isTerminal is replaceable for testing; defaults to term.IsTerminal
	// against os.Stdin's descriptor.
	isTerminal func() bool
}

// NewTerminalConfirmer returns a Confirmer wired to the process's standard
// streams.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{
		Out: os.Stdout,
		In:  os.Stdin,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Confirm prints prompt followed by "[y/N]" and reads one line of input.
// On non-interactive stdin it returns false without blocking, matching
// spec.md's assume_yes/force escape hatches for scripted use.
func (c *TerminalConfirmer) Confirm(prompt string) bool {
	if c.isTerminal != nil && !c.isTerminal() {
		return false
	}

	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	in := c.In
	if in == nil {
		in = os.Stdin
	}

	fmt.Fprintf(out, "%s\nContinue? [y/N] ", prompt)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
