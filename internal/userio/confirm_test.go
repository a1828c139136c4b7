package userio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newConfirmer(t *testing.T, input string, interactive bool) (*TerminalConfirmer, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	c := &TerminalConfirmer{
		Out:        out,
		In:         strings.NewReader(input),
		isTerminal: func() bool { return interactive },
	}
	return c, out
}

func TestConfirmAcceptsYAndYes(t *testing.T) {
	for _, answer := range []string{"y\n", "Y\n", "yes\n", "YES\n"} {
		c, _ := newConfirmer(t, answer, true)
		require.True(t, c.Confirm("proceed?"))
	}
}

func TestConfirmRejectsAnythingElse(t *testing.T) {
	for _, answer := range []string{"n\n", "\n", "maybe\n"} {
		c, _ := newConfirmer(t, answer, true)
		require.False(t, c.Confirm("proceed?"))
	}
}

func TestConfirmNonInteractiveNeverBlocks(t *testing.T) {
	c, out := newConfirmer(t, "", false)
	require.False(t, c.Confirm("proceed?"))
	require.Empty(t, out.String())
}
