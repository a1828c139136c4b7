package log

import "os"

// cliWriter sends log output to stderr, keeping stdout free for
// user-facing command results.
type cliWriter struct{}

func (cliWriter) Write(p []byte) (int, error) {
	return os.Stderr.Write(p)
}
