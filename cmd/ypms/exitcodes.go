package main

import "os"

// Exit codes, per spec.md §6: ypms keeps exactly the three the spec names,
// unlike the richer exit-code space a fuller CLI collaborator might use.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitDomainError indicates a *errs.Error failure from the core.
	ExitDomainError = 1

	// ExitUsage indicates invalid arguments or usage error.
	ExitUsage = 2
)

func exitWithCode(code int) {
	os.Exit(code)
}
