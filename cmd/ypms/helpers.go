package main

import (
	"fmt"
	"os"

	"github.com/YPSH-DGC/YPMS/internal/depref"
	"github.com/YPSH-DGC/YPMS/internal/errs"
)

// printError writes err to stderr, prefixed the way the teacher's CLI does.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// handleError prints err and exits with the exit code its Kind maps to.
// A non-domain error (one that never passed through errs.New/errs.Wrap)
// is treated as a usage error. Such errors come from argument parsing, or
// from config.Load when the home directory cannot be resolved.
func handleError(err error) {
	if err == nil {
		return
	}
	printError(err)
	var domainErr *errs.Error
	if asErrsError(err, &domainErr) {
		exitWithCode(ExitDomainError)
	}
	exitWithCode(ExitUsage)
}

func asErrsError(err error, target **errs.Error) bool {
	for err != nil {
		if e, ok := err.(*errs.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// errUsage formats a plain usage error. It is never wrapped as *errs.Error
// so handleError's Kind-based classification can't mistake it for a
// domain failure.
func errUsage(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// parsePackageArg parses "[SOURCE:]USER/PACKAGE[@VERSION]" from a CLI
// positional argument, exiting with ExitUsage on a malformed ref.
func parsePackageArg(arg string) depref.Ref {
	ref, err := depref.ParseExtended(arg)
	if err != nil {
		printError(err)
		exitWithCode(ExitUsage)
	}
	return ref
}
