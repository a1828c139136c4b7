package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <guide> <package>",
	Short: "Execute a named guide against an installed or resolvable package",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runGuide(args[0], args[1])
	},
}

// runGuide implements the behavior of both "ypms run <guide> <pkg>" and
// the root command's "any other first token is a guide name" dispatch
// (spec.md §6).
func runGuide(guideName, refArg string) {
	ref := parsePackageArg(refArg)
	err := mgr.Run(globalCtx, ref, guideName, envFlag, versionFlag, sourceFlag, forceFlag, yesFlag)
	if err != nil {
		handleError(err)
	}
}

// runGuideDispatch is rootCmd's RunE: cobra only reaches it when args[0]
// did not match any registered subcommand name, per spec.md §6's "any
// other first token is interpreted as a guide name" rule.
func runGuideDispatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	if len(args) != 2 {
		handleError(errUsage("expected <guide-name> <package>, got %d argument(s)", len(args)))
		return nil
	}
	runGuide(args[0], args[1])
	return nil
}
