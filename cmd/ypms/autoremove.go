package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var autoremoveCmd = &cobra.Command{
	Use:   "autoremove",
	Short: "Uninstall non-explicit packages with no remaining dependents",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		failures, err := mgr.Autoremove(globalCtx, envFlag, forceFlag)
		if err != nil {
			handleError(err)
			return
		}
		if len(failures) == 0 {
			fmt.Println("Nothing to remove")
			return
		}
		fmt.Println("Some packages failed to remove:")
		for _, f := range failures {
			fmt.Printf("  %s\n", f)
		}
		exitWithCode(ExitDomainError)
	},
}
