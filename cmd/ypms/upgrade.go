package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Run the update guide for every installed package",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		failures, err := mgr.Upgrade(globalCtx, envFlag, forceFlag)
		if err != nil {
			handleError(err)
			return
		}
		if len(failures) == 0 {
			fmt.Println("All packages up to date")
			return
		}
		fmt.Println("Some packages failed to upgrade:")
		for _, f := range failures {
			fmt.Printf("  %s\n", f)
		}
		exitWithCode(ExitDomainError)
	},
}
