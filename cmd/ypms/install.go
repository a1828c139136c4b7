package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <package>",
	Short: "Install a package into an environment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref := parsePackageArg(args[0])
		dest, err := mgr.Install(globalCtx, ref, envFlag, versionFlag, sourceFlag, true, yesFlag, forceFlag)
		if err != nil {
			handleError(err)
			return
		}
		fmt.Printf("Installed -> %s\n", dest)
	},
}
