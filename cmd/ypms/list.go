package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages available from a source",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		index, err := mgr.ListPackages(globalCtx, sourceFlag)
		if err != nil {
			handleError(err)
		}
		for _, pkg := range index.Get("packages").Array() {
			fmt.Println(pkg.String())
		}
	},
}
