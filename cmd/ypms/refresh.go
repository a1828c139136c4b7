package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force-refresh every configured source's descriptor and index",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := mgr.RefreshSources(globalCtx); err != nil {
			handleError(err)
			return
		}
		fmt.Println("Sources refreshed")
	},
}
