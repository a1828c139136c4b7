package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List environments",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		envs, err := mgr.ListEnvs()
		if err != nil {
			handleError(err)
			return
		}
		if len(envs) == 0 {
			fmt.Println("(no environments yet)")
			return
		}
		names := make([]string, 0, len(envs))
		for name := range envs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", name, envs[name])
		}
	},
}
