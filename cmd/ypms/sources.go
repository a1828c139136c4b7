package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage configured sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		srcs := mgr.ListSources()
		names := make([]string, 0, len(srcs))
		for name := range srcs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", name, srcs[name])
		}
	},
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or replace a source",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name, url := args[0], args[1]
		if err := mgr.AddSource(name, url); err != nil {
			handleError(err)
			return
		}
		fmt.Printf("Added source '%s' -> %s\n", name, url)
	},
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a configured source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		if err := mgr.RemoveSource(name); err != nil {
			handleError(err)
			return
		}
		fmt.Printf("Removed source '%s'\n", name)
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
}
