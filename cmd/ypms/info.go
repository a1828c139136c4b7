package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YPSH-DGC/YPMS/internal/jsonutil"
)

var infoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "Print a package's metadata document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref := parsePackageArg(args[0])
		info, err := mgr.PackageInfoAnnotated(globalCtx, ref, sourceFlag)
		if err != nil {
			handleError(err)
			return
		}
		fmt.Println(info.String())

		if versionFlag == "" {
			return
		}
		resolvedSource := info.Get("_source").String()
		resolved, err := mgr.ResolveVersion(globalCtx, resolvedSource, ref.User, ref.Package, versionFlag)
		if err != nil {
			handleError(err)
			return
		}
		fmt.Printf("\nResolved version: %s\n", resolved)

		tmpl := jsonutil.FlatGet(info, "package.release.url")
		if tmpl.Exists() && tmpl.String() != "" {
			url := strings.ReplaceAll(tmpl.String(), "{RELEASE_ID}", resolved)
			fmt.Printf("Release info URL: %s\n", url)
		}
	},
}
