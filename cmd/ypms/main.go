package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YPSH-DGC/YPMS/internal/config"
	"github.com/YPSH-DGC/YPMS/internal/log"
	"github.com/YPSH-DGC/YPMS/internal/manager"
	"github.com/YPSH-DGC/YPMS/internal/userio"
)

var (
	verboseFlag bool
	debugFlag   bool

	sourceFlag  string
	versionFlag string
	envFlag     string
	yesFlag     bool
	forceFlag   bool
)

// globalCtx is canceled on SIGINT/SIGTERM; blocking operations (HTTP
// fetches, shell steps) should observe it.
var globalCtx context.Context
var globalCancel context.CancelFunc

var mgr *manager.Manager

var rootCmd = &cobra.Command{
	Use:   "ypms",
	Short: "A per-user, guide-driven package manager",
	Long: `ypms installs and manages development tools into per-user
environments, driven by declarative install/uninstall/update guides
published by a configured source.

Any first token that does not name a built-in subcommand is treated as a
guide name and dispatched the way "ypms run <guide> <package>" would be.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: false,
	RunE:               runGuideDispatch,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output (includes source locations)")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "Source to use, overriding the package ref's own source and the configured default")
	rootCmd.PersistentFlags().StringVar(&versionFlag, "version", "", "Version tag to resolve, overriding the package's default release")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "Environment ID (default: \"default\")")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Assume yes for any confirmation prompt")
	rootCmd.PersistentFlags().BoolVarP(&forceFlag, "force", "f", false, "Override dependents/compatibility blockers")

	rootCmd.PersistentPreRunE = initManager

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(envsCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(autoremoveCmd)
	rootCmd.AddCommand(runCmd)
}

func initManager(cmd *cobra.Command, args []string) error {
	level := determineLogLevel()
	logger := log.New(log.NewCLIHandler(level))
	log.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	m, err := manager.New(cfg)
	if err != nil {
		return err
	}
	m.SetConfirmer(userio.NewTerminalConfirmer())
	mgr = m
	return nil
}

func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if config.DebugEnabled() {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nreceived interrupt, canceling operation...")
		globalCancel()
	}()

	if err := rootCmd.Execute(); err != nil {
		if globalCtx.Err() != nil {
			exitWithCode(ExitDomainError)
		}
		handleError(err)
	}
}
