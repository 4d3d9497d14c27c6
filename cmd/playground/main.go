// Command playground opens the physics playground window.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fortio.org/log"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	assetsRoot string
	width      int
	height     int
	fullscreen bool
	seed       uint64
	logLevel   string
	stats      bool
	toggles    []string
	headless   float64
}

func main() {
	var opts options

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "open the playground window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	f := runCmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (yaml); reloaded on save")
	f.StringVar(&opts.assetsRoot, "assets", "", "asset root directory")
	f.IntVar(&opts.width, "width", 0, "window width")
	f.IntVar(&opts.height, "height", 0, "window height")
	f.BoolVar(&opts.fullscreen, "fullscreen", false, "open fullscreen on the primary monitor")
	f.Uint64Var(&opts.seed, "seed", 0, "spawner seed (0 = from clock)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, verbose, info, warning, error)")
	f.BoolVar(&opts.stats, "stats", false, "plot frame times and object counts at exit")
	f.StringSliceVar(&opts.toggles, "toggle", nil, "flags to switch on at start, e.g. physics,basicMesh")
	f.Float64Var(&opts.headless, "headless", 0, "simulate this many seconds without a window, then exit")

	rootCmd := &cobra.Command{
		Use:           "playground",
		Short:         "rigid-body physics playground",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "playground.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			return writeDefaultConfig(path, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(initCmd)

	rootCmd.AddCommand(runCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Errf("%v", err)
		os.Exit(1)
	}
}
