package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/batchclock/internal/cliconfig"
	"github.com/bft-labs/batchclock/pkg/batch"
	"github.com/bft-labs/batchclock/pkg/log"
)

const longHelp = `Compute batch ids and their phase windows for the periodic batch auction.

Time is cut into 300 second batches counted from the Unix epoch. Orders for a
batch are collected during its own slot; a solution for it is accepted during
the first 240 seconds of the following slot.`

var exampleUsage = strings.TrimSpace(`
  batchclock current
  batchclock solving --at 2024-03-09T16:07:30Z
  batchclock show 5700000 --output json
  batchclock from-timestamp 1710000123
  batchclock watch --metrics-addr 127.0.0.1:9464
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return batch.Version
}

// app carries the resolved configuration to subcommands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  *log.ZerologAdapter

	// changed holds the flags set on the command line.
	changed map[string]bool

	// reloadMu serializes config reloads.
	reloadMu sync.Mutex
}

func main() {
	a := &app{cfg: cliconfig.DefaultConfig()}
	logger, err := cliconfig.NewLogger(a.cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	a.logger = logger

	if err := newRootCmd(a).Execute(); err != nil {
		a.logger.Error("batchclock", log.Err(err))
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "batchclock",
		Short:         "Compute batch ids and their phase windows",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.batchclock/config.toml)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "log format (console or json)")
	flags.StringVarP(&a.cfg.Output, "output", "o", a.cfg.Output, "result format (text or json)")

	root.AddCommand(
		newCurrentCmd(a),
		newSolvingCmd(a),
		newShowCmd(a),
		newFromTimestampCmd(a),
		newWatchCmd(a),
	)
	return root
}

// loadConfig applies the config file, then environment variables, leaving
// explicitly set flags untouched.
func (a *app) loadConfig(cmd *cobra.Command) error {
	if a.cfgPath == "" {
		a.cfgPath = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	a.changed = changed

	if a.cfgPath != "" && cliconfig.FileExists(a.cfgPath) {
		fc, err := cliconfig.LoadFileConfig(a.cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := cliconfig.NewLogger(a.cfg)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("configuration", log.Any("config", a.cfg))
	return nil
}
