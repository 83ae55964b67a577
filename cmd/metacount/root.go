package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"

	"github.com/nishant0581/metacount/internal/app"
	"github.com/nishant0581/metacount/internal/config"
)

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"backend":  "storage_backend",
	"storage":  "storage_path",
	"interval": "auto_increment_interval",
	"poll":     "market_poll_interval",
	"currency": "vs_currency",
	"top":      "top_coins",
	"log-file": "log_file",
}

type rootOptions struct {
	configPath string
	prefsPath  string
	debug      bool
	noMarket   bool
	overrides  *viper.Viper
}

func (o *rootOptions) appOptions() app.Options {
	return app.Options{
		ConfigPath: o.configPath,
		PrefsPath:  o.prefsPath,
		Overrides:  o.overrides,
		NoMarket:   o.noMarket,
		Debug:      o.debug,
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{overrides: viper.New()}

	cmd := &cobra.Command{
		Use:   "metacount",
		Short: "Terminal counters with bounds, undo and auto-increment",
		Long: `MetaCount tracks any number of named counters. Each counter has a step,
optional min/max bounds, notes, a short undo history and an optional
once-per-interval auto-increment. A market view shows top coin prices,
global market stats and network fees.

Settings come from ~/.config/metacount/config.toml, METACOUNT_* environment
variables and flags, in increasing precedence.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindOverrides(cmd, opts.overrides)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Query the terminal background before Bubble Tea owns stdin.
			_ = lipgloss.HasDarkBackground()
			return app.Run(cmd.Context(), opts.appOptions())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default: "+config.DefaultPath()+")")
	pf.String("backend", "", "storage backend: file, sqlite or memory")
	pf.String("storage", "", "storage file path")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.String("log-file", "", "log file path")

	f := cmd.Flags()
	f.StringVar(&opts.prefsPath, "prefs", "", "preferences file (default: ~/.config/metacount/prefs.toml)")
	f.String("interval", "", "auto-increment interval, e.g. 1s")
	f.String("poll", "", "market refresh interval, e.g. 30s")
	f.String("currency", "", "quote currency for market data, e.g. usd")
	f.Int("top", 0, "number of top coins to show")
	f.BoolVar(&opts.noMarket, "no-market", false, "disable market data polling")

	cmd.AddCommand(newListCmd(opts))
	return cmd
}

// bindOverrides wires METACOUNT_* variables and any flags the command
// defines into v. Only flags the user set count as overrides.
func bindOverrides(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix("metacount")
	for _, key := range config.Keys {
		if err := v.BindEnv(key); err != nil {
			return errors.Errorf("bind env %s: %w", key, err)
		}
	}
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
